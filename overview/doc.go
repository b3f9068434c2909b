// Package overview generates a Markdown index of the images in a project
// tree. Images are grouped under one heading per folder and linked to a
// raw-content host, so the index can be browsed where the images are served.
//
// The part of an existing index above its first "---" line is hand-written
// and kept across regenerations.
package overview
