package overview

import (
	"path"
	"strings"
)

const maxHeadingLevel = 6

// altEscaper escapes the characters that would end image alt text early.
var altEscaper = strings.NewReplacer(`\`, `\\`, `[`, `\[`, `]`, `\]`)

// Render produces the Markdown body: one heading per folder followed by an
// image link per file and a blank line.
func Render(inv *Inventory, baseURL string) string {
	baseURL = strings.TrimRight(baseURL, "/")

	var b strings.Builder
	for _, folder := range inv.Folders {
		b.WriteString(heading(folder))
		b.WriteString("\n")

		for _, img := range folder.Images {
			b.WriteString("![")
			b.WriteString(altEscaper.Replace(stem(img.Name)))
			b.WriteString("](")
			b.WriteString(linkDestination(ImageURL(baseURL, folder.Path, img.Name)))
			b.WriteString(")\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func ImageURL(baseURL, folder, name string) string {
	return strings.TrimRight(baseURL, "/") + "/" + folder + "/" + name
}

// linkDestination wraps URLs that CommonMark would otherwise cut short in
// angle brackets.
func linkDestination(url string) string {
	if strings.ContainsAny(url, " ()") {
		return "<" + url + ">"
	}
	return url
}

// heading nests the first two levels by name and spells out the full path
// below that, since the intermediate folders may not have headings of their
// own.
func heading(folder Folder) string {
	parts := strings.Split(folder.Path, "/")
	switch len(parts) {
	case 1:
		return "# " + parts[0]
	case 2:
		return "## " + parts[1]
	default:
		level := min(len(parts), maxHeadingLevel)
		return strings.Repeat("#", level) + " " + folder.Path
	}
}

func stem(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}
