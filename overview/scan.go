package overview

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

type Image struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Folder holds the images found directly inside one directory. Path is
// relative to the scan root and always uses forward slashes.
type Folder struct {
	Path   string  `json:"path"`
	Images []Image `json:"images"`
}

// Depth is the number of path segments, 1 for a top-level folder.
func (f Folder) Depth() int {
	return strings.Count(f.Path, "/") + 1
}

type Inventory struct {
	Root    string   `json:"root"`
	Folders []Folder `json:"folders"`
}

func (inv *Inventory) ImageCount() int {
	var n int
	for _, f := range inv.Folders {
		n += len(f.Images)
	}
	return n
}

func (inv *Inventory) TotalBytes() int64 {
	var n int64
	for _, f := range inv.Folders {
		for _, img := range f.Images {
			n += img.Size
		}
	}
	return n
}

// Scan collects images below root grouped by folder. Images directly in root
// are not listed. Hidden directories, SkipDirs and directories matching
// SkipPatterns are pruned.
func Scan(ctx context.Context, root string, config Config) (*Inventory, error) {
	byFolder := make(map[string][]Image)

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if p != root && skipDir(rel, d.Name(), config) {
				return filepath.SkipDir
			}
			return nil
		}

		folder := path.Dir(rel)
		if folder == "." || !isImage(d.Name(), config.ImageExtensions) {
			return nil
		}

		var size int64
		if info, err := d.Info(); err == nil {
			size = info.Size()
		}
		byFolder[folder] = append(byFolder[folder], Image{Name: d.Name(), Size: size})
		return nil
	})
	if err != nil {
		return nil, err
	}

	inv := &Inventory{Root: root}
	for folder, images := range byFolder {
		slices.SortFunc(images, func(a, b Image) int {
			return strings.Compare(a.Name, b.Name)
		})
		inv.Folders = append(inv.Folders, Folder{Path: folder, Images: images})
	}
	slices.SortFunc(inv.Folders, func(a, b Folder) int {
		return strings.Compare(a.Path, b.Path)
	})
	return inv, nil
}

func skipDir(rel, name string, config Config) bool {
	if strings.HasPrefix(name, ".") || slices.Contains(config.SkipDirs, name) {
		return true
	}
	for _, pattern := range config.SkipPatterns {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

func isImage(name string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	return slices.ContainsFunc(extensions, func(e string) bool {
		return strings.EqualFold(e, ext)
	})
}
