package batchrename

import (
	"context"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

type Scanner interface {
	ScanDirectory(ctx context.Context, dir string, recursive bool) ([]FileEntry, error)
	Walk(ctx context.Context, dir string, recursive bool) iter.Seq2[FileEntry, error]
}

type FilesystemScanner struct {
	config    *Config
	validator Validator
}

func NewFilesystemScanner(config *Config) *FilesystemScanner {
	return &FilesystemScanner{
		config:    config,
		validator: NewDefaultValidator(),
	}
}

// ScanDirectory returns the regular files under dir ordered by case-insensitive
// file name. Paths in the result are absolute.
func (s *FilesystemScanner) ScanDirectory(ctx context.Context, dir string, recursive bool) ([]FileEntry, error) {
	if err := s.validator.ValidateDirectory(dir); err != nil {
		return nil, err
	}

	var files []FileEntry
	for entry, err := range s.Walk(ctx, dir, recursive) {
		if err != nil {
			return nil, err
		}
		files = append(files, entry)
	}

	slices.SortStableFunc(files, func(a, b FileEntry) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return files, nil
}

func (s *FilesystemScanner) Walk(ctx context.Context, dir string, recursive bool) iter.Seq2[FileEntry, error] {
	return func(yield func(FileEntry, error) bool) {
		root, err := filepath.Abs(dir)
		if err != nil {
			yield(FileEntry{}, fmt.Errorf("invalid path %s: %w", dir, err))
			return
		}

		if !recursive {
			entries, err := os.ReadDir(root)
			if err != nil {
				yield(FileEntry{}, err)
				return
			}
			for _, d := range entries {
				if ctx.Err() != nil {
					yield(FileEntry{}, ctx.Err())
					return
				}
				path := filepath.Join(root, d.Name())
				if d.IsDir() || s.excluded(root, path) {
					continue
				}
				info, ok := regularFileInfo(path, d)
				if !ok {
					continue
				}
				if !yield(FileEntry{Path: path, Name: d.Name(), Size: info.Size()}, nil) {
					return
				}
			}
			return
		}

		stopped := false
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				return err
			}

			if d.IsDir() {
				if path != root && slices.Contains(s.config.ExcludeDirs, d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}

			if s.excluded(root, path) {
				return nil
			}
			info, ok := regularFileInfo(path, d)
			if !ok {
				return nil
			}

			if !yield(FileEntry{Path: path, Name: d.Name(), Size: info.Size()}, nil) {
				stopped = true
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil && !stopped {
			yield(FileEntry{}, err)
		}
	}
}

func (s *FilesystemScanner) excluded(root, path string) bool {
	if isLogArtifact(s.config.LogFile, path) {
		return true
	}

	relPath, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	relPath = filepath.ToSlash(relPath)

	for _, pattern := range s.config.ExcludePatterns {
		if matched, _ := doublestar.Match(pattern, relPath); matched {
			return true
		}
	}
	return false
}

// regularFileInfo follows symlinks so a link to a file counts as a file.
func regularFileInfo(path string, d fs.DirEntry) (fs.FileInfo, bool) {
	if d.Type().IsRegular() {
		info, err := d.Info()
		return info, err == nil
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return nil, false
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, false
	}
	return info, true
}
