package overview

import (
	"os"
	"path/filepath"
	"strings"
)

const separator = "---"

// FindProjectRoot returns the nearest directory, starting at start and
// walking up, that already contains fileName. It falls back to start.
func FindProjectRoot(start, fileName string) (string, error) {
	start, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	for dir := start; ; {
		if _, err := os.Stat(filepath.Join(dir, fileName)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start, nil
		}
		dir = parent
	}
}

// SplitHeader returns the hand-written part of an overview, everything up to
// and including the first separator, followed by a blank line. The remainder
// is the previously generated body. Content without a separator, including an
// empty file, becomes the header as-is.
func SplitHeader(content string) (header, body string) {
	before, after, found := strings.Cut(content, separator)
	if !found {
		return strings.TrimRight(content, " \t\r\n") + "\n\n" + separator + "\n\n", ""
	}
	return before + separator + "\n\n", after
}

// ReadHeader reads the overview at path and splits it. Only a missing file
// yields the default header with title.
func ReadHeader(path, title string) (header, body string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultHeader(title), "", nil
		}
		return "", "", err
	}
	header, body = SplitHeader(string(data))
	return header, body, nil
}

func defaultHeader(title string) string {
	return "# " + title + "\n\n" + separator + "\n\n"
}
