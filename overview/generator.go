package overview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
)

var (
	ErrNoImages       = errors.New("no images found")
	ErrMissingBaseURL = errors.New("base URL is required")
)

type Result struct {
	Root       string   `json:"root"`
	OutputPath string   `json:"output_path"`
	Folders    int      `json:"folders"`
	Images     int      `json:"images"`
	TotalBytes int64    `json:"total_bytes"`
	TotalSize  string   `json:"total_size"`
	Added      []string `json:"added,omitempty"`
	Removed    []string `json:"removed,omitempty"`
}

type Generator struct {
	config Config
	log    *slog.Logger
}

func NewGenerator(config Config, logger *slog.Logger) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{config: config, log: logger}, nil
}

// Generate scans root and rewrites the overview file inside it, keeping the
// header of any existing overview.
func (g *Generator) Generate(ctx context.Context, root string) (*Result, error) {
	if g.config.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}

	g.log.InfoContext(ctx, "scanning for images", "root", root)
	inv, err := Scan(ctx, root, g.config)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	if len(inv.Folders) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoImages, root)
	}

	output := filepath.Join(root, g.config.OutputFile)
	header, previous, err := ReadHeader(output, g.config.Title)
	if err != nil {
		g.log.WarnContext(ctx, "could not read existing overview, using default header", "path", output, "error", err)
		header, previous = defaultHeader(g.config.Title), ""
	}

	body := Render(inv, g.config.BaseURL)
	if err := os.WriteFile(output, []byte(header+body), 0644); err != nil {
		return nil, fmt.Errorf("write %s: %w", output, err)
	}

	result := &Result{
		Root:       root,
		OutputPath: output,
		Folders:    len(inv.Folders),
		Images:     inv.ImageCount(),
		TotalBytes: inv.TotalBytes(),
		TotalSize:  humanize.Bytes(uint64(inv.TotalBytes())),
	}

	oldLinks, err := ExistingLinks([]byte(previous))
	if err != nil {
		g.log.WarnContext(ctx, "could not parse previous overview", "error", err)
		return result, nil
	}
	newLinks, err := ExistingLinks([]byte(body))
	if err != nil {
		return result, nil
	}
	result.Added = difference(newLinks, oldLinks)
	result.Removed = difference(oldLinks, newLinks)

	g.log.InfoContext(ctx, "overview written", "path", output, "folders", result.Folders,
		"images", result.Images, "added", len(result.Added), "removed", len(result.Removed))
	return result, nil
}

// difference returns the elements of a missing from b, in a's order.
func difference(a, b []string) []string {
	seen := make(map[string]bool, len(b))
	for _, s := range b {
		seen[s] = true
	}
	var out []string
	for _, s := range a {
		if !seen[s] {
			out = append(out, s)
		}
	}
	return out
}
