package overview

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	DefaultOutputFile = "OVERVIEW.md"
	DefaultTitle      = "Image Overview"
)

type Config struct {
	BaseURL         string   `yaml:"base_url"`
	OutputFile      string   `yaml:"output_file"`
	Title           string   `yaml:"title"`
	ImageExtensions []string `yaml:"image_extensions"`
	SkipDirs        []string `yaml:"skip_dirs"`
	SkipPatterns    []string `yaml:"skip_patterns"`
}

func DefaultConfig() Config {
	return Config{
		OutputFile:      DefaultOutputFile,
		Title:           DefaultTitle,
		ImageExtensions: []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".bmp", ".ico"},
		SkipDirs:        []string{"__pycache__"},
	}
}

func (c Config) Validate() error {
	if c.OutputFile == "" {
		return fmt.Errorf("overview output_file cannot be empty")
	}
	if len(c.ImageExtensions) == 0 {
		return fmt.Errorf("overview image_extensions cannot be empty")
	}
	for _, pattern := range c.SkipPatterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid overview skip_patterns glob: %s", pattern)
		}
	}
	return nil
}
