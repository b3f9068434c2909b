package batchrename

import (
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

type Validator interface {
	ValidatePrefix(prefix string) error
	ValidateDirectory(path string) error
	ValidateConfig(config *Config) error
}

type DefaultValidator struct{}

func NewDefaultValidator() *DefaultValidator {
	return &DefaultValidator{}
}

func (v *DefaultValidator) ValidatePrefix(prefix string) error {
	clean := strings.TrimSpace(prefix)
	if clean == "" {
		return ErrEmptyPrefix
	}

	if clean == "." || clean == ".." {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidPrefix, clean)
	}

	// New names stay in the source directory, so a separator would turn the
	// rename into a move.
	if strings.ContainsAny(clean, `/\`) {
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidPrefix, clean)
	}

	if strings.ContainsRune(clean, 0) {
		return fmt.Errorf("%w: contains a NUL byte", ErrInvalidPrefix)
	}

	return nil
}

func (v *DefaultValidator) ValidateDirectory(path string) error {
	if path == "" {
		return fmt.Errorf("%w: path cannot be empty", ErrPathNotFound)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}
		return fmt.Errorf("invalid path %s: %w", path, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, path)
	}

	return nil
}

func (v *DefaultValidator) ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if config.LogFile == "" {
		return fmt.Errorf("log_file cannot be empty")
	}

	if config.PreviewWidth < 1 {
		return fmt.Errorf("preview_width must be at least 1")
	}

	for _, pattern := range config.ExcludePatterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude_patterns glob: %s", pattern)
		}
	}

	return config.Overview.Validate()
}
