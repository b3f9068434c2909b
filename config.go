package batchrename

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/thrawn01/batch-rename/overview"
)

const (
	DefaultLogFileName  = "rename_log.json"
	DefaultPreviewWidth = 40
	MinSequenceWidth    = 3
)

type Config struct {
	LogFile         string          `yaml:"log_file"`
	ExcludeDirs     []string        `yaml:"exclude_dirs"`
	ExcludePatterns []string        `yaml:"exclude_patterns"`
	PreviewWidth    int             `yaml:"preview_width"`
	Overview        overview.Config `yaml:"overview"`
}

func DefaultConfig() *Config {
	return &Config{
		LogFile:      DefaultLogFileName,
		PreviewWidth: DefaultPreviewWidth,
		Overview:     overview.DefaultConfig(),
	}
}

// LoadConfig overlays the YAML file at path onto DefaultConfig. A relative
// log_file is resolved against the working directory so the renamer and the
// undo step agree on one absolute location.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, err
		}
	}

	if err := config.resolveLogFile(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) resolveLogFile() error {
	if c.LogFile == "" {
		c.LogFile = DefaultLogFileName
	}
	abs, err := filepath.Abs(c.LogFile)
	if err != nil {
		return err
	}
	c.LogFile = abs
	return nil
}
