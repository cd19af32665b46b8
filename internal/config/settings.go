// Package config loads process settings and the graphical configuration
// documents the renderers consume. Both are loaded once per invocation and
// passed down explicitly.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ProjectFile is looked up in the project root when no --config is given
const ProjectFile = ".aqs.yaml"

// Settings holds the external tool locations and defaults for the CLI
type Settings struct {
	RenkuBin string `yaml:"renku_bin"`
	DotBin   string `yaml:"dot_bin"`
	// KGPath is the upstream knowledge graph database
	KGPath string `yaml:"kg_path"`
	Port   int    `yaml:"port"`
	// Engine is the Graphviz layout engine for static images
	Engine string `yaml:"engine"`
	// AnnotationsDir is relative to the project root
	AnnotationsDir string `yaml:"annotations_dir"`
	// ConfigDir overrides the embedded graphical configuration documents
	ConfigDir string `yaml:"config_dir"`
}

// Default returns the settings used when nothing is configured
func Default() Settings {
	home, _ := os.UserHomeDir()
	return Settings{
		RenkuBin:       "renku",
		DotBin:         "dot",
		KGPath:         filepath.Join(home, ".kg.db"),
		Port:           8050,
		Engine:         "fdp",
		AnnotationsDir: filepath.Join(".renku", "aqs", "common"),
	}
}

// LoadSettings reads path over the defaults. An empty path or a missing
// project file leaves the defaults untouched; an explicit path must exist.
func LoadSettings(path string, explicit bool) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return s, nil
		}
		return s, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}

// ApplyEnv overrides settings from AQS_* environment variables
func (s *Settings) ApplyEnv(getenv func(string) string) error {
	if v := getenv("AQS_RENKU_BIN"); v != "" {
		s.RenkuBin = v
	}
	if v := getenv("AQS_DOT_BIN"); v != "" {
		s.DotBin = v
	}
	if v := getenv("AQS_KG_PATH"); v != "" {
		s.KGPath = v
	}
	if v := getenv("AQS_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("AQS_PORT: invalid port %q", v)
		}
		s.Port = port
	}
	return nil
}
