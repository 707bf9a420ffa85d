package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/personakit/personakit/pkg/core"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultDocument is the document used when nothing else names one.
	DefaultDocument = "bot_profiles.json"
	// DefaultConfigFile is looked up from the working directory upwards.
	DefaultConfigFile = "personakit.yaml"
	// EnvDocument overrides the configured document path.
	EnvDocument = "PERSONAKIT_FILE"
)

// FileConfig is the optional YAML configuration file.
type FileConfig struct {
	Document    string `yaml:"document"`
	Adapter     string `yaml:"adapter"`
	Versioning  *bool  `yaml:"versioning"`
	ReadOnly    bool   `yaml:"read_only"`
	ContextFile string `yaml:"context_file"`
	StatusFile  string `yaml:"status_file"`
	Locale      string `yaml:"locale"`
	LogLevel    string `yaml:"log_level"`

	// dir is the directory of the loaded file; relative paths resolve against it.
	dir string
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	switch cfg.Adapter {
	case "", AdapterFS, AdapterSQLite:
	default:
		return nil, fmt.Errorf("config %s: unknown adapter %q", path, cfg.Adapter)
	}
	if _, err := core.LabelsFor(cfg.Locale); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	cfg.dir = filepath.Dir(path)
	return &cfg, nil
}

// DiscoverConfig loads the nearest personakit.yaml above startDir. It
// returns (nil, nil) when there is none.
func DiscoverConfig(startDir string) (*FileConfig, error) {
	root, err := FindRoot(startDir)
	if errors.Is(err, ErrRootNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return LoadConfig(filepath.Join(root, DefaultConfigFile))
}

// ResolveDocument picks the document path: flag, then the PERSONAKIT_FILE
// environment variable, then the config file, then DefaultDocument.
func ResolveDocument(flag string, cfg *FileConfig) string {
	if flag != "" {
		return flag
	}
	if env := strings.TrimSpace(os.Getenv(EnvDocument)); env != "" {
		return env
	}
	if cfg != nil && cfg.Document != "" {
		return cfg.path(cfg.Document)
	}
	return DefaultDocument
}

func (c *FileConfig) path(p string) string {
	if filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// Options translates the file into functional options. Explicit options
// passed after these take precedence.
func (c *FileConfig) Options() []Option {
	if c == nil {
		return nil
	}
	var opts []Option
	if c.Adapter != "" {
		opts = append(opts, WithAdapter(c.Adapter))
	}
	if c.Versioning != nil {
		opts = append(opts, WithVersioning(*c.Versioning))
	}
	if c.ReadOnly {
		opts = append(opts, WithReadOnly(true))
	}
	if c.ContextFile != "" {
		opts = append(opts, WithContextFile(c.path(c.ContextFile)))
	}
	if c.StatusFile != "" {
		opts = append(opts, WithStatusFile(c.path(c.StatusFile)))
	}
	if c.Locale != "" {
		opts = append(opts, WithLocale(c.Locale))
	}
	return opts
}

// ParseLogLevel accepts the slog level names, case-insensitively. An empty
// string is info.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
