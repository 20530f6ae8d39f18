// Package config loads the ngc-link settings from flags, environment and an
// optional `.ngc-link.yaml`.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidJobs      = errors.New("jobs must be positive")
	ErrInvalidLogLevel  = errors.New("unknown log level")
	ErrInvalidLogFormat = errors.New("unknown log format")
	ErrInvalidLanguage  = errors.New("unknown language")
	ErrInvalidFileSize  = errors.New("invalid max file size")
	ErrNoExtensions     = errors.New("no file extensions to link")
)

// Default configuration values.
const (
	DefaultJobs        = 4
	DefaultLanguage    = "auto"
	DefaultMaxFileSize = "10MB"
	DefaultLogLevel    = "warn"
	DefaultLogFormat   = "text"
	DefaultConfigName  = ".ngc-link"
	EnvPrefix          = "NGC_LINK"
)

// DefaultExtensions are the files picked up when a directory is linked.
var DefaultExtensions = []string{".js", ".mjs", ".cjs"}

// Config holds all ngc-link settings.
type Config struct {
	Link LinkConfig `mapstructure:"link"`
	Log  LogConfig  `mapstructure:"log"`
}

// LinkConfig controls which files are linked and how.
type LinkConfig struct {
	// OutDir receives the linked files, mirroring their paths. Empty
	// rewrites files in place.
	OutDir     string   `mapstructure:"out_dir"`
	Extensions []string `mapstructure:"extensions"`
	// Language is auto, javascript or typescript
	Language    string `mapstructure:"language"`
	MaxFileSize string `mapstructure:"max_file_size"`
	Report      string `mapstructure:"report"`
	Jobs        int    `mapstructure:"jobs"`
	SourceMap   bool   `mapstructure:"source_map"`
	Diff        bool   `mapstructure:"diff"`

	// MaxFileBytes is MaxFileSize once validated
	MaxFileBytes uint64 `mapstructure:"-"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads the configuration into v, which may already carry bound flags.
// An empty configPath looks for `.ngc-link.yaml` in the working directory
// and the home directory; a missing file is not an error unless it was
// named explicitly.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("link.out_dir", "")
	v.SetDefault("link.extensions", DefaultExtensions)
	v.SetDefault("link.language", DefaultLanguage)
	v.SetDefault("link.max_file_size", DefaultMaxFileSize)
	v.SetDefault("link.report", "")
	v.SetDefault("link.jobs", DefaultJobs)
	v.SetDefault("link.source_map", false)
	v.SetDefault("link.diff", false)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
}

// Validate checks the settings and fills MaxFileBytes.
func (c *Config) Validate() error {
	if c.Link.Jobs <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidJobs, c.Link.Jobs)
	}
	if len(c.Link.Extensions) == 0 {
		return ErrNoExtensions
	}
	switch c.Link.Language {
	case "auto", "javascript", "typescript":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLanguage, c.Link.Language)
	}

	size, err := humanize.ParseBytes(c.Link.MaxFileSize)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidFileSize, c.Link.MaxFileSize, err)
	}
	c.Link.MaxFileBytes = size

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Log.Format)
	}
	return nil
}

// HasExtension reports whether path ends with one of the configured
// extensions.
func (c *LinkConfig) HasExtension(path string) bool {
	for _, ext := range c.Extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
