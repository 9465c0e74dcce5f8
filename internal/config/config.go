// Package config loads and validates slidecast configuration files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-slidecast/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrOutOfRange      = errors.New("value out of range")
	ErrInvalidValue    = errors.New("invalid value")
)

// Limits enforced by Validate.
const (
	MaxPathLength  = 4096
	MaxAddrLength  = 256
	MaxDimension   = 8192
	MaxFPS         = 120
	MaxScale       = 4.0
	MaxWorkers     = 64
	MaxTransition  = 10.0 // seconds
	MaxOutputBytes = 64 << 20
)

// AppName names the user config directory.
const AppName = "slidecast"

// Config holds all configuration for the CLI and the HTTP server.
// Zero values mean "use the library default".
type Config struct {
	Browser   BrowserConfig   `yaml:"browser"`
	Encoder   EncoderConfig   `yaml:"encoder"`
	Video     VideoConfig     `yaml:"video"`
	Audio     AudioConfig     `yaml:"audio"`
	Assets    AssetsConfig    `yaml:"assets"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	Workers   int             `yaml:"workers"` // slide rasterization fan-out (0 = auto)
	Log       LogConfig       `yaml:"log"`
	Server    ServerConfig    `yaml:"server"`
}

// BrowserConfig defines headless Chrome options.
type BrowserConfig struct {
	Bin     string        `yaml:"bin"`     // Chrome binary (empty = ROD_BROWSER_BIN or auto-download)
	Timeout time.Duration `yaml:"timeout"` // per-frame render timeout
}

// EncoderConfig defines ffmpeg options.
type EncoderConfig struct {
	Binary         string        `yaml:"binary"`         // default "ffmpeg"
	Timeout        time.Duration `yaml:"timeout"`        // per-encode wall clock
	MaxOutputBytes int           `yaml:"maxOutputBytes"` // captured stdout/stderr per stream
}

// VideoConfig holds defaults applied to jobs that leave fields unset.
type VideoConfig struct {
	Width              int      `yaml:"width"`
	Height             int      `yaml:"height"`
	FPS                int      `yaml:"fps"`
	Transition         string   `yaml:"transition"`         // "fade" or "none"
	TransitionDuration *float64 `yaml:"transitionDuration"` // seconds; explicit 0 selects concat
	Scale              float64  `yaml:"scale"`
}

// AudioConfig defines narration download limits.
type AudioConfig struct {
	MaxBytes int64 `yaml:"maxBytes"`
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = embedded templates only
}

// WorkspaceConfig defines where job directories are created.
type WorkspaceConfig struct {
	Root string `yaml:"root"` // Empty = os.TempDir()
}

// LogConfig defines logging output.
type LogConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

// ServerConfig defines the HTTP surface.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	RateLimit    int           `yaml:"rateLimit"`    // render requests per minute per client (0 = unlimited)
	MaxBodyBytes int64         `yaml:"maxBodyBytes"` // request body cap
	WriteTimeout time.Duration `yaml:"writeTimeout"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "console"},
		Server: ServerConfig{
			Addr:         ":8080",
			RateLimit:    30,
			MaxBodyBytes: 1 << 20,
			WriteTimeout: 10 * time.Minute,
		},
	}
}

// Validate checks bounds and enumerations. Called by LoadConfig and
// again by the CLI after env and flag overrides are applied.
func (c *Config) Validate() error {
	if err := validateFieldLength("browser.bin", c.Browser.Bin, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("encoder.binary", c.Encoder.Binary, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("workspace.root", c.Workspace.Root, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}

	checks := []struct {
		field string
		ok    bool
		value any
	}{
		{"browser.timeout", c.Browser.Timeout >= 0, c.Browser.Timeout},
		{"encoder.timeout", c.Encoder.Timeout >= 0, c.Encoder.Timeout},
		{"encoder.maxOutputBytes", c.Encoder.MaxOutputBytes >= 0 && c.Encoder.MaxOutputBytes <= MaxOutputBytes, c.Encoder.MaxOutputBytes},
		{"video.width", c.Video.Width >= 0 && c.Video.Width <= MaxDimension, c.Video.Width},
		{"video.height", c.Video.Height >= 0 && c.Video.Height <= MaxDimension, c.Video.Height},
		{"video.fps", c.Video.FPS >= 0 && c.Video.FPS <= MaxFPS, c.Video.FPS},
		{"video.scale", c.Video.Scale >= 0 && c.Video.Scale <= MaxScale, c.Video.Scale},
		{"audio.maxBytes", c.Audio.MaxBytes >= 0, c.Audio.MaxBytes},
		{"workers", c.Workers >= 0 && c.Workers <= MaxWorkers, c.Workers},
		{"server.rateLimit", c.Server.RateLimit >= 0, c.Server.RateLimit},
		{"server.maxBodyBytes", c.Server.MaxBodyBytes >= 0, c.Server.MaxBodyBytes},
		{"server.writeTimeout", c.Server.WriteTimeout >= 0, c.Server.WriteTimeout},
	}
	for _, chk := range checks {
		if !chk.ok {
			return fmt.Errorf("%w: %s = %v", ErrOutOfRange, chk.field, chk.value)
		}
	}

	if d := c.Video.TransitionDuration; d != nil && (*d < 0 || *d > MaxTransition) {
		return fmt.Errorf("%w: video.transitionDuration = %v (0 to %v)", ErrOutOfRange, *d, MaxTransition)
	}

	switch strings.ToLower(c.Video.Transition) {
	case "", "fade", "none":
	default:
		return fmt.Errorf("%w: video.transition = %q (must be fade or none)", ErrInvalidValue, c.Video.Transition)
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "trace", "debug", "info", "warn", "error", "disabled":
	default:
		return fmt.Errorf("%w: log.level = %q", ErrInvalidValue, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: log.format = %q (must be console or json)", ErrInvalidValue, c.Log.Format)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Unset fields keep DefaultConfig values. No silent fallback on a missing file.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, {UserConfigDir}/slidecast/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, AppName, name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
