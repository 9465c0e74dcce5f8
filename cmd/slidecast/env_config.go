package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-slidecast/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides container-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // SLIDECAST_CONFIG: config file name or path
	Timeout    time.Duration // SLIDECAST_TIMEOUT: per-frame render timeout
	Workers    int           // SLIDECAST_WORKERS: slides rendered in parallel
	FFmpeg     string        // SLIDECAST_FFMPEG: ffmpeg binary
	AssetPath  string        // SLIDECAST_ASSET_PATH: custom templates and fonts
	Workspace  string        // SLIDECAST_WORKSPACE: job directory root
	Addr       string        // SLIDECAST_ADDR: serve listen address
	LogLevel   string        // SLIDECAST_LOG_LEVEL: trace, debug, info, warn, error
	LogFormat  string        // SLIDECAST_LOG_FORMAT: console or json
}

// knownEnvVars lists valid SLIDECAST_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"SLIDECAST_CONFIG":     true,
	"SLIDECAST_TIMEOUT":    true,
	"SLIDECAST_WORKERS":    true,
	"SLIDECAST_FFMPEG":     true,
	"SLIDECAST_ASSET_PATH": true,
	"SLIDECAST_WORKSPACE":  true,
	"SLIDECAST_ADDR":       true,
	"SLIDECAST_LOG_LEVEL":  true,
	"SLIDECAST_LOG_FORMAT": true,
	"SLIDECAST_CONTAINER":  true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
// Unparseable durations and counts are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("SLIDECAST_CONFIG"),
		FFmpeg:     os.Getenv("SLIDECAST_FFMPEG"),
		AssetPath:  os.Getenv("SLIDECAST_ASSET_PATH"),
		Workspace:  os.Getenv("SLIDECAST_WORKSPACE"),
		Addr:       os.Getenv("SLIDECAST_ADDR"),
		LogLevel:   os.Getenv("SLIDECAST_LOG_LEVEL"),
		LogFormat:  os.Getenv("SLIDECAST_LOG_FORMAT"),
	}

	if timeout := os.Getenv("SLIDECAST_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv("SLIDECAST_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars prints warnings for unrecognized SLIDECAST_* variables.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "SLIDECAST_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Environment variables override the config file; CLI flags are applied
// afterwards and override both.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Timeout > 0 {
		cfg.Browser.Timeout = env.Timeout
	}
	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}
	if env.FFmpeg != "" {
		cfg.Encoder.Binary = env.FFmpeg
	}
	if env.AssetPath != "" {
		cfg.Assets.BasePath = env.AssetPath
	}
	if env.Workspace != "" {
		cfg.Workspace.Root = env.Workspace
	}
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}
}
