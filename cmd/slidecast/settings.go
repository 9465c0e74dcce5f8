package main

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-slidecast"
	"github.com/alnah/go-slidecast/internal/config"
	"github.com/alnah/go-slidecast/internal/hints"
	"github.com/alnah/go-slidecast/internal/log"
)

// loadConfig resolves configuration in priority order:
// CLI flags > environment > config file > defaults.
// Flags are merged by the caller before validateConfig.
func loadConfig(common commonFlags, env *envConfig) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if name := cmp.Or(common.config, env.ConfigPath); name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(userConfigPaths(name)))
			}
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}
	applyEnvConfig(env, cfg)
	return cfg, nil
}

// userConfigPaths is where a named config would be looked up in the
// user config directory.
func userConfigPaths(name string) []string {
	dir, err := os.UserConfigDir()
	if err != nil || strings.ContainsAny(name, `/\`) {
		return nil
	}
	return []string{filepath.Join(dir, config.AppName, name+".yaml")}
}

// validateConfig re-checks cfg once flags are merged.
func validateConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// mergeEngineFlags applies engine flags over cfg (CLI wins).
func mergeEngineFlags(f engineFlags, cfg *config.Config) {
	if f.timeout != 0 {
		cfg.Browser.Timeout = f.timeout
	}
	if f.workers != 0 {
		cfg.Workers = f.workers
	}
	if f.browserBin != "" {
		cfg.Browser.Bin = f.browserBin
	}
	if f.ffmpeg != "" {
		cfg.Encoder.Binary = f.ffmpeg
	}
	if f.assetPath != "" {
		cfg.Assets.BasePath = f.assetPath
	}
	if f.workspace != "" {
		cfg.Workspace.Root = f.workspace
	}
}

// setupLogging configures the process logger. --quiet and --verbose
// override the configured level.
func setupLogging(cfg *config.Config, common commonFlags, w io.Writer) {
	level := cfg.Log.Level
	switch {
	case common.quiet:
		level = "error"
	case common.verbose:
		level = "debug"
	}
	log.Configure(log.Config{Level: level, Format: cfg.Log.Format, Output: w})
}

// engineOptions translates cfg into engine options.
func engineOptions(cfg *config.Config) []slidecast.Option {
	opts := []slidecast.Option{
		slidecast.WithBrowserBin(cfg.Browser.Bin),
		slidecast.WithAssetPath(cfg.Assets.BasePath),
		slidecast.WithWorkers(cfg.Workers),
		slidecast.WithWorkspaceRoot(cfg.Workspace.Root),
		slidecast.WithEncoder(cfg.Encoder.Binary),
		slidecast.WithEncoderTimeout(cfg.Encoder.Timeout),
		slidecast.WithEncoderMaxOutput(cfg.Encoder.MaxOutputBytes),
		slidecast.WithAudioMaxBytes(cfg.Audio.MaxBytes),
		slidecast.WithLogger(log.WithComponent("engine")),
	}
	if cfg.Browser.Timeout > 0 {
		opts = append(opts, slidecast.WithTimeout(cfg.Browser.Timeout))
	}
	return opts
}

// videoDefaults turns the config's video section into a job template
// for VideoJob.Inherit.
func videoDefaults(v config.VideoConfig) slidecast.VideoJob {
	return slidecast.VideoJob{
		Width:              v.Width,
		Height:             v.Height,
		FPS:                v.FPS,
		Transition:         v.Transition,
		TransitionDuration: v.TransitionDuration,
		Scale:              v.Scale,
	}
}
