package main

import (
	"context"
	"fmt"

	"github.com/alnah/go-slidecast/internal/log"
	"github.com/alnah/go-slidecast/internal/server"
)

// runServe serves the HTTP API until ctx is canceled.
func runServe(ctx context.Context, args []string, env *Environment) (err error) {
	flags, positional, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return flagError(err)
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: serve takes no arguments", ErrUsage)
	}

	cfg, err := loadConfig(flags.common, loadEnvConfig())
	if err != nil {
		return err
	}
	defer func() { err = withHint(err, cfg) }()
	mergeEngineFlags(flags.engine, cfg)
	if flags.addr != "" {
		cfg.Server.Addr = flags.addr
	}
	if flags.rateLimit >= 0 {
		cfg.Server.RateLimit = flags.rateLimit
	}
	if flags.maxBodyBytes != 0 {
		cfg.Server.MaxBodyBytes = flags.maxBodyBytes
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	setupLogging(cfg, flags.common, env.Stderr)

	engine, err := env.NewEngine(engineOptions(cfg)...)
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close() }()

	srv := server.New(engine, cfg.Server, log.WithComponent("server"),
		server.WithVideoDefaults(videoDefaults(cfg.Video)))
	return srv.ListenAndServe(ctx)
}
