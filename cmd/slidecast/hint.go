package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/alnah/go-slidecast"
	"github.com/alnah/go-slidecast/internal/config"
	"github.com/alnah/go-slidecast/internal/hints"
)

// withHint appends an actionable hint to err when one applies.
// The result still matches err with errors.Is.
func withHint(err error, cfg *config.Config) error {
	if err == nil {
		return nil
	}
	hint := hintFor(err, cfg)
	if hint == "" {
		return err
	}
	return fmt.Errorf("%w%s", err, hint)
}

func hintFor(err error, cfg *config.Config) string {
	switch {
	case errors.Is(err, slidecast.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, slidecast.ErrEncoderNotFound):
		return hints.ForEncoderNotFound()
	case errors.Is(err, slidecast.ErrTransitionTooLong):
		return hints.ForTransitionTooLong()
	case errors.Is(err, slidecast.ErrAudioDownload):
		return hints.ForAudioDownload()
	case errors.Is(err, slidecast.ErrTemplateNotFound):
		return hints.ForTemplateNotFound(templateNames(cfg))
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}

// templateNames lists templates for a not-found hint. Errors yield no names.
func templateNames(cfg *config.Config) []string {
	var basePath string
	if cfg != nil {
		basePath = cfg.Assets.BasePath
	}
	store, err := slidecast.NewAssetStore(basePath)
	if err != nil {
		return nil
	}
	names, err := store.Names()
	if err != nil {
		return nil
	}
	return names
}
