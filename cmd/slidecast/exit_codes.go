package main

import (
	"errors"
	"os"

	"github.com/alnah/go-slidecast"
	"github.com/alnah/go-slidecast/internal/config"
)

// Exit codes for the slidecast CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful render
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, job, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
	ExitEncoder = 5 // ffmpeg missing or failed, narration unavailable
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, slidecast.ErrBrowserConnect) ||
		errors.Is(err, slidecast.ErrPageCreate) ||
		errors.Is(err, slidecast.ErrPageLoad) ||
		errors.Is(err, slidecast.ErrCapture) {
		return ExitBrowser
	}

	// Encoder errors (exit 5)
	if errors.Is(err, slidecast.ErrEncoderNotFound) ||
		errors.Is(err, slidecast.ErrEncode) ||
		errors.Is(err, slidecast.ErrAudioDownload) {
		return ExitEncoder
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrOutOfRange) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, slidecast.ErrEmptyContent) ||
		errors.Is(err, slidecast.ErrAmbiguousContent) ||
		errors.Is(err, slidecast.ErrTemplateNotFound) ||
		errors.Is(err, slidecast.ErrInvalidTemplate) ||
		errors.Is(err, slidecast.ErrNoSlides) ||
		errors.Is(err, slidecast.ErrTooManySlides) ||
		errors.Is(err, slidecast.ErrInvalidDuration) ||
		errors.Is(err, slidecast.ErrInvalidTransition) ||
		errors.Is(err, slidecast.ErrTransitionTooLong) ||
		errors.Is(err, slidecast.ErrInvalidDimensions) ||
		errors.Is(err, slidecast.ErrInvalidScale) ||
		errors.Is(err, slidecast.ErrInvalidFPS) ||
		errors.Is(err, slidecast.ErrInvalidAssetPath) {
		return ExitUsage
	}

	return ExitGeneral
}
