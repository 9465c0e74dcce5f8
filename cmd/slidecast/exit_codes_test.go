package main

// Notes:
// - exitCodeFor: we test sentinel errors from slidecast, config, and the CLI,
//   plus wrapped errors to verify the errors.Is chain.
// - Exit code constants: we verify Unix conventions and that custom codes
//   stay below 126.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/alnah/go-slidecast"
	"github.com/alnah/go-slidecast/internal/config"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		// Success
		{"nil error", nil, ExitSuccess},

		// Browser errors (exit 4)
		{"browser connect", slidecast.ErrBrowserConnect, ExitBrowser},
		{"page create", slidecast.ErrPageCreate, ExitBrowser},
		{"page load", slidecast.ErrPageLoad, ExitBrowser},
		{"capture", slidecast.ErrCapture, ExitBrowser},
		{"wrapped browser connect", fmt.Errorf("failed: %w", slidecast.ErrBrowserConnect), ExitBrowser},

		// Encoder errors (exit 5)
		{"encoder not found", slidecast.ErrEncoderNotFound, ExitEncoder},
		{"encode", slidecast.ErrEncode, ExitEncoder},
		{"audio download", slidecast.ErrAudioDownload, ExitEncoder},

		// I/O errors (exit 3)
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"read input", ErrReadInput, ExitIO},
		{"write output", ErrWriteOutput, ExitIO},
		{"no input", ErrNoInput, ExitIO},
		{"wrapped file not exist", fmt.Errorf("reading: %w", os.ErrNotExist), ExitIO},

		// Usage/config/validation errors (exit 2)
		{"usage", ErrUsage, ExitUsage},
		{"unsupported shell", ErrUnsupportedShell, ExitUsage},
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"field too long", config.ErrFieldTooLong, ExitUsage},
		{"out of range", config.ErrOutOfRange, ExitUsage},
		{"invalid value", config.ErrInvalidValue, ExitUsage},
		{"empty content", slidecast.ErrEmptyContent, ExitUsage},
		{"ambiguous content", slidecast.ErrAmbiguousContent, ExitUsage},
		{"template not found", slidecast.ErrTemplateNotFound, ExitUsage},
		{"no slides", slidecast.ErrNoSlides, ExitUsage},
		{"too many slides", slidecast.ErrTooManySlides, ExitUsage},
		{"invalid duration", slidecast.ErrInvalidDuration, ExitUsage},
		{"invalid transition", slidecast.ErrInvalidTransition, ExitUsage},
		{"transition too long", slidecast.ErrTransitionTooLong, ExitUsage},
		{"invalid dimensions", slidecast.ErrInvalidDimensions, ExitUsage},
		{"invalid scale", slidecast.ErrInvalidScale, ExitUsage},
		{"invalid fps", slidecast.ErrInvalidFPS, ExitUsage},
		{"invalid asset path", slidecast.ErrInvalidAssetPath, ExitUsage},
		{"wrapped config", fmt.Errorf("invalid configuration: %w", config.ErrOutOfRange), ExitUsage},

		// General errors (exit 1)
		{"unknown error", errors.New("boom"), ExitGeneral},
		{"deadline", context.DeadlineExceeded, ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestExitCodeConstants - Unix conventions
// ---------------------------------------------------------------------------

func TestExitCodeConstants(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 {
		t.Errorf("ExitSuccess = %d, want 0", ExitSuccess)
	}
	if ExitGeneral != 1 {
		t.Errorf("ExitGeneral = %d, want 1", ExitGeneral)
	}
	if ExitUsage != 2 {
		t.Errorf("ExitUsage = %d, want 2", ExitUsage)
	}
	for _, code := range []int{ExitIO, ExitBrowser, ExitEncoder} {
		if code <= ExitUsage || code >= 126 {
			t.Errorf("custom exit code %d outside (2, 126)", code)
		}
	}
}
