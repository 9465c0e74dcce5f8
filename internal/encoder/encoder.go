// Package encoder composes rendered frames into a video with ffmpeg.
//
// Three strategies are used depending on the frame count and transition:
//
//	single     one frame looped for its duration
//	concat     frames played back to back via the concat demuxer
//	crossfade  frames chained through xfade filters
//
// Every strategy ends in one ffmpeg invocation run with a timeout and
// bounded output capture. Probe checks the binary up front so callers can
// fail before doing expensive rendering work.
package encoder

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Defaults for encoder execution.
const (
	DefaultBinary       = "ffmpeg"
	DefaultTimeout      = 5 * time.Minute
	DefaultProbeTimeout = 5 * time.Second
	DefaultMaxOutput    = 1 << 20 // 1 MiB per stream
)

// Option configures an Encoder.
type Option func(*Encoder)

// WithBinary overrides the ffmpeg binary name or path.
func WithBinary(binary string) Option {
	return func(e *Encoder) {
		if binary != "" {
			e.binary = binary
		}
	}
}

// WithTimeout sets the wall-clock limit for one encode.
func WithTimeout(d time.Duration) Option {
	return func(e *Encoder) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithProbeTimeout sets the limit for the version probe.
func WithProbeTimeout(d time.Duration) Option {
	return func(e *Encoder) {
		if d > 0 {
			e.probeTimeout = d
		}
	}
}

// WithMaxOutput caps the captured bytes per output stream.
func WithMaxOutput(n int) Option {
	return func(e *Encoder) {
		if n > 0 {
			e.maxOutput = n
		}
	}
}

// Encoder wraps the ffmpeg command-line tool.
type Encoder struct {
	binary       string
	timeout      time.Duration
	probeTimeout time.Duration
	maxOutput    int
}

// New creates an Encoder using defaults.
func New(opts ...Option) *Encoder {
	e := &Encoder{
		binary:       DefaultBinary,
		timeout:      DefaultTimeout,
		probeTimeout: DefaultProbeTimeout,
		maxOutput:    DefaultMaxOutput,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Binary returns the configured ffmpeg binary.
func (e *Encoder) Binary() string { return e.binary }

// Probe runs "ffmpeg -version" and returns the first line of its output.
// Any failure is reported as ErrNotFound.
func (e *Encoder) Probe(ctx context.Context) (string, error) {
	res, err := e.run(ctx, e.probeTimeout, []string{"-hide_banner", "-version"})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %s: %v", ErrNotFound, e.binary, err)
	}

	version, _, _ := strings.Cut(strings.TrimSpace(res.Stdout), "\n")
	return strings.TrimSpace(version), nil
}
