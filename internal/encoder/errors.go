package encoder

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for encoder operations.
var (
	ErrNotFound          = errors.New("video encoder not available")
	ErrEncode            = errors.New("video encoding failed")
	ErrNoFrames          = errors.New("composition has no frames")
	ErrInvalidDuration   = errors.New("invalid frame duration")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrTransitionTooLong = errors.New("transition duration must be shorter than every slide")
	ErrInvalidOutput     = errors.New("invalid output settings")
)

// ExitError reports an encoder run that exited non-zero or timed out.
// Stderr holds the tail of the encoder's diagnostic output.
type ExitError struct {
	Binary   string
	Args     []string
	ExitCode int
	Stderr   string
	TimedOut bool
}

// Error implements error.
func (e *ExitError) Error() string {
	var b strings.Builder
	if e.TimedOut {
		fmt.Fprintf(&b, "%s timed out", e.Binary)
	} else {
		fmt.Fprintf(&b, "%s exited with status %d", e.Binary, e.ExitCode)
	}
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	}
	return b.String()
}

// Unwrap lets errors.Is(err, ErrEncode) match.
func (e *ExitError) Unwrap() error { return ErrEncode }
