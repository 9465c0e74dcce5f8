package encoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/alnah/go-slidecast/internal/process"
)

// commandContext is swapped in tests to run a helper process instead of ffmpeg.
var commandContext = exec.CommandContext

// Result is the captured outcome of one encoder invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes the encoder with args, bounded by the configured timeout.
// Output streams are captured up to the configured size (the tail is kept).
// A non-zero exit is returned as *ExitError with the captured stderr.
func (e *Encoder) Run(ctx context.Context, args []string) (Result, error) {
	return e.run(ctx, e.timeout, args)
}

func (e *Encoder) run(ctx context.Context, timeout time.Duration, args []string) (Result, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stdout := newTailBuffer(e.maxOutput)
	stderr := newTailBuffer(e.maxOutput)

	cmd := commandContext(runCtx, e.binary, args...) //nolint:gosec
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay
	process.Isolate(cmd)
	cmd.Cancel = process.KillTree(cmd)

	err := cmd.Run()
	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode(cmd),
	}
	if err == nil {
		return res, nil
	}

	// Parent cancellation is the caller's decision, not an encoder failure.
	if ctx.Err() != nil {
		return res, fmt.Errorf("%w: %w", ErrEncode, ctx.Err())
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return res, &ExitError{Binary: e.binary, Args: args, ExitCode: res.ExitCode, Stderr: res.Stderr, TimedOut: true}
	}
	if errors.Is(err, exec.ErrNotFound) {
		return res, fmt.Errorf("%w: %s: %v", ErrNotFound, e.binary, err)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return res, &ExitError{Binary: e.binary, Args: args, ExitCode: res.ExitCode, Stderr: res.Stderr}
	}
	return res, fmt.Errorf("%w: %v", ErrEncode, err)
}

// waitDelay bounds how long Wait blocks on output pipes after the process is killed.
const waitDelay = 5 * time.Second

// exitCode returns the process exit status, or -1 if it never ran.
func exitCode(cmd *exec.Cmd) int {
	if cmd.ProcessState == nil {
		return -1
	}
	return cmd.ProcessState.ExitCode()
}

// tailBuffer is an io.Writer that keeps only the last max bytes written.
type tailBuffer struct {
	mu        sync.Mutex
	buf       []byte
	max       int
	truncated bool
}

func newTailBuffer(max int) *tailBuffer {
	if max <= 0 {
		max = DefaultMaxOutput
	}
	return &tailBuffer{max: max}
}

// Write never fails; excess output drops the oldest bytes.
func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(p)
	if n >= t.max {
		t.buf = append(t.buf[:0], p[n-t.max:]...)
		t.truncated = true
		return n, nil
	}
	if over := len(t.buf) + n - t.max; over > 0 {
		t.buf = t.buf[over:]
		t.truncated = true
	}
	t.buf = append(t.buf, p...)
	return n, nil
}

// String returns the captured output, marking dropped leading bytes.
func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := string(bytes.ToValidUTF8(t.buf, nil))
	if t.truncated {
		return "[...] " + strings.TrimLeft(s, "\n")
	}
	return s
}
