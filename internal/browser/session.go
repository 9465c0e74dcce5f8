// Package browser owns the shared headless Chrome process used for rendering.
//
// A Session launches Chrome lazily on first Acquire and hands the same
// *rod.Browser to every caller until Shutdown. Callers isolate their work by
// opening their own page; the browser itself is shared.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-slidecast/internal/process"
)

// ErrLaunch is returned when Chrome cannot be started or connected to.
var ErrLaunch = errors.New("failed to launch browser")

// livenessTimeout bounds the connection check in Acquire.
const livenessTimeout = 5 * time.Second

// Launcher starts a browser process and returns its DevTools control URL.
// Kill terminates the process; PID identifies it for process-group cleanup.
type Launcher interface {
	Launch() (string, error)
	Kill()
	PID() int
}

// Option configures a Session.
type Option func(*Session)

// WithBin sets the Chrome binary. Empty keeps the default lookup
// (ROD_BROWSER_BIN, then rod's managed browser).
func WithBin(bin string) Option {
	return func(s *Session) {
		if bin != "" {
			s.bin = bin
		}
	}
}

// WithLauncherFactory replaces the go-rod launcher (for testing).
func WithLauncherFactory(fn func(bin string) Launcher) Option {
	return func(s *Session) {
		if fn != nil {
			s.newLauncher = fn
		}
	}
}

// Session manages one lazily-launched browser shared across renders.
type Session struct {
	mu          sync.Mutex
	bin         string
	browser     *rod.Browser
	launcher    Launcher
	newLauncher func(bin string) Launcher
	connect     func(controlURL string) (*rod.Browser, error)
	check       func(context.Context, *rod.Browser) error
	closeFn     func(*rod.Browser) error
}

// NewSession creates a Session. No browser is started until Acquire.
func NewSession(opts ...Option) *Session {
	s := &Session{
		bin:         os.Getenv("ROD_BROWSER_BIN"),
		newLauncher: newRodLauncher,
		connect:     connectBrowser,
		check:       checkConnection,
		closeFn:     (*rod.Browser).Close,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Acquire returns the running browser if it is still connected, otherwise
// launches a new one. Launch failures are returned as-is; there is no retry.
//
// Other callers may hold the same browser, so it is only replaced when the
// connection is gone. A slow or erroring check keeps the current handle.
func (s *Session) Acquire(ctx context.Context) (*rod.Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browser != nil {
		err := s.check(ctx, s.browser)
		if err == nil {
			return s.browser, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !disconnected(err) {
			return s.browser, nil
		}
		// Disconnected (crash, OOM kill): drop the stale handle and relaunch.
		_ = s.release()
	}

	l := s.newLauncher(s.bin)
	u, err := l.Launch()
	if err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrLaunch, err)
	}

	b, err := s.connect(u)
	if err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrLaunch, err)
	}

	s.browser = b
	s.launcher = l
	return b, nil
}

// Shutdown closes the browser and kills its process tree.
// Safe to call multiple times and on a Session that never launched.
func (s *Session) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.release()
}

// Running reports whether a browser handle is currently held.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.browser != nil
}

// release closes the current browser and launcher. Caller holds s.mu.
func (s *Session) release() error {
	var err error
	if s.browser != nil {
		err = s.closeFn(s.browser)
		s.browser = nil
	}
	if s.launcher != nil {
		if pid := s.launcher.PID(); pid > 0 {
			process.KillProcessGroup(pid)
		}
		s.launcher.Kill()
		s.launcher = nil
	}
	return err
}

// rodLauncher adapts *launcher.Launcher to Launcher.
type rodLauncher struct {
	l *launcher.Launcher
}

// newRodLauncher configures a headless launcher with the sandbox disabled,
// which containers and CI runners require.
func newRodLauncher(bin string) Launcher {
	l := launcher.New().Headless(true).NoSandbox(true)
	if bin != "" {
		l = l.Bin(bin)
	}
	return &rodLauncher{l: l}
}

func (r *rodLauncher) Launch() (string, error) { return r.l.Launch() }
func (r *rodLauncher) Kill()                   { r.l.Kill() }
func (r *rodLauncher) PID() int                { return r.l.PID() }

// connectBrowser attaches rod to a launched browser.
func connectBrowser(controlURL string) (*rod.Browser, error) {
	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, err
	}
	return b, nil
}

// checkConnection issues a cheap CDP call on the browser connection.
func checkConnection(ctx context.Context, b *rod.Browser) error {
	ctx, cancel := context.WithTimeout(ctx, livenessTimeout)
	defer cancel()
	_, err := proto.BrowserGetVersion{}.Call(b.Context(ctx))
	return err
}

// disconnected reports whether a failed check means the connection is gone.
// A protocol error is an answer from the browser, and a timeout only says it
// is busy; anything else comes from the websocket itself.
func disconnected(err error) bool {
	var protoErr *cdp.Error
	if errors.As(err, &protoErr) {
		return false
	}
	return !errors.Is(err, context.DeadlineExceeded)
}
