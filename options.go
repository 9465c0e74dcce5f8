package slidecast

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Option configures an Engine.
type Option func(*Engine)

// engineConfig holds internal configuration for Engine.
type engineConfig struct {
	timeout        time.Duration
	browserBin     string
	assetPath      string
	workers        int
	workspaceRoot  string
	encoderBinary  string
	encoderTimeout time.Duration
	encoderOutput  int
	audioMaxBytes  int64
	httpClient     *http.Client
}

// defaultTimeout bounds one frame render when no timeout is specified.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the per-frame render timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("slidecast: WithTimeout duration must be positive")
	}
	return func(e *Engine) {
		e.cfg.timeout = d
	}
}

// WithBrowserBin sets the Chrome binary. Empty keeps ROD_BROWSER_BIN or
// the go-rod managed browser.
func WithBrowserBin(bin string) Option {
	return func(e *Engine) {
		e.cfg.browserBin = bin
	}
}

// WithAssetPath layers a directory of templates and fonts over the
// embedded assets. Ignored when WithTemplateStore is also given, except
// for fonts.
func WithAssetPath(path string) Option {
	return func(e *Engine) {
		e.cfg.assetPath = path
	}
}

// WithTemplateStore sets where template references are resolved.
func WithTemplateStore(store TemplateStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithWorkers sets how many slides of one job render concurrently.
// Zero or negative selects ResolveWorkers' automatic size.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.cfg.workers = n
	}
}

// WithWorkspaceRoot sets the directory job workspaces are created in.
// Empty uses os.TempDir().
func WithWorkspaceRoot(dir string) Option {
	return func(e *Engine) {
		e.cfg.workspaceRoot = dir
	}
}

// WithEncoder sets the ffmpeg binary name or path.
func WithEncoder(binary string) Option {
	return func(e *Engine) {
		e.cfg.encoderBinary = binary
	}
}

// WithEncoderTimeout sets the wall-clock limit for one encode.
func WithEncoderTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.cfg.encoderTimeout = d
	}
}

// WithEncoderMaxOutput caps captured encoder output per stream.
func WithEncoderMaxOutput(n int) Option {
	return func(e *Engine) {
		e.cfg.encoderOutput = n
	}
}

// WithAudioMaxBytes caps downloaded narration size.
func WithAudioMaxBytes(n int64) Option {
	return func(e *Engine) {
		e.cfg.audioMaxBytes = n
	}
}

// WithHTTPClient sets the client used to download narration.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Engine) {
		e.cfg.httpClient = c
	}
}

// WithLogger sets the engine's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}
