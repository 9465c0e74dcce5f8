package slidecast

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-slidecast/internal/assets"
	"github.com/alnah/go-slidecast/internal/audio"
	"github.com/alnah/go-slidecast/internal/browser"
	"github.com/alnah/go-slidecast/internal/encoder"
	"github.com/alnah/go-slidecast/internal/log"
	"github.com/alnah/go-slidecast/internal/metrics"
	"github.com/alnah/go-slidecast/internal/pipeline"
	"github.com/alnah/go-slidecast/internal/workspace"
)

// videoEncoder is the part of the encoder the engine drives. It is the
// seam that lets engine tests run without ffmpeg.
type videoEncoder interface {
	Probe(ctx context.Context) (string, error)
	Compose(ctx context.Context, c encoder.Composition) (encoder.Strategy, error)
}

// Compile-time interface checks
var _ videoEncoder = (*encoder.Encoder)(nil)

// outputName is the encoded file inside a job workspace.
const outputName = "output.mp4"

// maxLoggedStderr bounds the encoder diagnostics copied into a log entry.
const maxLoggedStderr = 4 << 10

// Engine renders templates to images and slide sequences to videos.
// Create with NewEngine, and Close when done. Safe for concurrent use;
// all renders share one browser.
type Engine struct {
	cfg      engineConfig
	store    TemplateStore
	renderer frameRenderer
	encoder  videoEncoder
	logger   zerolog.Logger
	workers  int

	mu     sync.RWMutex
	closed bool
}

// NewEngine creates an Engine with default configuration.
// No browser or encoder process starts until the first render.
// Returns an error if the asset path is invalid.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		cfg:    engineConfig{timeout: defaultTimeout},
		logger: log.WithComponent("engine"),
	}

	for _, opt := range opts {
		opt(e)
	}

	resolver, err := assets.NewResolver(e.cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}

	if e.store == nil {
		e.store = newAssetStore(resolver)
	}

	// Create renderer and encoder if not injected (e.g., by tests)
	if e.renderer == nil {
		session := browser.NewSession(browser.WithBin(e.cfg.browserBin))
		e.renderer = newRodRenderer(session, resolver, e.cfg.timeout, e.logger)
	}
	if e.encoder == nil {
		e.encoder = encoder.New(
			encoder.WithBinary(e.cfg.encoderBinary),
			encoder.WithTimeout(e.cfg.encoderTimeout),
			encoder.WithMaxOutput(e.cfg.encoderOutput),
		)
	}

	e.workers = ResolveWorkers(e.cfg.workers)
	return e, nil
}

// Close releases the browser. Waits for in-flight renders; later calls
// to RenderImage or RenderVideo return ErrClosed. Idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.renderer.Close()
}

// Templates lists the templates of the configured store.
func (e *Engine) Templates(ctx context.Context) ([]Template, error) {
	lister, ok := e.store.(TemplateLister)
	if !ok {
		return nil, errors.New("template store cannot list templates")
	}
	return lister.Templates(ctx)
}

// CheckEncoder probes the encoder and returns its version line.
func (e *Engine) CheckEncoder(ctx context.Context) (string, error) {
	version, err := e.encoder.Probe(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %v", ErrEncoderNotFound, err)
	}
	return version, nil
}

// RenderImage renders one request to PNG.
// The image is Width x Height CSS pixels at Scale device pixels each.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (e *Engine) RenderImage(ctx context.Context, req RenderRequest) (png []byte, err error) {
	done := metrics.StartJob(metrics.KindImage)
	defer func() { done(metrics.Outcome(err, ctx.Err())) }()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, ErrClosed
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := e.resolveContent(ctx, req.Template, req.Values, req.HTML, req.CSS)
	if err != nil {
		return nil, err
	}

	width, height := req.Width, req.Height
	if c.template != nil {
		width = cmp.Or(width, c.template.Width)
		height = cmp.Or(height, c.template.Height)
	}
	scale := req.Scale
	if scale == 0 {
		scale = DefaultScale
	}

	return e.renderer.Render(ctx, frameRequest{
		HTML:   c.html,
		CSS:    c.css,
		Width:  cmp.Or(width, DefaultWidth),
		Height: cmp.Or(height, DefaultHeight),
		Scale:  scale,
	})
}

// RenderVideo renders every slide of job and encodes them into an MP4.
//
// The encoder is probed and every template resolved before any slide is
// rendered, so a missing ffmpeg or template fails fast. Frames, narration
// and output live in a job workspace that is removed on every exit path.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (e *Engine) RenderVideo(ctx context.Context, job VideoJob) (mp4 []byte, err error) {
	done := metrics.StartJob(metrics.KindVideo)
	defer func() { done(metrics.Outcome(err, ctx.Err())) }()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, ErrClosed
	}

	job = job.WithDefaults()
	if err := job.Validate(); err != nil {
		return nil, err
	}

	jobID := uuid.NewString()
	ctx = log.ContextWithJobID(ctx, jobID)
	logger := e.logger.With().Str(log.FieldJobID, jobID).Logger()

	if _, err := e.CheckEncoder(ctx); err != nil {
		return nil, err
	}

	contents, err := e.resolveSlides(ctx, job.Slides)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	logger.Info().
		Int(log.FieldSlides, len(job.Slides)).
		Str(log.FieldResolution, fmt.Sprintf("%dx%d", job.Width, job.Height)).
		Int(log.FieldFPS, job.FPS).
		Msg("video job started")

	err = workspace.With(e.cfg.workspaceRoot, func(ws *workspace.Workspace) error {
		frames, err := e.rasterize(ctx, ws, job, contents)
		if err != nil {
			return err
		}

		audioPath, err := e.acquireAudio(ctx, ws, job)
		if err != nil {
			return err
		}

		comp := encoder.Composition{
			Frames:             frames,
			AudioPath:          audioPath,
			Width:              job.Width,
			Height:             job.Height,
			FPS:                job.FPS,
			Transition:         job.Transition,
			TransitionDuration: *job.TransitionDuration,
			OutputPath:         ws.Path(outputName),
		}
		if err := e.compose(ctx, logger, comp); err != nil {
			return err
		}

		mp4, err = os.ReadFile(comp.OutputPath)
		if err != nil {
			return fmt.Errorf("%w: reading output: %v", ErrEncode, err)
		}

		logger.Info().
			Float64(log.FieldDuration, encoder.ExpectedDuration(comp)).
			Int(log.FieldBytes, len(mp4)).
			Dur("elapsed", time.Since(start)).
			Msg("video job finished")
		return nil
	})
	if err != nil {
		logger.Warn().Err(err).Msg("video job failed")
		return nil, err
	}
	return mp4, nil
}

// content is final, substituted slide markup.
type content struct {
	html     string
	css      string
	template *Template // nil for raw HTML
}

// resolveContent loads the referenced template and substitutes values.
// Raw HTML is always substituted so inline defaults apply without values.
func (e *Engine) resolveContent(ctx context.Context, ref TemplateRef, values map[string]string, html, css string) (content, error) {
	if ref.IsZero() {
		return content{
			html: pipeline.Substitute(html, values),
			css:  pipeline.Substitute(css, values),
		}, nil
	}

	t, err := e.store.Template(ctx, ref)
	if err != nil {
		return content{}, err
	}
	return substitute(t, values), nil
}

func substitute(t *Template, values map[string]string) content {
	merged := t.Resolve(values)
	return content{
		html:     pipeline.Substitute(t.HTML, merged),
		css:      pipeline.Substitute(t.CSS, merged),
		template: t,
	}
}

// resolveSlides resolves every slide before any rendering, loading each
// distinct template once.
func (e *Engine) resolveSlides(ctx context.Context, slides []Slide) ([]content, error) {
	cache := make(map[TemplateRef]*Template)
	out := make([]content, len(slides))
	for i, s := range slides {
		if s.Template.IsZero() {
			c, err := e.resolveContent(ctx, s.Template, s.Values, s.HTML, s.CSS)
			if err != nil {
				return nil, fmt.Errorf("slide %d: %w", i+1, err)
			}
			out[i] = c
			continue
		}

		t, ok := cache[s.Template]
		if !ok {
			var err error
			if t, err = e.store.Template(ctx, s.Template); err != nil {
				return nil, fmt.Errorf("slide %d: %w", i+1, err)
			}
			cache[s.Template] = t
		}
		out[i] = substitute(t, s.Values)
	}
	return out, nil
}

// rasterize renders slides concurrently, at most e.workers at a time.
// Frames are written by index so their order never depends on timing.
func (e *Engine) rasterize(ctx context.Context, ws *workspace.Workspace, job VideoJob, contents []content) ([]encoder.Frame, error) {
	frames := make([]encoder.Frame, len(contents))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, c := range contents {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("slide %d: internal error: %v", i+1, r)
				}
			}()

			png, err := e.renderer.Render(gctx, frameRequest{
				HTML:   c.html,
				CSS:    c.css,
				Width:  job.Width,
				Height: job.Height,
				Scale:  job.Scale,
				Dir:    ws.Dir(),
			})
			if err != nil {
				return fmt.Errorf("slide %d: %w", i+1, err)
			}

			path, err := ws.WriteFile(workspace.FrameName(i), png)
			if err != nil {
				return fmt.Errorf("slide %d: %w", i+1, err)
			}
			frames[i] = encoder.Frame{Path: path, Duration: job.Slides[i].Duration}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return frames, nil
}

// acquireAudio resolves the narration track, downloading it into ws when
// the job names a URL. Returns "" when the job has no audio.
func (e *Engine) acquireAudio(ctx context.Context, ws *workspace.Workspace, job VideoJob) (string, error) {
	if !job.hasAudio() {
		return "", nil
	}

	src := audio.Source{Path: job.AudioPath, URL: job.AudioURL}
	path, err := audio.Acquire(ctx, src, ws.Dir(),
		audio.WithHTTPClient(e.cfg.httpClient),
		audio.WithMaxBytes(e.cfg.audioMaxBytes),
	)
	if src.Path == "" {
		metrics.RecordAudioDownload(metrics.Outcome(err, ctx.Err()))
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %w", ErrAudioDownload, err)
	}
	return path, nil
}

// compose runs the encoder and maps its failures onto package errors.
func (e *Engine) compose(ctx context.Context, logger zerolog.Logger, comp encoder.Composition) error {
	start := time.Now()
	strategy, err := e.encoder.Compose(ctx, comp)
	if strategy != "" {
		metrics.RecordEncode(string(strategy), time.Since(start), metrics.Outcome(err, ctx.Err()))
	}
	if err == nil {
		logger.Debug().
			Str(log.FieldStrategy, string(strategy)).
			Dur("elapsed", time.Since(start)).
			Msg("frames encoded")
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, encoder.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrEncoderNotFound, err)
	}

	var exitErr *encoder.ExitError
	if errors.As(err, &exitErr) {
		logger.Error().
			Str(log.FieldStrategy, string(strategy)).
			Int("exit_code", exitErr.ExitCode).
			Bool("timed_out", exitErr.TimedOut).
			Str(log.FieldStderr, tail(exitErr.Stderr, maxLoggedStderr)).
			Msg("encoder failed")
	}
	return fmt.Errorf("%w: %w", ErrEncode, err)
}

// tail returns at most the last n bytes of s, trimmed.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
