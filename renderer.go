package slidecast

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"

	"github.com/alnah/go-slidecast/internal/assets"
	"github.com/alnah/go-slidecast/internal/browser"
	"github.com/alnah/go-slidecast/internal/fileutil"
	"github.com/alnah/go-slidecast/internal/metrics"
	"github.com/alnah/go-slidecast/internal/pipeline"
)

// frameRenderer rasterizes a substituted document to PNG. It is the seam
// that lets engine tests run without a browser.
type frameRenderer interface {
	Render(ctx context.Context, req frameRequest) ([]byte, error)
	Close() error
}

// fontLoader supplies the fonts inlined into every document.
type fontLoader interface {
	LoadFonts() ([]assets.Font, error)
}

// frameRequest is one rasterization. HTML and CSS are final.
type frameRequest struct {
	HTML   string
	CSS    string
	Width  int
	Height int
	Scale  float64
	Dir    string // where the document file is written ("" = os.TempDir)
}

// Compile-time interface checks
var (
	_ frameRenderer = (*rodRenderer)(nil)
	_ fontLoader    = (*assets.Resolver)(nil)
)

const (
	// pageCloseTimeout bounds page teardown after the render context is done.
	pageCloseTimeout = 5 * time.Second
	// networkQuiet is how long the page must have no request in flight.
	networkQuiet = 500 * time.Millisecond
)

// rodRenderer implements frameRenderer with a shared headless Chrome.
// Every render opens and closes its own page.
type rodRenderer struct {
	session *browser.Session
	fonts   fontLoader
	timeout time.Duration
	logger  zerolog.Logger

	fontOnce  sync.Once
	fontFaces []pipeline.FontFace
}

// newRodRenderer creates a rodRenderer. No browser starts until the first Render.
func newRodRenderer(session *browser.Session, fonts fontLoader, timeout time.Duration, logger zerolog.Logger) *rodRenderer {
	return &rodRenderer{
		session: session,
		fonts:   fonts,
		timeout: timeout,
		logger:  logger,
	}
}

// Close shuts the browser down.
func (r *rodRenderer) Close() error {
	return r.session.Shutdown()
}

// Render wraps req in the document shell, loads it in a fresh page sized
// to req.Width x req.Height at req.Scale, waits for the load event and a
// quiet network, and captures exactly that region.
func (r *rodRenderer) Render(ctx context.Context, req frameRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	png, err := r.render(ctx, req)
	metrics.RecordFrame(time.Since(start), metrics.Outcome(err, ctx.Err()))
	return png, err
}

func (r *rodRenderer) render(ctx context.Context, req frameRequest) ([]byte, error) {
	doc := pipeline.BuildDocument(pipeline.Document{
		HTML:   req.HTML,
		CSS:    req.CSS,
		Fonts:  r.loadFonts(),
		Width:  req.Width,
		Height: req.Height,
	})

	path, cleanup, err := fileutil.WriteTempFile(req.Dir, doc, "html")
	if err != nil {
		return nil, fmt.Errorf("writing document: %w", err)
	}
	defer cleanup()

	b, err := r.session.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	// Wait for page to load with timeout from context or default
	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	pageCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	page, err := b.Context(pageCtx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), pageCloseTimeout)
		defer closeCancel()
		if err := page.Context(closeCtx).Close(); err != nil {
			r.logger.Debug().Err(err).Msg("closing page")
		}
	}()

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             req.Width,
		Height:            req.Height,
		DeviceScaleFactor: req.Scale,
	}); err != nil {
		return nil, fmt.Errorf("%w: setting viewport: %v", ErrPageCreate, err)
	}

	// Requests are tracked by ID, so nothing from about:blank can end the
	// idle wait. Images and fonts count: they are part of the frame.
	waitRequests := page.WaitRequestIdle(networkQuiet, nil, nil, []proto.NetworkResourceType{
		proto.NetworkResourceTypeWebSocket,
		proto.NetworkResourceTypeEventSource,
	})
	if err := page.Navigate(documentURL(path)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	// Navigate returns once the document is committed, so this waits for
	// its load event and not the blank page's.
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPageLoad, loadErr(pageCtx, err))
	}
	waitRequests()
	if err := pageCtx.Err(); err != nil {
		return nil, fmt.Errorf("%w: waiting for network idle: %w", ErrPageLoad, err)
	}

	// Inlined fonts decode asynchronously.
	if _, err := page.Eval(`() => document.fonts.ready.then(() => true)`); err != nil {
		return nil, fmt.Errorf("%w: waiting for fonts: %v", ErrPageLoad, err)
	}

	png, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
		Clip: &proto.PageViewport{
			X:      0,
			Y:      0,
			Width:  float64(req.Width),
			Height: float64(req.Height),
			Scale:  1,
		},
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrCapture, err)
	}

	return png, nil
}

// loadFonts reads the bundled fonts once. Failure is not fatal: the page
// falls back to the browser's own fonts.
func (r *rodRenderer) loadFonts() []pipeline.FontFace {
	r.fontOnce.Do(func() {
		if r.fonts == nil {
			return
		}
		fonts, err := r.fonts.LoadFonts()
		if err != nil {
			r.logger.Warn().Err(err).Msg("bundled fonts unavailable, using browser defaults")
			return
		}
		faces := make([]pipeline.FontFace, len(fonts))
		for i, f := range fonts {
			faces[i] = pipeline.FontFace(f)
		}
		r.fontFaces = faces
	})
	return r.fontFaces
}

// loadErr prefers the context error so deadlines stay detectable with errors.Is.
func loadErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

// documentURL turns a local path into a file:// URL.
func documentURL(path string) string {
	p := filepath.ToSlash(path)
	if p != "" && p[0] != '/' {
		p = "/" + p // Windows drive letter
	}
	return "file://" + p
}
