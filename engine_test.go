package slidecast

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-slidecast/internal/encoder"
	"github.com/alnah/go-slidecast/internal/log"
)

// ---------------------------------------------------------------------------
// Test doubles
// ---------------------------------------------------------------------------

// recordingRenderer records every frame request and returns the request's
// HTML as the "PNG" so tests can tell frames apart.
type recordingRenderer struct {
	mu       sync.Mutex
	requests []frameRequest
	closed   int

	err     error         // returned for every render
	failOn  string        // HTML substring that triggers err
	delayOn func(string) time.Duration
}

func (r *recordingRenderer) Render(ctx context.Context, req frameRequest) ([]byte, error) {
	r.mu.Lock()
	r.requests = append(r.requests, req)
	r.mu.Unlock()

	if r.delayOn != nil {
		select {
		case <-time.After(r.delayOn(req.HTML)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if r.err != nil && (r.failOn == "" || strings.Contains(req.HTML, r.failOn)) {
		return nil, r.err
	}
	return []byte(req.HTML), nil
}

func (r *recordingRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
	return nil
}

func (r *recordingRenderer) calls() []frameRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]frameRequest(nil), r.requests...)
}

// fakeEncoder records compositions and writes a placeholder output file.
type fakeEncoder struct {
	mu          sync.Mutex
	probeErr    error
	composeErr  error
	panicMsg    string
	probes      int
	comps       []encoder.Composition
	frameBodies [][]string // frame file contents seen at compose time
}

func (f *fakeEncoder) Probe(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probes++
	if f.probeErr != nil {
		return "", f.probeErr
	}
	return "ffmpeg version 7.1", nil
}

func (f *fakeEncoder) Compose(ctx context.Context, c encoder.Composition) (encoder.Strategy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comps = append(f.comps, c)

	bodies := make([]string, len(c.Frames))
	for i, fr := range c.Frames {
		data, err := os.ReadFile(fr.Path)
		if err != nil {
			return "", err
		}
		bodies[i] = string(data)
	}
	f.frameBodies = append(f.frameBodies, bodies)

	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	strategy := encoder.SelectStrategy(c)
	if f.composeErr != nil {
		return strategy, f.composeErr
	}
	return strategy, os.WriteFile(c.OutputPath, []byte("MP4:"+string(strategy)), 0o600)
}

func (f *fakeEncoder) compositions() []encoder.Composition {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]encoder.Composition(nil), f.comps...)
}

func withRenderer(r frameRenderer) Option {
	return func(e *Engine) {
		e.renderer = r
	}
}

func withVideoEncoder(v videoEncoder) Option {
	return func(e *Engine) {
		e.encoder = v
	}
}

var testTemplates = []Template{
	{
		ID:     "tpl-title",
		Name:   "title",
		Width:  1080,
		Height: 1920,
		Fields: []Field{
			{Name: "title", Type: FieldText, Default: "Untitled"},
			{Name: "bg", Type: FieldColor, Default: "#000000"},
		},
		HTML: "<h1>{{title}}</h1>",
		CSS:  "body{background:{{bg}}}",
	},
	{
		ID:     "tpl-wide",
		Name:   "wide",
		Width:  1920,
		Height: 1080,
		HTML:   "<p>{{body|empty}}</p>",
	},
}

type testEngine struct {
	*Engine
	renderer *recordingRenderer
	encoder  *fakeEncoder
	root     string
}

func newTestEngine(t *testing.T, r *recordingRenderer, enc *fakeEncoder, opts ...Option) testEngine {
	t.Helper()

	if r == nil {
		r = &recordingRenderer{}
	}
	if enc == nil {
		enc = &fakeEncoder{}
	}
	store, err := NewMemoryStore(testTemplates...)
	if err != nil {
		t.Fatalf("NewMemoryStore() error = %v", err)
	}
	root := t.TempDir()

	base := []Option{
		withRenderer(r),
		withVideoEncoder(enc),
		WithTemplateStore(store),
		WithWorkspaceRoot(root),
		WithLogger(log.Nop()),
		WithWorkers(4),
	}
	eng, err := NewEngine(append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	t.Cleanup(func() { _ = eng.Close() })

	return testEngine{Engine: eng, renderer: r, encoder: enc, root: root}
}

// assertNoWorkspace fails if any job directory is left under root.
func assertNoWorkspace(t *testing.T, root string) {
	t.Helper()
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("ReadDir(%s) error = %v", root, err)
	}
	if len(entries) != 0 {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("workspace root not empty: %v", names)
	}
}

func floatPtr(f float64) *float64 { return &f }

// ---------------------------------------------------------------------------
// RenderVideo
// ---------------------------------------------------------------------------

func TestRenderVideo_Success(t *testing.T) {
	t.Parallel()

	te := newTestEngine(t, nil, nil)

	out, err := te.RenderVideo(context.Background(), VideoJob{
		Slides: []Slide{
			{Template: TemplateRef{Name: "title"}, Values: map[string]string{"title": "Hello"}, Duration: 5},
			{Template: TemplateRef{ID: "tpl-wide"}, Values: map[string]string{"body": "World"}, Duration: 5},
			{HTML: "<b>raw</b>", CSS: "b{color:red}", Duration: 5},
		},
	})
	if err != nil {
		t.Fatalf("RenderVideo() error = %v", err)
	}
	if string(out) != "MP4:crossfade" {
		t.Errorf("output = %q, want %q", out, "MP4:crossfade")
	}

	comps := te.encoder.compositions()
	if len(comps) != 1 {
		t.Fatalf("Compose called %d times, want 1", len(comps))
	}
	c := comps[0]
	if c.Width != DefaultWidth || c.Height != DefaultHeight || c.FPS != DefaultFPS {
		t.Errorf("composition = %dx%d@%d, want %dx%d@%d", c.Width, c.Height, c.FPS, DefaultWidth, DefaultHeight, DefaultFPS)
	}
	if c.Transition != TransitionFade || c.TransitionDuration != DefaultTransitionDuration {
		t.Errorf("transition = %s/%v, want fade/%v", c.Transition, c.TransitionDuration, DefaultTransitionDuration)
	}
	if c.AudioPath != "" {
		t.Errorf("AudioPath = %q, want empty", c.AudioPath)
	}
	for i, fr := range c.Frames {
		want := []string{"slide-001.png", "slide-002.png", "slide-003.png"}[i]
		if filepath.Base(fr.Path) != want {
			t.Errorf("frame %d path = %s, want %s", i, fr.Path, want)
		}
		if fr.Duration != 5 {
			t.Errorf("frame %d duration = %v, want 5", i, fr.Duration)
		}
	}

	bodies := te.encoder.frameBodies[0]
	wantBodies := []string{"<h1>Hello</h1>", "<p>World</p>", "<b>raw</b>"}
	for i, want := range wantBodies {
		if bodies[i] != want {
			t.Errorf("frame %d content = %q, want %q", i, bodies[i], want)
		}
	}

	// Every frame renders at the job size, not the template's intrinsic size.
	for _, req := range te.renderer.calls() {
		if req.Width != DefaultWidth || req.Height != DefaultHeight || req.Scale != DefaultScale {
			t.Errorf("frame request %dx%d@%v, want %dx%d@%v", req.Width, req.Height, req.Scale, DefaultWidth, DefaultHeight, DefaultScale)
		}
		if req.Dir == "" || !strings.HasPrefix(req.Dir, te.root) {
			t.Errorf("frame request Dir = %q, want inside %q", req.Dir, te.root)
		}
	}

	assertNoWorkspace(t, te.root)
}

func TestRenderVideo_FieldDefaultsAndCSS(t *testing.T) {
	t.Parallel()

	te := newTestEngine(t, nil, nil)

	_, err := te.RenderVideo(context.Background(), VideoJob{
		Slides: []Slide{{Template: TemplateRef{Name: "title"}, Values: map[string]string{"title": ""}, Duration: 2}},
	})
	if err != nil {
		t.Fatalf("RenderVideo() error = %v", err)
	}

	calls := te.renderer.calls()
	if len(calls) != 1 {
		t.Fatalf("renders = %d, want 1", len(calls))
	}
	if calls[0].HTML != "<h1>Untitled</h1>" {
		t.Errorf("HTML = %q, want field default", calls[0].HTML)
	}
	if calls[0].CSS != "body{background:#000000}" {
		t.Errorf("CSS = %q, want field default", calls[0].CSS)
	}
}

func TestRenderVideo_FrameOrderIndependentOfTiming(t *testing.T) {
	t.Parallel()

	// Earlier slides finish last.
	r := &recordingRenderer{delayOn: func(html string) time.Duration {
		switch html {
		case "<i>1</i>":
			return 60 * time.Millisecond
		case "<i>2</i>":
			return 30 * time.Millisecond
		}
		return 0
	}}
	te := newTestEngine(t, r, nil)

	_, err := te.RenderVideo(context.Background(), VideoJob{
		Slides: []Slide{
			{HTML: "<i>1</i>", Duration: 1},
			{HTML: "<i>2</i>", Duration: 2},
			{HTML: "<i>3</i>", Duration: 3},
		},
		Transition: TransitionNone,
	})
	if err != nil {
		t.Fatalf("RenderVideo() error = %v", err)
	}

	comps := te.encoder.compositions()
	bodies := te.encoder.frameBodies[0]
	for i := range 3 {
		want := fmt.Sprintf("<i>%d</i>", i+1)
		if bodies[i] != want {
			t.Errorf("frame %d = %q, want %q", i, bodies[i], want)
		}
		if comps[0].Frames[i].Duration != float64(i+1) {
			t.Errorf("frame %d duration = %v, want %d", i, comps[0].Frames[i].Duration, i+1)
		}
	}
}

func TestRenderVideo_TransitionSelection(t *testing.T) {
	t.Parallel()

	slides := []Slide{{HTML: "a", Duration: 2}, {HTML: "b", Duration: 2}}

	tests := []struct {
		name         string
		job          VideoJob
		wantStrategy string
		wantDuration float64
	}{
		{
			name:         "default fade",
			job:          VideoJob{Slides: slides},
			wantStrategy: "MP4:crossfade",
			wantDuration: 0.5,
		},
		{
			name:         "explicit zero duration concatenates",
			job:          VideoJob{Slides: slides, TransitionDuration: floatPtr(0)},
			wantStrategy: "MP4:concat",
			wantDuration: 0,
		},
		{
			name:         "negative duration concatenates",
			job:          VideoJob{Slides: slides, TransitionDuration: floatPtr(-0.5)},
			wantStrategy: "MP4:concat",
			wantDuration: -0.5,
		},
		{
			name:         "negative duration with none concatenates",
			job:          VideoJob{Slides: slides, Transition: TransitionNone, TransitionDuration: floatPtr(-0.5)},
			wantStrategy: "MP4:concat",
			wantDuration: -0.5,
		},
		{
			name:         "none concatenates",
			job:          VideoJob{Slides: slides, Transition: "NONE"},
			wantStrategy: "MP4:concat",
			wantDuration: 0.5,
		},
		{
			name:         "single slide",
			job:          VideoJob{Slides: slides[:1]},
			wantStrategy: "MP4:single",
			wantDuration: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			te := newTestEngine(t, nil, nil)
			out, err := te.RenderVideo(context.Background(), tt.job)
			if err != nil {
				t.Fatalf("RenderVideo() error = %v", err)
			}
			if string(out) != tt.wantStrategy {
				t.Errorf("output = %q, want %q", out, tt.wantStrategy)
			}
			if got := te.encoder.compositions()[0].TransitionDuration; got != tt.wantDuration {
				t.Errorf("TransitionDuration = %v, want %v", got, tt.wantDuration)
			}
		})
	}
}

func TestRenderVideo_ValidationFailsBeforeWork(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		job     VideoJob
		wantErr error
	}{
		{"no slides", VideoJob{}, ErrNoSlides},
		{"zero duration", VideoJob{Slides: []Slide{{HTML: "a"}}}, ErrInvalidDuration},
		{"empty content", VideoJob{Slides: []Slide{{Duration: 1}}}, ErrEmptyContent},
		{
			"ambiguous content",
			VideoJob{Slides: []Slide{{HTML: "a", Template: TemplateRef{Name: "title"}, Duration: 1}}},
			ErrAmbiguousContent,
		},
		{
			"transition as long as a slide",
			VideoJob{Slides: []Slide{{HTML: "a", Duration: 3}, {HTML: "b", Duration: 1}}, TransitionDuration: floatPtr(1)},
			ErrTransitionTooLong,
		},
		{"odd width", VideoJob{Slides: []Slide{{HTML: "a", Duration: 1}}, Width: 1081}, ErrInvalidDimensions},
		{"bad transition", VideoJob{Slides: []Slide{{HTML: "a", Duration: 1}}, Transition: "wipe"}, ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			te := newTestEngine(t, nil, nil)
			_, err := te.RenderVideo(context.Background(), tt.job)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("RenderVideo() error = %v, want %v", err, tt.wantErr)
			}
			if te.encoder.probes != 0 {
				t.Errorf("encoder probed %d times, want 0", te.encoder.probes)
			}
			if n := len(te.renderer.calls()); n != 0 {
				t.Errorf("rendered %d frames, want 0", n)
			}
			assertNoWorkspace(t, te.root)
		})
	}
}

func TestRenderVideo_TemplateNotFound_NoRasterization(t *testing.T) {
	t.Parallel()

	te := newTestEngine(t, nil, nil)

	_, err := te.RenderVideo(context.Background(), VideoJob{
		Slides: []Slide{
			{HTML: "<p>fine</p>", Duration: 2},
			{Template: TemplateRef{Name: "missing"}, Duration: 2},
		},
	})
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("RenderVideo() error = %v, want ErrTemplateNotFound", err)
	}
	if !strings.Contains(err.Error(), "slide 2") {
		t.Errorf("error %q does not name the slide", err)
	}
	if n := len(te.renderer.calls()); n != 0 {
		t.Errorf("rendered %d frames, want 0", n)
	}
	if n := len(te.encoder.compositions()); n != 0 {
		t.Errorf("Compose called %d times, want 0", n)
	}
	assertNoWorkspace(t, te.root)
}

func TestRenderVideo_ProbeFailure_NoRasterization(t *testing.T) {
	t.Parallel()

	te := newTestEngine(t, nil, &fakeEncoder{probeErr: encoder.ErrNotFound})

	_, err := te.RenderVideo(context.Background(), VideoJob{
		Slides: []Slide{{HTML: "<p>a</p>", Duration: 2}},
	})
	if !errors.Is(err, ErrEncoderNotFound) {
		t.Fatalf("RenderVideo() error = %v, want ErrEncoderNotFound", err)
	}
	if te.encoder.probes != 1 {
		t.Errorf("probes = %d, want 1", te.encoder.probes)
	}
	if n := len(te.renderer.calls()); n != 0 {
		t.Errorf("rendered %d frames, want 0", n)
	}
	assertNoWorkspace(t, te.root)
}

func TestRenderVideo_RenderFailure(t *testing.T) {
	t.Parallel()

	r := &recordingRenderer{err: ErrPageLoad, failOn: "bad"}
	te := newTestEngine(t, r, nil)

	_, err := te.RenderVideo(context.Background(), VideoJob{
		Slides: []Slide{
			{HTML: "<p>ok</p>", Duration: 2},
			{HTML: "<p>bad</p>", Duration: 2},
		},
	})
	if !errors.Is(err, ErrPageLoad) {
		t.Fatalf("RenderVideo() error = %v, want ErrPageLoad", err)
	}
	if n := len(te.encoder.compositions()); n != 0 {
		t.Errorf("Compose called %d times after render failure", n)
	}
	assertNoWorkspace(t, te.root)
}

func TestRenderVideo_EncodeFailure(t *testing.T) {
	t.Parallel()

	exitErr := &encoder.ExitError{Binary: "ffmpeg", ExitCode: 1, Stderr: "Unknown encoder 'libx264'"}
	te := newTestEngine(t, nil, &fakeEncoder{composeErr: exitErr})

	_, err := te.RenderVideo(context.Background(), VideoJob{
		Slides: []Slide{{HTML: "<p>a</p>", Duration: 2}},
	})
	if !errors.Is(err, ErrEncode) {
		t.Fatalf("RenderVideo() error = %v, want ErrEncode", err)
	}
	var got *encoder.ExitError
	if !errors.As(err, &got) {
		t.Fatalf("error %v does not carry *encoder.ExitError", err)
	}
	if !strings.Contains(err.Error(), "Unknown encoder") {
		t.Errorf("error %q does not carry stderr", err)
	}
	assertNoWorkspace(t, te.root)
}

func TestRenderVideo_EncoderMissingAtCompose(t *testing.T) {
	t.Parallel()

	te := newTestEngine(t, nil, &fakeEncoder{composeErr: encoder.ErrNotFound})

	_, err := te.RenderVideo(context.Background(), VideoJob{
		Slides: []Slide{{HTML: "<p>a</p>", Duration: 2}},
	})
	if !errors.Is(err, ErrEncoderNotFound) {
		t.Fatalf("RenderVideo() error = %v, want ErrEncoderNotFound", err)
	}
}

func TestRenderVideo_PanicRecoveredAndWorkspaceRemoved(t *testing.T) {
	t.Parallel()

	te := newTestEngine(t, nil, &fakeEncoder{panicMsg: "boom"})

	_, err := te.RenderVideo(context.Background(), VideoJob{
		Slides: []Slide{{HTML: "<p>a</p>", Duration: 2}},
	})
	if err == nil || !strings.Contains(err.Error(), "internal error: boom") {
		t.Fatalf("RenderVideo() error = %v, want recovered panic", err)
	}
	assertNoWorkspace(t, te.root)
}

func TestRenderVideo_Canceled(t *testing.T) {
	t.Parallel()

	r := &recordingRenderer{delayOn: func(string) time.Duration { return time.Minute }}
	te := newTestEngine(t, r, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for len(r.calls()) == 0 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()

	_, err := te.RenderVideo(ctx, VideoJob{
		Slides: []Slide{{HTML: "a", Duration: 1}, {HTML: "b", Duration: 1}},
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("RenderVideo() error = %v, want context.Canceled", err)
	}
	assertNoWorkspace(t, te.root)
}

// ---------------------------------------------------------------------------
// Audio
// ---------------------------------------------------------------------------

func TestRenderVideo_AudioPath(t *testing.T) {
	t.Parallel()

	te := newTestEngine(t, nil, nil)

	_, err := te.RenderVideo(context.Background(), VideoJob{
		Slides:    []Slide{{HTML: "a", Duration: 1}},
		AudioPath: "/media/voice.m4a",
		AudioURL:  "http://example.invalid/ignored.mp3",
	})
	if err != nil {
		t.Fatalf("RenderVideo() error = %v", err)
	}
	if got := te.encoder.compositions()[0].AudioPath; got != "/media/voice.m4a" {
		t.Errorf("AudioPath = %q, want local path to win", got)
	}
}

func TestRenderVideo_AudioURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/voice.wav" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("RIFF"))
	}))
	t.Cleanup(srv.Close)

	te := newTestEngine(t, nil, nil, WithHTTPClient(srv.Client()))

	_, err := te.RenderVideo(context.Background(), VideoJob{
		Slides:   []Slide{{HTML: "a", Duration: 1}},
		AudioURL: srv.URL + "/voice.wav",
	})
	if err != nil {
		t.Fatalf("RenderVideo() error = %v", err)
	}
	got := te.encoder.compositions()[0].AudioPath
	if filepath.Base(got) != "narration.wav" || !strings.HasPrefix(got, te.root) {
		t.Errorf("AudioPath = %q, want narration.wav inside the workspace", got)
	}
	assertNoWorkspace(t, te.root)

	t.Run("download failure", func(t *testing.T) {
		_, err := te.RenderVideo(context.Background(), VideoJob{
			Slides:   []Slide{{HTML: "a", Duration: 1}},
			AudioURL: srv.URL + "/missing.mp3",
		})
		if !errors.Is(err, ErrAudioDownload) {
			t.Fatalf("RenderVideo() error = %v, want ErrAudioDownload", err)
		}
		assertNoWorkspace(t, te.root)
	})
}

// ---------------------------------------------------------------------------
// RenderImage
// ---------------------------------------------------------------------------

func TestRenderImage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		req      RenderRequest
		wantHTML string
		wantCSS  string
		wantW    int
		wantH    int
		wantS    float64
	}{
		{
			name:     "template intrinsic size",
			req:      RenderRequest{Template: TemplateRef{Name: "wide"}},
			wantHTML: "<p>empty</p>",
			wantW:    1920,
			wantH:    1080,
			wantS:    DefaultScale,
		},
		{
			name:     "override wins",
			req:      RenderRequest{Template: TemplateRef{Name: "wide"}, Values: map[string]string{"body": "x"}, Width: 640, Scale: 1},
			wantHTML: "<p>x</p>",
			wantW:    640,
			wantH:    1080,
			wantS:    1,
		},
		{
			name:     "lookup by id",
			req:      RenderRequest{Template: TemplateRef{ID: "tpl-title"}, Values: map[string]string{"title": "Hi", "bg": "#fff"}},
			wantHTML: "<h1>Hi</h1>",
			wantCSS:  "body{background:#fff}",
			wantW:    1080,
			wantH:    1920,
			wantS:    DefaultScale,
		},
		{
			name:     "raw html without placeholders is unchanged",
			req:      RenderRequest{HTML: "<p>keep</p>", CSS: "p{}"},
			wantHTML: "<p>keep</p>",
			wantCSS:  "p{}",
			wantW:    DefaultWidth,
			wantH:    DefaultHeight,
			wantS:    DefaultScale,
		},
		{
			name:     "raw html defaults apply without values",
			req:      RenderRequest{HTML: "<h1>{{title|Hello}}</h1><p>{{keep}}</p>", CSS: "p{color:{{fg|red}}}"},
			wantHTML: "<h1>Hello</h1><p></p>",
			wantCSS:  "p{color:red}",
			wantW:    DefaultWidth,
			wantH:    DefaultHeight,
			wantS:    DefaultScale,
		},
		{
			name:     "raw html substituted with values",
			req:      RenderRequest{HTML: "<p>{{who|nobody}}</p>", Values: map[string]string{"who": "me"}},
			wantHTML: "<p>me</p>",
			wantW:    DefaultWidth,
			wantH:    DefaultHeight,
			wantS:    DefaultScale,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			te := newTestEngine(t, nil, nil)
			png, err := te.RenderImage(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("RenderImage() error = %v", err)
			}
			if string(png) != tt.wantHTML {
				t.Errorf("png = %q, want %q", png, tt.wantHTML)
			}

			req := te.renderer.calls()[0]
			if req.CSS != tt.wantCSS {
				t.Errorf("CSS = %q, want %q", req.CSS, tt.wantCSS)
			}
			if req.Width != tt.wantW || req.Height != tt.wantH || req.Scale != tt.wantS {
				t.Errorf("size = %dx%d@%v, want %dx%d@%v", req.Width, req.Height, req.Scale, tt.wantW, tt.wantH, tt.wantS)
			}
			if req.Dir != "" {
				t.Errorf("Dir = %q, want empty for single images", req.Dir)
			}
		})
	}
}

func TestRenderImage_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     RenderRequest
		wantErr error
	}{
		{"empty", RenderRequest{}, ErrEmptyContent},
		{"ambiguous", RenderRequest{HTML: "<p/>", Template: TemplateRef{Name: "title"}}, ErrAmbiguousContent},
		{"missing template", RenderRequest{Template: TemplateRef{Name: "nope"}}, ErrTemplateNotFound},
		{"scale too large", RenderRequest{HTML: "<p/>", Scale: 5}, ErrInvalidScale},
		{"negative width", RenderRequest{HTML: "<p/>", Width: -1}, ErrInvalidDimensions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			te := newTestEngine(t, nil, nil)
			_, err := te.RenderImage(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("RenderImage() error = %v, want %v", err, tt.wantErr)
			}
			if n := len(te.renderer.calls()); n != 0 {
				t.Errorf("rendered %d frames, want 0", n)
			}
		})
	}
}

func TestRenderImage_RendererError(t *testing.T) {
	t.Parallel()

	te := newTestEngine(t, &recordingRenderer{err: ErrBrowserConnect}, nil)
	_, err := te.RenderImage(context.Background(), RenderRequest{HTML: "<p/>"})
	if !errors.Is(err, ErrBrowserConnect) {
		t.Fatalf("RenderImage() error = %v, want ErrBrowserConnect", err)
	}
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func TestEngine_Close(t *testing.T) {
	t.Parallel()

	te := newTestEngine(t, nil, nil)

	if err := te.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := te.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if te.renderer.closed != 1 {
		t.Errorf("renderer closed %d times, want 1", te.renderer.closed)
	}

	if _, err := te.RenderImage(context.Background(), RenderRequest{HTML: "<p/>"}); !errors.Is(err, ErrClosed) {
		t.Errorf("RenderImage() after Close error = %v, want ErrClosed", err)
	}
	if _, err := te.RenderVideo(context.Background(), VideoJob{Slides: []Slide{{HTML: "a", Duration: 1}}}); !errors.Is(err, ErrClosed) {
		t.Errorf("RenderVideo() after Close error = %v, want ErrClosed", err)
	}
}

func TestNewEngine_InvalidAssetPath(t *testing.T) {
	t.Parallel()

	_, err := NewEngine(
		WithAssetPath(filepath.Join(t.TempDir(), "missing")),
		withRenderer(&recordingRenderer{}),
		withVideoEncoder(&fakeEncoder{}),
	)
	if !errors.Is(err, ErrInvalidAssetPath) {
		t.Fatalf("NewEngine() error = %v, want ErrInvalidAssetPath", err)
	}
}

func TestEngine_Templates(t *testing.T) {
	t.Parallel()

	te := newTestEngine(t, nil, nil)
	got, err := te.Templates(context.Background())
	if err != nil {
		t.Fatalf("Templates() error = %v", err)
	}
	if len(got) != 2 || got[0].Name != "title" || got[1].Name != "wide" {
		t.Errorf("Templates() = %+v, want [title wide]", got)
	}
}

func TestEngine_CheckEncoder(t *testing.T) {
	t.Parallel()

	te := newTestEngine(t, nil, nil)
	version, err := te.CheckEncoder(context.Background())
	if err != nil || version != "ffmpeg version 7.1" {
		t.Errorf("CheckEncoder() = %q, %v", version, err)
	}

	te = newTestEngine(t, nil, &fakeEncoder{probeErr: errors.New("exec: not found")})
	if _, err := te.CheckEncoder(context.Background()); !errors.Is(err, ErrEncoderNotFound) {
		t.Errorf("CheckEncoder() error = %v, want ErrEncoderNotFound", err)
	}
}

func TestWithTimeout_PanicsOnNonPositive(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("WithTimeout(0) did not panic")
		}
	}()
	WithTimeout(0)
}
