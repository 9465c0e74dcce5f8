//go:build integration

package slidecast

// Notes:
// - Needs Chrome (go-rod downloads one if ROD_BROWSER_BIN is unset)
// - Video tests skip when ffmpeg is not on PATH
// - One engine is shared so only one browser starts

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/alnah/go-slidecast/internal/log"
)

// testTimeout is the standard timeout for integration test operations.
const testTimeout = 2 * time.Minute

var testEngineShared *Engine

func TestMain(m *testing.M) {
	eng, err := NewEngine(WithLogger(log.Nop()), WithTimeout(30*time.Second))
	if err != nil {
		panic(err)
	}
	testEngineShared = eng

	code := m.Run()

	_ = eng.Close()
	os.Exit(code)
}

func requireFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not on PATH")
	}
}

func TestRenderImage_Integration(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	tests := []struct {
		name  string
		req   RenderRequest
		wantW int
		wantH int
	}{
		{
			name:  "embedded template at scale 1",
			req:   RenderRequest{Template: TemplateRef{Name: "title-card"}, Values: map[string]string{"title": "Hello"}, Scale: 1},
			wantW: 1080,
			wantH: 1920,
		},
		{
			name:  "raw html at scale 2",
			req:   RenderRequest{HTML: "<div style='width:5000px'>overflow</div>", Width: 320, Height: 240},
			wantW: 640,
			wantH: 480,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := testEngineShared.RenderImage(ctx, tt.req)
			if err != nil {
				t.Fatalf("RenderImage() error = %v", err)
			}
			cfg, err := png.DecodeConfig(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("output is not a PNG: %v", err)
			}
			if cfg.Width != tt.wantW || cfg.Height != tt.wantH {
				t.Errorf("PNG size = %dx%d, want %dx%d", cfg.Width, cfg.Height, tt.wantW, tt.wantH)
			}
		})
	}
}

// The capture must come from the loaded document, not the blank page the
// target starts on. A blank capture is white; this document starts blue
// and turns red in its load handler.
func TestRenderImage_Integration_CapturesLoadedDocument(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	req := RenderRequest{
		HTML: `<div id="box"></div><script>
window.addEventListener("load", () => { document.getElementById("box").style.background = "rgb(255, 0, 0)"; });
</script>`,
		CSS:    "html,body{margin:0}#box{width:100vw;height:100vh;background:rgb(0,0,255)}",
		Width:  64,
		Height: 64,
		Scale:  1,
	}

	for i := 0; i < 5; i++ {
		data, err := testEngineShared.RenderImage(ctx, req)
		if err != nil {
			t.Fatalf("RenderImage() error = %v", err)
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("output is not a PNG: %v", err)
		}
		r, g, b, _ := img.At(32, 32).RGBA()
		if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
			t.Fatalf("render %d: center pixel = (%d,%d,%d), want red", i, r>>8, g>>8, b>>8)
		}
	}
}

func TestRenderVideo_Integration(t *testing.T) {
	requireFFmpeg(t)
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	slides := []Slide{
		{Template: TemplateRef{Name: "quote"}, Values: map[string]string{"quote": "Ship it"}, Duration: 1.5},
		{Template: TemplateRef{Name: "title-card"}, Values: map[string]string{"title": "Two"}, Duration: 1.5},
		{HTML: "<h1>Three</h1>", Duration: 1},
	}

	for _, transition := range []string{TransitionFade, TransitionNone} {
		t.Run(transition, func(t *testing.T) {
			t.Parallel()

			data, err := testEngineShared.RenderVideo(ctx, VideoJob{
				Slides:     slides,
				Width:      360,
				Height:     640,
				FPS:        24,
				Transition: transition,
				Scale:      1,
			})
			if err != nil {
				t.Fatalf("RenderVideo() error = %v", err)
			}
			if len(data) < 12 || !bytes.Equal(data[4:8], []byte("ftyp")) {
				t.Errorf("output is not an MP4 container")
			}
		})
	}
}
