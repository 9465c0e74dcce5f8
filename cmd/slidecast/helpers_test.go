package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/alnah/go-slidecast"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake engine and environment
// ---------------------------------------------------------------------------

// fakeEngine records what commands ask of the engine.
type fakeEngine struct {
	mu        sync.Mutex
	png       []byte
	mp4       []byte
	err       error
	templates []slidecast.Template
	gotRender *slidecast.RenderRequest
	gotVideo  *slidecast.VideoJob
	closed    bool
}

func (f *fakeEngine) RenderImage(_ context.Context, req slidecast.RenderRequest) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotRender = &req
	if f.err != nil {
		return nil, f.err
	}
	return f.png, nil
}

func (f *fakeEngine) RenderVideo(_ context.Context, job slidecast.VideoJob) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotVideo = &job
	if f.err != nil {
		return nil, f.err
	}
	return f.mp4, nil
}

func (f *fakeEngine) Templates(context.Context) ([]slidecast.Template, error) {
	return f.templates, f.err
}

func (f *fakeEngine) CheckEncoder(context.Context) (string, error) {
	return "ffmpeg version test", f.err
}

func (f *fakeEngine) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// testEnv holds an Environment wired to a fakeEngine plus captured output.
type testEnv struct {
	*Environment
	engine *fakeEngine
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestEnv(engine *fakeEngine) *testEnv {
	if engine == nil {
		engine = &fakeEngine{png: []byte("\x89PNG fake"), mp4: []byte("fake mp4")}
	}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &testEnv{
		Environment: &Environment{
			Stdin:  strings.NewReader(""),
			Stdout: stdout,
			Stderr: stderr,
			NewEngine: func(...slidecast.Option) (Engine, error) {
				return engine, nil
			},
		},
		engine: engine,
		stdout: stdout,
		stderr: stderr,
	}
}

// writeFile writes content under dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// clearSlidecastEnv blanks every known SLIDECAST_* variable for the test.
func clearSlidecastEnv(t *testing.T) {
	t.Helper()
	for name := range knownEnvVars {
		t.Setenv(name, "")
	}
}
