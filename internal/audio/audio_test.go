package audio

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestAcquire_LocalPathReturnedAsIs(t *testing.T) {
	t.Parallel()

	got, err := Acquire(t.Context(), Source{Path: "/does/not/exist.wav", URL: "http://unused.invalid/a.mp3"}, t.TempDir())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if got != "/does/not/exist.wav" {
		t.Errorf("Acquire() = %q, want the local path untouched", got)
	}
}

func TestAcquire_NoSource(t *testing.T) {
	t.Parallel()

	got, err := Acquire(t.Context(), Source{}, t.TempDir())
	if err != nil || got != "" {
		t.Errorf("Acquire() = %q, %v; want empty, nil", got, err)
	}
	if !(Source{}).IsZero() {
		t.Error("IsZero() = false for empty source")
	}
}

func TestAcquire_DownloadsIntoDir(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte("ID3"), 500)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/voice/take-2.WAV" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(payload)
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	got, err := Acquire(t.Context(), Source{URL: srv.URL + "/voice/take-2.WAV?sig=abc"}, dir, WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if want := filepath.Join(dir, "narration.wav"); got != want {
		t.Errorf("Acquire() = %q, want %q", got, want)
	}
	data, err := os.ReadFile(got)
	if err != nil {
		t.Fatalf("reading download: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("downloaded %d bytes, want %d", len(data), len(payload))
	}
}

func TestAcquire_Non2xx(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	_, err := Acquire(t.Context(), Source{URL: srv.URL + "/a.mp3?token=secret"}, dir)
	if !errors.Is(err, ErrDownload) {
		t.Fatalf("Acquire() error = %v, want ErrDownload", err)
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("error should carry the status: %v", err)
	}
	if strings.Contains(err.Error(), "secret") {
		t.Errorf("error leaks query string: %v", err)
	}
	assertEmptyDir(t, dir)
}

func TestAcquire_TooLargeByContentLength(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(make([]byte, 1024))
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	_, err := Acquire(t.Context(), Source{URL: srv.URL + "/a.mp3"}, dir, WithMaxBytes(100))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("Acquire() error = %v, want ErrTooLarge", err)
	}
	assertEmptyDir(t, dir)
}

func TestAcquire_TooLargeWhileStreaming(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		flusher := w.(http.Flusher)
		for range 10 {
			_, _ = w.Write(make([]byte, 64))
			flusher.Flush()
		}
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	_, err := Acquire(t.Context(), Source{URL: srv.URL + "/a.mp3"}, dir, WithMaxBytes(100))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("Acquire() error = %v, want ErrTooLarge", err)
	}
	assertEmptyDir(t, dir)
}

func TestAcquire_ExactlyAtLimit(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(make([]byte, 100))
	}))
	t.Cleanup(srv.Close)

	if _, err := Acquire(t.Context(), Source{URL: srv.URL + "/a.mp3"}, t.TempDir(), WithMaxBytes(100)); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
}

func TestAcquire_InvalidURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"ftp://host/a.mp3", "not a url", "http://", "file:///etc/passwd"} {
		t.Run(raw, func(t *testing.T) {
			t.Parallel()

			_, err := Acquire(t.Context(), Source{URL: raw}, t.TempDir())
			if !errors.Is(err, ErrDownload) {
				t.Errorf("Acquire(%q) error = %v, want ErrDownload", raw, err)
			}
		})
	}
}

func TestAcquire_ContextCanceled(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
	defer cancel()

	_, err := Acquire(ctx, Source{URL: srv.URL + "/a.mp3"}, t.TempDir())
	if !errors.Is(err, ErrDownload) {
		t.Fatalf("Acquire() error = %v, want ErrDownload", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire() error = %v, want context.DeadlineExceeded", err)
	}
}

// ---------------------------------------------------------------------------
// TestExtension
// ---------------------------------------------------------------------------

func TestExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{"https://cdn.example.com/a/voice.m4a", ".m4a"},
		{"https://cdn.example.com/voice.OGG?x=1", ".ogg"},
		{"https://cdn.example.com/voice.wav#t=3", ".wav"},
		{"https://cdn.example.com/voice", ".mp3"},
		{"https://cdn.example.com/stream/", ".mp3"},
		{"https://cdn.example.com/voice.php%3Fa", ".mp3"},
		{"https://cdn.example.com/voice.averylongext", ".mp3"},
		{"https://cdn.example.com/voice.mp-3", ".mp3"},
		{"https://cdn.example.com/archive.tar.gz", ".gz"},
		{"://bad", ".mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()

			if got := Extension(tt.url); got != tt.want {
				t.Errorf("Extension(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no files left behind, found %d", len(entries))
	}
}
