// Package audio resolves the narration track of a video job to a local file.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Sentinel errors for audio acquisition.
var (
	ErrDownload = errors.New("audio download failed")
	ErrTooLarge = errors.New("audio exceeds size limit")
)

const (
	// DefaultMaxBytes caps a downloaded narration track.
	DefaultMaxBytes int64 = 100 << 20

	// DefaultExtension is used when the URL path has no usable extension.
	DefaultExtension = ".mp3"

	// DefaultTimeout bounds one download when the caller sets no deadline.
	DefaultTimeout = 5 * time.Minute

	baseName = "narration"
)

// Source names where the narration comes from. Path wins when both are set.
type Source struct {
	Path string
	URL  string
}

// IsZero reports whether the source carries no audio.
func (s Source) IsZero() bool {
	return s.Path == "" && s.URL == ""
}

type options struct {
	client   *http.Client
	maxBytes int64
}

// Option configures Acquire.
type Option func(*options)

// WithHTTPClient sets the client used for downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.client = c
		}
	}
}

// WithMaxBytes caps the download size.
func WithMaxBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBytes = n
		}
	}
}

// Acquire returns a local path for src. A local path is returned as-is
// without validation; a URL is downloaded into dir as narration<ext>.
// An empty source returns "" and no error.
func Acquire(ctx context.Context, src Source, dir string, opts ...Option) (string, error) {
	switch {
	case src.Path != "":
		return src.Path, nil
	case src.URL == "":
		return "", nil
	}

	o := options{
		client:   &http.Client{Timeout: DefaultTimeout},
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(&o)
	}

	u, err := url.Parse(src.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: invalid URL %q", ErrDownload, src.URL)
	}

	dest := filepath.Join(dir, baseName+Extension(src.URL))
	if err := download(ctx, o, u.String(), dest); err != nil {
		return "", err
	}
	return dest, nil
}

func download(ctx context.Context, o options, rawURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrDownload, ctx.Err())
		}
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s returned status %d", ErrDownload, redact(rawURL), resp.StatusCode)
	}
	if resp.ContentLength > o.maxBytes {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, resp.ContentLength, o.maxBytes)
	}

	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // dest is built inside the job workspace
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}

	n, copyErr := io.Copy(f, io.LimitReader(resp.Body, o.maxBytes+1))
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		_ = os.Remove(dest)
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrDownload, ctx.Err())
		}
		return fmt.Errorf("%w: reading body: %v", ErrDownload, copyErr)
	case n > o.maxBytes:
		_ = os.Remove(dest)
		return fmt.Errorf("%w: more than %d bytes", ErrTooLarge, o.maxBytes)
	case closeErr != nil:
		_ = os.Remove(dest)
		return fmt.Errorf("%w: %v", ErrDownload, closeErr)
	}
	return nil
}

// Extension infers a file extension from the URL path. Only short
// alphanumeric extensions are trusted; anything else yields DefaultExtension.
func Extension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return DefaultExtension
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if len(ext) < 2 || len(ext) > 6 {
		return DefaultExtension
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return DefaultExtension
		}
	}
	return ext
}

// redact drops the query string, which often carries signed tokens.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	u.User = nil
	return u.String()
}
