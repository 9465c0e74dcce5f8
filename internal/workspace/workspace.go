// Package workspace provides the per-job temporary directory.
//
// A Workspace is created before any rendering starts and removed, with
// everything in it, when the job returns. With wraps that lifecycle so
// cleanup runs on every exit path including panics.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Prefix is prepended to every workspace directory name.
const Prefix = "slidecast-"

// dirPermissions keeps job files private to the running user.
const dirPermissions = 0o700

// ErrClosed is returned when a path is requested from a closed workspace.
var ErrClosed = errors.New("workspace closed")

// Workspace is an exclusively owned temporary directory for one job.
type Workspace struct {
	id   string
	dir  string
	once sync.Once
	err  error
	mu   sync.Mutex
	done bool
}

// Create makes a uniquely named directory under root.
// An empty root uses os.TempDir().
func Create(root string) (*Workspace, error) {
	if root == "" {
		root = os.TempDir()
	}

	id := uuid.NewString()
	dir := filepath.Join(root, Prefix+id)
	if err := os.Mkdir(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}

	return &Workspace{id: id, dir: dir}, nil
}

// With creates a workspace, runs fn, and removes the workspace afterwards,
// whether fn returns normally, returns an error or panics. A cleanup failure
// is joined with fn's error.
func With(root string, fn func(*Workspace) error) (err error) {
	ws, err := Create(root)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := ws.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	return fn(ws)
}

// ID returns the workspace's unique identifier.
func (w *Workspace) ID() string { return w.id }

// Dir returns the workspace directory.
func (w *Workspace) Dir() string { return w.dir }

// Path joins name onto the workspace directory.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, filepath.Base(name))
}

// FramePath returns the path of the i-th frame (0-based): slide-001.png, ...
func (w *Workspace) FramePath(i int) string {
	return filepath.Join(w.dir, FrameName(i))
}

// FrameName returns the file name of the i-th frame (0-based).
func FrameName(i int) string {
	return fmt.Sprintf("slide-%03d.png", i+1)
}

// WriteFile writes data to name inside the workspace.
func (w *Workspace) WriteFile(name string, data []byte) (string, error) {
	w.mu.Lock()
	closed := w.done
	w.mu.Unlock()
	if closed {
		return "", ErrClosed
	}

	path := w.Path(name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return path, nil
}

// Close removes the directory and its contents. Idempotent.
func (w *Workspace) Close() error {
	w.once.Do(func() {
		w.mu.Lock()
		w.done = true
		w.mu.Unlock()
		if err := os.RemoveAll(w.dir); err != nil {
			w.err = fmt.Errorf("removing workspace %s: %w", w.dir, err)
		}
	})
	return w.err
}
