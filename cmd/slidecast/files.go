package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-slidecast/internal/pipeline"
	"github.com/alnah/go-slidecast/internal/yamlutil"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage       = errors.New("invalid usage")
	ErrNoInput     = errors.New("no input specified")
	ErrReadInput   = errors.New("failed to read input file")
	ErrWriteOutput = errors.New("failed to write output file")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// stdioPath names standard input or output in place of a file.
const stdioPath = "-"

// readYAML decodes the YAML file at path, or stdin for "-", into v.
func readYAML(path string, stdin io.Reader, v any) error {
	var err error
	if path == stdioPath {
		err = yamlutil.DecodeStrict(stdin, v)
	} else {
		err = yamlutil.ReadFileStrict(path, v)
	}
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %w", ErrReadInput, err)
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

// readText reads a whole text file.
func readText(path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is user-provided
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	return string(data), nil
}

// writeOutput writes data to path, or to stdout for "-". Missing parent
// directories are created.
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == stdioPath {
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return fmt.Errorf("%w: creating %s: %v", ErrWriteOutput, dir, err)
		}
	}
	return writeOutputFile(path, data)
}

// defaultOutputPath derives out.<ext> from an input path: job.yaml -> job.mp4.
func defaultOutputPath(input, ext string) string {
	if input == "" || input == stdioPath {
		return ""
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + ext
}

// resolveRelative interprets p relative to the directory of the file
// that referenced it. Absolute paths, URLs and stdin-relative paths are
// returned unchanged.
func resolveRelative(p, referrer string) string {
	if p == "" || filepath.IsAbs(p) || referrer == "" || referrer == stdioPath {
		return p
	}
	return filepath.Join(filepath.Dir(referrer), p)
}

// resolveMarkupAssets points relative image and stylesheet references in
// markup at files next to referrer. Markup read from stdin is unchanged.
func resolveMarkupAssets(markup, referrer string) (string, error) {
	if referrer == "" || referrer == stdioPath {
		return markup, nil
	}
	out, err := pipeline.ResolveAssetPaths(markup, filepath.Dir(referrer))
	if err != nil {
		return "", fmt.Errorf("%w: resolving assets in %s: %v", ErrUsage, referrer, err)
	}
	return out, nil
}
