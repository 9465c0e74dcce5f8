// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/alnah/go-slidecast/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// goos is swapped in tests.
var goos = runtime.GOOS

// ForBrowserConnect returns hints for browser launch or connection errors.
func ForBrowserConnect() string {
	var hints []string

	// Chrome crashes on Docker's default 64MB /dev/shm.
	if IsInContainer() {
		hints = append(hints, "run the container with --shm-size=1g")
	}

	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN or browser.bin to use an installed Chrome")
	}

	return formatHints(hints)
}

// ForEncoderNotFound returns install instructions for ffmpeg.
func ForEncoderNotFound() string {
	var install string
	switch goos {
	case "darwin":
		install = "brew install ffmpeg"
	case "windows":
		install = "winget install ffmpeg"
	default:
		install = "apt install ffmpeg (or your distribution's package)"
	}
	return format(install + "; or set SLIDECAST_FFMPEG to the binary path")
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for long videos or heavy slides, use --timeout flag")
}

// ForTransitionTooLong explains the fade/duration constraint.
func ForTransitionTooLong() string {
	return format("shorten --transition-duration, lengthen the slide, or use --transition none")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in the user config dir.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	marker := string(filepath.Separator) + "slidecast" + string(filepath.Separator)
	for _, p := range searchedPaths {
		if strings.Contains(p, marker) {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForTemplateNotFound lists the templates that do exist.
func ForTemplateNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForAudioDownload returns hints for narration download failures.
func ForAudioDownload() string {
	return format("check the URL is publicly reachable, or download it and pass a local path")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
