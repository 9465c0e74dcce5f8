// Package process terminates external helpers (Chrome, ffmpeg) together
// with the children they spawn.
package process
