package encoder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Transition names.
const (
	TransitionFade = "fade"
	TransitionNone = "none"
)

// Strategy identifies how frames are assembled.
type Strategy string

// Composition strategies.
const (
	StrategySingle    Strategy = "single"
	StrategyConcat    Strategy = "concat"
	StrategyCrossfade Strategy = "crossfade"
)

// concatListName is the concat demuxer script written next to the output.
const concatListName = "frames.txt"

// Frame is one rendered image and how long it stays on screen (seconds).
type Frame struct {
	Path     string
	Duration float64
}

// Composition describes one encode.
type Composition struct {
	Frames             []Frame
	AudioPath          string // optional narration track
	Width              int
	Height             int
	FPS                int
	Transition         string // TransitionFade or TransitionNone
	TransitionDuration float64
	OutputPath         string
}

func (c Composition) durations() []float64 {
	out := make([]float64, len(c.Frames))
	for i, f := range c.Frames {
		out[i] = f.Duration
	}
	return out
}

// SelectStrategy picks the strategy for c.
func SelectStrategy(c Composition) Strategy {
	switch {
	case len(c.Frames) <= 1:
		return StrategySingle
	case c.Transition == TransitionNone || c.TransitionDuration <= 0:
		return StrategyConcat
	default:
		return StrategyCrossfade
	}
}

// Validate checks c before any process is started.
func (c Composition) Validate() error {
	if len(c.Frames) == 0 {
		return ErrNoFrames
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidOutput, c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("%w: fps %d", ErrInvalidOutput, c.FPS)
	}
	if c.OutputPath == "" {
		return fmt.Errorf("%w: empty output path", ErrInvalidOutput)
	}
	switch c.Transition {
	case TransitionFade, TransitionNone, "":
	default:
		return fmt.Errorf("%w: %q (must be fade or none)", ErrInvalidTransition, c.Transition)
	}
	for i, f := range c.Frames {
		if f.Path == "" {
			return fmt.Errorf("%w: frame %d has no path", ErrNoFrames, i+1)
		}
		if f.Duration <= 0 {
			return fmt.Errorf("%w: frame %d has duration %v", ErrInvalidDuration, i+1, f.Duration)
		}
	}
	if SelectStrategy(c) == StrategyCrossfade {
		for i, f := range c.Frames {
			if c.TransitionDuration >= f.Duration {
				return fmt.Errorf("%w: transition %vs, slide %d lasts %vs",
					ErrTransitionTooLong, c.TransitionDuration, i+1, f.Duration)
			}
		}
	}
	return nil
}

// Compose encodes c into c.OutputPath and returns the strategy used.
func (e *Encoder) Compose(ctx context.Context, c Composition) (Strategy, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}

	strategy := SelectStrategy(c)

	var args []string
	switch strategy {
	case StrategySingle:
		args = SingleArgs(c)
	case StrategyConcat:
		listPath := filepath.Join(filepath.Dir(c.OutputPath), concatListName)
		if err := writeConcatList(listPath, c.Frames); err != nil {
			return strategy, err
		}
		args = ConcatArgs(c, listPath)
	case StrategyCrossfade:
		args = CrossfadeArgs(c)
	}

	if _, err := e.Run(ctx, args); err != nil {
		return strategy, err
	}
	return strategy, nil
}

// SingleArgs loops the only frame for its duration.
func SingleArgs(c Composition) []string {
	f := c.Frames[0]
	args := baseArgs()
	args = append(args,
		"-loop", "1",
		"-framerate", strconv.Itoa(c.FPS),
		"-t", formatSeconds(f.Duration),
		"-i", f.Path,
	)
	if c.AudioPath != "" {
		args = append(args, "-i", c.AudioPath)
	}
	args = append(args, "-vf", normalizeFilter(c, false))
	if c.AudioPath != "" {
		args = append(args, "-map", "0:v:0", "-map", "1:a:0")
		args = append(args, audioArgs()...)
	}
	return append(args, outputArgs(c)...)
}

// ConcatArgs plays frames back to back from a concat demuxer list.
func ConcatArgs(c Composition, listPath string) []string {
	args := baseArgs()
	args = append(args,
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
	)
	if c.AudioPath != "" {
		args = append(args, "-i", c.AudioPath)
	}
	args = append(args, "-vf", normalizeFilter(c, false))
	if c.AudioPath != "" {
		args = append(args, "-map", "0:v:0", "-map", "1:a:0")
		args = append(args, audioArgs()...)
	}
	return append(args, outputArgs(c)...)
}

// CrossfadeArgs chains an xfade between every adjacent pair of frames.
func CrossfadeArgs(c Composition) []string {
	args := baseArgs()
	for _, f := range c.Frames {
		args = append(args,
			"-loop", "1",
			"-framerate", strconv.Itoa(c.FPS),
			"-t", formatSeconds(f.Duration),
			"-i", f.Path,
		)
	}
	if c.AudioPath != "" {
		args = append(args, "-i", c.AudioPath)
	}

	args = append(args,
		"-filter_complex", CrossfadeFilter(c),
		"-map", "[vout]",
	)
	if c.AudioPath != "" {
		args = append(args, "-map", strconv.Itoa(len(c.Frames))+":a:0")
		args = append(args, audioArgs()...)
	}
	return append(args, outputArgs(c)...)
}

// CrossfadeFilter builds the filter graph: each input is normalized to the
// target size, then inputs are folded left through xfade. The last xfade
// writes [vout].
func CrossfadeFilter(c Composition) string {
	n := len(c.Frames)
	parts := make([]string, 0, 2*n)

	for i := range c.Frames {
		parts = append(parts, fmt.Sprintf("[%d:v]%s[v%d]", i, normalizeFilter(c, true), i))
	}

	offsets := Offsets(c.durations(), c.TransitionDuration)
	left := "v0"
	for k, offset := range offsets {
		out := fmt.Sprintf("x%d", k+1)
		if k == len(offsets)-1 {
			out = "vout"
		}
		parts = append(parts, fmt.Sprintf("[%s][v%d]xfade=transition=fade:duration=%s:offset=%s[%s]",
			left, k+1, formatSeconds(c.TransitionDuration), formatSeconds(offset), out))
		left = out
	}

	return strings.Join(parts, ";")
}

// normalizeFilter scales to the target canvas and a pixel format every
// player accepts. xfade also needs a fixed frame rate on both inputs.
func normalizeFilter(c Composition, withFPS bool) string {
	filter := fmt.Sprintf("scale=%d:%d:flags=lanczos,setsar=1,format=yuv420p", c.Width, c.Height)
	if withFPS {
		filter += ",fps=" + strconv.Itoa(c.FPS)
	}
	return filter
}

func baseArgs() []string {
	return []string{"-y", "-hide_banner", "-loglevel", "error"}
}

// audioArgs encodes narration and stops at the shorter of audio and video.
func audioArgs() []string {
	return []string{"-c:a", "aac", "-b:a", "192k", "-shortest"}
}

func outputArgs(c Composition) []string {
	return []string{
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-r", strconv.Itoa(c.FPS),
		"-movflags", "+faststart",
		c.OutputPath,
	}
}

// ConcatList renders a concat demuxer script. The last file is listed twice
// because the demuxer ignores the final entry's duration otherwise.
func ConcatList(frames []Frame) string {
	var b strings.Builder
	b.WriteString("ffconcat version 1.0\n")
	for _, f := range frames {
		fmt.Fprintf(&b, "file %s\nduration %s\n", quoteConcatPath(f.Path), formatSeconds(f.Duration))
	}
	if len(frames) > 0 {
		fmt.Fprintf(&b, "file %s\n", quoteConcatPath(frames[len(frames)-1].Path))
	}
	return b.String()
}

func writeConcatList(path string, frames []Frame) error {
	if err := os.WriteFile(path, []byte(ConcatList(frames)), 0o600); err != nil {
		return fmt.Errorf("writing concat list: %w", err)
	}
	return nil
}

// quoteConcatPath single-quotes a path for the concat demuxer.
func quoteConcatPath(p string) string {
	return "'" + strings.ReplaceAll(p, "'", `'\''`) + "'"
}
