package main

import (
	"context"
	"fmt"

	"github.com/alnah/go-slidecast"
	"github.com/alnah/go-slidecast/internal/fileutil"
	"github.com/alnah/go-slidecast/internal/log"
)

// runVideo renders a job file to MP4.
func runVideo(ctx context.Context, args []string, env *Environment) (err error) {
	flags, positional, err := parseVideoFlags(args, env.Stderr)
	if err != nil {
		return flagError(err)
	}
	switch len(positional) {
	case 0:
		return fmt.Errorf("%w: video needs a job file (or - for stdin)", ErrNoInput)
	case 1:
	default:
		return fmt.Errorf("%w: video takes one job file, got %d", ErrUsage, len(positional))
	}
	jobFile := positional[0]

	output := flags.output
	if output == "" {
		output = defaultOutputPath(jobFile, ".mp4")
	}
	if output == "" {
		return fmt.Errorf("%w: --output is required when reading the job from stdin", ErrUsage)
	}

	cfg, err := loadConfig(flags.common, loadEnvConfig())
	if err != nil {
		return err
	}
	defer func() { err = withHint(err, cfg) }()
	mergeEngineFlags(flags.engine, cfg)
	if flags.encoderTimeout != 0 {
		cfg.Encoder.Timeout = flags.encoderTimeout
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	setupLogging(cfg, flags.common, env.Stderr)

	var job slidecast.VideoJob
	if err := readYAML(jobFile, env.Stdin, &job); err != nil {
		return err
	}
	if job.Slides, err = resolveSlideAssets(job.Slides, jobFile); err != nil {
		return err
	}
	job = applyVideoFlags(job, flags, jobFile).Inherit(videoDefaults(cfg.Video))

	engine, err := env.NewEngine(engineOptions(cfg)...)
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close() }()

	logger := log.Base()
	logger.Debug().
		Int(log.FieldSlides, len(job.Slides)).
		Str(log.FieldPath, output).
		Msg("rendering video")

	mp4, err := engine.RenderVideo(ctx, job)
	if err != nil {
		return err
	}
	if err := writeOutput(output, mp4, env.Stdout); err != nil {
		return err
	}
	reportWritten(env, flags.common, output, len(mp4))
	return nil
}

// applyVideoFlags overrides job options with explicit flags. A relative
// audio path in the job file is resolved against the job file.
func applyVideoFlags(job slidecast.VideoJob, f *videoFlags, jobFile string) slidecast.VideoJob {
	if !fileutil.IsURL(job.AudioPath) {
		job.AudioPath = resolveRelative(job.AudioPath, jobFile)
	}

	if f.size.width != 0 {
		job.Width = f.size.width
	}
	if f.size.height != 0 {
		job.Height = f.size.height
	}
	if f.size.scale != 0 {
		job.Scale = f.size.scale
	}
	if f.fps != 0 {
		job.FPS = f.fps
	}
	if f.transition != "" {
		job.Transition = f.transition
	}
	if f.transitionDurSet {
		d := f.transitionDuration
		job.TransitionDuration = &d
	}
	if f.audio != "" {
		job.AudioPath = f.audio
		job.AudioURL = ""
	}
	if f.audioURL != "" {
		job.AudioURL = f.audioURL
		if f.audio == "" {
			job.AudioPath = ""
		}
	}
	return job
}

// resolveSlideAssets resolves relative asset references in raw-HTML
// slides against the job file. The input slice is not modified.
func resolveSlideAssets(slides []slidecast.Slide, jobFile string) ([]slidecast.Slide, error) {
	out := make([]slidecast.Slide, len(slides))
	for i, s := range slides {
		html, err := resolveMarkupAssets(s.HTML, jobFile)
		if err != nil {
			return nil, fmt.Errorf("slide %d: %w", i+1, err)
		}
		s.HTML = html
		out[i] = s
	}
	return out, nil
}
