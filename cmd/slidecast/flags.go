package main

import (
	"io"
	"time"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// engineFlags holds flags that configure the render engine.
type engineFlags struct {
	timeout    time.Duration
	workers    int
	browserBin string
	ffmpeg     string
	assetPath  string
	workspace  string
}

// sizeFlags holds canvas flags shared by render and video.
type sizeFlags struct {
	width  int
	height int
	scale  float64
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common     commonFlags
	engine     engineFlags
	size       sizeFlags
	output     string
	template   string
	templateID string
	htmlFile   string
	cssFile    string
	values     string   // YAML file of field values
	set        []string // name=value pairs
}

// videoFlags holds all flags for the video command.
type videoFlags struct {
	common             commonFlags
	engine             engineFlags
	size               sizeFlags
	output             string
	fps                int
	transition         string
	transitionDuration float64
	transitionDurSet   bool // 0 and negative values are meaningful, so track Changed
	audio              string
	audioURL           string
	encoderTimeout     time.Duration
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common       commonFlags
	engine       engineFlags
	addr         string
	rateLimit    int
	maxBodyBytes int64
}

// templatesFlags holds flags for the templates command.
type templatesFlags struct {
	common    commonFlags
	assetPath string
	json      bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
}

// addEngineFlags adds engine flags to a FlagSet.
func addEngineFlags(fs *flag.FlagSet, f *engineFlags) {
	fs.DurationVar(&f.timeout, "timeout", 0, "per-frame render timeout (e.g., 30s, 2m)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "slides rendered in parallel (0 = auto)")
	fs.StringVar(&f.browserBin, "browser-bin", "", "Chrome/Chromium binary")
	fs.StringVar(&f.ffmpeg, "ffmpeg", "", "ffmpeg binary name or path")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom template and font directory")
	fs.StringVar(&f.workspace, "workspace", "", "directory for job workspaces")
}

// addSizeFlags adds canvas size flags to a FlagSet.
func addSizeFlags(fs *flag.FlagSet, f *sizeFlags) {
	fs.IntVar(&f.width, "width", 0, "canvas width in CSS pixels")
	fs.IntVar(&f.height, "height", 0, "canvas height in CSS pixels")
	fs.Float64Var(&f.scale, "scale", 0, "device pixel ratio (default 2)")
}

func newFlagSet(name string, usage func(io.Writer), stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr) }
	return fs
}

// buildRenderFlagSet registers render flags into f.
func buildRenderFlagSet(f *renderFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("render", printRenderUsage, stderr)
	fs.StringVarP(&f.output, "output", "o", "", "output PNG file (\"-\" = stdout)")
	fs.StringVar(&f.template, "template", "", "template name")
	fs.StringVar(&f.templateID, "template-id", "", "template ID")
	fs.StringVar(&f.htmlFile, "html", "", "raw HTML file instead of a template")
	fs.StringVar(&f.cssFile, "css", "", "CSS file for --html")
	fs.StringVar(&f.values, "values", "", "YAML file of field values")
	fs.StringArrayVar(&f.set, "set", nil, "field value as name=value (repeatable)")
	addSizeFlags(fs, &f.size)
	addEngineFlags(fs, &f.engine)
	addCommonFlags(fs, &f.common)
	return fs
}

// buildVideoFlagSet registers video flags into f.
func buildVideoFlagSet(f *videoFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("video", printVideoUsage, stderr)
	fs.StringVarP(&f.output, "output", "o", "", "output MP4 file (\"-\" = stdout)")
	fs.IntVar(&f.fps, "fps", 0, "frame rate (default 30)")
	fs.StringVar(&f.transition, "transition", "", "transition: fade, none")
	fs.Float64Var(&f.transitionDuration, "transition-duration", 0, "cross-fade seconds (0 or less = cuts)")
	fs.StringVar(&f.audio, "audio", "", "narration audio file")
	fs.StringVar(&f.audioURL, "audio-url", "", "narration audio URL")
	fs.DurationVar(&f.encoderTimeout, "encoder-timeout", 0, "ffmpeg wall-clock limit")
	addSizeFlags(fs, &f.size)
	addEngineFlags(fs, &f.engine)
	addCommonFlags(fs, &f.common)
	return fs
}

// buildServeFlagSet registers serve flags into f.
func buildServeFlagSet(f *serveFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("serve", printServeUsage, stderr)
	fs.StringVar(&f.addr, "addr", "", "listen address (default :8080)")
	fs.IntVar(&f.rateLimit, "rate-limit", -1, "render requests per minute per client (0 = unlimited)")
	fs.Int64Var(&f.maxBodyBytes, "max-body", 0, "request body limit in bytes")
	addEngineFlags(fs, &f.engine)
	addCommonFlags(fs, &f.common)
	return fs
}

// buildTemplatesFlagSet registers templates flags into f.
func buildTemplatesFlagSet(f *templatesFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("templates", printTemplatesUsage, stderr)
	fs.StringVar(&f.assetPath, "asset-path", "", "custom template directory")
	fs.BoolVar(&f.json, "json", false, "output JSON")
	addCommonFlags(fs, &f.common)
	return fs
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string, stderr io.Writer) (*renderFlags, []string, error) {
	f := &renderFlags{}
	fs := buildRenderFlagSet(f, stderr)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseVideoFlags parses video command flags and returns positional args.
func parseVideoFlags(args []string, stderr io.Writer) (*videoFlags, []string, error) {
	f := &videoFlags{}
	fs := buildVideoFlagSet(f, stderr)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	f.transitionDurSet = fs.Changed("transition-duration")
	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, []string, error) {
	f := &serveFlags{}
	fs := buildServeFlagSet(f, stderr)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseTemplatesFlags parses templates command flags.
func parseTemplatesFlags(args []string, stderr io.Writer) (*templatesFlags, []string, error) {
	f := &templatesFlags{}
	fs := buildTemplatesFlagSet(f, stderr)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
