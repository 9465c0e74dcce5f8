package main

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-slidecast"
)

// runRender renders one image.
func runRender(ctx context.Context, args []string, env *Environment) (err error) {
	flags, positional, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		return flagError(err)
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: render takes at most one request file, got %d", ErrUsage, len(positional))
	}
	if flags.output == "" {
		return fmt.Errorf("%w: --output is required", ErrUsage)
	}

	cfg, err := loadConfig(flags.common, loadEnvConfig())
	if err != nil {
		return err
	}
	defer func() { err = withHint(err, cfg) }()
	mergeEngineFlags(flags.engine, cfg)
	if err := validateConfig(cfg); err != nil {
		return err
	}
	setupLogging(cfg, flags.common, env.Stderr)

	var requestFile string
	if len(positional) == 1 {
		requestFile = positional[0]
	}
	req, err := buildRenderRequest(flags, requestFile, env)
	if err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	engine, err := env.NewEngine(engineOptions(cfg)...)
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close() }()

	png, err := engine.RenderImage(ctx, req)
	if err != nil {
		return err
	}
	if err := writeOutput(flags.output, png, env.Stdout); err != nil {
		return err
	}
	reportWritten(env, flags.common, flags.output, len(png))
	return nil
}

// buildRenderRequest reads the optional request file, then applies flags
// over it.
func buildRenderRequest(f *renderFlags, requestFile string, env *Environment) (slidecast.RenderRequest, error) {
	var req slidecast.RenderRequest
	if requestFile != "" {
		if err := readYAML(requestFile, env.Stdin, &req); err != nil {
			return req, err
		}
		html, err := resolveMarkupAssets(req.HTML, requestFile)
		if err != nil {
			return req, err
		}
		req.HTML = html
	}

	if f.template != "" || f.templateID != "" {
		req.Template = slidecast.TemplateRef{ID: f.templateID, Name: f.template}
	}
	if f.htmlFile != "" {
		html, err := readText(f.htmlFile)
		if err != nil {
			return req, err
		}
		if html, err = resolveMarkupAssets(html, f.htmlFile); err != nil {
			return req, err
		}
		req.HTML = html
	}
	if f.cssFile != "" {
		css, err := readText(f.cssFile)
		if err != nil {
			return req, err
		}
		req.CSS = css
	}

	values, err := collectValues(f.values, f.set, env)
	if err != nil {
		return req, err
	}
	if len(values) > 0 {
		if req.Values == nil {
			req.Values = make(map[string]string, len(values))
		}
		maps.Copy(req.Values, values)
	}

	if f.size.width != 0 {
		req.Width = f.size.width
	}
	if f.size.height != 0 {
		req.Height = f.size.height
	}
	if f.size.scale != 0 {
		req.Scale = f.size.scale
	}

	if req.Template.IsZero() && strings.TrimSpace(req.HTML) == "" {
		return req, fmt.Errorf("%w: pass --template, --template-id, --html, or a request file", ErrNoInput)
	}
	return req, nil
}

// collectValues merges a values file with --set pairs; pairs win.
func collectValues(valuesFile string, pairs []string, env *Environment) (map[string]string, error) {
	values := make(map[string]string)
	if valuesFile != "" {
		if err := readYAML(valuesFile, env.Stdin, &values); err != nil {
			return nil, err
		}
	}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: --set %q (want name=value)", ErrUsage, pair)
		}
		values[name] = value
	}
	return values, nil
}

// reportWritten prints the output summary unless quiet or writing to stdout.
func reportWritten(env *Environment, common commonFlags, path string, n int) {
	if common.quiet || path == stdioPath {
		return
	}
	fmt.Fprintf(env.Stdout, "wrote %s (%d bytes)\n", path, n)
}

// flagError maps a pflag parse failure to a usage error. --help is not
// an error.
func flagError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return errHelpShown
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// errHelpShown signals that usage was printed on request.
var errHelpShown = errors.New("help shown")
