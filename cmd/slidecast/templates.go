package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/alnah/go-slidecast"
)

// runTemplates lists the available templates.
func runTemplates(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseTemplatesFlags(args, env.Stderr)
	if err != nil {
		return flagError(err)
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: templates takes no arguments", ErrUsage)
	}

	cfg, err := loadConfig(flags.common, loadEnvConfig())
	if err != nil {
		return err
	}
	if flags.assetPath != "" {
		cfg.Assets.BasePath = flags.assetPath
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	store, err := slidecast.NewAssetStore(cfg.Assets.BasePath)
	if err != nil {
		return err
	}
	templates, err := store.Templates(ctx)
	if err != nil {
		return err
	}

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(templates)
	}
	printTemplates(env.Stdout, templates)
	return nil
}

// printTemplates writes one aligned row per template.
func printTemplates(w io.Writer, templates []slidecast.Template) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tFIELDS\tID")
	for _, t := range templates {
		names := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			names[i] = f.Name
		}
		fields := "-"
		if len(names) > 0 {
			fields = strings.Join(names, ",")
		}
		fmt.Fprintf(tw, "%s\t%dx%d\t%s\t%s\n", t.Name, t.Width, t.Height, fields, t.ID)
	}
	_ = tw.Flush()
}
