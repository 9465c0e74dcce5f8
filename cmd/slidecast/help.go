package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: slidecast <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render       Render a template or HTML to PNG")
	fmt.Fprintln(w, "  video        Render a slide job to MP4")
	fmt.Fprintln(w, "  serve        Serve the render API over HTTP")
	fmt.Fprintln(w, "  templates    List available templates")
	fmt.Fprintln(w, "  doctor       Check Chrome, ffmpeg, and system setup")
	fmt.Fprintln(w, "  completion   Generate shell completion script")
	fmt.Fprintln(w, "  version      Show version information")
	fmt.Fprintln(w, "  help         Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'slidecast help <command>' for details on a specific command.")
}

// printEngineUsage prints the engine flags shared by render, video and serve.
func printEngineUsage(w io.Writer) {
	fmt.Fprintln(w, "Engine:")
	fmt.Fprintln(w, "      --timeout <d>         Per-frame render timeout (e.g., 30s)")
	fmt.Fprintln(w, "  -w, --workers <n>         Slides rendered in parallel (0 = auto)")
	fmt.Fprintln(w, "      --browser-bin <path>  Chrome/Chromium binary")
	fmt.Fprintln(w, "      --ffmpeg <path>       ffmpeg binary")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom templates/ and fonts/ directory")
	fmt.Fprintln(w, "      --workspace <dir>     Directory for job workspaces")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: slidecast render [request.yaml] -o <out.png> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render one image. Content comes from a template or raw HTML,")
	fmt.Fprintln(w, "given by flags or by a YAML request file (\"-\" = stdin).")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Content:")
	fmt.Fprintln(w, "  -o, --output <path>       Output PNG (\"-\" = stdout)")
	fmt.Fprintln(w, "      --template <name>     Template name")
	fmt.Fprintln(w, "      --template-id <id>    Template ID")
	fmt.Fprintln(w, "      --set <name=value>    Field value (repeatable)")
	fmt.Fprintln(w, "      --values <file>       YAML map of field values")
	fmt.Fprintln(w, "      --html <file>         Raw HTML instead of a template")
	fmt.Fprintln(w, "      --css <file>          CSS for --html")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Canvas:")
	fmt.Fprintln(w, "      --width <px>          Width (default: template, else 1080)")
	fmt.Fprintln(w, "      --height <px>         Height (default: template, else 1920)")
	fmt.Fprintln(w, "      --scale <f>           Device pixel ratio (default 2)")
	fmt.Fprintln(w)
	printEngineUsage(w)
}

// printVideoUsage prints usage for the video command.
func printVideoUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: slidecast video <job.yaml> [-o out.mp4] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render every slide of a job and encode them to MP4.")
	fmt.Fprintln(w, "Flags override the job file; the config's video section fills the rest.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Video:")
	fmt.Fprintln(w, "  -o, --output <path>            Output MP4 (default: job name .mp4, \"-\" = stdout)")
	fmt.Fprintln(w, "      --width <px>               Width (default 1080, must be even)")
	fmt.Fprintln(w, "      --height <px>              Height (default 1920, must be even)")
	fmt.Fprintln(w, "      --scale <f>                Device pixel ratio (default 2)")
	fmt.Fprintln(w, "      --fps <n>                  Frame rate (default 30)")
	fmt.Fprintln(w, "      --transition <s>           fade, none (default fade)")
	fmt.Fprintln(w, "      --transition-duration <f>  Cross-fade seconds (default 0.5, 0 = cuts)")
	fmt.Fprintln(w, "      --audio <file>             Narration audio file")
	fmt.Fprintln(w, "      --audio-url <url>          Narration audio URL")
	fmt.Fprintln(w, "      --encoder-timeout <d>      ffmpeg wall-clock limit")
	fmt.Fprintln(w)
	printEngineUsage(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: slidecast serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve the render API:")
	fmt.Fprintln(w, "  POST /v1/render     JSON render request -> image/png")
	fmt.Fprintln(w, "  POST /v1/video      JSON video job -> video/mp4")
	fmt.Fprintln(w, "  GET  /v1/templates  Template list")
	fmt.Fprintln(w, "  GET  /healthz       Readiness (ffmpeg probe)")
	fmt.Fprintln(w, "  GET  /metrics       Prometheus metrics")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "      --addr <addr>         Listen address (default :8080)")
	fmt.Fprintln(w, "      --rate-limit <n>      Render requests per minute per client (0 = unlimited)")
	fmt.Fprintln(w, "      --max-body <bytes>    Request body limit")
	fmt.Fprintln(w)
	printEngineUsage(w)
}

// printTemplatesUsage prints usage for the templates command.
func printTemplatesUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: slidecast templates [--asset-path <dir>] [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List embedded templates and those under <asset-path>/templates.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "video":
		printVideoUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "templates":
		printTemplatesUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: slidecast doctor [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check Chrome, ffmpeg, and system setup.")
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: slidecast version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: slidecast help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
