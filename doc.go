// Package slidecast renders HTML slide templates to PNG images and to MP4
// videos using headless Chrome and ffmpeg.
//
// # Quick Start
//
// Create an engine, render, and close when done:
//
//	eng, err := slidecast.NewEngine()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close()
//
//	png, err := eng.RenderImage(ctx, slidecast.RenderRequest{
//	    Template: slidecast.TemplateRef{Name: "title-card"},
//	    Values:   map[string]string{"title": "Hello"},
//	})
//
// # Templates
//
// A template is markup and styling with {{name}} placeholders, a list of
// fields and an intrinsic canvas size. Placeholders accept an inline
// default: {{accent|#f5b700}}. Values missing from a request fall back to
// the field's declared default, then to the inline default, then to "".
//
// Templates come from a TemplateStore. The default store serves the
// embedded starter set; WithAssetPath layers a directory of YAML files
// (templates/<name>.yaml, fonts/*) on top of it:
//
//	eng, err := slidecast.NewEngine(slidecast.WithAssetPath("/srv/slides"))
//
// # Video Pipeline
//
// RenderVideo runs these stages and removes its scratch directory on
// every exit path:
//
//  1. Job validation and encoder probe (ffmpeg -version)
//  2. Template resolution for every slide
//  3. Parallel rasterization, one PNG per slide at the job's size
//  4. Narration acquisition (local path or HTTP download)
//  5. Composition: single frame, concatenation, or xfade cross-fades
//
// With the fade transition the output lasts the sum of slide durations
// minus one transition per slide boundary.
//
// # Requirements
//
// Rendering requires Chrome/Chromium. go-rod downloads a managed Chromium
// on first run unless ROD_BROWSER_BIN points at an installed binary.
// Video output requires ffmpeg with libx264 and aac on PATH, or a binary
// set with WithEncoder.
package slidecast
