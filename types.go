package slidecast

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Field types accepted in a template.
const (
	FieldText     = "text"
	FieldTextarea = "textarea"
	FieldColor    = "color"
)

// Transition names.
const (
	TransitionFade = "fade"
	TransitionNone = "none"
)

// Defaults applied to zero-valued request and job options.
const (
	DefaultWidth              = 1080
	DefaultHeight             = 1920
	DefaultFPS                = 30
	DefaultTransition         = TransitionFade
	DefaultTransitionDuration = 0.5 // seconds
	DefaultScale              = 2.0
)

// Bounds for request and job options.
const (
	MaxDimension = 8192
	MaxFPS       = 120
	MaxScale     = 4.0
	MaxSlides    = 500
)

// fieldNamePattern matches the names a placeholder can reference.
var fieldNamePattern = regexp.MustCompile(`^\w+$`)

// Field is one substitutable value declared by a template.
type Field struct {
	Name    string `yaml:"name" json:"name"`
	Type    string `yaml:"type" json:"type"` // "text", "textarea", "color"
	Label   string `yaml:"label,omitempty" json:"label,omitempty"`
	Default string `yaml:"default,omitempty" json:"default,omitempty"`
}

// Template is markup and styling with {{name}} placeholders and an
// intrinsic canvas size. Templates are read-only to the engine.
type Template struct {
	ID     string  `yaml:"id" json:"id"`
	Name   string  `yaml:"name" json:"name"`
	Width  int     `yaml:"width" json:"width"`
	Height int     `yaml:"height" json:"height"`
	Fields []Field `yaml:"fields,omitempty" json:"fields,omitempty"`
	HTML   string  `yaml:"html" json:"html"`
	CSS    string  `yaml:"css,omitempty" json:"css,omitempty"`
}

// Validate checks that a template can be rendered.
func (t *Template) Validate() error {
	if t == nil {
		return fmt.Errorf("%w: nil template", ErrInvalidTemplate)
	}
	if t.ID == "" && t.Name == "" {
		return fmt.Errorf("%w: needs an id or a name", ErrInvalidTemplate)
	}
	if strings.TrimSpace(t.HTML) == "" {
		return fmt.Errorf("%w: %s has no html", ErrInvalidTemplate, t.label())
	}
	if err := validateSize(t.Width, t.Height, false); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidTemplate, t.label(), err)
	}

	seen := make(map[string]bool, len(t.Fields))
	for _, f := range t.Fields {
		if !fieldNamePattern.MatchString(f.Name) {
			return fmt.Errorf("%w: %s: invalid field name %q", ErrInvalidTemplate, t.label(), f.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: %s: duplicate field %q", ErrInvalidTemplate, t.label(), f.Name)
		}
		seen[f.Name] = true
		switch f.Type {
		case FieldText, FieldTextarea, FieldColor:
		default:
			return fmt.Errorf("%w: %s: field %q has type %q (must be text, textarea, or color)",
				ErrInvalidTemplate, t.label(), f.Name, f.Type)
		}
	}
	return nil
}

// Resolve merges declared field defaults under values. A field whose value
// is absent or empty takes its default; keys that match no field are kept.
// values is not modified.
func (t *Template) Resolve(values map[string]string) map[string]string {
	out := make(map[string]string, len(values)+len(t.Fields))
	for k, v := range values {
		out[k] = v
	}
	for _, f := range t.Fields {
		if out[f.Name] == "" && f.Default != "" {
			out[f.Name] = f.Default
		}
	}
	return out
}

func (t *Template) label() string {
	if t.Name != "" {
		return fmt.Sprintf("template %q", t.Name)
	}
	return fmt.Sprintf("template %q", t.ID)
}

// TemplateRef names a template by ID or by name. ID wins when both are set.
type TemplateRef struct {
	ID   string `yaml:"id,omitempty" json:"id,omitempty"`
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
}

// IsZero reports whether the reference names nothing.
func (r TemplateRef) IsZero() bool {
	return r.ID == "" && r.Name == ""
}

// String implements fmt.Stringer.
func (r TemplateRef) String() string {
	if r.ID != "" {
		return "id:" + r.ID
	}
	return r.Name
}

// RenderRequest describes one image. Content is either a template
// reference with values or raw HTML and CSS, never both.
type RenderRequest struct {
	Template TemplateRef       `yaml:"template,omitempty" json:"template,omitempty"`
	Values   map[string]string `yaml:"values,omitempty" json:"values,omitempty"`
	HTML     string            `yaml:"html,omitempty" json:"html,omitempty"`
	CSS      string            `yaml:"css,omitempty" json:"css,omitempty"`
	Width    int               `yaml:"width,omitempty" json:"width,omitempty"`   // 0 = template size, else DefaultWidth
	Height   int               `yaml:"height,omitempty" json:"height,omitempty"` // 0 = template size, else DefaultHeight
	Scale    float64           `yaml:"scale,omitempty" json:"scale,omitempty"`   // 0 = DefaultScale
}

// Validate checks content choice and bounds. Zero sizes and scale are allowed.
func (r *RenderRequest) Validate() error {
	if r == nil {
		return ErrEmptyContent
	}
	if err := validateContent(r.Template, r.HTML); err != nil {
		return err
	}
	if err := validateSize(r.Width, r.Height, true); err != nil {
		return err
	}
	return validateScale(r.Scale, true)
}

// Slide is one frame of a video job.
type Slide struct {
	Template TemplateRef       `yaml:"template,omitempty" json:"template,omitempty"`
	Values   map[string]string `yaml:"values,omitempty" json:"values,omitempty"`
	HTML     string            `yaml:"html,omitempty" json:"html,omitempty"`
	CSS      string            `yaml:"css,omitempty" json:"css,omitempty"`
	Duration float64           `yaml:"duration" json:"duration"` // seconds, > 0
}

// VideoJob describes an ordered slide sequence and its encoding options.
// Zero-valued options take the package defaults. TransitionDuration is a
// pointer so an explicit 0, which selects plain concatenation, differs
// from unset.
type VideoJob struct {
	Slides             []Slide  `yaml:"slides" json:"slides"`
	AudioPath          string   `yaml:"audioPath,omitempty" json:"audioPath,omitempty"` // preferred over AudioURL
	AudioURL           string   `yaml:"audioUrl,omitempty" json:"audioUrl,omitempty"`
	Width              int      `yaml:"width,omitempty" json:"width,omitempty"`
	Height             int      `yaml:"height,omitempty" json:"height,omitempty"`
	FPS                int      `yaml:"fps,omitempty" json:"fps,omitempty"`
	Transition         string   `yaml:"transition,omitempty" json:"transition,omitempty"`
	TransitionDuration *float64 `yaml:"transitionDuration,omitempty" json:"transitionDuration,omitempty"`
	Scale              float64  `yaml:"scale,omitempty" json:"scale,omitempty"`
}

// WithDefaults returns a copy of j with every unset option filled in.
// Slides are shared with j.
func (j VideoJob) WithDefaults() VideoJob {
	if j.Width == 0 {
		j.Width = DefaultWidth
	}
	if j.Height == 0 {
		j.Height = DefaultHeight
	}
	if j.FPS == 0 {
		j.FPS = DefaultFPS
	}
	j.Transition = strings.ToLower(j.Transition)
	if j.Transition == "" {
		j.Transition = DefaultTransition
	}
	if j.TransitionDuration == nil {
		d := DefaultTransitionDuration
		j.TransitionDuration = &d
	}
	if j.Scale == 0 {
		j.Scale = DefaultScale
	}
	return j
}

// Inherit returns a copy of j whose unset options are taken from base.
// Slides and audio are never inherited.
func (j VideoJob) Inherit(base VideoJob) VideoJob {
	if j.Width == 0 {
		j.Width = base.Width
	}
	if j.Height == 0 {
		j.Height = base.Height
	}
	if j.FPS == 0 {
		j.FPS = base.FPS
	}
	if j.Transition == "" {
		j.Transition = base.Transition
	}
	if j.TransitionDuration == nil && base.TransitionDuration != nil {
		d := *base.TransitionDuration
		j.TransitionDuration = &d
	}
	if j.Scale == 0 {
		j.Scale = base.Scale
	}
	return j
}

// Validate checks a job after WithDefaults. A transition that is not
// shorter than every slide is rejected, never clamped. A transition
// duration of zero or less is valid and means plain cuts.
func (j *VideoJob) Validate() error {
	if j == nil || len(j.Slides) == 0 {
		return ErrNoSlides
	}
	if len(j.Slides) > MaxSlides {
		return fmt.Errorf("%w: %d (max %d)", ErrTooManySlides, len(j.Slides), MaxSlides)
	}
	if err := validateSize(j.Width, j.Height, false); err != nil {
		return err
	}
	// yuv420p chroma subsampling needs even dimensions.
	if j.Width%2 != 0 || j.Height%2 != 0 {
		return fmt.Errorf("%w: %dx%d (video dimensions must be even)", ErrInvalidDimensions, j.Width, j.Height)
	}
	if j.FPS < 1 || j.FPS > MaxFPS {
		return fmt.Errorf("%w: %d (must be between 1 and %d)", ErrInvalidFPS, j.FPS, MaxFPS)
	}
	if err := validateScale(j.Scale, false); err != nil {
		return err
	}

	switch j.Transition {
	case TransitionFade, TransitionNone:
	default:
		return fmt.Errorf("%w: %q (must be fade or none)", ErrInvalidTransition, j.Transition)
	}
	td := 0.0
	if j.TransitionDuration != nil {
		td = *j.TransitionDuration
	}
	// Zero or negative selects concatenation; only non-finite values are rejected.
	if math.IsNaN(td) || math.IsInf(td, 0) {
		return fmt.Errorf("%w: duration %v", ErrInvalidTransition, td)
	}

	for i, s := range j.Slides {
		if err := validateContent(s.Template, s.HTML); err != nil {
			return fmt.Errorf("slide %d: %w", i+1, err)
		}
		if !(s.Duration > 0) || math.IsInf(s.Duration, 0) {
			return fmt.Errorf("%w: slide %d has duration %v", ErrInvalidDuration, i+1, s.Duration)
		}
	}

	if j.Transition == TransitionFade && td > 0 && len(j.Slides) > 1 {
		for i, s := range j.Slides {
			if td >= s.Duration {
				return fmt.Errorf("%w: transition %vs, slide %d lasts %vs", ErrTransitionTooLong, td, i+1, s.Duration)
			}
		}
	}
	return nil
}

// hasAudio reports whether the job carries narration.
func (j *VideoJob) hasAudio() bool {
	return j.AudioPath != "" || j.AudioURL != ""
}

func validateContent(ref TemplateRef, html string) error {
	hasTemplate := !ref.IsZero()
	hasHTML := strings.TrimSpace(html) != ""
	switch {
	case hasTemplate && hasHTML:
		return ErrAmbiguousContent
	case !hasTemplate && !hasHTML:
		return ErrEmptyContent
	}
	return nil
}

func validateSize(width, height int, allowZero bool) error {
	valid := func(v int) bool {
		return (allowZero && v == 0) || (v >= 1 && v <= MaxDimension)
	}
	if !valid(width) || !valid(height) {
		return fmt.Errorf("%w: %dx%d (each side must be between 1 and %d)", ErrInvalidDimensions, width, height, MaxDimension)
	}
	return nil
}

func validateScale(scale float64, allowZero bool) error {
	if allowZero && scale == 0 {
		return nil
	}
	if !(scale > 0 && scale <= MaxScale) {
		return fmt.Errorf("%w: %v (must be greater than 0 and at most %v)", ErrInvalidScale, scale, MaxScale)
	}
	return nil
}
