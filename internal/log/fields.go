package log

// Canonical field name constants for structured logging.
const (
	FieldService   = "service"
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldJobID     = "job_id"

	FieldSlide      = "slide"
	FieldSlides     = "slides"
	FieldTemplate   = "template"
	FieldStrategy   = "strategy"
	FieldResolution = "resolution"
	FieldFPS        = "fps"
	FieldEncoder    = "encoder"
	FieldDuration   = "duration_s"
	FieldPath       = "path"
	FieldBytes      = "bytes"
	FieldStderr     = "stderr"
)
