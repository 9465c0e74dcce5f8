package slidecast

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyContent     = errors.New("slide needs a template or HTML content")
	ErrAmbiguousContent = errors.New("slide cannot have both a template and HTML content")
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidTemplate  = errors.New("invalid template")

	// Job validation errors.
	ErrNoSlides          = errors.New("video job needs at least one slide")
	ErrTooManySlides     = errors.New("too many slides")
	ErrInvalidDuration   = errors.New("slide duration must be positive")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrTransitionTooLong = errors.New("transition duration must be shorter than every slide")
	ErrInvalidDimensions = errors.New("invalid dimensions")
	ErrInvalidScale      = errors.New("invalid scale")
	ErrInvalidFPS        = errors.New("invalid frame rate")

	// Rendering errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrCapture        = errors.New("failed to capture screenshot")

	// Encoding errors.
	ErrEncoderNotFound = errors.New("video encoder not found")
	ErrEncode          = errors.New("video encoding failed")
	ErrAudioDownload   = errors.New("audio download failed")

	ErrInvalidAssetPath = errors.New("invalid asset path")
	ErrClosed           = errors.New("engine closed")
)
