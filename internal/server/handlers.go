package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/alnah/go-slidecast"
	"github.com/alnah/go-slidecast/internal/log"
)

// Error codes in JSON error bodies.
const (
	codeInvalidRequest   = "invalid_request"
	codeTooLarge         = "request_too_large"
	codeNotFound         = "not_found"
	codeTemplateNotFound = "template_not_found"
	codeUnprocessable    = "unprocessable"
	codeMethodNotAllowed = "method_not_allowed"
	codeRateLimited      = "rate_limit_exceeded"
	codeUpstream         = "render_failed"
	codeUnavailable      = "unavailable"
	codeTimeout          = "timeout"
	codeInternal         = "internal_error"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error     string `json:"error"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type templateList struct {
	Templates []slidecast.Template `json:"templates"`
}

type health struct {
	Status  string `json:"status"`
	Encoder string `json:"encoder,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req slidecast.RenderRequest
	if !s.decode(w, r, &req) {
		return
	}
	png, err := s.engine.RenderImage(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeBinary(w, "image/png", png)
}

func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	var job slidecast.VideoJob
	if !s.decode(w, r, &job) {
		return
	}
	mp4, err := s.engine.RenderVideo(r.Context(), job.Inherit(s.defaults))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeBinary(w, "video/mp4", mp4)
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.engine.Templates(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if templates == nil {
		templates = []slidecast.Template{}
	}
	writeJSON(w, http.StatusOK, templateList{Templates: templates})
}

// handleHealth reports ready only when the encoder answers.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()
	version, err := s.engine.CheckEncoder(ctx)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, health{Status: "unavailable", Detail: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, health{Status: "ok", Encoder: version})
}

// decode reads a strict JSON body into v. On failure it writes the
// response and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	if err == nil && dec.More() {
		err = errors.New("trailing data after JSON body")
	}
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, r, http.StatusRequestEntityTooLarge, codeTooLarge,
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
	case errors.Is(err, io.EOF):
		writeError(w, r, http.StatusBadRequest, codeInvalidRequest, "empty request body")
	default:
		writeError(w, r, http.StatusBadRequest, codeInvalidRequest, "malformed JSON: "+err.Error())
	}
	return false
}

// fail maps an engine error to a status and logs server-side failures.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		logger := log.WithContext(r.Context(), s.logger)
		logger.Error().Err(err).Int("status", status).Msg("request failed")
	}
	detail := err.Error()
	if status == http.StatusInternalServerError {
		detail = "internal error"
	}
	writeError(w, r, status, code, detail)
}

// classify maps engine errors to HTTP statuses.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, slidecast.ErrTemplateNotFound):
		return http.StatusNotFound, codeTemplateNotFound
	case errors.Is(err, slidecast.ErrTransitionTooLong):
		return http.StatusUnprocessableEntity, codeUnprocessable
	case isInvalid(err):
		return http.StatusBadRequest, codeInvalidRequest
	case errors.Is(err, slidecast.ErrEncoderNotFound),
		errors.Is(err, slidecast.ErrClosed):
		return http.StatusServiceUnavailable, codeUnavailable
	case errors.Is(err, slidecast.ErrBrowserConnect),
		errors.Is(err, slidecast.ErrPageCreate),
		errors.Is(err, slidecast.ErrPageLoad),
		errors.Is(err, slidecast.ErrCapture),
		errors.Is(err, slidecast.ErrEncode),
		errors.Is(err, slidecast.ErrAudioDownload):
		return http.StatusBadGateway, codeUpstream
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, codeTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, codeUnavailable
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

// isInvalid reports whether err is a caller mistake in the request body.
func isInvalid(err error) bool {
	for _, target := range []error{
		slidecast.ErrEmptyContent,
		slidecast.ErrAmbiguousContent,
		slidecast.ErrNoSlides,
		slidecast.ErrTooManySlides,
		slidecast.ErrInvalidDuration,
		slidecast.ErrInvalidTransition,
		slidecast.ErrInvalidDimensions,
		slidecast.ErrInvalidScale,
		slidecast.ErrInvalidFPS,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, detail string) {
	writeJSON(w, status, errorBody{
		Error:     code,
		Detail:    detail,
		RequestID: log.RequestIDFromContext(r.Context()),
	})
}

func writeBinary(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
