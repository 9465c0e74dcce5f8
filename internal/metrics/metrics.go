// Package metrics exposes Prometheus instruments for rendering and encoding.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
)

// Job kinds.
const (
	KindImage = "image"
	KindVideo = "video"
)

var (
	framesRendered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slidecast_frames_rendered_total",
		Help: "Frames rasterized by the headless browser",
	}, []string{"outcome"})

	frameDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "slidecast_frame_render_duration_seconds",
		Help:    "Time to rasterize one frame",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
	})

	encodes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slidecast_encodes_total",
		Help: "Video encoder invocations",
	}, []string{"strategy", "outcome"})

	encodeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "slidecast_encode_duration_seconds",
		Help:    "Wall-clock duration of one encode",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~4m
	}, []string{"strategy"})

	jobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slidecast_jobs_total",
		Help: "Completed render jobs",
	}, []string{"kind", "outcome"})

	jobsInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "slidecast_jobs_in_flight",
		Help: "Render jobs currently running",
	}, []string{"kind"})

	audioDownloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slidecast_audio_downloads_total",
		Help: "Narration downloads",
	}, []string{"outcome"})
)

// Outcome classifies err into an outcome label. Pass ctxErr so canceled
// work is not counted as a failure.
func Outcome(err, ctxErr error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case ctxErr != nil:
		return OutcomeCanceled
	default:
		return OutcomeError
	}
}

// RecordFrame records one rasterization.
func RecordFrame(elapsed time.Duration, outcome string) {
	framesRendered.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK {
		frameDuration.Observe(elapsed.Seconds())
	}
}

// RecordEncode records one encoder run.
func RecordEncode(strategy string, elapsed time.Duration, outcome string) {
	encodes.WithLabelValues(strategy, outcome).Inc()
	if outcome == OutcomeOK {
		encodeDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
	}
}

// RecordAudioDownload records one narration download.
func RecordAudioDownload(outcome string) {
	audioDownloads.WithLabelValues(outcome).Inc()
}

// StartJob marks a job of kind as running. The returned function records
// its outcome and must be called exactly once.
func StartJob(kind string) func(outcome string) {
	jobsInFlight.WithLabelValues(kind).Inc()
	return func(outcome string) {
		jobsInFlight.WithLabelValues(kind).Dec()
		jobs.WithLabelValues(kind, outcome).Inc()
	}
}
