package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// APIMetrics records the image-pipeline counters exposed on /metrics.
type APIMetrics struct {
	generationDuration *prometheus.HistogramVec
	generations        *prometheus.CounterVec
	uploads            *prometheus.CounterVec
	votes              prometheus.Counter
}

// NewAPIMetrics registers the API metrics on the provided registerer.
func NewAPIMetrics(reg prometheus.Registerer) *APIMetrics {
	if reg == nil {
		return &APIMetrics{}
	}
	generationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "image_generation_duration_seconds",
		Help:    "Duration of end-to-end image generation requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	generations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "image_generations_total",
		Help: "Image generation attempts by outcome.",
	}, []string{"outcome"})
	uploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "media_uploads_total",
		Help: "Media proxy uploads by outcome.",
	}, []string{"outcome"})
	votes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "image_vote_toggles_total",
		Help: "Vote toggle operations applied.",
	})
	reg.MustRegister(generationDuration, generations, uploads, votes)
	return &APIMetrics{
		generationDuration: generationDuration,
		generations:        generations,
		uploads:            uploads,
		votes:              votes,
	}
}

// ObserveGeneration records one generation attempt and its duration.
func (m *APIMetrics) ObserveGeneration(outcome string, duration time.Duration) {
	if m == nil || m.generations == nil {
		return
	}
	m.generations.WithLabelValues(outcome).Inc()
	m.generationDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// IncUpload records one media proxy upload.
func (m *APIMetrics) IncUpload(outcome string) {
	if m == nil || m.uploads == nil {
		return
	}
	m.uploads.WithLabelValues(outcome).Inc()
}

// IncVoteToggle records one applied vote toggle.
func (m *APIMetrics) IncVoteToggle() {
	if m == nil || m.votes == nil {
		return
	}
	m.votes.Inc()
}
