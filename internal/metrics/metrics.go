// Package metrics exposes Prometheus collectors for the itinerary pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Lookup kinds reported by ObserveLookup.
const (
	LookupImage           = "image"
	LookupActivityWeather = "activity_weather"
	LookupDayWeather      = "day_weather"
)

// Recorder owns the pipeline's collectors. The zero value is not usable;
// construct with NewRecorder.
type Recorder struct {
	generation *prometheus.HistogramVec
	lookups    *prometheus.CounterVec
	enrichment prometheus.Histogram
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		generation: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "itinerary",
			Name:      "generation_duration_seconds",
			Help:      "Duration of plan generation calls by outcome (ok, error, invalid_output).",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
		}, []string{"outcome"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "itinerary",
			Name:      "enrichment_lookups_total",
			Help:      "Enrichment lookups by kind and outcome (ok, unavailable).",
		}, []string{"kind", "outcome"}),
		enrichment: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "itinerary",
			Name:      "enrichment_duration_seconds",
			Help:      "Wall time of the full enrichment fan-out for one plan.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(r.generation, r.lookups, r.enrichment)
	return r
}

// ObserveGeneration records one generation call.
func (r *Recorder) ObserveGeneration(outcome string, d time.Duration) {
	r.generation.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveLookup records one enrichment lookup; ok=false means a placeholder was used.
func (r *Recorder) ObserveLookup(kind string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "unavailable"
	}
	r.lookups.WithLabelValues(kind, outcome).Inc()
}

// ObserveEnrichment records the duration of one enrichment pass.
func (r *Recorder) ObserveEnrichment(d time.Duration) {
	r.enrichment.Observe(d.Seconds())
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
