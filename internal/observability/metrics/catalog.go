package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirillkom/doc-cataloger/internal/core/domain"
)

type CatalogMetrics struct {
	registry *prometheus.Registry
	service  string

	filesTotal       *prometheus.CounterVec
	fileDuration     *prometheus.HistogramVec
	filesInFlight    prometheus.Gauge
	chunksClassified *prometheus.CounterVec
}

func NewCatalogMetrics(service string) *CatalogMetrics {
	registry := prometheus.NewRegistry()

	filesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cataloger",
			Name:      "files_total",
			Help:      "Total files handled by outcome.",
		},
		[]string{"service", "outcome"},
	)
	fileDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cataloger",
			Name:      "file_duration_seconds",
			Help:      "Per-file processing duration in seconds by outcome.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service", "outcome"},
	)
	filesInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cataloger",
			Name:      "files_in_flight",
			Help:      "Number of files currently being processed.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	chunksClassified := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cataloger",
			Name:      "classification_chunks_total",
			Help:      "Total text chunks sent to the classification service.",
		},
		[]string{"service"},
	)

	registry.MustRegister(filesTotal, fileDuration, filesInFlight, chunksClassified)

	return &CatalogMetrics{
		registry:         registry,
		service:          service,
		filesTotal:       filesTotal,
		fileDuration:     fileDuration,
		filesInFlight:    filesInFlight,
		chunksClassified: chunksClassified,
	}
}

func (m *CatalogMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *CatalogMetrics) StartFile() {
	m.filesInFlight.Inc()
}

// FinishFile labels the outcome as the file status, or status/reason when
// the file was not processed.
func (m *CatalogMetrics) FinishFile(result domain.FileResult, duration time.Duration) {
	m.filesInFlight.Dec()

	outcome := string(result.Status)
	if result.Status != domain.FileProcessed && result.Reason != "" {
		outcome += "/" + result.Reason
	}

	m.filesTotal.WithLabelValues(m.service, outcome).Inc()
	m.fileDuration.WithLabelValues(m.service, outcome).Observe(duration.Seconds())
}

func (m *CatalogMetrics) ObserveChunk() {
	m.chunksClassified.WithLabelValues(m.service).Inc()
}
