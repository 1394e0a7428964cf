package importer

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	runs      *prometheus.CounterVec
	documents prometheus.Counter
	agencies  prometheus.Counter
	rejected  prometheus.Counter
	inFlight  prometheus.Gauge
	duration  *prometheus.HistogramVec
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		runs: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vbtrack",
			Subsystem: "import",
			Name:      "runs_total",
			Help:      "Total number of workbook imports by final state.",
		}, []string{"state", "trigger"}),
		documents: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "vbtrack",
			Subsystem: "import",
			Name:      "documents_total",
			Help:      "Total number of documents inserted by imports.",
		}),
		agencies: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "vbtrack",
			Subsystem: "import",
			Name:      "agencies_created_total",
			Help:      "Total number of agencies created by imports.",
		}),
		rejected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "vbtrack",
			Subsystem: "import",
			Name:      "rejected_busy_total",
			Help:      "Total number of imports rejected because another was running.",
		}),
		inFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "vbtrack",
			Subsystem: "import",
			Name:      "in_flight",
			Help:      "Whether an import is currently running (1/0).",
		}),
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vbtrack",
			Subsystem: "import",
			Name:      "duration_seconds",
			Help:      "Wall time of workbook imports.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}, []string{"state"}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}

func (m *metrics) observe(res Result, trigger string, elapsed time.Duration) {
	m.runs.WithLabelValues(string(res.State), trigger).Inc()
	m.duration.WithLabelValues(string(res.State)).Observe(elapsed.Seconds())
	m.documents.Add(float64(res.Inserted))
	m.agencies.Add(float64(res.Agencies))
}
