package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors for admissions and relay passes.
type Metrics struct {
	HTTPRequests      *prometheus.CounterVec
	AdmissionsTotal   *prometheus.CounterVec
	PhotosAdmitted    prometheus.Counter
	RelayPassesTotal  prometheus.Counter
	RelayProcessed    prometheus.Counter
	RelayFailed       prometheus.Counter
	RelayPassDuration prometheus.Histogram
}

// New registers the application collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests processed.",
			},
			[]string{"method", "path", "status"},
		),
		AdmissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lumo_admissions_total",
				Help: "Upload admission decisions by outcome.",
			},
			[]string{"outcome"},
		),
		PhotosAdmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lumo_photos_admitted_total",
			Help: "Files accepted into the staging area.",
		}),
		RelayPassesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lumo_relay_passes_total",
			Help: "Completed relay worker passes.",
		}),
		RelayProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lumo_relay_processed_total",
			Help: "Photos migrated to durable storage.",
		}),
		RelayFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lumo_relay_failed_total",
			Help: "Per-file relay failures, including abandoned local files.",
		}),
		RelayPassDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lumo_relay_pass_duration_seconds",
			Help:    "Wall time of a relay pass.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		m.HTTPRequests,
		m.AdmissionsTotal,
		m.PhotosAdmitted,
		m.RelayPassesTotal,
		m.RelayProcessed,
		m.RelayFailed,
		m.RelayPassDuration,
	)
	return m
}
