// Package metrics exposes Prometheus instrumentation on a dedicated
// registry, keeping the default global registry untouched.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "schoolcms"

// Registry holds every metric the server exports.
var Registry = prometheus.NewRegistry()

// AppInfo exposes build information as labels. The value is always 1.
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application build information (always 1, details in labels)",
	},
	[]string{"version", "commit", "build_date"},
)

// LoginAttempts counts admin login attempts by outcome.
var LoginAttempts = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of admin login attempts",
	},
	[]string{"outcome"}, // success|failure
)

// ContentWrites counts create, update and delete operations per resource.
var ContentWrites = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "content_writes_total",
		Help:      "Total number of content write operations",
	},
	[]string{"resource", "operation"}, // operation: create|update|delete
)

// UploadsStored counts stored upload files.
var UploadsStored = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_stored_total",
		Help:      "Total number of uploaded files stored",
	},
)

// UploadBytes records uploaded file sizes.
var UploadBytes = promauto.With(Registry).NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upload_size_bytes",
		Help:      "Uploaded file size in bytes",
		Buckets:   []float64{10_000, 100_000, 500_000, 1_000_000, 5_000_000, 10_000_000},
	},
)

// Init registers the runtime collectors and sets build information.
func Init(version, commit, buildDate string) {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	AppInfo.WithLabelValues(version, commit, buildDate).Set(1)
}
