// Package observability provides Prometheus metrics and OpenTelemetry
// tracing for the application.
package observability

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glimpse_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// ImageTranscodes counts image transcode attempts by outcome.
	ImageTranscodes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glimpse_image_transcodes_total",
		Help: "Total number of image transcode attempts by outcome",
	}, []string{"outcome"})

	// PhotoUnlinkFailures counts best-effort photo file deletions that failed.
	PhotoUnlinkFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glimpse_photo_unlink_failures_total",
		Help: "Total number of photo file deletions that failed",
	})

	// LikeToggles counts like toggles by resource and resulting state.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glimpse_like_toggles_total",
		Help: "Total number of like toggles by resource and resulting state",
	}, []string{"resource", "state"})
)

var (
	httpMetricsOnce sync.Once
	httpMetrics     *fiberprometheus.FiberPrometheus
)

// InitHTTPMetrics creates the fiberprometheus middleware for HTTP
// request metrics, registered at /metrics by the server. The instance
// is shared: fiberprometheus registers its collectors on the default
// registry, which tolerates only one registration per process.
func InitHTTPMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	httpMetricsOnce.Do(func() {
		httpMetrics = fiberprometheus.New(serviceName)
	})
	return httpMetrics
}
