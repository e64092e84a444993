// Package obsmetrics exposes Prometheus counters/gauges for a flashing run
// and serves them alongside a readiness probe.
package obsmetrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/axflash/axdl-go/internal/obslog"
)

var (
	// BytesWritten counts bytes streamed into the device across all images.
	BytesWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "axdl_bytes_written_total",
		Help: "Total bytes streamed to the device across all images.",
	})

	// ChunksWritten counts write_chunk exchanges.
	ChunksWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "axdl_chunks_written_total",
		Help: "Total chunk writes sent to the device.",
	})

	// ImagesCompleted counts images that finished streaming successfully,
	// labeled by image type (FDL1, FDL2, CODE).
	ImagesCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "axdl_images_completed_total",
		Help: "Images successfully streamed to the device, by image type.",
	}, []string{"image_type"})

	// HandshakeAttempts counts handshake probes sent, labeled by the banner
	// the caller expected ("romcode", "fdl1").
	HandshakeAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "axdl_handshake_attempts_total",
		Help: "Handshake probes sent, by expected banner.",
	}, []string{"want"})

	// Errors counts failed runs, labeled by the Go type name of the error
	// the run ended with. Errors that the orchestrator wraps with stage
	// context carry the wrapper's type, not that of the wire error inside.
	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "axdl_errors_total",
		Help: "Flashing errors, by error kind.",
	}, []string{"kind"})

	// RunDurationSeconds observes the wall-clock duration of a complete run.
	RunDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "axdl_run_duration_seconds",
		Help:    "Duration of a complete flashing run.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	// StageProgress reports the fractional completion (0-1) of the most
	// recent progress report, labeled by stage.
	StageProgress = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "axdl_stage_progress_ratio",
		Help: "Most recently reported fractional completion, by stage.",
	}, []string{"stage"})

	readinessMu sync.RWMutex
	readinessFn func() bool
)

// SetReadinessFunc registers the function /ready consults.
func SetReadinessFunc(fn func() bool) {
	readinessMu.Lock()
	readinessFn = fn
	readinessMu.Unlock()
}

// IsReady invokes the registered readiness function, defaulting to true
// when none has been registered yet.
func IsReady() bool {
	readinessMu.RLock()
	fn := readinessFn
	readinessMu.RUnlock()
	if fn == nil {
		return true
	}
	return fn()
}

// StartHTTP serves /metrics and /ready on addr and returns the server so
// the caller can Shutdown it.
func StartHTTP(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if IsReady() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready\n"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready\n"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		obslog.L().Info("metrics_listen", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obslog.L().Error("metrics_http_error", "error", err)
		}
	}()
	return srv
}
