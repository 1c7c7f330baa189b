// Package metrics exposes Prometheus instruments for schedule operations.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wrale/wrale-scheduler/internal/wschedd/schedule"
)

// Operation outcomes
const (
	OutcomeOK        = "ok"
	OutcomeInvalid   = "invalid"
	OutcomeForbidden = "forbidden"
	OutcomeConflict  = "conflict"
	OutcomeNotFound  = "not_found"
	OutcomeError     = "error"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wsched_operations_total",
		Help: "Schedule operations by operation and outcome",
	}, []string{"operation", "outcome"})

	collisionCheckDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wsched_collision_check_duration_seconds",
		Help:    "Time spent checking a candidate against existing entries",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	}, []string{"kind"})

	collisionComparedOccurrences = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wsched_collision_compared_occurrences",
		Help:    "Existing occurrences compared per collision check",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	}, []string{"kind"})

	conflictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wsched_conflicts_total",
		Help: "Candidates rejected because they collide with an existing entry",
	}, []string{"kind"})

	expandedOccurrences = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wsched_expanded_occurrences",
		Help:    "Occurrences produced per expansion of a candidate or query",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	}, []string{"kind"})

	eventsPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wsched_event_publish_failures_total",
		Help: "Schedule change notifications that could not be delivered",
	}, []string{"type"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wsched_http_request_duration_seconds",
		Help:    "HTTP request latencies in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

// Recorder records schedule metrics. The zero value is ready to use.
type Recorder struct{}

// NewRecorder returns a recorder backed by the default registry
func NewRecorder() *Recorder {
	return &Recorder{}
}

// ObserveCollisionCheck records a finished collision check
func (*Recorder) ObserveCollisionCheck(kind schedule.Kind, elapsed time.Duration, compared int, conflict bool) {
	collisionCheckDuration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
	collisionComparedOccurrences.WithLabelValues(string(kind)).Observe(float64(compared))
	if conflict {
		conflictsTotal.WithLabelValues(string(kind)).Inc()
	}
}

// ObserveOperation counts a finished service operation
func (*Recorder) ObserveOperation(operation, outcome string) {
	if outcome == "" {
		outcome = OutcomeOK
	}
	operationsTotal.WithLabelValues(operation, outcome).Inc()
}

// ObserveExpansion records how many occurrences an expansion produced
func (*Recorder) ObserveExpansion(kind schedule.Kind, occurrences int) {
	expandedOccurrences.WithLabelValues(string(kind)).Observe(float64(occurrences))
}

// ObservePublishFailure counts an undelivered notification
func (*Recorder) ObservePublishFailure(eventType string) {
	eventsPublishFailures.WithLabelValues(eventType).Inc()
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request latency by route pattern
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		// Route patterns keep label cardinality bounded
		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		httpRequestDuration.WithLabelValues(r.Method, path, strconv.Itoa(sw.status)).
			Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}
