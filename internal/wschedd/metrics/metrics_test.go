package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrale/wrale-scheduler/internal/wschedd/schedule"
)

func TestObserveCollisionCheck(t *testing.T) {
	r := NewRecorder()
	before := testutil.ToFloat64(conflictsTotal.WithLabelValues(string(schedule.KindShow)))

	r.ObserveCollisionCheck(schedule.KindShow, time.Millisecond, 12, true)
	r.ObserveCollisionCheck(schedule.KindShow, time.Millisecond, 3, false)

	after := testutil.ToFloat64(conflictsTotal.WithLabelValues(string(schedule.KindShow)))
	assert.Equal(t, before+1, after)
}

func TestObserveOperation(t *testing.T) {
	r := NewRecorder()
	counter := operationsTotal.WithLabelValues("ScheduleService.SaveShow", OutcomeOK)
	before := testutil.ToFloat64(counter)

	r.ObserveOperation("ScheduleService.SaveShow", "")
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestHandlerExposesInstruments(t *testing.T) {
	NewRecorder().ObserveExpansion(schedule.KindPermission, 4)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "wsched_expanded_occurrences")
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/shows/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/shows/42", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	count := testutil.CollectAndCount(httpRequestDuration, "wsched_http_request_duration_seconds")
	assert.GreaterOrEqual(t, count, 1)
}
