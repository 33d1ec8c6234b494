package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

type recordingMetrics struct {
	endpoints []string
	statuses  []int
}

func (m *recordingMetrics) IncRequestsTotal(endpoint string, status int) {
	m.endpoints = append(m.endpoints, endpoint)
	m.statuses = append(m.statuses, status)
}

func (m *recordingMetrics) ObserveRequestDuration(string, time.Duration) {}

func TestInstrumentLabelsByRouteTemplate(t *testing.T) {
	metrics := &recordingMetrics{}

	router := mux.NewRouter()
	router.Use(Instrument(metrics))
	router.HandleFunc("/api/library/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodDelete)

	// Different path parameters must collapse into a single endpoint label.
	for _, id := range []string{"11111111-aaaa", "22222222-bbbb"} {
		req := httptest.NewRequest(http.MethodDelete, "/api/library/"+id, nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, []string{"/api/library/{id}", "/api/library/{id}"}, metrics.endpoints)
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent}, metrics.statuses)
}

func TestHTTPStatusBucket(t *testing.T) {
	assert.Equal(t, "2xx", httpStatusBucket(http.StatusCreated))
	assert.Equal(t, "4xx", httpStatusBucket(http.StatusConflict))
	assert.Equal(t, "5xx", httpStatusBucket(http.StatusBadGateway))
}
