package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc := NewService(reg)

	svc.IncBackendRequest("fetch_user_matches", OutcomeSuccess)
	svc.IncBackendRequest("fetch_user_matches", OutcomeSuccess)
	svc.IncBackendRequest("accept_match", OutcomeFailure)
	svc.AddMalformedRecords(3)
	svc.AddMalformedRecords(0)
	svc.IncWeekBuilds()

	assert.Equal(t, 2.0, testutil.ToFloat64(svc.BackendRequests.WithLabelValues("fetch_user_matches", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.BackendRequests.WithLabelValues("accept_match", OutcomeFailure)))
	assert.Equal(t, 3.0, testutil.ToFloat64(svc.MalformedRecords))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.WeekBuilds))
}

func TestMetricsHandler_ExposesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc := NewService(reg)
	svc.IncActionInFlight()

	rr := httptest.NewRecorder()
	req, err := http.NewRequest("GET", "/metrics", nil)
	require.NoError(t, err)
	NewMetricsHandler(reg).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "rally_actions_in_flight_rejected_total 1")
}
