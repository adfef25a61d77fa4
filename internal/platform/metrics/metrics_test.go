package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lyceum/internal/platform/metrics"
	"lyceum/internal/shared/gate"
)

func TestRecordDecision(t *testing.T) {
	t.Parallel()

	m, err := metrics.New()
	require.NoError(t, err)

	m.RecordDecision("product.delete", gate.DenyForbidden)
	m.RecordDecision("product.delete", gate.DenyForbidden)
	m.RecordDecision("product.delete", gate.Allow)

	count, err := testutil.GatherAndCount(m.Registry(), "lyceum_gate_decisions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per decision label")
}

func TestHandlerExposesMetrics(t *testing.T) {
	t.Parallel()

	m, err := metrics.New()
	require.NoError(t, err)
	m.ObserveRequest(http.MethodDelete, "DELETE /api/v1/products/{product_id}", http.StatusNoContent, 12*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `lyceum_http_requests_total{method="DELETE",route="DELETE /api/v1/products/{product_id}",status="204"} 1`)
}

func TestObserveRequestFoldsUnknownMethods(t *testing.T) {
	t.Parallel()

	m, err := metrics.New()
	require.NoError(t, err)
	for _, method := range []string{"FOO", "BAR", "get", http.MethodGet} {
		m.ObserveRequest(method, "", http.StatusMethodNotAllowed, time.Millisecond)
	}

	count, err := testutil.GatherAndCount(m.Registry(), "lyceum_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "only GET and other")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `lyceum_http_requests_total{method="other",route="unmatched",status="405"} 3`)
	assert.NotContains(t, string(body), `method="FOO"`)
}
