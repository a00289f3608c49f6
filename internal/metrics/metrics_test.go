package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(ordersExecuted.WithLabelValues("buy"))
	RecordOrder("buy")
	assert.Equal(t, before+1, testutil.ToFloat64(ordersExecuted.WithLabelValues("buy")))

	beforeStake := testutil.ToFloat64(stakesCreated.WithLabelValues("30"))
	RecordStake(30)
	assert.Equal(t, beforeStake+1, testutil.ToFloat64(stakesCreated.WithLabelValues("30")))

	beforeReg := testutil.ToFloat64(registrations)
	RecordRegistration()
	assert.Equal(t, beforeReg+1, testutil.ToFloat64(registrations))
}

func TestRequestStarted(t *testing.T) {
	done := RequestStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(httpInFlight))

	done("GET", "", http.StatusNotFound)
	assert.Equal(t, 0.0, testutil.ToFloat64(httpInFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestHandler(t *testing.T) {
	RecordOrder("sell")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "averix_trading_orders_executed_total")
}
