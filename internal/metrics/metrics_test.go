package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordHTTPRequest(t *testing.T) {
	m := New()

	m.RecordHTTPRequest("GET", "/nodes", "200", 10*time.Millisecond)
	m.RecordHTTPRequest("GET", "/nodes", "200", 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/nodes", "200")))
}

func TestObserveServiceStart(t *testing.T) {
	m := New()

	m.ObserveServiceStart("datastore", time.Millisecond, nil)
	m.ObserveServiceStart("dispatcher", time.Millisecond, errors.New("cannot bind port"))

	assert.Equal(t, 2, testutil.CollectAndCount(m.serviceStart))
}

func TestCounters(t *testing.T) {
	m := New()

	m.RecordPublish(true)
	m.RecordPublish(false)
	m.RecordAuthFailure()
	m.RecordLogin(false)
	m.SetPushClients(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.publishes.WithLabelValues("published")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.publishes.WithLabelValues("unavailable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loginAttempts.WithLabelValues("failure")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.pushClients))
}

func TestHandlerExposition(t *testing.T) {
	m := New()
	m.RecordPublish(true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "nodereg_storage_publishes_total"))
}
