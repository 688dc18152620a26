package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordGateDecision(t *testing.T) {
	before := testutil.ToFloat64(GateDecisionsTotal.WithLabelValues(GateRedirected))
	RecordGateDecision(GateRedirected)
	assert.Equal(t, before+1, testutil.ToFloat64(GateDecisionsTotal.WithLabelValues(GateRedirected)))
}

func TestRecordRegistration(t *testing.T) {
	before := testutil.ToFloat64(RegistrationsTotal.WithLabelValues("password", OutcomeSuccess))
	RecordRegistration("password", OutcomeSuccess)
	assert.Equal(t, before+1, testutil.ToFloat64(RegistrationsTotal.WithLabelValues("password", OutcomeSuccess)))
}

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/user", "200"))
	RecordHTTPRequest("GET", "/api/user", "200", 0.01)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/user", "200")))
}
