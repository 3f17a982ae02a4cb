package metrics

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// Prometheus collectors register once per process.
var (
	testMetricsOnce sync.Once
	testMetrics     *Metrics
)

func sharedTestMetrics() *Metrics {
	testMetricsOnce.Do(func() {
		testMetrics = New("postscore_metrics_test")
	})
	return testMetrics
}

func TestRecordAICallIncrementsCounter(t *testing.T) {
	m := sharedTestMetrics()

	success := testutil.ToFloat64(m.AICallsTotal.WithLabelValues("ollama", "success"))
	failure := testutil.ToFloat64(m.AICallsTotal.WithLabelValues("ollama", "provider_error"))

	m.RecordAICall("ollama", "success")
	m.RecordAICall("ollama", "success")
	m.RecordAICall("ollama", "provider_error")

	assert.Equal(t, success+2, testutil.ToFloat64(m.AICallsTotal.WithLabelValues("ollama", "success")))
	assert.Equal(t, failure+1, testutil.ToFloat64(m.AICallsTotal.WithLabelValues("ollama", "provider_error")))
}
