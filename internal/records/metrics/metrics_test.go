package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveAction("setRecord", OutcomeCommitted, time.Now())
	m.ObserveAction("setRecord", OutcomeRejected, time.Now())
	m.ObserveAction("setRecord", OutcomeRejected, time.Now())
	m.IncrementSignaturesConsumed()
	m.ObserveFetch("exm", errors.New("boom"), time.Now())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActionsTotal.WithLabelValues("setRecord", OutcomeCommitted)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ActionsTotal.WithLabelValues("setRecord", OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SignaturesConsumed))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ExternalFetch))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAction("getDomainRecords", OutcomeQueried, time.Now())
		m.IncrementSignaturesConsumed()
		m.ObserveFetch("molecule", nil, time.Now())
		m.IncrementEventPublishFailures()
	})
}
