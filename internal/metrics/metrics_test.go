package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCoverResolutions_Increments(t *testing.T) {
	before := testutil.ToFloat64(CoverResolutions.WithLabelValues("resolved"))
	CoverResolutions.WithLabelValues("resolved").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(CoverResolutions.WithLabelValues("resolved")))
}

func TestPrescriptions_Labels(t *testing.T) {
	for _, outcome := range []string{"success", "invalid", "failed"} {
		assert.NotPanics(t, func() { Prescriptions.WithLabelValues(outcome).Inc() })
	}
}
