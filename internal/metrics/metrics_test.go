package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounterVecsIncrementByLabel(t *testing.T) {
	CommandsTotal.Reset()
	CommandsTotal.WithLabelValues("login").Inc()
	CommandsTotal.WithLabelValues("login").Inc()
	CommandsTotal.WithLabelValues("join").Inc()

	assert.Equal(t, float64(2), testutil.ToFloat64(CommandsTotal.WithLabelValues("login")))
	assert.Equal(t, float64(1), testutil.ToFloat64(CommandsTotal.WithLabelValues("join")))
}

func TestGaugesAreIndependentPerMode(t *testing.T) {
	RoomsQueued.Reset()
	RoomsQueued.WithLabelValues("ng1v1").Set(3)
	RoomsQueued.WithLabelValues("ng5v5").Set(7)

	assert.Equal(t, float64(3), testutil.ToFloat64(RoomsQueued.WithLabelValues("ng1v1")))
	assert.Equal(t, float64(7), testutil.ToFloat64(RoomsQueued.WithLabelValues("ng5v5")))
}

func TestScalarCounterSurvivesRegistration(t *testing.T) {
	before := testutil.ToFloat64(CommandQueueDropped)
	CommandQueueDropped.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(CommandQueueDropped))
}
