package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveAICall_Success(t *testing.T) {
	before := testutil.ToFloat64(AICallsTotal.WithLabelValues("generate", "success"))

	ObserveAICall("generate", time.Now(), nil)

	after := testutil.ToFloat64(AICallsTotal.WithLabelValues("generate", "success"))
	assert.Equal(t, before+1, after)
}

func TestObserveAICall_Error(t *testing.T) {
	before := testutil.ToFloat64(AICallsTotal.WithLabelValues("evaluate", "error"))

	ObserveAICall("evaluate", time.Now(), errors.New("AI service unavailable"))

	after := testutil.ToFloat64(AICallsTotal.WithLabelValues("evaluate", "error"))
	assert.Equal(t, before+1, after)
}
