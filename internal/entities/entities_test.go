package entities

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestGoal_ProgressPct(t *testing.T) {
	cases := []struct {
		name     string
		current  string
		target   string
		expected float64
	}{
		{"halfway", "50", "100", 50},
		{"zero target avoids divide by zero", "10", "0", 0},
		{"overfunded clamps to 100", "150", "100", 100},
		{"untouched goal", "0", "200", 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := &Goal{
				CurrentAmount: decimal.RequireFromString(tc.current),
				TargetAmount:  decimal.RequireFromString(tc.target),
			}
			assert.Equal(t, tc.expected, g.ProgressPct())
		})
	}
}
