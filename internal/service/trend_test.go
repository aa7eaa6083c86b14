package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"posu-analytics/internal/model"
)

func TestTrendOf(t *testing.T) {
	cases := []struct {
		name      string
		current   int64
		previous  int64
		pct       float64
		direction model.TrendDirection
	}{
		{"both zero", 0, 0, 0, model.TrendSame},
		{"from nothing", 5, 0, 100, model.TrendUp},
		{"halved", 5, 10, -50, model.TrendDown},
		{"flat", 7, 7, 0, model.TrendSame},
		{"thirds", 4, 3, 33.33, model.TrendUp},
		{"drop to zero", 0, 4, -100, model.TrendDown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := TrendOf(tc.current, tc.previous)
			assert.Equal(t, tc.pct, got.Percentage)
			assert.Equal(t, tc.direction, got.Direction)
		})
	}
}
