package service

import (
	"github.com/shopspring/decimal"

	"posu-analytics/internal/model"
)

// TrendOf compares a period's count against the one before it.
func TrendOf(current, previous int64) model.Trend {
	var pct float64
	switch {
	case previous > 0:
		pct = decimal.NewFromInt(current - previous).
			Div(decimal.NewFromInt(previous)).
			Mul(decimal.NewFromInt(100)).
			Round(2).
			InexactFloat64()
	case current > 0:
		pct = 100
	}

	direction := model.TrendSame
	if pct > 0 {
		direction = model.TrendUp
	} else if pct < 0 {
		direction = model.TrendDown
	}
	return model.Trend{Percentage: pct, Direction: direction}
}
