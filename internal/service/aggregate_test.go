package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"posu-analytics/internal/model"
)

func TestBucketOccurrencesUsesBusinessLocation(t *testing.T) {
	loc := time.FixedZone("PHT", 8*3600)
	times := []time.Time{
		time.Date(2023, 12, 31, 17, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 2, 0, 0, 0, time.UTC),
		time.Date(2023, 12, 31, 10, 0, 0, 0, time.UTC),
		time.Date(2022, 6, 15, 10, 0, 0, 0, time.UTC),
	}

	daily, monthly, yearly := BucketOccurrences(times, loc)

	assert.Equal(t, []model.DailyCount{
		{Date: "2022-06-15", Count: 1},
		{Date: "2023-12-31", Count: 1},
		{Date: "2024-01-01", Count: 2},
	}, daily)
	assert.Equal(t, []model.MonthlyCount{
		{Year: 2022, Month: 6, Count: 1},
		{Year: 2023, Month: 12, Count: 1},
		{Year: 2024, Month: 1, Count: 2},
	}, monthly)
	assert.Equal(t, []model.YearlyCount{
		{Year: 2022, Count: 1},
		{Year: 2023, Count: 1},
		{Year: 2024, Count: 2},
	}, yearly)
}

func TestActiveEnforcers(t *testing.T) {
	perf := []model.EnforcerPerformance{
		{ID: 1, TotalTransactions: 0},
		{ID: 2, TotalTransactions: 3},
	}
	got := ActiveEnforcers(perf)
	assert.Len(t, got, 1)
	assert.Equal(t, uint(2), got[0].ID)
}
