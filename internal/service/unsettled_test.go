package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posu-analytics/internal/model"
	"posu-analytics/internal/repository"
)

func TestUrgencyFor(t *testing.T) {
	assert.Equal(t, model.UrgencyAlert, UrgencyFor(6))
	assert.Equal(t, model.UrgencyAlert, UrgencyFor(5))
	assert.Equal(t, model.UrgencyWarning, UrgencyFor(4))
	assert.Equal(t, model.UrgencyWarning, UrgencyFor(3))
	assert.Equal(t, model.UrgencyInfo, UrgencyFor(1))
	assert.Equal(t, model.UrgencyInfo, UrgencyFor(0))
}

func TestRankUnsettledOrdersByAmountOwed(t *testing.T) {
	now := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)
	pending := []repository.PendingTransaction{
		{ID: 1, ViolatorID: 1, Violator: "Ana Cruz", Location: "Centro", DateTime: now.AddDate(0, 0, -6), FineAmount: decimal.NewFromInt(500)},
		{ID: 2, ViolatorID: 2, Violator: "Ben Reyes", Location: "Maligaya", DateTime: now.AddDate(0, 0, -3), FineAmount: decimal.NewFromInt(700)},
		{ID: 3, ViolatorID: 2, Violator: "Ben Reyes", Location: "Maligaya", DateTime: now.AddDate(0, 0, -10), FineAmount: decimal.NewFromInt(500)},
		{ID: 4, ViolatorID: 3, Violator: "Cora Diaz", Location: "", DateTime: now.Add(-26 * time.Hour), FineAmount: decimal.NewFromInt(100)},
	}

	got := RankUnsettled(pending, now, time.UTC)
	require.Len(t, got, 3)

	assert.Equal(t, "Ben Reyes", got[0].Name)
	assert.Equal(t, 1200.0, got[0].TotalAmount)
	assert.Equal(t, 2, got[0].PendingCount)
	assert.Equal(t, 3, got[0].DaysPending)
	assert.Equal(t, model.UrgencyWarning, got[0].UrgencyLevel)
	assert.Equal(t, []string{"Maligaya"}, got[0].Locations)
	assert.Equal(t, "Mar 10, 2024", got[0].ApprehensionDate)

	assert.Equal(t, "Ana Cruz", got[1].Name)
	assert.Equal(t, model.UrgencyAlert, got[1].UrgencyLevel)

	assert.Equal(t, model.UrgencyInfo, got[2].UrgencyLevel)
	assert.Equal(t, 1, got[2].DaysPending)
	assert.Empty(t, got[2].Locations)
	assert.NotNil(t, got[2].Locations)
}

func TestRankUnsettledKeepsTopTen(t *testing.T) {
	now := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)
	var pending []repository.PendingTransaction
	for i := 1; i <= 12; i++ {
		pending = append(pending, repository.PendingTransaction{
			ID:         uint(i),
			ViolatorID: uint(i),
			Violator:   "Violator",
			DateTime:   now,
			FineAmount: decimal.NewFromInt(int64(i * 100)),
		})
	}

	got := RankUnsettled(pending, now, time.UTC)
	require.Len(t, got, 10)
	assert.Equal(t, uint(12), got[0].ID)
	assert.Equal(t, uint(3), got[9].ID)
}
