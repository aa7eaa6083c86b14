package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posu-analytics/internal/geo"
	"posu-analytics/internal/repository"
)

func TestClusterPointsGroupsByRoundedCell(t *testing.T) {
	points := []repository.GPSPoint{
		{ID: 1, Location: "Zone B", Lat: 16.70001, Lng: 121.65001, FineAmount: decimal.NewFromInt(500)},
		{ID: 2, Location: "Other", Lat: 16.5, Lng: 121.5, FineAmount: decimal.NewFromInt(100)},
		{ID: 3, Location: "Zone A", Lat: 16.70003, Lng: 121.65003, FineAmount: decimal.NewFromInt(300)},
	}

	got := ClusterPoints(context.Background(), points, newStubNamer())
	require.Len(t, got, 2)

	assert.Equal(t, int64(2), got[0].Count)
	assert.Equal(t, 800.0, got[0].TotalAmount)
	assert.Equal(t, "Zone A", got[0].Label)
	assert.Equal(t, 16.70002, got[0].GPSLatitude)
	assert.Equal(t, 121.65002, got[0].GPSLongitude)

	assert.Equal(t, int64(1), got[1].Count)
	assert.Equal(t, "Other", got[1].Label)
}

func TestClusterPointsSwapsImpossibleLatitude(t *testing.T) {
	points := []repository.GPSPoint{{ID: 1, Location: "Swapped", Lat: 121.68, Lng: 16.71, FineAmount: decimal.NewFromInt(200)}}

	namer := newStubNamer()
	got := ClusterPoints(context.Background(), points, namer)
	require.Len(t, got, 1)
	assert.Equal(t, 16.71, got[0].GPSLatitude)
	assert.Equal(t, 121.68, got[0].GPSLongitude)
	assert.Equal(t, [][2]float64{{16.71, 121.68}}, namer.named)
}

func TestClusterPointsStableOnTies(t *testing.T) {
	points := []repository.GPSPoint{
		{ID: 1, Location: "First", Lat: 16.1, Lng: 121.1},
		{ID: 2, Location: "Second", Lat: 16.2, Lng: 121.2},
	}
	got := ClusterPoints(context.Background(), points, newStubNamer())
	require.Len(t, got, 2)
	assert.Equal(t, "First", got[0].Label)
	assert.Equal(t, "Second", got[1].Label)
}

func TestClusterPointsUsesNamer(t *testing.T) {
	points := []repository.GPSPoint{{ID: 1, Lat: 16.710, Lng: 121.670}}
	namer := geo.NewNamer(nil, geo.NewMemoryCache(0), testLogger())

	got := ClusterPoints(context.Background(), points, namer)
	require.Len(t, got, 1)
	assert.Equal(t, "Echague Town Center", got[0].Location)
}
