package service

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"posu-analytics/internal/geo"
	"posu-analytics/internal/model"
	"posu-analytics/internal/repository"
)

type LocationNamer interface {
	Name(ctx context.Context, lat, lng float64) string
	Lookup(ctx context.Context, lat, lng float64) (string, bool)
}

type cellKey struct {
	lat, lng float64
}

// ClusterPoints groups GPS points into 4-decimal cells, busiest first, and names each cell.
func ClusterPoints(ctx context.Context, points []repository.GPSPoint, namer LocationNamer) []model.HeatmapCluster {
	type acc struct {
		count    int64
		sumLat   float64
		sumLng   float64
		total    decimal.Decimal
		location string
		labelled bool
	}

	var order []cellKey
	cells := map[cellKey]*acc{}
	for _, p := range points {
		key := cellKey{geo.Round(p.Lat, 4), geo.Round(p.Lng, 4)}
		a, ok := cells[key]
		if !ok {
			a = &acc{}
			cells[key] = a
			order = append(order, key)
		}
		a.count++
		a.sumLat += p.Lat
		a.sumLng += p.Lng
		a.total = a.total.Add(p.FineAmount)
		if !a.labelled || p.Location < a.location {
			a.location = p.Location
			a.labelled = true
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return cells[order[i]].count > cells[order[j]].count
	})

	result := make([]model.HeatmapCluster, 0, len(order))
	for _, key := range order {
		a := cells[key]
		lat := geo.Round(a.sumLat/float64(a.count), 6)
		lng := geo.Round(a.sumLng/float64(a.count), 6)
		lat, lng = geo.NormalizeCluster(lat, lng)

		result = append(result, model.HeatmapCluster{
			Location:     namer.Name(ctx, lat, lng),
			Label:        a.location,
			GPSLatitude:  lat,
			GPSLongitude: lng,
			Count:        a.count,
			TotalAmount:  a.total.InexactFloat64(),
		})
	}
	return result
}
