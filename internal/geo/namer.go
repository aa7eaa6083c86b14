package geo

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"posu-analytics/internal/metrics"
)

const coordinatePrefix = "Location at"

// Namer turns a coordinate into a human-readable place name. It never fails.
type Namer struct {
	areas     []Area
	providers []Provider
	cache     Cache
	log       zerolog.Logger
}

func NewNamer(providers []Provider, cache Cache, log zerolog.Logger) *Namer {
	active := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			active = append(active, p)
		}
	}
	return &Namer{
		areas:     echagueAreas,
		providers: active,
		cache:     cache,
		log:       log,
	}
}

// Lookup tries the gazetteer, the cache and then each provider in order.
func (n *Namer) Lookup(ctx context.Context, lat, lng float64) (string, bool) {
	if name, ok := lookupArea(n.areas, lat, lng); ok {
		metrics.GeocodeLookups.WithLabelValues("gazetteer", "hit").Inc()
		return name, true
	}

	key := cacheKey(lat, lng)
	if n.cache != nil {
		if name, ok := n.cache.Get(ctx, key); ok {
			metrics.GeocodeLookups.WithLabelValues("cache", "hit").Inc()
			return name, true
		}
	}

	for _, p := range n.providers {
		name, ok := p.Reverse(ctx, lat, lng)
		if !ok || strings.Contains(name, coordinatePrefix) {
			continue
		}
		if n.cache != nil {
			n.cache.Set(ctx, key, name)
		}
		return name, true
	}

	n.log.Debug().Float64("lat", lat).Float64("lng", lng).Msg("no geocoder resolved location")
	return "", false
}

func (n *Namer) Name(ctx context.Context, lat, lng float64) string {
	if name, ok := n.Lookup(ctx, lat, lng); ok {
		return name
	}
	rLat, rLng := Round(lat, 4), Round(lng, 4)
	if echagueRegion.Contains(rLat, rLng) {
		return echagueRegion.Name
	}
	return CoordinateLabel(lat, lng)
}

// CoordinateLabel rounds to 4 dp and drops trailing zeros ("Location at 16.7, 121.7").
func CoordinateLabel(lat, lng float64) string {
	return fmt.Sprintf("%s %s, %s", coordinatePrefix, shortFloat(Round(lat, 4)), shortFloat(Round(lng, 4)))
}

func shortFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// IsGenericLabel reports whether a stored location carries no usable place name.
func IsGenericLabel(label string) bool {
	label = strings.TrimSpace(label)
	return label == "" ||
		label == "GPS Location" ||
		label == "Unknown Location" ||
		strings.HasPrefix(label, coordinatePrefix)
}
