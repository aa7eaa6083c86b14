package geo

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// NormalizeCluster swaps a pair whose latitude is out of range, the usual sign of columns stored reversed.
func NormalizeCluster(lat, lng float64) (float64, float64) {
	if math.Abs(lat) > 90 {
		return lng, lat
	}
	return lat, lng
}

var coordinateLabel = regexp.MustCompile(`^(-?\d+\.\d+),\s*(-?\d+\.\d+)$`)

// ParseCoordinateLabel reads a free-text location of the form "lat, lng".
func ParseCoordinateLabel(label string) (float64, float64, bool) {
	m := coordinateLabel.FindStringSubmatch(label)
	if m == nil {
		return 0, 0, false
	}
	first, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, 0, false
	}
	second, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, 0, false
	}
	return first, second, true
}

// CorrectLabelCoordinates orders a coordinate pair typed by an officer. The
// bands describe the Philippines: latitude 5 to 20, longitude 115 to 127.
func CorrectLabelCoordinates(first, second float64) (float64, float64) {
	lat, lng := first, second
	absLat, absLng := math.Abs(lat), math.Abs(lng)

	swap := absLat > 90 ||
		(absLat > 20 && absLng >= 5 && absLng <= 20) ||
		(absLat < 5 && absLng > 5 && absLng <= 20) ||
		((absLng < 115 || absLng > 127) && absLat >= 115 && absLat <= 127 && absLng >= 5 && absLng <= 20)
	if swap {
		lat, lng = lng, lat
	}

	return clamp(lat, -90, 90), clamp(lng, -180, 180)
}

func FormatPair(lat, lng float64) string {
	return fmt.Sprintf("%.6f, %.6f", lat, lng)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
