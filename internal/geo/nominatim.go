package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type nominatimResponse struct {
	Address map[string]string `json:"address"`
}

func NewNominatim(baseURL, userAgent string, timeout time.Duration, client *http.Client) Provider {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	base := strings.TrimRight(baseURL, "/")
	headers := map[string]string{"User-Agent": userAgent}

	lookup := func(ctx context.Context, lat, lng float64) (string, error) {
		q := url.Values{}
		q.Set("format", "json")
		q.Set("lat", formatCoord(lat))
		q.Set("lon", formatCoord(lng))
		q.Set("addressdetails", "1")
		q.Set("zoom", "18")

		var body nominatimResponse
		if err := getJSON(ctx, client, fmt.Sprintf("%s/reverse?%s", base, q.Encode()), headers, &body); err != nil {
			return "", err
		}
		name := composeAddress(body.Address)
		if name == "" {
			return "", errNoResult
		}
		return name, nil
	}

	return newBreakerProvider("nominatim", timeout, lookup)
}

func composeAddress(addr map[string]string) string {
	var parts []string
	add := func(keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(addr[k]); v != "" {
				parts = append(parts, v)
				return
			}
		}
	}
	add("house_number")
	add("road", "street")
	add("suburb")
	add("city", "town")
	add("state")
	return strings.Join(parts, ", ")
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
