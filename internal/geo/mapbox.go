package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type mapboxResponse struct {
	Features []struct {
		PlaceName string `json:"place_name"`
		Text      string `json:"text"`
		Context   []struct {
			Text string `json:"text"`
		} `json:"context"`
	} `json:"features"`
}

// NewMapbox builds the primary provider. It returns nil when no access token is configured.
func NewMapbox(baseURL, token string, timeout time.Duration, client *http.Client) Provider {
	if token == "" {
		return nil
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	base := strings.TrimRight(baseURL, "/")

	lookup := func(ctx context.Context, lat, lng float64) (string, error) {
		q := url.Values{}
		q.Set("access_token", token)
		q.Set("types", "address,poi,place")
		q.Set("limit", "1")
		endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s,%s.json?%s",
			base, formatCoord(lng), formatCoord(lat), q.Encode())

		var body mapboxResponse
		if err := getJSON(ctx, client, endpoint, nil, &body); err != nil {
			return "", err
		}
		if len(body.Features) == 0 {
			return "", errNoResult
		}
		f := body.Features[0]
		if f.PlaceName != "" {
			return f.PlaceName, nil
		}
		if f.Text == "" {
			return "", errNoResult
		}
		parts := []string{f.Text}
		for _, c := range f.Context {
			if c.Text != "" {
				parts = append(parts, c.Text)
			}
		}
		return strings.Join(parts, ", "), nil
	}

	return newBreakerProvider("mapbox", timeout, lookup)
}
