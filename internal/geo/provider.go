package geo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"posu-analytics/internal/metrics"
)

var errNoResult = errors.New("no result")

// Provider is a reverse geocoder. Failures are reported as ok=false, never as errors.
type Provider interface {
	Name() string
	Reverse(ctx context.Context, lat, lng float64) (string, bool)
}

type lookupFunc func(ctx context.Context, lat, lng float64) (string, error)

// breakerProvider runs a lookup through a circuit breaker so a failing service stops costing the request budget.
type breakerProvider struct {
	name    string
	timeout time.Duration
	lookup  lookupFunc
	cb      *gobreaker.CircuitBreaker[string]
}

func newBreakerProvider(name string, timeout time.Duration, lookup lookupFunc) *breakerProvider {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errNoResult)
		},
		OnStateChange: func(name string, _, to gobreaker.State) {
			metrics.GeocodeBreakerState.WithLabelValues(name).Set(float64(to))
		},
	}
	return &breakerProvider{
		name:    name,
		timeout: timeout,
		lookup:  lookup,
		cb:      gobreaker.NewCircuitBreaker[string](settings),
	}
}

func (p *breakerProvider) Name() string { return p.name }

func (p *breakerProvider) Reverse(ctx context.Context, lat, lng float64) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	name, err := p.cb.Execute(func() (string, error) {
		return p.lookup(ctx, lat, lng)
	})
	switch {
	case err == nil && strings.TrimSpace(name) != "":
		metrics.GeocodeLookups.WithLabelValues(p.name, "hit").Inc()
		return strings.TrimSpace(name), true
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.GeocodeLookups.WithLabelValues(p.name, "open").Inc()
	case err == nil, errors.Is(err, errNoResult):
		metrics.GeocodeLookups.WithLabelValues(p.name, "miss").Inc()
	default:
		metrics.GeocodeLookups.WithLabelValues(p.name, "error").Inc()
	}
	return "", false
}

func getJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
