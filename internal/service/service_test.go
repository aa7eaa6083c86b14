package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"posu-analytics/internal/audit"
	"posu-analytics/internal/period"
	"posu-analytics/internal/secure"
)

var pht = time.FixedZone("PHT", 8*3600)

// Wednesday, 13 March 2024, 14:30 local.
var testNow = time.Date(2024, 3, 13, 14, 30, 0, 0, pht)

func testResolver() *period.Resolver {
	return period.NewResolver(period.FixedClock{At: testNow}, pht)
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testCipher(t *testing.T) *secure.Cipher {
	t.Helper()
	c, err := secure.NewCipher([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	return c
}

func sealed(t *testing.T, c *secure.Cipher, plain string) *string {
	t.Helper()
	s, err := c.Seal(plain)
	require.NoError(t, err)
	return s
}

func localDay(d int, hour int) time.Time {
	return time.Date(2024, 3, d, hour, 0, 0, 0, pht)
}

type stubNamer struct {
	mu      sync.Mutex
	named   [][2]float64
	lookups map[[2]float64]string
}

func newStubNamer() *stubNamer {
	return &stubNamer{lookups: map[[2]float64]string{}}
}

func (n *stubNamer) Name(_ context.Context, lat, lng float64) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.named = append(n.named, [2]float64{lat, lng})
	if name, ok := n.lookups[[2]float64{lat, lng}]; ok {
		return name
	}
	return fmt.Sprintf("Place %.4f, %.4f", lat, lng)
}

func (n *stubNamer) Lookup(_ context.Context, lat, lng float64) (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	name, ok := n.lookups[[2]float64{lat, lng}]
	return name, ok
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (r *recordingAudit) Record(entry audit.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *recordingAudit) Entries() []audit.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]audit.Entry, len(r.entries))
	copy(out, r.entries)
	return out
}
