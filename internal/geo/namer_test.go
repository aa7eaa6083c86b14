package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name   string
	result string
	ok     bool
	calls  int32
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Reverse(context.Context, float64, float64) (string, bool) {
	atomic.AddInt32(&p.calls, 1)
	return p.result, p.ok
}

func TestNamerGazetteerWinsWithoutNetwork(t *testing.T) {
	primary := &stubProvider{name: "primary", result: "Somewhere", ok: true}
	n := NewNamer([]Provider{primary}, nil, zerolog.Nop())

	assert.Equal(t, "Echague Town Center", n.Name(context.Background(), 16.710, 121.670))
	assert.Equal(t, "Echague Residential Area", n.Name(context.Background(), 16.730, 121.645))
	assert.Zero(t, atomic.LoadInt32(&primary.calls))
}

func TestNamerFallbackChain(t *testing.T) {
	ctx := context.Background()

	t.Run("secondary after primary fails", func(t *testing.T) {
		primary := &stubProvider{name: "primary"}
		secondary := &stubProvider{name: "secondary", result: "Rizal St, Santiago", ok: true}
		n := NewNamer([]Provider{primary, secondary}, nil, zerolog.Nop())

		assert.Equal(t, "Rizal St, Santiago", n.Name(ctx, 16.690, 121.540))
		assert.EqualValues(t, 1, primary.calls)
	})

	t.Run("coordinate-shaped provider answer is discarded", func(t *testing.T) {
		primary := &stubProvider{name: "primary", result: "Location at 16.6500, 121.7500", ok: true}
		n := NewNamer([]Provider{primary}, nil, zerolog.Nop())

		assert.Equal(t, "Echague, Isabela Area", n.Name(ctx, 16.650, 121.750))
	})

	t.Run("regional box", func(t *testing.T) {
		n := NewNamer(nil, nil, zerolog.Nop())
		assert.Equal(t, "Echague, Isabela Area", n.Name(ctx, 16.65, 121.75))
	})

	t.Run("coordinate label", func(t *testing.T) {
		n := NewNamer([]Provider{nil}, nil, zerolog.Nop())
		assert.Equal(t, "Location at 14.5995, 120.9842", n.Name(ctx, 14.59951, 120.98421))
		assert.Equal(t, "Location at 14.6, 121", n.Name(ctx, 14.60001, 121.00002))
	})

	t.Run("provider answer mentioning coordinates is discarded", func(t *testing.T) {
		primary := &stubProvider{name: "primary", result: "Near Location at 14.6, 121", ok: true}
		secondary := &stubProvider{name: "secondary", result: "Rizal Ave, Manila", ok: true}
		n := NewNamer([]Provider{primary, secondary}, nil, zerolog.Nop())

		assert.Equal(t, "Rizal Ave, Manila", n.Name(ctx, 14.6, 121.0))
	})
}

func TestNamerCachesProviderResults(t *testing.T) {
	primary := &stubProvider{name: "primary", result: "Cauayan City", ok: true}
	n := NewNamer([]Provider{primary}, NewMemoryCache(time.Hour), zerolog.Nop())

	ctx := context.Background()
	assert.Equal(t, "Cauayan City", n.Name(ctx, 16.93, 121.77))
	assert.Equal(t, "Cauayan City", n.Name(ctx, 16.93, 121.77))
	assert.EqualValues(t, 1, primary.calls)
}

func TestMapboxProvider(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"features":[{"place_name":"Maharlika Hwy, Echague, Isabela","text":"Maharlika Hwy"}]}`))
	}))
	defer srv.Close()

	p := NewMapbox(srv.URL, "tok", time.Second, srv.Client())
	require.NotNil(t, p)

	name, ok := p.Reverse(context.Background(), 16.7, 121.6)
	require.True(t, ok)
	assert.Equal(t, "Maharlika Hwy, Echague, Isabela", name)
	assert.Equal(t, "/geocoding/v5/mapbox.places/121.6,16.7.json", gotPath)
	assert.Contains(t, gotQuery, "access_token=tok")
	assert.Contains(t, gotQuery, "limit=1")
}

func TestMapboxTextWithContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"features":[{"text":"Purok 3","context":[{"text":"San Fabian"},{"text":"Echague"}]}]}`))
	}))
	defer srv.Close()

	name, ok := NewMapbox(srv.URL, "tok", time.Second, srv.Client()).Reverse(context.Background(), 16.7, 121.6)
	require.True(t, ok)
	assert.Equal(t, "Purok 3, San Fabian, Echague", name)
}

func TestMapboxDisabledWithoutToken(t *testing.T) {
	assert.Nil(t, NewMapbox("https://api.mapbox.com", "", time.Second, nil))
}

func TestNominatimProvider(t *testing.T) {
	var agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "18", r.URL.Query().Get("zoom"))
		_, _ = w.Write([]byte(`{"address":{"house_number":"12","street":"Burgos St","suburb":"Centro","town":"Echague","state":"Isabela"}}`))
	}))
	defer srv.Close()

	name, ok := NewNominatim(srv.URL, "posu-test", time.Second, srv.Client()).Reverse(context.Background(), 16.7, 121.6)
	require.True(t, ok)
	assert.Equal(t, "12, Burgos St, Centro, Echague, Isabela", name)
	assert.Equal(t, "posu-test", agent)
}

func TestProviderFailuresAreSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewNominatim(srv.URL, "posu-test", time.Second, srv.Client())
	for i := 0; i < 8; i++ {
		_, ok := p.Reverse(context.Background(), 16.9, 121.9)
		assert.False(t, ok)
	}
}

func TestProviderTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	p := NewNominatim(srv.URL, "posu-test", 50*time.Millisecond, srv.Client())
	start := time.Now()
	_, ok := p.Reverse(context.Background(), 16.9, 121.9)
	assert.False(t, ok)
	assert.Less(t, time.Since(start), time.Second)
}

func TestIsGenericLabel(t *testing.T) {
	for _, label := range []string{"", "  ", "GPS Location", "Unknown Location", "Location at 16.7000, 121.6000"} {
		assert.True(t, IsGenericLabel(label), label)
	}
	assert.False(t, IsGenericLabel("Poblacion Road"))
}

func TestRedisCacheMissOnUnavailableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	c := NewRedisCache(client, time.Minute)
	c.Set(context.Background(), "geo:1,2", "x")
	_, ok := c.Get(context.Background(), "geo:1,2")
	assert.False(t, ok)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set(context.Background(), "k", "v")
	v, ok := c.Get(context.Background(), "k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestCacheKeyUsesFourDecimals(t *testing.T) {
	assert.Equal(t, cacheKey(16.71234, 121.6), cacheKey(16.71231, 121.60001))
}
