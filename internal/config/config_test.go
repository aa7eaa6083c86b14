package config

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/posu")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("APP_KEY", "base64:"+base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32))))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "Asia/Manila", cfg.Timezone)
	assert.Equal(t, 7090, cfg.HTTP.Port)
	assert.Equal(t, 5*time.Second, cfg.Geocode.Timeout)
	assert.Equal(t, "https://api.mapbox.com", cfg.Geocode.MapboxBaseURL)
	assert.Len(t, cfg.Security.AppKey, 32)
	assert.True(t, cfg.DB.AutoMigrate)
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/posu")
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("APP_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_ACCESS_SECRET")
}

func TestParseAppKeyRejectsShortKeys(t *testing.T) {
	_, err := parseAppKey(base64.StdEncoding.EncodeToString([]byte("short")))
	require.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, splitList(" http://a, ,http://b "))
	assert.Nil(t, splitList(""))
}
