package config

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host               string
	Port               int
	CORSAllowedOrigins []string
	PublicBaseURL      string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
	AutoMigrate     bool
}

type AuthConfig struct {
	AccessSecret string
}

type SecurityConfig struct {
	AppKey []byte
}

type GeocodeConfig struct {
	MapboxToken      string
	MapboxBaseURL    string
	NominatimBaseURL string
	UserAgent        string
	Timeout          time.Duration
	CacheTTL         time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuditConfig struct {
	AMQPURL string
	Queue   string
}

type ExportConfig struct {
	StorageDir          string
	WordConverterURL    string
	WordConverterAPIKey string
}

type Config struct {
	Environment string
	Timezone    string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Security    SecurityConfig
	Geocode     GeocodeConfig
	Redis       RedisConfig
	Audit       AuditConfig
	Export      ExportConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	v.SetDefault("DB_AUTO_MIGRATE", true)

	appKey, err := parseAppKey(v.GetString("APP_KEY"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		Timezone:    v.GetString("APP_TIMEZONE"),
		HTTP: HTTPConfig{
			Host:               v.GetString("HTTP_HOST"),
			Port:               v.GetInt("HTTP_PORT"),
			CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			PublicBaseURL:      strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
			AutoMigrate:     v.GetBool("DB_AUTO_MIGRATE"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Security: SecurityConfig{
			AppKey: appKey,
		},
		Geocode: GeocodeConfig{
			MapboxToken:      v.GetString("MAPBOX_ACCESS_TOKEN"),
			MapboxBaseURL:    v.GetString("MAPBOX_BASE_URL"),
			NominatimBaseURL: v.GetString("NOMINATIM_BASE_URL"),
			UserAgent:        v.GetString("GEOCODE_USER_AGENT"),
			Timeout:          v.GetDuration("GEOCODE_TIMEOUT"),
			CacheTTL:         v.GetDuration("GEOCODE_CACHE_TTL"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Audit: AuditConfig{
			AMQPURL: v.GetString("AUDIT_AMQP_URL"),
			Queue:   v.GetString("AUDIT_QUEUE"),
		},
		Export: ExportConfig{
			StorageDir:          v.GetString("STORAGE_DIR"),
			WordConverterURL:    v.GetString("WORD_CONVERTER_URL"),
			WordConverterAPIKey: v.GetString("WORD_CONVERTER_API_KEY"),
		},
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Asia/Manila"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if cfg.HTTP.PublicBaseURL == "" {
		cfg.HTTP.PublicBaseURL = fmt.Sprintf("http://localhost:%d", cfg.HTTP.Port)
	}
	if cfg.Geocode.MapboxBaseURL == "" {
		cfg.Geocode.MapboxBaseURL = "https://api.mapbox.com"
	}
	if cfg.Geocode.NominatimBaseURL == "" {
		cfg.Geocode.NominatimBaseURL = "https://nominatim.openstreetmap.org"
	}
	if cfg.Geocode.UserAgent == "" {
		cfg.Geocode.UserAgent = "POSU-Analytics/1.0"
	}
	if cfg.Geocode.Timeout <= 0 {
		cfg.Geocode.Timeout = 5 * time.Second
	}
	if cfg.Geocode.CacheTTL <= 0 {
		cfg.Geocode.CacheTTL = 24 * time.Hour
	}
	if cfg.Audit.Queue == "" {
		cfg.Audit.Queue = "posu.audit"
	}
	if cfg.Export.StorageDir == "" {
		cfg.Export.StorageDir = "./storage"
	}
	if cfg.Export.WordConverterURL == "" {
		cfg.Export.WordConverterURL = "https://api.cloudmersive.com/convert/pdf/to/docx"
	}
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if len(cfg.Security.AppKey) == 0 {
		return fmt.Errorf("APP_KEY is required")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE is invalid: %w", err)
	}
	return nil
}

// parseAppKey accepts a raw base64 key with or without the "base64:" prefix.
func parseAppKey(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	raw = strings.TrimPrefix(raw, "base64:")
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("APP_KEY is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("APP_KEY must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
