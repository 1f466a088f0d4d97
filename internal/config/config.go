package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	ListenAddr string
	BaseURL    string

	Event struct {
		Slug     string
		BasePath string
		Timezone string
		Language string
	}

	Schedule struct {
		URL          string
		SnapshotFile string
		RefreshCron  string
	}

	StateDir string

	DB struct {
		DSN string
	}

	Upstream struct {
		MergeURL string
		Token    string
	}

	OIDC struct {
		IssuerURL string
		ClientID  string
	}

	PrometheusEnabled bool
	TrustedProxies    []string
}

func Load() (*Config, error) {
	cfg := &Config{}

	cfg.ListenAddr = getenvDefault("APP_LISTEN_ADDR", ":8080")
	cfg.BaseURL = getenvDefault("APP_BASE_URL", "http://localhost:8080")

	cfg.Event.Slug = os.Getenv("APP_EVENT_SLUG")
	cfg.Event.BasePath = os.Getenv("APP_EVENT_BASE_PATH")
	cfg.Event.Timezone = getenvDefault("APP_TIMEZONE", "UTC")
	cfg.Event.Language = getenvDefault("APP_LANGUAGE", "en")

	cfg.Schedule.URL = os.Getenv("APP_SCHEDULE_URL")
	cfg.Schedule.SnapshotFile = os.Getenv("APP_SCHEDULE_FILE")
	cfg.Schedule.RefreshCron = getenvDefault("APP_REFRESH_CRON", "*/5 * * * *")

	cfg.StateDir = getenvDefault("APP_STATE_DIR", "./data")
	cfg.DB.DSN = os.Getenv("APP_DB_DSN")

	cfg.Upstream.MergeURL = os.Getenv("APP_UPSTREAM_FAVS_MERGE_URL")
	cfg.Upstream.Token = os.Getenv("APP_UPSTREAM_TOKEN")

	cfg.OIDC.IssuerURL = os.Getenv("APP_OIDC_ISSUER_URL")
	cfg.OIDC.ClientID = os.Getenv("APP_OIDC_CLIENT_ID")

	cfg.PrometheusEnabled = getenvBool("APP_PROMETHEUS_ENDPOINT_ENABLED", false)
	cfg.TrustedProxies = getenvList("APP_TRUSTED_PROXIES")

	if cfg.Schedule.URL == "" && cfg.Schedule.SnapshotFile == "" {
		return nil, errors.New("APP_SCHEDULE_URL or APP_SCHEDULE_FILE is required")
	}
	if _, err := time.LoadLocation(cfg.Event.Timezone); err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE is invalid: %w", err)
	}
	if cfg.Upstream.MergeURL != "" && cfg.Upstream.Token == "" {
		return nil, errors.New("APP_UPSTREAM_TOKEN is required when APP_UPSTREAM_FAVS_MERGE_URL is set")
	}
	if cfg.OIDC.IssuerURL != "" && cfg.OIDC.ClientID == "" {
		return nil, errors.New("APP_OIDC_CLIENT_ID is required when APP_OIDC_ISSUER_URL is set")
	}

	if len(cfg.TrustedProxies) == 0 {
		fmt.Println("WARNING: No APP_TRUSTED_PROXIES configured. Companion will trust all proxies - Not recommended for public environments.")
	}

	return cfg, nil
}

// Location returns the configured event timezone. Load has already
// validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Event.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return def
}

func getenvList(key string) []string {
	if v := os.Getenv(key); v != "" {
		var result []string
		for _, item := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return nil
}
