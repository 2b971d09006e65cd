package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	// Server bind address (host:port).
	ServerAddr string

	// Database connection string: a SQLite path by default, or a
	// postgres:// DSN.
	DatabaseURL string

	// Base URL of the payments backend.
	UpstreamURL string

	// SessionSecret signs session tokens. Required; the process refuses to
	// start without one rather than falling back to unsigned sessions.
	SessionSecret string

	// SessionTTL is the session token lifetime.
	SessionTTL time.Duration

	// CookieName is the session cookie slot.
	CookieName string

	// CookieSecure marks the session cookie HTTPS-only. On in production.
	CookieSecure bool

	// CatalogPath points at a permission catalog JSON file. Empty means
	// the embedded default catalog.
	CatalogPath string

	// CORSAllowedOrigins for the admin frontend.
	CORSAllowedOrigins []string

	// Enable debug logging.
	Debug bool
}

// Load reads configuration from PAYADMIN_ prefixed environment variables,
// layered over an optional YAML file named by PAYADMIN_CONFIG.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PAYADMIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server_addr", "localhost:8080")
	v.SetDefault("database_url", "payadmin.db")
	v.SetDefault("upstream_url", "http://localhost:9000")
	v.SetDefault("session_ttl", "12h")
	v.SetDefault("cookie_name", "payadmin.session")
	v.SetDefault("cookie_secure", false)
	v.SetDefault("catalog_path", "")
	v.SetDefault("cors_allowed_origins", []string{"*"})
	v.SetDefault("debug", false)

	if configFile := v.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		ServerAddr:         v.GetString("server_addr"),
		DatabaseURL:        v.GetString("database_url"),
		UpstreamURL:        v.GetString("upstream_url"),
		SessionSecret:      v.GetString("session_secret"),
		SessionTTL:         v.GetDuration("session_ttl"),
		CookieName:         v.GetString("cookie_name"),
		CookieSecure:       v.GetBool("cookie_secure"),
		CatalogPath:        v.GetString("catalog_path"),
		CORSAllowedOrigins: v.GetStringSlice("cors_allowed_origins"),
		Debug:              v.GetBool("debug"),
	}

	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("PAYADMIN_SESSION_SECRET is required")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("PAYADMIN_SESSION_TTL must be a positive duration")
	}
	if cfg.UpstreamURL == "" {
		return nil, fmt.Errorf("PAYADMIN_UPSTREAM_URL is required")
	}

	return cfg, nil
}
