package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures the runtime configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Events   EventsConfig
	Log      LogConfig
}

// ServerConfig configures the HTTP server runtime behavior.
type ServerConfig struct {
	Addr      string
	PublicDir string
}

// DatabaseConfig contains the database connection settings. URL accepts a
// postgres URL or a sqlite file path. UseMock swaps the real database for an
// in-memory one seeded with demonstration data.
type DatabaseConfig struct {
	URL             string
	UseMock         bool
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// SessionConfig controls the authentication session cookie.
type SessionConfig struct {
	Lifetime     time.Duration
	CookieName   string
	CookieDomain string
	CookieSecure bool
}

// EventsConfig enables the Kafka stock-movement publisher when brokers are
// provided; the publisher stays disabled otherwise.
type EventsConfig struct {
	Brokers []string
	Topic   string
}

// LogConfig selects the log level and output format ("text" or "json").
type LogConfig struct {
	Level  string
	Format string
}

// Load inspects the environment and builds a Config value.
func Load() (Config, error) {
	cfg := Config{}

	cfg.Server = ServerConfig{
		Addr: firstNonEmpty(
			os.Getenv("SERVER_ADDR"),
			os.Getenv("ADDR"),
			":8080",
		),
		PublicDir: firstNonEmpty(os.Getenv("PUBLIC_DIR"), "public"),
	}

	cfg.Database = DatabaseConfig{
		URL: firstNonEmpty(
			os.Getenv("DATABASE_URL"),
			os.Getenv("DB_URL"),
			"padoca.db",
		),
		UseMock: strings.EqualFold(os.Getenv("DB_USE_MOCK"), "true"),
	}

	var err error
	if cfg.Database.MaxIdleConns, err = intEnv("DB_MAX_IDLE_CONNS"); err != nil {
		return Config{}, err
	}
	if cfg.Database.MaxOpenConns, err = intEnv("DB_MAX_OPEN_CONNS"); err != nil {
		return Config{}, err
	}
	if cfg.Database.ConnMaxLifetime, err = durationEnv("DB_CONN_MAX_LIFETIME"); err != nil {
		return Config{}, err
	}
	if cfg.Database.ConnMaxIdleTime, err = durationEnv("DB_CONN_MAX_IDLE_TIME"); err != nil {
		return Config{}, err
	}

	lifetime, err := durationEnv("SESSION_LIFETIME")
	if err != nil {
		return Config{}, err
	}
	if lifetime <= 0 {
		lifetime = 8 * time.Hour
	}
	cfg.Session = SessionConfig{
		Lifetime:     lifetime,
		CookieName:   firstNonEmpty(os.Getenv("SESSION_COOKIE_NAME"), "padoca_session"),
		CookieDomain: os.Getenv("SESSION_COOKIE_DOMAIN"),
		CookieSecure: strings.EqualFold(os.Getenv("SESSION_COOKIE_SECURE"), "true"),
	}

	if brokers := strings.TrimSpace(os.Getenv("EVENTS_BROKERS")); brokers != "" {
		for _, broker := range strings.Split(brokers, ",") {
			if trimmed := strings.TrimSpace(broker); trimmed != "" {
				cfg.Events.Brokers = append(cfg.Events.Brokers, trimmed)
			}
		}
	}
	cfg.Events.Topic = firstNonEmpty(os.Getenv("EVENTS_TOPIC"), "estoque.movimentos")

	cfg.Log = LogConfig{
		Level:  firstNonEmpty(os.Getenv("LOG_LEVEL"), "info"),
		Format: firstNonEmpty(os.Getenv("LOG_FORMAT"), "text"),
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return Config{}, fmt.Errorf("server address must not be empty")
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func intEnv(key string) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return value, nil
}

func durationEnv(key string) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return value, nil
}
