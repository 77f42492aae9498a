package config

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env            string
	LogLevel       string
	ServerAddr     string
	DBType         string
	DBDSN          string
	SQLitePath     string
	JWTSecret      string
	AuthServiceURL string

	// Advisory cache TTLs. Values bound staleness, not correctness.
	HabitListTTL  time.Duration
	HabitStatsTTL time.Duration
	OverviewTTL   time.Duration
	UserTTL       time.Duration
	CacheSweep    time.Duration
}

var (
	cfg  *Config
	once sync.Once
)

func Load() *Config {
	once.Do(func() {
		_ = godotenv.Load()
		cfg = &Config{
			Env:            getEnv("APP_ENV", "development"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			ServerAddr:     getEnv("SERVER_ADDR", ":8088"),
			DBType:         getEnv("STORAGE_BACKEND", "sqlite"),
			DBDSN:          getEnv("POSTGRES_DSN", ""),
			SQLitePath:     getEnv("SQLITE_PATH", "data/tracknstick.db"),
			JWTSecret:      getEnv("JWT_SECRET", ""),
			AuthServiceURL: getEnv("AUTH_SERVICE_URL", ""),
			HabitListTTL:   getDuration("CACHE_TTL_HABITS", 10*time.Minute),
			HabitStatsTTL:  getDuration("CACHE_TTL_STATS", 5*time.Minute),
			OverviewTTL:    getDuration("CACHE_TTL_OVERVIEW", 5*time.Minute),
			UserTTL:        getDuration("CACHE_TTL_USERS", 30*time.Minute),
			CacheSweep:     getDuration("CACHE_SWEEP_INTERVAL", time.Minute),
		}
		if err := cfg.Validate(); err != nil {
			panic("Invalid config: " + err.Error())
		}
	})
	return cfg
}

func (c *Config) Validate() error {
	if c.DBType == "postgres" && c.DBDSN == "" {
		return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
	}
	if c.DBType == "sqlite" && c.SQLitePath == "" {
		return errors.New("SQLITE_PATH is required when STORAGE_BACKEND=sqlite")
	}
	if c.DBType != "postgres" && c.DBType != "sqlite" {
		return errors.New("STORAGE_BACKEND must be one of: postgres, sqlite")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	if c.Env != "development" && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required outside development")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
