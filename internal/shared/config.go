package shared

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppEnv       string
	HTTPAddr     string
	MetricsAddr  string
	RedisAddr    string
	RedisDB      int
	RedisPass    string
	UserAgent    string
	ProviderRPS  int
	BrowserWait  time.Duration
	FetchTimeout time.Duration
	MatchScore   float64
	CacheTTL     time.Duration
}

// DefaultUserAgent is sent on every outbound provider request. Both
// providers serve reduced or blocked pages to unrecognized clients, so a
// realistic browser signature is a functional requirement.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:       env("APP_ENV", "prod"),
		HTTPAddr:     env("HTTP_ADDR", ":8080"),
		MetricsAddr:  env("METRICS_ADDR", ":9100"),
		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		RedisPass:    env("REDIS_PASSWORD", ""),
		RedisDB:      atoi("REDIS_DB", 0),
		UserAgent:    env("SCRAPE_USER_AGENT", DefaultUserAgent),
		ProviderRPS:  atoi("PROVIDER_RPS", 4),
		BrowserWait:  time.Duration(atoi("BROWSER_WAIT_SECONDS", 5)) * time.Second,
		FetchTimeout: time.Duration(atoi("FETCH_TIMEOUT_SECONDS", 20)) * time.Second,
		CacheTTL:     time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
	}
	// Duplicate-match threshold is a tunable business rule, not an invariant.
	c.MatchScore = 0.7
	if v := os.Getenv("DEDUPE_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f <= 1 {
			c.MatchScore = f
		}
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
