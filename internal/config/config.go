package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	SnapshotFile   string        // path to the scraped-config snapshot yaml
	ReloadInterval time.Duration // interval to re-ingest the snapshot (default: 1h)
	PruneInterval  time.Duration // interval to prune stale instances (default: 24h)
	PruneAge       time.Duration // instances unseen for this long are pruned (default: 720h)
	Workers        int           // discovery worker bound (default: 8)

	// Redis
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDialTimeout    time.Duration // ex: 5s
	RedisReadTimeout    time.Duration // ex: 3s
	RedisWriteTimeout   time.Duration // ex: 3s
	RedisPoolSize       int           // connection pool size
	RedisConnectTimeout time.Duration // total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // initial wait between retries, grows exponentially
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisWarnThreshold  int           // warn after this many attempts

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers
}

func Load() *Config {
	return &Config{
		// Server settings
		ListenPort:      getenv("BDSCAN_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("BDSCAN_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("BDSCAN_LOG_LEVEL", "info"),
		PrettyLog: mustBool("BDSCAN_PRETTY_LOG", false),

		// Pipeline
		SnapshotFile:   requireEnv("BDSCAN_SNAPSHOT_FILE"),
		ReloadInterval: mustDuration("BDSCAN_RELOAD_INTERVAL", time.Hour),
		PruneInterval:  mustDuration("BDSCAN_PRUNE_INTERVAL", 24*time.Hour),
		PruneAge:       mustDuration("BDSCAN_PRUNE_AGE", 30*24*time.Hour),
		Workers:        getenvInt("BDSCAN_WORKERS", 8),

		// Redis settings
		RedisAddr:           requireEnv("BDSCAN_REDIS_ADDR"),
		RedisUser:           getenv("BDSCAN_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("BDSCAN_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("BDSCAN_REDIS_DB", 0),
		RedisDialTimeout:    mustDuration("BDSCAN_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisReadTimeout:    mustDuration("BDSCAN_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWriteTimeout:   mustDuration("BDSCAN_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisPoolSize:       getenvInt("BDSCAN_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("BDSCAN_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("BDSCAN_REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisMaxWait:        mustDuration("BDSCAN_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("BDSCAN_REDIS_PING_TIMEOUT", 5*time.Second),
		RedisWarnThreshold:  getenvInt("BDSCAN_REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("BDSCAN_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("BDSCAN_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("BDSCAN_TRUST_PROXY", false),
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.Trim(strings.TrimSpace(part), `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
