// Package config loads the process configuration from the environment.
// Values are read once at startup and never change afterwards.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the read-only runtime configuration.
type Config struct {
	ListenAddr string

	// Endpoints is the ordered lookup fallback chain. Order is significant.
	Endpoints []string

	RedisAddr     string
	RedisDB       int
	RedisPassword string

	CacheTTL time.Duration

	MaxScreenshots   int
	ImageBaseRewrite string

	BotName          string
	GroupedPlatforms []string
	PrefetchImages   bool

	LogFile string
}

const (
	defaultEndpoint       = "https://whatslink.info"
	defaultCacheTTL       = 86400 * time.Second
	defaultMaxScreenshots = 1
	maxScreenshotCeiling  = 9
)

// Load reads configuration from the environment, picking up a .env file
// first as a development convenience.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("[config] loaded .env file")
	}

	return &Config{
		ListenAddr:       envString("LISTEN_ADDR", ":8920"),
		Endpoints:        splitList(envString("WHATSLINK_URLS", defaultEndpoint)),
		RedisAddr:        envString("REDIS_ADDR", ""),
		RedisDB:          envInt("REDIS_DB", 0),
		RedisPassword:    envString("REDIS_PASSWORD", ""),
		CacheTTL:         time.Duration(envInt("CACHE_TTL_SECONDS", int(defaultCacheTTL/time.Second))) * time.Second,
		MaxScreenshots:   clampScreenshots(envInt("MAX_SCREENSHOTS", defaultMaxScreenshots)),
		ImageBaseRewrite: envString("IMAGE_BASE_REWRITE", ""),
		BotName:          envString("BOT_NAME", "MagnetView Bot"),
		GroupedPlatforms: splitList(envString("GROUPED_PLATFORMS", "aiocqhttp")),
		PrefetchImages:   envBool("PREFETCH_IMAGES", false),
		LogFile:          envString("LOG_FILE", ""),
	}
}

// clampScreenshots enforces the 1..9 bound; anything out of range falls
// back to the default of 1.
func clampScreenshots(n int) int {
	if n < 1 {
		return defaultMaxScreenshots
	}
	if n > maxScreenshotCeiling {
		return maxScreenshotCeiling
	}
	return n
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func envString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return value
}

func envBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %v", key, raw, fallback)
		return fallback
	}
	return value
}
