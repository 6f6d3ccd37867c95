package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if len(cfg.Endpoints) != 1 || cfg.Endpoints[0] != defaultEndpoint {
		t.Errorf("unexpected default endpoints: %v", cfg.Endpoints)
	}
	if cfg.CacheTTL != 86400*time.Second {
		t.Errorf("unexpected default TTL: %v", cfg.CacheTTL)
	}
	if cfg.MaxScreenshots != 1 {
		t.Errorf("unexpected default max screenshots: %d", cfg.MaxScreenshots)
	}
	if !reflect.DeepEqual(cfg.GroupedPlatforms, []string{"aiocqhttp"}) {
		t.Errorf("unexpected default grouped platforms: %v", cfg.GroupedPlatforms)
	}
}

func TestLoadEndpointChainKeepsOrder(t *testing.T) {
	t.Setenv("WHATSLINK_URLS", "https://primary.example, https://secondary.example ,, https://last.example")
	cfg := Load()
	expected := []string{"https://primary.example", "https://secondary.example", "https://last.example"}
	if !reflect.DeepEqual(cfg.Endpoints, expected) {
		t.Errorf("expected %v, got %v", expected, cfg.Endpoints)
	}
}

func TestMaxScreenshotsClamping(t *testing.T) {
	tests := []struct {
		raw      string
		expected int
	}{
		{"", 1},
		{"notanumber", 1},
		{"0", 1},
		{"-2", 1},
		{"4", 4},
		{"9", 9},
		{"50", 9},
	}
	for _, tc := range tests {
		t.Run("MAX_SCREENSHOTS="+tc.raw, func(t *testing.T) {
			t.Setenv("MAX_SCREENSHOTS", tc.raw)
			if cfg := Load(); cfg.MaxScreenshots != tc.expected {
				t.Errorf("got %d, expected %d", cfg.MaxScreenshots, tc.expected)
			}
		})
	}
}

func TestEnvIntInvalidFallsBack(t *testing.T) {
	t.Setenv("CACHE_TTL_SECONDS", "soon")
	if cfg := Load(); cfg.CacheTTL != 86400*time.Second {
		t.Errorf("invalid TTL should fall back, got %v", cfg.CacheTTL)
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("PREFETCH_IMAGES", "true")
	if cfg := Load(); !cfg.PrefetchImages {
		t.Error("expected prefetch enabled")
	}
	t.Setenv("PREFETCH_IMAGES", "maybe")
	if cfg := Load(); cfg.PrefetchImages {
		t.Error("invalid bool should fall back to default")
	}
}
