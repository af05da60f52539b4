package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries everything read from the environment. A single Config is
// built at startup and passed down; packages never read os.Getenv themselves.
type Config struct {
	Env  string // "development" or "production"
	Port string

	// Primary catalog database DSN (MySQL).
	DBDSN string

	// Gemini API key for AI-assisted variation inference. Empty means AI
	// inference is disabled and the transformer runs on heuristics only.
	GeminiAPIKey string
	GeminiModel  string

	// Bundle / cross-sell filter tunables. Defaults match the values the
	// legacy catalog was migrated with; change them only with a parity check.
	Bundle BundleConfig
}

// BundleConfig holds the add-on filtering thresholds and keyword lists.
type BundleConfig struct {
	MaxPrice             float64  // candidates above this are never add-ons
	MainProductMaxPrice  float64  // cockpit/seat/etc. keyword cutoff
	MainProductKeywords  []string // names suggesting a primary product
	ConfigKeywords       []string // names/SKUs suggesting a configuration product
	BracketMountKeywords []string // bracket/mount names filtered above the cutoff
}

// DefaultBundleConfig returns the migration-parity defaults.
func DefaultBundleConfig() BundleConfig {
	return BundleConfig{
		MaxPrice:             150,
		MainProductMaxPrice:  50,
		MainProductKeywords:  []string{"cockpit", "seat", "chassis", "frame"},
		ConfigKeywords:       []string{"config", "configuration"},
		BracketMountKeywords: []string{"bracket", "mount"},
	}
}

// Load reads .env (if present) and the process environment into a Config.
// Missing optional values fall back to defaults; nothing here is fatal.
func Load() *Config {
	// .env is a convenience for local runs; in deployment the variables
	// come from the process environment.
	_ = godotenv.Load()

	cfg := &Config{
		Env:          getEnv("APP_ENV", "development"),
		Port:         getEnv("PORT", "8080"),
		DBDSN:        os.Getenv("DB_DSN"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		Bundle:       DefaultBundleConfig(),
	}

	if v := os.Getenv("BUNDLE_MAX_PRICE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Bundle.MaxPrice = f
		}
	}
	if v := os.Getenv("BUNDLE_MAIN_PRODUCT_MAX_PRICE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Bundle.MainProductMaxPrice = f
		}
	}
	if v := os.Getenv("BUNDLE_MAIN_PRODUCT_KEYWORDS"); v != "" {
		cfg.Bundle.MainProductKeywords = splitList(v)
	}
	if v := os.Getenv("BUNDLE_CONFIG_KEYWORDS"); v != "" {
		cfg.Bundle.ConfigKeywords = splitList(v)
	}
	if v := os.Getenv("BUNDLE_BRACKET_KEYWORDS"); v != "" {
		cfg.Bundle.BracketMountKeywords = splitList(v)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return out
}
