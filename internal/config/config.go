// Package config loads Prism's environment-variable configuration: a
// getEnv-with-default helper plus an optional .env file, rather than a
// layered YAML registry (there is nothing here to merge or register).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/samply/prism/internal/prismerr"
)

// Config is Prism's fully-resolved startup configuration.
type Config struct {
	BeamProxyURL string
	BeamAppID    string
	BeamAPIKey   string
	Sites        []string
	CORSOrigin   string
	Project      string
	BindAddr     string
	TargetApp    string
	CacheTTL     time.Duration
	WaitCount    int
	RefreshEvery time.Duration
	QueryFile    string
	QueryBody    string
}

// Load reads configuration from the process environment, optionally
// preceded by an .env file at envFile. A missing .env file is only a
// warning, not a fatal error — the process may already have its
// environment set some other way.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not load %s: %v\n", envFile, err)
		}
	}

	cfg := &Config{
		BindAddr:  getEnv("BIND_ADDR", "0.0.0.0:8080"),
		TargetApp: getEnv("TARGET_APP", "focus"),
	}

	var err error
	if cfg.BeamProxyURL, err = requireEnv("BEAM_PROXY_URL"); err != nil {
		return nil, err
	}
	if cfg.BeamAppID, err = requireEnv("BEAM_APP_ID"); err != nil {
		return nil, err
	}
	if cfg.BeamAPIKey, err = requireEnv("BEAM_API_KEY"); err != nil {
		return nil, err
	}
	if cfg.CORSOrigin, err = requireEnv("CORS_ORIGIN"); err != nil {
		return nil, err
	}
	if cfg.Project, err = requireEnv("PROJECT"); err != nil {
		return nil, err
	}

	sitesRaw, err := requireEnv("SITES")
	if err != nil {
		return nil, err
	}
	cfg.Sites = splitSites(sitesRaw)

	cfg.CacheTTL, err = parseDuration("CACHE_TTL", "24h")
	if err != nil {
		return nil, err
	}
	cfg.RefreshEvery, err = parseDuration("REFRESH_INTERVAL", "15m")
	if err != nil {
		return nil, err
	}
	cfg.WaitCount, err = parseInt("WAIT_COUNT", 32)
	if err != nil {
		return nil, err
	}

	cfg.QueryFile = getEnv("QUERY_FILE", fmt.Sprintf("./resources/query_%s.encoded", cfg.Project))
	body, err := os.ReadFile(cfg.QueryFile)
	if err != nil {
		return nil, prismerr.NewConfigError("QUERY_FILE", err)
	}
	cfg.QueryBody = strings.TrimSpace(string(body))

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func requireEnv(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", prismerr.NewConfigError(key, prismerr.ErrMissingConfig)
	}
	return v, nil
}

func splitSites(raw string) []string {
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDuration(key, defaultValue string) (time.Duration, error) {
	raw := getEnv(key, defaultValue)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, prismerr.NewConfigError(key, fmt.Errorf("%w: %v", prismerr.ErrInvalidConfig, err))
	}
	return d, nil
}

func parseInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, strconv.Itoa(defaultValue))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, prismerr.NewConfigError(key, fmt.Errorf("%w: %v", prismerr.ErrInvalidConfig, err))
	}
	return n, nil
}
