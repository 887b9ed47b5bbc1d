package api

import (
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds server settings, loaded from TFCANVAS_* env vars.
type Config struct {
	Port           int
	RequestTimeout time.Duration
	MaxRequestSize int64
}

// DefaultConfig returns the settings used when no env vars are set.
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		RequestTimeout: 30 * time.Second,
		MaxRequestSize: 10 * 1024 * 1024,
	}
}

// LoadConfig reads TFCANVAS_PORT, TFCANVAS_REQUEST_TIMEOUT (seconds)
// and TFCANVAS_MAX_REQUEST_SIZE (bytes) on top of the defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	k := koanf.New(".")
	if err := k.Load(env.Provider("TFCANVAS_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "TFCANVAS_"))
	}), nil); err != nil {
		return cfg, err
	}

	if k.Exists("port") {
		cfg.Port = k.Int("port")
	}
	if k.Exists("request_timeout") {
		cfg.RequestTimeout = time.Duration(k.Int("request_timeout")) * time.Second
	}
	if k.Exists("max_request_size") {
		cfg.MaxRequestSize = k.Int64("max_request_size")
	}

	return cfg, nil
}
