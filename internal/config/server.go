package config

import (
	"errors"
	"strings"
	"time"
)

// Routes other settings default to, relative to server.public_url.
const (
	CallbackPath      = "/callback"
	PaymentReturnPath = "/payment/return"
)

type ServerConfig struct {
	Addr            string        `config:"addr"`
	PublicURL       string        `config:"public_url"`
	CORSOrigins     []string      `config:"cors_origins"`
	ReadTimeout     time.Duration `config:"read_timeout"`
	WriteTimeout    time.Duration `config:"write_timeout"`
	ShutdownTimeout time.Duration `config:"shutdown_timeout"`
}

func (c ServerConfig) Defaults() map[string]any {
	return map[string]any{
		"addr":             ":10000",
		"public_url":       "http://localhost:10000",
		"cors_origins":     []string{"*"},
		"read_timeout":     "15s",
		"write_timeout":    "30s",
		"shutdown_timeout": "10s",
	}
}

func (c ServerConfig) Validate() error {
	if c.Addr == "" {
		return errors.New("server.addr is required")
	}
	return nil
}

// URL joins path onto the public base URL.
func (c ServerConfig) URL(path string) string {
	return strings.TrimRight(c.PublicURL, "/") + path
}

type KeepaliveConfig struct {
	URL      string        `config:"url"`
	Interval time.Duration `config:"interval"`
}

func (c KeepaliveConfig) Defaults() map[string]any {
	return map[string]any{
		"url":      "",
		"interval": "10m",
	}
}

func (c KeepaliveConfig) Enabled() bool {
	return c.URL != "" && c.Interval > 0
}

type PruneConfig struct {
	Interval time.Duration `config:"interval"`
}

func (c PruneConfig) Defaults() map[string]any {
	return map[string]any{
		"interval": "1h",
	}
}
