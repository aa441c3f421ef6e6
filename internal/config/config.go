package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/samber/lo"
	"go.uber.org/multierr"
)

// Defaults is implemented by every config section. Keys are relative to the
// section.
type Defaults interface {
	Defaults() map[string]any
}

type Validator interface {
	Validate() error
}

var _ Defaults = (*Config)(nil)
var _ Validator = (*Config)(nil)

const (
	GatewayRazorpay = "razorpay"
	GatewayPhonePe  = "phonepe"
)

type Config struct {
	Server      ServerConfig      `config:"server"`
	Gateway     GatewayConfig     `config:"gateway"`
	Razorpay    RazorpayConfig    `config:"razorpay"`
	PhonePe     PhonePeConfig     `config:"phonepe"`
	Mail        MailConfig        `config:"mail"`
	Fulfillment FulfillmentConfig `config:"fulfillment"`
	Store       StoreConfig       `config:"store"`
	Keepalive   KeepaliveConfig   `config:"keepalive"`
	Prune       PruneConfig       `config:"prune"`
	KillBill    KillBillConfig    `config:"killbill"`
	Log         LogConfig         `config:"log"`
}

func (c Config) sections() map[string]Defaults {
	return map[string]Defaults{
		"server":      c.Server,
		"gateway":     c.Gateway,
		"razorpay":    c.Razorpay,
		"phonepe":     c.PhonePe,
		"mail":        c.Mail,
		"fulfillment": c.Fulfillment,
		"store":       c.Store,
		"keepalive":   c.Keepalive,
		"prune":       c.Prune,
		"killbill":    c.KillBill,
		"log":         c.Log,
	}
}

// Defaults flattens every section's defaults under its section key.
func (c Config) Defaults() map[string]any {
	out := make(map[string]any)
	for name, section := range c.sections() {
		for key, value := range section.Defaults() {
			out[name+"."+key] = value
		}
	}
	return out
}

// Validate reports every missing or invalid setting at once so a deployment
// can be fixed in a single pass.
func (c Config) Validate() error {
	var err error

	err = multierr.Append(err, c.Server.Validate())
	err = multierr.Append(err, c.Gateway.Validate())

	switch c.Gateway.Provider {
	case GatewayRazorpay:
		err = multierr.Append(err, c.Razorpay.Validate())
	case GatewayPhonePe:
		err = multierr.Append(err, c.PhonePe.Validate())
	}

	err = multierr.Append(err, c.Mail.Validate())
	err = multierr.Append(err, c.Fulfillment.Validate())
	err = multierr.Append(err, c.Store.Validate())

	if c.KillBill.Enabled {
		err = multierr.Append(err, c.KillBill.Validate())
	}

	return err
}

// derive fills settings whose defaults are built from other settings.
func (c *Config) derive() {
	if c.Server.PublicURL == "" {
		return
	}

	if c.PhonePe.RedirectURL == "" {
		c.PhonePe.RedirectURL = c.Server.URL(PaymentReturnPath)
	}
	if c.PhonePe.CallbackURL == "" {
		c.PhonePe.CallbackURL = c.Server.URL(CallbackPath)
	}
}

type LogConfig struct {
	Level       string `config:"level"`
	Development bool   `config:"development"`
}

func (c LogConfig) Defaults() map[string]any {
	return map[string]any{
		"level":       "info",
		"development": false,
	}
}

func required(key, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", key)
	}
	return nil
}

func oneOf(key, value string, allowed ...string) error {
	if !lo.Contains(allowed, value) {
		return fmt.Errorf("%s must be one of %v, got %q", key, allowed, value)
	}
	return nil
}

func fileExists(key, path string) error {
	if path == "" {
		return fmt.Errorf("%s is required", key)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: file %s does not exist", key, path)
		}
		return fmt.Errorf("%s: %w", key, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s: %s is a directory", key, path)
	}

	return nil
}
