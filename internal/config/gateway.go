package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

type GatewayConfig struct {
	Provider       string        `config:"provider"`
	Amount         string        `config:"amount"`
	Currency       string        `config:"currency"`
	ReceiptPrefix  string        `config:"receipt_prefix"`
	RequestTimeout time.Duration `config:"request_timeout"`
}

func (c GatewayConfig) Defaults() map[string]any {
	return map[string]any{
		"provider":        GatewayRazorpay,
		"amount":          "99.00",
		"currency":        "INR",
		"receipt_prefix":  "rcpt_",
		"request_timeout": "15s",
	}
}

func (c GatewayConfig) Validate() error {
	err := oneOf("gateway.provider", c.Provider, GatewayRazorpay, GatewayPhonePe)
	err = multierr.Append(err, required("gateway.currency", c.Currency))

	amount, parseErr := decimal.NewFromString(c.Amount)
	if parseErr != nil {
		return multierr.Append(err, fmt.Errorf("gateway.amount: %w", parseErr))
	}
	if !amount.IsPositive() {
		err = multierr.Append(err, fmt.Errorf("gateway.amount must be positive, got %s", c.Amount))
	}

	if c.RequestTimeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("gateway.request_timeout must be positive"))
	}

	return err
}

// MinorAmount returns the charge in the currency's minor unit (paise, cents).
func (c GatewayConfig) MinorAmount() int64 {
	amount, err := decimal.NewFromString(c.Amount)
	if err != nil {
		return 0
	}
	return amount.Shift(2).Round(0).IntPart()
}

type RazorpayConfig struct {
	KeyID         string   `config:"key_id"`
	KeySecret     string   `config:"key_secret"`
	WebhookSecret string   `config:"webhook_secret"`
	SuccessEvents []string `config:"success_events"`
}

func (c RazorpayConfig) Defaults() map[string]any {
	return map[string]any{
		"success_events": []string{"payment.captured"},
	}
}

func (c RazorpayConfig) Validate() error {
	return multierr.Combine(
		required("razorpay.key_id", c.KeyID),
		required("razorpay.key_secret", c.KeySecret),
		required("razorpay.webhook_secret", c.WebhookSecret),
	)
}

type PhonePeConfig struct {
	MerchantID  string        `config:"merchant_id"`
	SaltKey     string        `config:"salt_key"`
	SaltIndex   int           `config:"salt_index"`
	Host        string        `config:"host"`
	RedirectURL string        `config:"redirect_url"`
	CallbackURL string        `config:"callback_url"`
	MaxRetries  int           `config:"max_retries"`
	RetryDelay  time.Duration `config:"retry_delay"`
}

func (c PhonePeConfig) Defaults() map[string]any {
	return map[string]any{
		"salt_index":  1,
		"host":        "https://api.phonepe.com/apis/hermes",
		"max_retries": 3,
		"retry_delay": "1s",
	}
}

func (c PhonePeConfig) Validate() error {
	err := multierr.Combine(
		required("phonepe.merchant_id", c.MerchantID),
		required("phonepe.salt_key", c.SaltKey),
		required("phonepe.host", c.Host),
		required("phonepe.redirect_url", c.RedirectURL),
	)

	if c.SaltIndex <= 0 {
		err = multierr.Append(err, fmt.Errorf("phonepe.salt_index must be positive"))
	}

	return err
}
