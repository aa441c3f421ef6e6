package config

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
)

type MailConfig struct {
	Host       string        `config:"host"`
	Port       int           `config:"port"`
	SSL        bool          `config:"ssl"`
	Username   string        `config:"username"`
	Password   string        `config:"password"`
	From       string        `config:"from"`
	Subject    string        `config:"subject"`
	Body       string        `config:"body"`
	Attachment string        `config:"attachment"`
	Timeout    time.Duration `config:"timeout"`
}

func (c MailConfig) Defaults() map[string]any {
	return map[string]any{
		"host":       "smtp.gmail.com",
		"port":       465,
		"ssl":        true,
		"subject":    "Your CodeSage Master Notes",
		"body":       "Dear Student,\n\nThank you for your payment. Please find your PDF notes attached.\n\nTeam CodeSage",
		"attachment": "master_notes.pdf",
		"timeout":    "30s",
	}
}

func (c MailConfig) Validate() error {
	err := multierr.Combine(
		required("mail.host", c.Host),
		required("mail.username", c.Username),
		required("mail.password", c.Password),
		fileExists("mail.attachment", c.Attachment),
	)

	if c.Port <= 0 {
		err = multierr.Append(err, fmt.Errorf("mail.port must be positive"))
	}

	return err
}

// Sender is the From address; the account identity is used when unset.
func (c MailConfig) Sender() string {
	if c.From != "" {
		return c.From
	}
	return c.Username
}

type FulfillmentConfig struct {
	Async      bool          `config:"async"`
	Idempotent bool          `config:"idempotent"`
	Timeout    time.Duration `config:"timeout"`
}

func (c FulfillmentConfig) Defaults() map[string]any {
	return map[string]any{
		"async":      true,
		"idempotent": true,
		"timeout":    "45s",
	}
}

func (c FulfillmentConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("fulfillment.timeout must be positive")
	}
	return nil
}
