package config

import "go.uber.org/multierr"

type KillBillConfig struct {
	Enabled   bool   `config:"enabled"`
	APIServer string `config:"api_server"`
	Username  string `config:"username"`
	Password  string `config:"password"`
	APIKey    string `config:"api_key"`
	APISecret string `config:"api_secret"`
}

func (c KillBillConfig) Defaults() map[string]any {
	return map[string]any{
		"enabled": false,
	}
}

func (c KillBillConfig) Validate() error {
	return multierr.Combine(
		required("killbill.api_server", c.APIServer),
		required("killbill.username", c.Username),
		required("killbill.password", c.Password),
		required("killbill.api_key", c.APIKey),
		required("killbill.api_secret", c.APISecret),
	)
}
