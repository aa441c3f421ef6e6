package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func checkConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "Validate configuration and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, false)
			if err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration:\n%w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "configuration ok (gateway=%s, store=%s)\n", cfg.Gateway.Provider, cfg.Store.Driver)
			return nil
		},
	}
}
