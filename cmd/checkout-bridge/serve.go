package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	bridge "go.lumeweb.com/checkout-bridge"
	"go.lumeweb.com/checkout-bridge/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the checkout HTTP server",
		Long: `Start the checkout server.

Configuration is read from defaults, the --config file and BRIDGE_* environment
variables, in that order. Nested keys use a double underscore:

  BRIDGE_RAZORPAY__KEY_ID=rzp_live_xxx checkout-bridge serve`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address, overrides server.addr")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}

	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := bridge.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		return err
	}

	return b.Run(ctx)
}

func loadConfig(cmd *cobra.Command, validate bool) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, err
	}

	path, _ := cmd.Flags().GetString("config")
	if validate {
		return config.Load(path)
	}
	return config.LoadUnvalidated(path)
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
