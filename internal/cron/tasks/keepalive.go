package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Keepalive requests a URL on an interval so hosts that sleep idle services
// keep this one awake.
type Keepalive struct {
	url      string
	interval time.Duration
	client   *resty.Client
	logger   *zap.Logger
}

func NewKeepalive(url string, interval time.Duration, logger *zap.Logger) *Keepalive {
	return &Keepalive{
		url:      url,
		interval: interval,
		client:   resty.New().SetTimeout(10 * time.Second),
		logger:   logger,
	}
}

func (k *Keepalive) Name() string {
	return "keepalive"
}

func (k *Keepalive) Interval() time.Duration {
	return k.interval
}

func (k *Keepalive) Run(ctx context.Context) error {
	resp, err := k.client.R().SetContext(ctx).Get(k.url)
	if err != nil {
		return fmt.Errorf("keepalive request failed: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("keepalive got status %d", resp.StatusCode())
	}

	k.logger.Debug("keepalive ok", zap.Int("status", resp.StatusCode()))

	return nil
}
