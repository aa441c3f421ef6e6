package tasks

import (
	"context"
	"time"

	"go.lumeweb.com/checkout-bridge/internal/store"
	"go.uber.org/zap"
)

// Prune drops orders older than the retention period.
type Prune struct {
	store     store.OrderStore
	retention time.Duration
	interval  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

func NewPrune(orders store.OrderStore, retention, interval time.Duration, logger *zap.Logger) *Prune {
	return &Prune{
		store:     orders,
		retention: retention,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
	}
}

func (p *Prune) Name() string {
	return "prune"
}

func (p *Prune) Interval() time.Duration {
	return p.interval
}

func (p *Prune) Run(ctx context.Context) error {
	pruned, err := p.store.Prune(ctx, p.now().Add(-p.retention))
	if err != nil {
		return err
	}

	if pruned > 0 {
		p.logger.Info("pruned orders", zap.Int("count", pruned))
	}

	return nil
}
