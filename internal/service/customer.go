package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/killbill/kbcli/v3/kbmodel"
	"go.lumeweb.com/checkout-bridge/internal/repository"
	"go.uber.org/zap"
)

const CUSTOMER_SERVICE = "customer"

var _ CustomerSync = (*CustomerServiceDefault)(nil)

type AccountRepository interface {
	GetAccountByEmail(ctx context.Context, email string) (*kbmodel.Account, error)
	CreateAccount(ctx context.Context, email, name string) error
	Ping(ctx context.Context) error
}

// CustomerServiceDefault mirrors paying customers into Kill Bill, keyed by
// email.
type CustomerServiceDefault struct {
	repo   AccountRepository
	logger *zap.Logger
	known  sync.Map // map[string]struct{}
}

func NewCustomerService(repo AccountRepository, logger *zap.Logger) *CustomerServiceDefault {
	return &CustomerServiceDefault{repo: repo, logger: logger}
}

func (c *CustomerServiceDefault) ID() string {
	return CUSTOMER_SERVICE
}

// Start fails unless Kill Bill is reachable.
func (c *CustomerServiceDefault) Start(ctx context.Context) error {
	return c.repo.Ping(ctx)
}

func (c *CustomerServiceDefault) EnsureCustomer(ctx context.Context, email string) error {
	if _, ok := c.known.Load(email); ok {
		return nil
	}

	_, err := c.repo.GetAccountByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrAccountNotFound):
		if err := c.repo.CreateAccount(ctx, email, customerName(email)); err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
		c.logger.Info("created billing account", zap.String("email", email))
	default:
		return fmt.Errorf("failed to get account: %w", err)
	}

	c.known.Store(email, struct{}{})

	return nil
}

func customerName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
