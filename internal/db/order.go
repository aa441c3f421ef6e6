package db

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

var _ schema.Tabler = (*PaymentOrder)(nil)

type PaymentOrder struct {
	gorm.Model
	OrderID     string `gorm:"uniqueIndex;size:64"`
	Email       string `gorm:"index;size:320"`
	Amount      int64
	Currency    string `gorm:"size:8"`
	Gateway     string `gorm:"size:32"`
	Status      string `gorm:"index;size:16"`
	FulfilledAt *time.Time
}

func (p *PaymentOrder) TableName() string {
	return "payment_orders"
}
