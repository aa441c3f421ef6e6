package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Open connects to driver and migrates the models this service owns.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if err := conn.AutoMigrate(&PaymentOrder{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return conn, nil
}

// RetryableTransaction runs fn against db, retrying lock contention errors.
// fn returns the *gorm.DB of its last statement so its Error can be checked.
func RetryableTransaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) *gorm.DB) error {
	return retry.Do(
		func() error {
			return fn(db.WithContext(ctx)).Error
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(50*time.Millisecond),
		retry.RetryIf(isRetryable),
		retry.LastErrorOnly(true),
	)
}

func isRetryable(err error) bool {
	if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, s := range []string{"database is locked", "deadlock", "lock wait timeout", "busy"} {
		if strings.Contains(msg, s) {
			return true
		}
	}

	return false
}
