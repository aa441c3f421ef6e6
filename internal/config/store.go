package config

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreMySQL  = "mysql"
	StoreRedis  = "redis"
)

type StoreConfig struct {
	Driver        string        `config:"driver"`
	DSN           string        `config:"dsn"`
	RedisAddr     string        `config:"redis_addr"`
	RedisPassword string        `config:"redis_password"`
	RedisDB       int           `config:"redis_db"`
	KeyPrefix     string        `config:"key_prefix"`
	Retention     time.Duration `config:"retention"`
}

func (c StoreConfig) Defaults() map[string]any {
	return map[string]any{
		"driver":     StoreMemory,
		"redis_db":   0,
		"key_prefix": "checkout:",
		"retention":  "720h",
	}
}

func (c StoreConfig) Validate() error {
	err := oneOf("store.driver", c.Driver, StoreMemory, StoreSQLite, StoreMySQL, StoreRedis)

	switch c.Driver {
	case StoreSQLite, StoreMySQL:
		err = multierr.Append(err, required("store.dsn", c.DSN))
	case StoreRedis:
		err = multierr.Append(err, required("store.redis_addr", c.RedisAddr))
	}

	if c.Retention <= 0 {
		err = multierr.Append(err, fmt.Errorf("store.retention must be positive"))
	}

	return err
}
