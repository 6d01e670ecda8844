package repository

import (
	"fmt"

	"github.com/darkodi/shortstore/internal/config"
	"github.com/darkodi/shortstore/internal/logger"
	"github.com/darkodi/shortstore/internal/model"
)

// Backend persists the whole mapping table. Save replaces everything that
// was stored before and is all-or-nothing: after a failed Save, Load still
// returns the previous table.
type Backend interface {
	// Load returns the stored mappings in insertion order. An absent store
	// yields an empty table, not an error.
	Load() ([]model.URL, error)
	Save(urls []model.URL) error
	Close() error
	Name() string
}

// Open builds the backend selected by cfg.Driver.
func Open(cfg config.StorageConfig, log *logger.Logger) (Backend, error) {
	if log == nil {
		log = logger.Discard()
	}

	switch cfg.Driver {
	case config.DriverFile, "":
		return NewFileBackend(cfg.Path, log), nil
	case config.DriverSQLite, config.DriverPostgres:
		return NewSQLBackend(cfg.Driver, cfg.DSN, log)
	case config.DriverRedis:
		return NewRedisBackend(cfg.Redis, cfg.RedisKey, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// warnSkipped logs rows dropped while decoding.
func warnSkipped(log *logger.Logger, source string) func(error) {
	return func(err error) {
		log.Warn("skipping malformed mapping row", "source", source, "error", err.Error())
	}
}
