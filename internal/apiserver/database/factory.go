package database

import (
	"fmt"

	"github.com/anachak/anachak/internal/common/config"
	"go.uber.org/zap"
)

// NewDatabase creates a new database based on configuration and migrates its schema
func NewDatabase(cfg *config.DatabaseConfig, logger *zap.Logger) (Database, error) {
	var (
		store *Store
		err   error
	)
	switch cfg.Type {
	case "postgres":
		store, err = NewPostgres(cfg, logger)
	case "sqlite":
		store, err = NewSQLite(cfg, logger)
	case "mysql":
		store, err = NewMySQL(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}
