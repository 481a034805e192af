package database

import (
	"fmt"

	"github.com/anachak/anachak/internal/common/config"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
)

// NewSQLite opens a SQLite database. ":memory:" is pinned to one connection so
// every query sees the same in-memory database.
func NewSQLite(cfg *config.DatabaseConfig, logger *zap.Logger) (*Store, error) {
	store, err := openStore(sqlite.Open(cfg.GetDSN()), logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := store.db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql db: %w", err)
	}
	if cfg.DBName == ":memory:" {
		sqlDB.SetMaxOpenConns(1)
	}
	return store, nil
}
