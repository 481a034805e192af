package database

import (
	"github.com/anachak/anachak/internal/common/config"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
)

// NewPostgres opens a PostgreSQL database
func NewPostgres(cfg *config.DatabaseConfig, logger *zap.Logger) (*Store, error) {
	return openStore(postgres.Open(cfg.GetDSN()), logger)
}
