package database

import (
	"github.com/anachak/anachak/internal/common/config"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
)

// NewMySQL opens a MySQL database
func NewMySQL(cfg *config.DatabaseConfig, logger *zap.Logger) (*Store, error) {
	return openStore(mysql.Open(cfg.GetDSN()), logger)
}
