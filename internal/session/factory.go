package session

import (
	"context"
	"fmt"

	"github.com/anachak/anachak/internal/common/config"
	"go.uber.org/zap"
)

// NewStore creates a session store based on configuration
func NewStore(ctx context.Context, logger *zap.Logger, cfg *config.SessionConfig) (Store, error) {
	logger.Info("Initializing session storage", zap.String("type", cfg.Type))
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "redis":
		client, err := NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, cfg.Redis.Prefix), nil
	default:
		return nil, fmt.Errorf("unsupported session storage type: %s", cfg.Type)
	}
}
