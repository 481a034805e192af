package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anachak/anachak/internal/apiserver/cache"
	"github.com/anachak/anachak/internal/apiserver/database"
	"github.com/anachak/anachak/internal/apiserver/handler"
	"github.com/anachak/anachak/internal/auth/jwt"
	"github.com/anachak/anachak/internal/auth/provider"
	"github.com/anachak/anachak/internal/common/cnst"
	"github.com/anachak/anachak/internal/common/config"
	"github.com/anachak/anachak/internal/confirm"
	"github.com/anachak/anachak/internal/media"
	"github.com/anachak/anachak/internal/session"
	"github.com/anachak/anachak/internal/storage"
	"github.com/anachak/anachak/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// services holds every collaborator the router needs
type services struct {
	db        database.Database
	metrics   *metrics.Metrics
	provider  provider.Provider
	sessions  *session.Manager
	objects   storage.ObjectStore
	media     *media.Service
	menus     *cache.MenuCache
	deletions *confirm.Manager
	handler   *handler.Handler

	closers []func() error
}

func newServices(ctx context.Context, cfg *config.APIServerConfig, db database.Database, lg *zap.Logger) (*services, error) {
	s := &services{db: db}
	if cfg.Metrics.Enabled {
		s.metrics = metrics.New(cfg.Metrics)
	}

	p, err := provider.New(&cfg.Auth, db, s.metrics, lg)
	if err != nil {
		return nil, err
	}
	s.provider = p

	tokens, err := jwt.NewService(jwt.Config{SecretKey: cfg.JWT.SecretKey, Duration: cfg.JWT.Duration})
	if err != nil {
		return nil, fmt.Errorf("failed to create jwt service: %w", err)
	}
	store, err := session.NewStore(ctx, lg, &cfg.Session)
	if err != nil {
		return nil, err
	}
	s.sessions = session.NewManager(p, db, store, tokens, cfg.Session.TTL, lg)

	s.objects, err = storage.NewObjectStore(&cfg.Storage, s.metrics, lg)
	if err != nil {
		return nil, err
	}
	s.media = media.NewService(s.objects, cfg.Media, s.metrics, lg)

	var client redis.Cmdable
	if cfg.Cache.Enabled && cfg.Cache.Redis.Addr != "" {
		rc, err := session.NewRedisClient(ctx, cfg.Cache.Redis)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, rc.Close)
		client = rc
	}
	s.menus = cache.NewMenuCache(cfg.Cache, client, lg)

	s.deletions = confirm.NewManager(lg,
		confirm.WithReason(handler.DeleteReason),
		confirm.WithInvalidator(s.menus),
		confirm.WithMetrics(s.metrics),
	)
	s.handler = handler.NewHandler(db, p, s.sessions, s.deletions, s.media, s.menus, lg)
	return s, nil
}

func (s *services) close() {
	for _, fn := range s.closers {
		_ = fn()
	}
}

// bootstrap seeds the roles and, when configured, the first super admin
func bootstrap(ctx context.Context, db database.Database, p provider.Provider, cfg config.SuperAdminConfig, lg *zap.Logger) error {
	if err := database.EnsureRoles(ctx, db); err != nil {
		return err
	}
	email := strings.ToLower(strings.TrimSpace(cfg.Email))
	if email == "" {
		return nil
	}
	if _, err := db.GetUserByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, database.ErrNotFound) {
		return err
	}

	role, err := db.GetRoleByName(ctx, cnst.RoleSuperAdmin)
	if err != nil {
		return fmt.Errorf("failed to load super admin role: %w", err)
	}
	au, err := p.CreateUser(ctx, email, cfg.Password)
	if err != nil {
		return fmt.Errorf("failed to create super admin account: %w", err)
	}
	username := cfg.Username
	if username == "" {
		username = email
	}
	user := &database.User{
		AuthID:   au.ID,
		Username: username,
		Email:    email,
		Password: au.PasswordHash,
		RoleID:   role.ID,
	}
	if err := db.CreateUser(ctx, user); err != nil {
		_ = p.DeleteUser(context.WithoutCancel(ctx), au.ID)
		return fmt.Errorf("failed to create super admin: %w", err)
	}
	lg.Info("Super admin created", zap.Uint("user_id", user.ID), zap.String("email", email))
	return nil
}
