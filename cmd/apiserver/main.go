package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/anachak/anachak/internal/apiserver/database"
	"github.com/anachak/anachak/internal/common/cnst"
	"github.com/anachak/anachak/internal/common/config"
	"github.com/anachak/anachak/internal/i18n"
	"github.com/anachak/anachak/pkg/logger"
	"github.com/anachak/anachak/pkg/trace"
	"github.com/anachak/anachak/pkg/version"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of apiserver",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", cnst.CommandName, version.Get())
		},
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema and seed roles and the super admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(cmd.Context())
		},
	}

	rootCmd = &cobra.Command{
		Use:   cnst.CommandName,
		Short: "Restaurant menu API server",
		Long:  `Serves the multi-tenant admin API and the public shop menus`,
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "conf", "c", cnst.ApiServerYaml, "path to configuration file, like /etc/anachak/apiserver.yaml")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(migrateCmd)
}

func loadConfig() *config.APIServerConfig {
	cfg, cfgPath, err := config.LoadConfig[config.APIServerConfig](configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration %s: %v", cfgPath, err)
	}
	if err := cfg.Validate(cfgPath); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

func initLogger(cfg *config.APIServerConfig) *zap.Logger {
	lg, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	return lg
}

func initDatabase(lg *zap.Logger, cfg *config.DatabaseConfig) database.Database {
	db, err := database.NewDatabase(cfg, lg)
	if err != nil {
		lg.Fatal("Failed to initialize database", zap.String("type", cfg.Type), zap.Error(err))
	}
	return db
}

func initI18n(cfg *config.I18nConfig) {
	i18n.SetDefaultLanguage(cfg.DefaultLang)
	if err := i18n.InitTranslator(cfg.Path); err != nil {
		log.Printf("Failed to load translations from %s, using built-in messages: %v", cfg.Path, err)
	}
}

func migrate(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := loadConfig()
	lg := initLogger(cfg)
	defer lg.Sync()

	db := initDatabase(lg, &cfg.Database)
	defer db.Close()

	svc, err := newServices(ctx, cfg, db, lg)
	if err != nil {
		return err
	}
	defer svc.close()
	if err := bootstrap(ctx, db, svc.provider, cfg.SuperAdmin, lg); err != nil {
		return err
	}
	lg.Info("Database migrated", zap.String("type", cfg.Database.Type))
	return nil
}

func run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := loadConfig()
	lg := initLogger(cfg)
	defer lg.Sync()

	lg.Info("Starting apiserver", zap.String("version", version.Get()))
	initI18n(&cfg.I18n)

	shutdownTracing := func(context.Context) error { return nil }
	if cfg.Tracing.Enabled {
		fn, err := trace.InitTracing(ctx, &cfg.Tracing, lg)
		if err != nil {
			lg.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		shutdownTracing = fn
	}

	db := initDatabase(lg, &cfg.Database)
	defer db.Close()

	svc, err := newServices(ctx, cfg, db, lg)
	if err != nil {
		lg.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer svc.close()

	if err := bootstrap(ctx, db, svc.provider, cfg.SuperAdmin, lg); err != nil {
		lg.Fatal("Failed to seed roles and super admin", zap.Error(err))
	}
	if cfg.Cache.Enabled {
		go svc.menus.Layers().StartCleanup(ctx, cfg.Cache.L1TTL)
	}

	gin.SetMode(ginMode(cfg.Server.Mode))
	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Server.Port),
		Handler: initRouter(ctx, cfg, svc, lg),
	}

	go func() {
		lg.Info("Server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	lg.Info("Shutting down server", zap.String("signal", sig.String()))
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		lg.Warn("Failed to flush traces", zap.Error(err))
	}
	lg.Info("Server exited")
}

func ginMode(mode string) string {
	switch mode {
	case gin.DebugMode, gin.TestMode:
		return mode
	default:
		return gin.ReleaseMode
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
