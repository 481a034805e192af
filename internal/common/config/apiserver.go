package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/anachak/anachak/internal/common/cnst"
	"github.com/anachak/anachak/pkg/trace"
)

type (
	APIServerConfig struct {
		Server     ServerConfig     `yaml:"server"`
		Database   DatabaseConfig   `yaml:"database"`
		Auth       AuthConfig       `yaml:"auth"`
		JWT        JWTConfig        `yaml:"jwt"`
		Session    SessionConfig    `yaml:"session"`
		Storage    StorageConfig    `yaml:"storage"`
		Media      MediaConfig      `yaml:"media"`
		Cache      CacheConfig      `yaml:"cache"`
		Logger     LoggerConfig     `yaml:"logger"`
		Metrics    MetricsConfig    `yaml:"metrics"`
		Tracing    trace.Config     `yaml:"tracing"`
		SuperAdmin SuperAdminConfig `yaml:"super_admin"`
		I18n       I18nConfig       `yaml:"i18n"`
	}

	ServerConfig struct {
		Port            int           `yaml:"port"`
		Mode            string        `yaml:"mode"` // debug, release, test
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		CORS            CORSConfig    `yaml:"cors"`
	}

	CORSConfig struct {
		Enabled          bool          `yaml:"enabled"`
		AllowOrigins     []string      `yaml:"allow_origins"`
		AllowCredentials bool          `yaml:"allow_credentials"`
		MaxAge           time.Duration `yaml:"max_age"`
	}

	// I18nConfig represents the internationalization configuration
	I18nConfig struct {
		Path        string `yaml:"path"`         // Path to i18n translation files
		DefaultLang string `yaml:"default_lang"` // en or km
	}

	DatabaseConfig struct {
		Type     string `yaml:"type"`     // mysql, postgres, sqlite
		Host     string `yaml:"host"`     // localhost
		Port     int    `yaml:"port"`     // 3306 (for mysql), 5432 (for postgres)
		User     string `yaml:"user"`     // root (for mysql), postgres (for postgres)
		Password string `yaml:"password"` // password
		DBName   string `yaml:"dbname"`   // database name, or file path for sqlite
		SSLMode  string `yaml:"sslmode"`  // disable (for postgres)
	}

	// AuthConfig selects the authentication collaborator
	AuthConfig struct {
		Provider string       `yaml:"provider"` // local, gotrue
		GoTrue   GoTrueConfig `yaml:"gotrue"`
	}

	// GoTrueConfig holds the hosted auth endpoint. ServiceRoleKey never leaves the server.
	GoTrueConfig struct {
		URL            string        `yaml:"url"`
		AnonKey        string        `yaml:"anon_key"`
		ServiceRoleKey string        `yaml:"service_role_key"`
		Timeout        time.Duration `yaml:"timeout"`
	}

	JWTConfig struct {
		SecretKey string        `yaml:"secret_key"`
		Duration  time.Duration `yaml:"duration"`
	}

	// SessionConfig represents the session storage configuration
	SessionConfig struct {
		Type  string        `yaml:"type"` // memory, redis
		TTL   time.Duration `yaml:"ttl"`
		Redis RedisConfig   `yaml:"redis"`
	}

	// StorageConfig selects the object storage collaborator
	StorageConfig struct {
		Type     string                `yaml:"type"` // disk, supabase
		Bucket   string                `yaml:"bucket"`
		Disk     DiskStorageConfig     `yaml:"disk"`
		Supabase SupabaseStorageConfig `yaml:"supabase"`
	}

	DiskStorageConfig struct {
		Path      string `yaml:"path"`
		PublicURL string `yaml:"public_url"` // prefix used to build object URLs
	}

	SupabaseStorageConfig struct {
		URL            string        `yaml:"url"`
		ServiceRoleKey string        `yaml:"service_role_key"`
		Timeout        time.Duration `yaml:"timeout"`
	}

	MediaConfig struct {
		MaxSize      int64    `yaml:"max_size"` // bytes
		CacheControl string   `yaml:"cache_control"`
		Folders      []string `yaml:"folders"`
	}

	// CacheConfig configures the public menu cache. An empty redis addr keeps it in memory only.
	CacheConfig struct {
		Enabled   bool          `yaml:"enabled"`
		L1TTL     time.Duration `yaml:"l1_ttl"`
		L2TTL     time.Duration `yaml:"l2_ttl"`
		MaxL1Size int64         `yaml:"max_l1_size"`
		Redis     RedisConfig   `yaml:"redis"`
	}
)

func (c *APIServerConfig) setDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5234
	}
	c.Server.ShutdownTimeout = durationOr(c.Server.ShutdownTimeout, 10*time.Second)
	if c.Auth.Provider == "" {
		c.Auth.Provider = "local"
	}
	c.Auth.GoTrue.Timeout = durationOr(c.Auth.GoTrue.Timeout, 10*time.Second)
	c.JWT.Duration = durationOr(c.JWT.Duration, 24*time.Hour)
	if c.Session.Type == "" {
		c.Session.Type = "memory"
	}
	c.Session.TTL = durationOr(c.Session.TTL, c.JWT.Duration)
	if c.Session.Redis.Prefix == "" {
		c.Session.Redis.Prefix = "anachak:session:"
	}
	if c.Storage.Type == "" {
		c.Storage.Type = "disk"
	}
	if c.Storage.Bucket == "" {
		c.Storage.Bucket = "anachak"
	}
	if c.Storage.Disk.Path == "" {
		c.Storage.Disk.Path = "data/media"
	}
	if c.Storage.Disk.PublicURL == "" {
		c.Storage.Disk.PublicURL = "/media"
	}
	c.Storage.Supabase.Timeout = durationOr(c.Storage.Supabase.Timeout, 30*time.Second)
	if c.Media.MaxSize <= 0 {
		c.Media.MaxSize = 5 << 20
	}
	if c.Media.CacheControl == "" {
		c.Media.CacheControl = "3600"
	}
	c.Cache.L1TTL = durationOr(c.Cache.L1TTL, time.Minute)
	c.Cache.L2TTL = durationOr(c.Cache.L2TTL, 10*time.Minute)
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "anachak:menu:"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "anachak"
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = cnst.AppName
	}
	if c.I18n.Path == "" {
		c.I18n.Path = "configs/i18n"
	}
	if c.I18n.DefaultLang == "" {
		c.I18n.DefaultLang = "en"
	}
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	switch c.Type {
	case "postgres":
		return c.getPostgresDSN()
	case "mysql":
		return c.getMySQLDSN()
	case "sqlite":
		if c.DBName != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(c.DBName), 0755); err != nil {
				panic(fmt.Errorf("failed to create directory for sqlite database: %w", err))
			}
		}
		return c.DBName // For SQLite, DBName is the file path
	default:
		return ""
	}
}

// getPostgresDSN returns PostgreSQL connection string
func (c *DatabaseConfig) getPostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// getMySQLDSN returns MySQL connection string
func (c *DatabaseConfig) getMySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}
