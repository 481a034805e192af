package config

import (
	"fmt"
	"strings"
)

// ValidationError collects every problem found in one configuration file
type ValidationError struct {
	File     string
	Problems []string
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("invalid configuration")
	if e.File != "" {
		sb.WriteString(" in ")
		sb.WriteString(e.File)
	}
	sb.WriteString(":\n")
	for _, p := range e.Problems {
		sb.WriteString("--> ")
		sb.WriteString(p)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Validate checks the API server configuration. It returns nil or a *ValidationError.
func (c *APIServerConfig) Validate(file string) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	switch c.Database.Type {
	case "postgres", "mysql", "sqlite":
	default:
		add("database.type %q is not one of postgres, mysql, sqlite", c.Database.Type)
	}
	if c.Database.DBName == "" {
		add("database.dbname is required")
	}

	if c.JWT.SecretKey == "" {
		add("jwt.secret_key is required")
	}

	switch c.Auth.Provider {
	case "local":
	case "gotrue":
		if c.Auth.GoTrue.URL == "" {
			add("auth.gotrue.url is required for the gotrue provider")
		}
		if c.Auth.GoTrue.AnonKey == "" {
			add("auth.gotrue.anon_key is required for the gotrue provider")
		}
	default:
		add("auth.provider %q is not one of local, gotrue", c.Auth.Provider)
	}
	if c.Auth.GoTrue.ServiceRoleKey != "" && c.Auth.GoTrue.URL == "" {
		add("auth.gotrue.service_role_key is set without auth.gotrue.url")
	}

	switch c.Session.Type {
	case "memory":
	case "redis":
		if c.Session.Redis.Addr == "" {
			add("session.redis.addr is required for the redis session store")
		}
	default:
		add("session.type %q is not one of memory, redis", c.Session.Type)
	}

	switch c.Storage.Type {
	case "disk":
		if c.Storage.Disk.Path == "" {
			add("storage.disk.path is required for disk storage")
		}
	case "supabase":
		if c.Storage.Supabase.URL == "" {
			add("storage.supabase.url is required for supabase storage")
		}
		if c.Storage.Supabase.ServiceRoleKey == "" {
			add("storage.supabase.service_role_key is required for supabase storage")
		}
	default:
		add("storage.type %q is not one of disk, supabase", c.Storage.Type)
	}

	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{File: file, Problems: problems}
}
