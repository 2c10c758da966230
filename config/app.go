package config

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/rpupo63/blog-backend/errs"
)

// Supported DB_TYPE values
const (
	DBTypeMongo    = "mongo"
	DBTypePostgres = "postgres"
	DBTypeSQLite   = "sqlite"
)

// Config is the typed process configuration read from the environment.
type Config struct {
	DBType       string
	MongoURI     string
	MongoDBName  string
	DatabaseURL  string
	SQLitePath   string
	PostsDir     string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	AcceptedOrigins   []string
	AdminPasswordHash string
	JWTSecret         string
	ContactRatePerMin int

	ResendAPIKey       string
	ResendFromEmail    string
	ContactNotifyEmail string

	LogLevel  string
	LogFormat string
}

// Load builds a Config from an environment map (see New). It fails with a configuration
// error when the connection string for the selected store is missing or a value cannot be
// used, which callers must treat as fatal.
func Load(env map[string]string) (Config, error) {
	cfg := Config{
		DBType:       strings.ToLower(GetString(env, "DB_TYPE", DBTypeMongo)),
		MongoURI:     GetString(env, "MONGO_URI", ""),
		MongoDBName:  GetString(env, "MONGO_DB_NAME", "blogDB"),
		DatabaseURL:  GetString(env, "DATABASE_URL", ""),
		SQLitePath:   GetString(env, "SQLITE_PATH", "blog.db"),
		PostsDir:     GetString(env, "POSTS_DIR", "posts"),
		Port:         GetString(env, "PORT", "8080"),
		ReadTimeout:  time.Duration(GetInt(env, "READ_TIMEOUT_SECONDS", 15)) * time.Second,
		WriteTimeout: time.Duration(GetInt(env, "WRITE_TIMEOUT_SECONDS", 15)) * time.Second,
		IdleTimeout:  time.Duration(GetInt(env, "IDLE_TIMEOUT_SECONDS", 60)) * time.Second,

		AcceptedOrigins:   GetCSV(env, "ACCEPTED_ORIGINS", []string{"*"}),
		AdminPasswordHash: GetString(env, "ADMIN_PASSWORD_HASH", ""),
		JWTSecret:         GetString(env, "JWT_SECRET", ""),
		ContactRatePerMin: GetInt(env, "CONTACT_RATE_PER_MINUTE", 5),

		ResendAPIKey:       GetString(env, "RESEND_API_KEY", ""),
		ResendFromEmail:    GetString(env, "RESEND_FROM_EMAIL", ""),
		ContactNotifyEmail: GetString(env, "CONTACT_NOTIFY_EMAIL", ""),

		LogLevel:  strings.ToLower(GetString(env, "LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(GetString(env, "LOG_FORMAT", "console")),
	}

	switch cfg.DBType {
	case DBTypeMongo:
		if cfg.MongoURI == "" {
			return cfg, errs.NewEnvironmentVariableError("MONGO_URI")
		}
	case DBTypePostgres:
		if cfg.DatabaseURL == "" {
			return cfg, errs.NewEnvironmentVariableError("DATABASE_URL")
		}
	case DBTypeSQLite:
	default:
		return cfg, errs.NewInvalidConfigError("DB_TYPE", "expected one of mongo, postgres, sqlite")
	}

	if cfg.AdminPasswordHash != "" {
		if _, err := bcrypt.Cost([]byte(cfg.AdminPasswordHash)); err != nil {
			return cfg, errs.NewConfigError("ADMIN_PASSWORD_HASH", err)
		}
		if cfg.JWTSecret == "" {
			return cfg, errs.NewEnvironmentVariableError("JWT_SECRET")
		}
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return cfg, errs.NewConfigError("LOG_LEVEL", err)
	}
	if cfg.LogFormat != "console" && cfg.LogFormat != "json" {
		return cfg, errs.NewInvalidConfigError("LOG_FORMAT", "expected console or json")
	}
	if cfg.ContactRatePerMin <= 0 {
		return cfg, errs.NewInvalidConfigError("CONTACT_RATE_PER_MINUTE", "must be positive")
	}

	return cfg, nil
}

// AdminLoginEnabled reports whether an admin password hash is configured.
func (c Config) AdminLoginEnabled() bool {
	return c.AdminPasswordHash != ""
}

// NotifierEnabled reports whether contact notifications can be sent.
func (c Config) NotifierEnabled() bool {
	return c.ResendAPIKey != "" && c.ResendFromEmail != "" && c.ContactNotifyEmail != ""
}
