package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AuditPolicy decides what an audit-write failure means for the caller.
type AuditPolicy string

const (
	// AuditBestEffort logs the failure and reports the mutation as successful.
	AuditBestEffort AuditPolicy = "best_effort"
	// AuditRequired reports the mutation as failed; it is still not rolled back.
	AuditRequired AuditPolicy = "required"
)

// CacheBackend selects where read-cache pages live.
type CacheBackend string

const (
	// CacheMemory keeps pages per process; invalidations stay local.
	CacheMemory CacheBackend = "memory"
	// CacheRedis shares pages and invalidations across instances.
	CacheRedis CacheBackend = "redis"
)

type Config struct {
	Env      string
	HTTPAddr string
	Cache    CacheBackend
	Postgres PostgresConfig
	Redis    RedisConfig
	Session  SessionConfig
	Blob     BlobConfig
	Policy   PolicyConfig
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN builds the connection string shared by GORM and sqlx.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type SessionConfig struct {
	Secret string
	Issuer string
	// Secure marks the session cookie Secure; on by default in production.
	Secure bool
}

type BlobConfig struct {
	Root      string
	PublicURL string
}

type PolicyConfig struct {
	RateLimitFailOpen    bool
	Audit                AuditPolicy
	SubmissionRateLimit  int
	SubmissionRateWindow time.Duration
	LoginRateLimit       int
	LoginRateWindow      time.Duration
}

// New returns a viper instance with defaults and environment binding.
// Keys are dotted (postgres.host) and map to env vars like PG_HOST.
func New() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app_env", "development")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("cache_backend", string(CacheMemory))

	v.SetDefault("pg_host", "localhost")
	v.SetDefault("pg_port", "5432")
	v.SetDefault("pg_user", "postgres")
	v.SetDefault("pg_password", "")
	v.SetDefault("pg_db", "ace")
	v.SetDefault("pg_sslmode", "disable")

	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", "6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	v.SetDefault("session_secret", "")
	v.SetDefault("session_issuer", "ace-identity")

	v.SetDefault("blob_root", "./data/blobs")
	v.SetDefault("blob_public_url", "/media")

	v.SetDefault("rate_limit_fail_open", true)
	v.SetDefault("audit_policy", string(AuditBestEffort))
	v.SetDefault("submission_rate_limit", 10)
	v.SetDefault("submission_rate_window", time.Hour)
	v.SetDefault("login_rate_limit", 5)
	v.SetDefault("login_rate_window", time.Minute)
	return v
}

// Load reads the configuration out of v.
func Load(v *viper.Viper) (Config, error) {
	env := v.GetString("app_env")
	cfg := Config{
		Env:      env,
		HTTPAddr: v.GetString("http_addr"),
		Cache:    CacheBackend(v.GetString("cache_backend")),
		Postgres: PostgresConfig{
			Host:     v.GetString("pg_host"),
			Port:     v.GetString("pg_port"),
			User:     v.GetString("pg_user"),
			Password: v.GetString("pg_password"),
			Name:     v.GetString("pg_db"),
			SSLMode:  v.GetString("pg_sslmode"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis_host"),
			Port:     v.GetString("redis_port"),
			Password: v.GetString("redis_password"),
			DB:       v.GetInt("redis_db"),
		},
		Session: SessionConfig{
			Secret: v.GetString("session_secret"),
			Issuer: v.GetString("session_issuer"),
			Secure: env == "production",
		},
		Blob: BlobConfig{
			Root:      v.GetString("blob_root"),
			PublicURL: strings.TrimRight(v.GetString("blob_public_url"), "/"),
		},
		Policy: PolicyConfig{
			RateLimitFailOpen:    v.GetBool("rate_limit_fail_open"),
			Audit:                AuditPolicy(v.GetString("audit_policy")),
			SubmissionRateLimit:  v.GetInt("submission_rate_limit"),
			SubmissionRateWindow: v.GetDuration("submission_rate_window"),
			LoginRateLimit:       v.GetInt("login_rate_limit"),
			LoginRateWindow:      v.GetDuration("login_rate_window"),
		},
	}

	if cfg.Session.Secret == "" {
		return Config{}, fmt.Errorf("SESSION_SECRET is required")
	}
	switch cfg.Policy.Audit {
	case AuditBestEffort, AuditRequired:
	default:
		return Config{}, fmt.Errorf("AUDIT_POLICY must be %q or %q, got %q", AuditBestEffort, AuditRequired, cfg.Policy.Audit)
	}
	switch cfg.Cache {
	case CacheMemory, CacheRedis:
	default:
		return Config{}, fmt.Errorf("CACHE_BACKEND must be %q or %q, got %q", CacheMemory, CacheRedis, cfg.Cache)
	}
	if cfg.Policy.SubmissionRateLimit <= 0 || cfg.Policy.LoginRateLimit <= 0 {
		return Config{}, fmt.Errorf("rate limits must be positive")
	}
	return cfg, nil
}
