package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"

	"github.com/km-arc/go-singleton/framework/logging"
)

// Config is the central typed configuration struct.
type Config struct {
	App   AppConfig
	Audit AuditConfig
	Log   logging.Config
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
	Port  string
}

type AuditConfig struct {
	Dir       string // directory audit files are confined to; "" lifts the confinement
	File      string // default audit file name
	MaxFiles  int    // cap on distinct audit files; 0 means no cap
	Heartbeat string // cron expression; empty disables heartbeat entries
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	return &Config{
		App: AppConfig{
			Name:  env("APP_NAME", "auditd"),
			Env:   env("APP_ENV", "local"),
			Debug: envBool("APP_DEBUG", false),
			Port:  env("APP_PORT", "8000"),
		},
		Audit: AuditConfig{
			Dir:       envOrEmpty("AUDIT_DIR", "storage/audit"),
			File:      env("AUDIT_FILE", "audit.log"),
			MaxFiles:  GetInt("AUDIT_MAX_FILES", 64),
			Heartbeat: env("AUDIT_HEARTBEAT", ""),
		},
		Log: logging.Config{
			Level:      env("LOG_LEVEL", "info"),
			Filename:   env("LOG_FILENAME", ""),
			MaxSize:    GetInt("LOG_MAX_SIZE", 100),
			MaxAge:     GetInt("LOG_MAX_AGE", 28),
			MaxBackups: GetInt("LOG_MAX_BACKUPS", 3),
		},
	}
}

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envOrEmpty is env, except that a variable set to "" is kept as "".
func envOrEmpty(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return fallback
	}
	return b
}
