// Package config loads application settings from a .env file and environment variables.
// Environment variables always take precedence over .env file values.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	// PostgreSQL – either set DatabaseURL directly, or the individual fields.
	DatabaseURL string
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string
	DBSSLMode   string

	// JWT signing secret for admin tokens (required).
	JWTSecret string

	// Tournament director shared secret. Empty disables director operations.
	TDPin string
	// Civil timezone of tee times.
	TournamentTZ string
	// Require a td signature before a round locks.
	FinalizeRequireTD bool

	// Scorecard dispatch.
	ScorecardRecipients []string
	MailFrom            string
	RendererURL         string
	RendererTimeout     time.Duration
	RabbitMQURL         string
	NotifyQueue         string

	// Redis response cache; empty address disables it.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
	ParCacheTTL   time.Duration

	// OTLP/gRPC trace collector; empty disables span export.
	OTELEndpoint string

	// PIN lookup limiter, per client IP.
	PinRatePerMin int
	PinBurst      int

	// Server
	Debug      bool
	Port       string
	TLSDomains []string
}

// BackupConfig holds configuration used by cmd/backup.
type BackupConfig struct {
	DatabaseURL string
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string
	DBSSLMode   string

	// MySQL archive target; empty skips the archive copy.
	MySQLDSN string
	// Directory for the xlsx snapshot; empty skips the workbook.
	XLSXDir string
}

func setDBDefaults(v *viper.Viper) {
	v.SetDefault("DB_USER", "juniortour")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "juniortour")
	v.SetDefault("DB_SSLMODE", "disable")
}

// Load reads configuration from a .env file (if present) and then from
// environment variables. Environment variables always win.
func Load() *Config {
	cfg := read(newViper())
	if err := cfg.validate(); err != nil {
		log.Fatal("config: ", err)
	}
	return cfg
}

func read(v *viper.Viper) *Config {
	setDBDefaults(v)
	v.SetDefault("TOURNAMENT_TZ", "Europe/Berlin")
	v.SetDefault("FINALIZE_REQUIRE_TD", false)
	v.SetDefault("MAIL_FROM", "no-reply@juniortour.golf")
	v.SetDefault("RENDERER_TIMEOUT", "20s")
	v.SetDefault("NOTIFY_QUEUE", "scorecard.finalized")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "10s")
	v.SetDefault("PAR_CACHE_TTL", "5m")
	v.SetDefault("PIN_RATE_PER_MIN", 10)
	v.SetDefault("PIN_BURST", 5)
	v.SetDefault("PORT", ":9000")
	v.SetDefault("TLS_DOMAINS", "juniortour.golf,www.juniortour.golf")
	v.SetDefault("DEBUG", false)

	return &Config{
		DatabaseURL:         v.GetString("DATABASE_URL"),
		DBUser:              v.GetString("DB_USER"),
		DBPass:              v.GetString("DB_PASS"),
		DBHost:              v.GetString("DB_HOST"),
		DBPort:              v.GetString("DB_PORT"),
		DBName:              v.GetString("DB_NAME"),
		DBSSLMode:           v.GetString("DB_SSLMODE"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		TDPin:               strings.TrimSpace(v.GetString("TD_PIN")),
		TournamentTZ:        v.GetString("TOURNAMENT_TZ"),
		FinalizeRequireTD:   v.GetBool("FINALIZE_REQUIRE_TD"),
		ScorecardRecipients: splitTrimmed(v.GetString("SCORECARD_RECIPIENTS")),
		MailFrom:            v.GetString("MAIL_FROM"),
		RendererURL:         v.GetString("RENDERER_URL"),
		RendererTimeout:     v.GetDuration("RENDERER_TIMEOUT"),
		RabbitMQURL:         v.GetString("RABBITMQ_URL"),
		NotifyQueue:         v.GetString("NOTIFY_QUEUE"),
		RedisAddr:           v.GetString("REDIS_ADDR"),
		RedisPassword:       v.GetString("REDIS_PASSWORD"),
		RedisDB:             v.GetInt("REDIS_DB"),
		CacheTTL:            v.GetDuration("CACHE_TTL"),
		ParCacheTTL:         v.GetDuration("PAR_CACHE_TTL"),
		OTELEndpoint:        strings.TrimSpace(v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT")),
		PinRatePerMin:       v.GetInt("PIN_RATE_PER_MIN"),
		PinBurst:            v.GetInt("PIN_BURST"),
		Debug:               v.GetBool("DEBUG"),
		Port:                v.GetString("PORT"),
		TLSDomains:          splitTrimmed(v.GetString("TLS_DOMAINS")),
	}
}

// LoadBackup reads the subset of config used by cmd/backup.
func LoadBackup() *BackupConfig {
	v := newViper()
	setDBDefaults(v)

	cfg := &BackupConfig{
		DatabaseURL: v.GetString("DATABASE_URL"),
		DBUser:      v.GetString("DB_USER"),
		DBPass:      v.GetString("DB_PASS"),
		DBHost:      v.GetString("DB_HOST"),
		DBPort:      v.GetString("DB_PORT"),
		DBName:      v.GetString("DB_NAME"),
		DBSSLMode:   v.GetString("DB_SSLMODE"),
		MySQLDSN:    v.GetString("MYSQL_DSN"),
		XLSXDir:     v.GetString("BACKUP_XLSX_DIR"),
	}

	if cfg.DatabaseURL == "" && cfg.DBPass == "" {
		log.Fatal("config: DATABASE_URL or DB_PASS must be set")
	}
	return cfg
}

// PostgresDSN returns the full PostgreSQL connection string.
// DATABASE_URL takes precedence over individual fields.
func (c *Config) PostgresDSN() string {
	return postgresDSN(c.DatabaseURL, c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// PostgresDSN returns the full PostgreSQL connection string.
func (c *BackupConfig) PostgresDSN() string {
	return postgresDSN(c.DatabaseURL, c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

func postgresDSN(url, user, pass, host, port, name, sslmode string) string {
	if url != "" {
		return url
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, pass, host, port, name, sslmode)
}

// JWTKey returns the JWT signing key as a byte slice.
func (c *Config) JWTKey() []byte {
	return []byte(c.JWTSecret)
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" && c.DBPass == "" {
		return errors.New("DATABASE_URL or DB_PASS must be set")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if _, err := time.LoadLocation(c.TournamentTZ); err != nil {
		return fmt.Errorf("TOURNAMENT_TZ: %w", err)
	}
	if c.PinRatePerMin <= 0 || c.PinBurst <= 0 {
		return errors.New("PIN_RATE_PER_MIN and PIN_BURST must be positive")
	}
	return nil
}

func newViper() *viper.Viper {
	// Silently load .env – OK if the file doesn't exist (production uses real env vars).
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}

	v := viper.New()
	v.AutomaticEnv()
	return v
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
