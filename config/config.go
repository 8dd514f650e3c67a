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

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	// Database – either set DatabaseURL directly, or the individual fields.
	DBDriver    string
	DatabaseURL string
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string
	DBSSLMode   string

	// JWT signing secret (required in production).
	JWTSecret string

	// Server
	Debug      bool
	Port       string
	TLSDomains []string

	// Usernames allowed to manage races and results.
	AdminUsers []string

	// Scoring policy
	AbsenteePenalty       bool
	AbsenteePenaltyOffset int

	LeaderboardCacheTTL time.Duration
}

// Load reads configuration from a .env file (if present) and then from
// environment variables. Environment variables always win.
func Load() *Config {
	cfg, err := FromViper(newViper())
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	// Defaults
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_USER", "f1picks")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "f1picks")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("PORT", ":9000")
	v.SetDefault("TLS_DOMAINS", "")
	v.SetDefault("DEBUG", false)
	v.SetDefault("ABSENTEE_PENALTY", false)
	v.SetDefault("ABSENTEE_PENALTY_OFFSET", 5)
	v.SetDefault("LEADERBOARD_CACHE_TTL", 30*time.Second)

	cfg := &Config{
		DBDriver:              strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseURL:           v.GetString("DATABASE_URL"),
		DBUser:                v.GetString("DB_USER"),
		DBPass:                v.GetString("DB_PASS"),
		DBHost:                v.GetString("DB_HOST"),
		DBPort:                v.GetString("DB_PORT"),
		DBName:                v.GetString("DB_NAME"),
		DBSSLMode:             v.GetString("DB_SSLMODE"),
		JWTSecret:             v.GetString("JWT_SECRET"),
		Debug:                 v.GetBool("DEBUG"),
		Port:                  v.GetString("PORT"),
		TLSDomains:            splitTrimmed(v.GetString("TLS_DOMAINS")),
		AdminUsers:            splitTrimmed(v.GetString("ADMIN_USERS")),
		AbsenteePenalty:       v.GetBool("ABSENTEE_PENALTY"),
		AbsenteePenaltyOffset: v.GetInt("ABSENTEE_PENALTY_OFFSET"),
		LeaderboardCacheTTL:   v.GetDuration("LEADERBOARD_CACHE_TTL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DSN returns the connection string for the configured driver.
// DATABASE_URL takes precedence over individual fields.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	switch c.DBDriver {
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
	case DriverSQLite:
		return fmt.Sprintf("file:%s.db?cache=shared", c.DBName)
	default:
		return fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=%s",
			c.DBUser,
			c.DBPass,
			c.DBHost,
			c.DBPort,
			c.DBName,
			c.DBSSLMode,
		)
	}
}

// JWTKey returns the JWT signing key as a byte slice.
func (c *Config) JWTKey() []byte {
	return []byte(c.JWTSecret)
}

// IsAdmin reports whether username is listed in ADMIN_USERS.
func (c *Config) IsAdmin(username string) bool {
	for _, a := range c.AdminUsers {
		if strings.EqualFold(a, username) {
			return true
		}
	}
	return false
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverMySQL:
		if c.DatabaseURL == "" && c.DBPass == "" {
			return errors.New("config: DATABASE_URL or DB_PASS must be set")
		}
	case DriverSQLite:
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET must be set")
	}
	if c.AbsenteePenaltyOffset < 0 {
		return errors.New("config: ABSENTEE_PENALTY_OFFSET must not be negative")
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
