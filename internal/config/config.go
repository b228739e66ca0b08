// Package config handles configuration for SecureFin, including defaults,
// environment variables (optionally from a .env file), a JSON overlay and
// command-line flags, applied in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/securefin/internal/dbx"
	"github.com/dmitrijs2005/securefin/internal/hasher"
)

// Config holds runtime settings.
//
// Fields:
//   - DataDir: directory for the default database, key file and activity log.
//   - DatabaseDriver / DatabaseDSN: "sqlite" (file path or DSN) or "pgx" (PostgreSQL DSN).
//   - KeyFile: location of the 32-byte encryption key.
//   - ActivityLogFile: append-only activity log.
//   - SessionTimeout: idle period after which a login expires.
//   - HashAlgorithm: "bcrypt", "argon2id" or "pbkdf2"; BcryptCost and
//     PBKDF2Iterations tune the respective strategies.
//   - LogLevel / LogFormat: diagnostic logging ("debug".."error", "text"|"json").
//   - S3*: optional S3-compatible bucket for the file vault. Leaving
//     S3Bucket or S3BaseEndpoint empty disables the vault.
type Config struct {
	DataDir          string
	DatabaseDriver   string
	DatabaseDSN      string
	KeyFile          string
	ActivityLogFile  string
	SessionTimeout   time.Duration
	HashAlgorithm    string
	BcryptCost       int
	PBKDF2Iterations int
	LogLevel         string
	LogFormat        string
	S3AccessKey      string
	S3SecretKey      string
	S3Bucket         string
	S3Region         string
	S3BaseEndpoint   string
}

// LoadDefaults populates Config with defaults suitable for a local run.
// File locations are left empty and derived from DataDir by Resolve.
func (c *Config) LoadDefaults() {
	c.DataDir = "data"
	c.DatabaseDriver = dbx.DriverSQLite
	c.SessionTimeout = 300 * time.Second
	c.HashAlgorithm = hasher.AlgBcrypt
	c.BcryptCost = hasher.DefaultBcryptCost
	c.PBKDF2Iterations = hasher.MinPBKDF2Iterations
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.S3Region = "us-east-1"
}

// Resolve fills file locations that were not set explicitly and checks the
// values that cannot be repaired later.
func (c *Config) Resolve() error {
	if c.KeyFile == "" {
		c.KeyFile = filepath.Join(c.DataDir, "secret.key")
	}
	if c.ActivityLogFile == "" {
		c.ActivityLogFile = filepath.Join(c.DataDir, "activity.log")
	}

	switch c.DatabaseDriver {
	case dbx.DriverSQLite:
		if c.DatabaseDSN == "" {
			c.DatabaseDSN = filepath.Join(c.DataDir, "users.db")
		}
	case dbx.DriverPostgres:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("database dsn is required for driver %q", c.DatabaseDriver)
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.DatabaseDriver)
	}

	if c.SessionTimeout <= 0 {
		return fmt.Errorf("session timeout must be positive, got %s", c.SessionTimeout)
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment, an optional JSON file and finally command-line flags.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}
