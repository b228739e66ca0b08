package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "SECUREFIN_"

var (
	lookupEnv = os.LookupEnv
	// readDotenv parses a .env file without touching the process environment.
	readDotenv = func(path string) (map[string]string, error) {
		return godotenv.Read(path)
	}
)

// parseEnv overlays SECUREFIN_* variables. Values come from the process
// environment and from a .env file (SECUREFIN_ENV_FILE, default ".env");
// the process environment wins. A missing .env file is not an error.
func parseEnv(c *Config) error {
	envFile, ok := lookupEnv(envPrefix + "ENV_FILE")
	if !ok || envFile == "" {
		envFile = ".env"
	}

	fileVars, err := readDotenv(envFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read %s: %w", envFile, err)
		}
		fileVars = map[string]string{}
	}

	get := func(name string) (string, bool) {
		if v, ok := lookupEnv(envPrefix + name); ok {
			return v, true
		}
		v, ok := fileVars[envPrefix+name]
		return v, ok
	}

	for name, dst := range map[string]*string{
		"DATA_DIR":          &c.DataDir,
		"DATABASE_DRIVER":   &c.DatabaseDriver,
		"DATABASE_DSN":      &c.DatabaseDSN,
		"KEY_FILE":          &c.KeyFile,
		"ACTIVITY_LOG_FILE": &c.ActivityLogFile,
		"HASH_ALGORITHM":    &c.HashAlgorithm,
		"LOG_LEVEL":         &c.LogLevel,
		"LOG_FORMAT":        &c.LogFormat,
		"S3_ACCESS_KEY":     &c.S3AccessKey,
		"S3_SECRET_KEY":     &c.S3SecretKey,
		"S3_BUCKET":         &c.S3Bucket,
		"S3_REGION":         &c.S3Region,
		"S3_BASE_ENDPOINT":  &c.S3BaseEndpoint,
	} {
		if v, ok := get(name); ok {
			*dst = v
		}
	}

	for name, dst := range map[string]*int{
		"BCRYPT_COST":       &c.BcryptCost,
		"PBKDF2_ITERATIONS": &c.PBKDF2Iterations,
	} {
		if v, ok := get(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, name, err)
			}
			*dst = n
		}
	}

	if v, ok := get("SESSION_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sSESSION_TIMEOUT: %w", envPrefix, err)
		}
		c.SessionTimeout = d
	}

	return nil
}
