package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/securefin/internal/flagx"
	"github.com/dmitrijs2005/securefin/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "5m" and integer nanoseconds.
//
// Only fields present in the file override the current Config.
type JsonConfig struct {
	DataDir          *string         `json:"data_dir"`
	DatabaseDriver   *string         `json:"database_driver"`
	DatabaseDSN      *string         `json:"database_dsn"`
	KeyFile          *string         `json:"key_file"`
	ActivityLogFile  *string         `json:"activity_log_file"`
	SessionTimeout   *timex.Duration `json:"session_timeout"`
	HashAlgorithm    *string         `json:"hash_algorithm"`
	BcryptCost       *int            `json:"bcrypt_cost"`
	PBKDF2Iterations *int            `json:"pbkdf2_iterations"`
	LogLevel         *string         `json:"log_level"`
	LogFormat        *string         `json:"log_format"`
	S3AccessKey      *string         `json:"s3_access_key"`
	S3SecretKey      *string         `json:"s3_secret_key"`
	S3Bucket         *string         `json:"s3_bucket"`
	S3Region         *string         `json:"s3_region"`
	S3BaseEndpoint   *string         `json:"s3_base_endpoint"`
}

// parseJson loads the file named by -c/-config, if any, into c.
func parseJson(c *Config, args []string) error {
	path := flagx.ConfigPath(args)

	// nothing to load
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	jc := &JsonConfig{}
	if err := json.Unmarshal(data, jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&c.DataDir, jc.DataDir)
	setString(&c.DatabaseDriver, jc.DatabaseDriver)
	setString(&c.DatabaseDSN, jc.DatabaseDSN)
	setString(&c.KeyFile, jc.KeyFile)
	setString(&c.ActivityLogFile, jc.ActivityLogFile)
	setString(&c.HashAlgorithm, jc.HashAlgorithm)
	setString(&c.LogLevel, jc.LogLevel)
	setString(&c.LogFormat, jc.LogFormat)
	setString(&c.S3AccessKey, jc.S3AccessKey)
	setString(&c.S3SecretKey, jc.S3SecretKey)
	setString(&c.S3Bucket, jc.S3Bucket)
	setString(&c.S3Region, jc.S3Region)
	setString(&c.S3BaseEndpoint, jc.S3BaseEndpoint)

	if jc.SessionTimeout != nil {
		c.SessionTimeout = jc.SessionTimeout.Duration
	}
	if jc.BcryptCost != nil {
		c.BcryptCost = *jc.BcryptCost
	}
	if jc.PBKDF2Iterations != nil {
		c.PBKDF2Iterations = *jc.PBKDF2Iterations
	}

	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
