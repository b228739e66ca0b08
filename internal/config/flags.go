package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/securefin/internal/flagx"
)

// parseFlags overlays command-line flags.
//
// Supported flags:
//
//	-data string        data directory
//	-driver string      database driver ("sqlite" or "pgx")
//	-d string           database DSN
//	-k string           key file
//	-l string           activity log file
//	-t duration         session idle timeout (e.g. "5m")
//	-hash string        password hash algorithm
//	-log-level string   diagnostic log level
//	-log-format string  "text" or "json"
//	-u string           S3 access key
//	-p string           S3 secret key
//	-b string           S3 bucket
//	-g string           S3 region
//	-e string           S3 base endpoint (e.g. "http://127.0.0.1:9000")
//
// Unknown arguments are filtered out with flagx.FilterArgs first.
func parseFlags(c *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{
		"-data", "-driver", "-d", "-k", "-l", "-t", "-hash", "-log-level", "-log-format",
		"-u", "-p", "-b", "-g", "-e",
	})

	fs := flag.NewFlagSet("securefin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&c.DataDir, "data", c.DataDir, "data directory")
	fs.StringVar(&c.DatabaseDriver, "driver", c.DatabaseDriver, "database driver (sqlite|pgx)")
	fs.StringVar(&c.DatabaseDSN, "d", c.DatabaseDSN, "database DSN")
	fs.StringVar(&c.KeyFile, "k", c.KeyFile, "encryption key file")
	fs.StringVar(&c.ActivityLogFile, "l", c.ActivityLogFile, "activity log file")
	fs.DurationVar(&c.SessionTimeout, "t", c.SessionTimeout, "session idle timeout")
	fs.StringVar(&c.HashAlgorithm, "hash", c.HashAlgorithm, "password hash algorithm (bcrypt|argon2id|pbkdf2)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format (text|json)")

	fs.StringVar(&c.S3AccessKey, "u", c.S3AccessKey, "S3 access key")
	fs.StringVar(&c.S3SecretKey, "p", c.S3SecretKey, "S3 secret key")
	fs.StringVar(&c.S3Bucket, "b", c.S3Bucket, "S3 bucket")
	fs.StringVar(&c.S3Region, "g", c.S3Region, "S3 region")
	fs.StringVar(&c.S3BaseEndpoint, "e", c.S3BaseEndpoint, "S3 base endpoint")

	return fs.Parse(args)
}
