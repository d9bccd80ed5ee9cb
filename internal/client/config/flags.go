package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/userforms/internal/flagx"
)

var cliFlags = []string{"-s", "-d", "-r", "-b", "-e", "-g", "-u", "-p", "-x", "-H", "-l", "-T"}

// parseFlags overlays cfg with the short flags in args. Unknown arguments
// are filtered out first with flagx.FilterArgs.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("userforms", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Backend, "s", cfg.Backend, "store backend (sqlite|postgres|redis|s3|memory)")
	fs.StringVar(&cfg.DSN, "d", cfg.DSN, "SQLite path or Postgres DSN")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "Redis address")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket")
	fs.StringVar(&cfg.S3Endpoint, "e", cfg.S3Endpoint, "S3 endpoint")
	fs.StringVar(&cfg.S3Region, "g", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3AccessKey, "u", cfg.S3AccessKey, "S3 access key")
	fs.StringVar(&cfg.S3SecretKey, "p", cfg.S3SecretKey, "S3 secret key")
	fs.StringVar(&cfg.KeyPrefix, "x", cfg.KeyPrefix, "key prefix (redis, s3)")
	fs.StringVar(&cfg.Hasher, "H", cfg.Hasher, "password hasher (plain|argon2)")
	fs.StringVar(&cfg.LogFormat, "l", cfg.LogFormat, "log format (text|json|zap)")
	timeout := fs.Int("T", int(cfg.OpTimeout.Seconds()), "store timeout per command (in seconds)")

	if err := fs.Parse(flagx.FilterArgs(args, cliFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	cfg.OpTimeout = time.Duration(*timeout) * time.Second
	return nil
}
