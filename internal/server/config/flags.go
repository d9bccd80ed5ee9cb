package config

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/userforms/internal/flagx"
)

// parseFlags populates config from the short flags in args.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-k string   token HMAC secret
//	-t int      token validity, minutes
//	-o string   allowed CORS origins, comma separated
//	-s string   store backend: sqlite, postgres, redis, s3 or memory
//	-d string   SQLite path or Postgres DSN
//	-r string   Redis address
//	-b string   S3 bucket
//	-e string   S3 endpoint
//	-g string   S3 region
//	-u string   S3 access key
//	-p string   S3 secret key
//	-x string   key prefix (redis, s3)
//	-H string   password hasher: plain or argon2
//	-l string   log format: text, json or zap
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{
		"-a", "-k", "-t", "-o", "-s", "-d", "-r", "-b", "-e", "-g", "-u", "-p", "-x", "-H", "-l",
	})

	fs := flag.NewFlagSet("userforms-server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.Address, "a", config.Address, "address and port to run server")
	fs.StringVar(&config.SecretKey, "k", config.SecretKey, "token secret key")
	tokenTTL := fs.Int("t", int(config.TokenTTL.Minutes()), "token validity (in minutes)")
	origins := fs.String("o", strings.Join(config.CORSOrigins, ","), "allowed CORS origins, comma separated")

	fs.StringVar(&config.Backend, "s", config.Backend, "store backend")
	fs.StringVar(&config.DSN, "d", config.DSN, "SQLite path or Postgres DSN")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "Redis address")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Endpoint, "e", config.S3Endpoint, "S3 endpoint")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.KeyPrefix, "x", config.KeyPrefix, "key prefix")
	fs.StringVar(&config.Hasher, "H", config.Hasher, "password hasher")
	fs.StringVar(&config.LogFormat, "l", config.LogFormat, "log format")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	config.TokenTTL = time.Duration(*tokenTTL) * time.Minute
	config.CORSOrigins = splitOrigins(*origins)
	return nil
}

func splitOrigins(s string) []string {
	out := make([]string, 0)
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
