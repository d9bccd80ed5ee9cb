// Package config handles configuration for the HTTP server,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"time"

	"github.com/dmitrijs2005/userforms/internal/kv"
	"github.com/dmitrijs2005/userforms/internal/logging"
	"github.com/dmitrijs2005/userforms/internal/password"
)

// Config holds runtime settings for the userforms server.
//
// Fields:
//   - Address: bind address of the HTTP listener.
//   - SecretKey: HMAC secret for login tokens (HS256). Do not use the default in prod.
//   - TokenTTL: lifetime of a login token.
//   - CORSOrigins: origins a browser front end may call from.
//   - RequestTimeout / ShutdownTimeout: per-request deadline and grace period on stop.
//   - Backend ... KeyPrefix: key-value store settings, as for the CLI.
type Config struct {
	Address         string
	SecretKey       string
	TokenTTL        time.Duration
	CORSOrigins     []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	Backend     string
	DSN         string
	RedisAddr   string
	S3Bucket    string
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	KeyPrefix   string

	Hasher    string
	LogFormat string
	LogLevel  string
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey is insecure and must be overridden outside development.
func (c *Config) LoadDefaults() {
	c.Address = ":8080"
	c.SecretKey = "secretKey"
	c.TokenTTL = 15 * time.Minute
	c.CORSOrigins = []string{"http://localhost:4200"}
	c.RequestTimeout = 30 * time.Second
	c.ShutdownTimeout = 5 * time.Second

	c.Backend = kv.BackendSQLite
	c.DSN = "userforms.db"
	c.RedisAddr = "127.0.0.1:6379"
	c.S3Bucket = "userforms"
	c.S3Region = "us-east-1"
	c.KeyPrefix = "userforms/"

	c.Hasher = password.SchemePlain
	c.LogFormat = logging.FormatJSON
	c.LogLevel = "info"
}

func (c *Config) StoreOptions() kv.Options {
	return kv.Options{
		Backend:     c.Backend,
		DSN:         c.DSN,
		RedisAddr:   c.RedisAddr,
		Prefix:      c.KeyPrefix,
		S3Bucket:    c.S3Bucket,
		S3Region:    c.S3Region,
		S3Endpoint:  c.S3Endpoint,
		S3AccessKey: c.S3AccessKey,
		S3SecretKey: c.S3SecretKey,
	}
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
