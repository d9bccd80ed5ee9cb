package config

import (
	"time"

	"github.com/dmitrijs2005/userforms/internal/kv"
	"github.com/dmitrijs2005/userforms/internal/logging"
	"github.com/dmitrijs2005/userforms/internal/password"
)

// Config holds runtime settings for the userforms CLI.
//
// OpTimeout bounds every store round trip a single REPL command makes.
type Config struct {
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
	OpTimeout time.Duration
}

// LoadDefaults populates c with defaults: a local SQLite file, plaintext
// passwords and text logs.
func (c *Config) LoadDefaults() {
	c.Backend = kv.BackendSQLite
	c.DSN = "userforms.db"
	c.RedisAddr = "127.0.0.1:6379"
	c.S3Bucket = "userforms"
	c.S3Region = "us-east-1"
	c.KeyPrefix = "userforms/"
	c.Hasher = password.SchemePlain
	c.LogFormat = logging.FormatText
	c.LogLevel = "info"
	c.OpTimeout = 5 * time.Second
}

// StoreOptions returns the settings kv.Open needs.
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

// LoadConfig applies defaults, then the JSON file named by -c/-config, then
// command-line flags. Later sources win.
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
