package config

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/userforms/internal/flagx"
	"github.com/dmitrijs2005/userforms/internal/timex"
	"github.com/goccy/go-json"
)

// JSONConfig is the file form of Config. Durations are timex.Duration, so
// "15m" and integer nanoseconds both work.
type JSONConfig struct {
	Address         string         `json:"address"`
	SecretKey       string         `json:"secret_key"`
	TokenTTL        timex.Duration `json:"token_ttl"`
	CORSOrigins     []string       `json:"cors_origins"`
	RequestTimeout  timex.Duration `json:"request_timeout"`
	ShutdownTimeout timex.Duration `json:"shutdown_timeout"`
	Backend         string         `json:"backend"`
	DSN             string         `json:"dsn"`
	RedisAddr       string         `json:"redis_addr"`
	S3Bucket        string         `json:"s3_bucket"`
	S3Endpoint      string         `json:"s3_endpoint"`
	S3Region        string         `json:"s3_region"`
	S3AccessKey     string         `json:"s3_access_key"`
	S3SecretKey     string         `json:"s3_secret_key"`
	KeyPrefix       string         `json:"key_prefix"`
	Hasher          string         `json:"hasher"`
	LogFormat       string         `json:"log_format"`
	LogLevel        string         `json:"log_level"`
}

// parseJSON overlays config with the file given by -c or -config. The DTO
// starts from the current values, so keys absent from the file are kept.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	c := toJSON(config)
	if err := json.Unmarshal(file, &c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	fromJSON(c, config)
	return nil
}

func toJSON(c *Config) JSONConfig {
	return JSONConfig{
		Address:         c.Address,
		SecretKey:       c.SecretKey,
		TokenTTL:        timex.Duration{Duration: c.TokenTTL},
		CORSOrigins:     c.CORSOrigins,
		RequestTimeout:  timex.Duration{Duration: c.RequestTimeout},
		ShutdownTimeout: timex.Duration{Duration: c.ShutdownTimeout},
		Backend:         c.Backend,
		DSN:             c.DSN,
		RedisAddr:       c.RedisAddr,
		S3Bucket:        c.S3Bucket,
		S3Endpoint:      c.S3Endpoint,
		S3Region:        c.S3Region,
		S3AccessKey:     c.S3AccessKey,
		S3SecretKey:     c.S3SecretKey,
		KeyPrefix:       c.KeyPrefix,
		Hasher:          c.Hasher,
		LogFormat:       c.LogFormat,
		LogLevel:        c.LogLevel,
	}
}

func fromJSON(j JSONConfig, c *Config) {
	c.Address = j.Address
	c.SecretKey = j.SecretKey
	c.TokenTTL = j.TokenTTL.Duration
	c.CORSOrigins = j.CORSOrigins
	c.RequestTimeout = j.RequestTimeout.Duration
	c.ShutdownTimeout = j.ShutdownTimeout.Duration
	c.Backend = j.Backend
	c.DSN = j.DSN
	c.RedisAddr = j.RedisAddr
	c.S3Bucket = j.S3Bucket
	c.S3Endpoint = j.S3Endpoint
	c.S3Region = j.S3Region
	c.S3AccessKey = j.S3AccessKey
	c.S3SecretKey = j.S3SecretKey
	c.KeyPrefix = j.KeyPrefix
	c.Hasher = j.Hasher
	c.LogFormat = j.LogFormat
	c.LogLevel = j.LogLevel
}
