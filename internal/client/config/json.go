package config

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/userforms/internal/flagx"
	"github.com/dmitrijs2005/userforms/internal/timex"
	"github.com/goccy/go-json"
)

// JSONConfig is the on-disk form of Config. Pointer fields tell an absent
// key from an empty value.
type JSONConfig struct {
	Backend     *string         `json:"backend"`
	DSN         *string         `json:"dsn"`
	RedisAddr   *string         `json:"redis_addr"`
	S3Bucket    *string         `json:"s3_bucket"`
	S3Endpoint  *string         `json:"s3_endpoint"`
	S3Region    *string         `json:"s3_region"`
	S3AccessKey *string         `json:"s3_access_key"`
	S3SecretKey *string         `json:"s3_secret_key"`
	KeyPrefix   *string         `json:"key_prefix"`
	Hasher      *string         `json:"hasher"`
	LogFormat   *string         `json:"log_format"`
	LogLevel    *string         `json:"log_level"`
	OpTimeout   *timex.Duration `json:"op_timeout"`
}

// parseJSON overlays cfg with the file named by -c/-config in args. Without
// the flag it does nothing.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.Backend, jc.Backend)
	setString(&cfg.DSN, jc.DSN)
	setString(&cfg.RedisAddr, jc.RedisAddr)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Endpoint, jc.S3Endpoint)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)
	setString(&cfg.KeyPrefix, jc.KeyPrefix)
	setString(&cfg.Hasher, jc.Hasher)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.OpTimeout != nil {
		cfg.OpTimeout = jc.OpTimeout.Duration
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
