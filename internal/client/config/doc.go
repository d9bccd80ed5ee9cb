// Package config loads runtime configuration for the userforms CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-s string   store backend: sqlite, postgres, redis, s3 or memory
//	-d string   SQLite file path or Postgres DSN
//	-r string   Redis address
//	-b string   S3 bucket
//	-e string   S3 endpoint (MinIO and other S3-compatible servers)
//	-g string   S3 region
//	-u string   S3 access key
//	-p string   S3 secret key
//	-x string   key prefix for the Redis and S3 backends
//	-H string   password hasher: plain or argon2
//	-l string   log format: text, json or zap
//	-T int      store timeout per command (seconds)
//
// # JSON schema
//
// op_timeout is a timex.Duration, so it can be "5s" or integer nanoseconds:
//
//	{
//	  "backend": "redis",
//	  "redis_addr": "127.0.0.1:6379",
//	  "key_prefix": "userforms:",
//	  "hasher": "argon2",
//	  "log_format": "json",
//	  "log_level": "debug",
//	  "op_timeout": "5s"
//	}
//
// Keys missing from the file keep their default.
package config
