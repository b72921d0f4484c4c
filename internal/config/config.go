// Package config handles loading and validating the bucketwatch.yaml
// configuration. The service runs with zero config when only env vars are
// set; the file adds the optional background watch schedule.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bucketwatch/bucketwatch/internal/inspect"
)

// Config is the top-level bucketwatch.yaml configuration.
type Config struct {
	Listen string       `yaml:"listen"` // HTTP listen address, host:port
	S3     S3Config     `yaml:"s3"`
	Watch  *WatchConfig `yaml:"watch,omitempty"`
}

// S3Config parameterizes the storage gateway. Credentials are normally
// supplied via S3_KEY / S3_SECRET env vars rather than the file.
type S3Config struct {
	Endpoint    string        `yaml:"endpoint"` // host:port or URL; scheme selects SSL
	AccessKey   string        `yaml:"access_key"`
	SecretKey   string        `yaml:"secret_key"`
	UseSSL      bool          `yaml:"use_ssl"`
	ListTimeout time.Duration `yaml:"list_timeout"` // bound on one complete listing, e.g. 30s
}

// WatchConfig declares the optional background probe loop.
type WatchConfig struct {
	Schedule string  `yaml:"schedule"` // cron expression, e.g. "*/5 * * * *"
	Probes   []Probe `yaml:"probes"`
}

// Probe is one bucket to check on every watch activation.
type Probe struct {
	Bucket string `yaml:"bucket"`
	MaxAge string `yaml:"max_age,omitempty"` // compact duration; empty = freshness report only
}

// DefaultConfig returns the env-only defaults: AWS S3 over TLS, local
// listener, no background watch.
func DefaultConfig() *Config {
	return &Config{
		Listen: "127.0.0.1:8080",
		S3: S3Config{
			Endpoint: "s3.amazonaws.com",
			UseSSL:   true,
		},
	}
}

// Load parses a bucketwatch.yaml file, applies env overrides, and validates.
// If path is empty, env overrides apply on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		if cfg.Listen == "" {
			cfg.Listen = "127.0.0.1:8080"
		}
		if cfg.S3.Endpoint == "" {
			cfg.S3.Endpoint = "s3.amazonaws.com"
			cfg.S3.UseSSL = true
		}
	}

	cfg.applyEnv()
	cfg.normalizeEndpoint()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolvePath finds the config file path.
// Priority: BUCKETWATCH_CONFIG env var > ./bucketwatch.yaml > "" (no file).
func ResolvePath() string {
	if p := os.Getenv("BUCKETWATCH_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat("bucketwatch.yaml"); err == nil {
		return "bucketwatch.yaml"
	}
	return ""
}

// applyEnv overlays environment variables on the file values. The S3_*
// names match what the original deployment tooling already exports.
func (c *Config) applyEnv() {
	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		c.S3.Endpoint = v
	}
	if v := os.Getenv("S3_KEY"); v != "" {
		c.S3.AccessKey = v
	}
	if v := os.Getenv("S3_SECRET"); v != "" {
		c.S3.SecretKey = v
	}
	if v := os.Getenv("S3_USE_SSL"); v != "" {
		c.S3.UseSSL = v != "false" && v != "0"
	}
	if v := os.Getenv("BUCKETWATCH_LISTEN_ADDR"); v != "" {
		c.Listen = v
	} else if port := os.Getenv("PORT"); port != "" {
		c.Listen = ":" + port
	}
}

// normalizeEndpoint strips a scheme from the endpoint if one was given,
// letting the scheme decide SSL. The minio client wants a bare host:port.
func (c *Config) normalizeEndpoint() {
	switch {
	case strings.HasPrefix(c.S3.Endpoint, "https://"):
		c.S3.Endpoint = strings.TrimPrefix(c.S3.Endpoint, "https://")
		c.S3.UseSSL = true
	case strings.HasPrefix(c.S3.Endpoint, "http://"):
		c.S3.Endpoint = strings.TrimPrefix(c.S3.Endpoint, "http://")
		c.S3.UseSSL = false
	}
	c.S3.Endpoint = strings.TrimSuffix(c.S3.Endpoint, "/")
}

// validate checks the watch block: every probe needs a bucket, and max_age
// values must parse so a typo fails at startup instead of on every
// activation. The cron schedule itself is validated by the watcher.
func (c *Config) validate() error {
	if c.S3.Endpoint == "" {
		return fmt.Errorf("s3 endpoint is required")
	}
	if c.Watch == nil {
		return nil
	}
	if c.Watch.Schedule == "" {
		return fmt.Errorf("watch: schedule is required")
	}
	if len(c.Watch.Probes) == 0 {
		return fmt.Errorf("watch: at least one probe is required")
	}
	for i, p := range c.Watch.Probes {
		if p.Bucket == "" {
			return fmt.Errorf("watch: probe %d: bucket is required", i)
		}
		if p.MaxAge != "" {
			if _, err := inspect.ParseDuration(p.MaxAge); err != nil {
				return fmt.Errorf("watch: probe %q: %w", p.Bucket, err)
			}
		}
	}
	return nil
}
