/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/suparena/dynascript/datastore/ddb"
	"github.com/suparena/dynascript/logging"
	"github.com/suparena/dynascript/storagemodels"
)

// Config holds the settings of a dynascript session.
type Config struct {
	Region   string `yaml:"region"`
	Profile  string `yaml:"profile"`
	Endpoint string `yaml:"endpoint"`
	ReadOnly bool   `yaml:"read_only"`

	// Static credentials are only read from the environment.
	AccessKey string `yaml:"-"`
	SecretKey string `yaml:"-"`

	Query   QueryConfig    `yaml:"query"`
	Scripts ScriptsConfig  `yaml:"scripts"`
	Log     logging.Config `yaml:"log"`
}

// QueryConfig tunes the query engine.
type QueryConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
	PageSize     int32         `yaml:"page_size"`
	MaxItems     int           `yaml:"max_items"`
	Workers      int           `yaml:"workers"`
}

// ScriptsConfig says where scripts live and which ones run at startup.
type ScriptsConfig struct {
	Dirs      []string      `yaml:"dirs"`
	Load      []string      `yaml:"load"`
	ExecLimit time.Duration `yaml:"exec_limit"`

	// Capabilities of the dynascript/os module. Both are off by default.
	AllowShellCommands bool `yaml:"allow_shell_commands"`
	AllowEnv           bool `yaml:"allow_env"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	defaults := storagemodels.DefaultQueryOptions()
	return Config{
		Query: QueryConfig{
			Timeout:      defaults.Timeout,
			MaxRetries:   defaults.MaxRetries,
			RetryBackoff: defaults.RetryBackoff,
			Workers:      defaults.Workers,
		},
		Scripts: ScriptsConfig{
			Dirs:      []string{"."},
			ExecLimit: 5 * time.Second,
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path or a missing file yields the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config file: %w", err)
			}
			cfg.resolveDirs(filepath.Dir(path))
		}
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadEnvFile loads variables from a .env file into the process
// environment. Variables already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides settings from environment variables read via getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	setString := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	setString(&c.AccessKey, "AWS_ACCESS_KEY")
	setString(&c.SecretKey, "AWS_SECRET_KEY")
	setString(&c.Region, "AWS_REGION")
	setString(&c.Profile, "DYNASCRIPT_PROFILE")
	setString(&c.Endpoint, "DYNASCRIPT_ENDPOINT")
	setString(&c.Log.File, "DYNASCRIPT_LOG_FILE")

	if v := getenv("DYNASCRIPT_SCRIPT_DIRS"); v != "" {
		c.Scripts.Dirs = filepath.SplitList(v)
	}

	for key, dst := range map[string]*bool{
		"DYNASCRIPT_READ_ONLY":   &c.ReadOnly,
		"DYNASCRIPT_DEBUG":       &c.Log.Debug,
		"DYNASCRIPT_ALLOW_SHELL": &c.Scripts.AllowShellCommands,
		"DYNASCRIPT_ALLOW_ENV":   &c.Scripts.AllowEnv,
	} {
		v := getenv(key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = b
	}

	if v := getenv("DYNASCRIPT_QUERY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid DYNASCRIPT_QUERY_TIMEOUT %q: %w", v, err)
		}
		c.Query.Timeout = d
	}
	return nil
}

// Validate reports settings the engine cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Query.Timeout <= 0:
		return fmt.Errorf("query.timeout must be positive, got %v", c.Query.Timeout)
	case c.Query.MaxRetries < 0:
		return fmt.Errorf("query.max_retries must not be negative, got %d", c.Query.MaxRetries)
	case c.Query.Workers < 1:
		return fmt.Errorf("query.workers must be at least 1, got %d", c.Query.Workers)
	case c.Query.PageSize < 0 || c.Query.MaxItems < 0:
		return fmt.Errorf("query.page_size and query.max_items must not be negative")
	case c.Scripts.ExecLimit < 0:
		return fmt.Errorf("scripts.exec_limit must not be negative, got %v", c.Scripts.ExecLimit)
	}
	return nil
}

// QueryOptions converts the query settings into engine options.
func (c *Config) QueryOptions() []storagemodels.QueryOption {
	return []storagemodels.QueryOption{
		storagemodels.WithTimeout(c.Query.Timeout),
		storagemodels.WithMaxRetries(c.Query.MaxRetries),
		storagemodels.WithRetryBackoff(c.Query.RetryBackoff),
		storagemodels.WithPageSize(c.Query.PageSize),
		storagemodels.WithMaxItems(c.Query.MaxItems),
		storagemodels.WithWorkers(c.Query.Workers),
		storagemodels.WithReadOnly(c.ReadOnly),
	}
}

// ClientConfig returns the settings for the DynamoDB client.
func (c *Config) ClientConfig() ddb.ClientConfig {
	return ddb.ClientConfig{
		Region:    c.Region,
		Profile:   c.Profile,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		Endpoint:  c.Endpoint,
	}
}

// resolveDirs makes relative script directories relative to base.
func (c *Config) resolveDirs(base string) {
	for i, dir := range c.Scripts.Dirs {
		if dir == "" || filepath.IsAbs(dir) || strings.HasPrefix(dir, "~") {
			continue
		}
		c.Scripts.Dirs[i] = filepath.Join(base, dir)
	}
}
