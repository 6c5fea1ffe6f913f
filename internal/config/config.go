// Package config loads settings for the medops client and the stub backend.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jwalitptl/medops-mobile/internal/service/assignment"
	"github.com/jwalitptl/medops-mobile/internal/session"
	"github.com/jwalitptl/medops-mobile/pkg/logger"
)

// EnvPrefix namespaces client environment variables, e.g. MEDOPS_BASE_URL.
const EnvPrefix = "MEDOPS"

type Config struct {
	BaseURL    string           `mapstructure:"base_url"`
	Session    SessionConfig    `mapstructure:"session"`
	Log        LogConfig        `mapstructure:"log"`
	Assignment AssignmentConfig `mapstructure:"assignment"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

type SessionConfig struct {
	Backend  string `mapstructure:"backend"`
	Dir      string `mapstructure:"dir"`
	Key      string `mapstructure:"key"`
	RedisURL string `mapstructure:"redis_url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type AssignmentConfig struct {
	PrepopulateStaff    bool `mapstructure:"prepopulate_staff"`
	PrepopulatePatients bool `mapstructure:"prepopulate_patients"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
	Textfile  string `mapstructure:"textfile"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"base-url":        "base_url",
	"session-backend": "session.backend",
	"session-dir":     "session.dir",
	"redis-url":       "session.redis_url",
	"log-level":       "log.level",
	"metrics-file":    "metrics.textfile",
}

func defaultSessionDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".medops"
	}
	return filepath.Join(home, ".medops")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "http://localhost:5000")
	v.SetDefault("session.backend", session.BackendFile)
	v.SetDefault("session.dir", defaultSessionDir())
	v.SetDefault("session.key", session.DefaultKey)
	v.SetDefault("session.redis_url", "redis://localhost:6379/0")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)
	v.SetDefault("assignment.prepopulate_staff", true)
	v.SetDefault("assignment.prepopulate_patients", false)
	v.SetDefault("metrics.namespace", "medops_client")
	v.SetDefault("metrics.textfile", "")
}

// RegisterFlags adds the overridable settings to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("base-url", "http://localhost:5000", "backend base URL")
	fs.String("session-backend", session.BackendFile, "session storage: file, redis or memory")
	fs.String("session-dir", defaultSessionDir(), "directory for the file session backend")
	fs.String("redis-url", "redis://localhost:6379/0", "redis URL for the redis session backend")
	fs.String("log-level", "info", "log level")
	fs.String("metrics-file", "", "write client metrics to this file on exit")
	fs.String("config", "", "explicit config file")
}

// Load merges defaults, medops.yml, MEDOPS_* environment variables and the
// flags registered by RegisterFlags, in increasing precedence. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("medops")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".medops"))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
		if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) SessionConfig() session.Config {
	return session.Config{
		Backend:  c.Session.Backend,
		Dir:      c.Session.Dir,
		Key:      c.Session.Key,
		RedisURL: c.Session.RedisURL,
	}
}

func (c *Config) AssignmentPolicy() assignment.Policy {
	policy := func(prepopulate bool) assignment.SelectionPolicy {
		if prepopulate {
			return assignment.SelectionFromCurrent
		}
		return assignment.SelectionEmpty
	}
	return assignment.Policy{
		Staff:    policy(c.Assignment.PrepopulateStaff),
		Patients: policy(c.Assignment.PrepopulatePatients),
	}
}

func (c *Config) LoggerConfig() *logger.Config {
	return &logger.Config{
		Level:  logger.ParseLevel(c.Log.Level),
		Output: os.Stderr,
		Pretty: c.Log.Pretty,
	}
}
