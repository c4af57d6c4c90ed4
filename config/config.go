// Package config loads the application configuration from yaml files and
// environment variable overrides.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const defaultPath = "."

// Storage backend names accepted by Storage.Backend.
const (
	BackendMemory = "memory"
	BackendDisk   = "disk"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	Storage StorageConfig `json:"storage" yaml:"storage"`
	Session SessionConfig `json:"session" yaml:"session"`
	Auth    AuthConfig    `json:"auth" yaml:"auth"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// StorageConfig selects and parameterizes the durable store backend.
type StorageConfig struct {
	// Backend is "memory" or "disk".
	Backend string `json:"backend" yaml:"backend"`

	// Path is the directory holding one file per key (disk backend only).
	Path string `json:"path" yaml:"path"`
}

// SessionConfig tunes the session guard.
type SessionConfig struct {
	// TTL is the lifetime of a session from login or refresh.
	TTL time.Duration `json:"ttl" yaml:"ttl"`

	// PollInterval is the cadence of the guard's periodic consistency check.
	PollInterval time.Duration `json:"pollInterval" yaml:"pollInterval"`

	// SettleDelay pads registration before the follow-up read. The write
	// path is synchronous through a single adapter, so this defaults to 0
	// and exists only as an escape hatch for exotic backends.
	SettleDelay time.Duration `json:"settleDelay" yaml:"settleDelay"`
}

// AuthConfig holds the demo credential-check parameters.
type AuthConfig struct {
	AdminEmail    string `json:"adminEmail" yaml:"adminEmail"`
	AdminPassword string `json:"adminPassword" yaml:"adminPassword"`
	AdminCode     string `json:"adminCode" yaml:"adminCode"`
	DemoOTP       string `json:"demoOtp" yaml:"demoOtp"`
}

// LoadWithEnv loads .yaml files through koanf, then applies environment
// variable overrides (SESSION_TTL -> session.ttl and so on).
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	// Try to find and load the config file; a missing file is not an
	// error, env overrides and defaults still apply.
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		if err := koanfInstance.Load(file.Provider(candidate), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "read %s config failed", currEnv)
		}

		break
	}

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// SESSION_POLLINTERVAL -> session.pollinterval; matching
			// against struct fields below is case-insensitive.
			return strings.ReplaceAll(strings.ToLower(k), "_", "."), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Env.ServiceName == "" {
		cfg.Env.ServiceName = "finboard"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = BackendMemory
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "./data/store"
	}
	if cfg.Session.TTL <= 0 {
		cfg.Session.TTL = 24 * time.Hour
	}
	if cfg.Session.PollInterval <= 0 {
		cfg.Session.PollInterval = 5 * time.Second
	}
	if cfg.Auth.AdminEmail == "" {
		cfg.Auth.AdminEmail = "admin@finobytes.com"
	}
	if cfg.Auth.AdminPassword == "" {
		cfg.Auth.AdminPassword = "admin123"
	}
	if cfg.Auth.AdminCode == "" {
		cfg.Auth.AdminCode = "ADMIN2024"
	}
	if cfg.Auth.DemoOTP == "" {
		cfg.Auth.DemoOTP = "123456"
	}
}
