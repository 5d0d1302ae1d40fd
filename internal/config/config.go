package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"ilanportali/pkg/store"
)

// ConfigPath is the default config file, resolved relative to the working directory.
const ConfigPath = "config.yaml"

const (
	TokenStoreFile   = "file"
	TokenStoreRedis  = "redis"
	TokenStoreMemory = "memory"
)

// FileConfig represents configuration loaded from YAML, .env and the environment.
type FileConfig struct {
	APIBaseURL     string `yaml:"apiBaseURL" env:"ILANPORTALI_API_BASE_URL"`
	AssetOrigin    string `yaml:"assetOrigin" env:"ILANPORTALI_ASSET_ORIGIN"`
	LogLevel       string `yaml:"logLevel" env:"ILANPORTALI_LOG_LEVEL"`
	TokenStore     string `yaml:"tokenStore" env:"ILANPORTALI_TOKEN_STORE"`
	TokenFile      string `yaml:"tokenFile" env:"ILANPORTALI_TOKEN_FILE"`
	RedisAddr      string `yaml:"redisAddr" env:"REDIS_ADDR"`
	RedisPassword  string `yaml:"redisPassword" env:"REDIS_PASSWORD"`
	RedisKeyPrefix string `yaml:"redisKeyPrefix" env:"ILANPORTALI_REDIS_KEY_PREFIX"`
	RequestTimeout string `yaml:"requestTimeout" env:"ILANPORTALI_REQUEST_TIMEOUT"`
	DefaultSort    string `yaml:"defaultSort" env:"ILANPORTALI_DEFAULT_SORT"`
}

// Defaults returns the built-in configuration.
func Defaults() FileConfig {
	return FileConfig{
		APIBaseURL:     "http://157.173.204.194:3001/api",
		AssetOrigin:    "http://157.173.204.194:3001",
		LogLevel:       "warn",
		TokenStore:     TokenStoreFile,
		RedisKeyPrefix: "ilanportali:",
		DefaultSort:    "newest",
	}
}

// Load reads config from path (defaults to config.yaml). The default file
// may be absent; an explicitly named one must exist. Values from a .env file
// in the working directory and from the environment override the file.
func Load(path string) (FileConfig, error) {
	cfg := Defaults()
	explicit := path != ""
	if !explicit {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	cfg.TokenStore = strings.ToLower(strings.TrimSpace(cfg.TokenStore))
	if cfg.TokenStore == TokenStoreFile && strings.TrimSpace(cfg.TokenFile) == "" {
		cfg.TokenFile = store.DefaultTokenFile()
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		return errors.New("config: apiBaseURL is required (set in config.yaml or ILANPORTALI_API_BASE_URL)")
	}
	switch cfg.TokenStore {
	case TokenStoreFile, TokenStoreMemory:
	case TokenStoreRedis:
		if strings.TrimSpace(cfg.RedisAddr) == "" {
			return errors.New("config: redisAddr is required when tokenStore is redis")
		}
	default:
		return fmt.Errorf("config: unknown tokenStore %q (file, redis or memory)", cfg.TokenStore)
	}
	if _, err := ParseRequestTimeout(cfg.RequestTimeout); err != nil {
		return err
	}
	return nil
}

// ParseRequestTimeout parses the optional timeout; empty means none.
func ParseRequestTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid requestTimeout duration: %w", err)
	}
	if dur < 0 {
		return 0, errors.New("config: requestTimeout must be >= 0")
	}
	return dur, nil
}
