// Package config loads matchd's runtime configuration: a YAML file for the
// tunables that rarely change between deploys, with environment variables
// (loaded from an optional .env) overriding the secrets a YAML file
// shouldn't carry — the same split the pack's Ludo King server (YAML
// tunables) and telegram webapp (.env secrets) each use on their own.
package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is matchd's full runtime configuration.
type Config struct {
	Bus struct {
		RedisAddr string `yaml:"redis_addr"`
	} `yaml:"bus"`

	Database struct {
		DSN string `yaml:"-"` // always from MATCHD_DB_DSN, never the YAML file
	} `yaml:"-"`

	Game struct {
		DefaultHero  string   `yaml:"default_hero"`
		HeroPool     []string `yaml:"hero_pool"`
		BinaryPath   string   `yaml:"launcher_binary_path"`
		GamePortLow  uint16   `yaml:"game_port_low"`
		GamePortHigh uint16   `yaml:"game_port_high"`
	} `yaml:"game"`

	Admin struct {
		Addr      string `yaml:"addr"`
		JWTSecret string `yaml:"-"` // from MATCHD_JWT_SECRET
		User      string `yaml:"-"` // from MATCHD_ADMIN_USER
		Password  string `yaml:"-"` // from MATCHD_ADMIN_PASSWORD
	} `yaml:"admin"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Load parses command-line flags, loads an optional .env, then a YAML
// config file, and fills in secrets from the environment. -config picks the
// YAML file; -redis-addr, when given, takes precedence over the file's
// bus address (handy for one-off overrides without editing the file).
func Load() (*Config, error) {
	var path string
	var redisAddr string
	flag.StringVar(&path, "config", "configs/matchd.yaml", "path to the YAML config file")
	flag.StringVar(&redisAddr, "redis-addr", "", "override the configured Redis address")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := loadYAML(path)
	if err != nil {
		return nil, err
	}

	if redisAddr != "" {
		cfg.Bus.RedisAddr = redisAddr
	}
	if err := applyEnvAndDefaults(cfg, os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvAndDefaults fills in secrets from env (via the injected lookup, so
// tests don't need to touch process-global environment) and default values
// for everything the YAML file left zero.
func applyEnvAndDefaults(cfg *Config, getenv func(string) string) error {
	if cfg.Bus.RedisAddr == "" {
		cfg.Bus.RedisAddr = "127.0.0.1:6379"
	}

	cfg.Database.DSN = getenv("MATCHD_DB_DSN")
	if cfg.Database.DSN == "" {
		return fmt.Errorf("config: MATCHD_DB_DSN is not set")
	}

	cfg.Admin.JWTSecret = getenv("MATCHD_JWT_SECRET")
	if cfg.Admin.JWTSecret == "" {
		return fmt.Errorf("config: MATCHD_JWT_SECRET is not set")
	}

	cfg.Admin.User = getenv("MATCHD_ADMIN_USER")
	if cfg.Admin.User == "" {
		return fmt.Errorf("config: MATCHD_ADMIN_USER is not set")
	}
	cfg.Admin.Password = getenv("MATCHD_ADMIN_PASSWORD")
	if cfg.Admin.Password == "" {
		return fmt.Errorf("config: MATCHD_ADMIN_PASSWORD is not set")
	}

	if cfg.Admin.Addr == "" {
		cfg.Admin.Addr = ":8090"
	}
	if cfg.Game.DefaultHero == "" {
		cfg.Game.DefaultHero = "default_hero"
	}
	if cfg.Game.GamePortLow == 0 {
		cfg.Game.GamePortLow = 7777
	}
	if cfg.Game.GamePortHigh == 0 {
		cfg.Game.GamePortHigh = 65500
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	return nil
}

func loadYAML(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return &cfg, nil
}
