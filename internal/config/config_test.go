package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadYAMLMissingFileReturnsEmptyConfig(t *testing.T) {
	cfg, err := loadYAML(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Bus.RedisAddr)
}

func TestLoadYAMLParsesKnownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matchd.yaml")
	contents := `
bus:
  redis_addr: "redis.internal:6379"
game:
  default_hero: "astra"
  hero_pool: ["astra", "vex", "koru"]
  game_port_low: 9000
  game_port_high: 9100
admin:
  addr: ":9090"
logging:
  level: "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := loadYAML(path)
	require.NoError(t, err)
	assert.Equal(t, "redis.internal:6379", cfg.Bus.RedisAddr)
	assert.Equal(t, "astra", cfg.Game.DefaultHero)
	assert.Equal(t, []string{"astra", "vex", "koru"}, cfg.Game.HeroPool)
	assert.Equal(t, uint16(9000), cfg.Game.GamePortLow)
	assert.Equal(t, ":9090", cfg.Admin.Addr)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestApplyEnvAndDefaultsFillsMissingValues(t *testing.T) {
	cfg := &Config{}
	env := map[string]string{
		"MATCHD_DB_DSN":        "user:pass@tcp(localhost:3306)/matchd",
		"MATCHD_JWT_SECRET":    "shh",
		"MATCHD_ADMIN_USER":    "root",
		"MATCHD_ADMIN_PASSWORD": "hunter2",
	}
	err := applyEnvAndDefaults(cfg, func(k string) string { return env[k] })
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:6379", cfg.Bus.RedisAddr)
	assert.Equal(t, "user:pass@tcp(localhost:3306)/matchd", cfg.Database.DSN)
	assert.Equal(t, "shh", cfg.Admin.JWTSecret)
	assert.Equal(t, "root", cfg.Admin.User)
	assert.Equal(t, "hunter2", cfg.Admin.Password)
	assert.Equal(t, ":8090", cfg.Admin.Addr)
	assert.Equal(t, "default_hero", cfg.Game.DefaultHero)
	assert.Equal(t, uint16(7777), cfg.Game.GamePortLow)
	assert.Equal(t, uint16(65500), cfg.Game.GamePortHigh)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestApplyEnvAndDefaultsRequiresDSN(t *testing.T) {
	cfg := &Config{}
	err := applyEnvAndDefaults(cfg, func(string) string { return "" })
	assert.Error(t, err)
}

func TestApplyEnvAndDefaultsRequiresJWTSecretAfterDSN(t *testing.T) {
	cfg := &Config{}
	env := map[string]string{"MATCHD_DB_DSN": "dsn"}
	err := applyEnvAndDefaults(cfg, func(k string) string { return env[k] })
	assert.Error(t, err)
}

func TestApplyEnvAndDefaultsRequiresAdminCredsAfterSecret(t *testing.T) {
	cfg := &Config{}
	env := map[string]string{"MATCHD_DB_DSN": "dsn", "MATCHD_JWT_SECRET": "shh"}
	err := applyEnvAndDefaults(cfg, func(k string) string { return env[k] })
	assert.Error(t, err)
}
