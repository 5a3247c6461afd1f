package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/shardwars/internal/game"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, game.DefaultRules(), cfg.GameRules())
	assert.Equal(t, 120, cfg.Rules.LogCapacity)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[rules]
starting_essence = 30
kl_cap = 20

[server]
web_port = 9000
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Rules.StartingEssence)
	assert.Equal(t, 20, cfg.Rules.KLCap)
	assert.Equal(t, 3, cfg.Rules.BaseKL, "unset keys keep defaults")
	assert.Equal(t, 9000, cfg.Server.WebPort)
	assert.Equal(t, 7777, cfg.Server.TCPPort)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[rules]\nbase_kl = 4\n"), 0o644))
	t.Setenv("SHARDWARS_RULES_BASE_KL", "6")
	t.Setenv("SHARDWARS_DATA_PROFILE_DB", "/tmp/profile.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Rules.BaseKL)
	assert.Equal(t, "/tmp/profile.db", cfg.Data.ProfileDB)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[rules]\nkl_cap = 1\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("[rules\n"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)

	t.Setenv("SHARDWARS_RULES_OPENING_HAND", "lots")
	_, err = Load("")
	assert.Error(t, err)
}
