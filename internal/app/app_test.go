package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/shardwars/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Data.CardSheet = filepath.Join("..", "..", "data", "cards.tsv")
	cfg.Data.Decks = filepath.Join("..", "..", "data", "decks.yaml")
	cfg.Data.ProfileDB = filepath.Join(t.TempDir(), "profile.db")
	return cfg
}

func TestOpen(t *testing.T) {
	env, err := Open(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { env.Close() })

	assert.Positive(t, env.Cards.Get().Len())
	assert.NotEmpty(t, env.Decks)
	assert.Len(t, env.Session.Decks, len(env.Decks))
	assert.NotNil(t, env.Session.Script)
	assert.NotNil(t, env.Session.Campaign)
	assert.True(t, env.Session.Autopilot)

	name, err := env.DeckName(1)
	require.NoError(t, err)
	assert.Equal(t, env.Decks[0].Name, name)
	_, err = env.DeckName(len(env.Decks) + 1)
	assert.Error(t, err)

	p := env.Session.Profiles.LoadOrCreate(t.Context())
	assert.NotEmpty(t, p.PlayerID)
	assert.NoError(t, env.Close())
}

func TestOpenWithoutDecks(t *testing.T) {
	cfg := testConfig(t)
	cfg.Data.Decks = filepath.Join(t.TempDir(), "missing.yaml")
	cfg.Data.ProfileDB = ""

	env, err := Open(cfg)
	require.NoError(t, err)
	assert.Empty(t, env.Decks)
	assert.NoError(t, env.Close())
}

func TestOpenBadDecks(t *testing.T) {
	cfg := testConfig(t)
	cfg.Data.Decks = filepath.Join(t.TempDir(), "decks.yaml")
	require.NoError(t, os.WriteFile(cfg.Data.Decks, []byte("decks:\n  - name: X\n    cards:\n      - {id: NOPE}\n"), 0o644))

	_, err := Open(cfg)
	assert.ErrorContains(t, err, "NOPE")
}

func TestOpenBadTutorial(t *testing.T) {
	cfg := testConfig(t)
	cfg.Data.Tutorial = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := Open(cfg)
	assert.Error(t, err)
}
