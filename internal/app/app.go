// Package app assembles the pieces every binary needs from a loaded config:
// the card store, deck lists, tutorial script, campaign data and profiles.
package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/peterkuimelis/shardwars/internal/campaign"
	"github.com/peterkuimelis/shardwars/internal/catalog"
	"github.com/peterkuimelis/shardwars/internal/config"
	"github.com/peterkuimelis/shardwars/internal/game"
	"github.com/peterkuimelis/shardwars/internal/profile"
	"github.com/peterkuimelis/shardwars/internal/session"
	"github.com/peterkuimelis/shardwars/internal/tutorial"
	"github.com/peterkuimelis/shardwars/internal/web"
)

// Env is the runtime environment built from a config.
type Env struct {
	Config  *config.Config
	Cards   *catalog.Store
	Decks   []web.DeckInfo
	Session session.Options

	closers []io.Closer
}

// Open builds an Env. A missing deck file is not an error; a broken one is.
// Close releases the profile database.
func Open(cfg *config.Config) (*Env, error) {
	e := &Env{Config: cfg}
	e.Session = session.Options{
		Rules:     cfg.GameRules(),
		Campaign:  campaign.Default(),
		Autopilot: cfg.Server.OpponentAuto,
	}

	if cfg.Data.CardSheet != "" {
		e.Cards = catalog.NewStore(cfg.Data.CardSheet)
		e.Session.Cards = e.Cards
		slog.Info("card catalog loaded", "path", cfg.Data.CardSheet, "cards", e.Cards.Get().Len())
	}

	if cfg.Data.Decks != "" {
		decks, infos, err := web.LoadDecks(cfg.Data.Decks, e.lookup())
		switch {
		case errors.Is(err, os.ErrNotExist):
			slog.Debug("no deck file", "path", cfg.Data.Decks)
		case err != nil:
			return nil, err
		default:
			e.Session.Decks = decks
			e.Decks = infos
		}
	}

	e.Session.Script = tutorial.DefaultScript()
	if cfg.Data.Tutorial != "" {
		script, err := tutorial.LoadScript(cfg.Data.Tutorial)
		if err != nil {
			return nil, err
		}
		e.Session.Script = script
	}

	var store profile.Store
	if cfg.Data.ProfileDB != "" {
		db, err := profile.OpenSQLite(cfg.Data.ProfileDB)
		if err != nil {
			return nil, fmt.Errorf("open profile database: %w", err)
		}
		e.closers = append(e.closers, db)
		store = db
	}
	e.Session.Profiles = profile.NewManager(store)

	return e, nil
}

func (e *Env) lookup() game.LookupFunc {
	if e.Cards == nil {
		return game.LookupSeed
	}
	return game.ChainLookup(func(id string) *game.Card { return e.Cards.Get().Lookup(id) }, game.LookupSeed)
}

// DeckName returns the name of the 1-based deck number n.
func (e *Env) DeckName(n int) (string, error) {
	if n < 1 || n > len(e.Decks) {
		return "", fmt.Errorf("deck %d not found (have %d decks)", n, len(e.Decks))
	}
	return e.Decks[n-1].Name, nil
}

// Close releases resources opened by Open.
func (e *Env) Close() error {
	var errs []error
	for _, c := range e.closers {
		errs = append(errs, c.Close())
	}
	e.closers = nil
	return errors.Join(errs...)
}
