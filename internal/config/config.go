// Package config loads settings from a TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"

	"github.com/peterkuimelis/shardwars/internal/game"
	"github.com/peterkuimelis/shardwars/internal/log"
)

// EnvPrefix prefixes every environment override, e.g. SHARDWARS_RULES_KL_CAP.
const EnvPrefix = "SHARDWARS_"

// Config represents the application configuration.
type Config struct {
	Rules  RulesConfig  `toml:"rules" envPrefix:"RULES_"`
	Data   DataConfig   `toml:"data" envPrefix:"DATA_"`
	Server ServerConfig `toml:"server" envPrefix:"SERVER_"`
}

// RulesConfig holds the numeric match rules.
type RulesConfig struct {
	StartingEssence  int `toml:"starting_essence" env:"STARTING_ESSENCE"`
	BaseKL           int `toml:"base_kl" env:"BASE_KL"`
	KLCap            int `toml:"kl_cap" env:"KL_CAP"`
	GodThreshold     int `toml:"god_threshold" env:"GOD_THRESHOLD"`
	MaxGodCharges    int `toml:"max_god_charges" env:"MAX_GOD_CHARGES"`
	GodChargeMinTurn int `toml:"god_charge_min_turn" env:"GOD_CHARGE_MIN_TURN"`
	OpeningHand      int `toml:"opening_hand" env:"OPENING_HAND"`
	LogCapacity      int `toml:"log_capacity" env:"LOG_CAPACITY"`
}

// DataConfig points at the data files. Empty paths use built-in data.
type DataConfig struct {
	CardSheet  string `toml:"card_sheet" env:"CARD_SHEET"`   // tab-separated card sheet
	Decks      string `toml:"decks" env:"DECKS"`             // YAML deck lists
	Tutorial   string `toml:"tutorial" env:"TUTORIAL"`       // tutorial script
	ProfileDB  string `toml:"profile_db" env:"PROFILE_DB"`   // SQLite profile store; empty keeps profiles in memory
	WatchCards bool   `toml:"watch_cards" env:"WATCH_CARDS"` // reload the card sheet on change
}

// ServerConfig holds network settings.
type ServerConfig struct {
	WebPort       int     `toml:"web_port" env:"WEB_PORT"`
	TCPPort       int     `toml:"tcp_port" env:"TCP_PORT"`
	IntentsPerSec float64 `toml:"intents_per_sec" env:"INTENTS_PER_SEC"`
	IntentBurst   int     `toml:"intent_burst" env:"INTENT_BURST"`
	OpponentAuto  bool    `toml:"opponent_auto" env:"OPPONENT_AUTO"` // the computer plays player 2 in local games
}

// Default returns the default configuration.
func Default() *Config {
	r := game.DefaultRules()
	return &Config{
		Rules: RulesConfig{
			StartingEssence:  r.StartingEssence,
			BaseKL:           r.BaseKL,
			KLCap:            r.KLCap,
			GodThreshold:     r.GodThreshold,
			MaxGodCharges:    r.MaxGodCharges,
			GodChargeMinTurn: r.GodChargeMinTurn,
			OpeningHand:      r.OpeningHand,
			LogCapacity:      log.DefaultCapacity,
		},
		Data: DataConfig{
			CardSheet:  "data/cards.tsv",
			Decks:      "data/decks.yaml",
			WatchCards: true,
		},
		Server: ServerConfig{
			WebPort:       8080,
			TCPPort:       7777,
			IntentsPerSec: 10,
			IntentBurst:   20,
			OpponentAuto:  true,
		},
	}
}

// Load starts from Default, overlays the TOML file at path when it exists,
// then applies SHARDWARS_* environment variables. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the rule values.
func (c *Config) Validate() error {
	r := c.Rules
	switch {
	case r.StartingEssence <= 0:
		return fmt.Errorf("starting essence must be positive: %d", r.StartingEssence)
	case r.BaseKL < 0:
		return fmt.Errorf("base KL cannot be negative: %d", r.BaseKL)
	case r.KLCap < r.BaseKL:
		return fmt.Errorf("KL cap %d is below base KL %d", r.KLCap, r.BaseKL)
	case r.MaxGodCharges < 0:
		return fmt.Errorf("max god charges cannot be negative: %d", r.MaxGodCharges)
	case r.OpeningHand < 0:
		return fmt.Errorf("opening hand cannot be negative: %d", r.OpeningHand)
	case r.LogCapacity <= 0:
		return fmt.Errorf("log capacity must be positive: %d", r.LogCapacity)
	case c.Server.IntentsPerSec <= 0:
		return fmt.Errorf("intents per second must be positive: %v", c.Server.IntentsPerSec)
	}
	return nil
}

// GameRules converts the rules section for the engine.
func (c *Config) GameRules() game.Rules {
	r := c.Rules
	return game.Rules{
		StartingEssence:  r.StartingEssence,
		BaseKL:           r.BaseKL,
		KLCap:            r.KLCap,
		GodThreshold:     r.GodThreshold,
		MaxGodCharges:    r.MaxGodCharges,
		GodChargeMinTurn: r.GodChargeMinTurn,
		OpeningHand:      r.OpeningHand,
		LogCapacity:      r.LogCapacity,
	}
}
