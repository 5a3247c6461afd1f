package tutorial

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/peterkuimelis/shardwars/internal/game"
)

//go:embed script.yaml
var defaultScript []byte

// Script is a tutorial definition: player names, scripted decks and steps.
// Decks are dealt in order, without shuffling.
type Script struct {
	Name  string      `yaml:"name"`
	Names ScriptNames `yaml:"names"`
	Decks ScriptDecks `yaml:"decks"`
	Steps []Step      `yaml:"steps"`
}

type ScriptNames struct {
	You      string `yaml:"you"`
	Opponent string `yaml:"opponent"`
}

type ScriptDecks struct {
	You      []string `yaml:"you"`
	Opponent []string `yaml:"opponent"`
}

// ParseScript decodes and validates a script.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse tutorial YAML: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadScript reads a script from disk.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tutorial script: %w", err)
	}
	return ParseScript(data)
}

// DefaultScript returns the built-in tutorial.
func DefaultScript() *Script {
	s, err := ParseScript(defaultScript)
	if err != nil {
		panic(fmt.Sprintf("embedded tutorial script: %v", err))
	}
	return s
}

// Validate checks triggers, player labels and condition names.
func (s *Script) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("tutorial %q has no steps", s.Name)
	}
	seen := make(map[string]bool, len(s.Steps))
	for i, step := range s.Steps {
		if !step.Trigger.valid() {
			return fmt.Errorf("step %d (%s): unknown trigger %q", i, step.ID, step.Trigger)
		}
		if step.Player != "" && step.Player != PlayerYou && step.Player != PlayerOpponent {
			return fmt.Errorf("step %d (%s): unknown player %q", i, step.ID, step.Player)
		}
		if step.Condition != "" {
			if _, ok := lookupCondition(step.Condition); !ok {
				return fmt.Errorf("step %d (%s): unknown condition %q", i, step.ID, step.Condition)
			}
		}
		if step.ID != "" {
			if seen[step.ID] {
				return fmt.Errorf("step %d: duplicate id %q", i, step.ID)
			}
			seen[step.ID] = true
		}
	}
	return nil
}

// Decklists resolves the scripted decks to card templates.
func (s *Script) Decklists(lookup game.LookupFunc) ([2][]*game.Card, error) {
	var decks [2][]*game.Card
	for i, ids := range [2][]string{s.Decks.You, s.Decks.Opponent} {
		entries := make([]game.CardEntry, len(ids))
		for j, id := range ids {
			entries[j] = game.CardEntry{ID: id, Count: 1}
		}
		cards, err := game.ExpandDeck(entries, lookup)
		if err != nil {
			return decks, fmt.Errorf("tutorial deck %s: %w", PlayerLabel(i), err)
		}
		decks[i] = cards
	}
	return decks, nil
}

// NewEngine starts an engine over this script's steps.
func (s *Script) NewEngine() *Engine {
	return NewEngine(s.Steps)
}
