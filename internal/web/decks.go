package web

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/peterkuimelis/shardwars/internal/game"
)

// DeckInfo is the JSON representation of a deck for the /api/decks endpoint.
type DeckInfo struct {
	Number int      `json:"number"`
	Name   string   `json:"name"`
	Size   int      `json:"size"`
	Cards  []string `json:"cards"` // unique card names, in list order
}

// LoadDecks reads a deck list file and resolves it with lookup. It returns
// the decks for a session and their descriptions for the UI, in file order.
func LoadDecks(path string, lookup game.LookupFunc) (map[string][]*game.Card, []DeckInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read decks file: %w", err)
	}
	decks, err := game.ParseDeckFile(data, lookup)
	if err != nil {
		return nil, nil, err
	}
	df, err := parseDeckFileYAML(data)
	if err != nil {
		return nil, nil, err
	}

	infos := make([]DeckInfo, 0, len(df.Decks))
	for i, d := range df.Decks {
		di := DeckInfo{Number: i + 1, Name: d.Name, Size: len(decks[d.Name])}
		// Unique card names for display
		seen := make(map[string]bool)
		for _, c := range decks[d.Name] {
			if !seen[c.Name] {
				di.Cards = append(di.Cards, c.Name)
				seen[c.Name] = true
			}
		}
		infos = append(infos, di)
	}
	return decks, infos, nil
}

func parseDeckFileYAML(data []byte) (game.DeckFile, error) {
	var df game.DeckFile
	err := yaml.Unmarshal(data, &df)
	return df, err
}
