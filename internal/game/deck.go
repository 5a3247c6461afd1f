package game

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Catalog is the card source a deck can be sampled from.
type Catalog interface {
	AllCards() []*Card
}

// SampleSize is the number of cards of each group taken by SampleDeck.
const SampleSize = 10

// SampleDeck takes up to SampleSize Avatars, Shards and Relic/Support cards
// from the catalog, in catalog order. An empty result means the caller falls
// back to the seed list.
func SampleDeck(cat Catalog) []*Card {
	if cat == nil {
		return nil
	}
	var avatars, shards, relics []*Card
	for _, c := range cat.AllCards() {
		switch c.Type {
		case CardTypeAvatar:
			if len(avatars) < SampleSize {
				avatars = append(avatars, c)
			}
		case CardTypeShard:
			if len(shards) < SampleSize {
				shards = append(shards, c)
			}
		case CardTypeRelic, CardTypeSupport:
			if len(relics) < SampleSize {
				relics = append(relics, c)
			}
		}
	}
	mix := make([]*Card, 0, len(avatars)+len(shards)+len(relics))
	mix = append(mix, avatars...)
	mix = append(mix, shards...)
	return append(mix, relics...)
}

// BuildDeck turns card templates into instances owned by the given player.
// Every instance gets a fresh match-unique ID, even when several share a
// template. An empty source falls back to the seed list.
func (m *Match) BuildDeck(owner int, source []*Card, rng Rand, shuffle bool) []*CardInstance {
	if len(source) == 0 {
		source = SeedCards()
	}
	deck := make([]*CardInstance, 0, len(source))
	for _, card := range source {
		deck = append(deck, m.CreateCardInstance(card, owner))
	}
	if shuffle {
		Shuffle(deck, rng)
	}
	return deck
}

// Shuffle applies a Fisher–Yates permutation in place.
func Shuffle[T any](s []T, rng Rand) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

// DeckFile represents the top-level YAML structure.
type DeckFile struct {
	Decks []DeckEntry `yaml:"decks"`
}

// DeckEntry represents a single deck in the YAML file.
type DeckEntry struct {
	Name  string      `yaml:"name"`
	Cards []CardEntry `yaml:"cards"`
}

// CardEntry represents a card and its count in a deck.
type CardEntry struct {
	ID    string `yaml:"id"`
	Count int    `yaml:"count"`
}

// LookupFunc resolves a card ID to its template.
type LookupFunc func(id string) *Card

// ParseDeckFile parses YAML deck data and returns a map of deck name → card slice.
func ParseDeckFile(data []byte, lookup LookupFunc) (map[string][]*Card, error) {
	var df DeckFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return nil, fmt.Errorf("parse deck YAML: %w", err)
	}

	decks := make(map[string][]*Card)
	for _, deck := range df.Decks {
		cards, err := ExpandDeck(deck.Cards, lookup)
		if err != nil {
			return nil, fmt.Errorf("deck %q: %w", deck.Name, err)
		}
		decks[deck.Name] = cards
	}
	return decks, nil
}

// ExpandDeck resolves each entry and repeats it Count times (at least once).
func ExpandDeck(entries []CardEntry, lookup LookupFunc) ([]*Card, error) {
	var cards []*Card
	for _, entry := range entries {
		card := lookup(entry.ID)
		if card == nil {
			return nil, fmt.Errorf("card not found: %q", entry.ID)
		}
		count := max(entry.Count, 1)
		for i := 0; i < count; i++ {
			cards = append(cards, card)
		}
	}
	return cards, nil
}

// ChainLookup tries each lookup in order and returns the first hit.
func ChainLookup(lookups ...LookupFunc) LookupFunc {
	return func(id string) *Card {
		for _, l := range lookups {
			if l == nil {
				continue
			}
			if c := l(id); c != nil {
				return c
			}
		}
		return nil
	}
}
