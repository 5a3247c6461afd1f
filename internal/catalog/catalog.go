// Package catalog loads the card sheet into normalized card templates.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/peterkuimelis/shardwars/internal/game"
)

// DefaultCardBack is used when the sheet has no "back" row.
const DefaultCardBack = "https://cdn1.sharemyimage.com/2025/12/02/Back.png"

// Sheet column headers.
const (
	colID        = "CardID"
	colName      = "Name"
	colRarity    = "Rarity"
	colType      = "Type"
	colCost      = "Cost"
	colEssence   = "Essence"
	colKLInfo    = "KLInfo"
	colPower     = "Power"
	colToughness = "Toughness"
	colDomain    = "Domain"
	colRules     = "RulesText"
	colImage     = "imageUrl"
)

// Catalog is a read-only set of card templates. Playable cards come first in
// sheet order, followed by deities. A nil *Catalog behaves as empty.
type Catalog struct {
	cards   []*game.Card
	byID    map[string]*game.Card
	back    string
	skipped int
}

// Empty returns a catalog with no cards.
func Empty() *Catalog {
	return &Catalog{byID: map[string]*game.Card{}, back: DefaultCardBack}
}

// Load reads a card sheet from disk.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open card sheet: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a tab-separated card sheet with a header row.
func Parse(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read card sheet header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		if h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")); h != "" {
			index[h] = i
		}
	}
	if _, ok := index[colID]; !ok {
		return nil, fmt.Errorf("card sheet: missing %s column", colID)
	}

	c := Empty()
	var deities []*game.Card
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read card sheet line %d: %w", line, err)
		}
		row := sheetRow{rec: rec, index: index}
		id := strings.TrimSpace(row.get(colID))
		if id == "" {
			continue
		}
		if strings.EqualFold(id, "back") {
			if img := strings.TrimSpace(row.get(colImage)); img != "" {
				c.back = img
			}
			continue
		}
		card, ok := normalize(id, row)
		if !ok {
			c.skipped++
			slog.Debug("card sheet: skipping row with unknown type", "id", id, "type", row.get(colType))
			continue
		}
		if _, dup := c.byID[id]; dup {
			c.skipped++
			slog.Debug("card sheet: skipping duplicate id", "id", id)
			continue
		}
		c.byID[id] = card
		if card.Type == game.CardTypeDeity {
			deities = append(deities, card)
		} else {
			c.cards = append(c.cards, card)
		}
	}
	c.cards = append(c.cards, deities...)
	return c, nil
}

type sheetRow struct {
	rec   []string
	index map[string]int
}

func (r sheetRow) get(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.rec) {
		return ""
	}
	return r.rec[i]
}

func (r sheetRow) number(col string) (int, bool) {
	s := strings.TrimSpace(r.get(col))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

// normalize turns a sheet row into the tagged card variant. This is the only
// place sheet quirks are handled.
func normalize(id string, row sheetRow) (*game.Card, bool) {
	base, aspects := splitType(row.get(colType))
	t, ok := parseBaseType(base)
	if !ok {
		return nil, false
	}
	cost, _ := row.number(colCost)
	card := &game.Card{
		ID:      id,
		Name:    strings.TrimSpace(row.get(colName)),
		Type:    t,
		Cost:    max(cost, 0),
		Effect:  strings.TrimSpace(row.get(colRules)),
		Rarity:  strings.TrimSpace(row.get(colRarity)),
		Aspects: aspects,
		Domain:  strings.TrimSpace(row.get(colDomain)),
		Image:   strings.TrimSpace(row.get(colImage)),
	}
	if card.Name == "" {
		card.Name = id
	}
	switch t {
	case game.CardTypeAvatar:
		power, _ := row.number(colPower)
		guard, _ := row.number(colToughness)
		card.Avatar = &game.AvatarStats{Power: max(power, 0), Guard: max(guard, 0)}
	case game.CardTypeDeity:
		essence, _ := row.number(colEssence)
		card.Deity = &game.DeityStats{Essence: essence, KLInfo: strings.TrimSpace(row.get(colKLInfo))}
	}
	return card, true
}

// typeSeparators covers the em dash and its UTF-8-as-Latin-1 rendering found
// in exported sheets.
var typeSeparators = []string{"—", "â€”"}

// splitType splits "Avatar — Light/Order" into the base type and aspects.
func splitType(raw string) (string, []string) {
	for _, sep := range typeSeparators {
		base, rest, found := strings.Cut(raw, sep)
		if !found {
			continue
		}
		var aspects []string
		for _, a := range strings.Split(rest, "/") {
			if a = strings.TrimSpace(a); a != "" {
				aspects = append(aspects, a)
			}
		}
		return strings.TrimSpace(base), aspects
	}
	return strings.TrimSpace(raw), nil
}

func parseBaseType(base string) (game.CardType, bool) {
	if t, ok := game.ParseCardType(base); ok {
		return t, true
	}
	// "Relic/Support" and similar combined labels take the first known part.
	for _, part := range strings.Split(base, "/") {
		if t, ok := game.ParseCardType(strings.TrimSpace(part)); ok {
			return t, true
		}
	}
	return 0, false
}

// AllCards returns every card, playable cards first.
func (c *Catalog) AllCards() []*game.Card {
	if c == nil {
		return nil
	}
	return c.cards
}

// Len returns the number of cards.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.cards)
}

// Skipped returns how many sheet rows could not be turned into cards.
func (c *Catalog) Skipped() int {
	if c == nil {
		return 0
	}
	return c.skipped
}

// ByType returns the cards of one type in catalog order.
func (c *Catalog) ByType(t game.CardType) []*game.Card {
	var out []*game.Card
	for _, card := range c.AllCards() {
		if card.Type == t {
			out = append(out, card)
		}
	}
	return out
}

// Playable returns every card except deities.
func (c *Catalog) Playable() []*game.Card {
	var out []*game.Card
	for _, card := range c.AllCards() {
		if card.Type != game.CardTypeDeity {
			out = append(out, card)
		}
	}
	return out
}

// Deities returns the deity cards.
func (c *Catalog) Deities() []*game.Card {
	return c.ByType(game.CardTypeDeity)
}

// Lookup finds a card by ID, or nil.
func (c *Catalog) Lookup(id string) *game.Card {
	if c == nil {
		return nil
	}
	return c.byID[id]
}

// CardBack returns the card-back image URL.
func (c *Catalog) CardBack() string {
	if c == nil || c.back == "" {
		return DefaultCardBack
	}
	return c.back
}
