package game

import "sync"

// EffectFunc resolves a played Relic, Support, Technique or Deity card. The
// card has already been paid for and removed from the hand. A resolver may
// place the card in a zone of its choosing; a card it leaves unplaced is sent
// to the crypt. The returned lines are shown in the focus descriptor.
type EffectFunc func(m *Match, player int, card *CardInstance) []string

// EffectRegistry maps card IDs to effect resolvers.
type EffectRegistry struct {
	mu      sync.RWMutex
	effects map[string]EffectFunc
}

// NewEffectRegistry returns an empty registry.
func NewEffectRegistry() *EffectRegistry {
	return &EffectRegistry{effects: make(map[string]EffectFunc)}
}

// Register binds a resolver to a card ID, replacing any previous binding.
func (r *EffectRegistry) Register(cardID string, fn EffectFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.effects[cardID] = fn
}

// Lookup returns the resolver for a card ID.
func (r *EffectRegistry) Lookup(cardID string) (EffectFunc, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.effects[cardID]
	return fn, ok
}

// PlaceInDomain is a helper for resolvers of cards that stay in play.
func PlaceInDomain(m *Match, player int, card *CardInstance) {
	p := m.Players[player]
	card.Zone = ZoneDomainRow
	p.DomainRow = append(p.DomainRow, card)
}
