package game

import (
	"fmt"
	"testing"

	"github.com/peterkuimelis/shardwars/internal/log"
)

// seqRand always picks the same offset from the top, giving a fixed
// permutation for a given deck size.
type seqRand struct{ calls int }

func (r *seqRand) Intn(n int) int {
	r.calls++
	return r.calls % n
}

func vanillaAvatar(name string, cost, power, guard int) *Card {
	return NewAvatar("T-"+name, name, cost, power, guard)
}

func shard(name string) *Card {
	return NewShard("T-"+name, name, 0)
}

// makePaddedDeck puts the given cards on top and pads with 0-power avatars
// up to size.
func makePaddedDeck(top []*Card, size int) []*Card {
	deck := make([]*Card, 0, size)
	deck = append(deck, top...)
	for i := len(deck); i < size; i++ {
		deck = append(deck, vanillaAvatar(fmt.Sprintf("Filler %d", i), 9, 0, 1))
	}
	return deck
}

// newTestMatch builds an unshuffled match with empty opening hands so each
// test controls exactly what is drawn.
func newTestMatch(t *testing.T, deck0, deck1 []*Card) (*Match, *Engine, *log.MemoryLogger) {
	t.Helper()
	rules := DefaultRules()
	rules.OpeningHand = 0
	logger := log.NewMemoryLogger()
	m := NewMatch(MatchConfig{
		Rules:     rules,
		Names:     [2]string{"You", "Rival"},
		Decks:     [2][]*Card{deck0, deck1},
		NoShuffle: true,
		Logger:    logger,
	})
	return m, NewEngine(), logger
}

// putInHand moves a fresh instance of card straight into a player's hand.
func putInHand(m *Match, player int, card *Card) *CardInstance {
	ci := m.CreateCardInstance(card, player)
	ci.Zone = ZoneHand
	m.Players[player].Hand = append(m.Players[player].Hand, ci)
	return ci
}

// putOnFrontline moves a fresh avatar instance straight into play.
func putOnFrontline(m *Match, player int, card *Card, tapped bool) *CardInstance {
	ci := m.CreateCardInstance(card, player)
	m.Players[player].PlaceAvatar(ci)
	ci.Tapped = tapped
	return ci
}

// putShards places n shard instances in a player's shard row.
func putShards(m *Match, player, n int) {
	for i := 0; i < n; i++ {
		m.Players[player].PlaceShard(m.CreateCardInstance(shard(fmt.Sprintf("Shard %d", i)), player))
	}
}

func assertKLInvariant(t *testing.T, p *Player) {
	t.Helper()
	if p.CurrentKL < 0 || p.CurrentKL > p.KLCap {
		t.Errorf("%s: KL %d outside [0, %d]", p.Name, p.CurrentKL, p.KLCap)
	}
}

func dumpLog(t *testing.T, logger *log.MemoryLogger) {
	t.Helper()
	t.Logf("Match log:\n%s", log.FormatAll(logger.Events()))
}
