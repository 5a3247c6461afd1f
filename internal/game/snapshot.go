package game

import "github.com/peterkuimelis/shardwars/internal/log"

// CardSnapshot is a read-only copy of a card instance.
type CardSnapshot struct {
	InstanceID int
	CardID     string
	Name       string
	Type       CardType
	Cost       int
	Power      int
	Guard      int
	Effect     string
	Image      string
	Tapped     bool
}

// PlayerSnapshot is a read-only copy of a player. The deck is reduced to a
// count; its order is hidden information.
type PlayerSnapshot struct {
	ID              string
	Name            string
	Essence         int
	BaseKL          int
	CurrentKL       int
	KLCap           int
	GodCharges      int
	GodChargesSpent int
	DeckCount       int

	Hand      []CardSnapshot
	ShardRow  []CardSnapshot
	Frontline []CardSnapshot
	DomainRow []CardSnapshot
	Crypt     []CardSnapshot
}

// MatchSnapshot is a deep copy of a match, safe to hand to readers while the
// engine keeps mutating the original.
type MatchSnapshot struct {
	Players      [2]PlayerSnapshot
	ActivePlayer int
	Turn         int
	Phase        Phase
	MaxCharges   int
	Over         bool
	Winner       int
	Result       string
	Log          []log.GameEvent
}

// Snapshot copies the current state of the match.
func (m *Match) Snapshot() MatchSnapshot {
	s := MatchSnapshot{
		ActivePlayer: m.ActivePlayer,
		Turn:         m.Turn,
		Phase:        m.Phase,
		MaxCharges:   m.Rules.MaxGodCharges,
		Over:         m.Over,
		Winner:       m.Winner,
		Result:       m.Result,
		Log:          m.Log.Events(),
	}
	for i, p := range m.Players {
		s.Players[i] = PlayerSnapshot{
			ID:              p.ID,
			Name:            p.Name,
			Essence:         p.Essence,
			BaseKL:          p.BaseKL,
			CurrentKL:       p.CurrentKL,
			KLCap:           p.KLCap,
			GodCharges:      p.GodCharges,
			GodChargesSpent: p.GodChargesSpent,
			DeckCount:       p.DeckCount(),
			Hand:            snapshotZone(p.Hand),
			ShardRow:        snapshotZone(p.ShardRow),
			Frontline:       snapshotZone(p.Frontline),
			DomainRow:       snapshotZone(p.DomainRow),
			Crypt:           snapshotZone(p.Crypt),
		}
	}
	return s
}

func snapshotZone(zone []*CardInstance) []CardSnapshot {
	out := make([]CardSnapshot, len(zone))
	for i, ci := range zone {
		out[i] = CardSnapshot{
			InstanceID: ci.ID,
			CardID:     ci.Card.ID,
			Name:       ci.Card.Name,
			Type:       ci.Card.Type,
			Cost:       ci.Card.Cost,
			Power:      ci.Card.Power(),
			Guard:      ci.Card.Guard(),
			Effect:     ci.Card.Effect,
			Image:      ci.Card.Image,
			Tapped:     ci.Tapped,
		}
	}
	return out
}
