package session

import (
	"github.com/peterkuimelis/shardwars/internal/game"
	"github.com/peterkuimelis/shardwars/internal/tutorial"
)

// autopilotPlayer is the seat the computer takes.
const autopilotPlayer = 1

// autopilot plays the computer's turns until the human is active again or the
// match ends. Its turn is fixed: play every affordable shard, then the
// cheapest affordable cards, attack with everything, end the turn. Transients
// accumulate onto out; the focus of the last step replaces out's.
func (s *Session) autopilot(out game.Outcome, evs []tutorial.Event) (game.Outcome, []tutorial.Event) {
	if !s.opts.Autopilot {
		return out, evs
	}
	m := s.match
	for !m.Over && m.ActivePlayer == autopilotPlayer {
		turn := m.Turn

		// Main
		if m.Phase == game.PhaseMain {
			for {
				card := nextPlay(m.CurrentPlayer())
				if card == nil {
					break
				}
				o := s.engine.PlayCard(m, card.ID)
				out.Transients = append(out.Transients, o.Transients...)
				if !o.OK() {
					break
				}
				evs = append(evs, cardPlayedEvent(turn, autopilotPlayer, card.Card))
			}
		}

		// Combat
		if n := len(m.CurrentPlayer().Attackers()); n > 0 && (m.Phase == game.PhaseMain || m.Phase == game.PhaseCombat) {
			if m.Phase == game.PhaseMain {
				evs = append(evs, combatEvent(turn, autopilotPlayer, n))
			}
			o := s.engine.AttackWithAll(m)
			out.Transients = append(out.Transients, o.Transients...)
			if o.Focus != nil {
				out.Focus = o.Focus
			}
			if m.Over {
				break
			}
		}

		// End
		o := s.engine.EndTurn(m)
		out.Transients = append(out.Transients, o.Transients...)
		out.Focus = o.Focus
		evs = append(evs, afterTurnEvent(turn, autopilotPlayer))
		evs = append(evs, s.turnStartEvents(o)...)
	}
	return out, evs
}

// nextPlay picks the card the autopilot plays next, or nil when nothing in
// hand is affordable. Shards come first; otherwise the cheapest card wins,
// earliest in hand on ties.
func nextPlay(p *game.Player) *game.CardInstance {
	var best *game.CardInstance
	for _, ci := range p.Hand {
		cost := max(ci.Card.Cost, 0)
		if cost > p.CurrentKL {
			continue
		}
		if ci.Card.Type == game.CardTypeShard {
			return ci
		}
		if best == nil || cost < max(best.Card.Cost, 0) {
			best = ci
		}
	}
	return best
}
