package game

import (
	"fmt"

	"github.com/peterkuimelis/shardwars/internal/log"
)

// PlayCard plays a card from the active player's hand by instance ID.
// Unknown IDs are a silent no-op. A card the player cannot afford stays in
// hand and the attempt is logged.
func (e *Engine) PlayCard(m *Match, cardID int) Outcome {
	if m.Over {
		return Outcome{Result: ResultMatchOver}
	}
	if !m.Started() {
		return Outcome{Result: ResultNotStarted}
	}

	tp := m.ActivePlayer
	p := m.Players[tp]
	idx := p.FindInHand(cardID)
	if idx == -1 {
		return Outcome{Result: ResultNoop}
	}

	card := p.Hand[idx]
	cost := max(card.Card.Cost, 0)
	if p.CurrentKL < cost {
		m.log(log.NewPlayRejectedEvent(m.Turn, m.Phase.String(), tp, card.Card.Name, cost, p.CurrentKL))
		return Outcome{
			Result: ResultInsufficientKL,
			Focus: &Focus{
				Kind:  FocusReject,
				Title: "Not enough KL",
				Lines: []string{
					fmt.Sprintf("%s costs %d KL", card.Card.Name, cost),
					fmt.Sprintf("You have %d KL", p.CurrentKL),
				},
			},
		}
	}

	p.CurrentKL -= cost
	p.RemoveFromHand(idx)
	out := Outcome{Transients: []Transient{{Kind: TransientPlayed, Player: tp, CardID: card.ID}}}

	switch card.Card.Type {
	case CardTypeShard:
		p.PlaceShard(card)
		m.log(log.NewPlayShardEvent(m.Turn, m.Phase.String(), tp, p.Name, card.Card.Name, cost))
		e.RecalculateKL(m, tp)
		charged := e.CheckGodCharge(m, tp)
		lines := []string{
			fmt.Sprintf("Shards in play: %d", len(p.ShardRow)),
			fmt.Sprintf("KL %d / %d", p.CurrentKL, p.KLCap),
		}
		if charged {
			lines = append(lines, fmt.Sprintf("God Charge gained (%d/%d)", p.GodCharges, m.Rules.MaxGodCharges))
		}
		out.Focus = &Focus{Kind: FocusShard, Title: card.Card.Name, Lines: lines}

	case CardTypeAvatar:
		p.PlaceAvatar(card)
		m.log(log.NewPlayAvatarEvent(m.Turn, m.Phase.String(), tp, p.Name, card.Card.Name, cost, card.Card.Power()))
		out.Focus = &Focus{
			Kind:  FocusAvatar,
			Title: card.Card.Name,
			Lines: []string{
				fmt.Sprintf("Power %d / Guard %d", card.Card.Power(), card.Card.Guard()),
				fmt.Sprintf("Frontline: %d", len(p.Frontline)),
			},
		}

	default:
		m.log(log.NewPlayCardEvent(m.Turn, m.Phase.String(), tp, p.Name, card.Card.Name, cost))
		lines := []string{card.Card.Type.String()}
		if fn, ok := e.Effects.Lookup(card.Card.ID); ok {
			lines = append(lines, fn(m, tp, card)...)
		} else if card.Card.Effect != "" {
			lines = append(lines, card.Card.Effect)
		}
		if card.Zone == ZoneHand {
			p.SendToCrypt(card)
		}
		out.Focus = &Focus{Kind: FocusCard, Title: card.Card.Name, Lines: lines}
	}

	return out
}

// AttackWithAll sends every ready avatar of the active player at the
// opponent. Damage is summed, all attackers tap together, and the opponent's
// essence is floored at 0. There is no blocking or targeting.
func (e *Engine) AttackWithAll(m *Match) Outcome {
	if m.Over {
		return Outcome{Result: ResultMatchOver}
	}
	if !m.Started() {
		return Outcome{Result: ResultNotStarted}
	}

	tp := m.ActivePlayer
	oppIdx := m.Opponent(tp)
	p := m.Players[tp]
	opp := m.Players[oppIdx]

	if m.Phase != PhaseMain && m.Phase != PhaseCombat {
		reason := fmt.Sprintf("%s cannot attack during the %s phase", p.Name, m.Phase)
		m.log(log.NewActionRejectedEvent(m.Turn, m.Phase.String(), tp, reason))
		return Outcome{Result: ResultWrongPhase, Focus: &Focus{Kind: FocusReject, Title: "Cannot attack now", Lines: []string{reason}}}
	}

	attackers := p.Attackers()
	if len(attackers) == 0 {
		m.log(log.NewNoAttackersEvent(m.Turn, m.Phase.String(), tp, p.Name))
		return Outcome{Result: ResultNoAttackers, Focus: &Focus{Kind: FocusInfo, Title: "No attackers", Lines: []string{"No ready avatars with power"}}}
	}

	if m.Phase == PhaseMain {
		e.enterPhase(m, PhaseCombat)
	}

	total := 0
	names := make([]string, 0, len(attackers))
	for _, a := range attackers {
		total += a.Card.Power()
		names = append(names, a.Card.Name)
	}

	var out Outcome
	for _, a := range attackers {
		a.Tapped = true
		out.Transients = append(out.Transients, Transient{Kind: TransientTapped, Player: tp, CardID: a.ID})
	}

	m.log(log.NewAttackDeclareEvent(m.Turn, m.Phase.String(), tp, p.Name, names, total))
	before := opp.Essence
	opp.Essence = max(0, opp.Essence-total)
	m.log(log.NewEssenceChangeEvent(m.Turn, m.Phase.String(), oppIdx, opp.Name, before, opp.Essence))

	out.Focus = &Focus{
		Kind:  FocusAttack,
		Title: fmt.Sprintf("%d damage", total),
		Lines: []string{
			fmt.Sprintf("%d attacker(s)", len(attackers)),
			fmt.Sprintf("%s Essence %d → %d", opp.Name, before, opp.Essence),
		},
	}

	if opp.Essence == 0 {
		m.log(log.NewDefeatEvent(m.Turn, m.Phase.String(), oppIdx, opp.Name))
		e.endMatch(m, tp)
		out.Focus = gameOverFocus(m)
	}
	return out
}
