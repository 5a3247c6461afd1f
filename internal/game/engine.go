package game

import (
	"fmt"

	"github.com/peterkuimelis/shardwars/internal/log"
)

// Engine applies turn progression and player actions to a Match. It holds no
// match state of its own; every operation takes the match it mutates.
type Engine struct {
	Effects *EffectRegistry
}

// NewEngine creates an engine with an empty effect registry.
func NewEngine() *Engine {
	return &Engine{Effects: NewEffectRegistry()}
}

// StartNextTurn hands the turn to the next player and runs Ready, Draw and
// KLRecalc before entering Main. The first call starts the match with player 0.
func (e *Engine) StartNextTurn(m *Match) Outcome {
	if m.Over {
		return Outcome{Result: ResultMatchOver}
	}

	if !m.Started() {
		m.ActivePlayer = 0
		m.Turn = 1
	} else {
		m.ActivePlayer = m.Opponent(m.ActivePlayer)
		m.Turn++
	}
	tp := m.ActivePlayer
	p := m.Players[tp]
	var out Outcome

	m.log(log.NewTurnEvent(m.Turn, tp, p.Name))

	// Ready
	m.Phase = PhaseReady
	if n := p.UntapFrontline(); n > 0 {
		m.log(log.NewReadyEvent(m.Turn, tp, p.Name, n))
	}

	// Draw
	m.Phase = PhaseDraw
	drawn := p.DrawCard()
	if drawn == nil {
		m.log(log.NewDrawFailedEvent(m.Turn, m.Phase.String(), tp, p.Name))
	} else {
		m.log(log.NewDrawEvent(m.Turn, m.Phase.String(), tp, p.Name, drawn.Card.Name))
		out.Transients = append(out.Transients, Transient{Kind: TransientDrawn, Player: tp, CardID: drawn.ID})
	}

	// KL recalculation and God Charge accrual
	m.Phase = PhaseKLRecalc
	e.RecalculateKL(m, tp)
	e.CheckGodCharge(m, tp)

	// Main
	m.Phase = PhaseMain
	m.log(log.NewTurnSummaryEvent(m.Turn, tp, p.Name, p.Essence, p.CurrentKL, p.GodCharges))

	focus := &Focus{
		Kind:  FocusTurn,
		Title: fmt.Sprintf("Turn %d — %s", m.Turn, p.Name),
		Lines: []string{
			fmt.Sprintf("Essence %d", p.Essence),
			fmt.Sprintf("KL %d / %d", p.CurrentKL, p.KLCap),
			fmt.Sprintf("God Charges %d / %d", p.GodCharges, m.Rules.MaxGodCharges),
		},
	}
	if drawn != nil {
		focus.Lines = append(focus.Lines, "Drew "+drawn.Card.Name)
	} else {
		focus.Lines = append(focus.Lines, "Deck is empty")
	}
	out.Focus = focus

	if opp := m.Players[m.Opponent(tp)]; opp.Essence <= 0 {
		e.endMatch(m, tp)
		out.Focus = gameOverFocus(m)
	}
	return out
}

// AdvancePhase moves Main → Combat → End, and past End into the next turn.
// Before the first turn it starts the match.
func (e *Engine) AdvancePhase(m *Match) Outcome {
	if m.Over {
		return Outcome{Result: ResultMatchOver}
	}
	if !m.Started() {
		return e.StartNextTurn(m)
	}

	switch m.Phase {
	case PhaseMain:
		e.enterPhase(m, PhaseCombat)
		attackers := len(m.CurrentPlayer().Attackers())
		return Outcome{Focus: &Focus{
			Kind:  FocusPhase,
			Title: "Combat",
			Lines: []string{fmt.Sprintf("%d avatar(s) ready to attack", attackers)},
		}}
	case PhaseCombat:
		e.enterPhase(m, PhaseEnd)
		return Outcome{Focus: &Focus{Kind: FocusPhase, Title: "End"}}
	case PhaseEnd:
		return e.StartNextTurn(m)
	default:
		e.enterPhase(m, PhaseMain)
		return Outcome{Focus: &Focus{Kind: FocusPhase, Title: "Main"}}
	}
}

// EndTurn passes through End and starts the next turn from any phase.
func (e *Engine) EndTurn(m *Match) Outcome {
	if m.Over {
		return Outcome{Result: ResultMatchOver}
	}
	if m.Started() && m.Phase != PhaseEnd {
		e.enterPhase(m, PhaseEnd)
	}
	return e.StartNextTurn(m)
}

// RecalculateKL sets the player's KL to base KL plus one per shard in play,
// capped. Returns true and logs only when the value changed.
func (e *Engine) RecalculateKL(m *Match, player int) bool {
	p := m.Players[player]
	want := min(p.KLCap, p.BaseKL+len(p.ShardRow))
	want = max(want, 0)
	if want == p.CurrentKL {
		return false
	}
	m.log(log.NewKLChangeEvent(m.Turn, m.Phase.String(), player, p.Name, p.CurrentKL, want))
	p.CurrentKL = want
	return true
}

// CheckGodCharge grants at most one God Charge when the turn number, KL
// threshold and charge ceiling allow it.
func (e *Engine) CheckGodCharge(m *Match, player int) bool {
	if m.Turn < m.Rules.GodChargeMinTurn {
		return false
	}
	p := m.Players[player]
	if p.CurrentKL < m.Rules.GodThreshold || p.GodCharges >= m.Rules.MaxGodCharges {
		return false
	}
	p.GodCharges++
	m.log(log.NewGodChargeEvent(m.Turn, m.Phase.String(), player, p.Name, p.GodCharges, m.Rules.MaxGodCharges))
	return true
}

func (e *Engine) enterPhase(m *Match, phase Phase) {
	m.Phase = phase
	m.log(log.NewPhaseChangeEvent(m.Turn, phase.String()))
}

// endMatch marks the match over and logs the result.
func (e *Engine) endMatch(m *Match, winner int) {
	m.finish(winner)
	m.log(log.NewGameOverEvent(m.Turn, m.Phase.String(), winner, m.Players[winner].Name))
}

func gameOverFocus(m *Match) *Focus {
	return &Focus{
		Kind:  FocusGameOver,
		Title: "Game Over",
		Lines: []string{m.Result},
	}
}
