package game

import (
	"testing"

	"github.com/peterkuimelis/shardwars/internal/log"
)

// TestFirstTurnKL: base KL 3, no shards → KL 3 after the first turn start.
func TestFirstTurnKL(t *testing.T) {
	m, e, logger := newTestMatch(t, nil, nil)
	if m.Started() {
		t.Fatal("Match should not be started before the first turn")
	}

	out := e.StartNextTurn(m)
	if !out.OK() {
		t.Fatalf("Expected OK, got %s", out.Result)
	}
	if m.ActivePlayer != 0 || m.Turn != 1 {
		t.Fatalf("Expected player 0 on turn 1, got player %d turn %d", m.ActivePlayer, m.Turn)
	}
	if m.Phase != PhaseMain {
		t.Errorf("Expected Main phase after turn start, got %s", m.Phase)
	}
	if got := m.Players[0].CurrentKL; got != 3 {
		t.Errorf("Expected KL 3, got %d", got)
	}
	if n := len(logger.EventsOfType(log.EventKLChange)); n != 0 {
		t.Errorf("Expected no KL change lines, got %d", n)
	}
	if out.Focus == nil || out.Focus.Kind != FocusTurn {
		t.Errorf("Expected turn focus, got %+v", out.Focus)
	}
	dumpLog(t, logger)
}

// TestShardsRaiseKLAcrossTurns: two shards played, then a full round passes → KL 5.
func TestShardsRaiseKLAcrossTurns(t *testing.T) {
	m, e, logger := newTestMatch(t, nil, nil)
	e.StartNextTurn(m)

	a := putInHand(m, 0, shard("Shard A"))
	b := putInHand(m, 0, shard("Shard B"))
	e.PlayCard(m, a.ID)
	e.PlayCard(m, b.ID)
	if got := m.Players[0].CurrentKL; got != 5 {
		t.Errorf("Expected KL 5 right after the shards, got %d", got)
	}

	e.EndTurn(m)
	e.EndTurn(m)
	if m.ActivePlayer != 0 || m.Turn != 3 {
		t.Fatalf("Expected player 0 on turn 3, got player %d turn %d", m.ActivePlayer, m.Turn)
	}
	if got := m.Players[0].CurrentKL; got != 5 {
		t.Errorf("Expected KL min(31, 3+2) = 5, got %d", got)
	}
	assertKLInvariant(t, m.Players[0])
	dumpLog(t, logger)
}

func TestKLCapped(t *testing.T) {
	m, e, _ := newTestMatch(t, nil, nil)
	putShards(m, 0, 40)
	e.StartNextTurn(m)

	p := m.Players[0]
	if p.CurrentKL != KLCap {
		t.Errorf("Expected KL capped at %d, got %d", KLCap, p.CurrentKL)
	}
	assertKLInvariant(t, p)
}

func TestRecalculateKLIdempotent(t *testing.T) {
	m, e, logger := newTestMatch(t, nil, nil)
	e.StartNextTurn(m)
	putShards(m, 0, 2)

	if !e.RecalculateKL(m, 0) {
		t.Fatal("Expected first recalculation to change KL")
	}
	before := len(logger.EventsOfType(log.EventKLChange))
	kl := m.Players[0].CurrentKL

	if e.RecalculateKL(m, 0) {
		t.Error("Second recalculation should report no change")
	}
	if m.Players[0].CurrentKL != kl {
		t.Errorf("KL moved from %d to %d without a shard change", kl, m.Players[0].CurrentKL)
	}
	if after := len(logger.EventsOfType(log.EventKLChange)); after != before {
		t.Errorf("Expected no duplicate KL line, got %d → %d", before, after)
	}
}

// TestGodChargeGating: KL sits at the threshold from turn 1, but charges only
// start on turn 3, arrive one per turn, and stop at the maximum.
func TestGodChargeGating(t *testing.T) {
	m, e, logger := newTestMatch(t, nil, nil)
	putShards(m, 0, GodThreshold-BaseKL)

	e.StartNextTurn(m) // turn 1, player 0
	if m.Players[0].CurrentKL != GodThreshold {
		t.Fatalf("Expected KL %d, got %d", GodThreshold, m.Players[0].CurrentKL)
	}
	if m.Players[0].GodCharges != 0 {
		t.Fatalf("No charge expected on turn 1, got %d", m.Players[0].GodCharges)
	}

	prev := 0
	for m.Turn < 11 {
		e.EndTurn(m)
		p := m.Players[0]
		if p.GodCharges < prev {
			t.Fatalf("God charges decreased from %d to %d", prev, p.GodCharges)
		}
		if p.GodCharges > MaxGodCharges {
			t.Fatalf("God charges %d above max", p.GodCharges)
		}
		if p.GodCharges-prev > 1 {
			t.Fatalf("God charges jumped from %d to %d", prev, p.GodCharges)
		}
		prev = p.GodCharges
	}

	// Player 0 had turns 3, 5, 7, 9, 11.
	if m.Players[0].GodCharges != MaxGodCharges {
		t.Errorf("Expected %d charges, got %d", MaxGodCharges, m.Players[0].GodCharges)
	}
	if m.Players[1].GodCharges != 0 {
		t.Errorf("Player 1 is below threshold, got %d charges", m.Players[1].GodCharges)
	}
	charges := logger.EventsOfType(log.EventGodCharge)
	if len(charges) != MaxGodCharges {
		t.Errorf("Expected %d charge lines, got %d", MaxGodCharges, len(charges))
	}
	if charges[0].Turn != 3 {
		t.Errorf("First charge expected on turn 3, got %d", charges[0].Turn)
	}
}

func TestReadyUntapsFrontline(t *testing.T) {
	m, e, logger := newTestMatch(t, nil, nil)
	e.StartNextTurn(m)
	a := putOnFrontline(m, 0, vanillaAvatar("Sentinel", 1, 2, 2), true)
	b := putOnFrontline(m, 0, vanillaAvatar("Warden", 1, 2, 2), true)

	e.EndTurn(m)
	if !a.Tapped || !b.Tapped {
		t.Fatal("Opponent's turn must not untap player 0's avatars")
	}
	e.EndTurn(m)
	if a.Tapped || b.Tapped {
		t.Error("Expected both avatars ready on player 0's turn")
	}
	ready := logger.EventsOfType(log.EventReady)
	if len(ready) != 1 || ready[0].Player != 0 {
		t.Errorf("Expected one Ready line for player 0, got %v", ready)
	}
}

func TestDrawFromEmptyDeck(t *testing.T) {
	m, e, logger := newTestMatch(t, nil, nil)
	m.Players[0].Deck = nil

	out := e.StartNextTurn(m)
	if !out.OK() {
		t.Fatalf("Turn should proceed on an empty deck, got %s", out.Result)
	}
	if len(m.Players[0].Hand) != 0 {
		t.Errorf("Expected empty hand, got %d cards", len(m.Players[0].Hand))
	}
	if len(logger.EventsOfType(log.EventDrawFailed)) != 1 {
		t.Error("Expected a failed draw line")
	}
	if m.Phase != PhaseMain {
		t.Errorf("Expected Main phase, got %s", m.Phase)
	}
}

func TestDrawTakesFrontOfDeck(t *testing.T) {
	first := vanillaAvatar("First", 1, 1, 1)
	m, e, _ := newTestMatch(t, makePaddedDeck([]*Card{first}, 10), nil)

	out := e.StartNextTurn(m)
	hand := m.Players[0].Hand
	if len(hand) != 1 || hand[0].Card != first {
		t.Fatalf("Expected to draw First, got %v", hand)
	}
	if m.Players[0].DeckCount() != 9 {
		t.Errorf("Expected 9 cards left, got %d", m.Players[0].DeckCount())
	}
	if len(out.Transients) != 1 || out.Transients[0].Kind != TransientDrawn || out.Transients[0].CardID != hand[0].ID {
		t.Errorf("Expected a drawn transient for the new card, got %v", out.Transients)
	}
}

func TestAdvancePhaseCycle(t *testing.T) {
	m, e, logger := newTestMatch(t, nil, nil)

	e.AdvancePhase(m)
	if m.Turn != 1 || m.Phase != PhaseMain {
		t.Fatalf("Expected turn 1 Main, got turn %d %s", m.Turn, m.Phase)
	}
	e.AdvancePhase(m)
	if m.Phase != PhaseCombat {
		t.Fatalf("Expected Combat, got %s", m.Phase)
	}
	e.AdvancePhase(m)
	if m.Phase != PhaseEnd {
		t.Fatalf("Expected End, got %s", m.Phase)
	}
	e.AdvancePhase(m)
	if m.Turn != 2 || m.ActivePlayer != 1 || m.Phase != PhaseMain {
		t.Fatalf("Expected player 1 turn 2 Main, got player %d turn %d %s", m.ActivePlayer, m.Turn, m.Phase)
	}
	if n := len(logger.EventsOfType(log.EventPhaseChange)); n != 2 {
		t.Errorf("Expected 2 phase lines, got %d", n)
	}
}

func TestEndTurnFromMain(t *testing.T) {
	m, e, logger := newTestMatch(t, nil, nil)
	e.StartNextTurn(m)
	e.EndTurn(m)

	if m.ActivePlayer != 1 || m.Turn != 2 {
		t.Fatalf("Expected player 1 turn 2, got player %d turn %d", m.ActivePlayer, m.Turn)
	}
	phases := logger.EventsOfType(log.EventPhaseChange)
	if len(phases) != 1 || phases[0].Phase != "End" {
		t.Errorf("Expected a single End phase line, got %v", phases)
	}
}

// TestTurnStartWithDefeatedOpponent: a turn that starts with the opponent at 0
// essence ends the match in the active player's favor.
func TestTurnStartWithDefeatedOpponent(t *testing.T) {
	m, e, logger := newTestMatch(t, nil, nil)
	m.Players[1].Essence = 0

	out := e.StartNextTurn(m)
	if !m.Over || m.Winner != 0 {
		t.Fatalf("Expected player 0 to win, over=%v winner=%d", m.Over, m.Winner)
	}
	if out.Focus == nil || out.Focus.Kind != FocusGameOver {
		t.Errorf("Expected gameover focus, got %+v", out.Focus)
	}
	if len(logger.EventsOfType(log.EventGameOver)) != 1 {
		t.Error("Expected a game over line")
	}
}

func TestMatchOverLocksEngine(t *testing.T) {
	m, e, _ := newTestMatch(t, nil, nil)
	e.StartNextTurn(m)
	putOnFrontline(m, 0, vanillaAvatar("Colossus", 5, 30, 5), false)
	e.AttackWithAll(m)
	if !m.Over {
		t.Fatal("Expected the match to be over")
	}

	seq := m.Log.LastSeq()
	turn, phase := m.Turn, m.Phase
	card := putInHand(m, 0, shard("Late Shard"))
	handBefore := len(m.Players[0].Hand)

	for name, op := range map[string]func() Outcome{
		"StartNextTurn": func() Outcome { return e.StartNextTurn(m) },
		"AdvancePhase":  func() Outcome { return e.AdvancePhase(m) },
		"EndTurn":       func() Outcome { return e.EndTurn(m) },
		"PlayCard":      func() Outcome { return e.PlayCard(m, card.ID) },
		"AttackWithAll": func() Outcome { return e.AttackWithAll(m) },
	} {
		if out := op(); out.Result != ResultMatchOver {
			t.Errorf("%s: expected match_over, got %s", name, out.Result)
		}
	}
	if m.Log.LastSeq() != seq || m.Turn != turn || m.Phase != phase {
		t.Error("Locked match changed state")
	}
	if len(m.Players[0].Hand) != handBefore || m.Players[0].FindInHand(card.ID) == -1 {
		t.Error("Locked match moved a card")
	}
}

func TestLogBoundedAt120(t *testing.T) {
	m, e, _ := newTestMatch(t, nil, nil)
	for i := 0; i < 100; i++ {
		e.EndTurn(m)
	}
	if m.Log.Len() != log.DefaultCapacity {
		t.Fatalf("Expected %d retained lines, got %d", log.DefaultCapacity, m.Log.Len())
	}
	events := m.Log.Events()
	if events[len(events)-1].Seq != m.Log.LastSeq() {
		t.Error("Newest line must be retained")
	}
	if events[0].Seq != m.Log.LastSeq()-log.DefaultCapacity+1 {
		t.Errorf("Expected oldest seq %d, got %d", m.Log.LastSeq()-log.DefaultCapacity+1, events[0].Seq)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	m, e, _ := newTestMatch(t, nil, nil)
	e.StartNextTurn(m)
	a := putOnFrontline(m, 0, vanillaAvatar("Sentinel", 1, 2, 2), false)

	snap := m.Snapshot()
	a.Tapped = true
	m.Players[0].Essence = 1

	if snap.Players[0].Frontline[0].Tapped {
		t.Error("Snapshot followed a later tap")
	}
	if snap.Players[0].Essence != StartingEssence {
		t.Errorf("Snapshot essence changed to %d", snap.Players[0].Essence)
	}
	if snap.Players[0].DeckCount != m.Players[0].DeckCount() {
		t.Errorf("Expected deck count %d, got %d", m.Players[0].DeckCount(), snap.Players[0].DeckCount)
	}
	if len(snap.Log) == 0 {
		t.Error("Snapshot should carry the log")
	}
}
