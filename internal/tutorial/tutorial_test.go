package tutorial

import (
	"strings"
	"testing"

	"github.com/peterkuimelis/shardwars/internal/game"
)

func intp(n int) *int { return &n }

// TestTurnStartConstraints: step 0 wants onTurnStart turn 1 for "you"; turn 2
// is ignored and turn 1 advances.
func TestTurnStartConstraints(t *testing.T) {
	e := NewEngine([]Step{
		{ID: "t1", Trigger: TriggerTurnStart, Turn: intp(1), Player: PlayerYou},
		{ID: "next", Trigger: TriggerAfterTurn},
	})

	if _, ok := e.Fire(Event{Trigger: TriggerTurnStart, Turn: 2, Player: PlayerYou}); ok {
		t.Fatal("Turn 2 should not match")
	}
	if e.StepIndex() != 0 {
		t.Fatalf("Expected step 0, got %d", e.StepIndex())
	}

	step, ok := e.Fire(Event{Trigger: TriggerTurnStart, Turn: 1, Player: PlayerYou})
	if !ok || step.ID != "t1" {
		t.Fatalf("Expected t1 to fire, got %v %v", step, ok)
	}
	if e.StepIndex() != 1 {
		t.Errorf("Expected step 1, got %d", e.StepIndex())
	}
}

func TestMismatchedTriggerIsDropped(t *testing.T) {
	e := NewEngine([]Step{
		{ID: "a", Trigger: TriggerBoardReady},
		{ID: "b", Trigger: TriggerTurnStart},
	})

	// The second step's trigger arrives first: no lookahead, no queueing.
	if _, ok := e.Fire(Event{Trigger: TriggerTurnStart, Turn: 1}); ok {
		t.Fatal("Only the current step may match")
	}
	if _, ok := e.Fire(Event{Trigger: TriggerBoardReady}); !ok {
		t.Fatal("Expected a to fire")
	}
	if e.StepIndex() != 1 {
		t.Fatalf("Expected step 1, got %d", e.StepIndex())
	}
	if _, ok := e.Fire(Event{Trigger: TriggerTurnStart, Turn: 1}); !ok {
		t.Fatal("Expected b to fire on a fresh event")
	}
	if !e.Done() {
		t.Error("Expected the script to be done")
	}
	if _, ok := e.Fire(Event{Trigger: TriggerTurnStart}); ok {
		t.Error("A finished script must not fire")
	}
}

func TestPlayerConstraint(t *testing.T) {
	e := NewEngine([]Step{{Trigger: TriggerAfterTurn, Player: PlayerOpponent}})
	if _, ok := e.Fire(Event{Trigger: TriggerAfterTurn, Player: PlayerYou}); ok {
		t.Fatal("Wrong player should not match")
	}
	if _, ok := e.Fire(Event{Trigger: TriggerAfterTurn, Player: PlayerOpponent}); !ok {
		t.Fatal("Expected opponent step to fire")
	}
}

func TestConditionShard(t *testing.T) {
	e := NewEngine([]Step{{Trigger: TriggerCardPlayed, Condition: "shard"}})

	if _, ok := e.Fire(Event{Trigger: TriggerCardPlayed, HasCard: true, CardType: game.CardTypeAvatar}); ok {
		t.Fatal("Avatar should not satisfy the shard condition")
	}
	if _, ok := e.Fire(Event{Trigger: TriggerCardPlayed}); ok {
		t.Fatal("Event without a card should not satisfy the shard condition")
	}
	if _, ok := e.Fire(Event{Trigger: TriggerCardPlayed, HasCard: true, CardType: game.CardTypeShard}); !ok {
		t.Fatal("Shard should satisfy the condition")
	}
}

func TestRegisterCondition(t *testing.T) {
	RegisterCondition("late_game", func(ev Event) bool { return ev.Turn >= 10 })
	e := NewEngine([]Step{{Trigger: TriggerTurnStart, Condition: "late_game"}})

	if _, ok := e.Fire(Event{Trigger: TriggerTurnStart, Turn: 9}); ok {
		t.Fatal("Turn 9 is not late")
	}
	if _, ok := e.Fire(Event{Trigger: TriggerTurnStart, Turn: 10}); !ok {
		t.Fatal("Turn 10 should match")
	}
}

func TestExitKeepsStepIndex(t *testing.T) {
	e := NewEngine([]Step{
		{Trigger: TriggerTutorialStart},
		{Trigger: TriggerBoardReady},
	})
	e.Fire(Event{Trigger: TriggerTutorialStart})
	e.Exit()

	if e.Active() {
		t.Fatal("Expected inactive after exit")
	}
	if _, ok := e.Fire(Event{Trigger: TriggerBoardReady}); ok {
		t.Error("Exited tutorial must not fire")
	}
	if e.StepIndex() != 1 {
		t.Errorf("Exit should keep step 1, got %d", e.StepIndex())
	}
}

func TestNilEngine(t *testing.T) {
	var e *Engine
	if _, ok := e.Fire(Event{Trigger: TriggerTutorialStart}); ok {
		t.Error("Nil engine must not fire")
	}
	if e.Active() || e.Done() || e.StepIndex() != 0 {
		t.Error("Nil engine should report inactive at step 0")
	}
}

func TestDefaultScript(t *testing.T) {
	s := DefaultScript()
	if len(s.Steps) == 0 {
		t.Fatal("Default script has no steps")
	}
	if s.Steps[0].Trigger != TriggerTutorialStart {
		t.Errorf("Expected the script to open with %s, got %s", TriggerTutorialStart, s.Steps[0].Trigger)
	}

	decks, err := s.Decklists(game.LookupSeed)
	if err != nil {
		t.Fatalf("Decklists: %v", err)
	}
	if len(decks[0]) != len(s.Decks.You) || len(decks[1]) != len(s.Decks.Opponent) {
		t.Errorf("Deck sizes %d/%d do not match script", len(decks[0]), len(decks[1]))
	}
	if decks[0][0].Type != game.CardTypeShard {
		t.Errorf("Tutorial should open with a shard on top, got %s", decks[0][0].Type)
	}
}

func TestParseScriptValidation(t *testing.T) {
	cases := map[string]string{
		"unknown trigger":   "steps:\n  - trigger: onSomething\n",
		"unknown condition": "steps:\n  - trigger: onCardPlayed\n    condition: glitter\n",
		"unknown player":    "steps:\n  - trigger: onTurnStart\n    player: them\n",
		"duplicate id":      "steps:\n  - id: a\n    trigger: onTurnStart\n  - id: a\n    trigger: onAfterTurn\n",
		"no steps":          "name: empty\n",
	}
	for name, src := range cases {
		if _, err := ParseScript([]byte(src)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	s, err := ParseScript([]byte("steps:\n  - trigger: onTurnStart\n    turn: 2\n    player: opponent\n"))
	if err != nil {
		t.Fatalf("ParseScript: %v", err)
	}
	if s.Steps[0].Turn == nil || *s.Steps[0].Turn != 2 {
		t.Errorf("Expected turn constraint 2, got %v", s.Steps[0].Turn)
	}
}

// TestScriptAgainstMatch drives a real match through the first turn and feeds
// the engine the events a session would.
func TestScriptAgainstMatch(t *testing.T) {
	s := DefaultScript()
	decks, err := s.Decklists(game.LookupSeed)
	if err != nil {
		t.Fatal(err)
	}
	m := game.NewMatch(game.MatchConfig{Decks: decks, NoShuffle: true})
	eng := game.NewEngine()
	tut := s.NewEngine()

	tut.Fire(Event{Trigger: TriggerTutorialStart})
	tut.Fire(Event{Trigger: TriggerBoardReady})
	eng.StartNextTurn(m)
	tut.Fire(Event{Trigger: TriggerTurnStart, Turn: m.Turn, Player: PlayerLabel(m.ActivePlayer)})

	for _, want := range []game.CardType{game.CardTypeShard, game.CardTypeAvatar} {
		var id int
		for _, ci := range m.Players[0].Hand {
			if ci.Card.Type == want {
				id = ci.ID
				break
			}
		}
		if id == 0 {
			t.Fatalf("No %s in tutorial hand", want)
		}
		out := eng.PlayCard(m, id)
		if !out.OK() {
			t.Fatalf("Play %s: %s", want, out.Result)
		}
		tut.Fire(Event{Trigger: TriggerCardPlayed, Turn: m.Turn, Player: PlayerYou, HasCard: true, CardType: want})
	}

	cur, _ := tut.Current()
	if !strings.HasPrefix(cur.ID, "pass-turn") {
		t.Errorf("Expected to wait on pass-turn, got %q at %d", cur.ID, tut.StepIndex())
	}

	// The avatar played this turn can attack straight away, as the step says.
	if out := eng.AttackWithAll(m); out.Result != game.ResultOK {
		t.Errorf("Expected the new avatar to attack, got %s", out.Result)
	}
	for _, step := range s.Steps {
		if step.ID == "first-avatar" && !strings.Contains(step.Message, "this turn") {
			t.Errorf("first-avatar message should say avatars attack this turn: %q", step.Message)
		}
	}
}
