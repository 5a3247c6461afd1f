// Package tutorial matches scripted guidance steps against match events.
package tutorial

import (
	"github.com/peterkuimelis/shardwars/internal/game"
)

// Trigger names an observable point in a match.
type Trigger string

const (
	TriggerTutorialStart   Trigger = "onTutorialStart"
	TriggerBoardReady      Trigger = "onBoardReady"
	TriggerTurnStart       Trigger = "onTurnStart"
	TriggerCardPlayed      Trigger = "onCardPlayed"
	TriggerCombatAvailable Trigger = "onCombatAvailable"
	TriggerAfterTurn       Trigger = "onAfterTurn"
)

// Player labels used by scripts.
const (
	PlayerYou      = "you"
	PlayerOpponent = "opponent"
)

func (t Trigger) valid() bool {
	switch t {
	case TriggerTutorialStart, TriggerBoardReady, TriggerTurnStart,
		TriggerCardPlayed, TriggerCombatAvailable, TriggerAfterTurn:
		return true
	}
	return false
}

// PlayerLabel maps a player index to its script label.
func PlayerLabel(player int) string {
	if player == 0 {
		return PlayerYou
	}
	return PlayerOpponent
}

// Event is what the session reports after each state transition.
type Event struct {
	Trigger   Trigger
	Turn      int
	Player    string
	CardType  game.CardType // onCardPlayed only
	HasCard   bool
	Attackers int // onCombatAvailable only
}

// Step is one line of a tutorial script. Turn, Player and Condition are
// optional constraints; each one present must match.
type Step struct {
	ID        string  `yaml:"id"`
	Trigger   Trigger `yaml:"trigger"`
	Turn      *int    `yaml:"turn,omitempty"`
	Player    string  `yaml:"player,omitempty"`
	Condition string  `yaml:"condition,omitempty"`
	Title     string  `yaml:"title"`
	Message   string  `yaml:"message"`
}

func (s Step) matches(ev Event) bool {
	if s.Trigger != ev.Trigger {
		return false
	}
	if s.Turn != nil && *s.Turn != ev.Turn {
		return false
	}
	if s.Player != "" && s.Player != ev.Player {
		return false
	}
	if s.Condition != "" {
		cond, ok := lookupCondition(s.Condition)
		if !ok || !cond(ev) {
			return false
		}
	}
	return true
}

// Engine walks a script strictly in order. Only the current step is ever
// compared against an event; a mismatched event is dropped. Not safe for
// concurrent use; the owning session serializes calls.
type Engine struct {
	steps     []Step
	active    bool
	stepIndex int
}

// NewEngine starts an active tutorial over the given steps.
func NewEngine(steps []Step) *Engine {
	return &Engine{steps: steps, active: true}
}

// Fire evaluates an event against the current step. On a match the step is
// returned and the engine moves to the next one.
func (e *Engine) Fire(ev Event) (Step, bool) {
	if e == nil || !e.active || e.stepIndex >= len(e.steps) {
		return Step{}, false
	}
	step := e.steps[e.stepIndex]
	if !step.matches(ev) {
		return Step{}, false
	}
	e.stepIndex++
	return step, true
}

// Exit stops evaluation. The step index is kept.
func (e *Engine) Exit() {
	if e != nil {
		e.active = false
	}
}

// Active reports whether events are still being evaluated.
func (e *Engine) Active() bool {
	return e != nil && e.active
}

// StepIndex returns the index of the next step to match.
func (e *Engine) StepIndex() int {
	if e == nil {
		return 0
	}
	return e.stepIndex
}

// Done reports whether every step has fired.
func (e *Engine) Done() bool {
	return e != nil && e.stepIndex >= len(e.steps)
}

// Current returns the step waiting to be matched.
func (e *Engine) Current() (Step, bool) {
	if e == nil || e.stepIndex >= len(e.steps) {
		return Step{}, false
	}
	return e.steps[e.stepIndex], true
}

// Len returns the number of steps in the script.
func (e *Engine) Len() int {
	if e == nil {
		return 0
	}
	return len(e.steps)
}
