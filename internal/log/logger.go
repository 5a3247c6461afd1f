package log

import (
	"fmt"
	"io"
	"strings"
)

// DefaultCapacity is the number of entries a match log keeps.
const DefaultCapacity = 120

// EventLogger is the interface for logging match events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

func (l *MemoryLogger) Events() []GameEvent {
	return l.events
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	return filterType(l.events, t)
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- RingLogger: bounded log, oldest entry evicted first ---

type RingLogger struct {
	buf   []GameEvent
	start int
	size  int
	seq   int
}

// NewRingLogger returns a logger holding at most capacity events.
// A non-positive capacity falls back to DefaultCapacity.
func NewRingLogger(capacity int) *RingLogger {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &RingLogger{buf: make([]GameEvent, capacity)}
}

func (l *RingLogger) Log(event GameEvent) {
	l.seq++
	event.Seq = l.seq
	if l.size < len(l.buf) {
		l.buf[(l.start+l.size)%len(l.buf)] = event
		l.size++
		return
	}
	l.buf[l.start] = event
	l.start = (l.start + 1) % len(l.buf)
}

// Events returns a copy of the retained events, oldest first.
func (l *RingLogger) Events() []GameEvent {
	out := make([]GameEvent, l.size)
	for i := 0; i < l.size; i++ {
		out[i] = l.buf[(l.start+i)%len(l.buf)]
	}
	return out
}

// Since returns the retained events with a sequence number greater than seq.
func (l *RingLogger) Since(seq int) []GameEvent {
	var out []GameEvent
	for i := 0; i < l.size; i++ {
		e := l.buf[(l.start+i)%len(l.buf)]
		if e.Seq > seq {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of retained events.
func (l *RingLogger) Len() int { return l.size }

// Cap returns the maximum number of retained events.
func (l *RingLogger) Cap() int { return len(l.buf) }

// LastSeq returns the sequence number of the most recent event.
func (l *RingLogger) LastSeq() int { return l.seq }

// EventsOfType returns the retained events matching the given type.
func (l *RingLogger) EventsOfType(t EventType) []GameEvent {
	return filterType(l.Events(), t)
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// Tee forwards every event to each logger in order.
type Tee []EventLogger

func (t Tee) Log(event GameEvent) {
	for _, l := range t {
		l.Log(event)
	}
}

// Events returns the events of the first logger.
func (t Tee) Events() []GameEvent {
	if len(t) == 0 {
		return nil
	}
	return t[0].Events()
}

func filterType(events []GameEvent, t EventType) []GameEvent {
	var result []GameEvent
	for _, e := range events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// --- Formatting ---

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	phase := e.Phase
	// Pad phase to 9 chars for alignment
	for len(phase) < 9 {
		phase += " "
	}
	return fmt.Sprintf("T%-2d %s| %s", e.Turn, phase, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---

func NewMatchStartEvent(first string, second string) GameEvent {
	return GameEvent{
		Type:    EventMatchStart,
		Details: fmt.Sprintf("Duel initialized: %s vs %s. %s starts.", first, second, first),
	}
}

func NewTurnEvent(turn int, player int, name string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Ready",
		Player:  player,
		Type:    EventNewTurn,
		Details: fmt.Sprintf("=== Turn %d (%s) ===", turn, name),
	}
}

func NewPhaseChangeEvent(turn int, phase string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventPhaseChange,
		Details: fmt.Sprintf("Phase → %s", phase),
	}
}

func NewReadyEvent(turn int, player int, name string, untapped int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Ready",
		Player:  player,
		Type:    EventReady,
		Details: fmt.Sprintf("%s readies %d avatar(s)", name, untapped),
	}
}

func NewDrawEvent(turn int, phase string, player int, name string, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventDraw,
		Card:    cardName,
		Details: fmt.Sprintf("%s draws %s", name, cardName),
	}
}

func NewDrawFailedEvent(turn int, phase string, player int, name string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventDrawFailed,
		Details: fmt.Sprintf("%s has no cards left to draw", name),
	}
}

func NewKLChangeEvent(turn int, phase string, player int, name string, oldKL, newKL int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventKLChange,
		Details: fmt.Sprintf("%s KL: %d → %d", name, oldKL, newKL),
	}
}

func NewGodChargeEvent(turn int, phase string, player int, name string, charges, max int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventGodCharge,
		Details: fmt.Sprintf("%s gains a God Charge (%d/%d)", name, charges, max),
	}
}

func NewTurnSummaryEvent(turn int, player int, name string, essence, kl, charges int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Main",
		Player:  player,
		Type:    EventTurnSummary,
		Details: fmt.Sprintf("%s — Essence %d, KL %d, God Charges %d", name, essence, kl, charges),
	}
}

func NewPlayShardEvent(turn int, phase string, player int, name string, cardName string, cost int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventPlayShard,
		Card:    cardName,
		Details: fmt.Sprintf("%s plays Shard %s (cost %d)", name, cardName, cost),
	}
}

func NewPlayAvatarEvent(turn int, phase string, player int, name string, cardName string, cost, power int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventPlayAvatar,
		Card:    cardName,
		Details: fmt.Sprintf("%s deploys %s (cost %d, power %d) to the frontline", name, cardName, cost, power),
	}
}

func NewPlayCardEvent(turn int, phase string, player int, name string, cardName string, cost int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventPlayCard,
		Card:    cardName,
		Details: fmt.Sprintf("%s plays %s (cost %d)", name, cardName, cost),
	}
}

func NewPlayRejectedEvent(turn int, phase string, player int, cardName string, cost, kl int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventPlayRejected,
		Card:    cardName,
		Details: fmt.Sprintf("Not enough KL to play %s (cost %d, have %d)", cardName, cost, kl),
	}
}

func NewAttackDeclareEvent(turn int, phase string, player int, name string, attackers []string, total int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventAttackDeclare,
		Details: fmt.Sprintf("%s attacks with %s for %d", name, strings.Join(attackers, ", "), total),
	}
}

func NewNoAttackersEvent(turn int, phase string, player int, name string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventNoAttackers,
		Details: fmt.Sprintf("%s has no ready avatars to attack with", name),
	}
}

func NewEssenceChangeEvent(turn int, phase string, player int, name string, oldEssence, newEssence int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventEssenceChange,
		Details: fmt.Sprintf("%s Essence: %d → %d", name, oldEssence, newEssence),
	}
}

func NewDefeatEvent(turn int, phase string, player int, name string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventDefeat,
		Details: fmt.Sprintf("%s has been defeated", name),
	}
}

func NewGameOverEvent(turn int, phase string, winner int, winnerName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  winner,
		Type:    EventGameOver,
		Details: fmt.Sprintf("Game over — %s wins", winnerName),
	}
}

func NewActionRejectedEvent(turn int, phase string, player int, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  player,
		Type:    EventActionRejected,
		Details: reason,
	}
}
