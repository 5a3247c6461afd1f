package log

// EventType enumerates all observable match events.
type EventType int

const (
	EventMatchStart EventType = iota
	EventNewTurn
	EventPhaseChange
	EventReady
	EventDraw
	EventDrawFailed
	EventKLChange
	EventGodCharge
	EventTurnSummary
	EventPlayShard
	EventPlayAvatar
	EventPlayCard
	EventPlayRejected
	EventAttackDeclare
	EventNoAttackers
	EventEssenceChange
	EventDefeat
	EventGameOver
	EventActionRejected
)

func (e EventType) String() string {
	switch e {
	case EventMatchStart:
		return "MatchStart"
	case EventNewTurn:
		return "NewTurn"
	case EventPhaseChange:
		return "PhaseChange"
	case EventReady:
		return "Ready"
	case EventDraw:
		return "Draw"
	case EventDrawFailed:
		return "DrawFailed"
	case EventKLChange:
		return "KLChange"
	case EventGodCharge:
		return "GodCharge"
	case EventTurnSummary:
		return "TurnSummary"
	case EventPlayShard:
		return "PlayShard"
	case EventPlayAvatar:
		return "PlayAvatar"
	case EventPlayCard:
		return "PlayCard"
	case EventPlayRejected:
		return "PlayRejected"
	case EventAttackDeclare:
		return "AttackDeclare"
	case EventNoAttackers:
		return "NoAttackers"
	case EventEssenceChange:
		return "EssenceChange"
	case EventDefeat:
		return "Defeat"
	case EventGameOver:
		return "GameOver"
	case EventActionRejected:
		return "ActionRejected"
	default:
		return "Unknown"
	}
}

// GameEvent represents a single observable event in a match.
type GameEvent struct {
	Seq     int       // monotonic sequence number
	Turn    int       // which turn (1-based, 0 before the first turn)
	Phase   string    // current phase name (e.g. "Main")
	Player  int       // acting player (0 or 1)
	Type    EventType // event type
	Card    string    // card name (if applicable)
	Details string    // human-readable detail string
}
