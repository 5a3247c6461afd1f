package game

// Result classifies the outcome of an engine operation.
type Result int

const (
	ResultOK Result = iota
	ResultNoop
	ResultInsufficientKL
	ResultNoAttackers
	ResultNotStarted
	ResultWrongPhase
	ResultMatchOver
)

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultNoop:
		return "noop"
	case ResultInsufficientKL:
		return "insufficient_kl"
	case ResultNoAttackers:
		return "no_attackers"
	case ResultNotStarted:
		return "not_started"
	case ResultWrongPhase:
		return "wrong_phase"
	case ResultMatchOver:
		return "match_over"
	default:
		return "unknown"
	}
}

// FocusKind tags a focus descriptor. Only the kind is stable; titles and
// lines are display text.
type FocusKind string

const (
	FocusTurn     FocusKind = "turn"
	FocusPhase    FocusKind = "phase"
	FocusShard    FocusKind = "shard"
	FocusAvatar   FocusKind = "avatar"
	FocusCard     FocusKind = "card"
	FocusReject   FocusKind = "reject"
	FocusAttack   FocusKind = "attack"
	FocusInfo     FocusKind = "info"
	FocusGameOver FocusKind = "gameover"
)

// Focus is a presentation hint produced alongside an action. It carries no
// rule semantics.
type Focus struct {
	Kind  FocusKind `json:"kind"`
	Title string    `json:"title"`
	Lines []string  `json:"lines,omitempty"`
}

// TransientKind enumerates cosmetic card events for the view.
type TransientKind int

const (
	TransientDrawn TransientKind = iota
	TransientPlayed
	TransientTapped
)

func (k TransientKind) String() string {
	switch k {
	case TransientDrawn:
		return "drawn"
	case TransientPlayed:
		return "played"
	case TransientTapped:
		return "tapped"
	default:
		return "unknown"
	}
}

// Transient marks a card for a one-shot visual cue. Transients are never
// stored on match state.
type Transient struct {
	Kind   TransientKind
	Player int
	CardID int
}

// Outcome is what every engine operation returns.
type Outcome struct {
	Result     Result
	Focus      *Focus
	Transients []Transient
}

// OK reports whether the operation changed the match as requested.
func (o Outcome) OK() bool {
	return o.Result == ResultOK
}
