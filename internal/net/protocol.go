package net

// Message types for the JSON-lines protocol shared by the TCP host, the
// WebSocket endpoint and the MCP tools.

// Client message types.
const (
	MsgStart        = "start"
	MsgNextPhase    = "next_phase"
	MsgEndTurn      = "end_turn"
	MsgPlay         = "play"
	MsgAttack       = "attack"
	MsgExitTutorial = "exit_tutorial"
	MsgState        = "state"
)

// Server message types.
const (
	MsgUpdate   = "update"
	MsgError    = "error"
	MsgGameOver = "game_over"
)

// --- Server → Client messages ---

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type string `json:"type"`

	// For "update" and "game_over"
	Mode       string          `json:"mode,omitempty"`
	Node       string          `json:"node,omitempty"`
	Result     string          `json:"result,omitempty"`
	State      *StateView      `json:"state,omitempty"`
	Events     []EventView     `json:"events,omitempty"`
	Focus      *FocusView      `json:"focus,omitempty"`
	Tutorial   []TutorialView  `json:"tutorial,omitempty"`
	Transients []TransientView `json:"transients,omitempty"`
	Stars      int             `json:"stars,omitempty"`

	// For "error"
	Error string `json:"error,omitempty"`
}

// EventView is a simplified match event for the client.
type EventView struct {
	Seq     int    `json:"seq"`
	Turn    int    `json:"turn"`
	Phase   string `json:"phase"`
	Player  int    `json:"player"`
	Type    string `json:"type"`
	Card    string `json:"card,omitempty"`
	Details string `json:"details"`
}

// FocusView is the presentation hint for the last action.
type FocusView struct {
	Kind  string   `json:"kind"`
	Title string   `json:"title"`
	Lines []string `json:"lines,omitempty"`
}

// TutorialView is a tutorial message reached by the last action.
type TutorialView struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// TransientView marks a card for a one-shot animation.
type TransientView struct {
	Kind   string `json:"kind"`
	Player int    `json:"player"`
	Card   int    `json:"card"`
}

// CardView describes one card instance on the board or in hand.
type CardView struct {
	ID     int    `json:"id"`
	CardID string `json:"card_id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Cost   int    `json:"cost"`
	Power  int    `json:"power,omitempty"`
	Guard  int    `json:"guard,omitempty"`
	Tapped bool   `json:"tapped,omitempty"`
	Effect string `json:"effect,omitempty"`
	Image  string `json:"image,omitempty"`
}

// StateView is the match state from one player's perspective.
type StateView struct {
	You        PlayerView `json:"you"`
	Opponent   PlayerView `json:"opponent"`
	Turn       int        `json:"turn"`
	Phase      string     `json:"phase"`
	IsYourTurn bool       `json:"is_your_turn"`
	Over       bool       `json:"over,omitempty"`
	YouWon     bool       `json:"you_won,omitempty"`
	Result     string     `json:"result,omitempty"`
}

// PlayerView shows one side of the board.
type PlayerView struct {
	Name          string     `json:"name"`
	Essence       int        `json:"essence"`
	KL            int        `json:"kl"`
	KLCap         int        `json:"kl_cap"`
	GodCharges    int        `json:"god_charges"`
	MaxGodCharges int        `json:"max_god_charges"`
	HandCount     int        `json:"hand_count"`
	Hand          []CardView `json:"hand,omitempty"` // only for "you"
	ShardRow      []CardView `json:"shard_row"`
	Frontline     []CardView `json:"frontline"`
	DomainRow     []CardView `json:"domain_row"`
	CryptCount    int        `json:"crypt_count"`
	DeckCount     int        `json:"deck_count"`
}

// --- Client → Server messages ---

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"`

	// For "start": "solo" (default), "tutorial" or "campaign"
	Mode string `json:"mode,omitempty"`
	Node string `json:"node,omitempty"` // campaign node id
	// Named decks for a solo start; both empty samples the catalog.
	Deck         string `json:"deck,omitempty"`
	OpponentDeck string `json:"opponent_deck,omitempty"`

	// For "play": the card's instance id
	Card int `json:"card,omitempty"`
}
