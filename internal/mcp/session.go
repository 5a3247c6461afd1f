package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/peterkuimelis/shardwars/internal/game"
	swnet "github.com/peterkuimelis/shardwars/internal/net"
	"github.com/peterkuimelis/shardwars/internal/session"
)

// ActionView is one move available to the agent.
type ActionView struct {
	Tool string `json:"tool"`
	Card int    `json:"card,omitempty"`
	Desc string `json:"desc"`
}

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	swnet.ServerMessage
	GameOver bool         `json:"game_over"`
	Actions  []ActionView `json:"actions"`
}

// GameSession wraps the session an agent drives. Against the autopilot the
// agent is player 0; without it the agent plays both seats.
type GameSession struct {
	sess      *session.Session
	autopilot bool
}

// NewGameSession creates a session from the given options.
func NewGameSession(opts session.Options) *GameSession {
	return &GameSession{sess: session.New(opts), autopilot: opts.Autopilot}
}

// apply runs one intent and builds the tool response.
func (g *GameSession) apply(msg swnet.ClientMessage) (*ToolResponse, error) {
	u, err := swnet.Dispatch(g.sess, msg)
	if err != nil {
		return nil, err
	}
	return g.respond(u), nil
}

func (g *GameSession) respond(u session.Update) *ToolResponse {
	player := swnet.Perspective(u, g.autopilot)
	resp := &ToolResponse{
		ServerMessage: swnet.BuildUpdateMessage(u, player),
		GameOver:      u.Snapshot.Over,
		Actions:       legalActions(u.Snapshot, player),
	}
	if resp.Events == nil {
		resp.Events = []swnet.EventView{}
	}
	if resp.Actions == nil {
		resp.Actions = []ActionView{}
	}
	return resp
}

// legalActions lists the moves that would change the match for the given
// player. Unaffordable cards are left out.
func legalActions(snap game.MatchSnapshot, player int) []ActionView {
	if snap.Over || snap.ActivePlayer != player {
		return nil
	}
	p := snap.Players[player]
	var actions []ActionView
	for _, c := range p.Hand {
		if c.Cost <= p.CurrentKL {
			actions = append(actions, ActionView{
				Tool: "play_card",
				Card: c.InstanceID,
				Desc: fmt.Sprintf("Play %s (%s, %d KL)", c.Name, c.Type, c.Cost),
			})
		}
	}
	if snap.Phase == game.PhaseMain || snap.Phase == game.PhaseCombat {
		power, n := 0, 0
		for _, c := range p.Frontline {
			if !c.Tapped && c.Power > 0 {
				power += c.Power
				n++
			}
		}
		if n > 0 {
			actions = append(actions, ActionView{Tool: "attack", Desc: fmt.Sprintf("Attack with %d avatar(s) for %d", n, power)})
		}
	}
	actions = append(actions,
		ActionView{Tool: "next_phase", Desc: "Advance from " + snap.Phase.String()},
		ActionView{Tool: "end_turn", Desc: "End the turn"},
	)
	return actions
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
