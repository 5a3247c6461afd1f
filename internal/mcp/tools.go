package mcp

import (
	"context"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	swnet "github.com/peterkuimelis/shardwars/internal/net"
	"github.com/peterkuimelis/shardwars/internal/session"
)

var (
	// activeSession is the singleton game session (one per stdio process).
	activeSession *GameSession
	sessionMu     sync.Mutex

	// sessionOpts configures the session, set by main.
	sessionOpts session.Options
)

// SetSessionOptions sets the options used for the game session and discards
// any existing one.
func SetSessionOptions(opts session.Options) {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	sessionOpts = opts
	activeSession = nil
}

func currentSession(create bool) *GameSession {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	if activeSession == nil && create {
		activeSession = NewGameSession(sessionOpts)
	}
	return activeSession
}

// RegisterTools adds all game tools to the MCP server.
func RegisterTools(s *server.MCPServer) {
	s.AddTool(startGameTool(), handleStartGame)
	s.AddTool(playCardTool(), intentHandler(func(r mcp.CallToolRequest) swnet.ClientMessage {
		return swnet.ClientMessage{Type: swnet.MsgPlay, Card: r.GetInt("card", 0)}
	}))
	s.AddTool(attackTool(), intentHandler(fixedIntent(swnet.MsgAttack)))
	s.AddTool(nextPhaseTool(), intentHandler(fixedIntent(swnet.MsgNextPhase)))
	s.AddTool(endTurnTool(), intentHandler(fixedIntent(swnet.MsgEndTurn)))
	s.AddTool(exitTutorialTool(), intentHandler(fixedIntent(swnet.MsgExitTutorial)))
	s.AddTool(getGameStateTool(), intentHandler(fixedIntent(swnet.MsgState)))
}

// --- Tool definitions ---

func startGameTool() mcp.Tool {
	return mcp.NewTool("start_game",
		mcp.WithDescription("Start a new Essence Crown: Shard Wars match, replacing any match in progress. "+
			"Returns the board, the match log so far and the moves available to you. "+
			"Win by bringing the opponent's Essence to 0."),
		mcp.WithString("mode", mcp.Description("solo (default), tutorial or campaign"), mcp.Enum("solo", "tutorial", "campaign")),
		mcp.WithString("node", mcp.Description("Campaign node id, e.g. act1_node1 (campaign mode only)")),
	)
}

func playCardTool() mcp.Tool {
	return mcp.NewTool("play_card",
		mcp.WithDescription("Play a card from your hand. Shards raise your KL, Avatars join the Frontline. The card must cost no more than your current KL."),
		mcp.WithNumber("card", mcp.Required(), mcp.Description("Instance id of the card in your hand (the 'id' field)")),
	)
}

func attackTool() mcp.Tool {
	return mcp.NewTool("attack",
		mcp.WithDescription("Attack with every ready Avatar. Total power is dealt straight to the opponent's Essence and the attackers tap. Allowed in Main or Combat."),
	)
}

func nextPhaseTool() mcp.Tool {
	return mcp.NewTool("next_phase",
		mcp.WithDescription("Advance Main → Combat → End → next turn."),
	)
}

func endTurnTool() mcp.Tool {
	return mcp.NewTool("end_turn",
		mcp.WithDescription("End your turn. The opponent takes theirs and the response shows your next turn."),
	)
}

func exitTutorialTool() mcp.Tool {
	return mcp.NewTool("exit_tutorial",
		mcp.WithDescription("Stop tutorial messages. The match continues."),
	)
}

func getGameStateTool() mcp.Tool {
	return mcp.NewTool("get_game_state",
		mcp.WithDescription("Get the current board and available moves without acting. Read-only."),
	)
}

// --- Tool handlers ---

func handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	msg := swnet.ClientMessage{
		Type: swnet.MsgStart,
		Mode: request.GetString("mode", string(session.ModeSolo)),
		Node: request.GetString("node", ""),
	}
	if msg.Mode == string(session.ModeCampaign) && msg.Node == "" {
		return mcp.NewToolResultError("node is required in campaign mode"), nil
	}

	resp, err := currentSession(true).apply(msg)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start game: %v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func fixedIntent(msgType string) func(mcp.CallToolRequest) swnet.ClientMessage {
	return func(mcp.CallToolRequest) swnet.ClientMessage {
		return swnet.ClientMessage{Type: msgType}
	}
}

func intentHandler(build func(mcp.CallToolRequest) swnet.ClientMessage) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sess := currentSession(false)
		if sess == nil {
			return mcp.NewToolResultError("No game is running. Use start_game first."), nil
		}
		resp, err := sess.apply(build(request))
		if err != nil {
			return mcp.NewToolResultErrorf("%v", err), nil
		}
		return mcp.NewToolResultText(respondJSON(resp)), nil
	}
}
