package net

import (
	"fmt"

	"github.com/peterkuimelis/shardwars/internal/session"
)

// Dispatch applies one client intent to the session. Unknown message types
// are an error; rule rejections come back as an update with a non-ok result.
func Dispatch(s *session.Session, msg ClientMessage) (session.Update, error) {
	switch msg.Type {
	case MsgStart:
		switch session.Mode(msg.Mode) {
		case "", session.ModeSolo:
			if msg.Deck != "" || msg.OpponentDeck != "" {
				return s.StartWithDecks(msg.Deck, msg.OpponentDeck)
			}
			return s.Start()
		case session.ModeTutorial:
			return s.StartTutorial()
		case session.ModeCampaign:
			return s.StartCampaign(msg.Node)
		default:
			return session.Update{}, fmt.Errorf("unknown mode %q", msg.Mode)
		}
	case MsgNextPhase:
		return s.AdvancePhase()
	case MsgEndTurn:
		return s.EndTurn()
	case MsgPlay:
		return s.PlayCard(msg.Card)
	case MsgAttack:
		return s.Attack()
	case MsgExitTutorial:
		return s.ExitTutorial()
	case MsgState:
		snap, err := s.Snapshot()
		if err != nil {
			return session.Update{}, err
		}
		mode, node := s.Mode()
		return session.Update{Mode: mode, NodeID: node, Snapshot: snap}, nil
	default:
		return session.Update{}, fmt.Errorf("unknown message type %q", msg.Type)
	}
}

// Perspective picks the seat a single client views the match from: player 0
// against the autopilot, otherwise whoever is active (hotseat).
func Perspective(u session.Update, autopilot bool) int {
	if autopilot || u.Snapshot.ActivePlayer < 0 {
		return 0
	}
	return u.Snapshot.ActivePlayer
}
