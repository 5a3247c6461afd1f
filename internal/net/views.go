package net

import (
	"github.com/peterkuimelis/shardwars/internal/game"
	"github.com/peterkuimelis/shardwars/internal/log"
	"github.com/peterkuimelis/shardwars/internal/session"
)

// BuildStateView creates a StateView from the perspective of the given player.
// The opponent's hand is reduced to a count.
func BuildStateView(snap game.MatchSnapshot, player int) *StateView {
	me := player
	opp := 1 - me

	sv := &StateView{
		Turn:       snap.Turn,
		Phase:      snap.Phase.String(),
		IsYourTurn: snap.ActivePlayer == me,
		Over:       snap.Over,
		YouWon:     snap.Over && snap.Winner == me,
		Result:     snap.Result,
	}
	sv.You = playerView(snap.Players[me], snap.MaxCharges)
	for _, c := range snap.Players[me].Hand {
		sv.You.Hand = append(sv.You.Hand, CardViewOf(c))
	}
	sv.Opponent = playerView(snap.Players[opp], snap.MaxCharges)
	return sv
}

func playerView(p game.PlayerSnapshot, maxCharges int) PlayerView {
	return PlayerView{
		Name:          p.Name,
		Essence:       p.Essence,
		KL:            p.CurrentKL,
		KLCap:         p.KLCap,
		GodCharges:    p.GodCharges,
		MaxGodCharges: maxCharges,
		HandCount:     len(p.Hand),
		ShardRow:      cardViews(p.ShardRow),
		Frontline:     cardViews(p.Frontline),
		DomainRow:     cardViews(p.DomainRow),
		CryptCount:    len(p.Crypt),
		DeckCount:     p.DeckCount,
	}
}

// CardViewOf converts a card snapshot.
func CardViewOf(c game.CardSnapshot) CardView {
	return CardView{
		ID:     c.InstanceID,
		CardID: c.CardID,
		Name:   c.Name,
		Type:   c.Type.String(),
		Cost:   c.Cost,
		Power:  c.Power,
		Guard:  c.Guard,
		Tapped: c.Tapped,
		Effect: c.Effect,
		Image:  c.Image,
	}
}

func cardViews(cards []game.CardSnapshot) []CardView {
	out := make([]CardView, len(cards))
	for i, c := range cards {
		out[i] = CardViewOf(c)
	}
	return out
}

// EventViewOf converts a match log event.
func EventViewOf(ev log.GameEvent) EventView {
	return EventView{
		Seq:     ev.Seq,
		Turn:    ev.Turn,
		Phase:   ev.Phase,
		Player:  ev.Player,
		Type:    ev.Type.String(),
		Card:    ev.Card,
		Details: ev.Details,
	}
}

// BuildUpdateMessage converts a session update into the message sent to a
// client seated as the given player. A finished match is sent as "game_over".
func BuildUpdateMessage(u session.Update, player int) ServerMessage {
	msg := ServerMessage{
		Type:   MsgUpdate,
		Mode:   string(u.Mode),
		Node:   u.NodeID,
		Result: u.Result.String(),
		State:  BuildStateView(u.Snapshot, player),
		Stars:  u.Stars,
	}
	if u.Snapshot.Over {
		msg.Type = MsgGameOver
	}
	for _, ev := range u.Events {
		msg.Events = append(msg.Events, EventViewOf(ev))
	}
	if u.Focus != nil {
		msg.Focus = &FocusView{Kind: string(u.Focus.Kind), Title: u.Focus.Title, Lines: u.Focus.Lines}
	}
	for _, step := range u.Tutorial {
		msg.Tutorial = append(msg.Tutorial, TutorialView{ID: step.ID, Title: step.Title, Message: step.Message})
	}
	for _, t := range u.Transients {
		msg.Transients = append(msg.Transients, TransientView{Kind: t.Kind.String(), Player: t.Player, Card: t.CardID})
	}
	return msg
}

// ErrorMessage wraps an error for the client.
func ErrorMessage(err error) ServerMessage {
	return ServerMessage{Type: MsgError, Error: err.Error()}
}
