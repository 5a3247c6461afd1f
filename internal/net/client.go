package net

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
)

// Client talks to a game server and provides a terminal REPL.
type Client struct {
	conn io.ReadWriter
	in   *bufio.Reader
	out  io.Writer

	state *StateView // last state received
}

// NewClient creates a client over an established connection.
func NewClient(conn io.ReadWriter, in io.Reader, out io.Writer) *Client {
	return &Client{conn: conn, in: bufio.NewReader(in), out: out}
}

// Connect dials a server, starts a match with the given message, and runs
// the REPL on the terminal.
func Connect(ctx context.Context, addr string, start ClientMessage) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	fmt.Println("Connected!")
	return NewClient(conn, os.Stdin, os.Stdout).RunREPL(ctx, start)
}

const replHelp = "Commands: n) next phase  e) end turn  p N) play hand card N  a) attack  x) exit tutorial  s) state  q) quit"

// RunREPL sends the start message, then alternates between rendering the
// server's reply and reading the next command.
func (c *Client) RunREPL(ctx context.Context, start ClientMessage) error {
	dec := json.NewDecoder(c.conn)
	enc := json.NewEncoder(c.conn)

	if err := enc.Encode(start); err != nil {
		return fmt.Errorf("send start: %w", err)
	}
	fmt.Fprintln(c.out, replHelp)

	for {
		var msg ServerMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}

		switch msg.Type {
		case MsgError:
			fmt.Fprintf(c.out, "! %s\n", msg.Error)

		case MsgUpdate:
			c.render(msg)

		case MsgGameOver:
			c.render(msg)
			fmt.Fprintln(c.out)
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			fmt.Fprintln(c.out, "          GAME OVER")
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			if msg.State != nil {
				fmt.Fprintln(c.out, msg.State.Result)
			}
			if msg.Stars > 0 {
				fmt.Fprintf(c.out, "Stars: %s\n", strings.Repeat("*", msg.Stars))
			}
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
		next, ok := c.readCommand()
		if !ok {
			return nil
		}
		if err := enc.Encode(next); err != nil {
			return fmt.Errorf("send %s: %w", next.Type, err)
		}
	}
}

// readCommand prompts until it gets a valid command. It returns false on quit
// or end of input.
func (c *Client) readCommand() (ClientMessage, bool) {
	for {
		fmt.Fprint(c.out, "> ")
		line, err := c.in.ReadString('\n')
		fields := strings.Fields(line)
		if len(fields) == 0 {
			if err != nil {
				return ClientMessage{}, false
			}
			continue
		}
		msg, quit, perr := c.parseCommand(fields)
		if quit {
			return ClientMessage{}, false
		}
		if perr != nil {
			fmt.Fprintln(c.out, perr)
			fmt.Fprintln(c.out, replHelp)
			continue
		}
		return msg, true
	}
}

func (c *Client) parseCommand(fields []string) (msg ClientMessage, quit bool, err error) {
	switch strings.ToLower(fields[0]) {
	case "n", "next":
		return ClientMessage{Type: MsgNextPhase}, false, nil
	case "e", "end":
		return ClientMessage{Type: MsgEndTurn}, false, nil
	case "a", "attack":
		return ClientMessage{Type: MsgAttack}, false, nil
	case "x", "exit":
		return ClientMessage{Type: MsgExitTutorial}, false, nil
	case "s", "state":
		return ClientMessage{Type: MsgState}, false, nil
	case "q", "quit":
		return ClientMessage{}, true, nil
	case "p", "play":
		if len(fields) < 2 {
			return msg, false, errors.New("which card? e.g. p 2")
		}
		n, convErr := strconv.Atoi(fields[1])
		var hand []CardView
		if c.state != nil {
			hand = c.state.You.Hand
		}
		if convErr != nil || n < 1 || n > len(hand) {
			return msg, false, fmt.Errorf("enter a hand position between 1 and %d", len(hand))
		}
		return ClientMessage{Type: MsgPlay, Card: hand[n-1].ID}, false, nil
	}
	return msg, false, fmt.Errorf("unknown command %q", fields[0])
}

func (c *Client) render(msg ServerMessage) {
	for _, ev := range msg.Events {
		c.renderEvent(ev)
	}
	if msg.Focus != nil {
		fmt.Fprintf(c.out, "\n» %s\n", msg.Focus.Title)
		for _, line := range msg.Focus.Lines {
			fmt.Fprintf(c.out, "  %s\n", line)
		}
	}
	for _, step := range msg.Tutorial {
		fmt.Fprintf(c.out, "\n[Tutorial] %s\n  %s\n", step.Title, step.Message)
	}
	if msg.State != nil {
		c.state = msg.State
		c.renderState(msg.State)
	}
}

func (c *Client) renderEvent(ev EventView) {
	// Format like the TextLogger
	phase := ev.Phase
	for len(phase) < 10 {
		phase += " "
	}
	fmt.Fprintf(c.out, "T%-2d %s| %s\n", ev.Turn, phase, ev.Details)
}

func (c *Client) renderState(sv *StateView) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "╔══════════════════════════════════════════════════════╗")

	opp := sv.Opponent
	fmt.Fprintf(c.out, "║  %s  Essence: %d  KL: %d/%d  Charges: %d/%d\n",
		strings.ToUpper(opp.Name), opp.Essence, opp.KL, opp.KLCap, opp.GodCharges, opp.MaxGodCharges)
	fmt.Fprintf(c.out, "║  Hand: %d  Deck: %d  Crypt: %d\n", opp.HandCount, opp.DeckCount, opp.CryptCount)
	fmt.Fprintf(c.out, "║  Shards:    %s\n", formatRow(opp.ShardRow))
	fmt.Fprintf(c.out, "║  Frontline: %s\n", formatRow(opp.Frontline))

	fmt.Fprintln(c.out, "║──────────────────────────────────────────────────────")

	you := sv.You
	fmt.Fprintf(c.out, "║  Frontline: %s\n", formatRow(you.Frontline))
	fmt.Fprintf(c.out, "║  Shards:    %s\n", formatRow(you.ShardRow))
	fmt.Fprintf(c.out, "║  %s  Essence: %d  KL: %d/%d  Charges: %d/%d\n",
		strings.ToUpper(you.Name), you.Essence, you.KL, you.KLCap, you.GodCharges, you.MaxGodCharges)
	fmt.Fprintf(c.out, "║  Hand: %d  Deck: %d  Crypt: %d\n", you.HandCount, you.DeckCount, you.CryptCount)
	fmt.Fprintln(c.out, "╚══════════════════════════════════════════════════════╝")

	turnInfo := fmt.Sprintf("Turn %d | %s", sv.Turn, sv.Phase)
	if sv.IsYourTurn {
		turnInfo += " | Your turn"
	} else {
		turnInfo += " | Opponent's turn"
	}
	fmt.Fprintln(c.out, turnInfo)

	if len(you.Hand) > 0 {
		fmt.Fprint(c.out, "\nHand: ")
		for i, cv := range you.Hand {
			fmt.Fprintf(c.out, "[%d] %s (%d)  ", i+1, cv.Name, cv.Cost)
		}
		fmt.Fprintln(c.out)
	}
}

func formatRow(cards []CardView) string {
	if len(cards) == 0 {
		return "[ ]"
	}
	parts := make([]string, len(cards))
	for i, cv := range cards {
		parts[i] = formatCard(cv)
	}
	return strings.Join(parts, " ")
}

func formatCard(cv CardView) string {
	if cv.Type != "Avatar" {
		return fmt.Sprintf("[%s]", cv.Name)
	}
	if cv.Tapped {
		return fmt.Sprintf("[%s %d/%d T]", cv.Name, cv.Power, cv.Guard)
	}
	return fmt.Sprintf("[%s %d/%d]", cv.Name, cv.Power, cv.Guard)
}
