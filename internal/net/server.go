package net

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"

	"golang.org/x/time/rate"

	"github.com/peterkuimelis/shardwars/internal/session"
)

// ErrRateLimited is sent to a client that exceeds its intent budget.
var ErrRateLimited = errors.New("too many actions, slow down")

// Server hosts a session for one TCP client.
type Server struct {
	Session   *session.Session
	Port      string
	Autopilot bool // the session plays player 2; otherwise hotseat

	IntentsPerSec float64
	IntentBurst   int
}

// Run listens, waits for a client to join, then serves it until it leaves or
// ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer ln.Close()

	fmt.Printf("Waiting for a player on port %s...\n", s.Port)

	// Accept exactly one connection
	conn, err := ln.Accept()
	if err != nil {
		return fmt.Errorf("accept: %w", err)
	}
	defer conn.Close()

	fmt.Printf("Player connected from %s\n", conn.RemoteAddr())
	return s.Serve(ctx, conn)
}

// PlayLocal runs the session and a terminal REPL in one process over an
// in-memory pipe.
func (s *Server) PlayLocal(ctx context.Context, start ClientMessage) error {
	clientConn, serverConn := net.Pipe()
	defer serverConn.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Serve(ctx, serverConn)
	}()

	err := NewClient(clientConn, os.Stdin, os.Stdout).RunREPL(ctx, start)
	clientConn.Close()
	if serveErr := <-errCh; err == nil {
		err = serveErr
	}
	return err
}

// Serve reads JSON-lines intents from conn and answers each with an update
// or an error message. It returns nil when the client disconnects.
func (s *Server) Serve(ctx context.Context, conn io.ReadWriteCloser) error {
	limiter := s.limiter()
	enc := json.NewEncoder(conn)

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var msg ClientMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			if err := enc.Encode(ErrorMessage(fmt.Errorf("bad message: %w", err))); err != nil {
				return fmt.Errorf("send error: %w", err)
			}
			continue
		}
		if !limiter.Allow() {
			if err := enc.Encode(ErrorMessage(ErrRateLimited)); err != nil {
				return fmt.Errorf("send error: %w", err)
			}
			continue
		}

		reply := s.handle(msg)
		if err := enc.Encode(reply); err != nil {
			return fmt.Errorf("send %s: %w", reply.Type, err)
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("read message: %w", err)
	}
	return nil
}

func (s *Server) handle(msg ClientMessage) ServerMessage {
	u, err := Dispatch(s.Session, msg)
	if err != nil {
		slog.Debug("intent rejected", "type", msg.Type, "err", err)
		return ErrorMessage(err)
	}
	return BuildUpdateMessage(u, Perspective(u, s.Autopilot))
}

func (s *Server) limiter() *rate.Limiter {
	if s.IntentsPerSec <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(s.IntentsPerSec), max(s.IntentBurst, 1))
}
