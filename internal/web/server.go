package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"golang.org/x/time/rate"

	"github.com/peterkuimelis/shardwars/internal/campaign"
	"github.com/peterkuimelis/shardwars/internal/catalog"
	"github.com/peterkuimelis/shardwars/internal/game"
	swnet "github.com/peterkuimelis/shardwars/internal/net"
	"github.com/peterkuimelis/shardwars/internal/profile"
	"github.com/peterkuimelis/shardwars/internal/session"
)

//go:embed static
var staticFiles embed.FS

// CardInfo is the JSON representation of a card for the /api/cards endpoint.
type CardInfo struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Cost    int      `json:"cost"`
	Rarity  string   `json:"rarity,omitempty"`
	Aspects []string `json:"aspects,omitempty"`
	Domain  string   `json:"domain,omitempty"`
	Effect  string   `json:"effect,omitempty"`
	Power   int      `json:"power,omitempty"`
	Guard   int      `json:"guard,omitempty"`
	Essence int      `json:"essence,omitempty"`
	KLInfo  string   `json:"klInfo,omitempty"`
	Image   string   `json:"image,omitempty"`
}

// CardsResponse is the /api/cards payload.
type CardsResponse struct {
	CardBack string     `json:"cardBack"`
	Cards    []CardInfo `json:"cards"`
}

// CampaignResponse is the /api/campaign payload: acts with their nodes and
// whether each node is open for the current profile.
type CampaignResponse struct {
	Acts []ActInfo `json:"acts"`
}

type ActInfo struct {
	campaign.Act
	Unlocked bool       `json:"unlocked"`
	Nodes    []NodeInfo `json:"nodes"`
}

type NodeInfo struct {
	campaign.Node
	Completed bool `json:"completed"`
	Stars     int  `json:"stars"`
}

// Options configures a Server.
type Options struct {
	Cards   *catalog.Store
	Decks   []DeckInfo
	Session session.Options // template for each browser session

	IntentsPerSec float64
	IntentBurst   int
}

// Server is the Shard Wars web UI server. Every WebSocket connection gets its
// own session; profiles are shared.
type Server struct {
	opts Options
	mux  *http.ServeMux
}

// NewServer creates a new web server.
func NewServer(opts Options) *Server {
	if opts.Session.Profiles == nil {
		opts.Session.Profiles = profile.NewManager(nil)
	}
	if opts.Session.Campaign == nil {
		opts.Session.Campaign = campaign.Default()
	}
	if opts.Session.Cards == nil && opts.Cards != nil {
		opts.Session.Cards = opts.Cards
	}
	s := &Server{opts: opts, mux: http.NewServeMux()}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Embedded static files
	staticFS, _ := fs.Sub(staticFiles, "static")

	// Serve index.html at root
	s.mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		f, err := staticFS.Open("index.html")
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer f.Close()
		io.Copy(w, f.(io.Reader))
	})

	// Static CSS/JS
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// API endpoints
	s.mux.HandleFunc("GET /api/cards", s.handleCards)
	s.mux.HandleFunc("GET /api/decks", s.handleDecks)
	s.mux.HandleFunc("GET /api/campaign", s.handleCampaign)
	s.mux.HandleFunc("GET /api/profile", s.handleProfile)
	s.mux.HandleFunc("POST /api/profile/reset", s.handleProfileReset)

	// Match session
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	var cat *catalog.Catalog
	if s.opts.Cards != nil {
		cat = s.opts.Cards.Get()
	}
	resp := CardsResponse{CardBack: cat.CardBack(), Cards: []CardInfo{}}
	for _, c := range cat.AllCards() {
		resp.Cards = append(resp.Cards, cardInfo(c))
	}
	writeJSON(w, resp)
}

func cardInfo(c *game.Card) CardInfo {
	ci := CardInfo{
		ID:      c.ID,
		Name:    c.Name,
		Type:    c.Type.String(),
		Cost:    c.Cost,
		Rarity:  c.Rarity,
		Aspects: c.Aspects,
		Domain:  c.Domain,
		Effect:  c.Effect,
		Image:   c.Image,
	}
	if c.Avatar != nil {
		ci.Power = c.Avatar.Power
		ci.Guard = c.Avatar.Guard
	}
	if c.Deity != nil {
		ci.Essence = c.Deity.Essence
		ci.KLInfo = c.Deity.KLInfo
	}
	return ci
}

func (s *Server) handleDecks(w http.ResponseWriter, r *http.Request) {
	decks := s.opts.Decks
	if decks == nil {
		decks = []DeckInfo{}
	}
	writeJSON(w, decks)
}

func (s *Server) handleCampaign(w http.ResponseWriter, r *http.Request) {
	data := s.opts.Session.Campaign
	p := s.opts.Session.Profiles.LoadOrCreate(r.Context())

	resp := CampaignResponse{Acts: []ActInfo{}}
	for _, a := range data.Acts {
		ai := ActInfo{Act: a, Unlocked: a.Number <= p.CampaignProgress.ActUnlocked, Nodes: []NodeInfo{}}
		for _, n := range data.NodesForAct(a.ID) {
			ai.Nodes = append(ai.Nodes, NodeInfo{Node: n, Completed: p.HasCompleted(n.ID), Stars: p.Stars(n.ID)})
		}
		resp.Acts = append(resp.Acts, ai)
	}
	writeJSON(w, resp)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.opts.Session.Profiles.LoadOrCreate(r.Context()))
}

func (s *Server) handleProfileReset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.opts.Session.Profiles.Reset(r.Context()))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer wsConn.CloseNow()

	ctx := r.Context()
	sess := session.New(s.opts.Session)
	limiter := s.limiter()
	autopilot := s.opts.Session.Autopilot

	// Match updates reach the browser through the session's notifications;
	// the read loop only answers state requests and errors itself.
	updates, unsubscribe := sess.Subscribe(16)
	defer unsubscribe()
	go func() {
		for u := range updates {
			if err := wsjson.Write(ctx, wsConn, swnet.BuildUpdateMessage(u, swnet.Perspective(u, autopilot))); err != nil {
				slog.Debug("websocket write failed", "error", err)
				return
			}
		}
	}()

	for {
		var msg swnet.ClientMessage
		if err := wsjson.Read(ctx, wsConn, &msg); err != nil {
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				slog.Debug("websocket read failed", "error", err)
			}
			return
		}

		var reply *swnet.ServerMessage
		if !limiter.Allow() {
			m := swnet.ErrorMessage(swnet.ErrRateLimited)
			reply = &m
		} else {
			u, err := swnet.Dispatch(sess, msg)
			switch {
			case err != nil:
				m := swnet.ErrorMessage(err)
				reply = &m
			case msg.Type == swnet.MsgState:
				m := swnet.BuildUpdateMessage(u, swnet.Perspective(u, autopilot))
				reply = &m
			}
		}
		if reply == nil {
			continue
		}
		if err := wsjson.Write(ctx, wsConn, reply); err != nil {
			slog.Debug("websocket write failed", "error", err)
			return
		}
	}
}

func (s *Server) limiter() *rate.Limiter {
	if s.opts.IntentsPerSec <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(s.opts.IntentsPerSec), max(s.opts.IntentBurst, 1))
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response failed", "error", err)
	}
}
