package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/shardwars/internal/catalog"
	"github.com/peterkuimelis/shardwars/internal/game"
	swnet "github.com/peterkuimelis/shardwars/internal/net"
	"github.com/peterkuimelis/shardwars/internal/profile"
	"github.com/peterkuimelis/shardwars/internal/session"
)

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(NewServer(opts).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, v any) {
	t.Helper()
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(res.Body).Decode(v))
}

func TestIndex(t *testing.T) {
	ts := newTestServer(t, Options{})

	res, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, err = http.Get(ts.URL + "/static/app.js")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, err = http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestCards(t *testing.T) {
	store := catalog.NewStore(filepath.Join("..", "..", "data", "cards.tsv"))
	ts := newTestServer(t, Options{Cards: store})

	var resp CardsResponse
	getJSON(t, ts.URL+"/api/cards", &resp)
	assert.Len(t, resp.Cards, store.Get().Len())
	assert.NotEmpty(t, resp.CardBack)

	var avatar, deity bool
	for _, c := range resp.Cards {
		switch c.Type {
		case "Avatar":
			avatar = avatar || c.Power > 0
		case "Deity":
			deity = deity || c.Essence > 0
		}
	}
	assert.True(t, avatar, "avatars carry power")
	assert.True(t, deity, "deities carry essence")
}

func TestCardsWithoutCatalog(t *testing.T) {
	ts := newTestServer(t, Options{})
	var resp CardsResponse
	getJSON(t, ts.URL+"/api/cards", &resp)
	assert.Empty(t, resp.Cards)
	assert.Equal(t, catalog.DefaultCardBack, resp.CardBack)
}

func TestCampaignAndProfile(t *testing.T) {
	mgr := profile.NewManager(nil)
	ts := newTestServer(t, Options{Session: session.Options{Profiles: mgr}})

	var camp CampaignResponse
	getJSON(t, ts.URL+"/api/campaign", &camp)
	require.Len(t, camp.Acts, 3)
	assert.True(t, camp.Acts[0].Unlocked)
	assert.False(t, camp.Acts[1].Unlocked)
	assert.Len(t, camp.Acts[0].Nodes, 3)
	assert.Equal(t, "act1_node1", camp.Acts[0].Nodes[0].ID)

	var p profile.Profile
	getJSON(t, ts.URL+"/api/profile", &p)
	assert.NotEmpty(t, p.PlayerID)

	res, err := http.Post(ts.URL+"/api/profile/reset", "application/json", nil)
	require.NoError(t, err)
	defer res.Body.Close()
	var reset profile.Profile
	require.NoError(t, json.NewDecoder(res.Body).Decode(&reset))
	assert.NotEqual(t, p.PlayerID, reset.PlayerID)
}

func TestDecks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`decks:
  - name: Vanguard
    cards:
      - {id: NE-001, count: 3}
      - {id: NE-002, count: 2}
  - name: Scouts
    cards:
      - {id: NE-008, count: 4}
`), 0o644))

	decks, infos, err := LoadDecks(path, game.LookupSeed)
	require.NoError(t, err)
	assert.Len(t, decks["Vanguard"], 5)
	require.Len(t, infos, 2)
	assert.Equal(t, DeckInfo{Number: 1, Name: "Vanguard", Size: 5, Cards: []string{"Bridge Vanguard", "Shardline Adept"}}, infos[0])

	ts := newTestServer(t, Options{Decks: infos})
	var got []DeckInfo
	getJSON(t, ts.URL+"/api/decks", &got)
	assert.Equal(t, infos, got)

	_, _, err = LoadDecks(filepath.Join(t.TempDir(), "missing.yaml"), game.LookupSeed)
	assert.Error(t, err)
}

func dialWS(t *testing.T, ts *httptest.Server) (*websocket.Conn, context.Context) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn, ctx
}

func roundTrip(t *testing.T, ctx context.Context, conn *websocket.Conn, msg swnet.ClientMessage) swnet.ServerMessage {
	t.Helper()
	require.NoError(t, wsjson.Write(ctx, conn, msg))
	var reply swnet.ServerMessage
	require.NoError(t, wsjson.Read(ctx, conn, &reply))
	return reply
}

func TestWebSocketMatch(t *testing.T) {
	ts := newTestServer(t, Options{Session: session.Options{NoShuffle: true, Autopilot: true}})
	conn, ctx := dialWS(t, ts)

	reply := roundTrip(t, ctx, conn, swnet.ClientMessage{Type: swnet.MsgStart, Mode: "tutorial"})
	require.Equal(t, swnet.MsgUpdate, reply.Type)
	assert.Equal(t, "tutorial", reply.Mode)
	assert.Len(t, reply.Tutorial, 3)

	reply = roundTrip(t, ctx, conn, swnet.ClientMessage{Type: swnet.MsgEndTurn})
	require.Equal(t, swnet.MsgUpdate, reply.Type)
	assert.Equal(t, 3, reply.State.Turn)

	reply = roundTrip(t, ctx, conn, swnet.ClientMessage{Type: swnet.MsgPlay, Card: 99999})
	assert.Equal(t, "noop", reply.Result)

	reply = roundTrip(t, ctx, conn, swnet.ClientMessage{Type: "bogus"})
	assert.Equal(t, swnet.MsgError, reply.Type)
}

// Actions are answered by the session's update stream and state requests by
// the read loop; either way each intent gets exactly one message.
func TestWebSocketOneMessagePerIntent(t *testing.T) {
	ts := newTestServer(t, Options{Session: session.Options{NoShuffle: true, Autopilot: true}})
	conn, ctx := dialWS(t, ts)

	reply := roundTrip(t, ctx, conn, swnet.ClientMessage{Type: swnet.MsgStart})
	require.Equal(t, swnet.MsgUpdate, reply.Type)
	require.NotEmpty(t, reply.Events)

	reply = roundTrip(t, ctx, conn, swnet.ClientMessage{Type: swnet.MsgEndTurn})
	require.Equal(t, swnet.MsgUpdate, reply.Type)
	assert.Equal(t, 3, reply.State.Turn, "autopilot turn arrives in the same update")
	assert.NotEmpty(t, reply.Events)

	reply = roundTrip(t, ctx, conn, swnet.ClientMessage{Type: swnet.MsgState})
	require.Equal(t, swnet.MsgUpdate, reply.Type)
	assert.Equal(t, 3, reply.State.Turn)
	assert.Empty(t, reply.Events, "state is read-only")
}

func TestWebSocketSessionsAreSeparate(t *testing.T) {
	ts := newTestServer(t, Options{})
	a, ctx := dialWS(t, ts)
	b, _ := dialWS(t, ts)

	reply := roundTrip(t, ctx, a, swnet.ClientMessage{Type: swnet.MsgStart})
	require.Equal(t, swnet.MsgUpdate, reply.Type)

	reply = roundTrip(t, ctx, b, swnet.ClientMessage{Type: swnet.MsgState})
	assert.Equal(t, swnet.MsgError, reply.Type, "second connection has no match")
}

func TestWebSocketRateLimit(t *testing.T) {
	ts := newTestServer(t, Options{IntentsPerSec: 0.001, IntentBurst: 1})
	conn, ctx := dialWS(t, ts)

	reply := roundTrip(t, ctx, conn, swnet.ClientMessage{Type: swnet.MsgStart})
	assert.Equal(t, swnet.MsgUpdate, reply.Type)
	reply = roundTrip(t, ctx, conn, swnet.ClientMessage{Type: swnet.MsgState})
	assert.Equal(t, swnet.ErrRateLimited.Error(), reply.Error)
}
