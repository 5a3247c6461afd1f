// Package session owns one match at a time and serializes every action on it.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/peterkuimelis/shardwars/internal/campaign"
	"github.com/peterkuimelis/shardwars/internal/catalog"
	"github.com/peterkuimelis/shardwars/internal/game"
	"github.com/peterkuimelis/shardwars/internal/log"
	"github.com/peterkuimelis/shardwars/internal/profile"
	"github.com/peterkuimelis/shardwars/internal/tutorial"
)

var (
	// ErrBusy is returned when an action arrives while another is running.
	ErrBusy = errors.New("session: action already in progress")
	// ErrNoMatch is returned by actions issued before a match was started.
	ErrNoMatch = errors.New("session: no match in progress")
	// ErrUnknownNode is returned when a campaign node id is not in the data.
	ErrUnknownNode = errors.New("session: unknown campaign node")
	// ErrNodeLocked is returned when a campaign node's act is not unlocked yet.
	ErrNodeLocked = errors.New("session: campaign node is locked")
)

type Mode string

const (
	ModeSolo     Mode = "solo"
	ModeTutorial Mode = "tutorial"
	ModeCampaign Mode = "campaign"
)

// CardSource supplies the current card catalog. *catalog.Store satisfies it.
type CardSource interface {
	Get() *catalog.Catalog
}

// Options configures a Session. Zero values fall back to built-in data.
type Options struct {
	Rules     game.Rules
	Cards     CardSource
	Script    *tutorial.Script
	Campaign  *campaign.Data
	Profiles  *profile.Manager
	Decks     map[string][]*game.Card // named deck lists for StartWithDecks
	Names     [2]string
	Autopilot bool // the computer plays player 2

	Rand      game.Rand
	NoShuffle bool
	Logger    log.EventLogger // mirrors every match event
}

// Update is what every action returns and every subscriber receives.
type Update struct {
	Mode       Mode
	NodeID     string `json:",omitempty"`
	Result     game.Result
	Snapshot   game.MatchSnapshot
	Events     []log.GameEvent // match events since the previous update
	Focus      *game.Focus
	Tutorial   []tutorial.Step // steps reached by this action
	Transients []game.Transient

	// Set once, on the update that ends a won campaign match.
	Stars   int              `json:",omitempty"`
	Profile *profile.Profile `json:",omitempty"`
}

// Session holds a single match plus its tutorial and campaign context. All
// actions are serialized by an in-flight guard; a second concurrent action is
// rejected with ErrBusy rather than queued.
type Session struct {
	opts   Options
	engine *game.Engine

	inflight sync.Mutex

	mu       sync.RWMutex
	match    *game.Match
	mode     Mode
	nodeID   string
	tut      *tutorial.Engine
	lastSeq  int
	recorded bool

	subMu   sync.Mutex
	subs    map[int]chan Update
	nextSub int
}

// New creates a session with no match.
func New(opts Options) *Session {
	if opts.Rules == (game.Rules{}) {
		opts.Rules = game.DefaultRules()
	}
	if opts.Script == nil {
		opts.Script = tutorial.DefaultScript()
	}
	if opts.Campaign == nil {
		opts.Campaign = campaign.Default()
	}
	if opts.Profiles == nil {
		opts.Profiles = profile.NewManager(nil)
	}
	if opts.Names[0] == "" {
		opts.Names[0] = "You"
	}
	if opts.Names[1] == "" {
		opts.Names[1] = "Rival"
	}
	return &Session{
		opts:   opts,
		engine: game.NewEngine(),
		subs:   make(map[int]chan Update),
	}
}

// Engine exposes the rules engine, mainly to register card effects.
func (s *Session) Engine() *game.Engine {
	return s.engine
}

// Profiles returns the profile manager the session records campaign wins in.
func (s *Session) Profiles() *profile.Manager {
	return s.opts.Profiles
}

// Campaign returns the campaign data.
func (s *Session) Campaign() *campaign.Data {
	return s.opts.Campaign
}

// Start discards any current match and starts a solo match with sample decks
// drawn from the catalog. The first turn begins immediately.
func (s *Session) Start() (Update, error) {
	return s.begin(ModeSolo, "", func() (game.MatchConfig, error) {
		cfg := s.baseConfig()
		deck := game.SampleDeck(s.catalog())
		cfg.Decks = [2][]*game.Card{deck, deck}
		return cfg, nil
	})
}

// StartWithDecks starts a solo match with two named decks from Options.Decks.
func (s *Session) StartWithDecks(you, opponent string) (Update, error) {
	return s.begin(ModeSolo, "", func() (game.MatchConfig, error) {
		cfg := s.baseConfig()
		for i, name := range [2]string{you, opponent} {
			deck, ok := s.opts.Decks[name]
			if !ok {
				return cfg, fmt.Errorf("unknown deck %q", name)
			}
			cfg.Decks[i] = deck
		}
		return cfg, nil
	})
}

// DeckNames lists the named decks available to StartWithDecks.
func (s *Session) DeckNames() []string {
	names := make([]string, 0, len(s.opts.Decks))
	for name := range s.opts.Decks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StartTutorial starts the scripted tutorial match.
func (s *Session) StartTutorial() (Update, error) {
	return s.begin(ModeTutorial, "", func() (game.MatchConfig, error) {
		decks, err := s.opts.Script.Decklists(s.lookup())
		if err != nil {
			return game.MatchConfig{}, err
		}
		cfg := s.baseConfig()
		cfg.Decks = decks
		cfg.NoShuffle = true
		if n := s.opts.Script.Names; n.You != "" || n.Opponent != "" {
			cfg.Names = [2]string{n.You, n.Opponent}
		}
		return cfg, nil
	})
}

// StartCampaign starts a match for a campaign node, applying its battle rules.
// The node's act must be unlocked in the current profile.
func (s *Session) StartCampaign(nodeID string) (Update, error) {
	node, ok := s.opts.Campaign.Node(nodeID)
	if !ok {
		return Update{}, fmt.Errorf("%w: %q", ErrUnknownNode, nodeID)
	}
	p := s.opts.Profiles.LoadOrCreate(context.Background())
	if !s.opts.Campaign.Unlocked(p, nodeID) {
		return Update{}, fmt.Errorf("%w: %q", ErrNodeLocked, nodeID)
	}
	return s.begin(ModeCampaign, nodeID, func() (game.MatchConfig, error) {
		cfg := s.baseConfig()
		deck := game.SampleDeck(s.catalog())
		cfg.Decks = [2][]*game.Card{deck, deck}
		if p.DisplayName != "" {
			cfg.Names[0] = p.DisplayName
		}
		cfg.IDs[0] = p.PlayerID
		cfg.Names[1] = node.Name
		node.Configure(&cfg)
		return cfg, nil
	})
}

func (s *Session) begin(mode Mode, nodeID string, build func() (game.MatchConfig, error)) (Update, error) {
	if !s.inflight.TryLock() {
		return Update{}, ErrBusy
	}
	defer s.inflight.Unlock()

	cfg, err := build()
	if err != nil {
		return Update{}, fmt.Errorf("start %s match: %w", mode, err)
	}

	s.mu.Lock()
	s.match = game.NewMatch(cfg)
	s.mode = mode
	s.nodeID = nodeID
	s.lastSeq = 0
	s.recorded = false
	s.tut = nil

	var evs []tutorial.Event
	if mode == ModeTutorial {
		s.tut = s.opts.Script.NewEngine()
		evs = append(evs,
			tutorial.Event{Trigger: tutorial.TriggerTutorialStart},
			tutorial.Event{Trigger: tutorial.TriggerBoardReady},
		)
	}
	out := s.engine.StartNextTurn(s.match)
	evs = append(evs, s.turnStartEvents(out)...)
	out, evs = s.autopilot(out, evs)
	u := s.update(out, evs)
	s.mu.Unlock()

	slog.Info("match started", "mode", mode, "node", nodeID,
		"player", u.Snapshot.Players[0].Name, "opponent", u.Snapshot.Players[1].Name)
	s.publish(u)
	return u, nil
}

// AdvancePhase moves the active player to the next phase.
func (s *Session) AdvancePhase() (Update, error) {
	return s.act(func(m *game.Match) (game.Outcome, []tutorial.Event) {
		prev := m.Phase
		turn, player := m.Turn, m.ActivePlayer
		started := m.Started()
		attackers := 0
		if started {
			attackers = len(m.CurrentPlayer().Attackers())
		}

		out := s.engine.AdvancePhase(m)
		if !out.OK() {
			return out, nil
		}
		switch {
		case !started:
			return out, s.turnStartEvents(out)
		case prev == game.PhaseMain && m.Phase == game.PhaseCombat:
			return out, []tutorial.Event{combatEvent(turn, player, attackers)}
		case prev == game.PhaseEnd:
			evs := []tutorial.Event{afterTurnEvent(turn, player)}
			return out, append(evs, s.turnStartEvents(out)...)
		}
		return out, nil
	})
}

// EndTurn ends the active player's turn and starts the next one.
func (s *Session) EndTurn() (Update, error) {
	return s.act(func(m *game.Match) (game.Outcome, []tutorial.Event) {
		turn, player := m.Turn, m.ActivePlayer
		started := m.Started()
		out := s.engine.EndTurn(m)
		if !out.OK() {
			return out, nil
		}
		var evs []tutorial.Event
		if started {
			evs = append(evs, afterTurnEvent(turn, player))
		}
		return out, append(evs, s.turnStartEvents(out)...)
	})
}

// PlayCard plays a card from the active player's hand by instance id.
func (s *Session) PlayCard(cardID int) (Update, error) {
	return s.act(func(m *game.Match) (game.Outcome, []tutorial.Event) {
		var card *game.Card
		if m.Started() {
			p := m.CurrentPlayer()
			if i := p.FindInHand(cardID); i >= 0 {
				card = p.Hand[i].Card
			}
		}
		turn, player := m.Turn, m.ActivePlayer
		out := s.engine.PlayCard(m, cardID)
		if !out.OK() || card == nil {
			return out, nil
		}
		return out, []tutorial.Event{cardPlayedEvent(turn, player, card)}
	})
}

// Attack attacks with every ready avatar of the active player.
func (s *Session) Attack() (Update, error) {
	return s.act(func(m *game.Match) (game.Outcome, []tutorial.Event) {
		prev := m.Phase
		turn, player := m.Turn, m.ActivePlayer
		attackers := 0
		if m.Started() {
			attackers = len(m.CurrentPlayer().Attackers())
		}
		out := s.engine.AttackWithAll(m)
		if out.OK() && prev == game.PhaseMain {
			return out, []tutorial.Event{combatEvent(turn, player, attackers)}
		}
		return out, nil
	})
}

// ExitTutorial stops tutorial evaluation. The match continues.
func (s *Session) ExitTutorial() (Update, error) {
	return s.act(func(m *game.Match) (game.Outcome, []tutorial.Event) {
		if s.tut == nil || !s.tut.Active() {
			return game.Outcome{Result: game.ResultNoop}, nil
		}
		s.tut.Exit()
		return game.Outcome{Focus: &game.Focus{Kind: game.FocusInfo, Title: "Tutorial closed"}}, nil
	})
}

// Snapshot returns a copy of the current match.
func (s *Session) Snapshot() (game.MatchSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.match == nil {
		return game.MatchSnapshot{}, ErrNoMatch
	}
	return s.match.Snapshot(), nil
}

// Mode returns the mode of the current match and its campaign node, if any.
func (s *Session) Mode() (Mode, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode, s.nodeID
}

// TutorialStep reports the tutorial's current step index and whether it is
// still evaluating triggers.
func (s *Session) TutorialStep() (index int, active bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tut.StepIndex(), s.tut.Active()
}

// Subscribe registers for every update produced after this call. The returned
// function unsubscribes and closes the channel. Slow subscribers miss updates.
func (s *Session) Subscribe(buffer int) (<-chan Update, func()) {
	ch := make(chan Update, max(buffer, 1))
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

func (s *Session) publish(u Update) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- u:
		default:
			slog.Debug("subscriber full, update dropped", "subscriber", id, "seq", s.lastSeq)
		}
	}
}

// act runs an action under the in-flight guard, lets the autopilot answer,
// and builds the resulting update.
func (s *Session) act(fn func(m *game.Match) (game.Outcome, []tutorial.Event)) (Update, error) {
	if !s.inflight.TryLock() {
		return Update{}, ErrBusy
	}
	defer s.inflight.Unlock()

	s.mu.Lock()
	if s.match == nil {
		s.mu.Unlock()
		return Update{}, ErrNoMatch
	}
	out, evs := fn(s.match)
	if out.OK() {
		out, evs = s.autopilot(out, evs)
	}
	u := s.update(out, evs)
	s.mu.Unlock()

	s.publish(u)
	return u, nil
}

// update fires tutorial events, records a finished campaign match and collects
// the log lines produced since the previous update. Callers hold s.mu.
func (s *Session) update(out game.Outcome, evs []tutorial.Event) Update {
	u := Update{
		Mode:       s.mode,
		NodeID:     s.nodeID,
		Result:     out.Result,
		Focus:      out.Focus,
		Transients: out.Transients,
	}
	for _, ev := range evs {
		if step, ok := s.tut.Fire(ev); ok {
			u.Tutorial = append(u.Tutorial, step)
		}
	}
	if s.mode == ModeCampaign && s.match.Over && !s.recorded {
		s.recorded = true
		if s.match.Winner == 0 {
			start := s.match.Rules.StartingEssence
			if n, ok := s.opts.Campaign.Node(s.nodeID); ok {
				start += n.Rules.PlayerLife
			}
			u.Stars = campaign.StarsFor(s.match.Players[0].Essence, start)
			p, _ := s.opts.Campaign.Complete(context.Background(), s.opts.Profiles, s.nodeID, u.Stars)
			u.Profile = &p
			slog.Info("campaign node completed", "node", s.nodeID, "stars", u.Stars)
		}
	}
	u.Events = s.match.Log.Since(s.lastSeq)
	s.lastSeq = s.match.Log.LastSeq()
	u.Snapshot = s.match.Snapshot()
	return u
}

func (s *Session) turnStartEvents(out game.Outcome) []tutorial.Event {
	if !out.OK() || s.match.Over {
		return nil
	}
	return []tutorial.Event{{
		Trigger: tutorial.TriggerTurnStart,
		Turn:    s.match.Turn,
		Player:  tutorial.PlayerLabel(s.match.ActivePlayer),
	}}
}

func combatEvent(turn, player, attackers int) tutorial.Event {
	return tutorial.Event{
		Trigger:   tutorial.TriggerCombatAvailable,
		Turn:      turn,
		Player:    tutorial.PlayerLabel(player),
		Attackers: attackers,
	}
}

func cardPlayedEvent(turn, player int, card *game.Card) tutorial.Event {
	return tutorial.Event{
		Trigger:  tutorial.TriggerCardPlayed,
		Turn:     turn,
		Player:   tutorial.PlayerLabel(player),
		CardType: card.Type,
		HasCard:  true,
	}
}

func afterTurnEvent(turn, player int) tutorial.Event {
	return tutorial.Event{
		Trigger: tutorial.TriggerAfterTurn,
		Turn:    turn,
		Player:  tutorial.PlayerLabel(player),
	}
}

func (s *Session) baseConfig() game.MatchConfig {
	return game.MatchConfig{
		Rules:     s.opts.Rules,
		Names:     s.opts.Names,
		Rand:      s.opts.Rand,
		NoShuffle: s.opts.NoShuffle,
		Logger:    s.opts.Logger,
	}
}

func (s *Session) catalog() *catalog.Catalog {
	if s.opts.Cards == nil {
		return nil
	}
	return s.opts.Cards.Get()
}

func (s *Session) lookup() game.LookupFunc {
	cat := s.catalog()
	return game.ChainLookup(cat.Lookup, game.LookupSeed)
}
