package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/peterkuimelis/shardwars/internal/log"
)

const (
	StartingEssence  = 20
	BaseKL           = 3
	KLCap            = 31
	GodThreshold     = 13
	MaxGodCharges    = 3
	GodChargeMinTurn = 3
	InitialHandSize  = 5
)

// Rules holds the numeric constants of a match.
type Rules struct {
	StartingEssence  int
	BaseKL           int
	KLCap            int
	GodThreshold     int
	MaxGodCharges    int
	GodChargeMinTurn int
	OpeningHand      int
	LogCapacity      int
}

// DefaultRules returns the standard rule set.
func DefaultRules() Rules {
	return Rules{
		StartingEssence:  StartingEssence,
		BaseKL:           BaseKL,
		KLCap:            KLCap,
		GodThreshold:     GodThreshold,
		MaxGodCharges:    MaxGodCharges,
		GodChargeMinTurn: GodChargeMinTurn,
		OpeningHand:      InitialHandSize,
		LogCapacity:      log.DefaultCapacity,
	}
}

// Rand is the random source used for shuffling.
type Rand interface {
	Intn(n int) int
}

// Player represents one player's entire state.
type Player struct {
	ID   string
	Name string

	Essence         int
	BaseKL          int
	CurrentKL       int
	KLCap           int
	GodCharges      int
	GodChargesSpent int

	Deck      []*CardInstance // front of the slice is the next draw
	Hand      []*CardInstance
	ShardRow  []*CardInstance
	Frontline []*CardInstance
	DomainRow []*CardInstance
	Crypt     []*CardInstance
}

// DeckCount returns the number of cards remaining in the deck.
func (p *Player) DeckCount() int {
	return len(p.Deck)
}

// DrawCard removes the front card of the deck and appends it to the hand.
// Returns the drawn card, or nil if the deck is empty.
func (p *Player) DrawCard() *CardInstance {
	if len(p.Deck) == 0 {
		return nil
	}
	card := p.Deck[0]
	p.Deck = p.Deck[1:]
	card.Zone = ZoneHand
	p.Hand = append(p.Hand, card)
	return card
}

// FindInHand returns the hand index of the instance with the given ID, or -1.
func (p *Player) FindInHand(id int) int {
	for i, c := range p.Hand {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// RemoveFromHand removes the card at index i from the hand, keeping order.
func (p *Player) RemoveFromHand(i int) *CardInstance {
	card := p.Hand[i]
	p.Hand = append(p.Hand[:i:i], p.Hand[i+1:]...)
	return card
}

// PlaceShard appends a card to the shard row.
func (p *Player) PlaceShard(card *CardInstance) {
	card.Zone = ZoneShardRow
	p.ShardRow = append(p.ShardRow, card)
}

// PlaceAvatar appends a card to the frontline, untapped.
func (p *Player) PlaceAvatar(card *CardInstance) {
	card.Zone = ZoneFrontline
	card.Tapped = false
	p.Frontline = append(p.Frontline, card)
}

// SendToCrypt appends a card to the crypt.
func (p *Player) SendToCrypt(card *CardInstance) {
	card.Zone = ZoneCrypt
	card.Tapped = false
	p.Crypt = append(p.Crypt, card)
}

// UntapFrontline readies every frontline avatar and returns how many were tapped.
func (p *Player) UntapFrontline() int {
	n := 0
	for _, c := range p.Frontline {
		if c.Tapped {
			c.Tapped = false
			n++
		}
	}
	return n
}

// Attackers returns the untapped frontline avatars with power above zero.
func (p *Player) Attackers() []*CardInstance {
	var result []*CardInstance
	for _, c := range p.Frontline {
		if c.CanAttack() {
			result = append(result, c)
		}
	}
	return result
}

// CardCount returns the number of instances across all six zones.
func (p *Player) CardCount() int {
	return len(p.Deck) + len(p.Hand) + len(p.ShardRow) + len(p.Frontline) + len(p.DomainRow) + len(p.Crypt)
}

// --- Match ---

// MatchConfig holds configuration for creating a new match.
type MatchConfig struct {
	Rules     Rules
	Names     [2]string
	IDs       [2]string
	Decks     [2][]*Card // card templates per player; empty uses the seed list
	Rand      Rand       // shuffle source (nil for time-seeded)
	NoShuffle bool       // keep deck order (scripted decks, deterministic tests)

	EssenceBonus [2]int // added to starting essence
	BaseKLBonus  [2]int // added to base KL

	Logger log.EventLogger // optional mirror of the match log
}

// Match holds the complete state of one match.
type Match struct {
	Players      [2]*Player
	ActivePlayer int // -1 before the first turn
	Turn         int // 0 before the first turn
	Phase        Phase
	Rules        Rules
	Log          *log.RingLogger

	Over   bool
	Winner int // 0, 1, or -1 while the match is running
	Result string

	mirror log.EventLogger
	nextID int
}

// NewMatch creates a fresh match: decks are built and shuffled, opening hands
// drawn, and the match waits for its first StartNextTurn.
func NewMatch(cfg MatchConfig) *Match {
	rules := cfg.Rules
	if rules == (Rules{}) {
		rules = DefaultRules()
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	m := &Match{
		ActivePlayer: -1,
		Phase:        PhaseNone,
		Rules:        rules,
		Log:          log.NewRingLogger(rules.LogCapacity),
		Winner:       -1,
		mirror:       cfg.Logger,
	}

	for i := 0; i < 2; i++ {
		name := cfg.Names[i]
		if name == "" {
			name = fmt.Sprintf("P%d", i+1)
		}
		id := cfg.IDs[i]
		if id == "" {
			id = fmt.Sprintf("player-%d", i+1)
		}
		base := rules.BaseKL + cfg.BaseKLBonus[i]
		p := &Player{
			ID:        id,
			Name:      name,
			Essence:   rules.StartingEssence + cfg.EssenceBonus[i],
			BaseKL:    base,
			CurrentKL: min(rules.KLCap, base),
			KLCap:     rules.KLCap,
		}
		if p.Essence < 0 {
			p.Essence = 0
		}
		m.Players[i] = p
		p.Deck = m.BuildDeck(i, cfg.Decks[i], rng, !cfg.NoShuffle)
	}

	for n := 0; n < rules.OpeningHand; n++ {
		for i := 0; i < 2; i++ {
			m.Players[i].DrawCard()
		}
	}

	m.log(log.NewMatchStartEvent(m.Players[0].Name, m.Players[1].Name))
	return m
}

// NextID generates a unique card instance ID.
func (m *Match) NextID() int {
	m.nextID++
	return m.nextID
}

// Opponent returns the index of the other player.
func (m *Match) Opponent(player int) int {
	return 1 - player
}

// Started reports whether the first turn has begun.
func (m *Match) Started() bool {
	return m.ActivePlayer >= 0
}

// CurrentPlayer returns the active player, or nil before the first turn.
func (m *Match) CurrentPlayer() *Player {
	if !m.Started() {
		return nil
	}
	return m.Players[m.ActivePlayer]
}

// OpponentPlayer returns the non-active player, or nil before the first turn.
func (m *Match) OpponentPlayer() *Player {
	if !m.Started() {
		return nil
	}
	return m.Players[m.Opponent(m.ActivePlayer)]
}

// CreateCardInstance creates a CardInstance from a Card template, assigned to a player.
func (m *Match) CreateCardInstance(card *Card, owner int) *CardInstance {
	return &CardInstance{
		Card:  card,
		ID:    m.NextID(),
		Owner: owner,
		Zone:  ZoneDeck,
	}
}

// CardCount returns the number of instances across both players' zones.
func (m *Match) CardCount() int {
	return m.Players[0].CardCount() + m.Players[1].CardCount()
}

// finish marks the match as over with the given winner.
func (m *Match) finish(winner int) {
	m.Over = true
	m.Winner = winner
	m.Result = fmt.Sprintf("%s wins — %s's Essence reached 0", m.Players[winner].Name, m.Players[m.Opponent(winner)].Name)
}

// log appends an event to the match log and its mirror.
func (m *Match) log(event log.GameEvent) {
	m.Log.Log(event)
	if m.mirror != nil {
		m.mirror.Log(event)
	}
}
