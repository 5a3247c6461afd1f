package game

import "fmt"

// --- Enums ---

type Phase int

const (
	PhaseNone Phase = iota
	PhaseReady
	PhaseDraw
	PhaseKLRecalc
	PhaseMain
	PhaseCombat
	PhaseEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseReady:
		return "Ready"
	case PhaseDraw:
		return "Draw"
	case PhaseKLRecalc:
		return "KLRecalc"
	case PhaseMain:
		return "Main"
	case PhaseCombat:
		return "Combat"
	case PhaseEnd:
		return "End"
	default:
		return "None"
	}
}

type CardType int

const (
	CardTypeAvatar CardType = iota
	CardTypeShard
	CardTypeRelic
	CardTypeSupport
	CardTypeTechnique
	CardTypeDeity
)

func (ct CardType) String() string {
	switch ct {
	case CardTypeAvatar:
		return "Avatar"
	case CardTypeShard:
		return "Shard"
	case CardTypeRelic:
		return "Relic"
	case CardTypeSupport:
		return "Support"
	case CardTypeTechnique:
		return "Technique"
	case CardTypeDeity:
		return "Deity"
	default:
		return "Unknown"
	}
}

// ParseCardType maps a card sheet type name to a CardType.
func ParseCardType(s string) (CardType, bool) {
	switch s {
	case "Avatar", "avatar":
		return CardTypeAvatar, true
	case "Shard", "shard":
		return CardTypeShard, true
	case "Relic", "relic":
		return CardTypeRelic, true
	case "Support", "support":
		return CardTypeSupport, true
	case "Technique", "technique":
		return CardTypeTechnique, true
	case "Deity", "deity":
		return CardTypeDeity, true
	}
	return 0, false
}

type ZoneType int

const (
	ZoneDeck ZoneType = iota
	ZoneHand
	ZoneShardRow
	ZoneFrontline
	ZoneDomainRow
	ZoneCrypt
)

func (z ZoneType) String() string {
	switch z {
	case ZoneDeck:
		return "Deck"
	case ZoneHand:
		return "Hand"
	case ZoneShardRow:
		return "Shard Row"
	case ZoneFrontline:
		return "Frontline"
	case ZoneDomainRow:
		return "Domain Row"
	case ZoneCrypt:
		return "Crypt"
	default:
		return "Unknown"
	}
}

// --- Card definition (static, from the catalog) ---

// AvatarStats holds the fields only an Avatar carries.
type AvatarStats struct {
	Power int
	Guard int
}

// DeityStats holds the fields only a Deity carries.
type DeityStats struct {
	Essence int
	KLInfo  string
}

// Card is an immutable card template. Exactly one of Avatar/Deity is set,
// matching Type; the other variants carry neither.
type Card struct {
	ID      string
	Name    string
	Type    CardType
	Cost    int
	Effect  string
	Rarity  string
	Aspects []string
	Domain  string
	Image   string

	Avatar *AvatarStats
	Deity  *DeityStats
}

func (c *Card) String() string {
	return c.Name
}

// Power returns the attack power of an Avatar, 0 for every other type.
func (c *Card) Power() int {
	if c.Avatar == nil {
		return 0
	}
	return c.Avatar.Power
}

// Guard returns the toughness of an Avatar, 0 for every other type.
func (c *Card) Guard() int {
	if c.Avatar == nil {
		return 0
	}
	return c.Avatar.Guard
}

// NewAvatar builds an Avatar template.
func NewAvatar(id, name string, cost, power, guard int) *Card {
	return &Card{ID: id, Name: name, Type: CardTypeAvatar, Cost: cost, Avatar: &AvatarStats{Power: power, Guard: guard}}
}

// NewShard builds a Shard template.
func NewShard(id, name string, cost int) *Card {
	return &Card{ID: id, Name: name, Type: CardTypeShard, Cost: cost}
}

// NewDeity builds a Deity template.
func NewDeity(id, name string, cost, essence int) *Card {
	return &Card{ID: id, Name: name, Type: CardTypeDeity, Cost: cost, Deity: &DeityStats{Essence: essence}}
}

// NewCard builds a template of a type with no variant-specific fields
// (Relic, Support, Technique).
func NewCard(id, name string, t CardType, cost int) *Card {
	return &Card{ID: id, Name: name, Type: t, Cost: cost}
}

// --- CardInstance (runtime copy of a card in a match) ---

type CardInstance struct {
	Card   *Card
	ID     int // unique instance ID within a match
	Owner  int // player index (0 or 1)
	Zone   ZoneType
	Tapped bool
}

func (ci *CardInstance) String() string {
	if ci == nil {
		return "(empty)"
	}
	if ci.Card.Type == CardTypeAvatar {
		state := "ready"
		if ci.Tapped {
			state = "tapped"
		}
		return fmt.Sprintf("%s (%d/%d, %s)", ci.Card.Name, ci.Card.Power(), ci.Card.Guard(), state)
	}
	return ci.Card.Name
}

// CanAttack reports whether the instance is an eligible attacker.
func (ci *CardInstance) CanAttack() bool {
	return !ci.Tapped && ci.Card.Power() > 0
}
