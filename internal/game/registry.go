package game

// SeedRegistry maps seed card IDs to their constructor functions. The seed
// list keeps the game playable when no catalog is available.
var SeedRegistry = map[string]func() *Card{
	"NE-001": BridgeVanguard,
	"NE-002": ShardlineAdept,
	"NE-003": RadiantTactician,
	"NE-004": CommandRelay,
	"NE-005": FrontierDomain,
	"NE-006": SolarFlare,
	"NE-007": ShardSoldier,
	"NE-008": GleamScout,
	"NE-009": CommandUplink,
	"NE-010": NullWard,
}

// seedOrder is the documented order of the seed list.
var seedOrder = []string{
	"NE-001", "NE-002", "NE-003", "NE-004", "NE-005",
	"NE-006", "NE-007", "NE-008", "NE-009", "NE-010",
}

func BridgeVanguard() *Card   { return NewAvatar("NE-001", "Bridge Vanguard", 2, 3, 2) }
func ShardlineAdept() *Card   { return NewShard("NE-002", "Shardline Adept", 1) }
func RadiantTactician() *Card { return NewAvatar("NE-003", "Radiant Tactician", 3, 4, 3) }
func CommandRelay() *Card     { return NewCard("NE-004", "Command Relay", CardTypeSupport, 1) }
func FrontierDomain() *Card   { return NewCard("NE-005", "Frontier Domain", CardTypeRelic, 2) }
func SolarFlare() *Card       { return NewCard("NE-006", "Solar Flare", CardTypeRelic, 2) }
func ShardSoldier() *Card     { return NewAvatar("NE-007", "Shard Soldier", 1, 2, 1) }
func GleamScout() *Card       { return NewAvatar("NE-008", "Gleam Scout", 1, 1, 1) }
func CommandUplink() *Card    { return NewCard("NE-009", "Command Uplink", CardTypeSupport, 1) }
func NullWard() *Card         { return NewCard("NE-010", "Null Ward", CardTypeRelic, 3) }

// SeedCards returns a fresh copy of the 10-card seed list in documented order.
func SeedCards() []*Card {
	cards := make([]*Card, 0, len(seedOrder))
	for _, id := range seedOrder {
		cards = append(cards, SeedRegistry[id]())
	}
	return cards
}

// LookupSeed returns the seed card with the given ID, or nil.
func LookupSeed(id string) *Card {
	ctor, ok := SeedRegistry[id]
	if !ok {
		return nil
	}
	return ctor()
}
