// Package profile keeps the player's meta-progression: currencies, unlocks
// and campaign progress.
package profile

import (
	"encoding/json"
	"fmt"
	"slices"
)

// StorageKey is the key the profile record is stored under.
const StorageKey = "essenceCrownProfile_v1"

// XPPerLevel is the experience needed for each level after the first.
const XPPerLevel = 100

// Shard names used for alignment.
var Shards = []string{"estifarr", "lokaya", "hahalakiel", "kaiwass", "halucard"}

type Currencies struct {
	CrownShards   int `json:"crownShards"`
	ArcaneKeys    int `json:"arcaneKeys"`
	EssenceTokens int `json:"essenceTokens"`
}

type NodeStars struct {
	Stars int `json:"stars"`
}

type CampaignProgress struct {
	CompletedNodes []string             `json:"completedNodes"`
	NodeStars      map[string]NodeStars `json:"nodeStars"`
	ActUnlocked    int                  `json:"actUnlocked"`
}

// Profile is the persisted player record.
type Profile struct {
	PlayerID          string           `json:"playerId"`
	DisplayName       string           `json:"displayName"`
	AvatarID          string           `json:"avatarId"`
	ShardAlignment    map[string]int   `json:"shardAlignment"`
	UnlockedDeities   []string         `json:"unlockedDeities"`
	UnlockedCardIDs   []string         `json:"unlockedCardIds"`
	UnlockedCosmetics []string         `json:"unlockedCosmetics"`
	PlayerLevel       int              `json:"playerLevel"`
	XP                int              `json:"xp"`
	Currencies        Currencies       `json:"currencies"`
	CampaignProgress  CampaignProgress `json:"campaignProgress"`
	DeckSlots         []DeckSlot       `json:"deckSlots"`
}

// DeckSlot is a saved deck list.
type DeckSlot struct {
	Name    string   `json:"name"`
	CardIDs []string `json:"cardIds"`
}

// Rewards is a bundle of currency deltas, unlocks and experience.
type Rewards struct {
	CrownShards       int      `json:"crownShards,omitempty"`
	ArcaneKeys        int      `json:"arcaneKeys,omitempty"`
	EssenceTokens     int      `json:"essenceTokens,omitempty"`
	UnlockedDeities   []string `json:"unlockedDeities,omitempty"`
	UnlockedCardIDs   []string `json:"unlockedCardIds,omitempty"`
	UnlockedCosmetics []string `json:"unlockedCosmetics,omitempty"`
	XP                int      `json:"xp,omitempty"`
}

// Default returns a fresh profile with no player ID.
func Default() Profile {
	align := make(map[string]int, len(Shards))
	for _, s := range Shards {
		align[s] = 0
	}
	return Profile{
		AvatarID:          "estifarr",
		ShardAlignment:    align,
		UnlockedDeities:   []string{},
		UnlockedCardIDs:   []string{},
		UnlockedCosmetics: []string{},
		PlayerLevel:       1,
		CampaignProgress: CampaignProgress{
			CompletedNodes: []string{},
			NodeStars:      map[string]NodeStars{},
			ActUnlocked:    1,
		},
		DeckSlots: []DeckSlot{},
	}
}

// Decode merges a stored record onto the defaults. Fields missing from the
// record keep their default values; nested objects are merged key by key.
func Decode(raw []byte) (Profile, error) {
	p := Default()
	if err := json.Unmarshal(raw, &p); err != nil {
		return Default(), fmt.Errorf("decode profile: %w", err)
	}
	p.normalize()
	return p, nil
}

// Encode serializes a profile for storage.
func Encode(p Profile) ([]byte, error) {
	return json.Marshal(p)
}

// normalize restores invariants a partial or hand-edited record may break.
func (p *Profile) normalize() {
	if p.ShardAlignment == nil {
		p.ShardAlignment = map[string]int{}
	}
	for _, s := range Shards {
		if _, ok := p.ShardAlignment[s]; !ok {
			p.ShardAlignment[s] = 0
		}
	}
	if p.UnlockedDeities == nil {
		p.UnlockedDeities = []string{}
	}
	if p.UnlockedCardIDs == nil {
		p.UnlockedCardIDs = []string{}
	}
	if p.UnlockedCosmetics == nil {
		p.UnlockedCosmetics = []string{}
	}
	if p.DeckSlots == nil {
		p.DeckSlots = []DeckSlot{}
	}
	if p.CampaignProgress.CompletedNodes == nil {
		p.CampaignProgress.CompletedNodes = []string{}
	}
	if p.CampaignProgress.NodeStars == nil {
		p.CampaignProgress.NodeStars = map[string]NodeStars{}
	}
	p.CampaignProgress.ActUnlocked = max(p.CampaignProgress.ActUnlocked, 1)
	p.PlayerLevel = max(p.PlayerLevel, LevelFor(p.XP))
}

// Clone returns a deep copy.
func (p Profile) Clone() Profile {
	c := p
	c.ShardAlignment = make(map[string]int, len(p.ShardAlignment))
	for k, v := range p.ShardAlignment {
		c.ShardAlignment[k] = v
	}
	c.UnlockedDeities = slices.Clone(p.UnlockedDeities)
	c.UnlockedCardIDs = slices.Clone(p.UnlockedCardIDs)
	c.UnlockedCosmetics = slices.Clone(p.UnlockedCosmetics)
	c.CampaignProgress.CompletedNodes = slices.Clone(p.CampaignProgress.CompletedNodes)
	c.CampaignProgress.NodeStars = make(map[string]NodeStars, len(p.CampaignProgress.NodeStars))
	for k, v := range p.CampaignProgress.NodeStars {
		c.CampaignProgress.NodeStars[k] = v
	}
	c.DeckSlots = make([]DeckSlot, len(p.DeckSlots))
	for i, d := range p.DeckSlots {
		c.DeckSlots[i] = DeckSlot{Name: d.Name, CardIDs: slices.Clone(d.CardIDs)}
	}
	c.normalize()
	return c
}

// LevelFor returns the player level for an experience total.
func LevelFor(xp int) int {
	return 1 + max(xp, 0)/XPPerLevel
}

// HasCompleted reports whether a campaign node is done.
func (p Profile) HasCompleted(nodeID string) bool {
	return slices.Contains(p.CampaignProgress.CompletedNodes, nodeID)
}

// Stars returns the recorded star rating of a node, 0 if none.
func (p Profile) Stars(nodeID string) int {
	return p.CampaignProgress.NodeStars[nodeID].Stars
}

// addRewards applies currency deltas, set-union unlocks and experience.
func (p *Profile) addRewards(r Rewards) {
	p.Currencies.CrownShards += r.CrownShards
	p.Currencies.ArcaneKeys += r.ArcaneKeys
	p.Currencies.EssenceTokens += r.EssenceTokens
	p.UnlockedDeities = union(p.UnlockedDeities, r.UnlockedDeities)
	p.UnlockedCardIDs = union(p.UnlockedCardIDs, r.UnlockedCardIDs)
	p.UnlockedCosmetics = union(p.UnlockedCosmetics, r.UnlockedCosmetics)
	if r.XP > 0 {
		p.XP += r.XP
		p.PlayerLevel = max(p.PlayerLevel, LevelFor(p.XP))
	}
}

// recordCompletion marks a node complete, stores its star rating clamped to
// 1..3 (0 leaves any previous rating alone), and applies the rewards.
func (p *Profile) recordCompletion(nodeID string, stars int, r Rewards) {
	if !p.HasCompleted(nodeID) {
		p.CampaignProgress.CompletedNodes = append(p.CampaignProgress.CompletedNodes, nodeID)
	}
	if stars != 0 {
		p.CampaignProgress.NodeStars[nodeID] = NodeStars{Stars: min(3, max(1, stars))}
	}
	p.addRewards(r)
}

func union(have, add []string) []string {
	for _, id := range add {
		if !slices.Contains(have, id) {
			have = append(have, id)
		}
	}
	return have
}
