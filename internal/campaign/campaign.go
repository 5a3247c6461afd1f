// Package campaign holds the static campaign acts, nodes and reward bundles.
package campaign

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/peterkuimelis/shardwars/internal/game"
	"github.com/peterkuimelis/shardwars/internal/profile"
)

//go:embed campaign.yaml
var defaultData []byte

type NodeType string

const (
	NodeStory NodeType = "story"
	NodeTrial NodeType = "trial"
	NodeBoss  NodeType = "boss"
)

type Act struct {
	ID          string `yaml:"id" json:"id"`
	Number      int    `yaml:"number" json:"number"`
	Name        string `yaml:"name" json:"name"`
	Realm       string `yaml:"realm" json:"realm"`
	Description string `yaml:"description" json:"description"`
}

// BattleRules adjust a match for a node. The human player is player 0.
type BattleRules struct {
	PlayerLife int `yaml:"playerLife" json:"playerLife,omitempty"` // added to the player's starting essence
	EnemyLife  int `yaml:"enemyLife" json:"enemyLife,omitempty"`   // added to the enemy's starting essence
	StartingKL int `yaml:"startingKL" json:"startingKL,omitempty"` // added to the player's base KL
}

type AlignmentChoice struct {
	ID     string `yaml:"id" json:"id"`
	Shard  string `yaml:"shard" json:"shard"`
	Amount int    `yaml:"amount" json:"amount"`
}

type Node struct {
	ID               string            `yaml:"id" json:"id"`
	Act              string            `yaml:"act" json:"act"`
	Type             NodeType          `yaml:"type" json:"type"`
	Name             string            `yaml:"name" json:"name"`
	Description      string            `yaml:"description" json:"description"`
	EnemyDeity       string            `yaml:"enemyDeity" json:"enemyDeity"`
	EnemyDeck        string            `yaml:"enemyDeck" json:"enemyDeck"`
	Rules            BattleRules       `yaml:"rules" json:"rules"`
	AlignmentChoices []AlignmentChoice `yaml:"alignmentChoices" json:"alignmentChoices"`
	Reward           string            `yaml:"reward" json:"reward"`
	Gate             bool              `yaml:"gate" json:"gate"`
}

// Configure applies the node's battle rules to a match configuration.
func (n Node) Configure(cfg *game.MatchConfig) {
	cfg.EssenceBonus[0] += n.Rules.PlayerLife
	cfg.EssenceBonus[1] += n.Rules.EnemyLife
	cfg.BaseKLBonus[0] += n.Rules.StartingKL
}

// Bundle is a reward bundle as written in the data file.
type Bundle struct {
	CrownShards   int      `yaml:"crownShards" json:"crownShards"`
	EssenceTokens int      `yaml:"essenceTokens" json:"essenceTokens"`
	ArcaneKeys    int      `yaml:"arcaneKeys" json:"arcaneKeys"`
	Cards         []string `yaml:"cards" json:"cards"`
	Cosmetics     []string `yaml:"cosmetics" json:"cosmetics"`
	XP            int      `yaml:"xp" json:"xp"`
}

// deityPrefix marks unlocked card ids that are deities.
const deityPrefix = "DEITY_"

// Rewards converts the bundle to profile rewards, routing deity ids to the
// deity unlock list.
func (b Bundle) Rewards() profile.Rewards {
	r := profile.Rewards{
		CrownShards:       b.CrownShards,
		EssenceTokens:     b.EssenceTokens,
		ArcaneKeys:        b.ArcaneKeys,
		UnlockedCosmetics: b.Cosmetics,
		XP:                b.XP,
	}
	for _, id := range b.Cards {
		if strings.HasPrefix(id, deityPrefix) {
			r.UnlockedDeities = append(r.UnlockedDeities, id)
		} else {
			r.UnlockedCardIDs = append(r.UnlockedCardIDs, id)
		}
	}
	return r
}

// Data is the full campaign definition.
type Data struct {
	Acts    []Act             `yaml:"acts"`
	Nodes   []Node            `yaml:"nodes"`
	Bundles map[string]Bundle `yaml:"rewards"`
}

// Parse decodes campaign data and checks its references.
func Parse(raw []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parse campaign YAML: %w", err)
	}
	acts := make(map[string]bool, len(d.Acts))
	for _, a := range d.Acts {
		acts[a.ID] = true
	}
	seen := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		if seen[n.ID] {
			return nil, fmt.Errorf("campaign: duplicate node %q", n.ID)
		}
		seen[n.ID] = true
		if !acts[n.Act] {
			return nil, fmt.Errorf("campaign: node %q references unknown act %q", n.ID, n.Act)
		}
		if n.Reward != "" {
			if _, ok := d.Bundles[n.Reward]; !ok {
				return nil, fmt.Errorf("campaign: node %q references unknown reward %q", n.ID, n.Reward)
			}
		}
	}
	return &d, nil
}

// Default returns the built-in campaign.
func Default() *Data {
	d, err := Parse(defaultData)
	if err != nil {
		panic(fmt.Sprintf("embedded campaign data: %v", err))
	}
	return d
}

// Node looks up a node by id.
func (d *Data) Node(id string) (Node, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// NodesForAct returns the nodes of an act in campaign order.
func (d *Data) NodesForAct(actID string) []Node {
	var out []Node
	for _, n := range d.Nodes {
		if n.Act == actID {
			out = append(out, n)
		}
	}
	return out
}

// Act looks up an act by id.
func (d *Data) Act(id string) (Act, bool) {
	for _, a := range d.Acts {
		if a.ID == id {
			return a, true
		}
	}
	return Act{}, false
}

// RewardBundle looks up a reward bundle by id.
func (d *Data) RewardBundle(id string) (Bundle, bool) {
	b, ok := d.Bundles[id]
	return b, ok
}

// Unlocked reports whether a node's act is open in the given profile.
func (d *Data) Unlocked(p profile.Profile, nodeID string) bool {
	n, ok := d.Node(nodeID)
	if !ok {
		return false
	}
	a, ok := d.Act(n.Act)
	return ok && a.Number <= p.CampaignProgress.ActUnlocked
}

// StarsFor rates a win by the share of starting essence the player kept.
func StarsFor(essence, start int) int {
	if start <= 0 || essence <= 0 {
		return 1
	}
	switch pct := essence * 100 / start; {
	case pct >= 75:
		return 3
	case pct >= 40:
		return 2
	default:
		return 1
	}
}

// Complete records a won node: completion and stars, the node's reward
// bundle, the first alignment choice, and the next act when the node is a
// gate. An unknown node changes nothing and returns false.
func (d *Data) Complete(ctx context.Context, mgr *profile.Manager, nodeID string, stars int) (profile.Profile, bool) {
	return d.CompleteWithChoice(ctx, mgr, nodeID, stars, "")
}

// CompleteWithChoice is Complete with an explicit alignment choice id. An
// empty or unknown choice falls back to the node's first choice.
func (d *Data) CompleteWithChoice(ctx context.Context, mgr *profile.Manager, nodeID string, stars int, choiceID string) (profile.Profile, bool) {
	n, ok := d.Node(nodeID)
	if !ok {
		return mgr.LoadOrCreate(ctx), false
	}
	var rewards profile.Rewards
	if b, ok := d.RewardBundle(n.Reward); ok {
		rewards = b.Rewards()
	}
	mgr.RecordCompletion(ctx, n.ID, stars, rewards)

	choice, hasChoice := pickChoice(n.AlignmentChoices, choiceID)
	nextAct := 0
	if n.Gate {
		if a, ok := d.Act(n.Act); ok {
			nextAct = min(a.Number+1, d.lastAct())
		}
	}
	p := mgr.Update(ctx, func(p *profile.Profile) {
		if hasChoice {
			p.ShardAlignment[choice.Shard] += choice.Amount
		}
		p.CampaignProgress.ActUnlocked = max(p.CampaignProgress.ActUnlocked, nextAct)
	})
	return p, true
}

func pickChoice(choices []AlignmentChoice, id string) (AlignmentChoice, bool) {
	if len(choices) == 0 {
		return AlignmentChoice{}, false
	}
	for _, c := range choices {
		if c.ID == id {
			return c, true
		}
	}
	return choices[0], true
}

func (d *Data) lastAct() int {
	n := 1
	for _, a := range d.Acts {
		n = max(n, a.Number)
	}
	return n
}
