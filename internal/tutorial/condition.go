package tutorial

import (
	"sync"

	"github.com/peterkuimelis/shardwars/internal/game"
)

// Condition is an extra predicate a step can require of its event.
type Condition func(Event) bool

var (
	condMu     sync.RWMutex
	conditions = map[string]Condition{
		"shard":            playedType(game.CardTypeShard),
		"avatar":           playedType(game.CardTypeAvatar),
		"relic":            playedType(game.CardTypeRelic),
		"support":          playedType(game.CardTypeSupport),
		"technique":        playedType(game.CardTypeTechnique),
		"deity":            playedType(game.CardTypeDeity),
		"relic_or_support": playedType(game.CardTypeRelic, game.CardTypeSupport),
		"attackers_ready":  func(ev Event) bool { return ev.Attackers > 0 },
	}
)

func playedType(types ...game.CardType) Condition {
	return func(ev Event) bool {
		if !ev.HasCard {
			return false
		}
		for _, t := range types {
			if ev.CardType == t {
				return true
			}
		}
		return false
	}
}

// RegisterCondition adds or replaces a named condition.
func RegisterCondition(name string, cond Condition) {
	condMu.Lock()
	defer condMu.Unlock()
	conditions[name] = cond
}

func lookupCondition(name string) (Condition, bool) {
	condMu.RLock()
	defer condMu.RUnlock()
	c, ok := conditions[name]
	return c, ok
}
