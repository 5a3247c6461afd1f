package profile

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Manager loads, mutates and saves the profile record. Persistence failures
// are logged and never returned; the in-memory copy stays authoritative for
// the rest of the process.
type Manager struct {
	store Store
	key   string
	newID func() string

	mu     sync.Mutex
	cached *Profile
}

// NewManager creates a manager over store. A nil store keeps the profile in
// memory only.
func NewManager(store Store) *Manager {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Manager{store: store, key: StorageKey, newID: newPlayerID}
}

func newPlayerID() string {
	return "ec-" + uuid.NewString()
}

// LoadOrCreate returns the stored profile, or a new default one (saved) when
// nothing usable is stored.
func (m *Manager) LoadOrCreate(ctx context.Context) Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(ctx).Clone()
}

// Update applies mutate to a copy of the profile, saves it and returns it.
func (m *Manager) Update(ctx context.Context, mutate func(*Profile)) Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.load(ctx).Clone()
	if mutate != nil {
		mutate(&p)
	}
	p.normalize()
	if p.PlayerID == "" {
		p.PlayerID = m.newID()
	}
	m.save(ctx, p)
	return p.Clone()
}

// RecordCompletion marks a campaign node complete with a 1..3 star rating
// and applies its rewards.
func (m *Manager) RecordCompletion(ctx context.Context, nodeID string, stars int, rewards Rewards) Profile {
	return m.Update(ctx, func(p *Profile) {
		p.recordCompletion(nodeID, stars, rewards)
	})
}

// ApplyRewards adds currencies, unlocks and experience.
func (m *Manager) ApplyRewards(ctx context.Context, rewards Rewards) Profile {
	return m.Update(ctx, func(p *Profile) {
		p.addRewards(rewards)
	})
}

// Reset replaces the profile with a new default under a new player ID.
func (m *Manager) Reset(ctx context.Context) Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := Default()
	p.PlayerID = m.newID()
	m.save(ctx, p)
	return p.Clone()
}

func (m *Manager) load(ctx context.Context) Profile {
	if m.cached != nil {
		return *m.cached
	}
	raw, err := m.store.Get(ctx, m.key)
	if err == nil {
		p, decodeErr := Decode([]byte(raw))
		if decodeErr == nil {
			if p.PlayerID == "" {
				p.PlayerID = m.newID()
			}
			m.cached = &p
			return p
		}
		err = decodeErr
	}
	if !errors.Is(err, ErrNotFound) {
		slog.Warn("failed to load profile; using default", "error", err)
	}
	p := Default()
	p.PlayerID = m.newID()
	m.save(ctx, p)
	return p
}

func (m *Manager) save(ctx context.Context, p Profile) {
	stored := p.Clone()
	m.cached = &stored
	raw, err := Encode(p)
	if err != nil {
		slog.Warn("failed to encode profile", "error", err)
		return
	}
	if err := m.store.Set(ctx, m.key, string(raw)); err != nil {
		slog.Warn("failed to save profile", "error", err)
	}
}
