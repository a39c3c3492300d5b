package application

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/example/club-portal/internal/attendance"
)

// rosterCache keeps recently loaded team rosters so that every board render
// and snapshot does not hit the player store. Concurrent misses for the same
// team share one load.
type rosterCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	generation uint64
	entries    map[attendance.Team]rosterCacheEntry
	loads      singleflight.Group
}

type rosterCacheEntry struct {
	players   []attendance.Player
	expiresAt time.Time
}

type rosterLoader func(ctx context.Context) ([]attendance.Player, error)

func newRosterCache(ttl time.Duration, maxEntries int, now func() time.Time) *rosterCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 16
	}
	if now == nil {
		now = time.Now
	}
	return &rosterCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[attendance.Team]rosterCacheEntry),
	}
}

func (c *rosterCache) Get(team attendance.Team) ([]attendance.Player, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[team]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, team)
		c.mu.Unlock()
		return nil, false
	}
	return clonePlayers(entry.players), true
}

// Load returns the cached roster for team or calls load once for all
// concurrent callers. A result loaded across an Invalidate is returned to the
// callers but not stored. The shared load ignores the first caller's
// cancellation so one caller giving up does not fail the others.
func (c *rosterCache) Load(ctx context.Context, team attendance.Team, load rosterLoader) ([]attendance.Player, error) {
	if players, ok := c.Get(team); ok {
		return players, nil
	}

	result, err, _ := c.loads.Do(string(team), func() (any, error) {
		c.mu.RLock()
		generation := c.generation
		c.mu.RUnlock()

		players, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.store(team, players, generation)
		return players, nil
	})
	if err != nil {
		return nil, err
	}
	return clonePlayers(result.([]attendance.Player)), nil
}

func (c *rosterCache) store(team attendance.Team, players []attendance.Player, generation uint64) {
	cloned := clonePlayers(players)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		return
	}
	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[team] = rosterCacheEntry{players: cloned, expiresAt: expiry}
}

func (c *rosterCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.generation++
	c.entries = make(map[attendance.Team]rosterCacheEntry)
	c.mu.Unlock()
}

func (c *rosterCache) cleanupLocked() {
	now := c.now()
	for team, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, team)
		}
	}
}

func (c *rosterCache) evictOneLocked() {
	for team := range c.entries {
		delete(c.entries, team)
		return
	}
}

func clonePlayers(players []attendance.Player) []attendance.Player {
	out := make([]attendance.Player, len(players))
	for i, p := range players {
		p.Teams = append([]attendance.Team(nil), p.Teams...)
		out[i] = p
	}
	return out
}
