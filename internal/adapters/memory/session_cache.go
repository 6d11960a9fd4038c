// Package memory holds in-process adapters: a session cache for single-replica
// deployments and tests, and a token store for the operator CLI.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/vv-events/dashboard/internal/domain/model"
	"github.com/vv-events/dashboard/internal/ports"
)

var (
	_ ports.SessionCache = (*SessionCache)(nil)
	_ ports.SessionAdmin = (*SessionCache)(nil)
)

type entry struct {
	user     *model.User
	userExp  time.Time
	prefs    map[string]string
	prefsExp map[string]time.Time
}

// SessionCache is a mutex-guarded map with lazy expiry.
type SessionCache struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

// NewSessionCache creates an empty cache. now may be nil.
func NewSessionCache(now func() time.Time) *SessionCache {
	if now == nil {
		now = time.Now
	}
	return &SessionCache{entries: make(map[string]*entry), now: now}
}

func expiry(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}

func expired(now, exp time.Time) bool { return !exp.IsZero() && !now.Before(exp) }

// get returns the live entry for key, pruning expired fields. Caller holds mu.
func (c *SessionCache) get(key string) *entry {
	e, ok := c.entries[key]
	if !ok {
		return nil
	}
	now := c.now()
	if e.user != nil && expired(now, e.userExp) {
		e.user = nil
	}
	for name, exp := range e.prefsExp {
		if expired(now, exp) {
			delete(e.prefs, name)
			delete(e.prefsExp, name)
		}
	}
	if e.user == nil && len(e.prefs) == 0 {
		delete(c.entries, key)
		return nil
	}
	return e
}

func (c *SessionCache) getOrCreate(key string) *entry {
	if e := c.get(key); e != nil {
		return e
	}
	e := &entry{prefs: make(map[string]string), prefsExp: make(map[string]time.Time)}
	c.entries[key] = e
	return e
}

func (c *SessionCache) GetUser(_ context.Context, key string) (*model.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.get(key)
	if e == nil || e.user == nil {
		return nil, nil
	}
	u := *e.user
	return &u, nil
}

func (c *SessionCache) SaveUser(_ context.Context, key string, user *model.User, ttl time.Duration) error {
	if key == "" {
		return errors.New("session key cannot be empty")
	}
	if user == nil {
		return errors.New("user cannot be nil")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.getOrCreate(key)
	u := *user
	e.user = &u
	e.userExp = expiry(c.now(), ttl)
	return nil
}

// Clear drops the user and every preference stored under key.
func (c *SessionCache) Clear(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *SessionCache) GetPreference(_ context.Context, key, name string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.get(key)
	if e == nil {
		return "", false, nil
	}
	v, ok := e.prefs[name]
	return v, ok, nil
}

func (c *SessionCache) SetPreference(_ context.Context, key, name, value string, ttl time.Duration) error {
	if key == "" || name == "" {
		return errors.New("session key and preference name cannot be empty")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.getOrCreate(key)
	e.prefs[name] = value
	if exp := expiry(c.now(), ttl); exp.IsZero() {
		delete(e.prefsExp, name)
	} else {
		e.prefsExp[name] = exp
	}
	return nil
}

func (c *SessionCache) ListSessions(_ context.Context) ([]ports.CachedSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]ports.CachedSession, 0, len(c.entries))
	now := c.now()
	for key := range c.entries {
		e := c.get(key)
		if e == nil || e.user == nil {
			continue
		}
		var ttl time.Duration
		if !e.userExp.IsZero() {
			ttl = e.userExp.Sub(now)
		}
		prefs := make([]string, 0, len(e.prefs))
		for name := range e.prefs {
			prefs = append(prefs, name)
		}
		sort.Strings(prefs)
		u := *e.user
		out = append(out, ports.CachedSession{Key: key, User: &u, TTL: ttl, Prefs: prefs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (c *SessionCache) ClearAll(ctx context.Context) (int, error) {
	sessions, err := c.ListSessions(ctx)
	if err != nil {
		return 0, err
	}
	for _, s := range sessions {
		if err := c.Clear(ctx, s.Key); err != nil {
			return 0, err
		}
	}
	return len(sessions), nil
}
