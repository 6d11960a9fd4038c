// Package redis provides Redis-based adapters for the dashboard.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vv-events/dashboard/internal/domain/model"
	"github.com/vv-events/dashboard/internal/ports"
)

const (
	userSuffix = ":user"
	prefInfix  = ":pref:"
	scanCount  = 100
)

var (
	_ ports.SessionCache = (*SessionCache)(nil)
	_ ports.SessionAdmin = (*SessionCache)(nil)
)

// SessionCache keeps the user snapshot and preferences of each session in Redis.
//
// Layout:
//
//	<prefix><key>:user         JSON user snapshot
//	<prefix><key>:pref:<name>  preference value
type SessionCache struct {
	client redis.UniversalClient
	prefix string
}

// NewSessionCache creates a session cache using the default "session:" prefix.
func NewSessionCache(client redis.UniversalClient) *SessionCache {
	return NewSessionCacheWithPrefix(client, "session:")
}

// NewSessionCacheWithPrefix creates a session cache with a custom key prefix.
func NewSessionCacheWithPrefix(client redis.UniversalClient, prefix string) *SessionCache {
	return &SessionCache{client: client, prefix: prefix}
}

func (s *SessionCache) userKey(key string) string { return s.prefix + key + userSuffix }

func (s *SessionCache) prefKey(key, name string) string { return s.prefix + key + prefInfix + name }

func (s *SessionCache) GetUser(ctx context.Context, key string) (*model.User, error) {
	if key == "" {
		return nil, nil
	}

	data, err := s.client.Get(ctx, s.userKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var u model.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("unmarshal cached user: %w", err)
	}
	return &u, nil
}

func (s *SessionCache) SaveUser(ctx context.Context, key string, user *model.User, ttl time.Duration) error {
	if key == "" {
		return errors.New("session key cannot be empty")
	}
	if user == nil {
		return errors.New("user cannot be nil")
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	return s.client.Set(ctx, s.userKey(key), data, ttl).Err()
}

// Clear deletes every entry stored under key.
func (s *SessionCache) Clear(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	keys, err := s.scan(ctx, s.prefix+key+":*")
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.del(ctx, keys); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *SessionCache) GetPreference(ctx context.Context, key, name string) (string, bool, error) {
	if key == "" || name == "" {
		return "", false, nil
	}
	v, err := s.client.Get(ctx, s.prefKey(key, name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return v, true, nil
}

func (s *SessionCache) SetPreference(ctx context.Context, key, name, value string, ttl time.Duration) error {
	if key == "" || name == "" {
		return errors.New("session key and preference name cannot be empty")
	}
	return s.client.Set(ctx, s.prefKey(key, name), value, ttl).Err()
}

// ListSessions returns every session holding a user snapshot, sorted by key.
func (s *SessionCache) ListSessions(ctx context.Context) ([]ports.CachedSession, error) {
	userKeys, err := s.scan(ctx, s.prefix+"*"+userSuffix)
	if err != nil {
		return nil, err
	}

	out := make([]ports.CachedSession, 0, len(userKeys))
	for _, uk := range userKeys {
		key := strings.TrimSuffix(strings.TrimPrefix(uk, s.prefix), userSuffix)
		user, err := s.GetUser(ctx, key)
		if err != nil {
			return nil, err
		}
		if user == nil {
			// expired between SCAN and GET
			continue
		}
		ttl, err := s.client.TTL(ctx, uk).Result()
		if err != nil {
			return nil, fmt.Errorf("redis ttl: %w", err)
		}
		if ttl < 0 {
			ttl = 0
		}
		prefKeys, err := s.scan(ctx, s.prefix+key+prefInfix+"*")
		if err != nil {
			return nil, err
		}
		prefs := make([]string, 0, len(prefKeys))
		for _, pk := range prefKeys {
			prefs = append(prefs, strings.TrimPrefix(pk, s.prefix+key+prefInfix))
		}
		sort.Strings(prefs)
		out = append(out, ports.CachedSession{Key: key, User: user, TTL: ttl, Prefs: prefs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// ClearAll clears every listed session.
func (s *SessionCache) ClearAll(ctx context.Context) (int, error) {
	sessions, err := s.ListSessions(ctx)
	if err != nil {
		return 0, err
	}
	for i, sess := range sessions {
		if err := s.Clear(ctx, sess.Key); err != nil {
			return i, err
		}
	}
	return len(sessions), nil
}

// scan collects keys matching pattern. A cluster client is scanned on every
// master, since SCAN only walks the node it is sent to.
func (s *SessionCache) scan(ctx context.Context, pattern string) ([]string, error) {
	cluster, ok := s.client.(*redis.ClusterClient)
	if !ok {
		return scanNode(ctx, s.client, pattern)
	}

	var (
		mu   sync.Mutex
		keys []string
	)
	err := cluster.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
		batch, err := scanNode(ctx, node, pattern)
		if err != nil {
			return err
		}
		mu.Lock()
		keys = append(keys, batch...)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func scanNode(ctx context.Context, client redis.Cmdable, pattern string) ([]string, error) {
	var (
		cursor uint64
		keys   []string
	)
	for {
		batch, next, err := client.Scan(ctx, cursor, pattern, scanCount).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan: %w", err)
		}
		keys = append(keys, batch...)
		if next == 0 {
			break
		}
		cursor = next
	}
	return keys, nil
}

// del removes keys. Session keys hash to different cluster slots, so a
// cluster gets one DEL per key in a pipeline instead of a multi-key DEL.
func (s *SessionCache) del(ctx context.Context, keys []string) error {
	if _, ok := s.client.(*redis.ClusterClient); !ok {
		return s.client.Del(ctx, keys...).Err()
	}
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range keys {
			pipe.Del(ctx, k)
		}
		return nil
	})
	return err
}
