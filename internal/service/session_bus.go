package service

import (
	"sync"

	domainauth "github.com/vv-events/dashboard/internal/domain/auth"
)

// SessionEventKind names what happened to a session.
type SessionEventKind string

const (
	// EventStateChanged carries a newly published SessionState.
	EventStateChanged SessionEventKind = "state_changed"
	// EventAuthRefresh asks every interested party to re-validate the session.
	EventAuthRefresh SessionEventKind = "auth_refresh"
)

// SessionEvent is delivered to bus subscribers. Key is the session key
// (never the raw token); it is empty for token-less checks.
type SessionEvent struct {
	Kind  SessionEventKind
	Key   string
	State domainauth.SessionState
}

const defaultSubscriberBuffer = 16

// SessionBus fans session events out to subscribers. Publishing never blocks:
// a subscriber whose buffer is full misses the event.
type SessionBus struct {
	mu     sync.Mutex
	subs   map[chan SessionEvent]struct{}
	closed bool
}

// NewSessionBus creates an empty bus.
func NewSessionBus() *SessionBus {
	return &SessionBus{subs: make(map[chan SessionEvent]struct{})}
}

// Subscribe registers a subscriber with the given buffer (<=0 uses a default).
// The returned func unsubscribes and closes the channel; it is safe to call twice.
func (b *SessionBus) Subscribe(buffer int) (func(), <-chan SessionEvent) {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	ch := make(chan SessionEvent, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return func() {}, ch
	}
	b.subs[ch] = struct{}{}

	unsub := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[ch]; !ok {
			return
		}
		delete(b.subs, ch)
		drainAndClose(ch)
	}
	return unsub, ch
}

// Publish delivers ev to every subscriber with room in its buffer.
func (b *SessionBus) Publish(ev SessionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close closes every subscriber channel. Later subscriptions get a closed channel.
func (b *SessionBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		drainAndClose(ch)
		delete(b.subs, ch)
	}
}

// drainAndClose removes any buffered events before closing the channel so
// receivers observe a closed channel immediately.
func drainAndClose(ch chan SessionEvent) {
	for {
		select {
		case <-ch:
		default:
			close(ch)
			return
		}
	}
}
