package relay

import (
	"errors"
	"sort"
	"sync"

	"golang.org/x/time/rate"

	"github.com/Jaime-2616/ErronkaFinala/internal/keys"
	"github.com/Jaime-2616/ErronkaFinala/internal/logging"
)

var ErrNotSubscribed = errors.New("player is not subscribed")

// Registry tracks the one live subscribe session per player. Usernames are
// normalized so subscriptions are case-insensitive. All push traffic flows
// through here; I/O happens outside the lock on a copied session handle.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Session
	limiters map[string]*rate.Limiter

	chatRate  rate.Limit
	chatBurst int
}

// NewRegistry builds an empty registry. chatRate/chatBurst bound how fast
// a single subscriber may emit chat lines.
func NewRegistry(chatRate float64, chatBurst int) *Registry {
	if chatRate <= 0 {
		chatRate = 5
	}
	if chatBurst <= 0 {
		chatBurst = 10
	}
	return &Registry{
		sessions:  make(map[string]Session),
		limiters:  make(map[string]*rate.Limiter),
		chatRate:  rate.Limit(chatRate),
		chatBurst: chatBurst,
	}
}

// Register stores the session as the player's live handle. A previous
// session under the same username is evicted and closed: the newest
// subscribe wins, matching reconnect behavior after a dropped link.
func (r *Registry) Register(s Session) {
	key := keys.Normalize(s.Username())

	r.mu.Lock()
	prev := r.sessions[key]
	r.sessions[key] = s
	if _, ok := r.limiters[key]; !ok {
		r.limiters[key] = rate.NewLimiter(r.chatRate, r.chatBurst)
	}
	r.mu.Unlock()

	if prev != nil && prev.ID() != s.ID() {
		logging.Info("evicting stale subscription", logging.Fields{"username": key, "session_id": prev.ID()})
		_ = prev.Close()
	}
}

// Unregister removes the player's session only if it is still the given
// one. A reconnect that already replaced the handle is left alone, which
// makes disconnect cleanup idempotent.
func (r *Registry) Unregister(s Session) {
	key := keys.Normalize(s.Username())

	r.mu.Lock()
	cur, ok := r.sessions[key]
	if ok && cur.ID() == s.ID() {
		delete(r.sessions, key)
		delete(r.limiters, key)
	}
	r.mu.Unlock()

	_ = s.Close()
}

// Lookup returns the live session for a username.
func (r *Registry) Lookup(username string) (Session, bool) {
	r.mu.RLock()
	s, ok := r.sessions[keys.Normalize(username)]
	r.mu.RUnlock()
	return s, ok
}

// IsOnline reports whether the player currently holds a subscription.
func (r *Registry) IsOnline(username string) bool {
	_, ok := r.Lookup(username)
	return ok
}

// SendTo pushes one line to a single player. A failed write drops the
// session so the peer shows up offline immediately.
func (r *Registry) SendTo(username string, line string) error {
	s, ok := r.Lookup(username)
	if !ok {
		return ErrNotSubscribed
	}
	if err := s.Send(line); err != nil {
		logging.Error("push failed, dropping session", err, logging.Fields{"username": username})
		r.Unregister(s)
		return err
	}
	return nil
}

// Broadcast pushes a line to every subscriber except the named sender.
// Dead sessions found during the sweep are dropped.
func (r *Registry) Broadcast(line string, exceptUsername string) {
	except := keys.Normalize(exceptUsername)

	r.mu.RLock()
	targets := make([]Session, 0, len(r.sessions))
	for key, s := range r.sessions {
		if key == except {
			continue
		}
		targets = append(targets, s)
	}
	r.mu.RUnlock()

	for _, s := range targets {
		if err := s.Send(line); err != nil {
			logging.Error("broadcast write failed, dropping session", err, logging.Fields{"username": s.Username()})
			r.Unregister(s)
		}
	}
}

// Online lists the subscribed usernames, sorted, excluding the requester.
func (r *Registry) Online(exceptUsername string) []string {
	except := keys.Normalize(exceptUsername)

	r.mu.RLock()
	out := make([]string, 0, len(r.sessions))
	for key := range r.sessions {
		if key == except {
			continue
		}
		out = append(out, key)
	}
	r.mu.RUnlock()

	sort.Strings(out)
	return out
}

// AllowChat consumes one token from the player's chat limiter.
func (r *Registry) AllowChat(username string) bool {
	r.mu.RLock()
	lim, ok := r.limiters[keys.Normalize(username)]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	return lim.Allow()
}

// Count returns the number of live subscriptions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
