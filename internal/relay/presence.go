package relay

import (
	"sort"
	"sync"

	"github.com/Jaime-2616/ErronkaFinala/internal/keys"
)

// Presence tracks which players are logged in. Login marks a player
// present, logout or a dropped subscription clears them. Presence is
// wider than subscription: a player who logged in but has not yet opened
// the push connection still shows up in player listings.
type Presence struct {
	mu    sync.RWMutex
	users map[string]struct{}
}

func NewPresence() *Presence {
	return &Presence{users: make(map[string]struct{})}
}

func (p *Presence) Mark(username string) {
	p.mu.Lock()
	p.users[keys.Normalize(username)] = struct{}{}
	p.mu.Unlock()
}

func (p *Presence) Clear(username string) {
	p.mu.Lock()
	delete(p.users, keys.Normalize(username))
	p.mu.Unlock()
}

func (p *Presence) IsPresent(username string) bool {
	p.mu.RLock()
	_, ok := p.users[keys.Normalize(username)]
	p.mu.RUnlock()
	return ok
}

// List returns the present usernames, sorted, excluding the requester.
func (p *Presence) List(exceptUsername string) []string {
	except := keys.Normalize(exceptUsername)

	p.mu.RLock()
	out := make([]string, 0, len(p.users))
	for u := range p.users {
		if u == except {
			continue
		}
		out = append(out, u)
	}
	p.mu.RUnlock()

	sort.Strings(out)
	return out
}
