package runtime

import "sync"

// Presence counts live connections per user. A user is online while at
// least one connection is bound to their id, so closing one device of many
// never flips them offline. (The platform this replaces set a user fully
// offline on any single disconnect; the count fixes that last-writer-wins
// race.) Transitions are reported exactly once.
type Presence struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewPresence() *Presence {
	return &Presence{counts: make(map[string]int)}
}

// Connected increments the user's connection count and reports whether this
// was the offline -> online transition.
func (p *Presence) Connected(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts[userID]++
	return p.counts[userID] == 1
}

// Disconnected decrements and reports whether the user just went offline.
// Safe to call for users that never connected.
func (p *Presence) Disconnected(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	count, ok := p.counts[userID]
	if !ok {
		return false
	}
	if count <= 1 {
		delete(p.counts, userID)
		return true
	}
	p.counts[userID] = count - 1
	return false
}

func (p *Presence) IsOnline(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[userID] > 0
}

// OnlineCount is exposed for the debug inspector.
func (p *Presence) OnlineCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.counts)
}
