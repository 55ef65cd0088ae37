// Package calls relays WebRTC signaling between peers and keeps the one
// piece of call state the server owns: which callees are currently ringing.
// Media never touches the server; a call's only durable trace is the summary
// message recorded when it ends.
package calls

import (
	"sync"
	"time"

	"chathub/domain"
)

// Ring is one unanswered call attempt, keyed by callee. A second call to the
// same callee replaces the first: the newer caller wins the ring slot.
type Ring struct {
	CallerID  string
	CalleeID  string
	Type      domain.CallType
	StartedAt time.Time
}

// RingRegistry tracks in-flight rings so the sweeper can expire the ones no
// client ever resolved (callee offline, tab closed mid-ring).
type RingRegistry struct {
	mu    sync.Mutex
	rings map[string]Ring // calleeID -> ring
	now   func() time.Time
}

func NewRingRegistry() *RingRegistry {
	return &RingRegistry{
		rings: make(map[string]Ring),
		now:   time.Now,
	}
}

// Start opens a ring slot for the callee.
func (r *RingRegistry) Start(callerID, calleeID string, callType domain.CallType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rings[calleeID] = Ring{
		CallerID:  callerID,
		CalleeID:  calleeID,
		Type:      callType,
		StartedAt: r.now(),
	}
}

// Resolve closes the callee's ring slot, reporting whether one was open.
// Answer, reject, hang-up and timeout all resolve; only the first wins.
func (r *RingRegistry) Resolve(calleeID string) (Ring, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ring, ok := r.rings[calleeID]
	if ok {
		delete(r.rings, calleeID)
	}
	return ring, ok
}

// ResolveFrom closes the callee's ring slot only when it was opened by this
// caller. Ending or rejecting one call must never cancel a ring a third
// party has open toward the same callee.
func (r *RingRegistry) ResolveFrom(calleeID, callerID string) (Ring, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ring, ok := r.rings[calleeID]
	if !ok || ring.CallerID != callerID {
		return Ring{}, false
	}
	delete(r.rings, calleeID)
	return ring, true
}

// Expire removes and returns every ring older than maxAge.
func (r *RingRegistry) Expire(maxAge time.Duration) []Ring {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxAge)
	var expired []Ring
	for calleeID, ring := range r.rings {
		if ring.StartedAt.Before(cutoff) {
			expired = append(expired, ring)
			delete(r.rings, calleeID)
		}
	}
	return expired
}

// Pending reports the number of open ring slots.
func (r *RingRegistry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rings)
}
