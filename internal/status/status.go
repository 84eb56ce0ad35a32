package status

import (
	"sync"
	"time"
)

// State is the last-known health of the dustbin connection.
type State string

const (
	Offline   State = "Offline"
	Connected State = "Connected"
	Error     State = "Error"
)

// Snapshot is a point-in-time view of the liveness record. LastSeen is the
// zero time until the device has been heard from at least once.
type Snapshot struct {
	State    State
	LastSeen time.Time
}

// Tracker is the process-wide liveness record. The ingestion loop writes to
// it, the status endpoint reads from it; readers tolerate a slightly stale
// snapshot.
type Tracker struct {
	mu       sync.RWMutex
	state    State
	lastSeen time.Time
}

func NewTracker() *Tracker {
	return &Tracker{state: Offline}
}

// Touch records device contact and marks the connection healthy.
func (t *Tracker) Touch(at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = Connected
	t.lastSeen = at
}

// SetState records a connection-state transition without touching LastSeen.
func (t *Tracker) SetState(s State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = s
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Snapshot{State: t.state, LastSeen: t.lastSeen}
}
