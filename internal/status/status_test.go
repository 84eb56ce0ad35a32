package status

import (
	"testing"
	"time"
)

func TestTrackerStartsOffline(t *testing.T) {
	tr := NewTracker()

	snap := tr.Snapshot()
	if snap.State != Offline {
		t.Errorf("expected initial state Offline, got %s", snap.State)
	}
	if !snap.LastSeen.IsZero() {
		t.Errorf("expected zero LastSeen before first contact, got %v", snap.LastSeen)
	}
}

func TestTouchMarksConnected(t *testing.T) {
	tr := NewTracker()
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	tr.Touch(at)

	snap := tr.Snapshot()
	if snap.State != Connected {
		t.Errorf("expected state Connected after touch, got %s", snap.State)
	}
	if !snap.LastSeen.Equal(at) {
		t.Errorf("expected LastSeen %v, got %v", at, snap.LastSeen)
	}
}

func TestSetStateKeepsLastSeen(t *testing.T) {
	tr := NewTracker()
	at := time.Now()
	tr.Touch(at)

	tr.SetState(Offline)

	snap := tr.Snapshot()
	if snap.State != Offline {
		t.Errorf("expected state Offline, got %s", snap.State)
	}
	if !snap.LastSeen.Equal(at) {
		t.Errorf("expected LastSeen to survive state change, got %v", snap.LastSeen)
	}
}
