package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shanmuk27/smart-dustbin/internal/db"
	"github.com/shanmuk27/smart-dustbin/internal/mq"
	"github.com/shanmuk27/smart-dustbin/internal/points"
	"github.com/shanmuk27/smart-dustbin/internal/repository"
	"go.uber.org/zap"
)

type awardCall struct {
	userID   uuid.UUID
	category points.Category
	value    int
}

type fakeStore struct {
	byDustbin map[string]*db.UserRecord
	awards    []awardCall
	awardErr  error
}

func (f *fakeStore) FindByDustbin(_ context.Context, dustbinID string) (*db.UserRecord, error) {
	user, ok := f.byDustbin[dustbinID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (f *fakeStore) AwardPoints(_ context.Context, id uuid.UUID, category points.Category, value int) error {
	if f.awardErr != nil {
		return f.awardErr
	}
	f.awards = append(f.awards, awardCall{userID: id, category: category, value: value})
	return nil
}

type fakePublisher struct {
	events []mq.PointsAwardedEvent
	err    error
}

func (f *fakePublisher) PublishPointsAwarded(_ context.Context, event mq.PointsAwardedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func newTestAttributor(store *fakeStore, pub *fakePublisher) *Attributor {
	return NewAttributor(store, pub, zap.NewNop())
}

func linkedStore(dustbinID string, userID uuid.UUID) *fakeStore {
	return &fakeStore{
		byDustbin: map[string]*db.UserRecord{
			dustbinID: {ID: userID, Email: "user@example.com"},
		},
	}
}

func TestProcessAwardsPoints(t *testing.T) {
	userID := uuid.New()
	store := linkedStore("bin42", userID)
	pub := &fakePublisher{}
	a := newTestAttributor(store, pub)

	if err := a.Process(context.Background(), "bin42,WET"); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if len(store.awards) != 1 {
		t.Fatalf("expected 1 award, got %d", len(store.awards))
	}
	award := store.awards[0]
	if award.userID != userID {
		t.Errorf("expected award for %s, got %s", userID, award.userID)
	}
	if award.category != points.Wet {
		t.Errorf("expected wet category, got %s", award.category)
	}
	if award.value != 8 {
		t.Errorf("expected 8 points for wet, got %d", award.value)
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(pub.events))
	}
	if pub.events[0].DustbinID != "bin42" || pub.events[0].Points != 8 {
		t.Errorf("unexpected event: %+v", pub.events[0])
	}
}

func TestProcessMalformedLine(t *testing.T) {
	store := linkedStore("bin42", uuid.New())
	a := newTestAttributor(store, &fakePublisher{})

	for _, raw := range []string{"bin42", "bin42,WET,extra", ""} {
		err := a.Process(context.Background(), raw)
		if !errors.Is(err, ErrMalformedMessage) {
			t.Errorf("Process(%q): expected ErrMalformedMessage, got %v", raw, err)
		}
	}
	if len(store.awards) != 0 {
		t.Errorf("expected no awards for malformed lines, got %d", len(store.awards))
	}
}

func TestProcessUnknownCategory(t *testing.T) {
	store := linkedStore("bin42", uuid.New())
	a := newTestAttributor(store, &fakePublisher{})

	err := a.Process(context.Background(), "bin42,PLASTIC")
	if !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
	if len(store.awards) != 0 {
		t.Errorf("expected no awards for unknown category, got %d", len(store.awards))
	}
}

func TestProcessUnknownDevice(t *testing.T) {
	store := &fakeStore{byDustbin: map[string]*db.UserRecord{}}
	a := newTestAttributor(store, &fakePublisher{})

	err := a.Process(context.Background(), "ghost,DRY")
	if !errors.Is(err, ErrUnknownDevice) {
		t.Fatalf("expected ErrUnknownDevice, got %v", err)
	}
}

func TestPublishFailureDoesNotFailAward(t *testing.T) {
	store := linkedStore("bin42", uuid.New())
	pub := &fakePublisher{err: errors.New("broker down")}
	a := newTestAttributor(store, pub)

	if err := a.Process(context.Background(), "bin42,DRY"); err != nil {
		t.Fatalf("expected award to succeed despite publish failure, got %v", err)
	}
	if len(store.awards) != 1 {
		t.Fatalf("expected 1 award, got %d", len(store.awards))
	}
}

func TestAwardFailurePropagates(t *testing.T) {
	store := linkedStore("bin42", uuid.New())
	store.awardErr = errors.New("datastore timeout")
	a := newTestAttributor(store, &fakePublisher{})

	if err := a.Process(context.Background(), "bin42,DRY"); err == nil {
		t.Fatal("expected error when the award fails")
	}
}

func TestProcessQueued(t *testing.T) {
	userID := uuid.New()
	store := linkedStore("bin7", userID)
	a := newTestAttributor(store, &fakePublisher{})

	if err := a.ProcessQueued(context.Background(), []byte(`{"device_id":"bin7","category":"EWASTE"}`)); err != nil {
		t.Fatalf("ProcessQueued failed: %v", err)
	}
	if len(store.awards) != 1 || store.awards[0].value != 10 {
		t.Fatalf("expected one 10-point award, got %+v", store.awards)
	}

	err := a.ProcessQueued(context.Background(), []byte(`not-a-json`))
	if !errors.Is(err, ErrMalformedMessage) {
		t.Errorf("expected ErrMalformedMessage for bad JSON, got %v", err)
	}

	err = a.ProcessQueued(context.Background(), []byte(`{"device_id":"bin7"}`))
	if !errors.Is(err, ErrMalformedMessage) {
		t.Errorf("expected ErrMalformedMessage for missing category, got %v", err)
	}
}
