package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shanmuk27/smart-dustbin/internal/db"
	"github.com/shanmuk27/smart-dustbin/internal/logging"
	"github.com/shanmuk27/smart-dustbin/internal/mq"
	"github.com/shanmuk27/smart-dustbin/internal/points"
	"github.com/shanmuk27/smart-dustbin/internal/repository"
	"go.uber.org/zap"
)

var (
	// ErrMalformedMessage means the message did not split into exactly
	// (device, category). Dropped with a log line, never retried.
	ErrMalformedMessage = errors.New("malformed classification message")
	// ErrUnknownDevice means no account has the dustbin linked.
	ErrUnknownDevice = errors.New("no account linked to dustbin")
	// ErrUnknownCategory means the label maps to no point value.
	ErrUnknownCategory = errors.New("unrecognized waste category")
)

type userStore interface {
	FindByDustbin(ctx context.Context, dustbinID string) (*db.UserRecord, error)
	AwardPoints(ctx context.Context, id uuid.UUID, category points.Category, value int) error
}

// Attributor resolves classification events to accounts and applies point
// awards. Both ingestion paths (serial and queue) end here.
type Attributor struct {
	store     userStore
	publisher mq.Publisher
	logger    *zap.Logger
}

func NewAttributor(store userStore, publisher mq.Publisher, logger *zap.Logger) *Attributor {
	return &Attributor{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// Process handles one raw serial line of the form "<deviceId>,<CATEGORY>".
func (a *Attributor) Process(ctx context.Context, raw string) error {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return fmt.Errorf("%w: %q", ErrMalformedMessage, raw)
	}
	return a.Attribute(ctx, strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
}

// classificationMessage is the queue intake payload.
type classificationMessage struct {
	DeviceID string `json:"device_id"`
	Category string `json:"category"`
}

// ProcessQueued handles one classification event from the intake queue.
func (a *Attributor) ProcessQueued(ctx context.Context, body []byte) error {
	var msg classificationMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if msg.DeviceID == "" || msg.Category == "" {
		return fmt.Errorf("%w: missing device_id or category", ErrMalformedMessage)
	}
	return a.Attribute(ctx, msg.DeviceID, msg.Category)
}

// Attribute awards points for one (device, category) classification event.
func (a *Attributor) Attribute(ctx context.Context, dustbinID, label string) error {
	category, ok := points.FromLabel(label)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, label)
	}

	user, err := a.store.FindByDustbin(ctx, dustbinID)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %q", ErrUnknownDevice, dustbinID)
	}
	if err != nil {
		return fmt.Errorf("failed to look up dustbin %s: %w", dustbinID, err)
	}

	value := points.Value(category)
	if err := a.store.AwardPoints(ctx, user.ID, category, value); err != nil {
		return fmt.Errorf("failed to award points to user %s: %w", user.ID, err)
	}

	binLogger := logging.WithDustbin(a.logger, dustbinID)
	binLogger.Info("points awarded",
		zap.String("user_id", user.ID.String()),
		zap.String("category", string(category)),
		zap.Int("points", value),
	)

	event := mq.PointsAwardedEvent{
		UserID:    user.ID.String(),
		DustbinID: dustbinID,
		Category:  string(category),
		Points:    value,
		AwardedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := a.publisher.PublishPointsAwarded(ctx, event); err != nil {
		// The award is already durable; losing the event is acceptable.
		binLogger.Error("failed to publish points event", zap.Error(err))
	}

	return nil
}
