package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shanmuk27/smart-dustbin/internal/db"
)

var (
	// ErrNotFound is returned when no account matches the given id or email.
	ErrNotFound = errors.New("account not found")
	// ErrEmailExists is returned when registering an email that is taken.
	ErrEmailExists = errors.New("account with this email already exists")
)

// Service is the narrow surface the rest of the system uses to talk to the
// account identity store.
type Service interface {
	Create(ctx context.Context, email, password string) (*db.Account, error)
	Get(ctx context.Context, id uuid.UUID) (*db.Account, error)
	GetByEmail(ctx context.Context, email string) (*db.Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
