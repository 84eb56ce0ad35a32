package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shanmuk27/smart-dustbin/internal/db"
	"github.com/shanmuk27/smart-dustbin/internal/points"
)

var (
	// ErrNotFound is returned when no user record matches the lookup.
	ErrNotFound = errors.New("user record not found")
	// ErrDustbinLinked is returned when the dustbin belongs to another account.
	ErrDustbinLinked = errors.New("dustbin already linked to another account")
)

const uniqueViolation = "23505"

const userColumns = `id, email, linked_dustbin, points_dry, points_wet, points_ewaste, points_total`

// Repository handles user record operations
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateUser inserts a zero-state record for the account. Creating an
// already existing record is a no-op, which lets the read path re-create
// records for identities that lost theirs.
func (r *Repository) CreateUser(ctx context.Context, id uuid.UUID, email string) (*db.UserRecord, error) {
	query := `
		INSERT INTO users (id, email)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.pool.Exec(ctx, query, id, email); err != nil {
		return nil, fmt.Errorf("failed to create user record: %w", err)
	}
	return r.GetUser(ctx, id)
}

// GetUser returns the record, repairing a stored total that disagrees with
// the canonical computation before handing it to the caller.
func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*db.UserRecord, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	record, err := r.scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	computed := points.Total(record.Points.Dry, record.Points.Wet, record.Points.EWaste)
	if computed != record.Points.Total {
		if _, err := r.pool.Exec(ctx, `UPDATE users SET points_total = $2 WHERE id = $1`, id, computed); err != nil {
			return nil, fmt.Errorf("failed to repair total for user %s: %w", id, err)
		}
		record.Points.Total = computed
	}

	return record, nil
}

// DeleteUser removes the record. Unknown ids are a no-op: deletion must not
// fail on records that never existed.
func (r *Repository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete user record: %w", err)
	}
	return nil
}

// FindByDustbin resolves a device identifier to the single linked record.
func (r *Repository) FindByDustbin(ctx context.Context, dustbinID string) (*db.UserRecord, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE linked_dustbin = $1 LIMIT 1`
	return r.scanUser(r.pool.QueryRow(ctx, query, dustbinID))
}

// LinkDustbin assigns the dustbin to the account. The partial unique index
// on linked_dustbin turns the uniqueness check into a conditional write;
// a violation means the dustbin belongs to someone else. Re-linking the
// same dustbin to the same account succeeds as a no-op.
func (r *Repository) LinkDustbin(ctx context.Context, id uuid.UUID, dustbinID string) error {
	var current *string
	err := r.pool.QueryRow(ctx, `SELECT linked_dustbin FROM users WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to query user record: %w", err)
	}
	if current != nil && *current == dustbinID {
		return nil
	}

	_, err = r.pool.Exec(ctx, `UPDATE users SET linked_dustbin = $2 WHERE id = $1`, id, dustbinID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDustbinLinked
		}
		return fmt.Errorf("failed to link dustbin: %w", err)
	}
	return nil
}

// UnlinkDustbin clears the device link. Idempotent: unlinking an account
// with no link, or no record at all, succeeds.
func (r *Repository) UnlinkDustbin(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `UPDATE users SET linked_dustbin = NULL WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to unlink dustbin: %w", err)
	}
	return nil
}

// AwardPoints bumps the category counter by one and the total by the
// category's value as a single datastore-side delta, so concurrent events
// for the same user cannot lose updates.
func (r *Repository) AwardPoints(ctx context.Context, id uuid.UUID, category points.Category, value int) error {
	var column string
	switch category {
	case points.Dry:
		column = "points_dry"
	case points.Wet:
		column = "points_wet"
	case points.EWaste:
		column = "points_ewaste"
	default:
		return fmt.Errorf("unknown category %q", category)
	}

	query := fmt.Sprintf(`
		UPDATE users
		SET %s = %s + 1, points_total = points_total + $2
		WHERE id = $1
	`, column, column)

	tag, err := r.pool.Exec(ctx, query, id, value)
	if err != nil {
		return fmt.Errorf("failed to award points: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Leaderboard returns at most 10 records ordered by total descending.
func (r *Repository) Leaderboard(ctx context.Context) ([]db.LeaderboardEntry, error) {
	query := `
		SELECT email, points_total
		FROM users
		ORDER BY points_total DESC
		LIMIT 10
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]db.LeaderboardEntry, 0, 10)
	for rows.Next() {
		var entry db.LeaderboardEntry
		if err := rows.Scan(&entry.Email, &entry.TotalPoints); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return entries, nil
}

func (r *Repository) scanUser(row pgx.Row) (*db.UserRecord, error) {
	var record db.UserRecord
	err := row.Scan(
		&record.ID,
		&record.Email,
		&record.LinkedDustbin,
		&record.Points.Dry,
		&record.Points.Wet,
		&record.Points.EWaste,
		&record.Points.Total,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user record: %w", err)
	}
	return &record, nil
}
