package db

import (
	"time"

	"github.com/google/uuid"
)

// Account is an entry in the identity store. The password hash is written at
// registration and never read back on login (see DESIGN.md).
type Account struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserRecord is the durable per-user document: the device link plus the
// point ledger. The record shares its id with the identity account.
type UserRecord struct {
	ID            uuid.UUID
	Email         string
	LinkedDustbin *string
	Points        PointLedger
}

// PointLedger holds per-category disposal counters and the derived total.
// Invariant: Total == 5*Dry + 8*Wet + 10*EWaste; readers repair violations.
type PointLedger struct {
	Dry    int
	Wet    int
	EWaste int
	Total  int
}

// LeaderboardEntry is one row of the top-10 leaderboard.
type LeaderboardEntry struct {
	Email       string
	TotalPoints int
}
