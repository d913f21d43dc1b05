package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account that owns dashboards. Accounts are minted
// anonymously on first visit and identified by bearer token afterwards.
type User struct {
	ID          uuid.UUID `json:"id" db:"id"`
	DisplayName string    `json:"displayName" db:"display_name"`
	IsAnonymous bool      `json:"isAnonymous" db:"is_anonymous"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	LastSeenAt  time.Time `json:"lastSeenAt" db:"last_seen_at"`
}
