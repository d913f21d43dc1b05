package ports

import (
	"context"

	"godash/models"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// CreateAnonymous creates a fresh anonymous user account
	CreateAnonymous(ctx context.Context, displayName string) (*models.User, error)

	// GetByID retrieves a user by their ID
	GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error)

	// TouchLastSeen records account activity
	TouchLastSeen(ctx context.Context, userID uuid.UUID) error
}
