package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"godash/domain/core"
	"godash/models"
	"godash/ports"
)

// UserRepositoryImpl implements UserRepository for PostgreSQL
type UserRepositoryImpl struct {
	db *sqlx.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sqlx.DB) ports.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// CreateAnonymous mints a fresh anonymous account. Accounts have no
// credentials; possession of the issued token is the identity.
func (r *UserRepositoryImpl) CreateAnonymous(ctx context.Context, displayName string) (*models.User, error) {
	now := time.Now().UTC()
	user := &models.User{
		ID:          uuid.New(),
		DisplayName: displayName,
		IsAnonymous: true,
		CreatedAt:   now,
		LastSeenAt:  now,
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (id, display_name, is_anonymous, created_at, last_seen_at)
		VALUES (:id, :display_name, :is_anonymous, :created_at, :last_seen_at)
	`, user)
	if err != nil {
		return nil, core.NewPersistenceError("create user", err)
	}

	return user, nil
}

// GetByID retrieves a user by their ID
func (r *UserRepositoryImpl) GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `
		SELECT id, display_name, is_anonymous, created_at, last_seen_at
		FROM users
		WHERE id = $1
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, core.NewPersistenceError("get user", err)
	}

	return &user, nil
}

// TouchLastSeen records account activity
func (r *UserRepositoryImpl) TouchLastSeen(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET last_seen_at = NOW()
		WHERE id = $1
	`, userID)
	if err != nil {
		return core.NewPersistenceError("touch user", err)
	}
	return nil
}
