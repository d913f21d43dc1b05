package app

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"godash/internal/auth"
	"godash/models"
	"godash/ports"
)

// SessionService signs visitors in. Accounts are anonymous: a fresh user row
// plus a bearer token, no registration step.
type SessionService struct {
	users  ports.UserRepository
	tokens *auth.TokenService
}

// Session pairs a minted token with the account it belongs to.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func NewSessionService(users ports.UserRepository, tokens *auth.TokenService) *SessionService {
	return &SessionService{users: users, tokens: tokens}
}

// SignInAnonymously creates a new account and issues its first token.
func (s *SessionService) SignInAnonymously(ctx context.Context) (*Session, error) {
	user, err := s.users.CreateAnonymous(ctx, randomDisplayName())
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Mint(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	return &Session{Token: token, User: user}, nil
}

// Resume resolves the account behind a verified token and records the visit.
func (s *SessionService) Resume(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.users.TouchLastSeen(ctx, userID); err != nil {
		return nil, err
	}
	return user, nil
}

var (
	nameAdjectives = []string{"Curious", "Quiet", "Bright", "Swift", "Patient", "Bold", "Gentle", "Keen"}
	nameAnimals    = []string{"Heron", "Otter", "Lynx", "Falcon", "Badger", "Maple", "Cedar", "Wren"}
)

func randomDisplayName() string {
	return nameAdjectives[rand.Intn(len(nameAdjectives))] + " " + nameAnimals[rand.Intn(len(nameAnimals))]
}
