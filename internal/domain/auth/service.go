package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/partheepan17/POSGrocery-sub002/internal/core/apperror"
	"github.com/partheepan17/POSGrocery-sub002/pkg/logger"
)

// Service provides login and manager-PIN verification.
type Service struct {
	users Repository
	jwt   *JWTService
}

// NewService creates the auth service.
func NewService(users Repository, jwtService *JWTService) *Service {
	return &Service{users: users, jwt: jwtService}
}

// LoginResult is the issued session.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

// Login verifies credentials and issues a terminal session token.
// Wrong username and wrong PIN produce the same error so the response
// does not leak which part failed.
func (s *Service) Login(ctx context.Context, username, pin, terminal string) (*LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := user.CanLogin(); err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PINHash), []byte(pin)) != nil {
		logger.Warn(ctx, "failed login attempt", "username", username, "terminal", terminal)
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.jwt.GenerateToken(user, terminal)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	logger.Info(ctx, "user logged in", "user_id", user.ID, "role", user.Role, "terminal", terminal)

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// PinResult is the outcome of a manager PIN check.
type PinResult struct {
	Success bool  `json:"success"`
	UserID  int64 `json:"userId,omitempty"`
}

// VerifyManagerPIN checks a PIN against every active manager and returns
// the matching manager's id. Used to approve refunds at or above the
// policy threshold; the returned id is recorded on the return header.
func (s *Service) VerifyManagerPIN(ctx context.Context, pin string) (PinResult, error) {
	if pin == "" {
		return PinResult{}, nil
	}

	managers, err := s.users.ListManagers(ctx)
	if err != nil {
		return PinResult{}, fmt.Errorf("list managers: %w", err)
	}

	for i := range managers {
		m := &managers[i]
		if !m.CanApproveRefunds() {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(m.PINHash), []byte(pin)) == nil {
			logger.Info(ctx, "manager pin verified", "manager_id", m.ID)
			return PinResult{Success: true, UserID: m.ID}, nil
		}
	}

	logger.Warn(ctx, "manager pin rejected")
	return PinResult{}, nil
}

// HashPIN produces a bcrypt hash for storage. Used by user provisioning.
func HashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash pin: %w", err)
	}
	return string(hash), nil
}

// ValidateToken delegates to the JWT service.
func (s *Service) ValidateToken(token string) (*Session, error) {
	return s.jwt.ValidateToken(token)
}
