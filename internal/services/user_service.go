package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gshelgaas/bankcards/internal/apperr"
	"github.com/gshelgaas/bankcards/internal/auth"
	"github.com/gshelgaas/bankcards/internal/models"
	"github.com/gshelgaas/bankcards/internal/repository"
)

// UserService is the auth boundary: registration, credential checks
// and admin user management. The core services only ever see the
// resulting user id and role.
type UserService struct {
	store repository.Store
	tm    *auth.TokenManager
}

func NewUserService(store repository.Store, tm *auth.TokenManager) *UserService {
	return &UserService{store: store, tm: tm}
}

type RegisterParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string // empty: USER
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (s *UserService) Register(ctx context.Context, p RegisterParams) (models.User, error) {
	role := p.Role
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		return models.User{}, apperr.InvalidArgument("invalid role: %s", p.Role)
	}

	email := strings.ToLower(strings.TrimSpace(p.Email))
	if _, err := s.store.Users().GetByEmail(ctx, email); err == nil {
		return models.User{}, apperr.Conflict("user with this email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return models.User{}, err
	}

	hash, err := auth.HashPassword(p.Password)
	if err != nil {
		return models.User{}, err
	}

	u, err := s.store.Users().Create(ctx, models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return models.User{}, err
	}
	slog.Info("user registered", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Login verifies credentials and issues a token pair. Lookup and
// password failures are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (TokenPair, error) {
	u, err := s.store.Users().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return TokenPair{}, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return TokenPair{}, err
	}
	if err := auth.VerifyPassword(password, u.PasswordHash); err != nil {
		return TokenPair{}, apperr.Unauthorized("invalid credentials")
	}

	access, refresh, exp, err := s.tm.GeneratePair(u.ID, u.Role)
	if err != nil {
		return TokenPair{}, err
	}
	slog.Info("user logged in", "user_id", u.ID)
	return TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp}, nil
}

// Refresh exchanges a valid refresh token for a new pair.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.tm.ParseRefresh(refreshToken)
	if err != nil {
		return TokenPair{}, apperr.Unauthorized("invalid refresh token")
	}
	if _, err := s.store.Users().GetByID(ctx, claims.UserID); err != nil {
		return TokenPair{}, apperr.Unauthorized("invalid refresh token")
	}
	access, refresh, exp, err := s.tm.GeneratePair(claims.UserID, claims.Role)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp}, nil
}

func (s *UserService) Get(ctx context.Context, id string) (models.User, error) {
	u, err := s.store.Users().GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return models.User{}, apperr.NotFound("user not found with id: %s", id)
	}
	return u, err
}

func (s *UserService) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.store.Users().List(ctx, limit, offset)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	err := s.store.Users().Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("user not found with id: %s", id)
	}
	return err
}
