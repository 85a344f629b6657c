package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hawy/hawy-go/internal/crypto"
	"github.com/hawy/hawy-go/internal/model"
	"github.com/hawy/hawy-go/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidToken       = crypto.ErrInvalidToken
	ErrUnknownUser        = errors.New("user not found")
)

// AuthService handles signup, login and bearer token resolution.
type AuthService struct {
	users  repository.UserStore
	tokens *crypto.TokenService
	hasher *crypto.PasswordHasher
	logger *slog.Logger
	now    func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(users repository.UserStore, tokens *crypto.TokenService, hasher *crypto.PasswordHasher, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		logger: logger,
		now:    time.Now,
	}
}

// Signup creates a new account and returns a session token for it.
func (s *AuthService) Signup(ctx context.Context, req model.SignupRequest) (model.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" {
		return model.AuthResponse{}, ErrEmailRequired
	}
	if req.Password == "" {
		return model.AuthResponse{}, ErrPasswordRequired
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthResponse{}, ErrDuplicateEmail
		}
		return model.AuthResponse{}, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user signed up", "user_id", user.ID)

	return s.authResponse(user)
}

// Login checks the credentials and returns a fresh session token. An unknown
// email and a wrong password yield the same error.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Info("login failed", "reason", "unknown email")
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, fmt.Errorf("looking up user: %w", err)
	}

	match, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("verifying password: %w", err)
	}
	if !match {
		s.logger.Info("login failed", "reason", "wrong password", "user_id", user.ID)
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	return s.authResponse(user)
}

// ResolveToken returns the user a bearer token was issued to.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (*model.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	return user, nil
}

func (s *AuthService) authResponse(user *model.User) (model.AuthResponse, error) {
	token, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{
		Token: token,
		User:  user.Public(),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
