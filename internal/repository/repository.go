package repository

import (
	"context"
	"errors"

	"github.com/hawy/hawy-go/internal/model"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// UserStore persists user accounts. Emails are stored as given; callers normalize them.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// ChatStore is the append-only record of chat turns.
type ChatStore interface {
	// Append stores turn and sets its ID.
	Append(ctx context.Context, turn *model.ChatTurn) error
	// Recent returns at most limit turns in scope, newest first.
	Recent(ctx context.Context, scope model.AccessScope, limit int) ([]model.ChatTurn, error)
	// Delete removes every turn in scope and returns how many were removed.
	Delete(ctx context.Context, scope model.AccessScope) (int64, error)
}
