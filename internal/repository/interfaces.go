package repository

import (
	"context"

	"github.com/kaushikshivam970/storeit/internal/domain"
)

// UserRepository exposes lookups and inserts over the users collection.
// Lookups are exact-match; zero matches surface as domain.ErrUserNotFound
// while transport failures propagate as ordinary errors.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByAccountID(ctx context.Context, accountID string) (domain.User, error)
	Create(ctx context.Context, user domain.User) (domain.User, error)
}
