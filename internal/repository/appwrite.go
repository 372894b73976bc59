package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bwmarrin/snowflake"

	"github.com/kaushikshivam970/storeit/internal/appwrite"
	"github.com/kaushikshivam970/storeit/internal/config"
	"github.com/kaushikshivam970/storeit/internal/domain"
)

// AppwriteUserRepo stores identity records as documents in the provider's
// users collection, addressed by database and collection ID.
type AppwriteUserRepo struct {
	db           *appwrite.DatabaseService
	ids          *snowflake.Node
	databaseID   string
	collectionID string
}

var _ UserRepository = (*AppwriteUserRepo)(nil)

// NewAppwriteUserRepo wires the repository over the admin handle's database
// capability.
func NewAppwriteUserRepo(admin *appwrite.AdminClient, node *snowflake.Node, cfg config.Config) *AppwriteUserRepo {
	return &AppwriteUserRepo{
		db:           admin.Databases,
		ids:          node,
		databaseID:   cfg.DatabaseID,
		collectionID: cfg.UsersCollectionID,
	}
}

// GetByEmail returns the identity record with the exact email. When the store
// holds more than one match the first is returned; the uniqueness invariant
// makes that a should-not-happen case, not an error.
func (r *AppwriteUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, appwrite.Equal("email", email))
}

// GetByAccountID returns the identity record linked to a provider account ID.
func (r *AppwriteUserRepo) GetByAccountID(ctx context.Context, accountID string) (domain.User, error) {
	return r.findOne(ctx, appwrite.Equal("accountId", accountID))
}

func (r *AppwriteUserRepo) findOne(ctx context.Context, query appwrite.Query) (domain.User, error) {
	list, err := r.db.ListDocuments(ctx, r.databaseID, r.collectionID, query)
	if err != nil {
		return domain.User{}, fmt.Errorf("query users: %w", err)
	}
	if list.Total == 0 || len(list.Documents) == 0 {
		return domain.User{}, domain.ErrUserNotFound
	}

	var user domain.User
	if err := json.Unmarshal(list.Documents[0], &user); err != nil {
		return domain.User{}, fmt.Errorf("decode user document: %w", err)
	}
	return user, nil
}

// Create inserts a new identity record under a client-generated document ID.
// Email uniqueness is the caller's invariant to pre-check.
func (r *AppwriteUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	data := map[string]any{
		"fullName":  user.FullName,
		"email":     user.Email,
		"avatar":    user.Avatar,
		"accountId": user.AccountID,
	}
	doc, err := r.db.CreateDocument(ctx, r.databaseID, r.collectionID, r.ids.Generate().String(), data)
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	var created domain.User
	if err := json.Unmarshal(doc, &created); err != nil {
		return domain.User{}, fmt.Errorf("decode created user: %w", err)
	}
	return created, nil
}
