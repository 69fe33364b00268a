package repository

import (
	"context"

	"github.com/utafrali/ContactsGo/internal/domain"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// ConfirmEmail marks the user with the given email as confirmed.
	// Confirming an already-confirmed user is a no-op.
	ConfirmEmail(ctx context.Context, email string) error

	// UpdateRefreshTokenHash stores the hash of the user's current refresh
	// token. An empty hash clears the stored token, forcing re-login.
	UpdateRefreshTokenHash(ctx context.Context, userID, tokenHash string) error

	// UpdateAvatar stores the user's avatar URL.
	UpdateAvatar(ctx context.Context, userID, avatarURL string) error
}

// ContactRepository defines the interface for contact persistence operations.
// Every operation is scoped by the owning user: contacts belonging to other
// users behave exactly as if they did not exist.
type ContactRepository interface {
	// Create inserts a new contact into the store.
	Create(ctx context.Context, contact *domain.Contact) error

	// GetByID retrieves one of the user's contacts by its identifier.
	GetByID(ctx context.Context, userID, id string) (*domain.Contact, error)

	// ListByUserID returns all contacts belonging to the user.
	ListByUserID(ctx context.Context, userID string) ([]domain.Contact, error)

	// SearchByField returns the user's contacts whose given field contains
	// the query, case-insensitively. The field must be one of first_name,
	// last_name, or email.
	SearchByField(ctx context.Context, userID, field, query string) ([]domain.Contact, error)

	// ExistsByEmail checks whether the user already has a contact with the
	// given email address.
	ExistsByEmail(ctx context.Context, userID, email string) (bool, error)

	// Update replaces all fields of one of the user's contacts.
	Update(ctx context.Context, contact *domain.Contact) error

	// Delete removes one of the user's contacts by its identifier.
	Delete(ctx context.Context, userID, id string) error
}
