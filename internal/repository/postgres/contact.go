package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/ContactsGo/internal/domain"
	"github.com/utafrali/ContactsGo/pkg/database"
	apperrors "github.com/utafrali/ContactsGo/pkg/errors"
)

// searchableFields whitelists the columns SearchByField may filter on.
var searchableFields = map[string]struct{}{
	"first_name": {},
	"last_name":  {},
	"email":      {},
}

// ContactRepository implements repository.ContactRepository using PostgreSQL.
// Every query filters by user_id, so contacts of other users are
// indistinguishable from rows that do not exist.
type ContactRepository struct {
	pool database.DBTX
}

// NewContactRepository creates a new PostgreSQL-backed contact repository.
func NewContactRepository(pool database.DBTX) *ContactRepository {
	return &ContactRepository{pool: pool}
}

// Create inserts a new contact into the database.
func (r *ContactRepository) Create(ctx context.Context, c *domain.Contact) error {
	query := `
		INSERT INTO contacts (id, user_id, first_name, last_name, email, phone, birthday, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		c.ID,
		c.UserID,
		c.FirstName,
		c.LastName,
		c.Email,
		c.Phone,
		c.Birthday,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("contact", "email", c.Email)
		}
		return fmt.Errorf("insert contact: %w", err)
	}

	return nil
}

// GetByID retrieves one of the user's contacts by its ID.
func (r *ContactRepository) GetByID(ctx context.Context, userID, id string) (*domain.Contact, error) {
	query := `
		SELECT id, user_id, first_name, last_name, email, phone, birthday, created_at, updated_at
		FROM contacts
		WHERE id = $1 AND user_id = $2`

	var c domain.Contact
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&c.ID,
		&c.UserID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.Phone,
		&c.Birthday,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan contact: %w", err)
	}

	return &c, nil
}

// ListByUserID returns all contacts belonging to the user.
func (r *ContactRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Contact, error) {
	query := `
		SELECT id, user_id, first_name, last_name, email, phone, birthday, created_at, updated_at
		FROM contacts
		WHERE user_id = $1
		ORDER BY created_at ASC`

	return r.scanContacts(ctx, query, userID)
}

// SearchByField returns the user's contacts whose field contains the query,
// case-insensitively. The field must be whitelisted; anything else is an
// input error.
func (r *ContactRepository) SearchByField(ctx context.Context, userID, field, query string) ([]domain.Contact, error) {
	if _, ok := searchableFields[field]; !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("cannot search by field %q", field))
	}

	sql := fmt.Sprintf(`
		SELECT id, user_id, first_name, last_name, email, phone, birthday, created_at, updated_at
		FROM contacts
		WHERE user_id = $1 AND %s ILIKE '%%' || $2 || '%%'
		ORDER BY created_at ASC`, field)

	return r.scanContacts(ctx, sql, userID, query)
}

// ExistsByEmail checks whether the user already has a contact with the email.
func (r *ContactRepository) ExistsByEmail(ctx context.Context, userID, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM contacts WHERE user_id = $1 AND email = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("check contact email: %w", err)
	}

	return exists, nil
}

// Update replaces all fields of one of the user's contacts.
func (r *ContactRepository) Update(ctx context.Context, c *domain.Contact) error {
	c.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE contacts
		SET first_name = $1, last_name = $2, email = $3, phone = $4, birthday = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8`

	ct, err := r.pool.Exec(ctx, query,
		c.FirstName,
		c.LastName,
		c.Email,
		c.Phone,
		c.Birthday,
		c.UpdatedAt,
		c.ID,
		c.UserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("contact", "email", c.Email)
		}
		return fmt.Errorf("update contact: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("contact", c.ID)
	}

	return nil
}

// Delete removes one of the user's contacts by its ID.
func (r *ContactRepository) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM contacts WHERE id = $1 AND user_id = $2`

	ct, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("contact", id)
	}

	return nil
}

// scanContacts is a helper that executes a query expected to return multiple contact rows.
func (r *ContactRepository) scanContacts(ctx context.Context, query string, args ...any) ([]domain.Contact, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]domain.Contact, 0)
	for rows.Next() {
		var c domain.Contact
		if err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.FirstName,
			&c.LastName,
			&c.Email,
			&c.Phone,
			&c.Birthday,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan contact row: %w", err)
		}
		contacts = append(contacts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contact rows: %w", err)
	}

	return contacts, nil
}
