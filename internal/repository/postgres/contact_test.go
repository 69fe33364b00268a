package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/ContactsGo/internal/domain"
	apperrors "github.com/utafrali/ContactsGo/pkg/errors"
)

func newContactTestFixture(t *testing.T) (*ContactRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewContactRepository(mock)
	return repo, mock
}

func sampleContact() *domain.Contact {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Contact{
		ID:        "ct-1",
		UserID:    "u-1234",
		FirstName: "Bob",
		LastName:  "Jones",
		Email:     "bob@example.com",
		Phone:     "+380501112233",
		Birthday:  time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// contactColumns returns the 9 column names scanned by the row helpers.
func contactColumns() []string {
	return []string{
		"id", "user_id", "first_name", "last_name", "email",
		"phone", "birthday", "created_at", "updated_at",
	}
}

func contactRow(c *domain.Contact) *pgxmock.Rows {
	return pgxmock.NewRows(contactColumns()).AddRow(
		c.ID, c.UserID, c.FirstName, c.LastName, c.Email,
		c.Phone, c.Birthday, c.CreatedAt, c.UpdatedAt,
	)
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestContactRepository_Create_Success(t *testing.T) {
	repo, mock := newContactTestFixture(t)
	defer mock.Close()

	c := sampleContact()

	mock.ExpectExec("INSERT INTO contacts").
		WithArgs(
			c.ID, c.UserID, c.FirstName, c.LastName, c.Email,
			c.Phone, c.Birthday, c.CreatedAt, c.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), c)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactRepository_Create_DuplicateEmailForOwner(t *testing.T) {
	repo, mock := newContactTestFixture(t)
	defer mock.Close()

	c := sampleContact()

	mock.ExpectExec("INSERT INTO contacts").
		WithArgs(
			c.ID, c.UserID, c.FirstName, c.LastName, c.Email,
			c.Phone, c.Birthday, c.CreatedAt, c.UpdatedAt,
		).
		WillReturnError(fmt.Errorf("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), c)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyExists), "expected ErrAlreadyExists, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// GetByID
// ---------------------------------------------------------------------------

func TestContactRepository_GetByID_Success(t *testing.T) {
	repo, mock := newContactTestFixture(t)
	defer mock.Close()

	c := sampleContact()

	mock.ExpectQuery("SELECT .+ FROM contacts WHERE id = .+ AND user_id =").
		WithArgs(c.ID, c.UserID).
		WillReturnRows(contactRow(c))

	got, err := repo.GetByID(context.Background(), c.UserID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, c.Email, got.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactRepository_GetByID_WrongOwnerLooksLikeNotFound(t *testing.T) {
	repo, mock := newContactTestFixture(t)
	defer mock.Close()

	c := sampleContact()

	// The query is scoped by user_id, so another user's lookup yields no rows.
	mock.ExpectQuery("SELECT .+ FROM contacts WHERE id = .+ AND user_id =").
		WithArgs(c.ID, "other-user").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByID(context.Background(), "other-user", c.ID)
	assert.Nil(t, got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// ListByUserID
// ---------------------------------------------------------------------------

func TestContactRepository_ListByUserID_ReturnsAll(t *testing.T) {
	repo, mock := newContactTestFixture(t)
	defer mock.Close()

	c1 := sampleContact()
	c2 := sampleContact()
	c2.ID = "ct-2"
	c2.Email = "second@example.com"

	rows := pgxmock.NewRows(contactColumns()).
		AddRow(c1.ID, c1.UserID, c1.FirstName, c1.LastName, c1.Email, c1.Phone, c1.Birthday, c1.CreatedAt, c1.UpdatedAt).
		AddRow(c2.ID, c2.UserID, c2.FirstName, c2.LastName, c2.Email, c2.Phone, c2.Birthday, c2.CreatedAt, c2.UpdatedAt)

	mock.ExpectQuery("SELECT .+ FROM contacts WHERE user_id =").
		WithArgs("u-1234").
		WillReturnRows(rows)

	got, err := repo.ListByUserID(context.Background(), "u-1234")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ct-1", got[0].ID)
	assert.Equal(t, "ct-2", got[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactRepository_ListByUserID_Empty(t *testing.T) {
	repo, mock := newContactTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM contacts WHERE user_id =").
		WithArgs("u-empty").
		WillReturnRows(pgxmock.NewRows(contactColumns()))

	got, err := repo.ListByUserID(context.Background(), "u-empty")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// SearchByField
// ---------------------------------------------------------------------------

func TestContactRepository_SearchByField_FirstName(t *testing.T) {
	repo, mock := newContactTestFixture(t)
	defer mock.Close()

	c := sampleContact()

	mock.ExpectQuery("SELECT .+ FROM contacts WHERE user_id = .+ AND first_name ILIKE").
		WithArgs(c.UserID, "bo").
		WillReturnRows(contactRow(c))

	got, err := repo.SearchByField(context.Background(), c.UserID, "first_name", "bo")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, c.ID, got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactRepository_SearchByField_RejectsUnknownField(t *testing.T) {
	repo, mock := newContactTestFixture(t)
	defer mock.Close()

	_, err := repo.SearchByField(context.Background(), "u-1234", "phone; DROP TABLE contacts", "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// ExistsByEmail
// ---------------------------------------------------------------------------

func TestContactRepository_ExistsByEmail(t *testing.T) {
	repo, mock := newContactTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("u-1234", "bob@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByEmail(context.Background(), "u-1234", "bob@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactRepository_ExistsByEmail_OtherOwnerNotCounted(t *testing.T) {
	repo, mock := newContactTestFixture(t)
	defer mock.Close()

	// Same email under a different owner does not conflict.
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("other-user", "bob@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.ExistsByEmail(context.Background(), "other-user", "bob@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func TestContactRepository_Update_Success(t *testing.T) {
	repo, mock := newContactTestFixture(t)
	defer mock.Close()

	c := sampleContact()

	mock.ExpectExec("UPDATE contacts").
		WithArgs(
			c.FirstName, c.LastName, c.Email, c.Phone, c.Birthday,
			pgxmock.AnyArg(), // updated_at
			c.ID, c.UserID,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Update(context.Background(), c)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactRepository_Update_NotFoundForWrongOwner(t *testing.T) {
	repo, mock := newContactTestFixture(t)
	defer mock.Close()

	c := sampleContact()
	c.UserID = "other-user"

	mock.ExpectExec("UPDATE contacts").
		WithArgs(
			c.FirstName, c.LastName, c.Email, c.Phone, c.Birthday,
			pgxmock.AnyArg(),
			c.ID, c.UserID,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), c)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestContactRepository_Delete_Success(t *testing.T) {
	repo, mock := newContactTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM contacts WHERE id = .+ AND user_id =").
		WithArgs("ct-1", "u-1234").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.Delete(context.Background(), "u-1234", "ct-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactRepository_Delete_NotFound(t *testing.T) {
	repo, mock := newContactTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM contacts WHERE id = .+ AND user_id =").
		WithArgs("ct-1", "other-user").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), "other-user", "ct-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
