package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/ContactsGo/internal/domain"
	"github.com/utafrali/ContactsGo/internal/event"
	"github.com/utafrali/ContactsGo/internal/repository"
	apperrors "github.com/utafrali/ContactsGo/pkg/errors"
)

// birthdayWindowDays is the look-ahead window for upcoming birthdays.
const birthdayWindowDays = 7

// searchFields is the order in which contact fields are tried when searching.
// The first field that yields matches wins.
var searchFields = []string{"first_name", "last_name", "email"}

// ContactService implements the business logic for contact operations.
// Every operation acts on behalf of one user; contacts owned by other users
// are invisible.
type ContactService struct {
	contactRepo repository.ContactRepository
	producer    *event.Producer
	logger      *slog.Logger
}

// NewContactService creates a new contact service.
func NewContactService(
	contactRepo repository.ContactRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *ContactService {
	return &ContactService{
		contactRepo: contactRepo,
		producer:    producer,
		logger:      logger,
	}
}

// CreateContactInput holds the parameters for creating a contact.
type CreateContactInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Birthday  time.Time
}

// UpdateContactInput holds the parameters for updating a contact. Nil fields
// are left unchanged.
type UpdateContactInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Birthday  *time.Time
}

// Create adds a contact to the user's book. The email must not already be
// used by another of the user's contacts.
func (s *ContactService) Create(ctx context.Context, userID string, input CreateContactInput) (*domain.Contact, error) {
	if input.FirstName == "" {
		return nil, apperrors.InvalidInput("first name is required")
	}
	if input.LastName == "" {
		return nil, apperrors.InvalidInput("last name is required")
	}
	if input.Email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if input.Phone == "" {
		return nil, apperrors.InvalidInput("phone is required")
	}
	if input.Birthday.IsZero() {
		return nil, apperrors.InvalidInput("birthday is required")
	}

	exists, err := s.contactRepo.ExistsByEmail(ctx, userID, input.Email)
	if err != nil {
		return nil, fmt.Errorf("check contact email: %w", err)
	}
	if exists {
		return nil, apperrors.AlreadyExists("contact", "email", input.Email)
	}

	now := time.Now().UTC()
	contact := &domain.Contact{
		ID:        uuid.New().String(),
		UserID:    userID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		Birthday:  input.Birthday,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}

	// Publish creation event (non-blocking on failure).
	if err := s.producer.PublishContactCreated(ctx, contact); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish contact.created event",
			slog.String("contact_id", contact.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "contact created",
		slog.String("user_id", userID),
		slog.String("contact_id", contact.ID),
	)

	return contact, nil
}

// List returns all of the user's contacts.
func (s *ContactService) List(ctx context.Context, userID string) ([]domain.Contact, error) {
	contacts, err := s.contactRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

// Get returns one of the user's contacts by its identifier.
func (s *ContactService) Get(ctx context.Context, userID, contactID string) (*domain.Contact, error) {
	contact, err := s.contactRepo.GetByID(ctx, userID, contactID)
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return contact, nil
}

// Search finds contacts whose first name, last name, or email contains the
// query, case-insensitively. The fields are tried in that order and the first
// field with matches wins. No matches in any field is a not-found.
func (s *ContactService) Search(ctx context.Context, userID, query string) ([]domain.Contact, error) {
	if query == "" {
		return nil, apperrors.InvalidInput("search query is required")
	}

	for _, field := range searchFields {
		contacts, err := s.contactRepo.SearchByField(ctx, userID, field, query)
		if err != nil {
			return nil, fmt.Errorf("search contacts by %s: %w", field, err)
		}
		if len(contacts) > 0 {
			return contacts, nil
		}
	}

	return nil, apperrors.NotFound("contact", query)
}

// UpcomingBirthdays returns the user's contacts whose birthday falls within
// the next seven days, today included.
func (s *ContactService) UpcomingBirthdays(ctx context.Context, userID string) ([]domain.Contact, error) {
	contacts, err := s.contactRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list contacts for birthdays: %w", err)
	}

	today := time.Now().UTC()
	upcoming := make([]domain.Contact, 0, len(contacts))
	for _, c := range contacts {
		if c.HasBirthdayWithin(today, birthdayWindowDays) {
			upcoming = append(upcoming, c)
		}
	}

	return upcoming, nil
}

// Update modifies one of the user's contacts. Changing the email to one
// already used by another of the user's contacts is rejected.
func (s *ContactService) Update(ctx context.Context, userID, contactID string, input UpdateContactInput) (*domain.Contact, error) {
	contact, err := s.contactRepo.GetByID(ctx, userID, contactID)
	if err != nil {
		return nil, fmt.Errorf("get contact for update: %w", err)
	}

	if input.FirstName != nil {
		if *input.FirstName == "" {
			return nil, apperrors.InvalidInput("first name must not be empty")
		}
		contact.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		if *input.LastName == "" {
			return nil, apperrors.InvalidInput("last name must not be empty")
		}
		contact.LastName = *input.LastName
	}
	if input.Email != nil {
		if *input.Email == "" {
			return nil, apperrors.InvalidInput("email must not be empty")
		}
		if *input.Email != contact.Email {
			exists, err := s.contactRepo.ExistsByEmail(ctx, userID, *input.Email)
			if err != nil {
				return nil, fmt.Errorf("check contact email: %w", err)
			}
			if exists {
				return nil, apperrors.AlreadyExists("contact", "email", *input.Email)
			}
		}
		contact.Email = *input.Email
	}
	if input.Phone != nil {
		if *input.Phone == "" {
			return nil, apperrors.InvalidInput("phone must not be empty")
		}
		contact.Phone = *input.Phone
	}
	if input.Birthday != nil {
		contact.Birthday = *input.Birthday
	}

	if err := s.contactRepo.Update(ctx, contact); err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}

	s.logger.InfoContext(ctx, "contact updated",
		slog.String("user_id", userID),
		slog.String("contact_id", contactID),
	)

	return contact, nil
}

// Delete removes one of the user's contacts.
func (s *ContactService) Delete(ctx context.Context, userID, contactID string) error {
	if err := s.contactRepo.Delete(ctx, userID, contactID); err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}

	s.logger.InfoContext(ctx, "contact deleted",
		slog.String("user_id", userID),
		slog.String("contact_id", contactID),
	)

	return nil
}
