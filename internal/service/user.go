package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/utafrali/ContactsGo/internal/domain"
	"github.com/utafrali/ContactsGo/internal/event"
	"github.com/utafrali/ContactsGo/internal/repository"
	"github.com/utafrali/ContactsGo/internal/storage"
	apperrors "github.com/utafrali/ContactsGo/pkg/errors"
)

// UserService implements profile operations for authenticated users.
type UserService struct {
	userRepo repository.UserRepository
	storage  storage.Storage
	producer *event.Producer
	logger   *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	userRepo repository.UserRepository,
	store storage.Storage,
	producer *event.Producer,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		storage:  store,
		producer: producer,
		logger:   logger,
	}
}

// UploadAvatarInput holds the parameters for an avatar upload.
type UploadAvatarInput struct {
	ContentType string
	Size        int64
	Data        io.Reader
}

// GetMe retrieves the authenticated user's own profile.
func (s *UserService) GetMe(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user profile: %w", err)
	}
	return user, nil
}

// UpdateAvatar uploads a new avatar image and stores its delivery URL on the
// profile. The storage key is the user ID, so each re-upload replaces the
// previous asset.
func (s *UserService) UpdateAvatar(ctx context.Context, userID string, input UploadAvatarInput) (string, error) {
	result, err := s.storage.Upload(ctx, &storage.UploadInput{
		Key:         userID,
		ContentType: input.ContentType,
		Size:        input.Size,
		Data:        input.Data,
	})
	if err != nil {
		return "", apperrors.Upstream("avatar storage", err)
	}

	if err := s.userRepo.UpdateAvatar(ctx, userID, result.URL); err != nil {
		return "", fmt.Errorf("store avatar url: %w", err)
	}

	// Publish avatar event (non-blocking on failure).
	if err := s.producer.PublishUserAvatarUpdated(ctx, userID, result.URL); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.avatar_updated event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "avatar updated",
		slog.String("user_id", userID),
		slog.String("avatar_url", result.URL),
	)

	return result.URL, nil
}
