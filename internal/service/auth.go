package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/utafrali/ContactsGo/internal/auth"
	"github.com/utafrali/ContactsGo/internal/domain"
	"github.com/utafrali/ContactsGo/internal/event"
	"github.com/utafrali/ContactsGo/internal/mailer"
	"github.com/utafrali/ContactsGo/internal/repository"
	apperrors "github.com/utafrali/ContactsGo/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// minPasswordLength is the minimum password length required.
const minPasswordLength = 8

// AvatarFinder looks up a default avatar for an email address. A failed or
// empty lookup never fails the operation that triggered it.
type AvatarFinder interface {
	AvatarURL(ctx context.Context, email string) (string, error)
}

// AuthService implements signup, login, token refresh, and email confirmation.
type AuthService struct {
	userRepo   repository.UserRepository
	jwtManager *auth.JWTManager
	producer   *event.Producer
	mailer     mailer.Sender
	avatars    AvatarFinder
	baseURL    string
	logger     *slog.Logger
}

// NewAuthService creates a new auth service. baseURL is the public base URL
// of this service, used to build confirmation links.
func NewAuthService(
	userRepo repository.UserRepository,
	jwtManager *auth.JWTManager,
	producer *event.Producer,
	sender mailer.Sender,
	avatars AvatarFinder,
	baseURL string,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		producer:   producer,
		mailer:     sender,
		avatars:    avatars,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// SignupInput holds the parameters for registering a new account.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// LoginInput holds the parameters for logging in.
type LoginInput struct {
	Email    string
	Password string
}

// Signup creates a new unconfirmed account and sends a confirmation email.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*domain.User, error) {
	if input.Username == "" {
		return nil, apperrors.InvalidInput("username is required")
	}
	if input.Email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// Best-effort default avatar. New accounts without a Gravatar simply
	// start without one.
	avatarURL, err := s.avatars.AvatarURL(ctx, input.Email)
	if err != nil {
		s.logger.WarnContext(ctx, "gravatar lookup failed",
			slog.String("email", input.Email),
			slog.String("error", err.Error()),
		)
		avatarURL = ""
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Confirmed:    false,
		AvatarURL:    avatarURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.sendConfirmation(ctx, user.Email); err != nil {
		s.logger.ErrorContext(ctx, "failed to send confirmation email",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	// Publish registration event (non-blocking on failure).
	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user signed up",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Login authenticates a confirmed user and returns a fresh token pair.
// Unknown addresses, unconfirmed accounts, and wrong passwords are all
// rejected with the same message so callers cannot probe for accounts.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*domain.User, *domain.TokenPair, error) {
	if input.Email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if input.Password == "" {
		return nil, nil, apperrors.InvalidInput("password is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, nil, apperrors.Unauthorized("invalid email or password")
	}

	if !user.Confirmed {
		return nil, nil, apperrors.Unauthorized("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, nil, apperrors.Unauthorized("invalid email or password")
	}

	tokens, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("issue tokens: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, tokens, nil
}

// RefreshToken rotates a valid refresh token into a new token pair. The
// presented token must match the hash stored on the user row; a mismatch
// means the token was already rotated or revoked, so the stored hash is
// cleared to force a fresh login.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	if refreshToken == "" {
		return nil, apperrors.InvalidInput("refresh token is required")
	}

	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired refresh token")
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired refresh token")
	}

	if user.RefreshTokenHash == "" || user.RefreshTokenHash != hashToken(refreshToken) {
		if err := s.userRepo.UpdateRefreshTokenHash(ctx, user.ID, ""); err != nil {
			s.logger.ErrorContext(ctx, "failed to clear refresh token hash",
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()),
			)
		}
		return nil, apperrors.Unauthorized("invalid or expired refresh token")
	}

	tokens, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	s.logger.InfoContext(ctx, "tokens refreshed",
		slog.String("user_id", user.ID),
	)

	return tokens, nil
}

// ConfirmEmail marks the account behind a confirmation-link token as
// confirmed. Confirming an already-confirmed account succeeds.
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) error {
	if token == "" {
		return apperrors.InvalidInput("confirmation token is required")
	}

	email, err := s.jwtManager.ValidateEmailToken(token)
	if err != nil {
		return apperrors.Unauthorized("invalid or expired confirmation token")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return apperrors.Unauthorized("invalid or expired confirmation token")
	}

	if user.Confirmed {
		s.logger.InfoContext(ctx, "email already confirmed",
			slog.String("user_id", user.ID),
		)
		return nil
	}

	if err := s.userRepo.ConfirmEmail(ctx, email); err != nil {
		return fmt.Errorf("confirm email: %w", err)
	}

	// Publish confirmation event (non-blocking on failure).
	if err := s.producer.PublishUserConfirmed(ctx, email); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.confirmed event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "email confirmed",
		slog.String("user_id", user.ID),
		slog.String("email", email),
	)

	return nil
}

// RequestEmail re-sends the confirmation email. It reports success whether or
// not the address belongs to an account, so the endpoint cannot be used to
// probe for registered emails. Already-confirmed accounts get no mail.
func (s *AuthService) RequestEmail(ctx context.Context, email string) error {
	if email == "" {
		return apperrors.InvalidInput("email is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		s.logger.InfoContext(ctx, "confirmation requested for unknown email",
			slog.String("email", email),
		)
		return nil
	}

	if user.Confirmed {
		s.logger.InfoContext(ctx, "confirmation requested for confirmed account",
			slog.String("user_id", user.ID),
		)
		return nil
	}

	if err := s.sendConfirmation(ctx, user.Email); err != nil {
		return fmt.Errorf("send confirmation email: %w", err)
	}

	s.logger.InfoContext(ctx, "confirmation email re-sent",
		slog.String("user_id", user.ID),
	)

	return nil
}

// Logout clears the stored refresh token hash, invalidating the user's
// current refresh token. Access tokens remain valid until they expire.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.userRepo.UpdateRefreshTokenHash(ctx, userID, ""); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged out",
		slog.String("user_id", userID),
	)

	return nil
}

// Resolve validates an access token and returns the user it identifies.
// A valid token for a deleted account is rejected.
func (s *AuthService) Resolve(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.jwtManager.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired access token")
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired access token")
	}

	return user, nil
}

// --- Helpers ---

// issueTokenPair creates an access/refresh pair and stores the refresh hash.
func (s *AuthService) issueTokenPair(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.userRepo.UpdateRefreshTokenHash(ctx, user.ID, hashToken(refreshToken)); err != nil {
		return nil, fmt.Errorf("store refresh token hash: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

func (s *AuthService) sendConfirmation(ctx context.Context, email string) error {
	token, err := s.jwtManager.GenerateEmailToken(email)
	if err != nil {
		return fmt.Errorf("generate email token: %w", err)
	}

	confirmURL := fmt.Sprintf("%s/api/auth/confirmed_email/%s", s.baseURL, token)
	return s.mailer.SendConfirmation(ctx, email, confirmURL)
}

// hashToken returns the SHA256 hex digest of the given token string.
func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// validatePassword checks that the password meets minimum complexity requirements.
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit {
		return apperrors.InvalidInput("password must contain at least one uppercase letter, one lowercase letter, and one digit")
	}

	return nil
}
