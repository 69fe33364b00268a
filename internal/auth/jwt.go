package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token scopes. Every issued token carries exactly one scope and validation
// rejects tokens presented for a different purpose.
const (
	ScopeAccess  = "access_token"
	ScopeRefresh = "refresh_token"
	ScopeEmail   = "email_token"
)

// Validation failure variants. All of them surface to clients as 401; the
// distinction exists for logging and tests.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed or signature invalid")
	ErrTokenScope     = errors.New("token has wrong scope")
)

// Claims represents the JWT claims carried by every ContactsGo token.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Scope  string `json:"scope"`
	jwt.RegisteredClaims
}

// JWTManager handles token generation and validation for all three scopes.
type JWTManager struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	emailExpiry   time.Duration
}

// NewJWTManager creates a new JWT manager with the given secret and expiry durations.
func NewJWTManager(secret string, accessExpiry, refreshExpiry, emailExpiry time.Duration) *JWTManager {
	return &JWTManager{
		secret:        []byte(secret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		emailExpiry:   emailExpiry,
	}
}

// GenerateAccessToken creates a signed short-lived token identifying the user.
func (m *JWTManager) GenerateAccessToken(userID, email string) (string, error) {
	return m.sign(&Claims{
		UserID: userID,
		Email:  email,
		Scope:  ScopeAccess,
		RegisteredClaims: m.registered(userID, m.accessExpiry),
	})
}

// GenerateRefreshToken creates a signed long-lived token used only to obtain
// a new token pair.
func (m *JWTManager) GenerateRefreshToken(userID string) (string, error) {
	return m.sign(&Claims{
		UserID: userID,
		Scope:  ScopeRefresh,
		RegisteredClaims: m.registered(userID, m.refreshExpiry),
	})
}

// GenerateEmailToken creates a signed token for email confirmation links.
// The subject is the email address rather than the user ID.
func (m *JWTManager) GenerateEmailToken(email string) (string, error) {
	return m.sign(&Claims{
		Email: email,
		Scope: ScopeEmail,
		RegisteredClaims: m.registered(email, m.emailExpiry),
	})
}

// Validate parses the token, verifies the HMAC signature and expiry, and
// checks that the token was issued for the expected scope.
func (m *JWTManager) Validate(tokenString, scope string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("parse token: %w", ErrTokenExpired)
		}
		return nil, fmt.Errorf("parse token: %w", ErrTokenMalformed)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	if claims.Scope != scope {
		return nil, fmt.Errorf("expected scope %s, got %s: %w", scope, claims.Scope, ErrTokenScope)
	}

	return claims, nil
}

// ValidateAccessToken validates a token issued with the access scope.
func (m *JWTManager) ValidateAccessToken(tokenString string) (*Claims, error) {
	return m.Validate(tokenString, ScopeAccess)
}

// ValidateRefreshToken validates a token issued with the refresh scope.
func (m *JWTManager) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return m.Validate(tokenString, ScopeRefresh)
}

// ValidateEmailToken validates a confirmation-link token and returns the
// email address it was issued for.
func (m *JWTManager) ValidateEmailToken(tokenString string) (string, error) {
	claims, err := m.Validate(tokenString, ScopeEmail)
	if err != nil {
		return "", err
	}
	return claims.Email, nil
}

func (m *JWTManager) registered(subject string, expiry time.Duration) jwt.RegisteredClaims {
	now := time.Now().UTC()
	return jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		Issuer:    "contacts-service",
	}
}

func (m *JWTManager) sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", claims.Scope, err)
	}
	return signedToken, nil
}
