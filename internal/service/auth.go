package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/leap-ai/ozone/internal/store"
)

// HashPassword produces a salted bcrypt hash for storage in
// Account.PasswordHash. Unlike API keys, passwords are low-entropy and
// must never be stored as a bare digest.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// SessionPrincipal is the dashboard identity carried by a session token.
type SessionPrincipal struct {
	AccountID string
	Email     string
}

// AuthService handles dashboard sessions: password verification and JWT
// issuance/validation.
type AuthService struct {
	store     *store.Store
	jwtSecret []byte
}

// NewAuthService creates an AuthService backed by the given store.
func NewAuthService(st *store.Store, jwtSecret string) *AuthService {
	return &AuthService{
		store:     st,
		jwtSecret: []byte(jwtSecret),
	}
}

// Login verifies an email/password pair and returns the account's session
// principal. Disabled accounts and wrong passwords both map to
// ErrInvalidCredentials so the response does not reveal which one failed.
func (s *AuthService) Login(ctx context.Context, email, password string) (*SessionPrincipal, error) {
	acct, err := s.store.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !acct.IsActive {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	_ = s.store.UpdateAccountLastLogin(ctx, acct.ID)

	return &SessionPrincipal{AccountID: acct.ID, Email: acct.Email}, nil
}

// IssueJWT creates a signed session token for the given account.
func (s *AuthService) IssueJWT(ctx context.Context, accountID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		AccountID: accountID,
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "ozone",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateJWT verifies a bearer token and returns the session principal.
func (s *AuthService) ValidateJWT(ctx context.Context, tokenStr string) (*SessionPrincipal, error) {
	claims := &sessionClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !token.Valid {
		return nil, ErrInvalidCredentials
	}

	return &SessionPrincipal{AccountID: claims.AccountID, Email: claims.Email}, nil
}

type sessionClaims struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}
