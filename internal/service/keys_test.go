package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/leap-ai/ozone/internal/model"
	"github.com/leap-ai/ozone/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewStore("") // in-memory
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createAccount(t *testing.T, s *store.Store, email string) *model.Account {
	t.Helper()
	hash, err := HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	acct := &model.Account{
		Email:        email,
		PasswordHash: hash,
		Name:         "Test",
		IsActive:     true,
	}
	if err := s.CreateAccount(context.Background(), acct); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	return acct
}

func TestIssueKeyFormat(t *testing.T) {
	st := newTestStore(t)
	svc := NewKeyService(st)
	acct := createAccount(t, st, "issue@leap.ai")

	issued, err := svc.Issue(context.Background(), acct.ID, "production")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if !strings.HasPrefix(issued.Plaintext, model.KeyPrefix) {
		t.Errorf("key %q missing prefix %q", issued.Plaintext, model.KeyPrefix)
	}
	hexPart := strings.TrimPrefix(issued.Plaintext, model.KeyPrefix)
	if len(hexPart) != 64 {
		t.Errorf("got %d hex chars after prefix, want 64", len(hexPart))
	}
	for _, c := range hexPart {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Errorf("non-hex character %q in key material", c)
			break
		}
	}

	// Stored record holds the hash, never the plaintext.
	if issued.Key.KeyHash == issued.Plaintext {
		t.Error("plaintext stored as hash")
	}
	if issued.Key.KeyHash != store.HashAPIKey(issued.Plaintext) {
		t.Error("stored hash does not match the issuance digest")
	}
	if issued.Key.RateLimit != model.DefaultRateLimit {
		t.Errorf("got rate_limit %d, want default %d", issued.Key.RateLimit, model.DefaultRateLimit)
	}
	if !issued.Key.Permissions.Read || issued.Key.Permissions.Write {
		t.Errorf("got permissions %+v, want read-only defaults", issued.Key.Permissions)
	}
}

func TestIssueKeyValidation(t *testing.T) {
	st := newTestStore(t)
	svc := NewKeyService(st)

	if _, err := svc.Issue(context.Background(), "", "name"); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("missing account: got %v, want ErrUnauthenticated", err)
	}

	acct := createAccount(t, st, "validate@leap.ai")
	if _, err := svc.Issue(context.Background(), acct.ID, "   "); !errors.Is(err, ErrValidation) {
		t.Errorf("blank name: got %v, want ErrValidation", err)
	}
}

func TestAuthenticateRoundTrip(t *testing.T) {
	st := newTestStore(t)
	svc := NewKeyService(st)
	acct := createAccount(t, st, "auth@leap.ai")

	issued, err := svc.Issue(context.Background(), acct.ID, "ci")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	p, err := svc.Authenticate(context.Background(), issued.Plaintext)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if p.AccountID != acct.ID {
		t.Errorf("got account %q, want %q", p.AccountID, acct.ID)
	}
	if p.KeyID != issued.Key.ID {
		t.Errorf("got key %q, want %q", p.KeyID, issued.Key.ID)
	}

	// A key is matched by exact digest equality only.
	if _, err := svc.Authenticate(context.Background(), issued.Plaintext+"0"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("tampered key: got %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Authenticate(context.Background(), ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("empty key: got %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthenticateExpiredKey(t *testing.T) {
	st := newTestStore(t)
	svc := NewKeyService(st)
	acct := createAccount(t, st, "expired@leap.ai")

	// Insert a key that expired an hour ago, bypassing the service.
	plaintext := model.KeyPrefix + strings.Repeat("ab", 32)
	past := time.Now().Add(-time.Hour)
	key := &model.APIKey{
		AccountID:   acct.ID,
		Name:        "short-lived",
		KeyHash:     store.HashAPIKey(plaintext),
		KeyPrefix:   model.KeyPrefix,
		Permissions: model.DefaultPermissions(),
		RateLimit:   model.DefaultRateLimit,
		IsActive:    true,
		ExpiresAt:   &past,
	}
	if err := st.CreateAPIKey(context.Background(), key); err != nil {
		t.Fatalf("CreateAPIKey: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), plaintext); !errors.Is(err, ErrKeyExpired) {
		t.Errorf("got %v, want ErrKeyExpired", err)
	}
}

func TestRevokePermanence(t *testing.T) {
	st := newTestStore(t)
	svc := NewKeyService(st)
	acct := createAccount(t, st, "permanent@leap.ai")

	issued, err := svc.Issue(context.Background(), acct.ID, "doomed")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if err := svc.Revoke(context.Background(), acct.ID, issued.Key.ID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), issued.Plaintext); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("revoked key authenticated: %v", err)
	}

	// The revoked key is gone from the account's listing.
	keys, err := svc.List(context.Background(), acct.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("got %d active keys after revoke, want 0", len(keys))
	}
}
