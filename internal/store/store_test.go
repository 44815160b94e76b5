package store

import (
	"context"
	"testing"

	"github.com/leap-ai/ozone/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore("") // in-memory
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestAccount(t *testing.T, s *Store, email string) *model.Account {
	t.Helper()
	acct := &model.Account{
		Email:        email,
		PasswordHash: "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
		Name:         "Test Account",
		IsActive:     true,
	}
	if err := s.CreateAccount(context.Background(), acct); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	return acct
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migrate run: %v", err)
	}
}

func TestHashAPIKeyDeterministic(t *testing.T) {
	a := HashAPIKey("leap_abc123")
	b := HashAPIKey("leap_abc123")
	if a != b {
		t.Errorf("same input hashed differently: %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Errorf("got hash length %d, want 64 hex chars", len(a))
	}
	if HashAPIKey("leap_abc124") == a {
		t.Error("different inputs produced the same hash")
	}
}

func TestAccountCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	acct := createTestAccount(t, s, "dev@leap.ai")
	if acct.ID == "" {
		t.Fatal("expected non-empty ID after create")
	}

	got, err := s.GetAccountByEmail(ctx, "dev@leap.ai")
	if err != nil {
		t.Fatalf("GetAccountByEmail: %v", err)
	}
	if got.ID != acct.ID {
		t.Errorf("got ID %q, want %q", got.ID, acct.ID)
	}

	got2, err := s.GetAccount(ctx, acct.ID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if got2.Email != "dev@leap.ai" {
		t.Errorf("got email %q, want %q", got2.Email, "dev@leap.ai")
	}

	has, err := s.HasAnyAccount(ctx)
	if err != nil {
		t.Fatalf("HasAnyAccount: %v", err)
	}
	if !has {
		t.Error("HasAnyAccount = false after create")
	}

	if err := s.UpdateAccountLastLogin(ctx, acct.ID); err != nil {
		t.Fatalf("UpdateAccountLastLogin: %v", err)
	}
	got3, _ := s.GetAccount(ctx, acct.ID)
	if got3.LastLoginAt == nil {
		t.Error("expected last_login_at to be set")
	}

	if _, err := s.GetAccountByEmail(ctx, "nobody@leap.ai"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetSetting(ctx, "instance_id"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for missing setting, got %v", err)
	}

	if err := s.SetSetting(ctx, "instance_id", "abc"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	val, err := s.GetSetting(ctx, "instance_id")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if val != "abc" {
		t.Errorf("got %q, want %q", val, "abc")
	}

	// Overwrite
	if err := s.SetSetting(ctx, "instance_id", "def"); err != nil {
		t.Fatalf("SetSetting overwrite: %v", err)
	}
	val, _ = s.GetSetting(ctx, "instance_id")
	if val != "def" {
		t.Errorf("got %q after overwrite, want %q", val, "def")
	}
}
