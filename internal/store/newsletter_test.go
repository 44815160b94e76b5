package store

import (
	"context"
	"testing"

	"github.com/leap-ai/ozone/internal/model"
)

func TestUpsertSubscriber(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sub, created, err := s.UpsertSubscriber(ctx, "fan@example.com", "Fan", "website")
	if err != nil {
		t.Fatalf("UpsertSubscriber: %v", err)
	}
	if !created {
		t.Error("expected created=true on first subscribe")
	}
	if sub.Status != model.SubscriberStatusSubscribed {
		t.Errorf("got status %q, want %q", sub.Status, model.SubscriberStatusSubscribed)
	}

	// Same email again: the row is refreshed, not duplicated.
	sub2, created2, err := s.UpsertSubscriber(ctx, "fan@example.com", "Fan Again", "footer")
	if err != nil {
		t.Fatalf("UpsertSubscriber repeat: %v", err)
	}
	if created2 {
		t.Error("expected created=false on re-subscribe")
	}
	if sub2.ID != sub.ID {
		t.Errorf("re-subscribe produced a new row: %q vs %q", sub2.ID, sub.ID)
	}
	if sub2.Name != "Fan Again" {
		t.Errorf("got name %q, want refreshed name", sub2.Name)
	}

	count, err := s.CountSubscribers(ctx)
	if err != nil {
		t.Fatalf("CountSubscribers: %v", err)
	}
	if count != 1 {
		t.Errorf("got %d subscribers, want 1", count)
	}
}

func TestAccessRequests(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	req := &model.AccessRequest{
		Name:        "Dana",
		Email:       "dana@example.com",
		Company:     "Example Corp",
		Message:     "We would like API access.",
		RequestType: "api_access",
	}
	if err := s.CreateAccessRequest(ctx, req); err != nil {
		t.Fatalf("CreateAccessRequest: %v", err)
	}
	if req.ID == "" {
		t.Fatal("expected non-empty ID")
	}
	if req.Status != "pending" {
		t.Errorf("got status %q, want %q", req.Status, "pending")
	}

	list, err := s.ListAccessRequestsByEmail(ctx, "dana@example.com", 10)
	if err != nil {
		t.Fatalf("ListAccessRequestsByEmail: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d requests, want 1", len(list))
	}
	if list[0].Company != "Example Corp" {
		t.Errorf("got company %q, want %q", list[0].Company, "Example Corp")
	}

	other, err := s.ListAccessRequestsByEmail(ctx, "nobody@example.com", 10)
	if err != nil {
		t.Fatalf("ListAccessRequestsByEmail miss: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("got %d requests for unknown email, want 0", len(other))
	}
}
