package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/leap-ai/ozone/internal/model"
)

// UpsertSubscriber inserts a newsletter subscription, or, when the email
// already exists, flips the row back to subscribed and refreshes name and
// source. The insert-then-update shape keeps the statement portable across
// all three drivers. Returns the stored row and whether it was newly
// created.
func (s *Store) UpsertSubscriber(ctx context.Context, email, name, source string) (*model.Subscriber, bool, error) {
	now := time.Now().UTC()
	sub := &model.Subscriber{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		Status:    model.SubscriberStatusSubscribed,
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
	}

	const insertQ = `INSERT INTO newsletters
		(id, email, name, status, source, created_at, updated_at)
		VALUES
		(:id, :email, :name, :status, :source, :created_at, :updated_at)`

	_, err := s.db.NamedExecContext(ctx, insertQ, sub)
	if err == nil {
		return sub, true, nil
	}
	if !isUniqueViolation(err) {
		return nil, false, fmt.Errorf("insert subscriber: %w", err)
	}

	// Duplicate email: re-subscribe the existing row.
	updateQ := s.rebind(`UPDATE newsletters
		SET status = ?, name = ?, source = ?, updated_at = ?
		WHERE email = ?`)
	if _, err := s.db.ExecContext(ctx, updateQ, model.SubscriberStatusSubscribed, name, source, now, email); err != nil {
		return nil, false, fmt.Errorf("update subscriber: %w", err)
	}

	var existing model.Subscriber
	getQ := s.rebind(`SELECT * FROM newsletters WHERE email = ?`)
	if err := s.db.GetContext(ctx, &existing, getQ, email); err != nil {
		return nil, false, fmt.Errorf("get subscriber: %w", err)
	}
	return &existing, false, nil
}

// CountSubscribers returns the number of rows with subscribed status.
func (s *Store) CountSubscribers(ctx context.Context) (int, error) {
	var count int
	q := s.rebind(`SELECT COUNT(*) FROM newsletters WHERE status = ?`)
	if err := s.db.GetContext(ctx, &count, q, model.SubscriberStatusSubscribed); err != nil {
		return 0, fmt.Errorf("count subscribers: %w", err)
	}
	return count, nil
}

// CreateAccessRequest inserts a contact-form submission with pending status.
func (s *Store) CreateAccessRequest(ctx context.Context, req *model.AccessRequest) error {
	now := time.Now().UTC()
	req.ID = uuid.NewString()
	if req.Status == "" {
		req.Status = "pending"
	}
	req.CreatedAt = now
	req.UpdatedAt = now

	const q = `INSERT INTO access_requests
		(id, name, email, company, message, request_type, status, created_at, updated_at)
		VALUES
		(:id, :name, :email, :company, :message, :request_type, :status, :created_at, :updated_at)`

	if _, err := s.db.NamedExecContext(ctx, q, req); err != nil {
		return fmt.Errorf("insert access request: %w", err)
	}
	return nil
}

// ListAccessRequestsByEmail returns the newest access requests submitted
// with the given email.
func (s *Store) ListAccessRequestsByEmail(ctx context.Context, email string, limit int) ([]model.AccessRequest, error) {
	var reqs []model.AccessRequest
	q := s.rebind(`SELECT * FROM access_requests
		WHERE email = ?
		ORDER BY created_at DESC
		LIMIT ?`)
	if err := s.db.SelectContext(ctx, &reqs, q, email, limit); err != nil {
		return nil, fmt.Errorf("list access requests: %w", err)
	}
	return reqs, nil
}
