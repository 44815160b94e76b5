package model

import "time"

// Subscriber statuses.
const (
	SubscriberStatusSubscribed   = "subscribed"
	SubscriberStatusUnsubscribed = "unsubscribed"
)

// Subscriber is a newsletter signup. Email is unique; re-subscribing an
// existing address updates the row instead of inserting a duplicate.
type Subscriber struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name,omitempty" db:"name"`
	Status    string    `json:"status" db:"status"`
	Source    string    `json:"subscription_source" db:"source"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AccessRequest is a contact-form submission asking for platform access.
type AccessRequest struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Email       string    `json:"email" db:"email"`
	Company     string    `json:"company,omitempty" db:"company"`
	Message     string    `json:"message,omitempty" db:"message"`
	RequestType string    `json:"request_type" db:"request_type"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
