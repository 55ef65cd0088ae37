package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification is the persisted "you have something new" record, read and
// dismissed by out-of-scope controllers.
type Notification struct {
	ID        uuid.UUID
	UserID    string
	Title     string
	Message   string
	Type      string
	Link      string
	RelatedID string
	IsRead    bool
	CreatedAt time.Time
}

const NotificationTypeMessage = "message"

// PushSubscription is one registered web-push endpoint for a user.
type PushSubscription struct {
	UserID    string
	Endpoint  string
	P256dh    string
	Auth      string
	CreatedAt time.Time
}
