//go:generate go run go.uber.org/mock/mockgen -source=notification.go -destination=../mocks/mock_notification_store.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"chathub/domain"
)

type INotificationStore interface {
	Create(n domain.Notification) (domain.Notification, error)
	ListForUser(userID string) ([]domain.Notification, error)
}

type NotificationStore struct {
	db *badger.DB
}

func NewNotificationStore(db *badger.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

type diskNotification struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Link      string    `json:"link"`
	RelatedID string    `json:"related_id,omitempty"`
	IsRead    bool      `json:"is_read"`
	At        int64     `json:"at"`
}

// Keys sort chronologically per recipient: "notif:{user}:{padded-ts}:{uuid}".
func notificationKey(n domain.Notification) []byte {
	return []byte(fmt.Sprintf("notif:%s:%019d:%s", n.UserID, n.CreatedAt.UnixNano(), n.ID))
}

func (s *NotificationStore) Create(n domain.Notification) (domain.Notification, error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	bytes, err := json.Marshal(fromNotification(n))
	if err != nil {
		return domain.Notification{}, err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(notificationKey(n), bytes)
	})
	if err != nil {
		return domain.Notification{}, err
	}
	return n, nil
}

func (s *NotificationStore) ListForUser(userID string) ([]domain.Notification, error) {
	prefix := []byte("notif:" + userID + ":")
	var notifications []domain.Notification
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var stored diskNotification
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &stored)
			})
			if err != nil {
				return err
			}
			notifications = append(notifications, toNotification(stored))
		}
		return nil
	})
	return notifications, err
}

func fromNotification(n domain.Notification) diskNotification {
	return diskNotification{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Link:      n.Link,
		RelatedID: n.RelatedID,
		IsRead:    n.IsRead,
		At:        n.CreatedAt.UnixNano(),
	}
}

func toNotification(stored diskNotification) domain.Notification {
	return domain.Notification{
		ID:        stored.ID,
		UserID:    stored.UserID,
		Title:     stored.Title,
		Message:   stored.Message,
		Type:      stored.Type,
		Link:      stored.Link,
		RelatedID: stored.RelatedID,
		IsRead:    stored.IsRead,
		CreatedAt: time.Unix(0, stored.At).UTC(),
	}
}
