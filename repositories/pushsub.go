//go:generate go run go.uber.org/mock/mockgen -source=pushsub.go -destination=../mocks/mock_push_subscription_store.go -package=mocks
package repositories

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"

	"chathub/domain"
)

// IPushSubscriptionStore holds web-push endpoints per user. Delete is keyed
// by endpoint alone so the notifier can evict an expired endpoint without
// knowing its owner.
type IPushSubscriptionStore interface {
	ListForUser(userID string) ([]domain.PushSubscription, error)
	Save(sub domain.PushSubscription) error
	Delete(endpoint string) error
}

type PushSubscriptionStore struct {
	db *badger.DB
}

func NewPushSubscriptionStore(db *badger.DB) *PushSubscriptionStore {
	return &PushSubscriptionStore{db: db}
}

// endpointHash keeps endpoint URLs (long, arbitrary bytes) out of key space.
func endpointHash(endpoint string) string {
	sum := sha256.Sum256([]byte(endpoint))
	return hex.EncodeToString(sum[:])
}

func pushKey(userID, endpoint string) []byte {
	return []byte("push:" + userID + ":" + endpointHash(endpoint))
}

func pushIndexKey(endpoint string) []byte {
	return []byte("idx:push:" + endpointHash(endpoint))
}

func (s *PushSubscriptionStore) Save(sub domain.PushSubscription) error {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	bytes, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	key := pushKey(sub.UserID, sub.Endpoint)
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, bytes); err != nil {
			return err
		}
		return txn.Set(pushIndexKey(sub.Endpoint), key)
	})
}

func (s *PushSubscriptionStore) ListForUser(userID string) ([]domain.PushSubscription, error) {
	prefix := []byte("push:" + userID + ":")
	var subs []domain.PushSubscription
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var sub domain.PushSubscription
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &sub)
			})
			if err != nil {
				return err
			}
			subs = append(subs, sub)
		}
		return nil
	})
	return subs, err
}

// Delete is a no-op for unknown endpoints: eviction races are harmless.
func (s *PushSubscriptionStore) Delete(endpoint string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(pushIndexKey(endpoint))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		key, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete(pushIndexKey(endpoint))
	})
}
