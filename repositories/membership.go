//go:generate go run go.uber.org/mock/mockgen -source=membership.go -destination=../mocks/mock_membership_store.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"chathub/domain"
)

// IMembershipStore is the shape shared by group and channel membership: a
// relation between users and rooms, written by the CRUD layer and read here
// at connect time. ListForUser intentionally returns memberships of every
// status; the resolver decides what to do with pending ones.
type IMembershipStore interface {
	ListForUser(userID string) ([]domain.Membership, error)
	ListMembers(roomID string) ([]string, error)
	Add(m domain.Membership) error
	Remove(userID, roomID string) error
	GetRoom(roomID string) (domain.Room, error)
	SaveRoom(room domain.Room) error
}

// MembershipStore keys both directions of the relation so that the connect
// path (user -> rooms) and the notification path (room -> users) are each a
// single prefix scan. kind is "group" or "channel".
type MembershipStore struct {
	db   *badger.DB
	kind string
}

func NewGroupMembershipStore(db *badger.DB) *MembershipStore {
	return &MembershipStore{db: db, kind: "group"}
}

func NewChannelMembershipStore(db *badger.DB) *MembershipStore {
	return &MembershipStore{db: db, kind: "channel"}
}

func (s *MembershipStore) memberKey(roomID, userID string) []byte {
	return []byte(fmt.Sprintf("%s:member:%s:%s", s.kind, roomID, userID))
}

func (s *MembershipStore) reverseKey(userID, roomID string) []byte {
	return []byte(fmt.Sprintf("%s:user:%s:%s", s.kind, userID, roomID))
}

func (s *MembershipStore) roomKey(roomID string) []byte {
	return []byte(fmt.Sprintf("%s:info:%s", s.kind, roomID))
}

func (s *MembershipStore) Add(m domain.Membership) error {
	bytes, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(s.memberKey(m.RoomID, m.UserID), bytes); err != nil {
			return err
		}
		return txn.Set(s.reverseKey(m.UserID, m.RoomID), bytes)
	})
}

func (s *MembershipStore) Remove(userID, roomID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(s.memberKey(roomID, userID)); err != nil {
			return err
		}
		return txn.Delete(s.reverseKey(userID, roomID))
	})
}

func (s *MembershipStore) ListForUser(userID string) ([]domain.Membership, error) {
	prefix := []byte(fmt.Sprintf("%s:user:%s:", s.kind, userID))
	var memberships []domain.Membership
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var m domain.Membership
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &m)
			})
			if err != nil {
				return err
			}
			memberships = append(memberships, m)
		}
		return nil
	})
	return memberships, err
}

func (s *MembershipStore) ListMembers(roomID string) ([]string, error) {
	prefix := []byte(fmt.Sprintf("%s:member:%s:", s.kind, roomID))
	var members []string
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var m domain.Membership
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &m)
			})
			if err != nil {
				return err
			}
			members = append(members, m.UserID)
		}
		return nil
	})
	return members, err
}

func (s *MembershipStore) GetRoom(roomID string) (domain.Room, error) {
	var room domain.Room
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.roomKey(roomID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &room)
		})
	})
	return room, err
}

func (s *MembershipStore) SaveRoom(room domain.Room) error {
	bytes, err := json.Marshal(room)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.roomKey(room.ID), bytes)
	})
}
