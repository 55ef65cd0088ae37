//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_directory.go -package=mocks
package repositories

import (
	"encoding/json"

	"github.com/dgraph-io/badger/v4"

	"chathub/domain"
	apperrors "chathub/errors"
)

// IUserDirectory is the read-mostly view of platform accounts. The realtime
// core reads display fields and owns the online flag.
type IUserDirectory interface {
	FindByID(id string) (domain.User, error)
	SetOnline(id string, online bool) error
	Save(user domain.User) error
}

type UserDirectory struct {
	db *badger.DB
}

func NewUserDirectory(db *badger.DB) IUserDirectory {
	return &UserDirectory{db: db}
}

type diskUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	IsOnline    bool   `json:"is_online"`
}

func userKey(id string) []byte {
	return []byte("user:" + id)
}

func (u *UserDirectory) FindByID(id string) (domain.User, error) {
	var stored diskUser
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return apperrors.ErrUserNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &stored)
		})
	})
	if err != nil {
		return domain.User{}, err
	}
	return domain.User(stored), nil
}

// SetOnline mutates only the presence flag; unknown users are an error so a
// stale presence update cannot invent accounts.
func (u *UserDirectory) SetOnline(id string, online bool) error {
	return u.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return apperrors.ErrUserNotFound
			}
			return err
		}
		var stored diskUser
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &stored)
		}); err != nil {
			return err
		}
		stored.IsOnline = online
		bytes, err := json.Marshal(stored)
		if err != nil {
			return err
		}
		return txn.Set(userKey(id), bytes)
	})
}

func (u *UserDirectory) Save(user domain.User) error {
	bytes, err := json.Marshal(diskUser(user))
	if err != nil {
		return err
	}
	return u.db.Update(func(txn *badger.Txn) error {
		return txn.Set(userKey(user.ID), bytes)
	})
}
