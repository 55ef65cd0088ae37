//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"chathub/domain"
	apperrors "chathub/errors"
)

// IMessageRepository is the message store consumed by the router and the
// call coordinator. No history queries here: retrieval is an out-of-scope
// controller concern.
type IMessageRepository interface {
	Create(message domain.Message) (domain.Message, error)
	Get(id uuid.UUID) (domain.Message, error)
	ToggleReaction(id uuid.UUID, userID, emoji string) (domain.Message, error)
	Edit(id uuid.UUID, userID, newBody string) (domain.Message, error)
	SoftDelete(id uuid.UUID, userID string) (domain.Message, error)
	TogglePin(id uuid.UUID) (domain.Message, error)
	ToggleStar(id uuid.UUID) (domain.Message, error)
	MarkConversationRead(readerID, partnerID string) error
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

type diskMessage struct {
	ID             uuid.UUID           `json:"id"`
	SenderID       string              `json:"sender_id"`
	ReceiverID     string              `json:"receiver_id,omitempty"`
	GroupID        string              `json:"group_id,omitempty"`
	ChannelID      string              `json:"channel_id,omitempty"`
	Body           string              `json:"message"`
	AttachmentURL  string              `json:"attachment_url,omitempty"`
	AttachmentType string              `json:"attachment_type,omitempty"`
	ReplyToID      *uuid.UUID          `json:"reply_to_id,omitempty"`
	IsRead         bool                `json:"is_read"`
	IsEdited       bool                `json:"is_edited"`
	IsDeleted      bool                `json:"is_deleted"`
	IsPinned       bool                `json:"is_pinned"`
	IsStarred      bool                `json:"is_starred"`
	Reactions      map[string][]string `json:"reactions,omitempty"`
	At             int64               `json:"at"`
}

// conversationKey buckets messages so that one prefix scan covers one
// conversation. Direct messages sort the pair, so both directions share
// a bucket.
func conversationKey(m domain.Message) string {
	switch {
	case m.GroupID != "":
		return "group_" + m.GroupID
	case m.ChannelID != "":
		return "channel_" + m.ChannelID
	default:
		pair := []string{m.SenderID, m.ReceiverID}
		sort.Strings(pair)
		return "dm:" + strings.Join(pair, ":")
	}
}

// primaryKey is formatted as "msg:{conversation}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two messages
//     arrive at the same nanosecond.
func primaryKey(m domain.Message) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s", conversationKey(m), m.CreatedAt.UnixNano(), m.ID))
}

// indexKey maps a message id to its primary key, so mutations can find a
// record without knowing its conversation or timestamp.
func indexKey(id uuid.UUID) []byte {
	return []byte("idx:msg:" + id.String())
}

// Create persists a message, assigning id and timestamp when absent.
func (m MessageRepository) Create(message domain.Message) (domain.Message, error) {
	if err := message.Validate(); err != nil {
		return domain.Message{}, err
	}
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	bytes, err := json.Marshal(fromMessage(message))
	if err != nil {
		return domain.Message{}, err
	}
	key := primaryKey(message)
	err = m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, bytes); err != nil {
			return err
		}
		return txn.Set(indexKey(message.ID), key)
	})
	if err != nil {
		return domain.Message{}, err
	}
	return message, nil
}

func (m MessageRepository) Get(id uuid.UUID) (domain.Message, error) {
	var message domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		stored, _, err := loadByID(txn, id)
		if err != nil {
			return err
		}
		message = toMessage(stored)
		return nil
	})
	return message, err
}

// ToggleReaction applies the domain toggle and writes the record back.
func (m MessageRepository) ToggleReaction(id uuid.UUID, userID, emoji string) (domain.Message, error) {
	return m.mutate(id, func(msg *domain.Message) error {
		msg.ToggleReaction(emoji, userID)
		return nil
	})
}

func (m MessageRepository) Edit(id uuid.UUID, userID, newBody string) (domain.Message, error) {
	return m.mutate(id, func(msg *domain.Message) error {
		if msg.SenderID != userID {
			return apperrors.ErrNotSender
		}
		msg.Body = newBody
		msg.IsEdited = true
		return nil
	})
}

// SoftDelete flags the record and redacts the body; nothing is removed.
func (m MessageRepository) SoftDelete(id uuid.UUID, userID string) (domain.Message, error) {
	return m.mutate(id, func(msg *domain.Message) error {
		if msg.SenderID != userID {
			return apperrors.ErrNotSender
		}
		msg.IsDeleted = true
		msg.Body = domain.DeletedBody
		return nil
	})
}

func (m MessageRepository) TogglePin(id uuid.UUID) (domain.Message, error) {
	return m.mutate(id, func(msg *domain.Message) error {
		msg.IsPinned = !msg.IsPinned
		return nil
	})
}

func (m MessageRepository) ToggleStar(id uuid.UUID) (domain.Message, error) {
	return m.mutate(id, func(msg *domain.Message) error {
		msg.IsStarred = !msg.IsStarred
		return nil
	})
}

// MarkConversationRead flips is_read on every direct message the partner
// sent to the reader.
func (m MessageRepository) MarkConversationRead(readerID, partnerID string) error {
	pair := []string{readerID, partnerID}
	sort.Strings(pair)
	prefix := []byte(fmt.Sprintf("msg:dm:%s:", strings.Join(pair, ":")))

	return m.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var stored diskMessage
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &stored)
			})
			if err != nil {
				return err
			}
			if stored.SenderID != partnerID || stored.IsRead {
				continue
			}
			stored.IsRead = true
			bytes, err := json.Marshal(stored)
			if err != nil {
				return err
			}
			if err := txn.Set(item.KeyCopy(nil), bytes); err != nil {
				return err
			}
		}
		return nil
	})
}

// mutate loads a message through the id index, applies fn and writes it back
// under its original key. Key parts never change on mutation.
func (m MessageRepository) mutate(id uuid.UUID, fn func(*domain.Message) error) (domain.Message, error) {
	var message domain.Message
	err := m.db.Update(func(txn *badger.Txn) error {
		stored, key, err := loadByID(txn, id)
		if err != nil {
			return err
		}
		message = toMessage(stored)
		if err := fn(&message); err != nil {
			return err
		}
		bytes, err := json.Marshal(fromMessage(message))
		if err != nil {
			return err
		}
		return txn.Set(key, bytes)
	})
	if err != nil {
		return domain.Message{}, err
	}
	return message, nil
}

func loadByID(txn *badger.Txn, id uuid.UUID) (diskMessage, []byte, error) {
	item, err := txn.Get(indexKey(id))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return diskMessage{}, nil, apperrors.ErrMessageNotFound
		}
		return diskMessage{}, nil, err
	}
	key, err := item.ValueCopy(nil)
	if err != nil {
		return diskMessage{}, nil, err
	}
	record, err := txn.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return diskMessage{}, nil, apperrors.ErrMessageNotFound
		}
		return diskMessage{}, nil, err
	}
	var stored diskMessage
	err = record.Value(func(val []byte) error {
		return json.Unmarshal(val, &stored)
	})
	return stored, key, err
}

func fromMessage(message domain.Message) diskMessage {
	return diskMessage{
		ID:             message.ID,
		SenderID:       message.SenderID,
		ReceiverID:     message.ReceiverID,
		GroupID:        message.GroupID,
		ChannelID:      message.ChannelID,
		Body:           message.Body,
		AttachmentURL:  message.AttachmentURL,
		AttachmentType: message.AttachmentType,
		ReplyToID:      message.ReplyToID,
		IsRead:         message.IsRead,
		IsEdited:       message.IsEdited,
		IsDeleted:      message.IsDeleted,
		IsPinned:       message.IsPinned,
		IsStarred:      message.IsStarred,
		Reactions:      message.Reactions,
		At:             message.CreatedAt.UnixNano(),
	}
}

func toMessage(stored diskMessage) domain.Message {
	return domain.Message{
		ID:             stored.ID,
		SenderID:       stored.SenderID,
		ReceiverID:     stored.ReceiverID,
		GroupID:        stored.GroupID,
		ChannelID:      stored.ChannelID,
		Body:           stored.Body,
		AttachmentURL:  stored.AttachmentURL,
		AttachmentType: stored.AttachmentType,
		ReplyToID:      stored.ReplyToID,
		IsRead:         stored.IsRead,
		IsEdited:       stored.IsEdited,
		IsDeleted:      stored.IsDeleted,
		IsPinned:       stored.IsPinned,
		IsStarred:      stored.IsStarred,
		Reactions:      stored.Reactions,
		CreatedAt:      time.Unix(0, stored.At).UTC(),
	}
}
