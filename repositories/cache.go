package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"chat-sync/domain"
)

// CacheRepository mirrors merged messages into BadgerDB for offline tooling
// (cache inspector, CLI history without a live backend). The sync path never
// reads from it: the remote log stays the source of truth.
type CacheRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewCacheRepository(db *badger.DB, log *slog.Logger, limitMessages *int) *CacheRepository {
	return &CacheRepository{db: db, log: log, limitMessages: limitMessages}
}

// cacheKey formats keys as "msg:{room_id}:{timestamp_padded}:{id}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Use the message id as a collision disconnector if two messages
//     carry the same millisecond timestamp.
func cacheKey(msg domain.Message) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s", msg.Room, msg.At, msg.ID))
}

// StoreMessage persists one merged message. Writing the same message twice
// overwrites the same key, so the cache stays duplicate-free by construction.
func (c *CacheRepository) StoreMessage(msg domain.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(cacheKey(msg), data)
	})
}

// GetMessages returns the cached messages of a room, ascending by time.
// Thanks to the padded timestamp in the key, a plain prefix scan is already
// chronologically sorted. Collection stops at limitMessages when configured.
func (c *CacheRepository) GetMessages(roomID string) ([]domain.Message, error) {
	var messages []domain.Message
	err := c.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", roomID))
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if c.limitMessages != nil && len(messages) == *c.limitMessages {
				c.log.Debug(fmt.Sprintf("Maximum of %d cached messages reached", *c.limitMessages))
				break
			}
			err := it.Item().Value(func(val []byte) error {
				var msg domain.Message
				if err := json.Unmarshal(val, &msg); err != nil {
					return err
				}
				messages = append(messages, msg)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return messages, err
}
