package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"chat-sync/contract"
	"chat-sync/domain"
	"chat-sync/errors"
)

// RedisRemoteLog implements contract.IRemoteLog on a Redis backend.
// Each room owns a sorted set ("room:{id}:log", scored by the producer
// timestamp) holding the append-only log, and a pub/sub channel
// ("room:{id}:feed") carrying the live feed. Delivery is at-least-once:
// the sender receives its own echo, and a resubscription replays nothing,
// which is why history is always refetched on re-entering Loading.
type RedisRemoteLog struct {
	client *redis.Client
	log    *slog.Logger
}

func NewRedisRemoteLog(client *redis.Client, log *slog.Logger) *RedisRemoteLog {
	return &RedisRemoteLog{client: client, log: log}
}

func roomLogKey(roomID string) string {
	return fmt.Sprintf("room:%s:log", roomID)
}

func roomFeedKey(roomID string) string {
	return fmt.Sprintf("room:%s:feed", roomID)
}

// Write appends the message to the room log and publishes it on the live
// feed in one round trip. The caller-assigned id keeps a retry idempotent
// from the store's point of view.
func (r *RedisRemoteLog) Write(ctx context.Context, msg domain.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrWriteFailed, err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, roomLogKey(msg.Room), redis.Z{
			Score:  float64(msg.At),
			Member: string(payload),
		})
		pipe.Publish(ctx, roomFeedKey(msg.Room), string(payload))
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrWriteFailed, err)
	}
	return nil
}

// FetchHistory returns the last limit messages of a room, ascending by
// timestamp. limit <= 0 means the full log.
func (r *RedisRemoteLog) FetchHistory(ctx context.Context, roomID string, limit int) ([]domain.Message, error) {
	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}
	raw, err := r.client.ZRange(ctx, roomLogKey(roomID), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrHistoryUnavailable, err)
	}

	messages := make([]domain.Message, 0, len(raw))
	for _, entry := range raw {
		var msg domain.Message
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			// A malformed row must not hide the rest of the history.
			r.log.Warn("Skipping undecodable log entry", "room", roomID, "error", err)
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Subscribe opens the room's live feed. The returned feed terminates when
// the context is canceled or Close is called.
func (r *RedisRemoteLog) Subscribe(ctx context.Context, roomID string) (contract.Feed, error) {
	pubsub := r.client.Subscribe(ctx, roomFeedKey(roomID))

	// Force the SUBSCRIBE round trip so a dead backend fails here,
	// not silently on the first missed delivery.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("%w: %v", errors.ErrFeedUnavailable, err)
	}

	feed := &redisFeed{
		pubsub:     pubsub,
		deliveries: make(chan domain.Message),
	}
	go feed.pump(ctx, r.log, roomID)
	return feed, nil
}

type redisFeed struct {
	pubsub     *redis.PubSub
	deliveries chan domain.Message
	closeOnce  sync.Once
	closeErr   error
}

func (f *redisFeed) Deliveries() <-chan domain.Message {
	return f.deliveries
}

// Close releases the subscription. Safe to call more than once.
func (f *redisFeed) Close() error {
	f.closeOnce.Do(func() {
		f.closeErr = f.pubsub.Close()
	})
	return f.closeErr
}

// pump decodes raw pub/sub payloads into domain messages until the
// subscription ends, then closes Deliveries so consumers observe the drop.
func (f *redisFeed) pump(ctx context.Context, log *slog.Logger, roomID string) {
	defer close(f.deliveries)

	for raw := range f.pubsub.Channel() {
		var msg domain.Message
		if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
			log.Warn("Skipping undecodable feed delivery", "room", roomID, "error", err)
			continue
		}
		select {
		case f.deliveries <- msg:
		case <-ctx.Done():
			return
		}
	}
}
