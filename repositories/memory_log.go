package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"chat-sync/contract"
	"chat-sync/domain"
	"chat-sync/errors"
)

// MemoryRemoteLog is an in-process implementation of contract.IRemoteLog.
// It mirrors the Redis semantics (append-only log per room, at-least-once
// fan-out to every subscriber, sender included) without a backend, which
// makes it the reference collaborator for tests and offline runs.
type MemoryRemoteLog struct {
	mu    sync.Mutex
	logs  map[string][]domain.Message
	feeds map[string][]*memoryFeed

	// Fault injection for tests.
	WriteErr     error
	FetchErr     error
	SubscribeErr error

	// FetchGate, when set, stalls FetchHistory until the channel is closed,
	// simulating a slow backend so callers can race other operations against
	// an in-flight history fetch.
	FetchGate chan struct{}
}

func NewMemoryRemoteLog() *MemoryRemoteLog {
	return &MemoryRemoteLog{
		logs:  make(map[string][]domain.Message),
		feeds: make(map[string][]*memoryFeed),
	}
}

func (m *MemoryRemoteLog) Write(_ context.Context, msg domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.WriteErr != nil {
		return fmt.Errorf("%w: %v", errors.ErrWriteFailed, m.WriteErr)
	}

	m.logs[msg.Room] = append(m.logs[msg.Room], msg)
	for _, feed := range m.feeds[msg.Room] {
		feed.deliver(msg)
	}
	return nil
}

func (m *MemoryRemoteLog) FetchHistory(_ context.Context, roomID string, limit int) ([]domain.Message, error) {
	m.mu.Lock()
	gate := m.FetchGate
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FetchErr != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrHistoryUnavailable, m.FetchErr)
	}

	log := m.logs[roomID]
	out := make([]domain.Message, len(log))
	copy(out, log)
	sort.SliceStable(out, func(i, j int) bool { return out[i].At < out[j].At })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (m *MemoryRemoteLog) Subscribe(_ context.Context, roomID string) (contract.Feed, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SubscribeErr != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrFeedUnavailable, m.SubscribeErr)
	}

	feed := &memoryFeed{
		remote:     m,
		room:       roomID,
		deliveries: make(chan domain.Message, 64),
	}
	m.feeds[roomID] = append(m.feeds[roomID], feed)
	return feed, nil
}

// SetSubscribeErr swaps the injected subscription fault under the lock, so
// it is safe to call while supervised workers keep retrying Subscribe.
func (m *MemoryRemoteLog) SetSubscribeErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SubscribeErr = err
}

// SubscriberCount reports the open feeds of a room. Test helper for the
// one-subscription-per-room invariant.
func (m *MemoryRemoteLog) SubscriberCount(roomID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.feeds[roomID])
}

// DropFeeds closes every open feed of a room, simulating a backend-side
// subscription loss.
func (m *MemoryRemoteLog) DropFeeds(roomID string) {
	m.mu.Lock()
	feeds := m.feeds[roomID]
	m.feeds[roomID] = nil
	m.mu.Unlock()

	for _, feed := range feeds {
		feed.close()
	}
}

type memoryFeed struct {
	remote     *MemoryRemoteLog
	room       string
	deliveries chan domain.Message
	closeOnce  sync.Once
	closed     bool
}

func (f *memoryFeed) Deliveries() <-chan domain.Message { return f.deliveries }

// deliver runs under the remote's lock; drops when the subscriber lags
// hopelessly, which at-least-once consumers recover from by refetching.
func (f *memoryFeed) deliver(msg domain.Message) {
	if f.closed {
		return
	}
	select {
	case f.deliveries <- msg:
	default:
	}
}

func (f *memoryFeed) Close() error {
	f.remote.mu.Lock()
	feeds := f.remote.feeds[f.room]
	for i, other := range feeds {
		if other == f {
			f.remote.feeds[f.room] = append(feeds[:i], feeds[i+1:]...)
			break
		}
	}
	f.remote.mu.Unlock()

	f.close()
	return nil
}

func (f *memoryFeed) close() {
	f.closeOnce.Do(func() {
		f.remote.mu.Lock()
		f.closed = true
		f.remote.mu.Unlock()
		close(f.deliveries)
	})
}
