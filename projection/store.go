// Package projection builds local room timelines from observed messages.
// Handles ordering, deduplication, and read-only views.
// Does not emit events or interact with the network directly.
package projection

import (
	"sort"
	"sync"

	"chat-sync/domain"
)

// MergeOutcome reports what AppendOrMerge did with a message.
type MergeOutcome int

const (
	Inserted MergeOutcome = iota
	DuplicateIgnored
)

// timeline keeps one room's messages in insertion order, indexed by id.
type timeline struct {
	messages []domain.Message
	byID     map[string]struct{}
}

func newTimeline() *timeline {
	return &timeline{byID: make(map[string]struct{})}
}

func (t *timeline) merge(msg domain.Message) MergeOutcome {
	if _, ok := t.byID[msg.ID]; ok {
		return DuplicateIgnored
	}
	t.byID[msg.ID] = struct{}{}
	t.messages = append(t.messages, msg)
	return Inserted
}

// Store is the in-memory merged log of every room the client observed.
// All mutations go through the internal lock, so the merge-by-id
// check-then-insert is atomic with respect to concurrent feed deliveries
// and history loads.
type Store struct {
	mu    sync.Mutex
	rooms map[string]*timeline
}

func NewStore() *Store {
	return &Store{rooms: make(map[string]*timeline)}
}

func (s *Store) room(roomID string) *timeline {
	t, ok := s.rooms[roomID]
	if !ok {
		t = newTimeline()
		s.rooms[roomID] = t
	}
	return t
}

// AppendOrMerge inserts msg into the room's timeline unless a message with
// the same id is already present. A duplicate leaves the stored copy
// untouched: the first version of a logical message wins.
func (s *Store) AppendOrMerge(roomID string, msg domain.Message) MergeOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room(roomID).merge(msg)
}

// LoadInitial merges a freshly fetched history into the room's timeline.
// Messages that arrived on the live feed while history was still loading
// are preserved: the initial set is merged by id, never applied wholesale.
// It returns the messages that were actually inserted.
func (s *Store) LoadInitial(roomID string, messages []domain.Message) []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.room(roomID)
	var inserted []domain.Message
	for _, msg := range messages {
		if t.merge(msg) == Inserted {
			inserted = append(inserted, msg)
		}
	}
	return inserted
}

// Snapshot returns a defensive copy of the room's messages, ascending by
// timestamp. Ties keep insertion order (stable sort), which tolerates
// out-of-order feed delivery without trusting it.
func (s *Store) Snapshot(roomID string) []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]domain.Message, len(t.messages))
	copy(out, t.messages)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].At < out[j].At
	})
	return out
}

// Len reports the number of merged messages for a room.
func (s *Store) Len(roomID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.rooms[roomID]
	if !ok {
		return 0
	}
	return len(t.messages)
}
