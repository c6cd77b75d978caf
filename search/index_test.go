package search

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-sync/domain"
	"chat-sync/domain/event"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func consume(t *testing.T, idx *Index, msgs ...domain.Message) {
	t.Helper()
	for _, msg := range msgs {
		require.NoError(t, idx.Consume(context.Background(), event.MessageMerged{Message: msg}))
	}
}

func TestIndex_Search_Scopes_To_Room(t *testing.T) {
	req := require.New(t)
	idx := newTestIndex(t)

	consume(t, idx,
		domain.Message{ID: "m1", Room: "lounge", Role: domain.RoleUser, Text: "badger facts", At: 1},
		domain.Message{ID: "m2", Room: "arcade", Role: domain.RoleUser, Text: "badger trivia", At: 2},
		domain.Message{ID: "m3", Room: "lounge", Role: domain.RoleAgent, Text: "weather report", At: 3},
	)

	hits, err := idx.Search(context.Background(), "lounge", "badger", 10)
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal("m1", hits[0].MessageID)
	req.Equal("lounge", hits[0].Room)
	req.Equal(domain.RoleUser, hits[0].Role)
	req.Equal("badger facts", hits[0].Text)
	req.Equal(int64(1), hits[0].At)
}

func TestIndex_Reindexing_Same_Id_Keeps_One_Hit(t *testing.T) {
	req := require.New(t)
	idx := newTestIndex(t)

	msg := domain.Message{ID: "m1", Room: "lounge", Role: domain.RoleUser, Text: "hello world", At: 1}
	consume(t, idx, msg, msg, msg)

	hits, err := idx.Search(context.Background(), "lounge", "hello", 10)
	req.NoError(err)
	req.Len(hits, 1)
}

func TestIndex_No_Match_Returns_Empty(t *testing.T) {
	req := require.New(t)
	idx := newTestIndex(t)

	consume(t, idx, domain.Message{ID: "m1", Room: "lounge", Role: domain.RoleUser, Text: "hello", At: 1})

	hits, err := idx.Search(context.Background(), "lounge", "absent", 10)
	req.NoError(err)
	req.Empty(hits)
}
