package repositories

import (
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"chat-sync/domain"
)

func cachedMessage(room string, at int64, text string) domain.Message {
	return domain.Message{
		ID:   uuid.NewString(),
		Room: room,
		Role: domain.RoleUser,
		Text: text,
		At:   at,
	}
}

func TestCacheRepository_Store_Multiple_Messages(t *testing.T) {
	req := require.New(t)
	repository := NewCacheRepository(openTestDB(t), slog.Default(), nil)

	room := "r1"
	messages := []domain.Message{
		cachedMessage(room, 1_000, "first"),
		cachedMessage(room, 2_000, "second"),
		cachedMessage(room, 3_000, "third"),
	}
	for _, msg := range messages {
		req.NoError(repository.StoreMessage(msg))
	}

	fetched, err := repository.GetMessages(room)
	req.NoError(err)
	req.Equal(messages, fetched)
}

func TestCacheRepository_Ascending_Order_Regardless_Of_Write_Order(t *testing.T) {
	req := require.New(t)
	repository := NewCacheRepository(openTestDB(t), slog.Default(), nil)

	room := "r1"
	late := cachedMessage(room, 9_000, "late")
	early := cachedMessage(room, 1_000, "early")
	req.NoError(repository.StoreMessage(late))
	req.NoError(repository.StoreMessage(early))

	fetched, err := repository.GetMessages(room)
	req.NoError(err)
	req.Equal([]domain.Message{early, late}, fetched)
}

func TestCacheRepository_Store_Same_Message_Twice_Keeps_One(t *testing.T) {
	req := require.New(t)
	repository := NewCacheRepository(openTestDB(t), slog.Default(), nil)

	msg := cachedMessage("r1", 1_000, "echo")
	req.NoError(repository.StoreMessage(msg))
	req.NoError(repository.StoreMessage(msg))

	fetched, err := repository.GetMessages("r1")
	req.NoError(err)
	req.Len(fetched, 1)
}

func TestCacheRepository_Limit(t *testing.T) {
	req := require.New(t)
	repository := NewCacheRepository(openTestDB(t), slog.Default(), lo.ToPtr(2))

	room := "r1"
	for i := int64(1); i <= 5; i++ {
		req.NoError(repository.StoreMessage(cachedMessage(room, i*1_000, "msg")))
	}

	fetched, err := repository.GetMessages(room)
	req.NoError(err)
	req.Len(fetched, 2)
}

func TestCacheRepository_Rooms_Are_Isolated(t *testing.T) {
	req := require.New(t)
	repository := NewCacheRepository(openTestDB(t), slog.Default(), nil)

	req.NoError(repository.StoreMessage(cachedMessage("r1", 1_000, "a")))
	req.NoError(repository.StoreMessage(cachedMessage("r2", 1_000, "b")))

	fetched, err := repository.GetMessages("r1")
	req.NoError(err)
	req.Len(fetched, 1)
	req.Equal("a", fetched[0].Text)
}
