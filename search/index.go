// Package search maintains a full-text index over merged messages so the
// CLI can grep a room's history without replaying the remote log.
package search

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/blugelabs/bluge"

	"chat-sync/domain"
	"chat-sync/domain/event"
)

// Index is an EventSink that feeds every merged message into a bluge
// index. Writing the same message id twice updates in place, so feed
// echoes and supervisor refetches never produce duplicate hits.
type Index struct {
	mu     sync.Mutex
	writer *bluge.Writer
	cfg    bluge.Config
	log    *slog.Logger
}

// Hit is one search result, best match first.
type Hit struct {
	MessageID string
	Room      string
	Role      domain.Role
	Text      string
	At        int64
}

func NewIndex(path string, log *slog.Logger) (*Index, error) {
	cfg := bluge.DefaultConfig(path)
	writer, err := bluge.OpenWriter(cfg)
	if err != nil {
		return nil, err
	}
	return &Index{writer: writer, cfg: cfg, log: log}, nil
}

func (i *Index) Consume(_ context.Context, e event.DomainEvent) error {
	merged, ok := e.(event.MessageMerged)
	if !ok {
		return nil
	}
	if err := i.indexMessage(merged.Message); err != nil {
		i.log.Error("Index write failed", "room", merged.Message.Room, "error", err)
	}
	return nil
}

func (i *Index) indexMessage(msg domain.Message) error {
	doc := bluge.NewDocument(msg.ID).
		AddField(bluge.NewKeywordField("room", msg.Room).StoreValue()).
		AddField(bluge.NewKeywordField("role", string(msg.Role)).StoreValue()).
		AddField(bluge.NewTextField("text", msg.Text).StoreValue()).
		AddField(bluge.NewKeywordField("at", strconv.FormatInt(msg.At, 10)).StoreValue())

	i.mu.Lock()
	defer i.mu.Unlock()
	return i.writer.Update(doc.ID(), doc)
}

// Search returns up to limit messages of a room matching the query text.
func (i *Index) Search(ctx context.Context, roomID, query string, limit int) ([]Hit, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	q := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(query).SetField("text")).
		AddMust(bluge.NewTermQuery(roomID).SetField("room"))

	it, err := reader.Search(ctx, bluge.NewTopNSearch(limit, q))
	if err != nil {
		return nil, err
	}

	var hits []Hit
	for match, err := it.Next(); match != nil; match, err = it.Next() {
		if err != nil {
			return nil, err
		}
		var hit Hit
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.MessageID = string(value)
			case "room":
				hit.Room = string(value)
			case "role":
				hit.Role = domain.Role(value)
			case "text":
				hit.Text = string(value)
			case "at":
				hit.At, _ = strconv.ParseInt(string(value), 10, 64)
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func (i *Index) Close() error {
	return i.writer.Close()
}
