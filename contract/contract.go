//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-sync/domain"
	"chat-sync/domain/event"
	"context"
	"reflect"
)

// Feed is a live subscription to one room's remote log. Deliveries carries
// every message appended to the room after the subscription opened,
// at-least-once. Close releases the subscription and is idempotent.
type Feed interface {
	Deliveries() <-chan domain.Message
	Close() error
}

// IRemoteLog is the minimal surface the sync engine requires from the shared
// remote message log. Transport and schema are implementation concerns.
type IRemoteLog interface {
	// FetchHistory returns up to limit messages of a room, ascending by
	// timestamp. A transport failure means "no history yet", never fatal.
	FetchHistory(ctx context.Context, roomID string, limit int) ([]domain.Message, error)
	// Subscribe opens the live feed for a room.
	Subscribe(ctx context.Context, roomID string) (Feed, error)
	// Write appends a message to the shared log. The message ID is assigned
	// by the caller, so retrying a failed write cannot create a duplicate.
	Write(ctx context.Context, msg domain.Message) error
}

// GenerationRequest carries everything the generation collaborator needs
// for one agent turn.
type GenerationRequest struct {
	Prompt      string
	Context     []domain.Message // bounded trailing window, oldest first
	Personality string
	Image       string
}

// IGenerator is the opaque text-generation collaborator.
type IGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// IProfileRepository persists the local participant's profile.
type IProfileRepository interface {
	Save(profile domain.Profile) error
	Load() (domain.Profile, error)
}

// EventSink consumes engine events (merged messages, lifecycle changes).
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Used for logging and supervision, avoiding manual naming in Worker.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
