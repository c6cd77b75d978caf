package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"

	"chat-sync/contract"
	"chat-sync/domain"
	"chat-sync/errors"
	"chat-sync/moderation"
	"chat-sync/runtime"
)

type IChatService interface {
	Join(profile domain.Profile) error
	Profile() (domain.Profile, error)
	Rooms() []domain.Room
	Activate(ctx context.Context, roomID string) error
	Deactivate() error
	Send(ctx context.Context, text, image string) (domain.Message, error)
	Resend(ctx context.Context, msg domain.Message) error
	Snapshot(roomID string) ([]domain.Message, error)
	State(roomID string) (runtime.Status, error)
}

var _ IChatService = (*ChatService)(nil)

// ChatService is the single entry point of the engine: it validates the
// participant profile, enforces one active room per session, and routes
// everything else to the controller and registry.
type ChatService struct {
	log        *slog.Logger
	controller *runtime.Controller
	registry   *runtime.Registry
	profiles   contract.IProfileRepository
	validate   *validator.Validate
	guard      *moderation.Guard

	mu      sync.RWMutex
	profile *domain.Profile
}

// NewChatService wires the engine facade. A nil guard disables outgoing
// message screening.
func NewChatService(log *slog.Logger, controller *runtime.Controller, registry *runtime.Registry,
	profiles contract.IProfileRepository, guard *moderation.Guard) *ChatService {
	return &ChatService{
		log:        log,
		controller: controller,
		registry:   registry,
		profiles:   profiles,
		validate:   validator.New(),
		guard:      guard,
	}
}

// Join validates and persists the participant profile. Messages cannot be
// sent before a profile exists; browsing rooms and history can.
func (s *ChatService) Join(profile domain.Profile) error {
	if err := s.validate.Struct(profile); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidProfile, err)
	}
	if err := s.profiles.Save(profile); err != nil {
		return err
	}
	s.mu.Lock()
	s.profile = &profile
	s.mu.Unlock()
	s.log.Info("Participant joined", "name", profile.Name)
	return nil
}

func (s *ChatService) Profile() (domain.Profile, error) {
	s.mu.RLock()
	cached := s.profile
	s.mu.RUnlock()
	if cached != nil {
		return *cached, nil
	}

	profile, err := s.profiles.Load()
	if err != nil {
		return domain.Profile{}, err
	}
	s.mu.Lock()
	s.profile = &profile
	s.mu.Unlock()
	return profile, nil
}

func (s *ChatService) Rooms() []domain.Room {
	return s.registry.Rooms()
}

// Activate switches the session to a room. The previously active room, if
// any, is released first so the session never holds two subscriptions.
func (s *ChatService) Activate(ctx context.Context, roomID string) error {
	if previous, ok := s.registry.Active(); ok {
		if previous.ID == roomID {
			return nil
		}
		s.controller.Deactivate(previous.ID)
		s.registry.ClearActive()
	}
	if err := s.registry.SetActive(roomID); err != nil {
		return err
	}
	s.controller.Activate(ctx, roomID)
	return nil
}

func (s *ChatService) Deactivate() error {
	active, ok := s.registry.Active()
	if !ok {
		return errors.ErrRoomInactive
	}
	s.controller.Deactivate(active.ID)
	s.registry.ClearActive()
	return nil
}

func (s *ChatService) Send(ctx context.Context, text, image string) (domain.Message, error) {
	profile, err := s.Profile()
	if err != nil {
		return domain.Message{}, err
	}
	active, ok := s.registry.Active()
	if !ok {
		return domain.Message{}, errors.ErrRoomInactive
	}
	if s.guard != nil {
		clean, lang := s.guard.Sanitize(text)
		if clean != text {
			s.log.Info("Outgoing message masked", "room", active.ID, "lang", lang)
			text = clean
		}
	}
	return s.controller.Send(ctx, active, profile, text, image)
}

// Resend retries a previously failed message in the active room, reusing
// its id so the log never ends up with two copies.
func (s *ChatService) Resend(ctx context.Context, msg domain.Message) error {
	active, ok := s.registry.Active()
	if !ok {
		return errors.ErrRoomInactive
	}
	if msg.Room != active.ID {
		return errors.ErrRoomInactive
	}
	return s.controller.Resend(ctx, active, msg)
}

func (s *ChatService) Snapshot(roomID string) ([]domain.Message, error) {
	if _, err := s.registry.Get(roomID); err != nil {
		return nil, err
	}
	return s.controller.Snapshot(roomID), nil
}

func (s *ChatService) State(roomID string) (runtime.Status, error) {
	if _, err := s.registry.Get(roomID); err != nil {
		return runtime.StatusIdle, err
	}
	return s.controller.State(roomID), nil
}
