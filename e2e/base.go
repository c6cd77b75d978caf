package e2e

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"chat-sync/ai"
	"chat-sync/projection"
	"chat-sync/repositories"
	"chat-sync/runtime"
	"chat-sync/runtime/workers"
)

type BaseSuite struct {
	suite.Suite
	Config Config
	// RoomID is unique per suite run so parallel CI jobs sharing one Redis
	// never see each other's messages.
	RoomID string
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.RedisURL == "" {
		s.T().Skip("E2E_REDIS_URL not set, skipping end-to-end suite")
	}
	s.RoomID = "e2e-" + uuid.NewString()
}

func (s *BaseSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// NewController wires a full controller stack over the shared Redis, one per
// simulated participant.
func (s *BaseSuite) NewController(generator *ai.Generator) (*runtime.Controller, func()) {
	opts, err := redis.ParseURL(s.Config.RedisURL)
	s.Require().NoError(err)
	redisClient := redis.NewClient(opts)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	remote := repositories.NewRedisRemoteLog(redisClient, log)
	store := projection.NewStore()
	fanout := runtime.NewFanout(log, time.Second)
	supervisor := workers.NewSupervisor(log, 100*time.Millisecond)

	var coordinator *runtime.Coordinator
	if generator != nil {
		coordinator = runtime.NewCoordinator(log, generator, remote, store, fanout, 12, 30*time.Second)
	}
	controller := runtime.NewController(log, remote, store, fanout, supervisor, coordinator, 50)
	return controller, func() {
		controller.Shutdown()
		_ = redisClient.Close()
	}
}
