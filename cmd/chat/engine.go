package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/redis/go-redis/v9"

	"chat-sync/ai"
	"chat-sync/domain"
	"chat-sync/internal"
	"chat-sync/moderation"
	"chat-sync/observability"
	"chat-sync/projection"
	"chat-sync/repositories"
	"chat-sync/runtime"
	"chat-sync/runtime/workers"
	"chat-sync/search"
	"chat-sync/services"
	"chat-sync/sink"
)

// engine bundles the fully wired sync stack for the long-running commands.
type engine struct {
	log      *slog.Logger
	service  services.IChatService
	notifier *sink.Notifier
	index    *search.Index
	closers  []func() error
}

func (e *engine) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			e.log.Warn("Shutdown step failed", "error", err)
		}
	}
}

func buildEngine(config internal.Config) (*engine, error) {
	log := internal.GetLoggerFromString(config.LogLevel)
	e := &engine{log: log}

	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	client := redis.NewClient(opts)
	e.closers = append(e.closers, client.Close)

	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("database opening failed: %w", err)
	}
	e.closers = append(e.closers, db.Close)

	index, err := search.NewIndex(config.BlugeFilepath, log)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to open search index: %w", err)
	}
	e.index = index
	e.closers = append(e.closers, index.Close)

	catalog := runtime.DefaultCatalog()
	if config.CatalogFilepath != "" {
		if catalog, err = runtime.LoadCatalog(config.CatalogFilepath); err != nil {
			e.Close()
			return nil, fmt.Errorf("catalog: %w", err)
		}
	}

	remote := repositories.NewRedisRemoteLog(client, log)
	store := projection.NewStore()
	cache := repositories.NewCacheRepository(db, log, config.LimitMessages)

	monitor := observability.NewMonitor()
	e.notifier = sink.NewNotifier(config.NotifyBufferSize)
	fanout := runtime.NewFanout(log, config.SinkTimeout).
		Add(e.notifier, sink.NewDiskSink(cache, log), index, monitor)

	generator := ai.NewGenerator(config.AgentAPIKey, config.AgentAPIBase, config.AgentModel, log)
	supervisor := workers.NewSupervisor(log, config.RestartInterval)

	heartbeatCtx, stopHeartbeat := context.WithCancel(context.Background())
	supervisor.Start(heartbeatCtx, workers.NewHeartbeatWorker(log, monitor, 30*time.Second))

	coordinator := runtime.NewCoordinator(log, generator, remote, store, fanout,
		config.ContextWindow, config.GenerationTimeout)
	controller := runtime.NewController(log, remote, store, fanout, supervisor,
		coordinator, config.HistoryLimit)
	// The heartbeat shares the supervisor, so it must be canceled before
	// Shutdown waits for the workers to drain.
	e.closers = append(e.closers, func() error {
		stopHeartbeat()
		controller.Shutdown()
		return nil
	})

	var guard *moderation.Guard
	if len(config.BlockedWords) > 0 {
		maskRune, err := internal.MaskRune(config.MaskChar)
		if err != nil {
			e.Close()
			return nil, err
		}
		if guard, err = moderation.NewGuard(config.BlockedWords, maskRune); err != nil {
			e.Close()
			return nil, fmt.Errorf("moderation: %w", err)
		}
	}

	registry := runtime.NewRegistry(catalog)
	e.service = services.NewChatService(log, controller, registry,
		repositories.NewProfileRepository(db), guard)
	return e, nil
}

// openCache opens the local message cache read-only so offline commands can
// run while the engine holds the lock.
func openCache(config internal.Config) (*repositories.CacheRepository, func() error, error) {
	log := internal.GetLoggerFromString(config.LogLevel)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return repositories.NewCacheRepository(db, log, config.LimitMessages), db.Close, nil
}

func roomCatalog(config internal.Config) ([]domain.Room, error) {
	if config.CatalogFilepath == "" {
		return runtime.DefaultCatalog(), nil
	}
	return runtime.LoadCatalog(config.CatalogFilepath)
}
