package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	meetingservice "plenum/contexts/governance/meeting-service"
	meetingpostgres "plenum/contexts/governance/meeting-service/adapters/postgres"
	meetingworkers "plenum/contexts/governance/meeting-service/application/workers"
	motionservice "plenum/contexts/governance/motion-service"
	motionpostgres "plenum/contexts/governance/motion-service/adapters/postgres"
	motionworkers "plenum/contexts/governance/motion-service/application/workers"
	pollservice "plenum/contexts/governance/poll-service"
	pollpostgres "plenum/contexts/governance/poll-service/adapters/postgres"
	redisadapter "plenum/contexts/governance/poll-service/adapters/redis"
	pollcommands "plenum/contexts/governance/poll-service/application/commands"
	pollworkers "plenum/contexts/governance/poll-service/application/workers"
	pollentities "plenum/contexts/governance/poll-service/domain/entities"
	pollports "plenum/contexts/governance/poll-service/ports"
	"plenum/internal/platform/cache"
	"plenum/internal/platform/config"
	"plenum/internal/platform/db"
	"plenum/internal/platform/httpserver"
	"plenum/internal/platform/messaging"
	"plenum/internal/platform/notify"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	redis    *cache.Redis
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	meetingRelay meetingworkers.OutboxRelay
	motionRelay  motionworkers.OutboxRelay
	pollRelay    pollworkers.OutboxRelay
	notifier     notify.Dispatcher
	notify       bool
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	var redisConn *cache.Redis
	var resultsCache pollports.ResultsCache
	if cfg.EnableResultsCache && strings.TrimSpace(cfg.RedisAddr) != "" {
		redisConn, err = cache.Connect(cfg.RedisAddr)
		if err != nil {
			_ = pg.Close()
			return nil, err
		}
		resultsCache = redisadapter.NewCache(redisConn.Client, 0)
	}

	pollRepo := pollpostgres.NewRepository(pg.DB, logger)
	pollModule := pollservice.NewModule(pollservice.Dependencies{
		Polls:    pollRepo,
		Votes:    pollRepo,
		Meetings: pollRepo,
		Outbox:   pollRepo,
		Cache:    resultsCache,
		Clock:    pollpostgres.SystemClock{},
		IDGen:    pollpostgres.UUIDGenerator{},
		Logger:   logger,
	})

	motionRepo := motionpostgres.NewRepository(pg.DB, logger)
	motionDeps := motionservice.Dependencies{
		Motions:  motionRepo,
		Meetings: motionRepo,
		Polls:    motionRepo,
		Outbox:   motionRepo,
		Clock:    pollpostgres.SystemClock{},
		IDGen:    pollpostgres.UUIDGenerator{},
		Logger:   logger,
	}
	if cfg.EnablePollAutoProvision {
		motionDeps.Provisioner = pollProvisioner{polls: pollModule.Handler.Polls}
	}
	motionModule := motionservice.NewModule(motionDeps)

	meetingRepo := meetingpostgres.NewRepository(pg.DB, logger)
	meetingModule := meetingservice.NewModule(meetingservice.Dependencies{
		Meetings:     meetingRepo,
		Participants: meetingRepo,
		Agenda:       meetingRepo,
		Outbox:       meetingRepo,
		Clock:        pollpostgres.SystemClock{},
		IDGen:        pollpostgres.UUIDGenerator{},
		Logger:       logger,
	})

	server := httpserver.New(meetingModule, motionModule, pollModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		redis:    redisConn,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	meetingRepo := meetingpostgres.NewRepository(pg.DB, logger)
	motionRepo := motionpostgres.NewRepository(pg.DB, logger)
	pollRepo := pollpostgres.NewRepository(pg.DB, logger)

	return &WorkerApp{
		postgres: pg,
		meetingRelay: meetingworkers.OutboxRelay{
			Outbox:    meetingRepo,
			Publisher: kafka,
			Clock:     pollpostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		motionRelay: motionworkers.OutboxRelay{
			Outbox:    motionRepo,
			Publisher: kafka,
			Clock:     pollpostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		pollRelay: pollworkers.OutboxRelay{
			Outbox:    pollRepo,
			Publisher: kafka,
			Clock:     pollpostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		notifier: notify.Dispatcher{
			Bus:    kafka,
			Logger: logger,
		},
		notify:       cfg.EnableNotificationConsumer,
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if w.notify {
		if err := w.notifier.Run(ctx); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.meetingRelay.RunOnce(ctx); err != nil {
			return err
		}
		if err := w.motionRelay.RunOnce(ctx); err != nil {
			return err
		}
		if err := w.pollRelay.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

// pollProvisioner bridges the motion module to the poll module: motions
// entering voting without an attached poll get a draft yes/no poll.
type pollProvisioner struct {
	polls pollcommands.PollUseCase
}

func (p pollProvisioner) CreateDraftPoll(ctx context.Context, meetingID string, motionID string, title string, actorID string) (string, error) {
	poll, err := p.polls.CreatePoll(ctx, pollcommands.CreatePollCommand{
		ActorID:   actorID,
		MeetingID: meetingID,
		MotionID:  motionID,
		Title:     title,
		Type:      pollentities.PollTypeYesNo,
	})
	if err != nil {
		return "", err
	}
	return poll.PollID, nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
