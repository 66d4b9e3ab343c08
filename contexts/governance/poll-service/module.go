package pollservice

import (
	"log/slog"

	httpadapter "plenum/contexts/governance/poll-service/adapters/http"
	"plenum/contexts/governance/poll-service/adapters/memory"
	"plenum/contexts/governance/poll-service/application/commands"
	"plenum/contexts/governance/poll-service/application/queries"
	"plenum/contexts/governance/poll-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Polls    ports.PollRepository
	Votes    ports.VoteRepository
	Meetings ports.MeetingDirectory
	Outbox   ports.OutboxWriter
	Cache    ports.ResultsCache
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	pollUseCase := commands.PollUseCase{
		Polls:    deps.Polls,
		Votes:    deps.Votes,
		Meetings: deps.Meetings,
		Outbox:   deps.Outbox,
		Cache:    deps.Cache,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Logger:   deps.Logger,
	}
	voteUseCase := commands.VoteUseCase{
		Polls:    deps.Polls,
		Votes:    deps.Votes,
		Meetings: deps.Meetings,
		Outbox:   deps.Outbox,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Logger:   deps.Logger,
	}
	queryUseCase := queries.PollQueryUseCase{
		Polls:    deps.Polls,
		Votes:    deps.Votes,
		Meetings: deps.Meetings,
		Cache:    deps.Cache,
		Logger:   deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Polls:   pollUseCase,
			Votes:   voteUseCase,
			Queries: queryUseCase,
			Logger:  deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Polls:    store,
		Votes:    store,
		Meetings: store,
		Outbox:   store,
		Clock:    store,
		IDGen:    store,
		Logger:   logger,
	})
	module.Store = store
	return module
}
