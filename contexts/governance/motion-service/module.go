package motionservice

import (
	"log/slog"

	httpadapter "plenum/contexts/governance/motion-service/adapters/http"
	"plenum/contexts/governance/motion-service/adapters/memory"
	"plenum/contexts/governance/motion-service/application/commands"
	"plenum/contexts/governance/motion-service/application/queries"
	"plenum/contexts/governance/motion-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Motions     ports.MotionRepository
	Meetings    ports.MeetingDirectory
	Polls       ports.PollDirectory
	Provisioner ports.PollProvisioner
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	motionUseCase := commands.MotionUseCase{
		Motions:     deps.Motions,
		Meetings:    deps.Meetings,
		Polls:       deps.Polls,
		Provisioner: deps.Provisioner,
		Outbox:      deps.Outbox,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		Logger:      deps.Logger,
	}
	queryUseCase := queries.MotionQueryUseCase{
		Motions: deps.Motions,
	}
	return Module{
		Handler: httpadapter.Handler{
			Motions: motionUseCase,
			Queries: queryUseCase,
			Logger:  deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Motions:     store,
		Meetings:    store,
		Polls:       store,
		Provisioner: store,
		Outbox:      store,
		Clock:       store,
		IDGen:       store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
