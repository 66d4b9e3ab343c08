package meetingservice

import (
	"log/slog"

	httpadapter "plenum/contexts/governance/meeting-service/adapters/http"
	"plenum/contexts/governance/meeting-service/adapters/memory"
	"plenum/contexts/governance/meeting-service/application/commands"
	"plenum/contexts/governance/meeting-service/application/queries"
	"plenum/contexts/governance/meeting-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Meetings     ports.MeetingRepository
	Participants ports.ParticipantRepository
	Agenda       ports.AgendaRepository
	Outbox       ports.OutboxWriter
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

func NewModule(deps Dependencies) Module {
	meetingUseCase := commands.MeetingUseCase{
		Meetings:     deps.Meetings,
		Participants: deps.Participants,
		Agenda:       deps.Agenda,
		Outbox:       deps.Outbox,
		Clock:        deps.Clock,
		IDGen:        deps.IDGen,
		Logger:       deps.Logger,
	}
	participantUseCase := commands.ParticipantUseCase{
		Meetings:     deps.Meetings,
		Participants: deps.Participants,
		Outbox:       deps.Outbox,
		Clock:        deps.Clock,
		IDGen:        deps.IDGen,
		Logger:       deps.Logger,
	}
	agendaUseCase := commands.AgendaUseCase{
		Meetings:     deps.Meetings,
		Participants: deps.Participants,
		Agenda:       deps.Agenda,
		Outbox:       deps.Outbox,
		Clock:        deps.Clock,
		IDGen:        deps.IDGen,
		Logger:       deps.Logger,
	}
	queryUseCase := queries.MeetingQueryUseCase{
		Meetings:     deps.Meetings,
		Participants: deps.Participants,
		Agenda:       deps.Agenda,
	}
	return Module{
		Handler: httpadapter.Handler{
			Meetings:     meetingUseCase,
			Participants: participantUseCase,
			Agenda:       agendaUseCase,
			Queries:      queryUseCase,
			Logger:       deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Meetings:     store,
		Participants: store,
		Agenda:       store,
		Outbox:       store,
		Clock:        store,
		IDGen:        store,
		Logger:       logger,
	})
	module.Store = store
	return module
}
