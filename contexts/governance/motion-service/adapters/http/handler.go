package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"plenum/contexts/governance/motion-service/application/commands"
	"plenum/contexts/governance/motion-service/application/queries"
	"plenum/contexts/governance/motion-service/domain/entities"
	httptransport "plenum/contexts/governance/motion-service/transport/http"
)

type Handler struct {
	Motions commands.MotionUseCase
	Queries queries.MotionQueryUseCase
	Logger  *slog.Logger
}

func (h Handler) CreateMotionHandler(ctx context.Context, actorID string, req httptransport.CreateMotionRequest) (httptransport.MotionResponse, error) {
	motion, err := h.Motions.CreateMotion(ctx, commands.CreateMotionCommand{
		ActorID:      actorID,
		MeetingID:    req.MeetingID,
		AgendaItemID: req.AgendaItemID,
		Title:        req.Title,
		Text:         req.Text,
		Category:     req.Category,
		Supporters:   req.Supporters,
	})
	if err != nil {
		return httptransport.MotionResponse{}, err
	}
	return motionResponse(motion), nil
}

func (h Handler) GetMotionHandler(ctx context.Context, motionID string) (httptransport.MotionResponse, error) {
	motion, err := h.Queries.GetMotion(ctx, motionID)
	if err != nil {
		return httptransport.MotionResponse{}, err
	}
	return motionResponse(motion), nil
}

func (h Handler) ListMotionsHandler(ctx context.Context, meetingID string) (httptransport.MotionListResponse, error) {
	motions, err := h.Queries.ListMotionsByMeeting(ctx, meetingID)
	if err != nil {
		return httptransport.MotionListResponse{}, err
	}
	items := make([]httptransport.MotionResponse, 0, len(motions))
	for _, motion := range motions {
		items = append(items, motionResponse(motion))
	}
	return httptransport.MotionListResponse{Items: items}, nil
}

func (h Handler) TransitionHandler(ctx context.Context, motionID string, actorID string, req httptransport.TransitionRequest) (httptransport.MotionResponse, error) {
	motion, err := h.Motions.Transition(ctx, commands.TransitionCommand{
		MotionID: motionID,
		NewState: entities.WorkflowState(req.NewState),
		ActorID:  actorID,
	})
	if err != nil {
		return httptransport.MotionResponse{}, err
	}
	return motionResponse(motion), nil
}

func (h Handler) DeleteMotionHandler(ctx context.Context, motionID string, actorID string) error {
	return h.Motions.DeleteMotion(ctx, motionID, actorID)
}

func (h Handler) AllowedTransitionsHandler(ctx context.Context, motionID string) (httptransport.AllowedTransitionsResponse, error) {
	current, allowed, err := h.Queries.AllowedTransitions(ctx, motionID)
	if err != nil {
		return httptransport.AllowedTransitionsResponse{}, err
	}
	names := make([]string, 0, len(allowed))
	for _, state := range allowed {
		names = append(names, string(state))
	}
	return httptransport.AllowedTransitionsResponse{
		MotionID:           motionID,
		CurrentState:       string(current),
		AllowedTransitions: names,
	}, nil
}

func (h Handler) HistoryHandler(ctx context.Context, motionID string) (httptransport.MotionHistoryResponse, error) {
	records, err := h.Queries.History(ctx, motionID)
	if err != nil {
		return httptransport.MotionHistoryResponse{}, err
	}
	items := make([]httptransport.TransitionRecordPayload, 0, len(records))
	for _, record := range records {
		items = append(items, httptransport.TransitionRecordPayload{
			RecordID:   record.RecordID,
			FromState:  string(record.FromState),
			ToState:    string(record.ToState),
			ActorID:    record.ActorID,
			OccurredAt: record.OccurredAt.UTC().Format(time.RFC3339),
		})
	}
	return httptransport.MotionHistoryResponse{
		MotionID: motionID,
		Items:    items,
	}, nil
}

func motionResponse(motion entities.Motion) httptransport.MotionResponse {
	return httptransport.MotionResponse{
		MotionID:     motion.MotionID,
		MeetingID:    motion.MeetingID,
		AgendaItemID: motion.AgendaItemID,
		Title:        motion.Title,
		Text:         motion.Text,
		SubmittedBy:  motion.SubmittedBy,
		Supporters:   motion.Supporters,
		State:        string(motion.State),
		Category:     motion.Category,
		CreatedAt:    motion.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    motion.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
