package queries

import (
	"context"
	"strings"

	"plenum/contexts/governance/motion-service/domain/entities"
	"plenum/contexts/governance/motion-service/ports"
)

// MotionQueryUseCase serves reads: motion detail, listings, the reachable
// transition set, and the audit history.
type MotionQueryUseCase struct {
	Motions ports.MotionRepository
}

func (uc MotionQueryUseCase) GetMotion(ctx context.Context, motionID string) (entities.Motion, error) {
	return uc.Motions.GetMotion(ctx, strings.TrimSpace(motionID))
}

func (uc MotionQueryUseCase) ListMotionsByMeeting(ctx context.Context, meetingID string) ([]entities.Motion, error) {
	return uc.Motions.ListMotionsByMeeting(ctx, strings.TrimSpace(meetingID))
}

// AllowedTransitions reports the states reachable from the motion's current
// state, independent of who asks. UIs use this to render affordances.
func (uc MotionQueryUseCase) AllowedTransitions(ctx context.Context, motionID string) (entities.WorkflowState, []entities.WorkflowState, error) {
	motion, err := uc.Motions.GetMotion(ctx, strings.TrimSpace(motionID))
	if err != nil {
		return "", nil, err
	}
	return motion.State, entities.AllowedTransitions(motion.State), nil
}

func (uc MotionQueryUseCase) History(ctx context.Context, motionID string) ([]entities.TransitionRecord, error) {
	return uc.Motions.ListTransitions(ctx, strings.TrimSpace(motionID))
}
