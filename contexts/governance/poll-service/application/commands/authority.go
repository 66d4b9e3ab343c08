package commands

import (
	"context"

	domainerrors "plenum/contexts/governance/poll-service/domain/errors"
	"plenum/contexts/governance/poll-service/ports"
	"plenum/internal/shared/authority"
)

// resolveMeetingAuthority loads the meeting and derives the actor's capability
// level: the meeting creator acts as owner, everyone else through their
// participant role.
func resolveMeetingAuthority(
	ctx context.Context,
	meetings ports.MeetingDirectory,
	meetingID string,
	actorID string,
) (ports.MeetingProjection, authority.Level, error) {
	meeting, found, err := meetings.MeetingInfo(ctx, meetingID)
	if err != nil {
		return ports.MeetingProjection{}, authority.Viewer, err
	}
	if !found {
		return ports.MeetingProjection{}, authority.Viewer, domainerrors.ErrMeetingNotFound
	}
	if meeting.OwnerID == actorID {
		return meeting, authority.Owner, nil
	}
	participant, found, err := meetings.Participant(ctx, meetingID, actorID)
	if err != nil {
		return ports.MeetingProjection{}, authority.Viewer, err
	}
	if !found {
		return meeting, authority.Viewer, nil
	}
	return meeting, authority.FromParticipantRole(participant.Role), nil
}
