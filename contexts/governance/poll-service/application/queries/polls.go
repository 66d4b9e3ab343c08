package queries

import (
	"context"
	"log/slog"
	"strings"

	application "plenum/contexts/governance/poll-service/application"
	"plenum/contexts/governance/poll-service/domain/entities"
	domainerrors "plenum/contexts/governance/poll-service/domain/errors"
	"plenum/contexts/governance/poll-service/ports"
	"plenum/internal/shared/authority"
)

// PollQueryUseCase serves reads: poll detail, listings, sealed results and
// vote listings that respect the anonymous flag.
type PollQueryUseCase struct {
	Polls    ports.PollRepository
	Votes    ports.VoteRepository
	Meetings ports.MeetingDirectory
	Cache    ports.ResultsCache
	Logger   *slog.Logger
}

func (uc PollQueryUseCase) GetPoll(ctx context.Context, pollID string) (entities.Poll, error) {
	return uc.Polls.GetPoll(ctx, strings.TrimSpace(pollID))
}

func (uc PollQueryUseCase) ListPollsByMeeting(ctx context.Context, meetingID string) ([]entities.Poll, error) {
	return uc.Polls.ListPollsByMeeting(ctx, strings.TrimSpace(meetingID))
}

// Results returns the computed summary of a closed or published poll.
// Results stay sealed while the poll is draft or open.
func (uc PollQueryUseCase) Results(ctx context.Context, pollID string) (entities.TallyResult, error) {
	pollID = strings.TrimSpace(pollID)
	if uc.Cache != nil {
		if cached, hit, err := uc.Cache.GetResults(ctx, pollID); err == nil && hit {
			return cached, nil
		} else if err != nil {
			application.ResolveLogger(uc.Logger).Warn("poll results cache read failed",
				"event", "poll_results_cache_read_failed",
				"module", "governance/poll-service",
				"layer", "application",
				"poll_id", pollID,
				"error", err.Error(),
			)
		}
	}
	poll, err := uc.Polls.GetPoll(ctx, pollID)
	if err != nil {
		return entities.TallyResult{}, err
	}
	if poll.Results == nil {
		return entities.TallyResult{}, domainerrors.ErrPollNotClosed
	}
	return *poll.Results, nil
}

// ListVotes returns the ballots of a poll. On anonymous polls, voter identity
// is stripped for callers below meeting-admin authority.
func (uc PollQueryUseCase) ListVotes(ctx context.Context, pollID string, actorID string) ([]entities.Vote, error) {
	poll, err := uc.Polls.GetPoll(ctx, strings.TrimSpace(pollID))
	if err != nil {
		return nil, err
	}
	votes, err := uc.Votes.ListVotesByPoll(ctx, poll.PollID)
	if err != nil {
		return nil, err
	}
	if !poll.Anonymous {
		return votes, nil
	}

	level := authority.Viewer
	meeting, found, err := uc.Meetings.MeetingInfo(ctx, poll.MeetingID)
	if err == nil && found {
		if meeting.OwnerID == strings.TrimSpace(actorID) {
			level = authority.Owner
		} else if participant, ok, perr := uc.Meetings.Participant(ctx, poll.MeetingID, strings.TrimSpace(actorID)); perr == nil && ok {
			level = authority.FromParticipantRole(participant.Role)
		}
	}
	if level.AtLeast(authority.Admin) {
		return votes, nil
	}
	redacted := make([]entities.Vote, 0, len(votes))
	for _, vote := range votes {
		vote.UserID = ""
		vote.DelegatedFrom = ""
		redacted = append(redacted, vote)
	}
	return redacted, nil
}
