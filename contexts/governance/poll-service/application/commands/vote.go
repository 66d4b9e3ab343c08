package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "plenum/contexts/governance/poll-service/application"
	"plenum/contexts/governance/poll-service/domain/entities"
	domainerrors "plenum/contexts/governance/poll-service/domain/errors"
	"plenum/contexts/governance/poll-service/ports"
)

// CastVoteCommand is the write-model input for casting one ballot.
type CastVoteCommand struct {
	PollID        string
	UserID        string
	Value         entities.VoteValue
	DelegatedFrom string
}

// VoteUseCase enforces the ballot invariants: the poll must be open, the
// caster must hold voting rights in the meeting, the vote weight is
// snapshotted at cast time, and (poll, user) stays unique.
type VoteUseCase struct {
	Polls    ports.PollRepository
	Votes    ports.VoteRepository
	Meetings ports.MeetingDirectory
	Outbox   ports.OutboxWriter
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func (uc VoteUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (entities.Vote, error) {
	logger := application.ResolveLogger(uc.Logger)
	cmd.PollID = strings.TrimSpace(cmd.PollID)
	cmd.UserID = strings.TrimSpace(cmd.UserID)
	if cmd.PollID == "" || cmd.UserID == "" {
		return entities.Vote{}, domainerrors.ErrInvalidVoteValue
	}

	poll, err := uc.Polls.GetPoll(ctx, cmd.PollID)
	if err != nil {
		return entities.Vote{}, err
	}
	if poll.Status != entities.PollStatusOpen {
		return entities.Vote{}, domainerrors.ErrPollNotOpen
	}
	if err := validateValue(poll, cmd.Value); err != nil {
		logger.Warn("vote value rejected",
			"event", "vote_value_rejected",
			"module", "governance/poll-service",
			"layer", "application",
			"poll_id", cmd.PollID,
			"error", err.Error(),
		)
		return entities.Vote{}, err
	}

	participant, found, err := uc.Meetings.Participant(ctx, poll.MeetingID, cmd.UserID)
	if err != nil {
		return entities.Vote{}, err
	}
	if !found || !participant.CanVote {
		return entities.Vote{}, domainerrors.ErrVotingForbidden
	}

	voteID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Vote{}, err
	}
	now := uc.now()
	vote := entities.Vote{
		VoteID:        voteID,
		PollID:        poll.PollID,
		UserID:        cmd.UserID,
		Value:         cmd.Value,
		Weight:        participant.VoteWeight,
		DelegatedFrom: strings.TrimSpace(cmd.DelegatedFrom),
		CastAt:        now,
	}
	if err := uc.Votes.SaveVote(ctx, vote); err != nil {
		return entities.Vote{}, err
	}

	payload := map[string]any{
		"meeting_id": poll.MeetingID,
		"weight":     vote.Weight,
	}
	if !poll.Anonymous {
		payload["user_id"] = vote.UserID
	}
	if err := appendEvent(ctx, uc.Outbox, uc.IDGen, now, "governance.vote.cast", "poll", poll.PollID, payload); err != nil {
		return entities.Vote{}, err
	}
	logger.Info("vote cast",
		"event", "vote_cast",
		"module", "governance/poll-service",
		"layer", "application",
		"poll_id", poll.PollID,
		"weight", vote.Weight,
	)
	return vote, nil
}

func (uc VoteUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func validateValue(poll entities.Poll, value entities.VoteValue) error {
	valid := poll.OptionSet()
	if poll.Type == entities.PollTypeRankedChoice {
		if len(value.Ranking) == 0 || value.Choice != "" {
			return domainerrors.ErrInvalidVoteValue
		}
		seen := make(map[string]bool, len(value.Ranking))
		for _, optionID := range value.Ranking {
			if !valid[optionID] {
				return fmt.Errorf("%w: %s", domainerrors.ErrUnknownOption, optionID)
			}
			if seen[optionID] {
				return domainerrors.ErrInvalidVoteValue
			}
			seen[optionID] = true
		}
		return nil
	}
	if len(value.Ranking) != 0 || value.Choice == "" {
		return domainerrors.ErrInvalidVoteValue
	}
	if !valid[value.Choice] {
		return fmt.Errorf("%w: %s", domainerrors.ErrUnknownOption, value.Choice)
	}
	return nil
}
