package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "plenum/contexts/governance/poll-service/application"
	"plenum/contexts/governance/poll-service/domain/entities"
	domainerrors "plenum/contexts/governance/poll-service/domain/errors"
	"plenum/contexts/governance/poll-service/domain/tally"
	"plenum/contexts/governance/poll-service/ports"
	"plenum/internal/shared/authority"
)

// CreatePollCommand is the write-model input for poll creation.
type CreatePollCommand struct {
	ActorID   string
	MeetingID string
	MotionID  string
	Title     string
	Type      entities.PollType
	Options   []entities.Option
	Anonymous bool
}

// PollUseCase orchestrates the poll lifecycle: draft -> open -> closed ->
// published, with closing as the single point where results are computed.
type PollUseCase struct {
	Polls    ports.PollRepository
	Votes    ports.VoteRepository
	Meetings ports.MeetingDirectory
	Outbox   ports.OutboxWriter
	Cache    ports.ResultsCache
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func (uc PollUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

// CreatePoll creates a draft poll. Yes/no variants use the built-in option
// set; multiple/ranked choice require at least two explicit options.
func (uc PollUseCase) CreatePoll(ctx context.Context, cmd CreatePollCommand) (entities.Poll, error) {
	logger := application.ResolveLogger(uc.Logger)

	cmd.Title = strings.TrimSpace(cmd.Title)
	if strings.TrimSpace(cmd.ActorID) == "" || strings.TrimSpace(cmd.MeetingID) == "" || cmd.Title == "" {
		return entities.Poll{}, domainerrors.ErrInvalidPollInput
	}

	options, err := resolveOptions(cmd.Type, cmd.Options)
	if err != nil {
		logger.Warn("poll create validation failed",
			"event", "poll_create_validation_failed",
			"module", "governance/poll-service",
			"layer", "application",
			"meeting_id", cmd.MeetingID,
			"poll_type", string(cmd.Type),
		)
		return entities.Poll{}, err
	}

	_, level, err := resolveMeetingAuthority(ctx, uc.Meetings, cmd.MeetingID, cmd.ActorID)
	if err != nil {
		return entities.Poll{}, err
	}
	if !level.AtLeast(authority.Admin) {
		return entities.Poll{}, domainerrors.ErrNotMeetingAdmin
	}

	pollID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Poll{}, err
	}
	now := uc.now()
	poll := entities.Poll{
		PollID:    pollID,
		MeetingID: strings.TrimSpace(cmd.MeetingID),
		MotionID:  strings.TrimSpace(cmd.MotionID),
		Title:     cmd.Title,
		Type:      cmd.Type,
		Options:   options,
		Status:    entities.PollStatusDraft,
		Anonymous: cmd.Anonymous,
		CreatedBy: strings.TrimSpace(cmd.ActorID),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.Polls.SavePoll(ctx, poll); err != nil {
		return entities.Poll{}, err
	}
	if err := appendEvent(ctx, uc.Outbox, uc.IDGen, now, "governance.poll.created", "poll", poll.PollID, map[string]any{
		"meeting_id": poll.MeetingID,
		"motion_id":  poll.MotionID,
		"poll_type":  string(poll.Type),
	}); err != nil {
		return entities.Poll{}, err
	}
	logger.Info("poll created",
		"event", "poll_created",
		"module", "governance/poll-service",
		"layer", "application",
		"poll_id", poll.PollID,
		"meeting_id", poll.MeetingID,
	)
	return poll, nil
}

// OpenPoll moves a draft poll to open and stamps opened_at. The status guard
// lives in the repository so concurrent opens cannot race.
func (uc PollUseCase) OpenPoll(ctx context.Context, pollID string, actorID string) (entities.Poll, error) {
	logger := application.ResolveLogger(uc.Logger)

	poll, err := uc.Polls.GetPoll(ctx, pollID)
	if err != nil {
		return entities.Poll{}, err
	}
	_, level, err := resolveMeetingAuthority(ctx, uc.Meetings, poll.MeetingID, actorID)
	if err != nil {
		return entities.Poll{}, err
	}
	if !level.AtLeast(authority.Admin) {
		return entities.Poll{}, domainerrors.ErrNotMeetingAdmin
	}

	now := uc.now()
	updated, err := uc.Polls.MarkPollOpen(ctx, poll.PollID, now)
	if err != nil {
		return entities.Poll{}, err
	}
	if !updated {
		return entities.Poll{}, domainerrors.ErrPollNotDraft
	}
	if err := appendEvent(ctx, uc.Outbox, uc.IDGen, now, "governance.poll.opened", "poll", poll.PollID, map[string]any{
		"meeting_id": poll.MeetingID,
		"motion_id":  poll.MotionID,
	}); err != nil {
		return entities.Poll{}, err
	}
	logger.Info("poll opened",
		"event", "poll_opened",
		"module", "governance/poll-service",
		"layer", "application",
		"poll_id", poll.PollID,
	)
	return uc.Polls.GetPoll(ctx, poll.PollID)
}

// ClosePoll tallies all cast votes and seals the result. The open -> closed
// transition is a conditional update: the first close wins, a second attempt
// reports the poll as no longer open and never recomputes.
func (uc PollUseCase) ClosePoll(ctx context.Context, pollID string, actorID string) (entities.Poll, error) {
	logger := application.ResolveLogger(uc.Logger)

	poll, err := uc.Polls.GetPoll(ctx, pollID)
	if err != nil {
		return entities.Poll{}, err
	}
	meeting, level, err := resolveMeetingAuthority(ctx, uc.Meetings, poll.MeetingID, actorID)
	if err != nil {
		return entities.Poll{}, err
	}
	if !level.AtLeast(authority.Admin) {
		return entities.Poll{}, domainerrors.ErrNotMeetingAdmin
	}
	if poll.Status != entities.PollStatusOpen {
		return entities.Poll{}, domainerrors.ErrPollNotOpen
	}

	votes, err := uc.Votes.ListVotesByPoll(ctx, poll.PollID)
	if err != nil {
		return entities.Poll{}, err
	}
	now := uc.now()
	results, err := tally.Count(poll.Type, poll.Options, votes, meeting.QuorumMet, now)
	if err != nil {
		return entities.Poll{}, err
	}

	updated, err := uc.Polls.MarkPollClosed(ctx, poll.PollID, results, now)
	if err != nil {
		return entities.Poll{}, err
	}
	if !updated {
		logger.Warn("poll close lost the status race",
			"event", "poll_close_conflict",
			"module", "governance/poll-service",
			"layer", "application",
			"poll_id", poll.PollID,
		)
		return entities.Poll{}, domainerrors.ErrPollNotOpen
	}

	if err := appendEvent(ctx, uc.Outbox, uc.IDGen, now, "governance.poll.closed", "poll", poll.PollID, map[string]any{
		"meeting_id": poll.MeetingID,
		"motion_id":  poll.MotionID,
		"outcome":    results.Outcome,
		"winner":     results.Winner,
		"quorum_met": results.QuorumMet,
	}); err != nil {
		return entities.Poll{}, err
	}
	logger.Info("poll closed",
		"event", "poll_closed",
		"module", "governance/poll-service",
		"layer", "application",
		"poll_id", poll.PollID,
		"outcome", results.Outcome,
		"total_ballots", results.TotalBallots,
	)
	return uc.Polls.GetPoll(ctx, poll.PollID)
}

// PublishPoll marks a closed poll published. Publishing is idempotent and
// never recomputes results; it also warms the results cache when one is wired.
func (uc PollUseCase) PublishPoll(ctx context.Context, pollID string, actorID string) (entities.Poll, error) {
	poll, err := uc.Polls.GetPoll(ctx, pollID)
	if err != nil {
		return entities.Poll{}, err
	}
	_, level, err := resolveMeetingAuthority(ctx, uc.Meetings, poll.MeetingID, actorID)
	if err != nil {
		return entities.Poll{}, err
	}
	if !level.AtLeast(authority.Admin) {
		return entities.Poll{}, domainerrors.ErrNotMeetingAdmin
	}

	switch poll.Status {
	case entities.PollStatusPublished:
		// Republishing is a no-op.
	case entities.PollStatusClosed:
		if _, err := uc.Polls.MarkPollPublished(ctx, poll.PollID); err != nil {
			return entities.Poll{}, err
		}
	default:
		return entities.Poll{}, domainerrors.ErrPollNotClosed
	}

	poll, err = uc.Polls.GetPoll(ctx, poll.PollID)
	if err != nil {
		return entities.Poll{}, err
	}
	if uc.Cache != nil && poll.Results != nil {
		if err := uc.Cache.PutResults(ctx, poll.PollID, *poll.Results); err != nil {
			application.ResolveLogger(uc.Logger).Warn("poll results cache write failed",
				"event", "poll_results_cache_write_failed",
				"module", "governance/poll-service",
				"layer", "application",
				"poll_id", poll.PollID,
				"error", err.Error(),
			)
		}
	}
	return poll, nil
}

func resolveOptions(pollType entities.PollType, provided []entities.Option) ([]entities.Option, error) {
	switch pollType {
	case entities.PollTypeYesNo, entities.PollTypeYesNoAbstain:
		return entities.BuiltinOptions(pollType), nil
	case entities.PollTypeMultipleChoice, entities.PollTypeRankedChoice:
		if len(provided) < 2 {
			return nil, domainerrors.ErrInvalidPollInput
		}
		seen := make(map[string]bool, len(provided))
		options := make([]entities.Option, 0, len(provided))
		for _, option := range provided {
			option.OptionID = strings.TrimSpace(option.OptionID)
			if option.OptionID == "" || seen[option.OptionID] {
				return nil, domainerrors.ErrInvalidPollInput
			}
			seen[option.OptionID] = true
			options = append(options, option)
		}
		return options, nil
	default:
		return nil, domainerrors.ErrInvalidPollInput
	}
}
