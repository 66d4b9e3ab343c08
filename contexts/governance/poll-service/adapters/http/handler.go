package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"plenum/contexts/governance/poll-service/application/commands"
	"plenum/contexts/governance/poll-service/application/queries"
	"plenum/contexts/governance/poll-service/domain/entities"
	httptransport "plenum/contexts/governance/poll-service/transport/http"
)

type Handler struct {
	Polls   commands.PollUseCase
	Votes   commands.VoteUseCase
	Queries queries.PollQueryUseCase
	Logger  *slog.Logger
}

func (h Handler) CreatePollHandler(ctx context.Context, actorID string, req httptransport.CreatePollRequest) (httptransport.PollResponse, error) {
	options := make([]entities.Option, 0, len(req.Options))
	for _, option := range req.Options {
		options = append(options, entities.Option{OptionID: option.OptionID, Label: option.Label})
	}
	poll, err := h.Polls.CreatePoll(ctx, commands.CreatePollCommand{
		ActorID:   actorID,
		MeetingID: req.MeetingID,
		MotionID:  req.MotionID,
		Title:     req.Title,
		Type:      entities.PollType(req.PollType),
		Options:   options,
		Anonymous: req.Anonymous,
	})
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	return pollResponse(poll), nil
}

func (h Handler) GetPollHandler(ctx context.Context, pollID string) (httptransport.PollResponse, error) {
	poll, err := h.Queries.GetPoll(ctx, pollID)
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	return pollResponse(poll), nil
}

func (h Handler) ListPollsHandler(ctx context.Context, meetingID string) (httptransport.PollListResponse, error) {
	polls, err := h.Queries.ListPollsByMeeting(ctx, meetingID)
	if err != nil {
		return httptransport.PollListResponse{}, err
	}
	items := make([]httptransport.PollResponse, 0, len(polls))
	for _, poll := range polls {
		items = append(items, pollResponse(poll))
	}
	return httptransport.PollListResponse{Items: items}, nil
}

func (h Handler) OpenPollHandler(ctx context.Context, pollID string, actorID string) (httptransport.PollResponse, error) {
	poll, err := h.Polls.OpenPoll(ctx, pollID, actorID)
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	return pollResponse(poll), nil
}

func (h Handler) ClosePollHandler(ctx context.Context, pollID string, actorID string) (httptransport.PollResponse, error) {
	poll, err := h.Polls.ClosePoll(ctx, pollID, actorID)
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	return pollResponse(poll), nil
}

func (h Handler) PublishPollHandler(ctx context.Context, pollID string, actorID string) (httptransport.PollResponse, error) {
	poll, err := h.Polls.PublishPoll(ctx, pollID, actorID)
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	return pollResponse(poll), nil
}

func (h Handler) CastVoteHandler(ctx context.Context, pollID string, userID string, req httptransport.CastVoteRequest) (httptransport.VoteResponse, error) {
	vote, err := h.Votes.CastVote(ctx, commands.CastVoteCommand{
		PollID:        pollID,
		UserID:        userID,
		Value:         entities.VoteValue{Choice: req.Choice, Ranking: req.Ranking},
		DelegatedFrom: req.DelegatedFrom,
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return voteResponse(vote), nil
}

func (h Handler) ResultsHandler(ctx context.Context, pollID string) (httptransport.ResultsResponse, error) {
	results, err := h.Queries.Results(ctx, pollID)
	if err != nil {
		return httptransport.ResultsResponse{}, err
	}
	return resultsResponse(pollID, results), nil
}

func (h Handler) ListVotesHandler(ctx context.Context, pollID string, actorID string) (httptransport.VoteListResponse, error) {
	votes, err := h.Queries.ListVotes(ctx, pollID, actorID)
	if err != nil {
		return httptransport.VoteListResponse{}, err
	}
	items := make([]httptransport.VoteResponse, 0, len(votes))
	for _, vote := range votes {
		items = append(items, voteResponse(vote))
	}
	return httptransport.VoteListResponse{Items: items}, nil
}

func pollResponse(poll entities.Poll) httptransport.PollResponse {
	options := make([]httptransport.OptionPayload, 0, len(poll.Options))
	for _, option := range poll.Options {
		options = append(options, httptransport.OptionPayload{OptionID: option.OptionID, Label: option.Label})
	}
	resp := httptransport.PollResponse{
		PollID:    poll.PollID,
		MeetingID: poll.MeetingID,
		MotionID:  poll.MotionID,
		Title:     poll.Title,
		PollType:  string(poll.Type),
		Options:   options,
		Status:    string(poll.Status),
		Anonymous: poll.Anonymous,
	}
	if poll.OpenedAt != nil {
		resp.OpenedAt = poll.OpenedAt.UTC().Format(time.RFC3339)
	}
	if poll.ClosedAt != nil {
		resp.ClosedAt = poll.ClosedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func voteResponse(vote entities.Vote) httptransport.VoteResponse {
	return httptransport.VoteResponse{
		VoteID:        vote.VoteID,
		PollID:        vote.PollID,
		UserID:        vote.UserID,
		Choice:        vote.Value.Choice,
		Ranking:       vote.Value.Ranking,
		Weight:        vote.Weight,
		DelegatedFrom: vote.DelegatedFrom,
		CastAt:        vote.CastAt.UTC().Format(time.RFC3339),
	}
}

func resultsResponse(pollID string, results entities.TallyResult) httptransport.ResultsResponse {
	resp := httptransport.ResultsResponse{
		PollID:       pollID,
		PollType:     string(results.PollType),
		TotalBallots: results.TotalBallots,
		TotalWeight:  results.TotalWeight,
		Options:      optionTallyPayloads(results.Options),
		Outcome:      results.Outcome,
		Winner:       results.Winner,
		Tied:         results.Tied,
		QuorumMet:    results.QuorumMet,
	}
	for _, round := range results.Rounds {
		resp.Rounds = append(resp.Rounds, httptransport.TallyRoundPayload{
			Number:     round.Number,
			Counts:     optionTallyPayloads(round.Counts),
			Eliminated: round.Eliminated,
			Winner:     round.Winner,
		})
	}
	return resp
}

func optionTallyPayloads(tallies []entities.OptionTally) []httptransport.OptionTallyPayload {
	items := make([]httptransport.OptionTallyPayload, 0, len(tallies))
	for _, item := range tallies {
		items = append(items, httptransport.OptionTallyPayload{
			OptionID: item.OptionID,
			Label:    item.Label,
			Ballots:  item.Ballots,
			Weight:   item.Weight,
		})
	}
	return items
}
