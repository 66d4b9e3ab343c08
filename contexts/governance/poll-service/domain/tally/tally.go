// Package tally computes poll results. It is pure: no storage access, no
// side effects, and the emitted result never references voter identity.
package tally

import (
	"fmt"
	"time"

	"plenum/contexts/governance/poll-service/domain/entities"
	domainerrors "plenum/contexts/governance/poll-service/domain/errors"
)

// Count tallies the cast votes for a poll and returns the result summary.
// quorumMet is the meeting's quorum state at close time and is recorded as-is.
//
// Every ballot must reference option ids from the poll's option set;
// otherwise Count fails with ErrUnknownOption and no partial result.
func Count(
	pollType entities.PollType,
	options []entities.Option,
	votes []entities.Vote,
	quorumMet bool,
	now time.Time,
) (entities.TallyResult, error) {
	if err := validate(pollType, options, votes); err != nil {
		return entities.TallyResult{}, err
	}

	result := entities.TallyResult{
		PollType:  pollType,
		QuorumMet: quorumMet,
		Outcome:   entities.OutcomeNone,
		TalliedAt: now.UTC(),
	}
	for _, vote := range votes {
		result.TotalBallots++
		result.TotalWeight += vote.Weight
	}

	if pollType == entities.PollTypeRankedChoice {
		countRanked(&result, options, votes)
		return result, nil
	}
	countChoice(&result, pollType, options, votes)
	return result, nil
}

func validate(pollType entities.PollType, options []entities.Option, votes []entities.Vote) error {
	valid := make(map[string]bool, len(options))
	for _, option := range options {
		valid[option.OptionID] = true
	}
	for _, vote := range votes {
		if pollType == entities.PollTypeRankedChoice {
			if len(vote.Value.Ranking) == 0 {
				return domainerrors.ErrInvalidVoteValue
			}
			seen := make(map[string]bool, len(vote.Value.Ranking))
			for _, optionID := range vote.Value.Ranking {
				if !valid[optionID] {
					return fmt.Errorf("%w: %s", domainerrors.ErrUnknownOption, optionID)
				}
				if seen[optionID] {
					return domainerrors.ErrInvalidVoteValue
				}
				seen[optionID] = true
			}
			continue
		}
		if !valid[vote.Value.Choice] {
			return fmt.Errorf("%w: %s", domainerrors.ErrUnknownOption, vote.Value.Choice)
		}
	}
	return nil
}

func countChoice(
	result *entities.TallyResult,
	pollType entities.PollType,
	options []entities.Option,
	votes []entities.Vote,
) {
	ballots := make(map[string]int, len(options))
	weights := make(map[string]float64, len(options))
	for _, vote := range votes {
		ballots[vote.Value.Choice]++
		weights[vote.Value.Choice] += vote.Weight
	}
	result.Options = optionTallies(options, ballots, weights)

	if result.TotalBallots == 0 {
		return
	}

	switch pollType {
	case entities.PollTypeYesNo, entities.PollTypeYesNoAbstain:
		// Abstentions count toward participation but not toward the decision.
		yes := weights[entities.OptionYes]
		no := weights[entities.OptionNo]
		switch {
		case yes > no:
			result.Outcome = entities.OutcomeCarried
			result.Winner = entities.OptionYes
		case no > yes:
			result.Outcome = entities.OutcomeDefeated
			result.Winner = entities.OptionNo
		default:
			result.Outcome = entities.OutcomeTied
			result.Tied = true
		}
	default:
		top, topWeight, tied := leader(options, weights)
		if tied {
			result.Outcome = entities.OutcomeTied
			result.Tied = true
			return
		}
		if topWeight > 0 {
			result.Outcome = entities.OutcomeDecided
			result.Winner = top
		}
	}
}

// countRanked runs weighted instant-runoff elimination until one option holds
// a majority (> half of the round's non-exhausted weight). Elimination
// tie-break: fewest current-round weight, then fewest round-1 first-preference
// weight, then the smallest option id.
func countRanked(result *entities.TallyResult, options []entities.Option, votes []entities.Vote) {
	if result.TotalBallots == 0 {
		result.Options = optionTallies(options, nil, nil)
		return
	}

	remaining := make(map[string]bool, len(options))
	for _, option := range options {
		remaining[option.OptionID] = true
	}

	var firstRound map[string]float64
	for round := 1; round <= len(options); round++ {
		ballots := make(map[string]int, len(remaining))
		weights := make(map[string]float64, len(remaining))
		active := 0.0
		for _, vote := range votes {
			for _, optionID := range vote.Value.Ranking {
				if remaining[optionID] {
					ballots[optionID]++
					weights[optionID] += vote.Weight
					active += vote.Weight
					break
				}
			}
		}
		if firstRound == nil {
			firstRound = weights
		}
		if round == 1 {
			result.Options = optionTallies(options, ballots, weights)
		}

		trace := entities.TallyRound{
			Number: round,
			Counts: remainingTallies(options, remaining, ballots, weights),
		}
		if active == 0 {
			result.Rounds = append(result.Rounds, trace)
			return
		}

		top, topWeight, topTied := leader(options, weights)
		if !topTied && topWeight > active/2 {
			trace.Winner = top
			result.Rounds = append(result.Rounds, trace)
			result.Outcome = entities.OutcomeDecided
			result.Winner = top
			return
		}
		if len(remainingIDs(options, remaining)) <= 2 && topTied {
			result.Rounds = append(result.Rounds, trace)
			result.Outcome = entities.OutcomeTied
			result.Tied = true
			return
		}

		eliminated := eliminationCandidate(options, remaining, weights, firstRound)
		trace.Eliminated = eliminated
		result.Rounds = append(result.Rounds, trace)
		delete(remaining, eliminated)
	}
}

func eliminationCandidate(
	options []entities.Option,
	remaining map[string]bool,
	weights map[string]float64,
	firstRound map[string]float64,
) string {
	candidate := ""
	for _, option := range options {
		id := option.OptionID
		if !remaining[id] {
			continue
		}
		if candidate == "" {
			candidate = id
			continue
		}
		switch {
		case weights[id] < weights[candidate]:
			candidate = id
		case weights[id] == weights[candidate] && firstRound[id] < firstRound[candidate]:
			candidate = id
		case weights[id] == weights[candidate] && firstRound[id] == firstRound[candidate] && id < candidate:
			candidate = id
		}
	}
	return candidate
}

// leader returns the highest-weighted option; tied reports a shared top.
func leader(options []entities.Option, weights map[string]float64) (string, float64, bool) {
	top := ""
	topWeight := 0.0
	tied := false
	for _, option := range options {
		weight := weights[option.OptionID]
		switch {
		case top == "" || weight > topWeight:
			top = option.OptionID
			topWeight = weight
			tied = false
		case weight == topWeight:
			tied = true
		}
	}
	return top, topWeight, tied
}

func optionTallies(options []entities.Option, ballots map[string]int, weights map[string]float64) []entities.OptionTally {
	items := make([]entities.OptionTally, 0, len(options))
	for _, option := range options {
		items = append(items, entities.OptionTally{
			OptionID: option.OptionID,
			Label:    option.Label,
			Ballots:  ballots[option.OptionID],
			Weight:   weights[option.OptionID],
		})
	}
	return items
}

func remainingTallies(
	options []entities.Option,
	remaining map[string]bool,
	ballots map[string]int,
	weights map[string]float64,
) []entities.OptionTally {
	items := make([]entities.OptionTally, 0, len(remaining))
	for _, option := range options {
		if !remaining[option.OptionID] {
			continue
		}
		items = append(items, entities.OptionTally{
			OptionID: option.OptionID,
			Label:    option.Label,
			Ballots:  ballots[option.OptionID],
			Weight:   weights[option.OptionID],
		})
	}
	return items
}

func remainingIDs(options []entities.Option, remaining map[string]bool) []string {
	ids := make([]string, 0, len(remaining))
	for _, option := range options {
		if remaining[option.OptionID] {
			ids = append(ids, option.OptionID)
		}
	}
	return ids
}
