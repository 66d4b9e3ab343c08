package tally

import (
	"errors"
	"testing"
	"time"

	"plenum/contexts/governance/poll-service/domain/entities"
	domainerrors "plenum/contexts/governance/poll-service/domain/errors"
)

var now = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func ballot(user string, choice string, weight float64) entities.Vote {
	return entities.Vote{
		VoteID: "vote-" + user,
		UserID: user,
		Value:  entities.VoteValue{Choice: choice},
		Weight: weight,
	}
}

func ranked(user string, weight float64, prefs ...string) entities.Vote {
	return entities.Vote{
		VoteID: "vote-" + user,
		UserID: user,
		Value:  entities.VoteValue{Ranking: prefs},
		Weight: weight,
	}
}

func TestYesNoWeightedLeader(t *testing.T) {
	options := entities.BuiltinOptions(entities.PollTypeYesNo)
	votes := []entities.Vote{
		ballot("u1", entities.OptionYes, 3),
		ballot("u2", entities.OptionNo, 2),
	}
	result, err := Count(entities.PollTypeYesNo, options, votes, true, now)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if result.Outcome != entities.OutcomeCarried || result.Winner != entities.OptionYes {
		t.Fatalf("expected carried by yes, got outcome=%s winner=%s", result.Outcome, result.Winner)
	}
	if result.TotalWeight != 5 {
		t.Fatalf("expected total weight 5, got %f", result.TotalWeight)
	}
	byID := map[string]entities.OptionTally{}
	for _, item := range result.Options {
		byID[item.OptionID] = item
	}
	if byID[entities.OptionYes].Weight != 3 || byID[entities.OptionNo].Weight != 2 {
		t.Fatalf("unexpected option weights: %+v", result.Options)
	}
	if !result.QuorumMet {
		t.Fatalf("quorum flag must be carried through")
	}
}

func TestYesNoTieReportedNotForced(t *testing.T) {
	options := entities.BuiltinOptions(entities.PollTypeYesNo)
	votes := []entities.Vote{
		ballot("u1", entities.OptionYes, 1),
		ballot("u2", entities.OptionNo, 1),
	}
	result, err := Count(entities.PollTypeYesNo, options, votes, true, now)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if result.Outcome != entities.OutcomeTied || !result.Tied || result.Winner != "" {
		t.Fatalf("expected reported tie, got %+v", result)
	}
}

func TestAbstainCountsTowardWeightNotDecision(t *testing.T) {
	options := entities.BuiltinOptions(entities.PollTypeYesNoAbstain)
	votes := []entities.Vote{
		ballot("u1", entities.OptionYes, 1),
		ballot("u2", entities.OptionAbstain, 4),
	}
	result, err := Count(entities.PollTypeYesNoAbstain, options, votes, false, now)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if result.Outcome != entities.OutcomeCarried {
		t.Fatalf("abstentions must not defeat a motion: %+v", result)
	}
	if result.TotalWeight != 5 {
		t.Fatalf("abstentions still count toward cast weight, got %f", result.TotalWeight)
	}
}

func TestZeroVotes(t *testing.T) {
	options := []entities.Option{{OptionID: "a"}, {OptionID: "b"}}
	result, err := Count(entities.PollTypeMultipleChoice, options, nil, false, now)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if result.TotalBallots != 0 || result.TotalWeight != 0 {
		t.Fatalf("expected all-zero result, got %+v", result)
	}
	if result.Outcome != entities.OutcomeNone || result.Winner != "" {
		t.Fatalf("expected no winner, got %+v", result)
	}
	if len(result.Options) != 2 {
		t.Fatalf("expected zero tallies per option, got %+v", result.Options)
	}
}

func TestUnknownOptionRejected(t *testing.T) {
	options := []entities.Option{{OptionID: "a"}, {OptionID: "b"}}
	_, err := Count(entities.PollTypeMultipleChoice, options, []entities.Vote{ballot("u1", "z", 1)}, false, now)
	if !errors.Is(err, domainerrors.ErrUnknownOption) {
		t.Fatalf("expected unknown option error, got %v", err)
	}

	_, err = Count(entities.PollTypeRankedChoice, options, []entities.Vote{ranked("u1", 1, "a", "z")}, false, now)
	if !errors.Is(err, domainerrors.ErrUnknownOption) {
		t.Fatalf("expected unknown option error for ranking, got %v", err)
	}
}

func TestResultCarriesNoVoterIdentity(t *testing.T) {
	options := entities.BuiltinOptions(entities.PollTypeYesNo)
	result, err := Count(entities.PollTypeYesNo, options, []entities.Vote{ballot("u1", entities.OptionYes, 1)}, true, now)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	// The result type has no identity fields; assert the tallies are the only
	// per-vote trace that survives.
	if result.TotalBallots != 1 || len(result.Rounds) != 0 {
		t.Fatalf("unexpected result shape: %+v", result)
	}
}

func TestRankedChoiceEliminationTrace(t *testing.T) {
	options := []entities.Option{{OptionID: "a"}, {OptionID: "b"}, {OptionID: "c"}}
	votes := []entities.Vote{
		ranked("u1", 1, "a", "c"),
		ranked("u2", 1, "a"),
		ranked("u3", 1, "b", "a"),
		ranked("u4", 1, "b", "c"),
		ranked("u5", 1, "c", "b"),
	}
	result, err := Count(entities.PollTypeRankedChoice, options, votes, true, now)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if len(result.Rounds) != 2 {
		t.Fatalf("expected 2 rounds, got %d: %+v", len(result.Rounds), result.Rounds)
	}
	if result.Rounds[0].Eliminated != "c" {
		t.Fatalf("round 1 must eliminate c (fewest first preferences), got %q", result.Rounds[0].Eliminated)
	}
	// c's voter transfers to b: b=3 of 5 active, a majority.
	if result.Rounds[1].Winner != "b" || result.Winner != "b" {
		t.Fatalf("expected b to win round 2, got %+v", result.Rounds[1])
	}
	if result.Outcome != entities.OutcomeDecided {
		t.Fatalf("expected decided outcome, got %s", result.Outcome)
	}
}

func TestRankedChoiceEliminationTieBrokenByOptionID(t *testing.T) {
	options := []entities.Option{{OptionID: "a"}, {OptionID: "b"}, {OptionID: "c"}}
	// a leads with three first preferences; b and c tie for fewest in round 1
	// and in first preferences, so the smaller option id (b) is eliminated.
	votes := []entities.Vote{
		ranked("u1", 1, "a"),
		ranked("u2", 1, "a"),
		ranked("u3", 1, "b", "a"),
		ranked("u4", 1, "c", "a"),
		ranked("u5", 1, "c", "b"),
		ranked("u6", 1, "b", "c"),
		ranked("u7", 1, "a"),
	}
	result, err := Count(entities.PollTypeRankedChoice, options, votes, true, now)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if result.Rounds[0].Eliminated != "b" {
		t.Fatalf("expected deterministic elimination of b, got %q", result.Rounds[0].Eliminated)
	}
}

func TestRankedChoiceFinalTieReported(t *testing.T) {
	options := []entities.Option{{OptionID: "a"}, {OptionID: "b"}}
	votes := []entities.Vote{
		ranked("u1", 1, "a"),
		ranked("u2", 1, "b"),
	}
	result, err := Count(entities.PollTypeRankedChoice, options, votes, true, now)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if !result.Tied || result.Winner != "" || result.Outcome != entities.OutcomeTied {
		t.Fatalf("expected final-round tie, got %+v", result)
	}
}

func TestRankedChoiceExhaustedBallots(t *testing.T) {
	options := []entities.Option{{OptionID: "a"}, {OptionID: "b"}, {OptionID: "c"}}
	votes := []entities.Vote{
		ranked("u1", 1, "a"),
		ranked("u2", 1, "a"),
		ranked("u3", 1, "b"), // exhausts after b is eliminated
		ranked("u4", 1, "c"),
	}
	result, err := Count(entities.PollTypeRankedChoice, options, votes, true, now)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	// Round 1: a=2 of 4, not a majority; b and c tie for fewest on both
	// tie-break keys, so id order eliminates b and u3's ballot exhausts.
	// Round 2: a=2 of 3 active weight, a majority.
	if result.Winner != "a" {
		t.Fatalf("expected a to win after exhaustion, got %+v", result)
	}
	last := result.Rounds[len(result.Rounds)-1]
	if last.Winner != "a" {
		t.Fatalf("final round must record the winner, got %+v", last)
	}
}
