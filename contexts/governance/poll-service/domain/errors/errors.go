package errors

import "errors"

var (
	ErrInvalidPollInput = errors.New("invalid poll input")
	ErrInvalidVoteValue = errors.New("invalid vote value")
	ErrUnknownOption    = errors.New("vote references an unknown option")
	ErrPollNotFound     = errors.New("poll not found")
	ErrMeetingNotFound  = errors.New("meeting not found")
	ErrPollNotDraft     = errors.New("poll is not in draft")
	ErrPollNotOpen      = errors.New("poll is not open")
	ErrPollNotClosed    = errors.New("poll results are sealed until close")
	ErrDuplicateVote    = errors.New("vote already cast on this poll")
	ErrVotingForbidden  = errors.New("participant may not vote in this meeting")
	ErrNotMeetingAdmin  = errors.New("actor lacks meeting admin authority")
)
