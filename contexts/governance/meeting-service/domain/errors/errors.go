package errors

import "errors"

var (
	ErrInvalidMeetingInput     = errors.New("meeting input is invalid")
	ErrInvalidParticipantInput = errors.New("participant input is invalid")
	ErrInvalidAgendaInput      = errors.New("agenda item input is invalid")
	ErrMeetingNotFound         = errors.New("meeting not found")
	ErrParticipantNotFound     = errors.New("participant not found")
	ErrAgendaItemNotFound      = errors.New("agenda item not found")
	ErrDuplicateParticipant    = errors.New("user is already a participant of the meeting")
	ErrMeetingNotEditable      = errors.New("meeting can no longer be modified")
	ErrMeetingNotInProgress    = errors.New("meeting is not in progress")
	ErrInvalidMeetingStatus    = errors.New("meeting status does not allow this operation")
	ErrAgendaExhausted         = errors.New("no pending agenda items remain")
	ErrNotAuthorized           = errors.New("actor is not authorized for this operation")
	ErrStateConflict           = errors.New("meeting was modified concurrently")
)
