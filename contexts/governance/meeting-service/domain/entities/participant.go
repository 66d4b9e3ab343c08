package entities

import "time"

type ParticipantRole string

const (
	RoleAdmin     ParticipantRole = "admin"
	RoleModerator ParticipantRole = "moderator"
	RoleMember    ParticipantRole = "member"
	RoleGuest     ParticipantRole = "guest"
	RoleObserver  ParticipantRole = "observer"
)

type Attendance string

const (
	AttendanceInvited Attendance = "invited"
	AttendancePresent Attendance = "present"
	AttendanceAbsent  Attendance = "absent"
	AttendanceExcused Attendance = "excused"
)

// Participant is one user's membership in a meeting. VoteWeight is the
// weight snapshotted by polls when this user casts a ballot; it defaults
// to 1 for ordinary members.
type Participant struct {
	ParticipantID string
	MeetingID     string
	UserID        string
	Role          ParticipantRole
	CanVote       bool
	VoteWeight    float64
	Attendance    Attendance
	JoinedAt      time.Time
	UpdatedAt     time.Time
}

func ValidRole(role ParticipantRole) bool {
	switch role {
	case RoleAdmin, RoleModerator, RoleMember, RoleGuest, RoleObserver:
		return true
	default:
		return false
	}
}

func ValidAttendance(attendance Attendance) bool {
	switch attendance {
	case AttendanceInvited, AttendancePresent, AttendanceAbsent, AttendanceExcused:
		return true
	default:
		return false
	}
}
