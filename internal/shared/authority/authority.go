package authority

// Level is the closed capability ladder used by governance authority checks.
// Checks compare levels by order instead of matching role strings.
type Level int

const (
	Viewer Level = iota
	Member
	Admin
	Owner
)

// AtLeast reports whether the level grants the capabilities of required.
func (l Level) AtLeast(required Level) bool {
	return l >= required
}

func (l Level) String() string {
	switch l {
	case Owner:
		return "owner"
	case Admin:
		return "admin"
	case Member:
		return "member"
	default:
		return "viewer"
	}
}

// FromParticipantRole maps a meeting participant role onto the capability
// ladder. Unknown roles degrade to viewer.
func FromParticipantRole(role string) Level {
	switch role {
	case "admin", "moderator":
		return Admin
	case "member":
		return Member
	default:
		return Viewer
	}
}
