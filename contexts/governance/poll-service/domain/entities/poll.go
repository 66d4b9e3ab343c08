package entities

import "time"

type PollType string

const (
	PollTypeYesNo          PollType = "yes_no"
	PollTypeYesNoAbstain   PollType = "yes_no_abstain"
	PollTypeMultipleChoice PollType = "multiple_choice"
	PollTypeRankedChoice   PollType = "ranked_choice"
)

type PollStatus string

const (
	PollStatusDraft     PollStatus = "draft"
	PollStatusOpen      PollStatus = "open"
	PollStatusClosed    PollStatus = "closed"
	PollStatusPublished PollStatus = "published"
)

// Option ids for the built-in yes/no ballot variants.
const (
	OptionYes     = "yes"
	OptionNo      = "no"
	OptionAbstain = "abstain"
)

type Option struct {
	OptionID string `json:"option_id"`
	Label    string `json:"label"`
}

type Poll struct {
	PollID    string
	MeetingID string
	MotionID  string
	Title     string
	Type      PollType
	Options   []Option
	Status    PollStatus
	Anonymous bool
	Results   *TallyResult
	CreatedBy string
	OpenedAt  *time.Time
	ClosedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OptionSet returns the set of valid option ids for ballot validation.
func (p Poll) OptionSet() map[string]bool {
	set := make(map[string]bool, len(p.Options))
	for _, option := range p.Options {
		set[option.OptionID] = true
	}
	return set
}

// BuiltinOptions returns the implied option list for yes/no ballot variants.
func BuiltinOptions(pollType PollType) []Option {
	switch pollType {
	case PollTypeYesNo:
		return []Option{{OptionID: OptionYes, Label: "Yes"}, {OptionID: OptionNo, Label: "No"}}
	case PollTypeYesNoAbstain:
		return []Option{
			{OptionID: OptionYes, Label: "Yes"},
			{OptionID: OptionNo, Label: "No"},
			{OptionID: OptionAbstain, Label: "Abstain"},
		}
	default:
		return nil
	}
}
