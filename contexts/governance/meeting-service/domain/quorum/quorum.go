// Package quorum evaluates meeting quorum from the participant roster.
package quorum

import "plenum/contexts/governance/meeting-service/domain/entities"

// Evaluate reports whether the present participants satisfy the meeting's
// quorum threshold. Count quorum compares the headcount of everyone present,
// voting rights aside; weighted quorum sums the vote weight of present
// participants who can vote. A zero threshold is always met.
func Evaluate(meeting entities.Meeting, participants []entities.Participant) bool {
	if meeting.QuorumRequired <= 0 {
		return true
	}
	var headcount int
	var weight float64
	for _, participant := range participants {
		if participant.Attendance != entities.AttendancePresent {
			continue
		}
		headcount++
		if participant.CanVote {
			weight += participant.VoteWeight
		}
	}
	if meeting.QuorumType == entities.QuorumWeighted {
		return weight >= meeting.QuorumRequired
	}
	return float64(headcount) >= meeting.QuorumRequired
}
