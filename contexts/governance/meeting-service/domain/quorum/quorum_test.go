package quorum

import (
	"testing"

	"plenum/contexts/governance/meeting-service/domain/entities"
)

func participant(attendance entities.Attendance, canVote bool, weight float64) entities.Participant {
	return entities.Participant{Attendance: attendance, CanVote: canVote, VoteWeight: weight}
}

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name         string
		quorumType   entities.QuorumType
		required     float64
		participants []entities.Participant
		want         bool
	}{
		{
			name:       "count met by exactly enough present",
			quorumType: entities.QuorumCount,
			required:   3,
			participants: []entities.Participant{
				participant(entities.AttendancePresent, true, 1),
				participant(entities.AttendancePresent, true, 1),
				participant(entities.AttendancePresent, false, 0),
			},
			want: true,
		},
		{
			name:       "count ignores absent and invited",
			quorumType: entities.QuorumCount,
			required:   2,
			participants: []entities.Participant{
				participant(entities.AttendancePresent, true, 1),
				participant(entities.AttendanceAbsent, true, 1),
				participant(entities.AttendanceInvited, true, 1),
			},
			want: false,
		},
		{
			name:       "weighted sums only voters",
			quorumType: entities.QuorumWeighted,
			required:   3,
			participants: []entities.Participant{
				participant(entities.AttendancePresent, true, 2),
				participant(entities.AttendancePresent, false, 5),
			},
			want: false,
		},
		{
			name:       "weighted met across voters",
			quorumType: entities.QuorumWeighted,
			required:   3,
			participants: []entities.Participant{
				participant(entities.AttendancePresent, true, 2),
				participant(entities.AttendancePresent, true, 1),
			},
			want: true,
		},
		{
			name:         "zero threshold always met",
			quorumType:   entities.QuorumCount,
			required:     0,
			participants: nil,
			want:         true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			meeting := entities.Meeting{QuorumType: tc.quorumType, QuorumRequired: tc.required}
			if got := Evaluate(meeting, tc.participants); got != tc.want {
				t.Fatalf("Evaluate() = %v, want %v", got, tc.want)
			}
		})
	}
}
