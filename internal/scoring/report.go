package scoring

import "fmt"

// Report is what a finished match hands to persistence and to the results screen.
type Report struct {
	Mode         Mode              `json:"mode"`
	Policy       EndingPolicy      `json:"policy"`
	Participants []Participant     `json:"participants"`
	History      []RoundScore      `json:"round_history"`
	Reason       TerminationReason `json:"termination_reason"`
	Winners      []Participant     `json:"winners"`
	Tie          bool              `json:"tie"`
	Standings    []Standing        `json:"standings"`
}

// Report builds the final report. It is only available once the match has ended.
func (m *Match) Report() (Report, error) {
	if m.outcome == nil {
		return Report{}, fmt.Errorf("report: %w: match is still in progress", ErrInvalidTransition)
	}

	winners := make([]Participant, 0, len(m.outcome.Winners))
	for _, id := range m.outcome.Winners {
		winners = append(winners, cloneParticipant(m.participants[m.index[id]]))
	}

	return Report{
		Mode:         m.mode,
		Policy:       m.policy,
		Participants: m.Participants(),
		History:      m.History(),
		Reason:       m.outcome.Reason,
		Winners:      winners,
		Tie:          m.outcome.Tie,
		Standings:    ComputeRanking(m.participants, m.policy),
	}, nil
}
