package scoring

import "fmt"

// TerminationReason records why a match ended.
type TerminationReason string

const (
	ReasonRoundsCompleted   TerminationReason = "rounds_completed"    // Every round of a round-based game was played
	ReasonReachedWinTarget  TerminationReason = "reached_win_target"  // Someone reached the target in a winning-threshold game
	ReasonReachedLoseTarget TerminationReason = "reached_lose_target" // Someone dropped to the target in a losing-threshold game
	ReasonFinishedManually  TerminationReason = "finished_manually"   // The players pressed "end match"
)

// Outcome is the terminal state of a match.
//
// Winners holds the IDs of the first-ranked participants in roster order. In a
// losing-threshold game that is the lowest score, the participant who dropped to the
// target; the results screen reads the first-ranked side as the winner in every mode.
type Outcome struct {
	Reason  TerminationReason `json:"reason"`
	Winners []string          `json:"winners"`
	Tie     bool              `json:"tie"`
}

// CheckTermination evaluates the ending policy and returns the outcome once the match has
// ended, or nil while it is still going. The transition is one-way: after the first
// non-nil result every later call returns the same outcome.
//
// Threshold games end as soon as any score crosses the target, so callers run this after
// every score change. Round-based games only end through Advance, and calling this on an
// active round-based match is a no-op.
func (m *Match) CheckTermination() *Outcome {
	if m.outcome != nil {
		return m.Outcome()
	}

	switch m.policy.Kind {
	case PolicyByThreshold:
		var crossing []Participant
		for _, p := range m.participants {
			if m.policy.crossed(p.CurrentScore()) {
				crossing = append(crossing, p)
			}
		}
		if len(crossing) == 0 {
			return nil
		}
		reason := ReasonReachedLoseTarget
		if m.policy.IsWinning {
			reason = ReasonReachedWinTarget
		}
		m.end(reason, crossing)

	case PolicyByRounds:
		if m.currentRound <= m.policy.TotalRounds {
			return nil
		}
		m.end(ReasonRoundsCompleted, m.participants)
	}

	return m.Outcome()
}

// Finish ends an active match on demand, ranking everyone with the policy's comparator.
func (m *Match) Finish() (*Outcome, error) {
	if m.Ended() {
		return nil, fmt.Errorf("finish: %w", ErrMatchEnded)
	}
	m.end(ReasonFinishedManually, m.participants)
	return m.Outcome(), nil
}

func (m *Match) end(reason TerminationReason, candidates []Participant) {
	winners := bestOf(candidates, m.policy)
	m.outcome = &Outcome{
		Reason:  reason,
		Winners: winners,
		Tie:     len(winners) > 1,
	}
}

// bestOf returns the IDs of every candidate holding the best score, in candidate order.
func bestOf(candidates []Participant, policy EndingPolicy) []string {
	if len(candidates) == 0 {
		return nil
	}
	best := candidates[0].CurrentScore()
	for _, p := range candidates[1:] {
		if policy.better(p.CurrentScore(), best) {
			best = p.CurrentScore()
		}
	}
	var ids []string
	for _, p := range candidates {
		if p.CurrentScore() == best {
			ids = append(ids, p.ParticipantID())
		}
	}
	return ids
}
