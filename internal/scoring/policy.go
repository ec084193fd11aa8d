package scoring

import "fmt"

// PolicyKind names the rule that ends a match.
type PolicyKind string

const (
	PolicyByRounds    PolicyKind = "rounds"    // Ends once a fixed number of rounds has been played
	PolicyByThreshold PolicyKind = "threshold" // Ends as soon as someone reaches (or drops to) a target score
)

// EndingPolicy is the one ending rule of a game. Build it with ByRounds or ByThreshold.
//
// TotalRounds is only meaningful for PolicyByRounds; Target and IsWinning only for
// PolicyByThreshold.
type EndingPolicy struct {
	Kind        PolicyKind `json:"kind"`
	TotalRounds int        `json:"total_rounds,omitempty"`
	Target      int        `json:"target,omitempty"`
	IsWinning   bool       `json:"is_winning,omitempty"`
}

// ByRounds ends the match after totalRounds rounds; the highest score wins.
func ByRounds(totalRounds int) EndingPolicy {
	return EndingPolicy{Kind: PolicyByRounds, TotalRounds: totalRounds}
}

// ByThreshold ends the match when a score reaches target. With isWinning the condition is
// score >= target and higher is better; otherwise it is score <= target and lower is better.
func ByThreshold(target int, isWinning bool) EndingPolicy {
	return EndingPolicy{Kind: PolicyByThreshold, Target: target, IsWinning: isWinning}
}

// Rounds is the number of rounds the policy plays. Threshold games are single-shot.
func (p EndingPolicy) Rounds() int {
	if p.Kind == PolicyByRounds {
		return p.TotalRounds
	}
	return 1
}

// HigherIsBetter reports the sort direction for winners and rankings.
func (p EndingPolicy) HigherIsBetter() bool {
	return p.Kind == PolicyByRounds || p.IsWinning
}

// crossed reports whether a score satisfies the threshold condition.
func (p EndingPolicy) crossed(score int) bool {
	if p.IsWinning {
		return score >= p.Target
	}
	return score <= p.Target
}

// better reports whether score a ranks ahead of score b under this policy.
func (p EndingPolicy) better(a, b int) bool {
	if p.HigherIsBetter() {
		return a > b
	}
	return a < b
}

func (p EndingPolicy) validate() error {
	switch p.Kind {
	case PolicyByRounds:
		if p.TotalRounds < 1 {
			return fmt.Errorf("%w: rounds policy needs at least 1 round, got %d", ErrInvalidRoster, p.TotalRounds)
		}
	case PolicyByThreshold:
	default:
		return fmt.Errorf("%w: unknown ending policy %q", ErrInvalidRoster, p.Kind)
	}
	return nil
}

// Definition is the part of a game definition the engine reads at match start.
// Roster sizes (players, teams, team lengths) are validated by the caller before a match
// is created; the engine only needs the scoring fields.
type Definition struct {
	Rounds          int  // 1 (or less) means no round mechanic
	StartingPoints  int  // Every participant's score when the match starts
	FinishingPoints int  // Threshold target; ignored when Rounds > 1
	IsWinning       bool // Threshold polarity; ignored when Rounds > 1
}

// EndsAtStart reports whether a threshold game is decided before anyone scores: every
// participant starts at StartingPoints, and that already meets the target. Round-based
// games never do.
func (d Definition) EndsAtStart() bool {
	p := DefinitionPolicy(d)
	return p.Kind == PolicyByThreshold && p.crossed(d.StartingPoints)
}

// DefinitionPolicy picks the ending policy for a game definition. Round-based games
// always end by round count, whatever the threshold fields say.
func DefinitionPolicy(def Definition) EndingPolicy {
	if def.Rounds > 1 {
		return ByRounds(def.Rounds)
	}
	return ByThreshold(def.FinishingPoints, def.IsWinning)
}
