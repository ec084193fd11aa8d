package scoring

import (
	"encoding/json"
	"sort"
)

// Standing is one line of the final results table.
type Standing struct {
	Participant Participant `json:"participant"`
	Rank        int         `json:"rank"`
	IsTied      bool        `json:"is_tied"`
}

// ComputeRanking orders participants best first and assigns competition ranks: equal
// scores share a rank and the next score skips ahead (1, 1, 3, 4).
//
// Direction follows the policy, the same comparator used to pick winners. Participants
// with equal scores keep their input order, so the same input always ranks the same way.
// IsTied is set for anyone who shares a score, not only at the top.
func ComputeRanking(participants []Participant, policy EndingPolicy) []Standing {
	sorted := make([]Participant, len(participants))
	copy(sorted, participants)
	sort.SliceStable(sorted, func(i, j int) bool {
		return policy.better(sorted[i].CurrentScore(), sorted[j].CurrentScore())
	})

	counts := make(map[int]int, len(sorted))
	for _, p := range sorted {
		counts[p.CurrentScore()]++
	}

	standings := make([]Standing, len(sorted))
	for i, p := range sorted {
		rank := i + 1
		if i > 0 && sorted[i-1].CurrentScore() == p.CurrentScore() {
			rank = standings[i-1].Rank
		}
		standings[i] = Standing{
			Participant: cloneParticipant(p),
			Rank:        rank,
			IsTied:      counts[p.CurrentScore()] > 1,
		}
	}
	return standings
}

// MarshalJSON tags each standing with the participant kind so clients can tell players
// from teams without sniffing for a members field.
func (s Standing) MarshalJSON() ([]byte, error) {
	kind := "player"
	if _, ok := s.Participant.(*Team); ok {
		kind = "team"
	}
	type alias Standing
	return json.Marshal(struct {
		alias
		Kind string `json:"kind"`
	}{alias(s), kind})
}
