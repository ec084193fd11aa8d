package scoring

import "fmt"

// SetScore replaces one participant's score. Nothing else changes: the round pointer,
// history and outcome are untouched, and termination is not evaluated here. Callers
// playing a threshold game follow up with CheckTermination.
func (m *Match) SetScore(id string, score int) error {
	if m.Ended() {
		return fmt.Errorf("set score %q: %w", id, ErrMatchEnded)
	}
	i, ok := m.index[id]
	if !ok {
		return fmt.Errorf("set score %q: %w", id, ErrNotFound)
	}
	m.participants[i].setScore(score)
	return nil
}

// AdjustScore adds delta (which may be negative) to one participant's score.
func (m *Match) AdjustScore(id string, delta int) error {
	if m.Ended() {
		return fmt.Errorf("adjust score %q: %w", id, ErrMatchEnded)
	}
	i, ok := m.index[id]
	if !ok {
		return fmt.Errorf("adjust score %q: %w", id, ErrNotFound)
	}
	p := m.participants[i]
	p.setScore(p.CurrentScore() + delta)
	return nil
}
