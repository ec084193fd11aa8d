package scoring

import "fmt"

// Advance closes the current round and moves to the next one.
//
// The current scores are recorded as the round's snapshot. If the round already has a
// snapshot (it is being replayed after a Rewind), the new scores replace it; later rounds
// keep theirs. When the pointer moves past the last round the match ends with
// ReasonRoundsCompleted, and that outcome is returned.
//
// Advance only applies to round-based games.
func (m *Match) Advance() (*Outcome, error) {
	if m.Ended() {
		return nil, fmt.Errorf("advance: %w", ErrMatchEnded)
	}
	if m.policy.Kind != PolicyByRounds {
		return nil, fmt.Errorf("advance: %w: %s games have no rounds", ErrInvalidTransition, m.policy.Kind)
	}

	snap := m.snapshot()
	if i := m.currentRound - 1; i < len(m.history) {
		m.history[i] = snap
	} else {
		m.history = append(m.history, snap)
	}
	m.currentRound++

	return m.CheckTermination(), nil
}

// Rewind moves back one round and restores the scores that opened it, which is the
// snapshot recorded when the previous round closed.
//
// Round 1 has no opening snapshot, so rewinding into it only moves the pointer and leaves
// every score as it is. Rewinding at round 1 is declined.
func (m *Match) Rewind() error {
	if m.Ended() {
		return fmt.Errorf("rewind: %w", ErrMatchEnded)
	}
	if m.currentRound <= 1 {
		return fmt.Errorf("rewind: %w: already at round 1", ErrInvalidTransition)
	}

	m.currentRound--
	if i := m.currentRound - 2; i >= 0 && i < len(m.history) {
		m.restore(m.history[i])
	}
	return nil
}

// RedoForward undoes a Rewind. If the current round was closed before, the pointer moves
// on and the scores come back from that round's snapshot; otherwise it closes the round
// for the first time, exactly like Advance.
func (m *Match) RedoForward() (*Outcome, error) {
	if m.Ended() {
		return nil, fmt.Errorf("forward: %w", ErrMatchEnded)
	}
	if m.policy.Kind != PolicyByRounds {
		return nil, fmt.Errorf("forward: %w: %s games have no rounds", ErrInvalidTransition, m.policy.Kind)
	}

	i := m.currentRound - 1
	if i >= len(m.history) {
		return m.Advance()
	}
	m.currentRound++
	m.restore(m.history[i])
	return m.CheckTermination(), nil
}
