package scoring

import "fmt"

// Config is everything a match needs besides its roster.
type Config struct {
	Mode           Mode
	Policy         EndingPolicy
	StartingPoints int
}

// ConfigFor builds a match Config from a game definition.
func ConfigFor(def Definition, mode Mode) Config {
	return Config{
		Mode:           mode,
		Policy:         DefinitionPolicy(def),
		StartingPoints: def.StartingPoints,
	}
}

// Match is the state of one playthrough: the roster, the round pointer, the round history
// and, once the match is over, its outcome.
//
// A Match is owned by a single caller and is not safe for concurrent use.
type Match struct {
	mode         Mode
	policy       EndingPolicy
	participants []Participant // roster order; also the tie-break order for rankings
	index        map[string]int
	history      []RoundScore // history[i] was recorded when round i+1 closed
	currentRound int
	outcome      *Outcome
}

// NewMatch validates the roster and starts a match at round 1 with every score set to
// cfg.StartingPoints. The roster is copied, so later changes to the given participants do
// not leak into the match.
//
// An invalid roster is a programming or configuration error and is reported as
// ErrInvalidRoster rather than repaired.
func NewMatch(cfg Config, roster []Participant) (*Match, error) {
	if cfg.Mode != ModeIndividual && cfg.Mode != ModeTeams {
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidRoster, cfg.Mode)
	}
	if err := cfg.Policy.validate(); err != nil {
		return nil, err
	}
	if len(roster) == 0 {
		return nil, fmt.Errorf("%w: no participants", ErrInvalidRoster)
	}

	m := &Match{
		mode:         cfg.Mode,
		policy:       cfg.Policy,
		participants: make([]Participant, 0, len(roster)),
		index:        make(map[string]int, len(roster)),
		currentRound: 1,
	}
	for _, p := range roster {
		if p == nil {
			return nil, fmt.Errorf("%w: nil participant", ErrInvalidRoster)
		}
		id := p.ParticipantID()
		if id == "" {
			return nil, fmt.Errorf("%w: participant %q has no id", ErrInvalidRoster, p.DisplayName())
		}
		if _, dup := m.index[id]; dup {
			return nil, fmt.Errorf("%w: duplicate participant id %q", ErrInvalidRoster, id)
		}
		if modeOf(p) != cfg.Mode {
			return nil, fmt.Errorf("%w: participant %q does not fit a %s match", ErrInvalidRoster, id, cfg.Mode)
		}
		c := cloneParticipant(p)
		c.setScore(cfg.StartingPoints)
		m.index[id] = len(m.participants)
		m.participants = append(m.participants, c)
	}
	return m, nil
}

// Mode reports whether the match is scored per player or per team.
func (m *Match) Mode() Mode { return m.mode }

// Policy returns the rule that ends the match.
func (m *Match) Policy() EndingPolicy { return m.policy }

// CurrentRound is the 1-based round being played. After the last round closes it is one
// past TotalRounds.
func (m *Match) CurrentRound() int { return m.currentRound }

// Ended reports whether the match has reached a terminal outcome.
func (m *Match) Ended() bool { return m.outcome != nil }

// Outcome returns a copy of the outcome, or nil while the match is still going.
func (m *Match) Outcome() *Outcome {
	if m.outcome == nil {
		return nil
	}
	o := *m.outcome
	o.Winners = append([]string(nil), m.outcome.Winners...)
	return &o
}

// Participants returns copies of the roster in roster order.
func (m *Match) Participants() []Participant {
	out := make([]Participant, len(m.participants))
	for i, p := range m.participants {
		out[i] = cloneParticipant(p)
	}
	return out
}

// Score returns the current score of one participant.
func (m *Match) Score(id string) (int, error) {
	i, ok := m.index[id]
	if !ok {
		return 0, fmt.Errorf("score %q: %w", id, ErrNotFound)
	}
	return m.participants[i].CurrentScore(), nil
}

// History returns a copy of the closed rounds, oldest first.
func (m *Match) History() []RoundScore {
	out := make([]RoundScore, len(m.history))
	for i, r := range m.history {
		out[i] = r.clone()
	}
	return out
}

// View is a read-only picture of a match, shaped for the API so a client can render the
// scoreboard and enable or disable its round controls.
type View struct {
	Mode         Mode          `json:"mode"`
	Policy       EndingPolicy  `json:"policy"`
	Round        int           `json:"round"`
	TotalRounds  int           `json:"total_rounds"`
	CanRewind    bool          `json:"can_rewind"`
	CanForward   bool          `json:"can_forward"`
	Participants []Participant `json:"participants"`
	History      []RoundScore  `json:"history"`
	Outcome      *Outcome      `json:"outcome,omitempty"`
}

// View snapshots the match.
func (m *Match) View() View {
	active := !m.Ended()
	return View{
		Mode:         m.mode,
		Policy:       m.policy,
		Round:        m.currentRound,
		TotalRounds:  m.policy.Rounds(),
		CanRewind:    active && m.policy.Kind == PolicyByRounds && m.currentRound > 1,
		CanForward:   active && m.policy.Kind == PolicyByRounds,
		Participants: m.Participants(),
		History:      m.History(),
		Outcome:      m.Outcome(),
	}
}

// snapshot captures every current score.
func (m *Match) snapshot() RoundScore {
	r := make(RoundScore, len(m.participants))
	for _, p := range m.participants {
		r[p.ParticipantID()] = p.CurrentScore()
	}
	return r
}

// restore copies scores back from a snapshot. IDs missing from the snapshot keep their
// current score.
func (m *Match) restore(r RoundScore) {
	for _, p := range m.participants {
		if score, ok := r[p.ParticipantID()]; ok {
			p.setScore(score)
		}
	}
}
