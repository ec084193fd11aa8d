// Package scoring is the match engine: it tracks scores for players or teams across
// rounds, decides when a match ends, and ranks the final standings.
//
// Everything in this package is synchronous, in-memory computation. It never talks to the
// database or the network; the session package owns a Match and hands its Report to
// persistence once the match has ended.
//
// The lifecycle of a match looks like this:
//
//	NewMatch -> SetScore / AdjustScore -> CheckTermination   (threshold games)
//	NewMatch -> SetScore / AdjustScore -> Advance ... Advance (round games)
//	ended    -> Report -> persistence
package scoring

// Mode says whether a match is scored per player or per team.
type Mode string

const (
	ModeIndividual Mode = "individual" // Each Player holds its own score
	ModeTeams      Mode = "teams"      // Each Team holds one aggregate score; members have none
)

// Participant is anything that can hold a score in a match: a *Player or a *Team.
//
// The unexported setScore method seals the interface, so no type outside this package
// can pretend to be a participant. Code that needs the concrete shape uses a type switch
// over *Player and *Team.
type Participant interface {
	ParticipantID() string
	DisplayName() string
	CurrentScore() int
	setScore(score int)
}

// Player is a participant in an individual match.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
	Color string `json:"color,omitempty"` // Presentation only; the engine never reads it
}

// Member is a player inside a team. Members do not carry their own score.
type Member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Team is a participant in a team match. Only the team aggregate is scored.
type Team struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Score   int      `json:"score"`
	Color   string   `json:"color,omitempty"`
	Members []Member `json:"members"`
}

// ParticipantID returns the player's ID, unique within a match.
func (p *Player) ParticipantID() string { return p.ID }

// DisplayName returns the player's name.
func (p *Player) DisplayName() string { return p.Name }

// CurrentScore returns the player's score.
func (p *Player) CurrentScore() int { return p.Score }

func (p *Player) setScore(score int) { p.Score = score }

// ParticipantID returns the team's ID, unique within a match.
func (t *Team) ParticipantID() string { return t.ID }

// DisplayName returns the team's name.
func (t *Team) DisplayName() string { return t.Name }

// CurrentScore returns the team's aggregate score.
func (t *Team) CurrentScore() int { return t.Score }

func (t *Team) setScore(score int) { t.Score = score }

// modeOf reports which match mode a participant belongs to.
func modeOf(p Participant) Mode {
	switch p.(type) {
	case *Team:
		return ModeTeams
	default:
		return ModeIndividual
	}
}

// cloneParticipant returns a deep copy so callers reading a report or a view can never
// reach back into the live match.
func cloneParticipant(p Participant) Participant {
	switch v := p.(type) {
	case *Player:
		c := *v
		return &c
	case *Team:
		c := *v
		c.Members = append([]Member(nil), v.Members...)
		return &c
	default:
		return p
	}
}

// RoundScore maps a participant ID to the score it held when a round was closed.
type RoundScore map[string]int

// clone copies a snapshot so history entries are never shared with callers.
func (r RoundScore) clone() RoundScore {
	out := make(RoundScore, len(r))
	for id, score := range r {
		out[id] = score
	}
	return out
}
