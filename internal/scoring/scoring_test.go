package scoring_test

import (
	"errors"
	"testing"

	"github.com/trentd187/scorekeeper/internal/scoring"
)

func players(ids ...string) []scoring.Participant {
	out := make([]scoring.Participant, 0, len(ids))
	for _, id := range ids {
		out = append(out, &scoring.Player{ID: id, Name: "Player " + id})
	}
	return out
}

func newMatch(t *testing.T, policy scoring.EndingPolicy, ids ...string) *scoring.Match {
	t.Helper()
	m, err := scoring.NewMatch(scoring.Config{Mode: scoring.ModeIndividual, Policy: policy}, players(ids...))
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	return m
}

func setScores(t *testing.T, m *scoring.Match, scores map[string]int) {
	t.Helper()
	for id, s := range scores {
		if err := m.SetScore(id, s); err != nil {
			t.Fatalf("SetScore(%s, %d): %v", id, s, err)
		}
	}
}

func scoreOf(t *testing.T, m *scoring.Match, id string) int {
	t.Helper()
	s, err := m.Score(id)
	if err != nil {
		t.Fatalf("Score(%s): %v", id, err)
	}
	return s
}

func TestThresholdWinningPolarity(t *testing.T) {
	m := newMatch(t, scoring.ByThreshold(100, true), "a", "b", "c")
	setScores(t, m, map[string]int{"a": 90, "b": 105, "c": 80})

	out := m.CheckTermination()
	if out == nil {
		t.Fatal("expected match to end")
	}
	if out.Reason != scoring.ReasonReachedWinTarget {
		t.Fatalf("reason = %s, want %s", out.Reason, scoring.ReasonReachedWinTarget)
	}
	if len(out.Winners) != 1 || out.Winners[0] != "b" {
		t.Fatalf("winners = %v, want [b]", out.Winners)
	}
	if out.Tie {
		t.Fatal("expected no tie")
	}
}

func TestThresholdLosingPolarity(t *testing.T) {
	m := newMatch(t, scoring.ByThreshold(0, false), "a", "b", "c")
	setScores(t, m, map[string]int{"a": 5, "b": -3, "c": 10})

	out := m.CheckTermination()
	if out == nil {
		t.Fatal("expected match to end")
	}
	if out.Reason != scoring.ReasonReachedLoseTarget {
		t.Fatalf("reason = %s, want %s", out.Reason, scoring.ReasonReachedLoseTarget)
	}
	// The participant who dropped to the target is reported as first-ranked.
	if len(out.Winners) != 1 || out.Winners[0] != "b" {
		t.Fatalf("winners = %v, want [b]", out.Winners)
	}
}

func TestThresholdNotReachedStaysOngoing(t *testing.T) {
	m := newMatch(t, scoring.ByThreshold(100, true), "a", "b")
	setScores(t, m, map[string]int{"a": 99, "b": -50})

	if out := m.CheckTermination(); out != nil {
		t.Fatalf("expected ongoing, got %+v", out)
	}
	if m.Ended() {
		t.Fatal("match should not be ended")
	}
}

func TestThresholdSimultaneousCrossing(t *testing.T) {
	tests := []struct {
		name    string
		policy  scoring.EndingPolicy
		scores  map[string]int
		winners []string
		tie     bool
	}{
		{
			name:    "best crosser wins",
			policy:  scoring.ByThreshold(100, true),
			scores:  map[string]int{"a": 101, "b": 120, "c": 10},
			winners: []string{"b"},
		},
		{
			name:    "equal crossers tie",
			policy:  scoring.ByThreshold(100, true),
			scores:  map[string]int{"a": 110, "b": 50, "c": 110},
			winners: []string{"a", "c"},
			tie:     true,
		},
		{
			name:    "lowest crosser wins on losing threshold",
			policy:  scoring.ByThreshold(-10, false),
			scores:  map[string]int{"a": -10, "b": -25, "c": 3},
			winners: []string{"b"},
		},
		{
			name:    "exact target counts",
			policy:  scoring.ByThreshold(50, true),
			scores:  map[string]int{"a": 50, "b": 49, "c": 0},
			winners: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMatch(t, tt.policy, "a", "b", "c")
			setScores(t, m, tt.scores)
			out := m.CheckTermination()
			if out == nil {
				t.Fatal("expected match to end")
			}
			if len(out.Winners) != len(tt.winners) {
				t.Fatalf("winners = %v, want %v", out.Winners, tt.winners)
			}
			for i := range tt.winners {
				if out.Winners[i] != tt.winners[i] {
					t.Fatalf("winners = %v, want %v", out.Winners, tt.winners)
				}
			}
			if out.Tie != tt.tie {
				t.Fatalf("tie = %v, want %v", out.Tie, tt.tie)
			}
		})
	}
}

func TestTerminationIsOneWay(t *testing.T) {
	m := newMatch(t, scoring.ByThreshold(10, true), "a", "b")
	setScores(t, m, map[string]int{"a": 12})
	first := m.CheckTermination()
	if first == nil {
		t.Fatal("expected match to end")
	}

	err := m.SetScore("b", 100)
	if !errors.Is(err, scoring.ErrMatchEnded) || !errors.Is(err, scoring.ErrInvalidTransition) {
		t.Fatalf("SetScore after end = %v, want ErrMatchEnded", err)
	}
	if err := m.AdjustScore("b", 1); !errors.Is(err, scoring.ErrMatchEnded) {
		t.Fatalf("AdjustScore after end = %v, want ErrMatchEnded", err)
	}

	again := m.CheckTermination()
	if again == nil || again.Reason != first.Reason || again.Winners[0] != "a" {
		t.Fatalf("second check = %+v, want %+v", again, first)
	}
}

func TestRoundBasedTerminationAndRanking(t *testing.T) {
	m := newMatch(t, scoring.ByRounds(3), "p1", "p2")

	rounds := []map[string]int{
		{"p1": 5, "p2": 3},
		{"p1": 7, "p2": 6},
		{"p1": 10, "p2": 10},
	}
	var out *scoring.Outcome
	for i, r := range rounds {
		setScores(t, m, r)
		if got := m.CheckTermination(); got != nil {
			t.Fatalf("round %d: per-mutation check ended a round-based match", i+1)
		}
		var err error
		out, err = m.Advance()
		if err != nil {
			t.Fatalf("Advance round %d: %v", i+1, err)
		}
		if i < len(rounds)-1 && out != nil {
			t.Fatalf("match ended early after round %d", i+1)
		}
	}

	if out == nil {
		t.Fatal("expected match to end after the last round")
	}
	if out.Reason != scoring.ReasonRoundsCompleted {
		t.Fatalf("reason = %s, want %s", out.Reason, scoring.ReasonRoundsCompleted)
	}
	if !out.Tie || len(out.Winners) != 2 {
		t.Fatalf("outcome = %+v, want a two-way tie", out)
	}

	report, err := m.Report()
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if len(report.History) != 3 {
		t.Fatalf("history length = %d, want 3", len(report.History))
	}
	want := []struct {
		id   string
		rank int
	}{{"p1", 1}, {"p2", 1}}
	for i, w := range want {
		s := report.Standings[i]
		if s.Participant.ParticipantID() != w.id || s.Rank != w.rank || !s.IsTied {
			t.Fatalf("standing %d = {%s rank %d tied %v}, want {%s rank %d tied true}",
				i, s.Participant.ParticipantID(), s.Rank, s.IsTied, w.id, w.rank)
		}
	}
}

func TestAdvanceDeclined(t *testing.T) {
	threshold := newMatch(t, scoring.ByThreshold(10, true), "a")
	if _, err := threshold.Advance(); !errors.Is(err, scoring.ErrInvalidTransition) {
		t.Fatalf("Advance on threshold game = %v, want ErrInvalidTransition", err)
	}

	rounds := newMatch(t, scoring.ByRounds(1), "a", "b")
	if _, err := rounds.Advance(); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if !rounds.Ended() {
		t.Fatal("single round game should end after one advance")
	}
	if _, err := rounds.Advance(); !errors.Is(err, scoring.ErrInvalidTransition) {
		t.Fatalf("Advance after end = %v, want ErrInvalidTransition", err)
	}
}

func TestRewindRestoresHistoricalSnapshot(t *testing.T) {
	m := newMatch(t, scoring.ByRounds(5), "p1", "p2")
	setScores(t, m, map[string]int{"p1": 5, "p2": 3})
	mustAdvance(t, m)
	setScores(t, m, map[string]int{"p1": 7, "p2": 6})
	mustAdvance(t, m)
	setScores(t, m, map[string]int{"p1": 9, "p2": 8})

	if m.CurrentRound() != 3 {
		t.Fatalf("round = %d, want 3", m.CurrentRound())
	}

	if err := m.Rewind(); err != nil {
		t.Fatalf("first Rewind: %v", err)
	}
	if m.CurrentRound() != 2 {
		t.Fatalf("round = %d, want 2", m.CurrentRound())
	}
	if scoreOf(t, m, "p1") != 5 || scoreOf(t, m, "p2") != 3 {
		t.Fatalf("scores = %d/%d, want 5/3", scoreOf(t, m, "p1"), scoreOf(t, m, "p2"))
	}

	// Round 1 has no opening snapshot: the pointer moves, the scores stay.
	if err := m.Rewind(); err != nil {
		t.Fatalf("second Rewind: %v", err)
	}
	if m.CurrentRound() != 1 {
		t.Fatalf("round = %d, want 1", m.CurrentRound())
	}
	if scoreOf(t, m, "p1") != 5 || scoreOf(t, m, "p2") != 3 {
		t.Fatalf("scores = %d/%d, want unchanged 5/3", scoreOf(t, m, "p1"), scoreOf(t, m, "p2"))
	}

	if err := m.Rewind(); !errors.Is(err, scoring.ErrInvalidTransition) {
		t.Fatalf("Rewind at round 1 = %v, want ErrInvalidTransition", err)
	}
	if m.CurrentRound() != 1 {
		t.Fatalf("declined rewind moved the pointer to %d", m.CurrentRound())
	}
	if len(m.History()) != 2 {
		t.Fatalf("rewind must not drop history, got %d entries", len(m.History()))
	}
}

func TestRedoForward(t *testing.T) {
	m := newMatch(t, scoring.ByRounds(4), "p1", "p2")
	setScores(t, m, map[string]int{"p1": 5, "p2": 3})
	mustAdvance(t, m)
	setScores(t, m, map[string]int{"p1": 7, "p2": 6})
	mustAdvance(t, m)

	if err := m.Rewind(); err != nil {
		t.Fatal(err)
	}
	if err := m.Rewind(); err != nil {
		t.Fatal(err)
	}

	// Round 1 was closed at 5/3: moving forward restores it.
	if _, err := m.RedoForward(); err != nil {
		t.Fatalf("RedoForward: %v", err)
	}
	if m.CurrentRound() != 2 || scoreOf(t, m, "p1") != 5 || scoreOf(t, m, "p2") != 3 {
		t.Fatalf("after redo: round %d scores %d/%d, want round 2 scores 5/3",
			m.CurrentRound(), scoreOf(t, m, "p1"), scoreOf(t, m, "p2"))
	}

	if _, err := m.RedoForward(); err != nil {
		t.Fatalf("RedoForward: %v", err)
	}
	if m.CurrentRound() != 3 || scoreOf(t, m, "p1") != 7 || scoreOf(t, m, "p2") != 6 {
		t.Fatalf("after redo: round %d scores %d/%d, want round 3 scores 7/6",
			m.CurrentRound(), scoreOf(t, m, "p1"), scoreOf(t, m, "p2"))
	}

	// Round 3 was never closed, so forward closes it like Advance.
	setScores(t, m, map[string]int{"p1": 8})
	if _, err := m.RedoForward(); err != nil {
		t.Fatalf("RedoForward: %v", err)
	}
	h := m.History()
	if m.CurrentRound() != 4 || len(h) != 3 || h[2]["p1"] != 8 {
		t.Fatalf("round %d history %v, want round 4 with round 3 closed at p1=8", m.CurrentRound(), h)
	}
}

func TestAdvanceAfterRewindReplacesSnapshot(t *testing.T) {
	m := newMatch(t, scoring.ByRounds(3), "p1")
	setScores(t, m, map[string]int{"p1": 1})
	mustAdvance(t, m)
	setScores(t, m, map[string]int{"p1": 2})
	mustAdvance(t, m)

	if err := m.Rewind(); err != nil {
		t.Fatal(err)
	}
	setScores(t, m, map[string]int{"p1": 4})
	mustAdvance(t, m)

	h := m.History()
	if len(h) != 2 || h[0]["p1"] != 1 || h[1]["p1"] != 4 {
		t.Fatalf("history = %v, want [p1:1 p1:4]", h)
	}
	if m.CurrentRound() != 3 {
		t.Fatalf("round = %d, want 3", m.CurrentRound())
	}
}

func TestRankingCompetitionRanks(t *testing.T) {
	roster := []scoring.Participant{
		&scoring.Player{ID: "a", Score: 10},
		&scoring.Player{ID: "b", Score: 10},
		&scoring.Player{ID: "c", Score: 5},
		&scoring.Player{ID: "d", Score: 5},
	}

	first := scoring.ComputeRanking(roster, scoring.ByRounds(2))
	wantIDs := []string{"a", "b", "c", "d"}
	wantRanks := []int{1, 1, 3, 3}
	for i := range first {
		if first[i].Participant.ParticipantID() != wantIDs[i] || first[i].Rank != wantRanks[i] || !first[i].IsTied {
			t.Fatalf("standing %d = {%s %d %v}, want {%s %d true}",
				i, first[i].Participant.ParticipantID(), first[i].Rank, first[i].IsTied, wantIDs[i], wantRanks[i])
		}
	}

	for n := 0; n < 10; n++ {
		again := scoring.ComputeRanking(roster, scoring.ByRounds(2))
		for i := range again {
			if again[i].Participant.ParticipantID() != first[i].Participant.ParticipantID() {
				t.Fatalf("run %d: order changed at %d", n, i)
			}
		}
	}
}

func TestRankingDirectionAndPartialTies(t *testing.T) {
	roster := []scoring.Participant{
		&scoring.Player{ID: "a", Score: 3},
		&scoring.Player{ID: "b", Score: -1},
		&scoring.Player{ID: "c", Score: 7},
		&scoring.Player{ID: "d", Score: 3},
	}

	tests := []struct {
		name   string
		policy scoring.EndingPolicy
		ids    []string
		ranks  []int
		tied   []bool
	}{
		{
			name:   "higher is better",
			policy: scoring.ByThreshold(100, true),
			ids:    []string{"c", "a", "d", "b"},
			ranks:  []int{1, 2, 2, 4},
			tied:   []bool{false, true, true, false},
		},
		{
			name:   "lower is better",
			policy: scoring.ByThreshold(-5, false),
			ids:    []string{"b", "a", "d", "c"},
			ranks:  []int{1, 2, 2, 4},
			tied:   []bool{false, true, true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoring.ComputeRanking(roster, tt.policy)
			for i := range got {
				if got[i].Participant.ParticipantID() != tt.ids[i] || got[i].Rank != tt.ranks[i] || got[i].IsTied != tt.tied[i] {
					t.Fatalf("standing %d = {%s %d %v}, want {%s %d %v}", i,
						got[i].Participant.ParticipantID(), got[i].Rank, got[i].IsTied, tt.ids[i], tt.ranks[i], tt.tied[i])
				}
			}
		})
	}
}

func TestSetScoreUnknownID(t *testing.T) {
	m := newMatch(t, scoring.ByThreshold(100, true), "a", "b")
	setScores(t, m, map[string]int{"a": 4, "b": 9})

	if err := m.SetScore("ghost", 50); !errors.Is(err, scoring.ErrNotFound) {
		t.Fatalf("SetScore(ghost) = %v, want ErrNotFound", err)
	}
	if err := m.AdjustScore("ghost", 1); !errors.Is(err, scoring.ErrNotFound) {
		t.Fatalf("AdjustScore(ghost) = %v, want ErrNotFound", err)
	}
	if scoreOf(t, m, "a") != 4 || scoreOf(t, m, "b") != 9 {
		t.Fatalf("scores changed after a failed set: %d/%d", scoreOf(t, m, "a"), scoreOf(t, m, "b"))
	}
}

func TestAdjustScore(t *testing.T) {
	m, err := scoring.NewMatch(scoring.Config{
		Mode:           scoring.ModeIndividual,
		Policy:         scoring.ByThreshold(0, false),
		StartingPoints: 20,
	}, players("a"))
	if err != nil {
		t.Fatal(err)
	}
	if err := m.AdjustScore("a", -25); err != nil {
		t.Fatal(err)
	}
	if got := scoreOf(t, m, "a"); got != -5 {
		t.Fatalf("score = %d, want -5", got)
	}
}

func TestTeams(t *testing.T) {
	roster := []scoring.Participant{
		&scoring.Team{ID: "t1", Name: "Red", Members: []scoring.Member{{ID: "1", Name: "Alice"}, {ID: "2", Name: "Bob"}}},
		&scoring.Team{ID: "t2", Name: "Blue", Members: []scoring.Member{{ID: "3", Name: "Charlie"}}},
	}
	m, err := scoring.NewMatch(scoring.Config{Mode: scoring.ModeTeams, Policy: scoring.ByThreshold(21, true)}, roster)
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}

	// Player IDs are not on a team roster.
	if err := m.SetScore("1", 3); !errors.Is(err, scoring.ErrNotFound) {
		t.Fatalf("SetScore with a member id = %v, want ErrNotFound", err)
	}

	if err := m.AdjustScore("t2", 21); err != nil {
		t.Fatal(err)
	}
	out := m.CheckTermination()
	if out == nil || out.Winners[0] != "t2" {
		t.Fatalf("outcome = %+v, want t2 to win", out)
	}

	report, err := m.Report()
	if err != nil {
		t.Fatal(err)
	}
	team, ok := report.Standings[1].Participant.(*scoring.Team)
	if !ok || team.ID != "t1" || len(team.Members) != 2 {
		t.Fatalf("second standing = %+v, want team t1 with two members", report.Standings[1].Participant)
	}
}

func TestNewMatchRejectsBadRosters(t *testing.T) {
	tests := []struct {
		name   string
		cfg    scoring.Config
		roster []scoring.Participant
	}{
		{"empty roster", scoring.Config{Mode: scoring.ModeIndividual, Policy: scoring.ByRounds(2)}, nil},
		{"duplicate id", scoring.Config{Mode: scoring.ModeIndividual, Policy: scoring.ByRounds(2)}, players("a", "a")},
		{"empty id", scoring.Config{Mode: scoring.ModeIndividual, Policy: scoring.ByRounds(2)}, players("")},
		{"team in individual match", scoring.Config{Mode: scoring.ModeIndividual, Policy: scoring.ByRounds(2)},
			[]scoring.Participant{&scoring.Team{ID: "t"}}},
		{"player in team match", scoring.Config{Mode: scoring.ModeTeams, Policy: scoring.ByRounds(2)}, players("a")},
		{"zero rounds", scoring.Config{Mode: scoring.ModeIndividual, Policy: scoring.ByRounds(0)}, players("a")},
		{"unknown mode", scoring.Config{Mode: "pairs", Policy: scoring.ByRounds(2)}, players("a")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := scoring.NewMatch(tt.cfg, tt.roster); !errors.Is(err, scoring.ErrInvalidRoster) {
				t.Fatalf("NewMatch = %v, want ErrInvalidRoster", err)
			}
		})
	}
}

func TestNewMatchCopiesRoster(t *testing.T) {
	p := &scoring.Player{ID: "a", Score: 99}
	m, err := scoring.NewMatch(scoring.Config{Mode: scoring.ModeIndividual, Policy: scoring.ByRounds(2), StartingPoints: 7}, []scoring.Participant{p})
	if err != nil {
		t.Fatal(err)
	}
	if got := scoreOf(t, m, "a"); got != 7 {
		t.Fatalf("starting score = %d, want 7", got)
	}
	p.Score = 1000
	if got := scoreOf(t, m, "a"); got != 7 {
		t.Fatalf("caller mutation leaked into the match: %d", got)
	}
}

func TestDefinitionPolicy(t *testing.T) {
	tests := []struct {
		name string
		def  scoring.Definition
		want scoring.EndingPolicy
	}{
		{"rounds win over threshold", scoring.Definition{Rounds: 5, FinishingPoints: 100, IsWinning: true}, scoring.ByRounds(5)},
		{"single round uses threshold", scoring.Definition{Rounds: 1, FinishingPoints: 100, IsWinning: true}, scoring.ByThreshold(100, true)},
		{"no rounds uses threshold", scoring.Definition{Rounds: 0, FinishingPoints: -20}, scoring.ByThreshold(-20, false)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoring.DefinitionPolicy(tt.def); got != tt.want {
				t.Fatalf("DefinitionPolicy = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDefinitionEndsAtStart(t *testing.T) {
	tests := []struct {
		name string
		def  scoring.Definition
		want bool
	}{
		{"zero values", scoring.Definition{IsWinning: true}, true},
		{"start above win target", scoring.Definition{StartingPoints: 20, FinishingPoints: 10, IsWinning: true}, true},
		{"start below win target", scoring.Definition{StartingPoints: 0, FinishingPoints: 10, IsWinning: true}, false},
		{"start at lose target", scoring.Definition{StartingPoints: 0, FinishingPoints: 0}, true},
		{"start above lose target", scoring.Definition{StartingPoints: 301, FinishingPoints: 0}, false},
		{"round games never", scoring.Definition{Rounds: 3, IsWinning: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.def.EndsAtStart(); got != tt.want {
				t.Fatalf("EndsAtStart = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFinish(t *testing.T) {
	m := newMatch(t, scoring.ByThreshold(0, false), "a", "b")
	setScores(t, m, map[string]int{"a": 12, "b": 4})
	if m.CheckTermination() != nil {
		t.Fatal("threshold not reached yet")
	}

	out, err := m.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if out.Reason != scoring.ReasonFinishedManually || out.Winners[0] != "b" {
		t.Fatalf("outcome = %+v, want b to win by manual finish", out)
	}
	if _, err := m.Finish(); !errors.Is(err, scoring.ErrInvalidTransition) {
		t.Fatalf("second Finish = %v, want ErrInvalidTransition", err)
	}
}

func TestReportBeforeEnd(t *testing.T) {
	m := newMatch(t, scoring.ByRounds(2), "a")
	if _, err := m.Report(); !errors.Is(err, scoring.ErrInvalidTransition) {
		t.Fatalf("Report on active match = %v, want ErrInvalidTransition", err)
	}
}

func TestViewControls(t *testing.T) {
	m := newMatch(t, scoring.ByRounds(2), "a")
	v := m.View()
	if v.Round != 1 || v.TotalRounds != 2 || v.CanRewind || !v.CanForward {
		t.Fatalf("view at start = %+v", v)
	}
	mustAdvance(t, m)
	if v := m.View(); !v.CanRewind {
		t.Fatalf("expected rewind to be possible at round 2: %+v", v)
	}
	mustAdvance(t, m)
	if v := m.View(); v.CanRewind || v.CanForward || v.Outcome == nil {
		t.Fatalf("ended view = %+v", v)
	}

	threshold := newMatch(t, scoring.ByThreshold(10, true), "a")
	if v := threshold.View(); v.TotalRounds != 1 || v.CanForward || v.CanRewind {
		t.Fatalf("threshold view = %+v", v)
	}
}

func mustAdvance(t *testing.T, m *scoring.Match) {
	t.Helper()
	if _, err := m.Advance(); err != nil {
		t.Fatalf("Advance: %v", err)
	}
}
