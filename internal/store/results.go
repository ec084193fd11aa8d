package store

import (
	"github.com/google/uuid"

	"github.com/trentd187/scorekeeper/internal/models"
	"github.com/trentd187/scorekeeper/internal/scoring"
)

// ResultRows flattens a report into the rows SaveResult inserts. Standings are numbered
// by Position in report order, so tied participants read back in roster order; rounds are
// numbered from 1.
func ResultRows(matchID uuid.UUID, report scoring.Report) ([]models.MatchParticipant, []models.MatchRound) {
	winners := make(map[string]bool, len(report.Winners))
	for _, w := range report.Winners {
		winners[w.ParticipantID()] = true
	}

	participants := make([]models.MatchParticipant, 0, len(report.Standings))
	for i, s := range report.Standings {
		row := models.MatchParticipant{
			MatchID:       matchID,
			Position:      i + 1,
			ParticipantID: s.Participant.ParticipantID(),
			Name:          s.Participant.DisplayName(),
			Score:         s.Participant.CurrentScore(),
			Rank:          s.Rank,
			IsTied:        s.IsTied,
			IsWinner:      winners[s.Participant.ParticipantID()],
		}
		switch p := s.Participant.(type) {
		case *scoring.Player:
			row.Kind = models.ParticipantKindPlayer
			row.Color = p.Color
		case *scoring.Team:
			row.Kind = models.ParticipantKindTeam
			row.Color = p.Color
			row.Members = make([]models.TeamMember, len(p.Members))
			for i, m := range p.Members {
				row.Members[i] = models.TeamMember{ID: m.ID, Name: m.Name}
			}
		}
		participants = append(participants, row)
	}

	rounds := make([]models.MatchRound, len(report.History))
	for i, snap := range report.History {
		scores := make(map[string]int, len(snap))
		for id, score := range snap {
			scores[id] = score
		}
		rounds[i] = models.MatchRound{
			MatchID:     matchID,
			RoundNumber: i + 1,
			Scores:      scores,
		}
	}
	return participants, rounds
}
