package handlers

// matches.go: starting, scoring and ending matches. Live state belongs to the session
// manager; the store only sees a match when it starts (its row), when it is aborted, and
// when its result is read back.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/trentd187/scorekeeper/internal/models"
	"github.com/trentd187/scorekeeper/internal/scoring"
	"github.com/trentd187/scorekeeper/internal/session"
)

// MatchStore is the part of *store.Store the match routes use.
type MatchStore interface {
	GetGame(ctx context.Context, id uuid.UUID) (models.Game, error)
	CreateMatch(ctx context.Context, match *models.Match) error
	CancelMatch(ctx context.Context, id uuid.UUID) error
	GetResult(ctx context.Context, matchID uuid.UUID) (models.Match, error)
}

// PlayerRequest is one player on a roster. An empty ID is generated.
type PlayerRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// TeamRequest is one team on a roster.
type TeamRequest struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Color   string          `json:"color"`
	Players []PlayerRequest `json:"players"`
}

// StartMatchRequest is the JSON body for POST /api/v1/matches. Exactly one of Players
// and Teams is used, depending on whether the game is played in teams.
type StartMatchRequest struct {
	Name    string          `json:"name"`
	GameID  string          `json:"game_id"`
	Players []PlayerRequest `json:"players"`
	Teams   []TeamRequest   `json:"teams"`
}

// MatchResponse is returned when a match starts.
type MatchResponse struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	GameID string       `json:"game_id"`
	View   scoring.View `json:"view"`
}

// errBadBody is returned by a matchOp body that could not parse its request.
var errBadBody = errors.New("invalid request body")

type scoreRequest struct {
	Score *int `json:"score"`
}

type adjustRequest struct {
	Delta *int `json:"delta"`
}

func idOrNew(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

// buildRoster checks a requested roster against the game definition and converts it into
// engine participants. The game fixes the number of players (or teams) exactly, and every
// team must fit the game's team size range.
func buildRoster(game models.Game, req StartMatchRequest) (scoring.Mode, []scoring.Participant, error) {
	if !game.HasTeams {
		if len(req.Teams) > 0 {
			return "", nil, fmt.Errorf("%w: %s is not played in teams", scoring.ErrInvalidRoster, game.Name)
		}
		if len(req.Players) != game.NumberOfPlayers {
			return "", nil, fmt.Errorf("%w: %s needs %d players, got %d",
				scoring.ErrInvalidRoster, game.Name, game.NumberOfPlayers, len(req.Players))
		}
		roster := make([]scoring.Participant, len(req.Players))
		for i, p := range req.Players {
			if p.Name == "" {
				return "", nil, fmt.Errorf("%w: player %d has no name", scoring.ErrInvalidRoster, i+1)
			}
			roster[i] = &scoring.Player{ID: idOrNew(p.ID), Name: p.Name, Color: p.Color}
		}
		return scoring.ModeIndividual, roster, nil
	}

	if len(req.Players) > 0 {
		return "", nil, fmt.Errorf("%w: %s is played in teams", scoring.ErrInvalidRoster, game.Name)
	}
	if len(req.Teams) != game.NumberOfPlayers {
		return "", nil, fmt.Errorf("%w: %s needs %d teams, got %d",
			scoring.ErrInvalidRoster, game.Name, game.NumberOfPlayers, len(req.Teams))
	}
	roster := make([]scoring.Participant, len(req.Teams))
	for i, t := range req.Teams {
		if t.Name == "" {
			return "", nil, fmt.Errorf("%w: team %d has no name", scoring.ErrInvalidRoster, i+1)
		}
		if n := len(t.Players); n < game.MinTeamLength || n > game.MaxTeamLength {
			return "", nil, fmt.Errorf("%w: team %q has %d players, want %d to %d",
				scoring.ErrInvalidRoster, t.Name, n, game.MinTeamLength, game.MaxTeamLength)
		}
		team := &scoring.Team{ID: idOrNew(t.ID), Name: t.Name, Color: t.Color, Members: make([]scoring.Member, len(t.Players))}
		for j, p := range t.Players {
			if p.Name == "" {
				return "", nil, fmt.Errorf("%w: team %q player %d has no name", scoring.ErrInvalidRoster, t.Name, j+1)
			}
			team.Members[j] = scoring.Member{ID: idOrNew(p.ID), Name: p.Name}
		}
		roster[i] = team
	}
	return scoring.ModeTeams, roster, nil
}

// definitionOf extracts the scoring fields of a game.
func definitionOf(g models.Game) scoring.Definition {
	return scoring.Definition{
		Rounds:          g.Rounds,
		StartingPoints:  g.StartingPoints,
		FinishingPoints: g.FinishingPoints,
		IsWinning:       g.IsWinning,
	}
}

// StartMatch returns a handler for POST /api/v1/matches.
// The match row is written first so the live session always has a row to close; if the
// session cannot start the row is cancelled again.
func StartMatch(matches MatchStore, sessions *session.Manager, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := currentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		}

		var req StartMatchRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		gameID, err := uuid.Parse(req.GameID)
		if err != nil {
			return badRequest(c, "game_id must be a valid id")
		}

		game, err := matches.GetGame(c.UserContext(), gameID)
		if err != nil {
			return respondError(c, err)
		}
		if !canManage(game.UserID, userID, role) {
			return forbidden(c)
		}

		mode, roster, err := buildRoster(game, req)
		if err != nil {
			return respondError(c, err)
		}
		name := req.Name
		if name == "" {
			name = game.Name
		}

		row := models.Match{
			Name:      name,
			GameID:    game.ID,
			CreatorID: userID,
			Mode:      string(mode),
			Status:    models.MatchStatusActive,
		}
		if err := matches.CreateMatch(c.UserContext(), &row); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to create match",
			})
		}

		view, err := sessions.Start(row.ID, name, userID, game.ID, scoring.ConfigFor(definitionOf(game), mode), roster)
		if err != nil {
			if cerr := matches.CancelMatch(c.UserContext(), row.ID); cerr != nil {
				log.Error().Err(cerr).Str("match_id", row.ID.String()).Msg("failed to cancel match that did not start")
			}
			return respondError(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(MatchResponse{
			ID:     row.ID.String(),
			Name:   name,
			GameID: game.ID.String(),
			View:   view,
		})
	}
}

// GetMatch returns a handler for GET /api/v1/matches/:id: the live view of a match.
// Any signed-in user may watch.
func GetMatch(sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c)
		if !ok {
			return badRequest(c, "invalid match id")
		}
		view, err := sessions.View(id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(view)
	}
}

// matchOp wraps an operation on a live match that only its owner (or an admin) may
// perform, and answers with the resulting view and, if the match just ended, its report.
func matchOp(sessions *session.Manager, op func(c *fiber.Ctx, id uuid.UUID) (session.Result, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := currentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		}
		id, ok := pathID(c)
		if !ok {
			return badRequest(c, "invalid match id")
		}

		owner, err := sessions.Owner(id)
		if err != nil {
			return respondError(c, err)
		}
		if !canManage(owner, userID, role) {
			return forbidden(c)
		}

		res, err := op(c, id)
		if err != nil {
			if errors.Is(err, errBadBody) {
				return badRequest(c, "invalid request body")
			}
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}

// SetScore returns a handler for PUT /api/v1/matches/:id/scores/:participantID.
func SetScore(sessions *session.Manager) fiber.Handler {
	return matchOp(sessions, func(c *fiber.Ctx, id uuid.UUID) (session.Result, error) {
		var req scoreRequest
		if err := c.BodyParser(&req); err != nil || req.Score == nil {
			return session.Result{}, errBadBody
		}
		return sessions.SetScore(id, c.Params("participantID"), *req.Score)
	})
}

// AdjustScore returns a handler for POST /api/v1/matches/:id/scores/:participantID/adjust.
func AdjustScore(sessions *session.Manager) fiber.Handler {
	return matchOp(sessions, func(c *fiber.Ctx, id uuid.UUID) (session.Result, error) {
		var req adjustRequest
		if err := c.BodyParser(&req); err != nil || req.Delta == nil {
			return session.Result{}, errBadBody
		}
		return sessions.AdjustScore(id, c.Params("participantID"), *req.Delta)
	})
}

// AdvanceRound returns a handler for POST /api/v1/matches/:id/rounds/advance.
func AdvanceRound(sessions *session.Manager) fiber.Handler {
	return matchOp(sessions, func(_ *fiber.Ctx, id uuid.UUID) (session.Result, error) {
		return sessions.Advance(id)
	})
}

// RewindRound returns a handler for POST /api/v1/matches/:id/rounds/rewind.
func RewindRound(sessions *session.Manager) fiber.Handler {
	return matchOp(sessions, func(_ *fiber.Ctx, id uuid.UUID) (session.Result, error) {
		return sessions.Rewind(id)
	})
}

// ForwardRound returns a handler for POST /api/v1/matches/:id/rounds/forward.
func ForwardRound(sessions *session.Manager) fiber.Handler {
	return matchOp(sessions, func(_ *fiber.Ctx, id uuid.UUID) (session.Result, error) {
		return sessions.Forward(id)
	})
}

// FinishMatch returns a handler for POST /api/v1/matches/:id/finish.
func FinishMatch(sessions *session.Manager) fiber.Handler {
	return matchOp(sessions, func(_ *fiber.Ctx, id uuid.UUID) (session.Result, error) {
		return sessions.Finish(id)
	})
}

// AbortMatch returns a handler for DELETE /api/v1/matches/:id. The live state is thrown
// away and the row is marked cancelled.
func AbortMatch(matches MatchStore, sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := currentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		}
		id, ok := pathID(c)
		if !ok {
			return badRequest(c, "invalid match id")
		}

		owner, err := sessions.Owner(id)
		if err != nil {
			return respondError(c, err)
		}
		if !canManage(owner, userID, role) {
			return forbidden(c)
		}
		if err := sessions.Abort(id); err != nil {
			return respondError(c, err)
		}
		if err := matches.CancelMatch(c.UserContext(), id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// StandingResponse is one line of a stored result.
type StandingResponse struct {
	ParticipantID string              `json:"participant_id"`
	Kind          string              `json:"kind"`
	Name          string              `json:"name"`
	Color         string              `json:"color"`
	Score         int                 `json:"score"`
	Rank          int                 `json:"rank"`
	IsTied        bool                `json:"is_tied"`
	IsWinner      bool                `json:"is_winner"`
	Members       []models.TeamMember `json:"members,omitempty"`
}

// RoundResponse is the score snapshot of one closed round.
type RoundResponse struct {
	Round  int            `json:"round"`
	Scores map[string]int `json:"scores"`
}

// ResultResponse is the stored outcome of a finished match.
type ResultResponse struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	GameID       string             `json:"game_id"`
	Mode         string             `json:"mode"`
	Reason       string             `json:"reason"`
	Tie          bool               `json:"tie"`
	RoundsPlayed int                `json:"rounds_played"`
	StartedAt    string             `json:"started_at"`
	EndedAt      *string            `json:"ended_at"`
	Standings    []StandingResponse `json:"standings"`
	Rounds       []RoundResponse    `json:"rounds"`
}

func resultResponse(m models.Match) ResultResponse {
	res := ResultResponse{
		ID:           m.ID.String(),
		Name:         m.Name,
		GameID:       m.GameID.String(),
		Mode:         m.Mode,
		Tie:          m.Tie,
		RoundsPlayed: m.RoundsPlayed,
		StartedAt:    m.StartedAt.UTC().Format(time.RFC3339),
		Standings:    make([]StandingResponse, len(m.Participants)),
		Rounds:       make([]RoundResponse, len(m.Rounds)),
	}
	if m.TerminationReason != nil {
		res.Reason = *m.TerminationReason
	}
	if m.EndedAt != nil {
		s := m.EndedAt.UTC().Format(time.RFC3339)
		res.EndedAt = &s
	}
	for i, p := range m.Participants {
		res.Standings[i] = StandingResponse{
			ParticipantID: p.ParticipantID,
			Kind:          string(p.Kind),
			Name:          p.Name,
			Color:         p.Color,
			Score:         p.Score,
			Rank:          p.Rank,
			IsTied:        p.IsTied,
			IsWinner:      p.IsWinner,
			Members:       p.Members,
		}
	}
	for i, r := range m.Rounds {
		res.Rounds[i] = RoundResponse{Round: r.RoundNumber, Scores: r.Scores}
	}
	return res
}

// GetResults returns a handler for GET /api/v1/matches/:id/results. Results exist only
// once a match has ended and its report was saved; until then the answer is 409.
func GetResults(matches MatchStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c)
		if !ok {
			return badRequest(c, "invalid match id")
		}
		m, err := matches.GetResult(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		if m.Status != models.MatchStatusCompleted {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":  "match has no result",
				"status": string(m.Status),
			})
		}
		return c.JSON(resultResponse(m))
	}
}

// ListLiveMatches returns a handler for GET /api/v1/admin/matches: the IDs of every match
// being played right now. Admin only (enforced by RequireRole on the route).
func ListLiveMatches(sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ids := sessions.Active()
		out := make([]string, len(ids))
		for i, id := range ids {
			out[i] = id.String()
		}
		return c.JSON(fiber.Map{"matches": out})
	}
}
