package handlers

// games.go: the /api/v1/games routes. A game is a reusable definition (roster size,
// rounds, starting points and what ends a match) that matches are started from.

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/trentd187/scorekeeper/internal/models"
)

// GameStore is the part of *store.Store the game routes use.
type GameStore interface {
	ListGames(ctx context.Context, ownerID uuid.UUID, all bool) ([]models.Game, error)
	CreateGame(ctx context.Context, game *models.Game) error
	GetGame(ctx context.Context, id uuid.UUID) (models.Game, error)
	DeleteGame(ctx context.Context, id uuid.UUID) error
}

// GameResponse is what we send back to the app. A dedicated struct keeps the JSON field
// names stable and independent of the GORM model.
type GameResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     *string `json:"description"`
	NumberOfPlayers int     `json:"number_of_players"`
	HasTeams        bool    `json:"has_teams"`
	MinTeamLength   int     `json:"min_team_length"`
	MaxTeamLength   int     `json:"max_team_length"`
	Rounds          int     `json:"rounds"`
	StartingPoints  int     `json:"starting_points"`
	FinishingPoints int     `json:"finishing_points"`
	IsWinning       bool    `json:"is_winning"`
	HasTurns        bool    `json:"has_turns"`
	TurnDuration    int     `json:"turn_duration"`
	RoundDuration   int     `json:"round_duration"`
	Rules           string  `json:"rules"`
	Icon            string  `json:"icon"`
	Color           string  `json:"color"`
	BgColor         string  `json:"bg_color"`
	EndsBy          string  `json:"ends_by"` // "rounds" or "threshold"; derived from Rounds
	OwnerID         string  `json:"owner_id"`
	CreatedAt       string  `json:"created_at"`
}

// CreateGameRequest is the JSON body we expect on POST /api/v1/games.
// Pointer fields are optional and fall back to the column defaults.
type CreateGameRequest struct {
	Name            string  `json:"name"`
	Description     *string `json:"description"`
	NumberOfPlayers int     `json:"number_of_players"`
	HasTeams        bool    `json:"has_teams"`
	MinTeamLength   *int    `json:"min_team_length"`
	MaxTeamLength   *int    `json:"max_team_length"`
	Rounds          *int    `json:"rounds"`
	StartingPoints  int     `json:"starting_points"`
	FinishingPoints int     `json:"finishing_points"`
	IsWinning       *bool   `json:"is_winning"`
	HasTurns        bool    `json:"has_turns"`
	TurnDuration    int     `json:"turn_duration"`
	RoundDuration   int     `json:"round_duration"`
	Rules           string  `json:"rules"`
	Icon            string  `json:"icon"`
	Color           string  `json:"color"`
	BgColor         string  `json:"bg_color"`
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// toGame validates the request and builds the row to insert.
func (r CreateGameRequest) toGame(ownerID uuid.UUID) (models.Game, error) {
	game := models.Game{
		Name:            r.Name,
		Description:     r.Description,
		NumberOfPlayers: r.NumberOfPlayers,
		HasTeams:        r.HasTeams,
		MinTeamLength:   intOr(r.MinTeamLength, 1),
		MaxTeamLength:   intOr(r.MaxTeamLength, 1),
		Rounds:          intOr(r.Rounds, 1),
		StartingPoints:  r.StartingPoints,
		FinishingPoints: r.FinishingPoints,
		IsWinning:       true,
		HasTurns:        r.HasTurns,
		TurnDuration:    r.TurnDuration,
		RoundDuration:   r.RoundDuration,
		Rules:           r.Rules,
		Icon:            r.Icon,
		Color:           r.Color,
		BgColor:         r.BgColor,
		UserID:          ownerID,
	}
	if r.IsWinning != nil {
		game.IsWinning = *r.IsWinning
	}

	switch {
	case game.Name == "":
		return models.Game{}, errors.New("name is required")
	case game.NumberOfPlayers < 1:
		return models.Game{}, errors.New("number_of_players must be at least 1")
	case game.Rounds < 1:
		return models.Game{}, errors.New("rounds must be at least 1")
	case game.MinTeamLength < 1:
		return models.Game{}, errors.New("min_team_length must be at least 1")
	case game.MaxTeamLength < game.MinTeamLength:
		return models.Game{}, errors.New("max_team_length must not be less than min_team_length")
	case game.TurnDuration < 0 || game.RoundDuration < 0:
		return models.Game{}, errors.New("durations must not be negative")
	case definitionOf(game).EndsAtStart():
		return models.Game{}, errors.New("starting_points already reaches finishing_points")
	}
	return game, nil
}

func gameResponse(g models.Game) GameResponse {
	endsBy := "threshold"
	if g.Rounds > 1 {
		endsBy = "rounds"
	}
	return GameResponse{
		ID:              g.ID.String(),
		Name:            g.Name,
		Description:     g.Description,
		NumberOfPlayers: g.NumberOfPlayers,
		HasTeams:        g.HasTeams,
		MinTeamLength:   g.MinTeamLength,
		MaxTeamLength:   g.MaxTeamLength,
		Rounds:          g.Rounds,
		StartingPoints:  g.StartingPoints,
		FinishingPoints: g.FinishingPoints,
		IsWinning:       g.IsWinning,
		HasTurns:        g.HasTurns,
		TurnDuration:    g.TurnDuration,
		RoundDuration:   g.RoundDuration,
		Rules:           g.Rules,
		Icon:            g.Icon,
		Color:           g.Color,
		BgColor:         g.BgColor,
		EndsBy:          endsBy,
		OwnerID:         g.UserID.String(),
		CreatedAt:       g.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// GetGames returns a handler for GET /api/v1/games.
// Everyone sees the games they own; admins may pass ?all=true to see every game.
func GetGames(games GameStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := currentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		}

		all := isAdmin(role) && c.QueryBool("all")
		list, err := games.ListGames(c.UserContext(), userID, all)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch games",
			})
		}

		response := make([]GameResponse, 0, len(list))
		for _, g := range list {
			response = append(response, gameResponse(g))
		}
		return c.JSON(response)
	}
}

// CreateGame returns a handler for POST /api/v1/games.
func CreateGame(games GameStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, err := currentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		}

		var req CreateGameRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		game, err := req.toGame(userID)
		if err != nil {
			return badRequest(c, err.Error())
		}

		if err := games.CreateGame(c.UserContext(), &game); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to create game",
			})
		}
		return c.Status(fiber.StatusCreated).JSON(gameResponse(game))
	}
}

// GetGame returns a handler for GET /api/v1/games/:id. Only the owner or an admin can
// read a game.
func GetGame(games GameStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := currentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		}
		id, ok := pathID(c)
		if !ok {
			return badRequest(c, "invalid game id")
		}

		game, err := games.GetGame(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		if !canManage(game.UserID, userID, role) {
			return forbidden(c)
		}
		return c.JSON(gameResponse(game))
	}
}

// DeleteGame returns a handler for DELETE /api/v1/games/:id (owner or admin).
func DeleteGame(games GameStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := currentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		}
		id, ok := pathID(c)
		if !ok {
			return badRequest(c, "invalid game id")
		}

		game, err := games.GetGame(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		if !canManage(game.UserID, userID, role) {
			return forbidden(c)
		}
		if err := games.DeleteGame(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
