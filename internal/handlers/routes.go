package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/trentd187/scorekeeper/internal/live"
	"github.com/trentd187/scorekeeper/internal/middleware"
	"github.com/trentd187/scorekeeper/internal/models"
	"github.com/trentd187/scorekeeper/internal/session"
)

// Store is everything the routes need from persistence. *store.Store implements it.
type Store interface {
	GameStore
	MatchStore
}

// Deps are the dependencies shared by the authenticated routes.
type Deps struct {
	Store        Store
	Sessions     *session.Manager
	Hub          *live.Hub
	StreamBuffer int // Per-watcher event buffer for the stream route
	Log          zerolog.Logger
}

// Register mounts every authenticated route on api. The caller applies middleware.Auth
// to api first, since all handlers read the caller from c.Locals.
func Register(api fiber.Router, d Deps) {
	log := d.Log.With().Str("component", "handlers").Logger()

	// Games
	// GET    /games      games the caller owns (?all=true for admins)
	// POST   /games      create a game definition
	// GET    /games/:id
	// DELETE /games/:id  owner or admin
	api.Get("/games", GetGames(d.Store))
	api.Post("/games", CreateGame(d.Store))
	api.Get("/games/:id", GetGame(d.Store))
	api.Delete("/games/:id", DeleteGame(d.Store))

	// Matches
	api.Post("/matches", StartMatch(d.Store, d.Sessions, log))
	api.Get("/matches/:id", GetMatch(d.Sessions))
	api.Delete("/matches/:id", AbortMatch(d.Store, d.Sessions))
	api.Put("/matches/:id/scores/:participantID", SetScore(d.Sessions))
	api.Post("/matches/:id/scores/:participantID/adjust", AdjustScore(d.Sessions))
	api.Post("/matches/:id/rounds/advance", AdvanceRound(d.Sessions))
	api.Post("/matches/:id/rounds/rewind", RewindRound(d.Sessions))
	api.Post("/matches/:id/rounds/forward", ForwardRound(d.Sessions))
	api.Post("/matches/:id/finish", FinishMatch(d.Sessions))
	api.Get("/matches/:id/results", GetResults(d.Store))
	api.Get("/matches/:id/stream", StreamMatch(d.Hub, d.Sessions, d.StreamBuffer))

	// Admin
	admin := api.Group("/admin", middleware.RequireRole(string(models.UserRoleAdmin)))
	admin.Get("/matches", ListLiveMatches(d.Sessions))
}
