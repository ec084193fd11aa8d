// Package store is the persistence layer: game definitions, match rows, and the final
// report of every finished match. It wraps a *gorm.DB so handlers and the session manager
// depend on a few methods instead of raw queries.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trentd187/scorekeeper/internal/models"
	"github.com/trentd187/scorekeeper/internal/scoring"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("record not found")

// Store runs queries against PostgreSQL through GORM.
type Store struct {
	db *gorm.DB
}

// New wraps an open database handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// notFound translates GORM's sentinel into ours so callers never import gorm.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// ListGames returns games ordered by name. With all unset only the owner's games are
// returned; admins pass all=true to see every game.
func (s *Store) ListGames(ctx context.Context, ownerID uuid.UUID, all bool) ([]models.Game, error) {
	var games []models.Game
	q := s.db.WithContext(ctx).Order("name")
	if !all {
		q = q.Where("user_id = ?", ownerID)
	}
	if err := q.Find(&games).Error; err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return games, nil
}

// CreateGame inserts a game definition; GORM fills in game.ID.
func (s *Store) CreateGame(ctx context.Context, game *models.Game) error {
	if err := s.db.WithContext(ctx).Create(game).Error; err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	return nil
}

// GetGame loads one game definition.
func (s *Store) GetGame(ctx context.Context, id uuid.UUID) (models.Game, error) {
	var game models.Game
	if err := s.db.WithContext(ctx).First(&game, "id = ?", id).Error; err != nil {
		return models.Game{}, fmt.Errorf("get game %s: %w", id, notFound(err))
	}
	return game, nil
}

// DeleteGame removes a game and, through ON DELETE CASCADE, its matches.
func (s *Store) DeleteGame(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Game{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete game %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete game %s: %w", id, ErrNotFound)
	}
	return nil
}

// CreateMatch inserts the row for a match that is about to start.
func (s *Store) CreateMatch(ctx context.Context, match *models.Match) error {
	if err := s.db.WithContext(ctx).Create(match).Error; err != nil {
		return fmt.Errorf("create match: %w", err)
	}
	return nil
}

// CancelMatch marks an aborted match. Only active matches can be cancelled.
func (s *Store) CancelMatch(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.Match{}).
		Where("id = ? AND status = ?", id, models.MatchStatusActive).
		Update("status", models.MatchStatusCancelled)
	if res.Error != nil {
		return fmt.Errorf("cancel match %s: %w", id, res.Error)
	}
	return nil
}

// SaveResult stores a finished match: the match row is closed and its standings and
// round history are inserted in one transaction, so a failure leaves the match active
// rather than half-written.
func (s *Store) SaveResult(ctx context.Context, matchID uuid.UUID, report scoring.Report) error {
	participants, rounds := ResultRows(matchID, report)
	reason := string(report.Reason)
	now := time.Now().UTC()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Match{}).
			Where("id = ? AND status = ?", matchID, models.MatchStatusActive).
			Updates(map[string]any{
				"status":             models.MatchStatusCompleted,
				"termination_reason": reason,
				"tie":                report.Tie,
				"rounds_played":      len(report.History),
				"ended_at":           now,
			})
		if res.Error != nil {
			return fmt.Errorf("close match %s: %w", matchID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("close match %s: %w", matchID, ErrNotFound)
		}

		if len(participants) > 0 {
			if err := tx.Create(&participants).Error; err != nil {
				return fmt.Errorf("save standings: %w", err)
			}
		}
		if len(rounds) > 0 {
			if err := tx.Create(&rounds).Error; err != nil {
				return fmt.Errorf("save rounds: %w", err)
			}
		}
		return nil
	})
}

// GetResult loads a match with its standings (in the order the engine ranked them) and
// rounds (oldest first).
func (s *Store) GetResult(ctx context.Context, matchID uuid.UUID) (models.Match, error) {
	var match models.Match
	err := s.db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		}).
		Preload("Rounds", func(db *gorm.DB) *gorm.DB {
			return db.Order("round_number")
		}).
		First(&match, "id = ?", matchID).Error
	if err != nil {
		return models.Match{}, fmt.Errorf("get result %s: %w", matchID, notFound(err))
	}
	return match, nil
}
