// Package session owns the matches being played right now.
//
// A Manager keeps one scoring.Match per live match ID and funnels every operation through
// it in the order the engine expects: a score change is followed by a termination check,
// and a round change runs the check itself. When a match ends the Manager hands the final
// report to the result store in the background and forgets the match.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/trentd187/scorekeeper/internal/scoring"
)

// ErrSessionNotFound means no live match has the given ID. It may never have started,
// or it already ended or was aborted.
var ErrSessionNotFound = errors.New("no live match with that id")

// ResultStore persists the report of a finished match.
type ResultStore interface {
	SaveResult(ctx context.Context, matchID uuid.UUID, report scoring.Report) error
}

// Publisher fans match events out to watchers. *live.Hub implements it.
type Publisher interface {
	Publish(matchID string, data []byte)
}

// Event types sent to watchers.
const (
	EventStarted = "started"
	EventUpdated = "updated"
	EventEnded   = "ended"
	EventAborted = "aborted"
)

// Event is the JSON payload published on every change.
type Event struct {
	Type    string          `json:"type"`
	MatchID string          `json:"match_id"`
	View    *scoring.View   `json:"view,omitempty"`
	Report  *scoring.Report `json:"report,omitempty"`
}

// Result is what every mutating operation returns: the view after the change and, when
// the change ended the match, the final report.
type Result struct {
	View   scoring.View    `json:"view"`
	Report *scoring.Report `json:"report,omitempty"`
}

// Session is one live match.
type Session struct {
	ID        uuid.UUID
	Name      string
	OwnerID   uuid.UUID
	GameID    uuid.UUID
	StartedAt time.Time
	match     *scoring.Match
}

// Manager holds every live session. Requests arrive concurrently, so the map and each
// match are only touched under mu.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session

	results     ResultStore
	publisher   Publisher
	log         zerolog.Logger
	saveTimeout time.Duration
	saves       sync.WaitGroup
}

// NewManager creates a Manager. results and publisher must be non-nil.
func NewManager(results ResultStore, publisher Publisher, log zerolog.Logger) *Manager {
	return &Manager{
		sessions:    make(map[uuid.UUID]*Session),
		results:     results,
		publisher:   publisher,
		log:         log.With().Str("component", "session").Logger(),
		saveTimeout: 10 * time.Second,
	}
}

// Start creates the match and registers it under id.
func (m *Manager) Start(id uuid.UUID, name string, ownerID, gameID uuid.UUID, cfg scoring.Config, roster []scoring.Participant) (scoring.View, error) {
	match, err := scoring.NewMatch(cfg, roster)
	if err != nil {
		return scoring.View{}, fmt.Errorf("start match %s: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[id]; exists {
		return scoring.View{}, fmt.Errorf("start match %s: %w: already live", id, scoring.ErrInvalidTransition)
	}
	m.sessions[id] = &Session{
		ID:        id,
		Name:      name,
		OwnerID:   ownerID,
		GameID:    gameID,
		StartedAt: time.Now().UTC(),
		match:     match,
	}

	view := match.View()
	m.log.Info().
		Str("match_id", id.String()).
		Str("mode", string(cfg.Mode)).
		Str("policy", string(cfg.Policy.Kind)).
		Int("participants", len(roster)).
		Msg("match started")
	m.publish(Event{Type: EventStarted, MatchID: id.String(), View: &view})
	return view, nil
}

// View returns the current state of a live match.
func (m *Manager) View(id uuid.UUID) (scoring.View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return scoring.View{}, fmt.Errorf("view %s: %w", id, ErrSessionNotFound)
	}
	return s.match.View(), nil
}

// Owner returns the user who started a live match.
func (m *Manager) Owner(id uuid.UUID) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return uuid.Nil, fmt.Errorf("owner %s: %w", id, ErrSessionNotFound)
	}
	return s.OwnerID, nil
}

// Active lists the IDs of all live matches, sorted.
func (m *Manager) Active() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// SetScore sets one participant's score and checks whether the match ended.
func (m *Manager) SetScore(id uuid.UUID, participantID string, score int) (Result, error) {
	return m.apply(id, "set_score", func(match *scoring.Match) error {
		return match.SetScore(participantID, score)
	})
}

// AdjustScore adds delta to one participant's score and checks whether the match ended.
func (m *Manager) AdjustScore(id uuid.UUID, participantID string, delta int) (Result, error) {
	return m.apply(id, "adjust_score", func(match *scoring.Match) error {
		return match.AdjustScore(participantID, delta)
	})
}

// Advance closes the current round.
func (m *Manager) Advance(id uuid.UUID) (Result, error) {
	return m.apply(id, "advance", func(match *scoring.Match) error {
		_, err := match.Advance()
		return err
	})
}

// Rewind goes back one round.
func (m *Manager) Rewind(id uuid.UUID) (Result, error) {
	return m.apply(id, "rewind", func(match *scoring.Match) error {
		return match.Rewind()
	})
}

// Forward re-enters the next round, or closes the current one if it was never closed.
func (m *Manager) Forward(id uuid.UUID) (Result, error) {
	return m.apply(id, "forward", func(match *scoring.Match) error {
		_, err := match.RedoForward()
		return err
	})
}

// Finish ends the match on request.
func (m *Manager) Finish(id uuid.UUID) (Result, error) {
	return m.apply(id, "finish", func(match *scoring.Match) error {
		_, err := match.Finish()
		return err
	})
}

// Abort discards a live match. Nothing is persisted for it.
func (m *Manager) Abort(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("abort %s: %w", id, ErrSessionNotFound)
	}
	delete(m.sessions, id)
	m.log.Info().Str("match_id", id.String()).Msg("match aborted")
	m.publish(Event{Type: EventAborted, MatchID: id.String()})
	return nil
}

// Wait blocks until every background result save has finished.
func (m *Manager) Wait() {
	m.saves.Wait()
}

func (m *Manager) apply(id uuid.UUID, op string, fn func(*scoring.Match) error) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return Result{}, fmt.Errorf("%s %s: %w", op, id, ErrSessionNotFound)
	}
	if err := fn(s.match); err != nil {
		m.log.Debug().Err(err).Str("match_id", id.String()).Str("op", op).Msg("operation declined")
		return Result{}, err
	}

	// Threshold games can end on any change; for round games this only reports an
	// ending that Advance already decided.
	s.match.CheckTermination()

	view := s.match.View()
	if !s.match.Ended() {
		m.log.Debug().Str("match_id", id.String()).Str("op", op).Int("round", view.Round).Msg("match updated")
		m.publish(Event{Type: EventUpdated, MatchID: id.String(), View: &view})
		return Result{View: view}, nil
	}

	report, err := s.match.Report()
	if err != nil {
		return Result{}, fmt.Errorf("%s %s: %w", op, id, err)
	}
	delete(m.sessions, id)

	m.log.Info().
		Str("match_id", id.String()).
		Str("reason", string(report.Reason)).
		Int("winners", len(report.Winners)).
		Bool("tie", report.Tie).
		Msg("match ended")
	m.publish(Event{Type: EventEnded, MatchID: id.String(), View: &view, Report: &report})
	m.save(id, report)

	return Result{View: view, Report: &report}, nil
}

// save hands the report to the result store without blocking the caller. The match is
// already gone from memory, so a failed save is logged and not retried here.
func (m *Manager) save(id uuid.UUID, report scoring.Report) {
	m.saves.Add(1)
	go func() {
		defer m.saves.Done()
		ctx, cancel := context.WithTimeout(context.Background(), m.saveTimeout)
		defer cancel()
		if err := m.results.SaveResult(ctx, id, report); err != nil {
			m.log.Error().Err(err).Str("match_id", id.String()).Msg("failed to save match result")
			return
		}
		m.log.Debug().Str("match_id", id.String()).Msg("match result saved")
	}()
}

func (m *Manager) publish(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		m.log.Error().Err(err).Str("match_id", ev.MatchID).Msg("failed to encode event")
		return
	}
	m.publisher.Publish(ev.MatchID, data)
}
