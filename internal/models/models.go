// Package models defines the data structures (models) that map to database tables.
// GORM uses these structs to generate SQL queries and map database rows back to Go values.
// The struct field tags (the backtick strings like `gorm:"..."`) tell GORM how to handle
// each field: its column type, constraints, default values, and relationships.
//
// The data model represents a score keeper for tabletop and card games where:
//   - Users define Games (rules, player/team counts, rounds, how a match ends)
//   - A Match is one playthrough of a Game
//   - When a Match ends, its final standings (MatchParticipant) and the score snapshot
//     of every closed round (MatchRound) are stored
//
// Live scoring happens in memory (see the session package); the database only sees a
// match when it starts and when it ends.
package models

import (
	"time"

	// uuid provides universally unique identifiers for primary keys.
	// Using UUIDs instead of auto-incrementing integers makes IDs safe to generate
	// client-side and avoids leaking record counts to end users.
	"github.com/google/uuid"
)

// --- Enums ---
// Go doesn't have a built-in enum keyword, so we simulate them using a named string type
// plus constants. This gives us type safety while keeping the values readable in the database.

// UserRole represents a user's global permission level across the entire platform.
type UserRole string

const (
	UserRoleAdmin UserRole = "admin" // Full access: every game and every live match
	UserRoleUser  UserRole = "user"  // Regular player: manages their own games and matches
)

// MatchStatus tracks the lifecycle of a match.
type MatchStatus string

const (
	MatchStatusActive    MatchStatus = "active"    // Being scored right now
	MatchStatusCompleted MatchStatus = "completed" // Ended; standings are stored
	MatchStatusCancelled MatchStatus = "cancelled" // Aborted before it ended; nothing else is stored
)

// ParticipantKind says whether a stored participant was a single player or a team.
type ParticipantKind string

const (
	ParticipantKindPlayer ParticipantKind = "player"
	ParticipantKindTeam   ParticipantKind = "team"
)

// --- Models ---
// Each struct below maps to a database table. GORM uses the struct name (snake_cased and
// pluralized) as the table name by default: User -> users, Game -> games, etc.

// User represents a registered person in the system.
// Users are created automatically the first time an authenticated user hits the API.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"` // UUID primary key; the DB generates it automatically
	ExternalID  string    `gorm:"uniqueIndex;not null"`                           // The token subject (auth provider's user id)
	DisplayName string    `gorm:"not null"`                                       // The name shown in the app; from the token "name" claim
	Email       string    `gorm:"uniqueIndex;not null"`                           // Unique email; from the token "email" claim
	Role        UserRole  `gorm:"type:user_role;not null;default:'user'"`         // Global role; synced from the token "role" claim
	CreatedAt   time.Time // GORM automatically sets this on create
	UpdatedAt   time.Time // GORM automatically updates this on every save
}

// Game is a user-defined game definition: how many players or teams play, how many
// rounds there are, where scores start, and what ends a match.
//
// Precedence rule: when Rounds > 1 a match always ends by round count and the
// FinishingPoints/IsWinning threshold fields are ignored.
type Game struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name            string    `gorm:"not null"`
	Description     *string   // Optional; pointer = nullable
	NumberOfPlayers int       `gorm:"not null;default:2"` // Number of players, or number of teams when HasTeams
	HasTeams        bool      `gorm:"not null;default:false"`
	MinTeamLength   int       `gorm:"not null;default:1"` // Minimum members per team
	MaxTeamLength   int       `gorm:"not null;default:1"` // Maximum members per team
	Rounds          int       `gorm:"not null;default:1"` // 1 means no round mechanic
	StartingPoints  int       `gorm:"not null;default:0"`
	FinishingPoints int       `gorm:"not null;default:0"`    // Threshold target when Rounds <= 1
	IsWinning       bool      `gorm:"not null;default:true"` // true: reach the target to win; false: drop to it
	HasTurns        bool      `gorm:"not null;default:false"`
	TurnDuration    int       `gorm:"not null;default:0"` // Seconds; drives the app's countdown timer only
	RoundDuration   int       `gorm:"not null;default:0"` // Seconds; drives the app's countdown timer only
	Rules           string    `gorm:"not null;default:''"`
	Icon            string    `gorm:"not null;default:''"`
	Color           string    `gorm:"not null;default:''"`
	BgColor         string    `gorm:"not null;default:''"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index"` // Owner
	User            User      `gorm:"foreignKey:UserID"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Match is one playthrough of a Game.
type Match struct {
	ID                uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name              string      `gorm:"not null"`
	GameID            uuid.UUID   `gorm:"type:uuid;not null;index"`
	Game              Game        `gorm:"foreignKey:GameID"`
	CreatorID         uuid.UUID   `gorm:"type:uuid;not null"`
	Creator           User        `gorm:"foreignKey:CreatorID"`
	Mode              string      `gorm:"not null"` // "individual" or "teams"
	Status            MatchStatus `gorm:"type:match_status;not null;default:'active'"`
	TerminationReason *string     // Set once the match ends
	Tie               bool        `gorm:"not null;default:false"`
	RoundsPlayed      int         `gorm:"not null;default:0"`
	StartedAt         time.Time   `gorm:"autoCreateTime"`
	EndedAt           *time.Time
	UpdatedAt         time.Time
	Participants      []MatchParticipant `gorm:"foreignKey:MatchID"` // Final standings, in rank order
	Rounds            []MatchRound       `gorm:"foreignKey:MatchID"` // Round history, oldest first
}

// TeamMember is one member of a stored team. Stored as JSON inside MatchParticipant.
type TeamMember struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MatchParticipant is one line of a finished match's standings.
// The unique index (idx_match_participant) prevents storing the same participant twice.
type MatchParticipant struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MatchID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_match_participant"`
	ParticipantID string          `gorm:"not null;uniqueIndex:idx_match_participant"` // The id used during the match
	Kind          ParticipantKind `gorm:"type:participant_kind;not null"`
	Name          string          `gorm:"not null"`
	Color         string          `gorm:"not null;default:''"`
	Score         int             `gorm:"not null"`
	Rank          int             `gorm:"not null"` // Competition rank: 1, 1, 3, ...
	Position      int             `gorm:"not null"` // 1-based line in the standings; ties keep roster order
	IsTied        bool            `gorm:"not null;default:false"`
	IsWinner      bool            `gorm:"not null;default:false"`
	Members       []TeamMember    `gorm:"type:jsonb;serializer:json"` // Team members; empty for players
}

// MatchRound stores the scores every participant held when a round closed.
// The unique index (idx_match_round) allows one snapshot per round number.
type MatchRound struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MatchID     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_match_round"`
	RoundNumber int            `gorm:"not null;uniqueIndex:idx_match_round"` // 1-based
	Scores      map[string]int `gorm:"type:jsonb;serializer:json;not null"`  // participant id -> score
}
