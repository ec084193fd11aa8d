package scoring

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means an operation named a participant ID that is not on the roster.
	ErrNotFound = errors.New("participant not found")

	// ErrInvalidTransition means the match declined a state change, such as rewinding at
	// round 1 or advancing a match that has already ended. The match is left unchanged.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrMatchEnded is returned for any mutation attempted after termination.
	ErrMatchEnded = fmt.Errorf("match has ended: %w", ErrInvalidTransition)

	// ErrInvalidRoster is a construction-time error: duplicate or empty IDs, a team in an
	// individual match, an empty roster, or a policy that cannot be played.
	ErrInvalidRoster = errors.New("invalid roster")
)
