package dbscan

import "errors"

// Package-level sentinel errors. Callers match them with errors.Is; functions
// returning them may wrap with fmt.Errorf("...: %w", ErrX) to add context.
var (
	// ErrInvalidParameter reports a malformed clustering parameter
	// (Eps <= 0, MinSamples < 1, or an empty candidate grid).
	ErrInvalidParameter = errors.New("dbscan: invalid parameter")

	// ErrInsufficientData reports that the matrix has too few points for the
	// requested k-distance (k-th neighbors require at least k+1 points).
	ErrInsufficientData = errors.New("dbscan: insufficient data")

	// ErrNoViableConfiguration reports that no candidate in the optimizer
	// grid produced an acceptable clustering.
	ErrNoViableConfiguration = errors.New("dbscan: no viable configuration")
)
