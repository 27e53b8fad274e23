package journal

import (
	"errors"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a referenced account, strategy, trade or
	// KPI snapshot does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidScope is returned for a scope whose kind, reference or
	// period is unusable.
	ErrInvalidScope = errors.New("invalid scope")

	// ErrInvalidCandidate wraps every TradeCandidate validation failure.
	ErrInvalidCandidate = errors.New("invalid trade candidate")
)

// isUniqueViolation reports whether err is a uniqueness constraint failure
// from either supported driver.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pe *pq.Error
	if errors.As(err, &pe) {
		return pe.Code == "23505"
	}
	return false
}
