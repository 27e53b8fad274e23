package journal

import (
	"fmt"
	"time"
)

// ScopeKind selects the aggregation boundary of a KPI snapshot.
type ScopeKind string

const (
	ScopeAccount       ScopeKind = "account"
	ScopeStrategy      ScopeKind = "strategy"
	ScopeAccountMonth  ScopeKind = "account_month"
	ScopeStrategyMonth ScopeKind = "strategy_month"
)

// ParseScopeKind accepts only the four known kinds.
func ParseScopeKind(s string) (ScopeKind, error) {
	switch k := ScopeKind(s); k {
	case ScopeAccount, ScopeStrategy, ScopeAccountMonth, ScopeStrategyMonth:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidScope, s)
}

// Monthly reports whether the kind covers exactly one calendar month.
func (k ScopeKind) Monthly() bool {
	return k == ScopeAccountMonth || k == ScopeStrategyMonth
}

// ByStrategy reports whether RefID names a strategy rather than an account.
func (k ScopeKind) ByStrategy() bool {
	return k == ScopeStrategy || k == ScopeStrategyMonth
}

// Period is a closed interval [Start, End] of trade timestamps.
type Period struct {
	Start time.Time
	End   time.Time
}

func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// MonthPeriod returns the closed period covering year/month in loc.
func MonthPeriod(year int, month time.Month, loc *time.Location) Period {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return Period{
		Start: start,
		End:   start.AddDate(0, 1, 0).Add(-time.Nanosecond),
	}
}

// Scope identifies one KPI snapshot: a kind, the id of the account or
// strategy it refers to, and the period it covers.
type Scope struct {
	Kind   ScopeKind
	RefID  string
	Period Period
}

// Validate checks the scope shape. Monthly kinds must cover exactly one
// calendar month in loc.
func (s Scope) Validate(loc *time.Location) error {
	if _, err := ParseScopeKind(string(s.Kind)); err != nil {
		return err
	}
	if s.RefID == "" {
		return fmt.Errorf("%w: reference id is required", ErrInvalidScope)
	}
	if s.Period.Start.IsZero() || s.Period.End.IsZero() {
		return fmt.Errorf("%w: period start and end are required", ErrInvalidScope)
	}
	if !Storable(s.Period.Start) || !Storable(s.Period.End) {
		return fmt.Errorf("%w: period bounds must fall between %s and %s", ErrInvalidScope,
			minInstant.UTC().Format(time.RFC3339), maxInstant.UTC().Format(time.RFC3339))
	}
	if s.Period.End.Before(s.Period.Start) {
		return fmt.Errorf("%w: period ends before it starts", ErrInvalidScope)
	}
	if s.Kind.Monthly() {
		if loc == nil {
			loc = time.UTC
		}
		start := s.Period.Start.In(loc)
		want := MonthPeriod(start.Year(), start.Month(), loc)
		if !want.Start.Equal(s.Period.Start) || !want.End.Equal(s.Period.End) {
			return fmt.Errorf("%w: %s period must span one calendar month", ErrInvalidScope, s.Kind)
		}
	}
	return nil
}

func (s Scope) String() string {
	return fmt.Sprintf("%s:%s[%s..%s]", s.Kind, s.RefID,
		s.Period.Start.Format(time.RFC3339), s.Period.End.Format(time.RFC3339))
}
