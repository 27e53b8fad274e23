package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScopeKind(t *testing.T) {
	for _, s := range []string{"account", "strategy", "account_month", "strategy_month"} {
		k, err := ParseScopeKind(s)
		require.NoError(t, err)
		assert.Equal(t, ScopeKind(s), k)
	}

	_, err := ParseScopeKind("portfolio")
	assert.ErrorIs(t, err, ErrInvalidScope)
}

func TestMonthPeriod(t *testing.T) {
	p := MonthPeriod(2024, time.February, nil)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 999999999, time.UTC), p.End)

	assert.True(t, p.Contains(p.Start))
	assert.True(t, p.Contains(p.End))
	assert.False(t, p.Contains(p.End.Add(time.Nanosecond)))
	assert.False(t, p.Contains(p.Start.Add(-time.Nanosecond)))
}

func TestMonthPeriodDecemberRollsYear(t *testing.T) {
	p := MonthPeriod(2023, time.December, time.UTC)
	assert.Equal(t, time.Date(2023, 12, 31, 23, 59, 59, 999999999, time.UTC), p.End)
}

func TestScopeValidate(t *testing.T) {
	taipei := time.FixedZone("Asia/Taipei", 8*3600)
	jan := MonthPeriod(2024, time.January, time.UTC)

	tests := []struct {
		name  string
		scope Scope
		loc   *time.Location
		ok    bool
	}{
		{"account any period", Scope{ScopeAccount, "a", Period{jan.Start, jan.Start.AddDate(0, 0, 3)}}, nil, true},
		{"account month exact", Scope{ScopeAccountMonth, "a", jan}, nil, true},
		{"strategy month exact", Scope{ScopeStrategyMonth, "s", jan}, time.UTC, true},
		{"month too short", Scope{ScopeAccountMonth, "a", Period{jan.Start, jan.End.Add(-time.Second)}}, nil, false},
		{"month in other zone", Scope{ScopeAccountMonth, "a", jan}, taipei, false},
		{"month aligned to zone", Scope{ScopeAccountMonth, "a", MonthPeriod(2024, time.January, taipei)}, taipei, true},
		{"missing ref", Scope{ScopeAccount, "", jan}, nil, false},
		{"inverted", Scope{ScopeAccount, "a", Period{jan.End, jan.Start}}, nil, false},
		{"zero period", Scope{ScopeAccount, "a", Period{}}, nil, false},
		{"unknown kind", Scope{"weekly", "a", jan}, nil, false},
		{"end past 2262", Scope{ScopeAccount, "a", Period{jan.Start, time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC)}}, nil, false},
		{"start before 1678", Scope{ScopeAccount, "a", Period{time.Date(1600, 1, 1, 0, 0, 0, 0, time.UTC), jan.End}}, nil, false},
		{"month past 2262", Scope{ScopeAccountMonth, "a", MonthPeriod(2300, time.January, time.UTC)}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.scope.Validate(tt.loc)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidScope)
		})
	}
}

func TestScopeKindHelpers(t *testing.T) {
	assert.True(t, ScopeAccountMonth.Monthly())
	assert.False(t, ScopeStrategy.Monthly())
	assert.True(t, ScopeStrategyMonth.ByStrategy())
	assert.False(t, ScopeAccount.ByStrategy())
}
