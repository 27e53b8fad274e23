package analytics

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/journal"
)

func TestComputeDrawdownEmpty(t *testing.T) {
	t.Parallel()

	dd := ComputeDrawdown(nil)
	assert.True(t, dd.Max.IsZero())
	assert.Nil(t, dd.Peak)
	assert.Nil(t, dd.Trough)
}

func TestComputeDrawdownBasic(t *testing.T) {
	t.Parallel()

	dd := ComputeDrawdown(curveOf("100", "110", "90", "95"))
	assert.True(t, dd.Max.Equal(dec("-20")), "got %s", dd.Max)
	require.NotNil(t, dd.Peak)
	require.NotNil(t, dd.Trough)
	assert.True(t, dd.Peak.Equal(day(2)))
	assert.True(t, dd.Trough.Equal(day(3)))
}

func TestComputeDrawdownTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []string
		max    string
		peak   int
		trough int
	}{
		{name: "single point", values: []string{"5"}, max: "0", peak: 1, trough: 1},
		{name: "monotonic rise", values: []string{"1", "2", "3"}, max: "0", peak: 1, trough: 1},
		{name: "later deeper fall", values: []string{"100", "120", "110", "130", "90"}, max: "-40", peak: 4, trough: 5},
		{name: "peak tie takes earliest", values: []string{"50", "80", "80", "60"}, max: "-20", peak: 2, trough: 4},
		{name: "trough tie takes first", values: []string{"10", "5", "10", "5"}, max: "-5", peak: 1, trough: 2},
		{name: "negative start", values: []string{"-10", "-30", "-5"}, max: "-20", peak: 1, trough: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dd := ComputeDrawdown(curveOf(tt.values...))
			assert.True(t, dd.Max.Equal(dec(tt.max)), "max %s", dd.Max)
			require.NotNil(t, dd.Peak)
			require.NotNil(t, dd.Trough)
			assert.True(t, dd.Peak.Equal(day(tt.peak)), "peak %s", dd.Peak)
			assert.True(t, dd.Trough.Equal(day(tt.trough)), "trough %s", dd.Trough)
		})
	}
}

func TestComputeDrawdownNeverPositive(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 100; round++ {
		n := 1 + rng.Intn(28)
		values := make([]string, n)
		for i := range values {
			values[i] = strconv.Itoa(90 + rng.Intn(21))
		}

		dd := ComputeDrawdown(curveOf(values...))
		assert.False(t, dd.Max.IsPositive())
		require.NotNil(t, dd.Peak)
		require.NotNil(t, dd.Trough)
		assert.False(t, dd.Peak.After(*dd.Trough))
	}
}

func TestComputeDrawdownOfBuiltCurve(t *testing.T) {
	t.Parallel()

	trades := []journal.Trade{
		makeTrade(journal.Sell, "1", "100", day(1)),
		makeTrade(journal.Buy, "1", "30", day(2)),
		makeTrade(journal.Sell, "1", "10", day(3)),
	}
	dd := ComputeDrawdown(BuildEquityCurve(trades))
	assert.True(t, dd.Max.Equal(decimal.NewFromInt(-30)))
	assert.True(t, dd.Peak.Equal(day(1)))
	assert.True(t, dd.Trough.Equal(day(2)))
}
