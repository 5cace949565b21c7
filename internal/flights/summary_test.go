package flights

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	_, ok := Summarize(nil)
	require.False(t, ok)

	summary, ok := Summarize([]Observation{obs(4800), obs(6000), obs(5000)})
	require.True(t, ok)
	require.Equal(t, 3, summary.Count)
	require.True(t, summary.Change.Equal(decimal.NewFromInt(-200)))
	require.True(t, summary.ChangePercent.Equal(decimal.NewFromInt(-4)))
	require.True(t, summary.Lowest.Equal(decimal.NewFromInt(4800)))
	require.True(t, summary.Highest.Equal(decimal.NewFromInt(6000)))

	summary, ok = Summarize([]Observation{obs(100), obs(0)})
	require.True(t, ok)
	require.True(t, summary.ChangePercent.IsZero())
}
