package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScoreCriticality_Boundaries(t *testing.T) {
	tests := []struct {
		count int
		score float64
		level CriticalityLevel
	}{
		{0, 0.05, LevelLow},
		{10, 0.35, LevelLow},
		{11, 0.40, LevelMedium},
		{30, 0.70, LevelMedium},
		{31, 0.71, LevelHigh},
		{60, 1.00, LevelHigh},
		{1000, 1.00, LevelHigh},
	}

	for _, tt := range tests {
		score, level, _ := ScoreCriticality(tt.count)
		require.Equal(t, tt.level, level, "count=%d", tt.count)
		require.InDelta(t, tt.score, score, 1e-9, "count=%d", tt.count)
	}
}

func TestScoreCriticality_Monotonic(t *testing.T) {
	prev := -1.0
	for count := 0; count <= 100; count++ {
		score, _, _ := ScoreCriticality(count)
		require.GreaterOrEqual(t, score, prev, "count=%d", count)
		require.GreaterOrEqual(t, score, 0.0)
		require.LessOrEqual(t, score, 1.0)
		prev = score
	}
}

func TestScoreCriticality_MediumRange(t *testing.T) {
	score, level, _ := ScoreCriticality(15)
	require.Equal(t, LevelMedium, level)
	require.Greater(t, score, 0.40)
	require.Less(t, score, 0.70)
}

func TestScoreCriticality_NegativeCount(t *testing.T) {
	score, level, notes := ScoreCriticality(-5)
	require.Equal(t, LevelLow, level)
	require.InDelta(t, 0.05, score, 1e-9)
	require.Equal(t, "OK: no significant anomalies detected.", notes)
}

func TestScoreCriticality_Notes(t *testing.T) {
	_, _, low := ScoreCriticality(3)
	require.Contains(t, low, "INFO: 3")

	_, _, medium := ScoreCriticality(15)
	require.Contains(t, medium, "WARNING: 15")

	_, _, high := ScoreCriticality(42)
	require.Contains(t, high, "CRITICAL: 42")
}

func TestParseLevel(t *testing.T) {
	level, ok := ParseLevel("medium")
	require.True(t, ok)
	require.Equal(t, LevelMedium, level)

	_, ok = ParseLevel("critical")
	require.False(t, ok)
}
