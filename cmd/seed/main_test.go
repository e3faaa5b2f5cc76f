package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSickEpisodesFromOldestDay(t *testing.T) {
	records := generate("demo-user", 100, 42)
	require.Len(t, records, 100)

	// Records are oldest first, so episode offsets index directly.
	for _, start := range []int{8, 25, 48, 67, 85} {
		require.NotNil(t, records[start].MoodScore)
		assert.LessOrEqual(t, *records[start].MoodScore, 2.0,
			"expected a sick day at offset %d", start)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a := generate("demo-user", 40, 7)
	b := generate("demo-user", 40, 7)
	require.Equal(t, len(a), len(b))

	for i := range a {
		assert.Equal(t, a[i].DateKey, b[i].DateKey)
		assert.Equal(t, *a[i].MoodScore, *b[i].MoodScore)
		assert.Equal(t, *a[i].Steps, *b[i].Steps)
	}
}
