package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuarterRange(t *testing.T) {
	start, end, err := QuarterRange("Q1-2024")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), end)

	start, end, err = QuarterRange("Q4-2023")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, time.October, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC), end)

	// Leap year February boundary.
	_, end, err = QuarterRange("Q1-2024")
	require.NoError(t, err)
	assert.Equal(t, 31, end.Day())
}

func TestQuarterRangeRejectsBadLabels(t *testing.T) {
	for _, label := range []string{"", "Q5-2024", "Q0-2024", "2024-Q1", "Q2-24"} {
		_, _, err := QuarterRange(label)
		assert.Error(t, err, label)
	}
}

func TestCurrentQuarter(t *testing.T) {
	assert.Equal(t, "Q1-2024", CurrentQuarter(time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Q4-2025", CurrentQuarter(time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)))
}
