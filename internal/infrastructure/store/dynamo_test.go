package store

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Timestamps land in Dynamo as strings compared with BETWEEN, so the stored
// layout must sort lexically in chronological order even across fractional
// seconds.
func TestSortableTimeLexicalOrder(t *testing.T) {
	base := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	instants := []time.Time{
		base.Add(-time.Second),
		base,
		base.Add(500 * time.Millisecond),
		base.Add(999 * time.Millisecond),
		base.Add(time.Second),
	}

	formatted := make([]string, len(instants))
	for i, ts := range instants {
		formatted[i] = ts.UTC().Format(sortableTime)
	}

	assert.True(t, sort.StringsAreSorted(formatted), "%v", formatted)

	// the window-open bound must not exclude same-second fractional stamps
	windowStart := base.UTC().Format(sortableTime)
	halfPast := base.Add(500 * time.Millisecond).UTC().Format(sortableTime)
	assert.True(t, windowStart <= halfPast)
}

func TestSortableTimeFixedWidthRoundTrip(t *testing.T) {
	whole := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	frac := time.Date(2026, 3, 14, 8, 0, 0, 123456789, time.UTC)

	for _, ts := range []time.Time{whole, frac} {
		s := ts.Format(sortableTime)
		assert.Len(t, s, len(whole.Format(sortableTime)))

		parsed, err := time.Parse(sortableTime, s)
		require.NoError(t, err)
		assert.True(t, parsed.Equal(ts))
	}
}
