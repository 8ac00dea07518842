package shift

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestCurrentWindow_SameDayShift(t *testing.T) {
	h := Hours{Open: "08:00", Close: "22:00"}
	ref := date(2024, time.January, 10, 9, 0)

	w := CurrentWindow(ref, h)

	assert.Equal(t, date(2024, time.January, 10, 8, 0), w.Start)
	assert.Equal(t, time.Date(2024, time.January, 10, 22, 0, 0, 999_000_000, time.UTC), w.End)
}

func TestCurrentWindow_CrossMidnight_BeforeClose(t *testing.T) {
	h := Hours{Open: "18:00", Close: "02:00"}
	ref := date(2024, time.January, 10, 1, 0)

	w := CurrentWindow(ref, h)

	// 01:00 is still the previous day's shift
	assert.Equal(t, date(2024, time.January, 9, 18, 0), w.Start)
	assert.Equal(t, time.Date(2024, time.January, 10, 2, 0, 0, 999_000_000, time.UTC), w.End)
}

func TestCurrentWindow_CrossMidnight_AfterClose(t *testing.T) {
	h := Hours{Open: "18:00", Close: "02:00"}
	ref := date(2024, time.January, 10, 19, 30)

	w := CurrentWindow(ref, h)

	assert.Equal(t, date(2024, time.January, 10, 18, 0), w.Start)
	assert.Equal(t, time.Date(2024, time.January, 11, 2, 0, 0, 999_000_000, time.UTC), w.End)
}

func TestCurrentWindow_CrossMidnight_ExactlyAtClose(t *testing.T) {
	h := Hours{Open: "18:00", Close: "02:00"}
	ref := date(2024, time.January, 10, 2, 0)

	w := CurrentWindow(ref, h)

	// at the close minute the instant still belongs to yesterday's shift
	assert.Equal(t, date(2024, time.January, 9, 18, 0), w.Start)
}

func TestDateWindow_SameDay(t *testing.T) {
	h := Hours{Open: "08:00", Close: "22:00"}

	w := DateWindow(date(2024, time.March, 5, 0, 0), h)

	assert.Equal(t, date(2024, time.March, 5, 8, 0), w.Start)
	assert.Equal(t, time.Date(2024, time.March, 5, 22, 0, 0, 999_000_000, time.UTC), w.End)
}

func TestDateWindow_CrossMidnight_EndsNextDay(t *testing.T) {
	h := Hours{Open: "18:00", Close: "02:00"}

	w := DateWindow(date(2024, time.March, 5, 0, 0), h)

	assert.Equal(t, date(2024, time.March, 5, 18, 0), w.Start)
	assert.Equal(t, time.Date(2024, time.March, 6, 2, 0, 0, 999_000_000, time.UTC), w.End)
}

func TestCurrentWindow_MalformedHoursFallBack(t *testing.T) {
	tests := []struct {
		name  string
		hours Hours
	}{
		{"empty", Hours{}},
		{"garbage", Hours{Open: "abc", Close: "xyz"}},
		{"out of range", Hours{Open: "25:00", Close: "10:70"}},
		{"missing minute", Hours{Open: "8", Close: "22"}},
	}

	ref := date(2024, time.June, 1, 12, 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := CurrentWindow(ref, tt.hours)
			assert.Equal(t, date(2024, time.June, 1, 0, 0), w.Start)
			assert.Equal(t, time.Date(2024, time.June, 1, 23, 59, 0, 999_000_000, time.UTC), w.End)
		})
	}
}

func TestDayWindow(t *testing.T) {
	w := DayWindow(date(2024, time.June, 1, 15, 42))

	assert.Equal(t, date(2024, time.June, 1, 0, 0), w.Start)
	assert.Equal(t, time.Date(2024, time.June, 1, 23, 59, 59, 999_000_000, time.UTC), w.End)
}

func TestWindow_Contains_InclusiveBoundaries(t *testing.T) {
	w := Window{Start: date(2024, time.June, 1, 8, 0), End: date(2024, time.June, 1, 22, 0)}

	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(w.End))
	assert.True(t, w.Contains(date(2024, time.June, 1, 12, 0)))
	assert.False(t, w.Contains(date(2024, time.June, 1, 7, 59)))
	assert.False(t, w.Contains(date(2024, time.June, 1, 22, 1)))
}
