// Package shift resolves the logical business day of a restaurant: the
// open-to-close window that sales and cash movements are attributed to.
// A shift whose close time is at or before its open time crosses midnight,
// so an instant in the small hours still belongs to the previous day's shift.
package shift

import (
	"strconv"
	"strings"
	"time"
)

const (
	DefaultOpen  = "00:00"
	DefaultClose = "23:59"
)

// Hours is the configured open/close time-of-day pair, "HH:mm".
// Malformed or empty values fall back to the defaults; resolution never fails.
type Hours struct {
	Open  string
	Close string
}

// Window is an inclusive [Start, End] time range. End lands on the closing
// minute with .999 sub-second precision so the whole minute is covered.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window, boundaries included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

type clock struct {
	hour, min int
}

// minutes is the time-of-day expressed as minutes since midnight.
func (c clock) minutes() int { return c.hour*60 + c.min }

func parseClock(s, fallback string) clock {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return mustClock(fallback)
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return mustClock(fallback)
	}
	return clock{hour: h, min: m}
}

func mustClock(s string) clock {
	parts := strings.SplitN(s, ":", 2)
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return clock{hour: h, min: m}
}

func (h Hours) open() clock  { return parseClock(h.Open, DefaultOpen) }
func (h Hours) close() clock { return parseClock(h.Close, DefaultClose) }

func at(day time.Time, c clock) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.hour, c.min, 0, 0, day.Location())
}

// closing the window: the end boundary is inclusive of the full closing minute.
func closeEnd(day time.Time, c clock) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.hour, c.min, 0, 999_000_000, day.Location())
}

// CurrentWindow resolves the logical business day that the reference instant
// belongs to. For a same-day shift (close after open) that is simply today's
// open-to-close. For a cross-midnight shift, an instant at or before the
// close time-of-day belongs to the shift that opened yesterday.
func CurrentWindow(ref time.Time, h Hours) Window {
	op, cl := h.open(), h.close()
	if cl.minutes() > op.minutes() {
		return Window{Start: at(ref, op), End: closeEnd(ref, cl)}
	}
	refMinutes := ref.Hour()*60 + ref.Minute()
	if refMinutes <= cl.minutes() {
		return Window{Start: at(ref.AddDate(0, 0, -1), op), End: closeEnd(ref, cl)}
	}
	return Window{Start: at(ref, op), End: closeEnd(ref.AddDate(0, 0, 1), cl)}
}

// DateWindow resolves the shift for a given calendar date. A cross-midnight
// shift always ends on the day after the given date.
func DateWindow(date time.Time, h Hours) Window {
	op, cl := h.open(), h.close()
	endDay := date
	if cl.minutes() <= op.minutes() {
		endDay = date.AddDate(0, 0, 1)
	}
	return Window{Start: at(date, op), End: closeEnd(endDay, cl)}
}

// DayWindow is the plain calendar day of the reference instant,
// [00:00, 23:59:59.999]. The cash ledger uses it as its default range.
func DayWindow(ref time.Time) Window {
	start := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	end := time.Date(ref.Year(), ref.Month(), ref.Day(), 23, 59, 59, 999_000_000, ref.Location())
	return Window{Start: start, End: end}
}
