// Package dateutil buckets a replay window into day-aligned sub-windows,
// used by the CLI's replay command to log how many day buckets the
// replay window spans.
package dateutil

import "time"

// Window is one day-aligned [Start, End) sub-window of a larger replay
// range.
type Window struct {
	Start time.Time
	End   time.Time
}

// DayBuckets splits [start, end) into UTC day-aligned windows. The first
// and last bucket are clipped to start/end, so neither falls outside the
// requested range. Returns nil if end is not after start.
func DayBuckets(start, end time.Time) []Window {
	start = start.UTC()
	end = end.UTC()
	if !end.After(start) {
		return nil
	}

	var windows []Window
	cursor := start
	for cursor.Before(end) {
		dayEnd := time.Date(cursor.Year(), cursor.Month(), cursor.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
		if dayEnd.After(end) {
			dayEnd = end
		}
		windows = append(windows, Window{Start: cursor, End: dayEnd})
		cursor = dayEnd
	}
	return windows
}
