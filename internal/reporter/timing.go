package reporter

import (
	"time"

	"scr/internal/domain"
)

// backfillTimings walks the steps of a scenario backwards from the instant the case
// finished. Each step starts its own duration before the next one started. When the
// recording start is known, the offset into the video is set in seconds.
func backfillTimings(tests []*domain.Test, finishedAt, videoStart time.Time) {
	next := finishedAt
	for i := len(tests) - 1; i >= 0; i-- {
		start := next.Add(-time.Duration(tests[i].Duration) * time.Millisecond)
		tests[i].StartTime = start
		if !videoStart.IsZero() {
			offset := float64(start.Sub(videoStart).Milliseconds()) / 1000
			tests[i].VideoTimestamp = &offset
		}
		next = start
	}
}
