package domain

import "strings"

// Status is the normalized outcome of a test, suite or run
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// ParseStatus maps a runner step status to a report Status.
// Anything that is neither passed nor skipped is reported as failed.
func ParseStatus(s string) Status {
	switch strings.ToLower(s) {
	case "passed":
		return StatusPassed
	case "skipped":
		return StatusSkipped
	default:
		return StatusFailed
	}
}

// DurationMillis converts a {seconds, nanos} duration into whole milliseconds.
// Halves round away from zero.
func DurationMillis(seconds, nanos int64) int64 {
	if nanos < 0 {
		nanos = 0
	}
	ms := seconds*1000 + (nanos+500_000)/1_000_000
	if ms < 0 {
		return 0
	}
	return ms
}

// worst folds child statuses: any failure fails the parent, otherwise it passed.
func worst(statuses ...Status) Status {
	for _, s := range statuses {
		if s == StatusFailed {
			return StatusFailed
		}
	}
	return StatusPassed
}
