package reporter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scr/internal/domain"
)

func testsWithDurations(ms ...int64) []*domain.Test {
	tests := make([]*domain.Test, 0, len(ms))
	for _, d := range ms {
		tests = append(tests, &domain.Test{Duration: d})
	}
	return tests
}

func TestBackfillTimings(t *testing.T) {
	finishedAt := time.Date(2024, 5, 1, 10, 0, 10, 0, time.UTC)
	tests := testsWithDurations(100, 250, 50)

	backfillTimings(tests, finishedAt, time.Time{})

	assert.Equal(t, finishedAt.Add(-50*time.Millisecond), tests[2].StartTime)
	for i := 0; i < len(tests)-1; i++ {
		want := tests[i+1].StartTime.Add(-time.Duration(tests[i].Duration) * time.Millisecond)
		assert.Equal(t, want, tests[i].StartTime, "step %d", i)
	}
	assert.Equal(t, finishedAt.Add(-400*time.Millisecond), tests[0].StartTime)
	for _, tt := range tests {
		assert.Nil(t, tt.VideoTimestamp)
	}
}

func TestBackfillTimings_VideoOffset(t *testing.T) {
	videoStart := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	finishedAt := videoStart.Add(10 * time.Second)
	tests := testsWithDurations(1500, 500)

	backfillTimings(tests, finishedAt, videoStart)

	require.NotNil(t, tests[1].VideoTimestamp)
	require.NotNil(t, tests[0].VideoTimestamp)
	assert.InDelta(t, 9.5, *tests[1].VideoTimestamp, 1e-9)
	assert.InDelta(t, 8.0, *tests[0].VideoTimestamp, 1e-9)
}

func TestBackfillTimings_Empty(t *testing.T) {
	assert.NotPanics(t, func() {
		backfillTimings(nil, time.Now(), time.Now())
	})
}
