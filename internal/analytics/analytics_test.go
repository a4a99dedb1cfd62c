package analytics_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/studyflash/internal/analytics"
)

const hour = int64(3_600_000)

func ms(t time.Time) int64 { return t.UnixMilli() }

func TestLocalDayStart(t *testing.T) {
	tests := []struct {
		name   string
		ts     time.Time
		offset int
		want   time.Time
	}{
		{
			name:   "utc afternoon",
			ts:     time.Date(2024, 2, 15, 12, 30, 0, 0, time.UTC),
			offset: 0,
			want:   time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "west of utc stays on previous local day",
			ts:     time.Date(2024, 2, 15, 3, 0, 0, 0, time.UTC),
			offset: -300,
			want:   time.Date(2024, 2, 14, 5, 0, 0, 0, time.UTC),
		},
		{
			name:   "east of utc moves to next local day",
			ts:     time.Date(2024, 2, 15, 20, 0, 0, 0, time.UTC),
			offset: 540,
			want:   time.Date(2024, 2, 15, 15, 0, 0, 0, time.UTC),
		},
		{
			name:   "exact midnight",
			ts:     time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
			offset: 0,
			want:   time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "before the epoch",
			ts:     time.Date(1969, 12, 31, 18, 0, 0, 0, time.UTC),
			offset: 0,
			want:   time.Date(1969, 12, 31, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, ms(tt.want), analytics.LocalDayStart(ms(tt.ts), tt.offset))
		})
	}
}

func TestLocalDayStart_Idempotent(t *testing.T) {
	base := ms(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	for _, offset := range []int{-720, -300, 0, 330, 540, 840} {
		for ts := base - 3*analytics.DayInMs; ts < base+3*analytics.DayInMs; ts += 7 * hour {
			once := analytics.LocalDayStart(ts, offset)
			assert.Equal(t, once, analytics.LocalDayStart(once, offset), "ts=%d offset=%d", ts, offset)
			assert.LessOrEqual(t, once, ts)
			assert.Less(t, ts-once, analytics.DayInMs)
		}
	}
}

func TestLocalDayStart_MatchesFixedZone(t *testing.T) {
	loc := time.FixedZone("UTC+5:30", 330*60)
	ts := time.Date(2024, 2, 15, 22, 0, 0, 0, time.UTC)
	local := ts.In(loc)
	want := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	assert.Equal(t, ms(want), analytics.LocalDayStart(ms(ts), 330))
}

func TestCountByLocalDay(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		counts := analytics.CountByLocalDay(nil, 0)
		require.NotNil(t, counts)
		assert.Empty(t, counts)
	})

	t.Run("crossing midnight yields two buckets", func(t *testing.T) {
		a := ms(time.Date(2024, 2, 15, 18, 0, 0, 0, time.UTC))
		b := a + 11*hour
		counts := analytics.CountByLocalDay([]int64{a, b}, 0)
		assert.Len(t, counts, 2)
	})

	t.Run("same local day yields one bucket", func(t *testing.T) {
		a := ms(time.Date(2024, 2, 15, 1, 0, 0, 0, time.UTC))
		b := a + 11*hour
		counts := analytics.CountByLocalDay([]int64{a, b}, 0)
		require.Len(t, counts, 1)
		assert.Equal(t, 2, counts[analytics.LocalDayStart(a, 0)])
	})

	t.Run("offset changes the bucketing", func(t *testing.T) {
		a := ms(time.Date(2024, 2, 15, 22, 0, 0, 0, time.UTC))
		b := ms(time.Date(2024, 2, 16, 2, 0, 0, 0, time.UTC))
		assert.Len(t, analytics.CountByLocalDay([]int64{a, b}, 0), 2)
		assert.Len(t, analytics.CountByLocalDay([]int64{a, b}, -300), 1)
	})
}

func TestCalculateStreakDays(t *testing.T) {
	today := analytics.LocalDayStart(ms(time.Date(2024, 2, 15, 12, 0, 0, 0, time.UTC)), 0)
	day := analytics.DayInMs

	tests := []struct {
		name string
		days []int64
		want int
	}{
		{"three consecutive days", []int64{today, today - day, today - 2*day}, 3},
		{"gap after today", []int64{today, today - 2*day}, 1},
		{"today missing", []int64{today - day, today - 2*day}, 0},
		{"empty", nil, 0},
		{"future days ignored", []int64{today + day, today}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := analytics.DaySet{}
			for _, d := range tt.days {
				set[d] = struct{}{}
			}
			assert.Equal(t, tt.want, analytics.CalculateStreakDays(set, today, 0))
		})
	}
}

func TestCalculateStreakDays_TodayWithinTheDay(t *testing.T) {
	noon := ms(time.Date(2024, 2, 15, 12, 0, 0, 0, time.UTC))
	set := analytics.NewDaySet(analytics.CountByLocalDay([]int64{noon, noon - analytics.DayInMs}, 0))

	assert.Equal(t, 2, analytics.CalculateStreakDays(set, noon, 0))
	assert.Equal(t, 2, analytics.CalculateStreakDays(set, analytics.LocalDayStart(noon, 0), 0))
	assert.Equal(t, 2, analytics.CalculateStreakDays(set, noon+11*hour, 0))
}

func TestCalculateStreakDays_TodayUsesOffset(t *testing.T) {
	// 21:00Z on the 15th is already the 16th at UTC+5.
	evening := ms(time.Date(2024, 2, 15, 21, 0, 0, 0, time.UTC))
	morning := ms(time.Date(2024, 2, 15, 6, 0, 0, 0, time.UTC))
	set := analytics.NewDaySet(analytics.CountByLocalDay([]int64{evening, morning}, 300))

	assert.Equal(t, 2, analytics.CalculateStreakDays(set, evening, 300))
	assert.Equal(t, 1, analytics.CalculateStreakDays(set, morning, 300))
}

func TestNewDaySet_SkipsEmptyBuckets(t *testing.T) {
	set := analytics.NewDaySet(map[int64]int{0: 2, analytics.DayInMs: 0})
	assert.True(t, set.Has(0))
	assert.False(t, set.Has(analytics.DayInMs))
}

func TestComputePredictedReadyDate(t *testing.T) {
	t.Run("zero pace has no forecast", func(t *testing.T) {
		for _, remaining := range []int{0, 1, 20, 1000} {
			_, ok := analytics.ComputePredictedReadyDate(remaining, 0, 0)
			assert.False(t, ok)
		}
		_, ok := analytics.ComputePredictedReadyDate(5, -1, 0)
		assert.False(t, ok)
	})

	t.Run("exact division", func(t *testing.T) {
		at, ok := analytics.ComputePredictedReadyDate(20, 5, 0)
		require.True(t, ok)
		assert.Equal(t, 4*analytics.DayInMs, at)
	})

	t.Run("partial day rounds up", func(t *testing.T) {
		now := ms(time.Date(2024, 2, 15, 9, 0, 0, 0, time.UTC))
		at, ok := analytics.ComputePredictedReadyDate(21, 5, now)
		require.True(t, ok)
		assert.Equal(t, now+5*analytics.DayInMs, at)
	})

	t.Run("nothing remaining", func(t *testing.T) {
		at, ok := analytics.ComputePredictedReadyDate(0, 3, 42)
		require.True(t, ok)
		assert.Equal(t, int64(42), at)
	})

	t.Run("unrepresentable date has no forecast", func(t *testing.T) {
		_, ok := analytics.ComputePredictedReadyDate(1_000_000, 1e-12, 0)
		assert.False(t, ok)

		now := ms(time.Date(2024, 2, 15, 9, 0, 0, 0, time.UTC))
		_, ok = analytics.ComputePredictedReadyDate(1, math.SmallestNonzeroFloat64, now)
		assert.False(t, ok)
	})

	t.Run("distant but representable date", func(t *testing.T) {
		at, ok := analytics.ComputePredictedReadyDate(1_000_000, 0.125, 0)
		require.True(t, ok)
		assert.Equal(t, int64(8_000_000)*analytics.DayInMs, at)
	})
}

func TestPaceFromCounts(t *testing.T) {
	today := int64(10) * analytics.DayInMs
	counts := map[int64]int{
		today:                       4,
		today - analytics.DayInMs:   3,
		today - 6*analytics.DayInMs: 7,
		today - 7*analytics.DayInMs: 100, // outside a 7 day window
		today + analytics.DayInMs:   50,  // future
	}

	assert.InDelta(t, 2.0, analytics.PaceFromCounts(counts, today, 7), 1e-9)
	assert.Equal(t, 0.0, analytics.PaceFromCounts(counts, today, 0))
}

func TestSortedDays(t *testing.T) {
	got := analytics.SortedDays(map[int64]int{3: 1, 1: 1, 2: 1})
	assert.Equal(t, []int64{1, 2, 3}, got)
}
