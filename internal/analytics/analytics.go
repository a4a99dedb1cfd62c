// Package analytics aggregates timestamped study events into calendar-local
// day buckets, consecutive-day streaks and backlog forecasts.
//
// All timestamps are epoch milliseconds. Time-zone offsets are minutes east
// of UTC (UTC+2 is 120, UTC-5 is -300), the same sign as time.FixedZone.
package analytics

import (
	"math"
	"sort"
	"time"
)

// DayInMs is one day in milliseconds.
const DayInMs int64 = 86_400_000

const minuteInMs int64 = 60_000

// LocalDayStart returns the epoch-ms of local midnight for the calendar day
// containing tsMs under the given offset. It is idempotent.
func LocalDayStart(tsMs int64, tzOffsetMinutes int) int64 {
	shift := int64(tzOffsetMinutes) * minuteInMs
	local := tsMs + shift
	return floorDiv(local, DayInMs)*DayInMs - shift
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// CountByLocalDay tallies timestamps per local day bucket.
func CountByLocalDay(timestamps []int64, tzOffsetMinutes int) map[int64]int {
	counts := make(map[int64]int)
	for _, ts := range timestamps {
		counts[LocalDayStart(ts, tzOffsetMinutes)]++
	}
	return counts
}

// DaySet is a set of day buckets.
type DaySet map[int64]struct{}

// NewDaySet builds a set from the buckets of counts that hold at least one event.
func NewDaySet(counts map[int64]int) DaySet {
	set := make(DaySet, len(counts))
	for day, n := range counts {
		if n > 0 {
			set[day] = struct{}{}
		}
	}
	return set
}

func (s DaySet) Has(day int64) bool {
	_, ok := s[day]
	return ok
}

// CalculateStreakDays counts consecutive days present in days, walking back
// one day at a time from the local day containing today. The set must be
// bucketed with the same offset. Returns 0 when today's bucket is absent.
func CalculateStreakDays(days DaySet, today int64, tzOffsetMinutes int) int {
	streak := 0
	for day := LocalDayStart(today, tzOffsetMinutes); days.Has(day); day -= DayInMs {
		streak++
	}
	return streak
}

// ComputePredictedReadyDate forecasts when cardsRemaining reaches zero at a
// constant pace (cards per day). ok is false when pace is not positive or
// the date falls beyond what epoch milliseconds can represent.
// Partial days round up to a whole day.
func ComputePredictedReadyDate(cardsRemaining int, pace float64, now int64) (readyAt int64, ok bool) {
	if !(pace > 0) {
		return 0, false
	}
	days := math.Ceil(float64(cardsRemaining) / pace)
	maxDays := int64(math.MaxInt64) / DayInMs
	if now > 0 {
		maxDays = (math.MaxInt64 - now) / DayInMs
	}
	if math.IsNaN(days) || math.IsInf(days, 0) || days > float64(maxDays) {
		return 0, false
	}
	return now + int64(days)*DayInMs, true
}

// PaceFromCounts returns the mean number of events per day over the
// windowDays local days ending with today (inclusive).
func PaceFromCounts(counts map[int64]int, today int64, windowDays int) float64 {
	if windowDays <= 0 {
		return 0
	}
	oldest := today - int64(windowDays-1)*DayInMs
	total := 0
	for day, n := range counts {
		if day >= oldest && day <= today {
			total += n
		}
	}
	return float64(total) / float64(windowDays)
}

// SortedDays returns the buckets of counts in ascending order.
func SortedDays(counts map[int64]int) []int64 {
	days := make([]int64, 0, len(counts))
	for day := range counts {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// TimeToMillis converts t to epoch milliseconds.
func TimeToMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// MillisToTime converts epoch milliseconds to a UTC time.
func MillisToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
