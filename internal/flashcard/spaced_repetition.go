package flashcard

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3

	// Day is the length of one scheduling interval unit. Due dates are
	// computed by duration arithmetic, not calendar days.
	Day = 24 * time.Hour
)

// Rating is the coarse recall grade a student gives after a review.
type Rating string

const (
	RatingEasy   Rating = "easy"
	RatingMedium Rating = "medium"
	RatingHard   Rating = "hard"
)

// ParseRating accepts "easy", "medium" or "hard" (case-insensitive).
func ParseRating(s string) (Rating, error) {
	switch r := Rating(strings.ToLower(strings.TrimSpace(s))); r {
	case RatingEasy, RatingMedium, RatingHard:
		return r, nil
	default:
		return "", fmt.Errorf("unknown rating %q", s)
	}
}

// Quality maps a rating to its SM-2 quality score.
func (r Rating) Quality() int {
	switch r {
	case RatingEasy:
		return 5
	case RatingMedium:
		return 3
	default:
		return 1
	}
}

func (r Rating) Valid() bool {
	return r == RatingEasy || r == RatingMedium || r == RatingHard
}

// State is the scheduling state of a single card.
type State struct {
	EaseFactor  float64
	Interval    int
	Repetitions int
}

// NewState returns the state of a freshly created card.
func NewState() State {
	return State{EaseFactor: DefaultEaseFactor}
}

// Result is the outcome of one review.
type Result struct {
	Rating       Rating    `json:"rating"`
	Quality      int       `json:"quality"`
	EaseFactor   float64   `json:"ease_factor"`
	Interval     int       `json:"interval"`
	Repetitions  int       `json:"repetitions"`
	NextReviewAt time.Time `json:"next_review_at"`
}

// State returns the scheduling state carried by the result.
func (r Result) State() State {
	return State{EaseFactor: r.EaseFactor, Interval: r.Interval, Repetitions: r.Repetitions}
}

// Schedule applies an SM-2 variant to state for the given rating.
//
// The ease factor is updated on every call and floored at MinEaseFactor.
// The interval depends on the number of reviews before this one: 1 day for
// the first, 6 days for the second, then the previous interval times the
// updated ease factor. Repetitions always increase; there is no reset on a
// poor rating, which only lowers the ease factor. An unknown rating is
// treated as RatingHard.
func Schedule(rating Rating, state State, now time.Time) Result {
	if !rating.Valid() {
		rating = RatingHard
	}
	state = normalize(state)
	q := rating.Quality()

	ef := state.EaseFactor + (0.1 - float64(5-q)*(0.08+float64(5-q)*0.02))
	ef = math.Max(ef, MinEaseFactor)

	var interval int
	switch state.Repetitions {
	case 0:
		interval = 1
	case 1:
		interval = 6
	default:
		interval = int(math.Round(float64(state.Interval) * ef))
	}

	return Result{
		Rating:       rating,
		Quality:      q,
		EaseFactor:   ef,
		Interval:     interval,
		Repetitions:  state.Repetitions + 1,
		NextReviewAt: now.Add(time.Duration(interval) * Day),
	}
}

// normalize clamps a caller-supplied state into the documented ranges.
func normalize(s State) State {
	if math.IsNaN(s.EaseFactor) || s.EaseFactor < MinEaseFactor {
		s.EaseFactor = MinEaseFactor
	}
	if s.Interval < 0 {
		s.Interval = 0
	}
	if s.Repetitions < 0 {
		s.Repetitions = 0
	}
	return s
}
