package models

import "time"

type DailyCount struct {
	DayStart time.Time `json:"day_start"`
	Count    int       `json:"count"`
}

type Activity struct {
	ProfileID       int64        `json:"profile_id"`
	TZOffsetMinutes int          `json:"tz_offset_minutes"`
	Days            []DailyCount `json:"days"`
	TotalReviews    int          `json:"total_reviews"`
}

type Streak struct {
	ProfileID       int64     `json:"profile_id"`
	TZOffsetMinutes int       `json:"tz_offset_minutes"`
	Today           time.Time `json:"today"`
	StreakDays      int       `json:"streak_days"`
}

// DeckProgress is the derived review state of a deck at ComputedAt.
// PredictedReadyAt is nil when there is no recent review pace to forecast from.
type DeckProgress struct {
	DeckID           int64      `json:"deck_id"`
	ProfileID        int64      `json:"profile_id"`
	DeckName         string     `json:"deck_name,omitempty"`
	TotalCards       int        `json:"total_cards"`
	DueCards         int        `json:"due_cards"`
	ReviewsToday     int        `json:"reviews_today"`
	StreakDays       int        `json:"streak_days"`
	PacePerDay       float64    `json:"pace_per_day"`
	PredictedReadyAt *time.Time `json:"predicted_ready_at"`
	ComputedAt       time.Time  `json:"computed_at"`
}

type ProfileOverview struct {
	Profile    Profile        `json:"profile"`
	StreakDays int            `json:"streak_days"`
	Decks      []DeckProgress `json:"decks"`
}
