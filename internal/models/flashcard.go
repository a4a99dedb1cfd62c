package models

import "time"

type Flashcard struct {
	ID           int64     `json:"id"`
	DeckID       int64     `json:"deck_id"`
	Front        string    `json:"front"`
	Back         string    `json:"back"`
	EaseFactor   float64   `json:"ease_factor"`
	IntervalDays int       `json:"interval_days"`
	Repetitions  int       `json:"repetitions"`
	LastRating   string    `json:"last_rating,omitempty"`
	DueAt        time.Time `json:"due_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// FlashcardFilter selects cards of one deck. Zero values mean "no constraint".
type FlashcardFilter struct {
	DeckID    int64
	ProfileID int64
	DueBefore *time.Time
	Limit     int
	Offset    int
}

// StudyEvent records a single review of a flashcard.
type StudyEvent struct {
	ID          int64     `json:"id"`
	FlashcardID int64     `json:"flashcard_id"`
	DeckID      int64     `json:"deck_id"`
	ProfileID   int64     `json:"profile_id"`
	Rating      string    `json:"rating"`
	Quality     int       `json:"quality"`
	TimeSeconds float64   `json:"time_seconds"`
	ReviewedAt  time.Time `json:"reviewed_at"`
}

// StudyEventFilter narrows the study events read for analytics.
type StudyEventFilter struct {
	ProfileID int64
	DeckID    int64
	Since     *time.Time
	Until     *time.Time
}
