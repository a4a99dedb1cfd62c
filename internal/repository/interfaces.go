package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vytor/studyflash/internal/models"
)

// Lookups by id return (nil, nil) when the row does not exist.

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate record")

// ProfileRepository handles profile data access
type ProfileRepository interface {
	Get(ctx context.Context, id int64) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	Upsert(ctx context.Context, username string, tzOffsetMinutes int) (*models.Profile, error)
	Delete(ctx context.Context, id int64) error
}

// DeckRepository handles deck data access
type DeckRepository interface {
	Get(ctx context.Context, id int64) (*models.Deck, error)
	ListByProfile(ctx context.Context, profileID int64) ([]models.Deck, error)
	Insert(ctx context.Context, deck models.Deck) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// FlashcardRepository handles flashcard data access
type FlashcardRepository interface {
	Insert(ctx context.Context, card models.Flashcard) (int64, error)
	Get(ctx context.Context, id int64) (*models.Flashcard, error)
	List(ctx context.Context, filter models.FlashcardFilter) ([]models.Flashcard, error)
	Count(ctx context.Context, filter models.FlashcardFilter) (int, error)
	NextDue(ctx context.Context, deckID int64, now time.Time, limit int) ([]models.Flashcard, error)
	// SaveReview stores the rescheduled card and appends its study event atomically.
	SaveReview(ctx context.Context, card models.Flashcard, event models.StudyEvent) (int64, error)
}

// StudyEventRepository reads the review history
type StudyEventRepository interface {
	Timestamps(ctx context.Context, filter models.StudyEventFilter) ([]int64, error)
	Count(ctx context.Context, filter models.StudyEventFilter) (int, error)
}

// ProgressRepository stores derived deck progress snapshots
type ProgressRepository interface {
	Upsert(ctx context.Context, progress models.DeckProgress) error
	Get(ctx context.Context, deckID int64) (*models.DeckProgress, error)
}
