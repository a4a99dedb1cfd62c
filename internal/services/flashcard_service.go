package services

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/vytor/studyflash/internal/errors"
	"github.com/vytor/studyflash/internal/flashcard"
	"github.com/vytor/studyflash/internal/jobs"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
	"github.com/vytor/studyflash/internal/worker"
)

// FlashcardService handles flashcard-related business logic
type FlashcardService interface {
	CreateCard(ctx context.Context, profileID, deckID int64, front, back string) (*models.Flashcard, error)
	// NextCard returns the most overdue card of the deck, or nil when nothing is due.
	NextCard(ctx context.Context, profileID, deckID int64) (*models.Flashcard, error)
	Review(ctx context.Context, profileID, cardID int64, rating string, timeSeconds float64) (*flashcard.Result, error)
}

type flashcardService struct {
	decks    DeckService
	cardRepo repository.FlashcardRepository
	queue    jobs.JobQueue
	now      func() time.Time
}

// NewFlashcardService creates a new FlashcardService. A nil now uses time.Now.
func NewFlashcardService(decks DeckService, cardRepo repository.FlashcardRepository, queue jobs.JobQueue, now func() time.Time) FlashcardService {
	if now == nil {
		now = time.Now
	}
	return &flashcardService{decks: decks, cardRepo: cardRepo, queue: queue, now: now}
}

func (s *flashcardService) CreateCard(ctx context.Context, profileID, deckID int64, front, back string) (*models.Flashcard, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating flashcard: profile_id=%d, deck_id=%d", profileID, deckID)

	front = strings.TrimSpace(front)
	if front == "" {
		return nil, errors.NewValidationError("front", "cannot be empty")
	}
	if _, err := s.decks.GetDeck(ctx, profileID, deckID); err != nil {
		return nil, err
	}

	state := flashcard.NewState()
	card := models.Flashcard{
		DeckID:       deckID,
		Front:        front,
		Back:         strings.TrimSpace(back),
		EaseFactor:   state.EaseFactor,
		IntervalDays: state.Interval,
		Repetitions:  state.Repetitions,
		DueAt:        s.now().UTC(),
	}
	id, err := s.cardRepo.Insert(ctx, card)
	if err != nil {
		log.Error("failed to insert flashcard: %v", err)
		return nil, errors.NewInternalError(err)
	}

	created, err := s.cardRepo.Get(ctx, id)
	if err != nil || created == nil {
		log.Error("failed to load created flashcard %d: %v", id, err)
		return nil, errors.NewInternalError(err)
	}

	s.enqueueRefresh(ctx, profileID, deckID)
	return created, nil
}

func (s *flashcardService) NextCard(ctx context.Context, profileID, deckID int64) (*models.Flashcard, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting next flashcard: profile_id=%d, deck_id=%d", profileID, deckID)

	if _, err := s.decks.GetDeck(ctx, profileID, deckID); err != nil {
		return nil, err
	}

	cards, err := s.cardRepo.NextDue(ctx, deckID, s.now(), 1)
	if err != nil {
		log.Error("failed to get next flashcards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if len(cards) == 0 {
		log.Debug("no flashcards due for review")
		return nil, nil
	}
	return &cards[0], nil
}

func (s *flashcardService) Review(ctx context.Context, profileID, cardID int64, rating string, timeSeconds float64) (*flashcard.Result, error) {
	log := logger.FromContext(ctx)
	log.Debug("reviewing flashcard: profile_id=%d, flashcard_id=%d, rating=%s", profileID, cardID, rating)

	r, err := flashcard.ParseRating(rating)
	if err != nil {
		return nil, errors.NewValidationError("rating", "must be one of easy, medium, hard")
	}
	if timeSeconds < 0 {
		return nil, errors.NewValidationError("time_seconds", "cannot be negative")
	}

	card, err := s.cardRepo.Get(ctx, cardID)
	if err != nil {
		log.Error("failed to get flashcard: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if card == nil {
		return nil, errors.NewNotFoundError("flashcard", cardID)
	}
	if _, err := s.decks.GetDeck(ctx, profileID, card.DeckID); err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewNotFoundError("flashcard", cardID)
		}
		return nil, err
	}

	now := s.now().UTC()
	result := flashcard.Schedule(r, flashcard.State{
		EaseFactor:  card.EaseFactor,
		Interval:    card.IntervalDays,
		Repetitions: card.Repetitions,
	}, now)
	log.Debug("applied review, new interval=%d days, ease_factor=%.2f", result.Interval, result.EaseFactor)

	card.EaseFactor = result.EaseFactor
	card.IntervalDays = result.Interval
	card.Repetitions = result.Repetitions
	card.LastRating = string(result.Rating)
	card.DueAt = result.NextReviewAt

	_, err = s.cardRepo.SaveReview(ctx, *card, models.StudyEvent{
		FlashcardID: card.ID,
		DeckID:      card.DeckID,
		ProfileID:   profileID,
		Rating:      string(result.Rating),
		Quality:     result.Quality,
		TimeSeconds: timeSeconds,
		ReviewedAt:  now,
	})
	if err != nil {
		log.Error("failed to save review: %v", err)
		return nil, errors.NewInternalError(err)
	}

	s.enqueueRefresh(ctx, profileID, card.DeckID)
	return &result, nil
}

// enqueueRefresh schedules a progress snapshot rebuild. Failures only cost freshness.
func (s *flashcardService) enqueueRefresh(ctx context.Context, profileID, deckID int64) {
	if s.queue == nil {
		return
	}
	log := logger.FromContext(ctx)
	if err := s.queue.EnqueueProgressRefresh(profileID, deckID); err != nil {
		if stderrors.Is(err, worker.ErrQueueFull) {
			log.Warn("progress refresh skipped, queue full: deck_id=%d", deckID)
			return
		}
		log.Warn("failed to enqueue progress refresh: %v", err)
	}
}
