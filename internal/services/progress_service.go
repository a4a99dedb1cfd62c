package services

import (
	"context"
	"time"

	"github.com/vytor/studyflash/internal/analytics"
	"github.com/vytor/studyflash/internal/errors"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
	"golang.org/x/sync/errgroup"
)

// overviewConcurrency bounds the per-deck progress queries of one overview.
const overviewConcurrency = 4

// ProgressService derives review activity, streaks and forecasts.
//
// Every method taking a tzOffset uses the profile's stored offset when it is nil.
type ProgressService interface {
	Activity(ctx context.Context, profileID int64, days int, tzOffset *int) (*models.Activity, error)
	Streak(ctx context.Context, profileID int64, tzOffset *int) (*models.Streak, error)
	DeckProgress(ctx context.Context, profileID, deckID int64, tzOffset *int) (*models.DeckProgress, error)
	Snapshot(ctx context.Context, profileID, deckID int64) (*models.DeckProgress, error)
	Overview(ctx context.Context, profileID int64) (*models.ProfileOverview, error)
	RefreshDeckProgress(ctx context.Context, profileID, deckID int64) error
}

// ProgressConfig tunes the progress calculations.
type ProgressConfig struct {
	PaceWindowDays int
	ActivityDays   int
}

type progressService struct {
	profiles     ProfileService
	decks        DeckService
	cardRepo     repository.FlashcardRepository
	eventRepo    repository.StudyEventRepository
	progressRepo repository.ProgressRepository
	cfg          ProgressConfig
	now          func() time.Time
}

// NewProgressService creates a new ProgressService. A nil now uses time.Now.
func NewProgressService(
	profiles ProfileService,
	decks DeckService,
	cardRepo repository.FlashcardRepository,
	eventRepo repository.StudyEventRepository,
	progressRepo repository.ProgressRepository,
	cfg ProgressConfig,
	now func() time.Time,
) ProgressService {
	if cfg.PaceWindowDays <= 0 {
		cfg.PaceWindowDays = 7
	}
	if cfg.ActivityDays <= 0 {
		cfg.ActivityDays = 30
	}
	if now == nil {
		now = time.Now
	}
	return &progressService{
		profiles:     profiles,
		decks:        decks,
		cardRepo:     cardRepo,
		eventRepo:    eventRepo,
		progressRepo: progressRepo,
		cfg:          cfg,
		now:          now,
	}
}

// resolveOffset loads the profile and picks the offset to bucket days with.
func (s *progressService) resolveOffset(ctx context.Context, profileID int64, tzOffset *int) (*models.Profile, int, error) {
	profile, err := s.profiles.GetProfile(ctx, profileID)
	if err != nil {
		return nil, 0, err
	}
	if tzOffset == nil {
		return profile, profile.TZOffsetMinutes, nil
	}
	if err := ValidateTZOffset(*tzOffset); err != nil {
		return nil, 0, err
	}
	return profile, *tzOffset, nil
}

func (s *progressService) Activity(ctx context.Context, profileID int64, days int, tzOffset *int) (*models.Activity, error) {
	log := logger.FromContext(ctx)
	if days <= 0 {
		days = s.cfg.ActivityDays
	}
	if days > 366 {
		return nil, errors.NewValidationError("days", "must be at most 366")
	}

	_, offset, err := s.resolveOffset(ctx, profileID, tzOffset)
	if err != nil {
		return nil, err
	}
	log.Debug("computing activity: profile_id=%d, days=%d, tz_offset=%d", profileID, days, offset)

	nowMs := analytics.TimeToMillis(s.now())
	today := analytics.LocalDayStart(nowMs, offset)
	since := analytics.MillisToTime(today - int64(days-1)*analytics.DayInMs)

	timestamps, err := s.eventRepo.Timestamps(ctx, models.StudyEventFilter{ProfileID: profileID, Since: &since})
	if err != nil {
		log.Error("failed to load study events: %v", err)
		return nil, errors.NewInternalError(err)
	}

	counts := analytics.CountByLocalDay(timestamps, offset)
	activity := &models.Activity{
		ProfileID:       profileID,
		TZOffsetMinutes: offset,
		Days:            make([]models.DailyCount, 0, len(counts)),
		TotalReviews:    len(timestamps),
	}
	for _, day := range analytics.SortedDays(counts) {
		activity.Days = append(activity.Days, models.DailyCount{
			DayStart: analytics.MillisToTime(day),
			Count:    counts[day],
		})
	}
	return activity, nil
}

func (s *progressService) Streak(ctx context.Context, profileID int64, tzOffset *int) (*models.Streak, error) {
	log := logger.FromContext(ctx)

	_, offset, err := s.resolveOffset(ctx, profileID, tzOffset)
	if err != nil {
		return nil, err
	}
	log.Debug("computing streak: profile_id=%d, tz_offset=%d", profileID, offset)

	timestamps, err := s.eventRepo.Timestamps(ctx, models.StudyEventFilter{ProfileID: profileID})
	if err != nil {
		log.Error("failed to load study events: %v", err)
		return nil, errors.NewInternalError(err)
	}

	today := analytics.LocalDayStart(analytics.TimeToMillis(s.now()), offset)
	days := analytics.NewDaySet(analytics.CountByLocalDay(timestamps, offset))
	return &models.Streak{
		ProfileID:       profileID,
		TZOffsetMinutes: offset,
		Today:           analytics.MillisToTime(today),
		StreakDays:      analytics.CalculateStreakDays(days, today, offset),
	}, nil
}

func (s *progressService) DeckProgress(ctx context.Context, profileID, deckID int64, tzOffset *int) (*models.DeckProgress, error) {
	_, offset, err := s.resolveOffset(ctx, profileID, tzOffset)
	if err != nil {
		return nil, err
	}
	deck, err := s.decks.GetDeck(ctx, profileID, deckID)
	if err != nil {
		return nil, err
	}
	return s.computeDeckProgress(ctx, *deck, offset)
}

func (s *progressService) computeDeckProgress(ctx context.Context, deck models.Deck, offset int) (*models.DeckProgress, error) {
	log := logger.FromContext(ctx).WithField("deck_id", deck.ID)
	now := s.now().UTC()
	nowMs := analytics.TimeToMillis(now)

	total, err := s.cardRepo.Count(ctx, models.FlashcardFilter{DeckID: deck.ID})
	if err != nil {
		log.Error("failed to count cards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	due, err := s.cardRepo.Count(ctx, models.FlashcardFilter{DeckID: deck.ID, DueBefore: &now})
	if err != nil {
		log.Error("failed to count due cards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	timestamps, err := s.eventRepo.Timestamps(ctx, models.StudyEventFilter{DeckID: deck.ID})
	if err != nil {
		log.Error("failed to load study events: %v", err)
		return nil, errors.NewInternalError(err)
	}

	counts := analytics.CountByLocalDay(timestamps, offset)
	today := analytics.LocalDayStart(nowMs, offset)
	pace := analytics.PaceFromCounts(counts, today, s.cfg.PaceWindowDays)

	progress := &models.DeckProgress{
		DeckID:       deck.ID,
		ProfileID:    deck.ProfileID,
		DeckName:     deck.Name,
		TotalCards:   total,
		DueCards:     due,
		ReviewsToday: counts[today],
		StreakDays:   analytics.CalculateStreakDays(analytics.NewDaySet(counts), today, offset),
		PacePerDay:   pace,
		ComputedAt:   now,
	}
	if readyMs, ok := analytics.ComputePredictedReadyDate(due, pace, nowMs); ok {
		readyAt := analytics.MillisToTime(readyMs)
		progress.PredictedReadyAt = &readyAt
	}
	log.Debug("deck progress: total=%d, due=%d, pace=%.2f", total, due, pace)
	return progress, nil
}

func (s *progressService) Snapshot(ctx context.Context, profileID, deckID int64) (*models.DeckProgress, error) {
	log := logger.FromContext(ctx)
	deck, err := s.decks.GetDeck(ctx, profileID, deckID)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.progressRepo.Get(ctx, deckID)
	if err != nil {
		log.Error("failed to load progress snapshot: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if snapshot == nil {
		return nil, errors.NewNotFoundError("progress snapshot", deckID)
	}
	snapshot.DeckName = deck.Name
	return snapshot, nil
}

func (s *progressService) RefreshDeckProgress(ctx context.Context, profileID, deckID int64) error {
	log := logger.FromContext(ctx)

	profile, offset, err := s.resolveOffset(ctx, profileID, nil)
	if err != nil {
		return err
	}
	deck, err := s.decks.GetDeck(ctx, profile.ID, deckID)
	if err != nil {
		return err
	}
	progress, err := s.computeDeckProgress(ctx, *deck, offset)
	if err != nil {
		return err
	}
	if err := s.progressRepo.Upsert(ctx, *progress); err != nil {
		log.Error("failed to store progress snapshot: %v", err)
		return errors.NewInternalError(err)
	}
	log.Debug("progress snapshot stored: deck_id=%d", deckID)
	return nil
}

func (s *progressService) Overview(ctx context.Context, profileID int64) (*models.ProfileOverview, error) {
	log := logger.FromContext(ctx)

	profile, offset, err := s.resolveOffset(ctx, profileID, nil)
	if err != nil {
		return nil, err
	}
	decks, err := s.decks.ListDecks(ctx, profileID)
	if err != nil {
		return nil, err
	}
	log.Debug("computing overview: profile_id=%d, decks=%d", profileID, len(decks))

	results := make([]models.DeckProgress, len(decks))
	var streak *models.Streak

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(overviewConcurrency)
	g.Go(func() error {
		st, err := s.Streak(gctx, profileID, &offset)
		if err != nil {
			return err
		}
		streak = st
		return nil
	})
	for i, deck := range decks {
		i, deck := i, deck
		g.Go(func() error {
			p, err := s.computeDeckProgress(gctx, deck, offset)
			if err != nil {
				return err
			}
			results[i] = *p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.ProfileOverview{
		Profile:    *profile,
		StreakDays: streak.StreakDays,
		Decks:      results,
	}, nil
}
