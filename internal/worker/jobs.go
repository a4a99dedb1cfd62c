package worker

import (
	"context"

	"github.com/vytor/studyflash/internal/logger"
)

// ProgressRefresher recomputes the stored progress snapshot of a deck.
// Declared here so the worker package does not import services.
type ProgressRefresher interface {
	RefreshDeckProgress(ctx context.Context, profileID, deckID int64) error
}

// RefreshProgressJob rebuilds a deck's progress snapshot after reviews.
type RefreshProgressJob struct {
	Refresher ProgressRefresher
	ProfileID int64
	DeckID    int64
}

func (j *RefreshProgressJob) Name() string { return "refresh_progress" }

func (j *RefreshProgressJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"profile_id": j.ProfileID,
		"deck_id":    j.DeckID,
	})
	log.Debug("refreshing deck progress")
	return j.Refresher.RefreshDeckProgress(logger.NewContext(ctx, log), j.ProfileID, j.DeckID)
}
