package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
)

type progressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a new ProgressRepository implementation
func NewProgressRepository(db *sql.DB) repository.ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Upsert(ctx context.Context, p models.DeckProgress) error {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("storing deck progress: deck_id=%d, due=%d, streak=%d", p.DeckID, p.DueCards, p.StreakDays)

	var readyAt sql.NullInt64
	if p.PredictedReadyAt != nil {
		readyAt = sql.NullInt64{Int64: toMillis(*p.PredictedReadyAt), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO deck_progress (deck_id, profile_id, total_cards, due_cards, reviews_today, streak_days, pace_per_day, predicted_ready_at_ms, computed_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(deck_id) DO UPDATE SET
    total_cards = excluded.total_cards,
    due_cards = excluded.due_cards,
    reviews_today = excluded.reviews_today,
    streak_days = excluded.streak_days,
    pace_per_day = excluded.pace_per_day,
    predicted_ready_at_ms = excluded.predicted_ready_at_ms,
    computed_at_ms = excluded.computed_at_ms
`, p.DeckID, p.ProfileID, p.TotalCards, p.DueCards, p.ReviewsToday, p.StreakDays, p.PacePerDay, readyAt, toMillis(p.ComputedAt))
	if err != nil {
		log.Error("failed to store deck progress: %v", err)
	}
	return err
}

func (r *progressRepository) Get(ctx context.Context, deckID int64) (*models.DeckProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("getting deck progress: deck_id=%d", deckID)

	var p models.DeckProgress
	var readyAt sql.NullInt64
	var computedAt int64
	err := r.db.QueryRowContext(ctx, `
SELECT deck_id, profile_id, total_cards, due_cards, reviews_today, streak_days, pace_per_day, predicted_ready_at_ms, computed_at_ms
FROM deck_progress
WHERE deck_id = ?
`, deckID).Scan(&p.DeckID, &p.ProfileID, &p.TotalCards, &p.DueCards, &p.ReviewsToday, &p.StreakDays, &p.PacePerDay, &readyAt, &computedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no progress snapshot for deck: id=%d", deckID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get deck progress: %v", err)
		return nil, err
	}
	if readyAt.Valid {
		t := fromMillis(readyAt.Int64)
		p.PredictedReadyAt = &t
	}
	p.ComputedAt = fromMillis(computedAt)
	return &p, nil
}
