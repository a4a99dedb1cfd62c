package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
)

var flashcardColumns = []string{
	"f.id", "f.deck_id", "f.front", "f.back", "f.ease_factor", "f.interval_days",
	"f.repetitions", "f.last_rating", "f.due_at_ms", "f.created_at",
}

type flashcardRepository struct {
	db *sql.DB
}

// NewFlashcardRepository creates a new FlashcardRepository implementation
func NewFlashcardRepository(db *sql.DB) repository.FlashcardRepository {
	return &flashcardRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlashcard(row rowScanner) (models.Flashcard, error) {
	var c models.Flashcard
	var lastRating sql.NullString
	var dueAtMs int64
	err := row.Scan(&c.ID, &c.DeckID, &c.Front, &c.Back, &c.EaseFactor, &c.IntervalDays,
		&c.Repetitions, &lastRating, &dueAtMs, &c.CreatedAt)
	if err != nil {
		return c, err
	}
	c.LastRating = lastRating.String
	c.DueAt = fromMillis(dueAtMs)
	return c, nil
}

func nullableRating(rating string) sql.NullString {
	return sql.NullString{String: rating, Valid: rating != ""}
}

func (r *flashcardRepository) Insert(ctx context.Context, c models.Flashcard) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("inserting flashcard: deck_id=%d", c.DeckID)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO flashcards (deck_id, front, back, ease_factor, interval_days, repetitions, last_rating, due_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, c.DeckID, c.Front, c.Back, c.EaseFactor, c.IntervalDays, c.Repetitions, nullableRating(c.LastRating), toMillis(c.DueAt))
	if err != nil {
		log.Error("failed to insert flashcard: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get flashcard id: %v", err)
		return 0, err
	}
	log.Debug("flashcard inserted: id=%d", id)
	return id, nil
}

func (r *flashcardRepository) Get(ctx context.Context, id int64) (*models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("getting flashcard: id=%d", id)

	query, args, err := sqlBuilder.Select(flashcardColumns...).
		From("flashcards f").
		Where(squirrel.Eq{"f.id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	c, err := scanFlashcard(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("flashcard not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get flashcard: %v", err)
		return nil, err
	}
	return &c, nil
}

func applyFlashcardFilter(q squirrel.SelectBuilder, filter models.FlashcardFilter) squirrel.SelectBuilder {
	if filter.DeckID != 0 {
		q = q.Where(squirrel.Eq{"f.deck_id": filter.DeckID})
	}
	if filter.ProfileID != 0 {
		q = q.Join("decks d ON d.id = f.deck_id").Where(squirrel.Eq{"d.profile_id": filter.ProfileID})
	}
	if filter.DueBefore != nil {
		q = q.Where(squirrel.LtOrEq{"f.due_at_ms": toMillis(*filter.DueBefore)})
	}
	return q
}

func (r *flashcardRepository) List(ctx context.Context, filter models.FlashcardFilter) ([]models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("listing flashcards: deck_id=%d, profile_id=%d", filter.DeckID, filter.ProfileID)

	q := applyFlashcardFilter(sqlBuilder.Select(flashcardColumns...).From("flashcards f"), filter).
		OrderBy("f.due_at_ms ASC", "f.id ASC")

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	q = q.Limit(uint64(limit)).Offset(uint64(offset))

	query, args, err := q.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list flashcards: %v", err)
		return nil, err
	}
	defer rows.Close()
	var cards []models.Flashcard
	for rows.Next() {
		c, err := scanFlashcard(rows)
		if err != nil {
			log.Error("failed to scan flashcard row: %v", err)
			return nil, err
		}
		cards = append(cards, c)
	}
	log.Debug("found %d flashcards", len(cards))
	return cards, rows.Err()
}

func (r *flashcardRepository) Count(ctx context.Context, filter models.FlashcardFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")

	query, args, err := applyFlashcardFilter(sqlBuilder.Select("COUNT(*)").From("flashcards f"), filter).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Error("failed to count flashcards: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *flashcardRepository) NextDue(ctx context.Context, deckID int64, now time.Time, limit int) ([]models.Flashcard, error) {
	return r.List(ctx, models.FlashcardFilter{DeckID: deckID, DueBefore: &now, Limit: limit})
}

func (r *flashcardRepository) SaveReview(ctx context.Context, c models.Flashcard, ev models.StudyEvent) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("saving review: id=%d, interval=%d, ease=%.2f, reps=%d", c.ID, c.IntervalDays, c.EaseFactor, c.Repetitions)

	var eventID int64
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE flashcards
SET ease_factor = ?, interval_days = ?, repetitions = ?, last_rating = ?, due_at_ms = ?
WHERE id = ?
`, c.EaseFactor, c.IntervalDays, c.Repetitions, nullableRating(c.LastRating), toMillis(c.DueAt), c.ID)
		if err != nil {
			return fmt.Errorf("update flashcard: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("update flashcard %d: %w", c.ID, sql.ErrNoRows)
		}

		res, err = tx.ExecContext(ctx, `
INSERT INTO study_events (flashcard_id, deck_id, profile_id, rating, quality, time_seconds, reviewed_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, ev.FlashcardID, ev.DeckID, ev.ProfileID, ev.Rating, ev.Quality, ev.TimeSeconds, toMillis(ev.ReviewedAt))
		if err != nil {
			return fmt.Errorf("insert study event: %w", err)
		}
		eventID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		log.Error("failed to save review: %v", err)
		return 0, err
	}
	return eventID, nil
}
