package sqlite

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
)

type studyEventRepository struct {
	db *sql.DB
}

// NewStudyEventRepository creates a new StudyEventRepository implementation
func NewStudyEventRepository(db *sql.DB) repository.StudyEventRepository {
	return &studyEventRepository{db: db}
}

func applyStudyEventFilter(q squirrel.SelectBuilder, filter models.StudyEventFilter) squirrel.SelectBuilder {
	if filter.ProfileID != 0 {
		q = q.Where(squirrel.Eq{"profile_id": filter.ProfileID})
	}
	if filter.DeckID != 0 {
		q = q.Where(squirrel.Eq{"deck_id": filter.DeckID})
	}
	if filter.Since != nil {
		q = q.Where(squirrel.GtOrEq{"reviewed_at_ms": toMillis(*filter.Since)})
	}
	if filter.Until != nil {
		q = q.Where(squirrel.Lt{"reviewed_at_ms": toMillis(*filter.Until)})
	}
	return q
}

// Timestamps returns the review times (epoch ms) matching filter, oldest first.
func (r *studyEventRepository) Timestamps(ctx context.Context, filter models.StudyEventFilter) ([]int64, error) {
	log := logger.FromContext(ctx).WithPrefix("study_event_repo")
	log.Debug("fetching study event timestamps: profile_id=%d, deck_id=%d", filter.ProfileID, filter.DeckID)

	query, args, err := applyStudyEventFilter(sqlBuilder.Select("reviewed_at_ms").From("study_events"), filter).
		OrderBy("reviewed_at_ms ASC").
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query study events: %v", err)
		return nil, err
	}
	defer rows.Close()
	timestamps := []int64{}
	for rows.Next() {
		var ts int64
		if err := rows.Scan(&ts); err != nil {
			log.Error("failed to scan study event row: %v", err)
			return nil, err
		}
		timestamps = append(timestamps, ts)
	}
	log.Debug("found %d study events", len(timestamps))
	return timestamps, rows.Err()
}

func (r *studyEventRepository) Count(ctx context.Context, filter models.StudyEventFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("study_event_repo")

	query, args, err := applyStudyEventFilter(sqlBuilder.Select("COUNT(*)").From("study_events"), filter).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Error("failed to count study events: %v", err)
		return 0, err
	}
	return count, nil
}
