package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-ops-api/internal/models"
)

// TimelineRepository persists the append-only audit timeline. No update or
// delete statement exists for timeline_entries anywhere.
type TimelineRepository struct {
	db *sqlx.DB
}

// NewTimelineRepository constructs the repository.
func NewTimelineRepository(db *sqlx.DB) *TimelineRepository {
	return &TimelineRepository{db: db}
}

const timelineInsertQuery = `INSERT INTO timeline_entries
	(id, work_item_type, work_item_id, action, performer_id, to_user_id, note, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// insertTimelineEntry writes an entry using the given executor so the
// workflow transaction can reuse the same statement.
func insertTimelineEntry(ctx context.Context, ext sqlx.ExtContext, entry *models.TimelineEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if _, err := ext.ExecContext(ctx, timelineInsertQuery,
		entry.ID, entry.WorkItemType, entry.WorkItemID, entry.Action,
		entry.PerformerID, entry.ToUserID, entry.Note, entry.CreatedAt); err != nil {
		return fmt.Errorf("insert timeline entry: %w", err)
	}
	return nil
}

// Append records a single entry outside a workflow transaction.
func (r *TimelineRepository) Append(ctx context.Context, entry *models.TimelineEntry) error {
	return insertTimelineEntry(ctx, r.db, entry)
}

// History returns all entries for a work item ascending by creation time,
// with the id as a stable tiebreak for entries sharing a timestamp.
func (r *TimelineRepository) History(ctx context.Context, itemType models.WorkItemType, itemID string) ([]models.TimelineEntry, error) {
	const query = `SELECT id, work_item_type, work_item_id, action, performer_id, to_user_id, note, created_at
	FROM timeline_entries
	WHERE work_item_type = $1 AND work_item_id = $2
	ORDER BY created_at ASC, id ASC`
	var entries []models.TimelineEntry
	if err := r.db.SelectContext(ctx, &entries, query, itemType, itemID); err != nil {
		return nil, fmt.Errorf("timeline history: %w", err)
	}
	return entries, nil
}
