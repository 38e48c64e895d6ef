package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-ops-api/internal/models"
)

const workItemColumns = `id, type, status, title, description, category, priority, created_by,
       assignee_id, student_id, points, review_note, previous_report_id, created_at, updated_at`

// WorkItemRepository persists work items and executes the atomic transition
// unit: status compare-and-set, conditional ledger credit and timeline append
// commit together or not at all.
type WorkItemRepository struct {
	db *sqlx.DB
}

// NewWorkItemRepository constructs the repository.
func NewWorkItemRepository(db *sqlx.DB) *WorkItemRepository {
	return &WorkItemRepository{db: db}
}

// Create inserts a new work item together with its CREATED timeline entry.
func (r *WorkItemRepository) Create(ctx context.Context, item *models.WorkItem) error {
	now := time.Now().UTC()
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Status == "" {
		item.Status = item.Type.InitialStatus()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create work item: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO work_items
	(id, type, status, title, description, category, priority, created_by, assignee_id, student_id, points, review_note, previous_report_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	if _, err := tx.ExecContext(ctx, query,
		item.ID, item.Type, item.Status, item.Title, item.Description, item.Category,
		item.Priority, item.CreatedBy, item.AssigneeID, item.StudentID, item.Points,
		item.ReviewNote, item.PreviousReportID, item.CreatedAt, item.UpdatedAt); err != nil {
		return fmt.Errorf("create work item: %w", err)
	}

	created := &models.TimelineEntry{
		WorkItemType: item.Type,
		WorkItemID:   item.ID,
		Action:       models.TimelineCreated,
		PerformerID:  item.CreatedBy,
		CreatedAt:    item.CreatedAt,
	}
	if item.PreviousReportID != nil {
		created.Action = models.TimelineResubmitted
	}
	if err := insertTimelineEntry(ctx, tx, created); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create work item: %w", err)
	}
	committed = true
	return nil
}

// GetByID fetches a work item of the given type.
func (r *WorkItemRepository) GetByID(ctx context.Context, itemType models.WorkItemType, id string) (*models.WorkItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM work_items WHERE type = $1 AND id = $2`, workItemColumns)
	var item models.WorkItem
	if err := r.db.GetContext(ctx, &item, query, itemType, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns work items matching the filter (newest first).
func (r *WorkItemRepository) List(ctx context.Context, filter models.WorkItemFilter) ([]models.WorkItem, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 6)
	builder.WriteString(fmt.Sprintf("SELECT %s FROM work_items", workItemColumns))

	conditions := make([]string, 0, 5)
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedBy != "" {
		args = append(args, filter.CreatedBy)
		conditions = append(conditions, fmt.Sprintf("created_by = $%d", len(args)))
	}
	if filter.AssigneeID != "" {
		args = append(args, filter.AssigneeID)
		conditions = append(conditions, fmt.Sprintf("assignee_id = $%d", len(args)))
	}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var items []models.WorkItem
	if err := r.db.SelectContext(ctx, &items, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list work items: %w", err)
	}
	return items, nil
}

// TransitionParams groups everything the atomic transition unit writes.
type TransitionParams struct {
	ItemType   models.WorkItemType
	ItemID     string
	FromStatus models.WorkItemStatus
	ToStatus   models.WorkItemStatus
	AssigneeID *string
	ReviewNote *string
	Timeline   models.TimelineEntry
	Ledger     *models.PointsLedgerEntry
}

// ExecuteTransition applies the status compare-and-set plus the timeline
// append and optional ledger credit in one transaction. The WHERE clause
// pins the expected source status; zero affected rows means another
// transition won the race and sql.ErrNoRows is returned with nothing
// written.
func (r *WorkItemRepository) ExecuteTransition(ctx context.Context, params TransitionParams) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transition: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	setParts := []string{"status = $1", "updated_at = $2"}
	args := []interface{}{params.ToStatus, time.Now().UTC()}
	if params.AssigneeID != nil {
		args = append(args, *params.AssigneeID)
		setParts = append(setParts, fmt.Sprintf("assignee_id = $%d", len(args)))
	}
	if params.ReviewNote != nil {
		args = append(args, *params.ReviewNote)
		setParts = append(setParts, fmt.Sprintf("review_note = $%d", len(args)))
	}
	args = append(args, params.ItemType, params.ItemID, params.FromStatus)
	query := fmt.Sprintf("UPDATE work_items SET %s WHERE type = $%d AND id = $%d AND status = $%d",
		strings.Join(setParts, ", "), len(args)-2, len(args)-1, len(args))

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("transition work item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check transition rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	entry := params.Timeline
	if err := insertTimelineEntry(ctx, tx, &entry); err != nil {
		return err
	}
	if params.Ledger != nil {
		if err := insertLedgerEntry(ctx, tx, params.Ledger); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transition: %w", err)
	}
	committed = true
	return nil
}

// RevisionChain walks previous_report_id links starting from the given
// report, newest first. The iteration cap guards against a corrupted cycle.
func (r *WorkItemRepository) RevisionChain(ctx context.Context, reportID string) ([]models.WorkItem, error) {
	const maxDepth = 100
	chain := make([]models.WorkItem, 0, 2)
	nextID := reportID
	for i := 0; i < maxDepth && nextID != ""; i++ {
		item, err := r.GetByID(ctx, models.WorkItemReport, nextID)
		if err != nil {
			return nil, err
		}
		chain = append(chain, *item)
		if item.PreviousReportID == nil {
			return chain, nil
		}
		nextID = *item.PreviousReportID
	}
	if nextID != "" {
		return nil, fmt.Errorf("revision chain exceeds %d links from report %s", maxDepth, reportID)
	}
	return chain, nil
}
