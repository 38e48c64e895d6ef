package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-ops-api/internal/models"
)

// LedgerRepository reads the append-only points ledger. The only write path
// is insertLedgerEntry, which runs inside the achievement approval
// transaction; the ledger has no update or delete statements.
type LedgerRepository struct {
	db *sqlx.DB
}

// NewLedgerRepository constructs the repository.
func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

const ledgerInsertQuery = `INSERT INTO points_ledger
	(id, achievement_id, student_id, points, created_at)
	VALUES ($1, $2, $3, $4, $5)`

func insertLedgerEntry(ctx context.Context, ext sqlx.ExtContext, entry *models.PointsLedgerEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if _, err := ext.ExecContext(ctx, ledgerInsertQuery,
		entry.ID, entry.AchievementID, entry.StudentID, entry.Points, entry.CreatedAt); err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// TotalPoints sums all credited points for a student.
func (r *LedgerRepository) TotalPoints(ctx context.Context, studentID string) (int, error) {
	const query = `SELECT COALESCE(SUM(points), 0) FROM points_ledger WHERE student_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, studentID); err != nil {
		return 0, fmt.Errorf("sum student points: %w", err)
	}
	return total, nil
}

// PointsInRange sums credited points with created_at in [from, to).
func (r *LedgerRepository) PointsInRange(ctx context.Context, studentID string, from, to time.Time) (int, error) {
	const query = `SELECT COALESCE(SUM(points), 0) FROM points_ledger
	WHERE student_id = $1 AND created_at >= $2 AND created_at < $3`
	var total int
	if err := r.db.GetContext(ctx, &total, query, studentID, from, to); err != nil {
		return 0, fmt.Errorf("sum student points in range: %w", err)
	}
	return total, nil
}

// ListByStudent returns a student's ledger entries, oldest first.
func (r *LedgerRepository) ListByStudent(ctx context.Context, studentID string) ([]models.PointsLedgerEntry, error) {
	const query = `SELECT id, achievement_id, student_id, points, created_at
	FROM points_ledger WHERE student_id = $1 ORDER BY created_at ASC, id ASC`
	var entries []models.PointsLedgerEntry
	if err := r.db.SelectContext(ctx, &entries, query, studentID); err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	return entries, nil
}
