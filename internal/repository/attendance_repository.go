package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-ops-api/internal/models"
)

// AttendanceRepository persists raw attendance facts. Facts are keyed by
// (student, date, session); re-recording the same key overwrites in place.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceUpsertQuery = `INSERT INTO attendance_facts
	(id, student_id, class_id, date, session, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (student_id, date, session)
	DO UPDATE SET class_id = EXCLUDED.class_id, status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`

// Upsert records or corrects a single attendance fact.
func (r *AttendanceRepository) Upsert(ctx context.Context, fact *models.AttendanceFact) error {
	now := time.Now().UTC()
	if fact.ID == "" {
		fact.ID = uuid.NewString()
	}
	if fact.CreatedAt.IsZero() {
		fact.CreatedAt = now
	}
	fact.UpdatedAt = now
	if _, err := r.db.ExecContext(ctx, attendanceUpsertQuery,
		fact.ID, fact.StudentID, fact.ClassID, fact.Date, fact.Session, fact.Status,
		fact.CreatedAt, fact.UpdatedAt); err != nil {
		return fmt.Errorf("upsert attendance fact: %w", err)
	}
	return nil
}

// BulkUpsert records a whole session's facts atomically.
func (r *AttendanceRepository) BulkUpsert(ctx context.Context, facts []models.AttendanceFact) error {
	if len(facts) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk attendance: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for i := range facts {
		fact := &facts[i]
		if fact.ID == "" {
			fact.ID = uuid.NewString()
		}
		if fact.CreatedAt.IsZero() {
			fact.CreatedAt = now
		}
		fact.UpdatedAt = now
		if _, err := tx.ExecContext(ctx, attendanceUpsertQuery,
			fact.ID, fact.StudentID, fact.ClassID, fact.Date, fact.Session, fact.Status,
			fact.CreatedAt, fact.UpdatedAt); err != nil {
			return fmt.Errorf("bulk upsert attendance fact: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk attendance: %w", err)
	}
	committed = true
	return nil
}

// SessionsTaken returns the distinct sessions with at least one fact for a
// class on a date.
func (r *AttendanceRepository) SessionsTaken(ctx context.Context, classID string, date time.Time) ([]models.AttendanceSession, error) {
	const query = `SELECT DISTINCT session FROM attendance_facts WHERE class_id = $1 AND date = $2`
	var sessions []models.AttendanceSession
	if err := r.db.SelectContext(ctx, &sessions, query, classID, date); err != nil {
		return nil, fmt.Errorf("sessions taken: %w", err)
	}
	return sessions, nil
}

// StudentCounts aggregates present/absent session counts for a student in
// an optional date range.
func (r *AttendanceRepository) StudentCounts(ctx context.Context, studentID string, from, to *time.Time) (present int, absent int, err error) {
	query := `SELECT
	COALESCE(SUM(CASE WHEN status = $1 THEN 1 ELSE 0 END), 0) AS present,
	COALESCE(SUM(CASE WHEN status = $2 THEN 1 ELSE 0 END), 0) AS absent
	FROM attendance_facts WHERE student_id = $3`
	args := []interface{}{models.AttendancePresent, models.AttendanceAbsent, studentID}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}

	row := struct {
		Present int `db:"present"`
		Absent  int `db:"absent"`
	}{}
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return 0, 0, fmt.Errorf("student attendance counts: %w", err)
	}
	return row.Present, row.Absent, nil
}

// AbsenceRow is one absent fact used to build the grouped absence report.
type AbsenceRow struct {
	Date    time.Time                `db:"date"`
	Session models.AttendanceSession `db:"session"`
}

// Absences returns a student's absent facts ordered by date then session.
func (r *AttendanceRepository) Absences(ctx context.Context, studentID string) ([]AbsenceRow, error) {
	const query = `SELECT date, session FROM attendance_facts
	WHERE student_id = $1 AND status = $2
	ORDER BY date ASC, session ASC`
	var rows []AbsenceRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID, models.AttendanceAbsent); err != nil {
		return nil, fmt.Errorf("student absences: %w", err)
	}
	return rows, nil
}
