package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-ops-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func workItemRows(items ...models.WorkItem) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "type", "status", "title", "description", "category", "priority",
		"created_by", "assignee_id", "student_id", "points", "review_note",
		"previous_report_id", "created_at", "updated_at",
	})
	for _, item := range items {
		rows.AddRow(item.ID, item.Type, item.Status, item.Title, item.Description,
			item.Category, item.Priority, item.CreatedBy, item.AssigneeID,
			item.StudentID, item.Points, item.ReviewNote, item.PreviousReportID,
			item.CreatedAt, item.UpdatedAt)
	}
	return rows
}

func TestWorkItemRepositoryCreateWritesTimeline(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewWorkItemRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO work_items")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timeline_entries")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	item := &models.WorkItem{
		Type:      models.WorkItemIssue,
		Title:     "Broken projector in 10A",
		CreatedBy: "teacher-1",
	}
	require.NoError(t, repo.Create(context.Background(), item))
	require.NotEmpty(t, item.ID)
	require.Equal(t, models.StatusOpen, item.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkItemRepositoryCreateRollsBackOnTimelineFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewWorkItemRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO work_items")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timeline_entries")).
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	item := &models.WorkItem{
		Type:      models.WorkItemReport,
		Title:     "Weekly duty report",
		CreatedBy: "teacher-2",
	}
	require.Error(t, repo.Create(context.Background(), item))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkItemRepositoryGetByIDScopesType(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewWorkItemRepository(db)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, type, status")).
		WithArgs("ISSUE", "item-1").
		WillReturnRows(workItemRows(models.WorkItem{
			ID: "item-1", Type: models.WorkItemIssue, Status: models.StatusOpen,
			Title: "Leaking roof", CreatedBy: "teacher-1", CreatedAt: now, UpdatedAt: now,
		}))

	found, err := repo.GetByID(context.Background(), models.WorkItemIssue, "item-1")
	require.NoError(t, err)
	require.Equal(t, "item-1", found.ID)
	require.Equal(t, models.StatusOpen, found.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkItemRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewWorkItemRepository(db)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, type, status")).
		WithArgs("REPORT", "SUBMITTED", "teacher-3").
		WillReturnRows(workItemRows(models.WorkItem{
			ID: "rep-1", Type: models.WorkItemReport, Status: models.StatusSubmitted,
			Title: "Lab inventory", CreatedBy: "teacher-3", CreatedAt: now, UpdatedAt: now,
		}))

	list, err := repo.List(context.Background(), models.WorkItemFilter{
		Type:      models.WorkItemReport,
		Status:    []models.WorkItemStatus{models.StatusSubmitted},
		CreatedBy: "teacher-3",
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "rep-1", list[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkItemRepositoryExecuteTransitionCreditsLedger(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewWorkItemRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE work_items SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timeline_entries")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO points_ledger")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.ExecuteTransition(context.Background(), TransitionParams{
		ItemType:   models.WorkItemAchievement,
		ItemID:     "ach-1",
		FromStatus: models.StatusPending,
		ToStatus:   models.StatusApproved,
		Timeline: models.TimelineEntry{
			WorkItemType: models.WorkItemAchievement,
			WorkItemID:   "ach-1",
			Action:       models.TimelineApproved,
			PerformerID:  "principal-1",
		},
		Ledger: &models.PointsLedgerEntry{
			AchievementID: "ach-1",
			StudentID:     "student-1",
			Points:        15,
		},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkItemRepositoryExecuteTransitionLostRace(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewWorkItemRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE work_items SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.ExecuteTransition(context.Background(), TransitionParams{
		ItemType:   models.WorkItemAchievement,
		ItemID:     "ach-1",
		FromStatus: models.StatusPending,
		ToStatus:   models.StatusApproved,
		Timeline: models.TimelineEntry{
			WorkItemType: models.WorkItemAchievement,
			WorkItemID:   "ach-1",
			Action:       models.TimelineApproved,
			PerformerID:  "manager-1",
		},
	})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkItemRepositoryRevisionChain(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewWorkItemRepository(db)
	now := time.Now()
	previous := "rep-1"

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, type, status")).
		WithArgs("REPORT", "rep-2").
		WillReturnRows(workItemRows(models.WorkItem{
			ID: "rep-2", Type: models.WorkItemReport, Status: models.StatusSubmitted,
			Title: "Lab inventory v2", CreatedBy: "teacher-3",
			PreviousReportID: &previous, CreatedAt: now, UpdatedAt: now,
		}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, type, status")).
		WithArgs("REPORT", "rep-1").
		WillReturnRows(workItemRows(models.WorkItem{
			ID: "rep-1", Type: models.WorkItemReport, Status: models.StatusRejected,
			Title: "Lab inventory", CreatedBy: "teacher-3", CreatedAt: now, UpdatedAt: now,
		}))

	chain, err := repo.RevisionChain(context.Background(), "rep-2")
	require.NoError(t, err)
	require.Len(t, chain, 2)
	require.Equal(t, "rep-2", chain[0].ID)
	require.Equal(t, "rep-1", chain[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
