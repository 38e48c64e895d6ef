package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-ops-api/internal/models"
)

func TestTimelineRepositoryAppendGeneratesID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimelineRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timeline_entries")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.TimelineEntry{
		WorkItemType: models.WorkItemIssue,
		WorkItemID:   "item-1",
		Action:       models.TimelineCommented,
		PerformerID:  "teacher-1",
	}
	require.NoError(t, repo.Append(context.Background(), entry))
	require.NotEmpty(t, entry.ID)
	require.False(t, entry.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimelineRepositoryHistoryAscending(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimelineRepository(db)
	rows := sqlmock.NewRows([]string{
		"id", "work_item_type", "work_item_id", "action", "performer_id", "to_user_id", "note", "created_at",
	}).
		AddRow("tl-1", "ISSUE", "item-1", "CREATED", "teacher-1", nil, nil, time.Now().Add(-time.Hour)).
		AddRow("tl-2", "ISSUE", "item-1", "FORWARDED", "principal-1", "manager-1", "routed to facilities", time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, work_item_type, work_item_id")).
		WithArgs("ISSUE", "item-1").
		WillReturnRows(rows)

	entries, err := repo.History(context.Background(), models.WorkItemIssue, "item-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, models.TimelineCreated, entries[0].Action)
	require.Equal(t, models.TimelineForwarded, entries[1].Action)
	require.Equal(t, "manager-1", *entries[1].ToUserID)
	require.NoError(t, mock.ExpectationsWereMet())
}
