package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keel/internal/models"
)

func TestTimesheetReportAggregates(t *testing.T) {
	db := testDB(t)
	store := NewReportStore(db)
	sheets := NewTimesheetStore(db)
	ctx := context.Background()

	u := seedUser(t, db, "worker@example.com")
	require.NoError(t, db.Model(u).Update("last_name", "Doe").Error)

	project := &models.Project{Name: "site"}
	require.NoError(t, NewProjectStore(db).Create(ctx, project))
	task, err := NewTaskStore(db).Create(ctx, u.ID, CreateTaskInput{
		Title: "build", ProjectID: &project.ID, AssigneeID: &u.ID,
	})
	require.NoError(t, err)

	inWindow := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	outside := inWindow.AddDate(0, 1, 0)
	_, err = sheets.ManualEntry(ctx, u.ID, ManualEntryInput{TaskID: task.ID, Duration: 30, WorkDate: &inWindow}, false)
	require.NoError(t, err)
	_, err = sheets.ManualEntry(ctx, u.ID, ManualEntryInput{TaskID: task.ID, Duration: 90, WorkDate: &inWindow}, false)
	require.NoError(t, err)
	_, err = sheets.ManualEntry(ctx, u.ID, ManualEntryInput{TaskID: task.ID, Duration: 999, WorkDate: &outside}, false)
	require.NoError(t, err)
	// открытый таймер в отчёт не попадает
	_, err = sheets.Start(ctx, u.ID, task.ID, false)
	require.NoError(t, err)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	rows, err := store.TimesheetReport(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, u.ID, row.UserID)
	assert.Equal(t, "Test Doe", row.UserName)
	assert.Equal(t, "site", row.ProjectName)
	assert.Equal(t, int64(120), row.Minutes)
	// 120 минут по ставке 60/час
	assert.InDelta(t, 120.0, row.Cost, 0.001)
}

func TestDashboardSummary(t *testing.T) {
	db := testDB(t)
	store := NewReportStore(db)
	ctx := context.Background()

	u := seedUser(t, db, "dash@example.com")
	other := seedUser(t, db, "noise@example.com")

	seedTask(t, db, u.ID, &u.ID)
	seedTask(t, db, u.ID, &u.ID)
	seedTask(t, db, other.ID, &other.ID) // чужие задачи в сводку не входят

	require.NoError(t, db.Create(&models.Notification{
		UserID: u.ID, Type: models.NotifyTaskAssigned, Title: "t",
	}).Error)

	now := time.Now().UTC()
	sum, err := store.Dashboard(ctx, u.ID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.TasksByStatus[models.TaskStatusPending])
	assert.Equal(t, int64(1), sum.UnreadCount)
}
