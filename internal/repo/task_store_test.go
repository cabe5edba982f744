package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keel/internal/models"
)

func TestTaskCreateConfirmationWorkflow(t *testing.T) {
	db := testDB(t)
	store := NewTaskStore(db)
	ctx := context.Background()

	manager := seedUser(t, db, "manager@example.com")
	worker := seedUser(t, db, "worker@example.com")

	// self-assigned: подтверждение не нужно
	own, err := store.Create(ctx, manager.ID, CreateTaskInput{Title: "own", AssigneeID: &manager.ID})
	require.NoError(t, err)
	assert.Empty(t, own.ConfirmationStatus)

	// без исполнителя: тоже не нужно
	free, err := store.Create(ctx, manager.ID, CreateTaskInput{Title: "free"})
	require.NoError(t, err)
	assert.Empty(t, free.ConfirmationStatus)

	// чужому исполнителю: pending
	assigned, err := store.Create(ctx, manager.ID, CreateTaskInput{Title: "assigned", AssigneeID: &worker.ID})
	require.NoError(t, err)
	assert.Equal(t, models.ConfirmationPending, assigned.ConfirmationStatus)
	assert.Equal(t, models.TaskStatusPending, assigned.Status)
}

func TestTaskConfirmAccept(t *testing.T) {
	db := testDB(t)
	store := NewTaskStore(db)
	ctx := context.Background()

	manager := seedUser(t, db, "manager@example.com")
	worker := seedUser(t, db, "worker@example.com")
	task, err := store.Create(ctx, manager.ID, CreateTaskInput{Title: "t", AssigneeID: &worker.ID})
	require.NoError(t, err)

	// подтверждать может только исполнитель
	_, err = store.Confirm(ctx, task.ID, manager.ID, true)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := store.Confirm(ctx, task.ID, worker.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.ConfirmationAccepted, got.ConfirmationStatus)
	// accept двигает pending → in_progress
	assert.Equal(t, models.TaskStatusInProgress, got.Status)

	// повторное подтверждение — конфликт
	_, err = store.Confirm(ctx, task.ID, worker.ID, true)
	assert.ErrorIs(t, err, ErrConflict)

	reread, err := store.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, reread.Status)
}

func TestTaskConfirmReject(t *testing.T) {
	db := testDB(t)
	store := NewTaskStore(db)
	ctx := context.Background()

	manager := seedUser(t, db, "manager@example.com")
	worker := seedUser(t, db, "worker@example.com")
	task, err := store.Create(ctx, manager.ID, CreateTaskInput{Title: "t", AssigneeID: &worker.ID})
	require.NoError(t, err)

	got, err := store.Confirm(ctx, task.ID, worker.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.ConfirmationRejected, got.ConfirmationStatus)
	// reject статус задачи не трогает
	assert.Equal(t, models.TaskStatusPending, got.Status)

	_, err = store.Confirm(ctx, task.ID, worker.ID, false)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestTaskReassignRestartsConfirmation(t *testing.T) {
	db := testDB(t)
	store := NewTaskStore(db)
	ctx := context.Background()

	manager := seedUser(t, db, "manager@example.com")
	worker := seedUser(t, db, "worker@example.com")
	other := seedUser(t, db, "other@example.com")

	task, err := store.Create(ctx, manager.ID, CreateTaskInput{Title: "t", AssigneeID: &worker.ID})
	require.NoError(t, err)
	_, err = store.Confirm(ctx, task.ID, worker.ID, true)
	require.NoError(t, err)

	updated, prev, err := store.Update(ctx, task.ID, UpdateTaskInput{AssigneeID: &other.ID})
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, worker.ID, *prev)
	assert.Equal(t, models.ConfirmationPending, updated.ConfirmationStatus)

	// возврат создателю: подтверждение снимается
	updated, _, err = store.Update(ctx, task.ID, UpdateTaskInput{AssigneeID: &manager.ID})
	require.NoError(t, err)
	assert.Empty(t, updated.ConfirmationStatus)
}

func TestTaskUpdateValidation(t *testing.T) {
	db := testDB(t)
	store := NewTaskStore(db)
	ctx := context.Background()

	u := seedUser(t, db, "u@example.com")
	task := seedTask(t, db, u.ID, nil)

	empty := ""
	_, _, err := store.Update(ctx, task.ID, UpdateTaskInput{Title: &empty})
	assert.ErrorIs(t, err, ErrInvalidInput)

	bad := "paused"
	_, _, err = store.Update(ctx, task.ID, UpdateTaskInput{Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)

	done := models.TaskStatusCompleted
	got, _, err := store.Update(ctx, task.ID, UpdateTaskInput{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, got.Status)

	_, err = store.Create(ctx, u.ID, CreateTaskInput{Title: ""})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTaskDeleteCascades(t *testing.T) {
	db := testDB(t)
	store := NewTaskStore(db)
	tsStore := NewTimesheetStore(db)
	ctx := context.Background()

	u := seedUser(t, db, "u@example.com")
	task := seedTask(t, db, u.ID, &u.ID)
	_, err := tsStore.ManualEntry(ctx, u.ID, ManualEntryInput{TaskID: task.ID, Duration: 15}, false)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Notification{
		UserID: u.ID, TaskID: &task.ID, Type: models.NotifyTaskAssigned, Title: "x",
	}).Error)

	require.NoError(t, store.Delete(ctx, task.ID))

	_, err = store.Get(ctx, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	var n int64
	require.NoError(t, db.Model(&models.Timesheet{}).Where("task_id = ?", task.ID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&models.Notification{}).Where("task_id = ?", task.ID).Count(&n).Error)
	assert.Zero(t, n)

	assert.ErrorIs(t, store.Delete(ctx, task.ID), ErrNotFound)
}

func TestTaskListFilter(t *testing.T) {
	db := testDB(t)
	store := NewTaskStore(db)
	ctx := context.Background()

	u := seedUser(t, db, "u@example.com")
	other := seedUser(t, db, "o@example.com")
	_, err := store.Create(ctx, u.ID, CreateTaskInput{Title: "a", AssigneeID: &u.ID, Priority: models.TaskPriorityHigh})
	require.NoError(t, err)
	_, err = store.Create(ctx, u.ID, CreateTaskInput{Title: "b", AssigneeID: &other.ID})
	require.NoError(t, err)

	mine, err := store.List(ctx, TaskFilter{AssigneeID: u.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "a", mine[0].Title)

	high, err := store.List(ctx, TaskFilter{Priority: models.TaskPriorityHigh})
	require.NoError(t, err)
	assert.Len(t, high, 1)

	// VisibleTo ловит и созданные пользователем задачи, не только назначенные
	visible, err := store.List(ctx, TaskFilter{VisibleTo: u.ID})
	require.NoError(t, err)
	assert.Len(t, visible, 2)

	visible, err = store.List(ctx, TaskFilter{VisibleTo: other.ID})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "b", visible[0].Title)
}
