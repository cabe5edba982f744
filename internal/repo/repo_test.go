package repo

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"keel/internal/models"
)

var dbSeq atomic.Int64

// testDB — изолированная in-memory sqlite на каждый тест.
// Именованная shared-память: pool может открыть больше одного соединения.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repotest%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Permission{},
		&models.User{},
		&models.Company{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.Timesheet{},
		&models.Notification{},
		&models.File{},
		&models.FilePermission{},
		&models.FileActivity{},
		&models.ChatMessage{},
		&models.ChatGroup{},
		&models.ChatGroupMember{},
		&models.CalendarEvent{},
		&models.CalendarEventParticipant{},
		&models.Quote{},
		&models.Setting{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	u, err := NewUserStore(db).Create(context.Background(), CreateUserInput{
		Email:      email,
		Password:   "secret123",
		FirstName:  "Test",
		HourlyRate: 60,
	})
	require.NoError(t, err)
	return u
}

func seedTask(t *testing.T, db *gorm.DB, creatorID uint, assigneeID *uint) *models.Task {
	t.Helper()
	task, err := NewTaskStore(db).Create(context.Background(), creatorID, CreateTaskInput{
		Title:      "fixture task",
		AssigneeID: assigneeID,
	})
	require.NoError(t, err)
	return task
}
