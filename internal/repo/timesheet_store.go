package repo

import (
	"context"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"keel/internal/logs"
	"keel/internal/models"
)

type TimesheetStore struct{ db *gorm.DB }

func NewTimesheetStore(db *gorm.DB) *TimesheetStore { return &TimesheetStore{db: db} }

// Migrate добавляет частичный уникальный индекс "не больше одного открытого
// таймера на пользователя". Поддерживается postgres и sqlite; на mysql
// partial-индексов нет — там остаётся только прикладная проверка в Start.
func (s *TimesheetStore) Migrate() error {
	switch s.db.Dialector.Name() {
	case "postgres", "sqlite":
		return s.db.Exec(
			`CREATE UNIQUE INDEX IF NOT EXISTS one_open_timer_per_user
			 ON timesheets (user_id) WHERE end_time IS NULL AND deleted_at IS NULL`,
		).Error
	}
	return nil
}

// canTrack: задача назначена пользователю, либо есть manage_timesheets/manage_tasks.
func (s *TimesheetStore) canTrack(task *models.Task, userID uint, manageAll bool) bool {
	if manageAll {
		return true
	}
	return task.AssigneeID != nil && *task.AssigneeID == userID
}

func (s *TimesheetStore) loadTask(ctx context.Context, taskID uint) (*models.Task, error) {
	var t models.Task
	err := s.db.WithContext(ctx).First(&t, taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &t, err
}

// Start открывает таймер. Conflict — если открытый уже есть: сначала быстрая
// прикладная проверка, затем уникальный индекс ловит гонку конкурентных Start.
func (s *TimesheetStore) Start(ctx context.Context, userID, taskID uint, manageAll bool) (*models.Timesheet, error) {
	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !s.canTrack(task, userID, manageAll) {
		return nil, ErrForbidden
	}

	var open int64
	if err := s.db.WithContext(ctx).Model(&models.Timesheet{}).
		Where("user_id = ? AND end_time IS NULL", userID).Count(&open).Error; err != nil {
		return nil, err
	}
	if open > 0 {
		return nil, ErrConflict
	}

	ts := models.Timesheet{
		TaskID:    taskID,
		UserID:    userID,
		StartTime: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&ts).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return &ts, nil
}

// Stop закрывает открытый таймер. Длительность — round((end-start)/60s),
// отрицательные значения (перекос часов) прижимаются к нулю с варнингом.
func (s *TimesheetStore) Stop(ctx context.Context, userID uint, description string) (*models.Timesheet, error) {
	var ts models.Timesheet
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND end_time IS NULL", userID).First(&ts).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ts.EndTime = &now
	ts.Duration = RoundMinutes(now.Sub(ts.StartTime))
	if ts.Duration < 0 {
		logs.Logger.Warnf("timesheet %d: negative duration (%d min), clamped to 0", ts.ID, ts.Duration)
		ts.Duration = 0
	}
	if description != "" {
		ts.Description = description
	}
	if err := s.db.WithContext(ctx).Save(&ts).Error; err != nil {
		return nil, err
	}
	return &ts, nil
}

type ManualEntryInput struct {
	TaskID      uint
	Duration    int // минуты
	Description string
	WorkDate    *time.Time
}

// ManualEntry создаёт сразу закрытую запись, не трогая открытый таймер.
func (s *TimesheetStore) ManualEntry(ctx context.Context, userID uint, in ManualEntryInput, manageAll bool) (*models.Timesheet, error) {
	if in.Duration <= 0 {
		return nil, ErrInvalidInput
	}
	task, err := s.loadTask(ctx, in.TaskID)
	if err != nil {
		return nil, err
	}
	if !s.canTrack(task, userID, manageAll) {
		return nil, ErrForbidden
	}
	start := time.Now().UTC()
	if in.WorkDate != nil {
		start = in.WorkDate.UTC()
	}
	end := start.Add(time.Duration(in.Duration) * time.Minute)
	ts := models.Timesheet{
		TaskID:      in.TaskID,
		UserID:      userID,
		StartTime:   start,
		EndTime:     &end,
		Duration:    in.Duration,
		Description: in.Description,
	}
	if err := s.db.WithContext(ctx).Create(&ts).Error; err != nil {
		return nil, err
	}
	return &ts, nil
}

func (s *TimesheetStore) Get(ctx context.Context, id uint) (*models.Timesheet, error) {
	var ts models.Timesheet
	err := s.db.WithContext(ctx).Preload("Task").First(&ts, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &ts, err
}

func (s *TimesheetStore) Open(ctx context.Context, userID uint) (*models.Timesheet, error) {
	var ts models.Timesheet
	err := s.db.WithContext(ctx).Preload("Task").
		Where("user_id = ? AND end_time IS NULL", userID).First(&ts).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &ts, err
}

type TimesheetFilter struct {
	UserID uint // 0 = все (нужно manage-право, проверяется в API)
	TaskID uint
	From   *time.Time
	To     *time.Time
}

func (s *TimesheetStore) List(ctx context.Context, f TimesheetFilter) ([]models.Timesheet, error) {
	q := s.db.WithContext(ctx).Preload("Task").Order("start_time desc")
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.TaskID != 0 {
		q = q.Where("task_id = ?", f.TaskID)
	}
	if f.From != nil {
		q = q.Where("start_time >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("start_time < ?", *f.To)
	}
	var out []models.Timesheet
	err := q.Find(&out).Error
	return out, err
}

func (s *TimesheetStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Timesheet{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RoundMinutes — минуты с округлением до ближайшей.
func RoundMinutes(d time.Duration) int {
	return int(math.Round(d.Minutes()))
}
