package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"keel/internal/models"
)

type TaskStore struct{ db *gorm.DB }

func NewTaskStore(db *gorm.DB) *TaskStore { return &TaskStore{db: db} }

type CreateTaskInput struct {
	ProjectID   *uint
	AssigneeID  *uint
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     *time.Time
}

// Create. Назначение задачи не-создателю включает воркфлоу подтверждения.
func (s *TaskStore) Create(ctx context.Context, creatorID uint, in CreateTaskInput) (*models.Task, error) {
	if in.Title == "" {
		return nil, ErrInvalidInput
	}
	status := in.Status
	if status == "" {
		status = models.TaskStatusPending
	}
	priority := in.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	if !models.ValidTaskStatus(status) || !models.ValidTaskPriority(priority) {
		return nil, ErrInvalidInput
	}
	t := models.Task{
		ProjectID:   in.ProjectID,
		CreatedByID: creatorID,
		AssigneeID:  in.AssigneeID,
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     in.DueDate,
	}
	if in.AssigneeID != nil && *in.AssigneeID != creatorID {
		t.ConfirmationStatus = models.ConfirmationPending
	}
	if err := s.db.WithContext(ctx).Create(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TaskStore) Get(ctx context.Context, id uint) (*models.Task, error) {
	var t models.Task
	err := s.db.WithContext(ctx).
		Preload("Project").Preload("Assignee").Preload("CreatedBy").
		First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &t, err
}

type TaskFilter struct {
	ProjectID  uint
	AssigneeID uint
	Status     string
	Priority   string
	// только задачи этого пользователя: исполнитель или создатель
	VisibleTo uint
}

func (s *TaskStore) List(ctx context.Context, f TaskFilter) ([]models.Task, error) {
	q := s.db.WithContext(ctx).Preload("Project").Preload("Assignee").Order("id desc")
	if f.ProjectID != 0 {
		q = q.Where("project_id = ?", f.ProjectID)
	}
	if f.AssigneeID != 0 {
		q = q.Where("assignee_id = ?", f.AssigneeID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.VisibleTo != 0 {
		q = q.Where("assignee_id = ? OR created_by_id = ?", f.VisibleTo, f.VisibleTo)
	}
	var out []models.Task
	err := q.Find(&out).Error
	return out, err
}

type UpdateTaskInput struct {
	ProjectID   *uint
	AssigneeID  *uint
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
}

// Update. Переназначение на нового исполнителя перезапускает подтверждение.
// Возвращает прежнего исполнителя, чтобы вызывающий решил, кого уведомлять.
func (s *TaskStore) Update(ctx context.Context, id uint, in UpdateTaskInput) (*models.Task, *uint, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	prevAssignee := t.AssigneeID

	if in.Title != nil {
		if *in.Title == "" {
			return nil, nil, ErrInvalidInput
		}
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Status != nil {
		if !models.ValidTaskStatus(*in.Status) {
			return nil, nil, ErrInvalidInput
		}
		t.Status = *in.Status
	}
	if in.Priority != nil {
		if !models.ValidTaskPriority(*in.Priority) {
			return nil, nil, ErrInvalidInput
		}
		t.Priority = *in.Priority
	}
	if in.ProjectID != nil {
		t.ProjectID = in.ProjectID
	}
	if in.DueDate != nil {
		t.DueDate = in.DueDate
	}
	if in.AssigneeID != nil {
		reassigned := prevAssignee == nil || *prevAssignee != *in.AssigneeID
		t.AssigneeID = in.AssigneeID
		if reassigned && *in.AssigneeID != t.CreatedByID {
			t.ConfirmationStatus = models.ConfirmationPending
		} else if reassigned {
			t.ConfirmationStatus = ""
		}
	}
	t.Project, t.Assignee, t.CreatedBy = nil, nil, nil
	if err := s.db.WithContext(ctx).Save(t).Error; err != nil {
		return nil, nil, err
	}
	return t, prevAssignee, nil
}

// Confirm: accept|reject от исполнителя. Повторный вызов — Conflict.
// accept дополнительно двигает pending → in_progress.
func (s *TaskStore) Confirm(ctx context.Context, id, userID uint, accept bool) (*models.Task, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.AssigneeID == nil || *t.AssigneeID != userID {
		return nil, ErrForbidden
	}
	if t.ConfirmationStatus != models.ConfirmationPending {
		return nil, ErrConflict
	}
	updates := map[string]any{}
	if accept {
		updates["confirmation_status"] = models.ConfirmationAccepted
		if t.Status == models.TaskStatusPending {
			updates["status"] = models.TaskStatusInProgress
			t.Status = models.TaskStatusInProgress
		}
		t.ConfirmationStatus = models.ConfirmationAccepted
	} else {
		updates["confirmation_status"] = models.ConfirmationRejected
		t.ConfirmationStatus = models.ConfirmationRejected
	}
	if err := s.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Task{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		// каскад: связанные таймшиты и уведомления уходят вместе с задачей
		if err := tx.Where("task_id = ?", id).Delete(&models.Timesheet{}).Error; err != nil {
			return err
		}
		return tx.Where("task_id = ?", id).Delete(&models.Notification{}).Error
	})
}
