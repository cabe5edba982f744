package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusCancelled  = "cancelled"

	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"

	// confirmation_status: воркфлоу подтверждения при назначении чужой задачи
	ConfirmationPending  = "pending"
	ConfirmationAccepted = "accepted"
	ConfirmationRejected = "rejected"
)

type Task struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ProjectID   *uint    `gorm:"index" json:"project_id"`
	Project     *Project `json:"project,omitempty"`
	CreatedByID uint     `gorm:"index;not null" json:"created_by_id"`
	CreatedBy   *User    `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	AssigneeID  *uint    `gorm:"index" json:"assignee_id"`
	Assignee    *User    `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`

	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Status      string     `gorm:"size:32;not null;default:pending" json:"status"`
	Priority    string     `gorm:"size:32;not null;default:medium" json:"priority"`
	DueDate     *time.Time `json:"due_date"`

	// Пустая строка = подтверждение не требуется (self-assigned).
	ConfirmationStatus string `gorm:"size:32" json:"confirmation_status,omitempty"`
}

func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

func ValidTaskPriority(p string) bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}
