package models

import "time"

const (
	NotifyTaskAssigned  = "task_assigned"
	NotifyTaskConfirmed = "task_confirmed"
	NotifyTaskRejected  = "task_rejected"
	NotifyTaskCompleted = "task_completed"
)

// Notification создаётся только доменными событиями, никогда — внешним клиентом.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID  uint   `gorm:"index;not null" json:"user_id"`
	Type    string `gorm:"size:64;not null" json:"type"`
	Title   string `gorm:"size:255;not null" json:"title"`
	Message string `gorm:"type:text" json:"message,omitempty"`
	TaskID  *uint  `gorm:"index" json:"task_id,omitempty"`
	Task    *Task  `json:"task,omitempty"`
	IsRead  bool   `gorm:"not null;default:false;index" json:"is_read"`
}
