package models

import (
	"time"

	"gorm.io/gorm"
)

// Timesheet — одна запись учёта времени. Открытый таймер = EndTime IS NULL.
// Инвариант "не больше одного открытого таймера на пользователя" держит
// частичный уникальный индекс (см. repo.TimesheetStore.Migrate).
type Timesheet struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	TaskID uint  `gorm:"index;not null" json:"task_id"`
	Task   *Task `json:"task,omitempty"`
	UserID uint  `gorm:"index;not null" json:"user_id"`
	User   *User `json:"user,omitempty"`

	StartTime   time.Time  `gorm:"not null" json:"start_time"`
	EndTime     *time.Time `gorm:"index" json:"end_time"`
	Duration    int        `json:"duration"` // минуты; заполняется при стопе/ручном вводе
	Description string     `gorm:"type:text" json:"description"`
}

func (t *Timesheet) Open() bool { return t.EndTime == nil }

// Cost — производная величина для отчётов, в БД не хранится.
func (t *Timesheet) Cost(hourlyRate float64) float64 {
	return float64(t.Duration) / 60.0 * hourlyRate
}
