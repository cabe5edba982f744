package models

import (
	"time"

	"gorm.io/gorm"
)

// CalendarEvent виден создателю и участникам; мутирует только создатель.
type CalendarEvent struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CreatedByID uint   `gorm:"index;not null" json:"created_by_id"`
	CreatedBy   *User  `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Location    string `gorm:"size:255" json:"location"`

	StartsAt time.Time `gorm:"not null;index" json:"starts_at"`
	EndsAt   time.Time `gorm:"not null" json:"ends_at"`
	AllDay   bool      `gorm:"not null;default:false" json:"all_day"`

	Participants []CalendarEventParticipant `gorm:"foreignKey:EventID" json:"participants,omitempty"`
}

type CalendarEventParticipant struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	EventID uint  `gorm:"index;not null;uniqueIndex:uniq_event_part,priority:1" json:"event_id"`
	UserID  uint  `gorm:"index;not null;uniqueIndex:uniq_event_part,priority:2" json:"user_id"`
	User    *User `json:"user,omitempty"`
}
