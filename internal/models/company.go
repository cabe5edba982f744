package models

import (
	"time"

	"gorm.io/gorm"
)

type Company struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name    string `gorm:"size:255;not null" json:"name"`
	Email   string `gorm:"size:255" json:"email"`
	Phone   string `gorm:"size:64" json:"phone"`
	Address string `gorm:"size:512" json:"address"`
	VATID   string `gorm:"size:64" json:"vat_id"`
	Notes   string `gorm:"type:text" json:"notes"`
}

type Project struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CompanyID   *uint      `gorm:"index" json:"company_id"`
	Company     *Company   `json:"company,omitempty"`
	Name        string     `gorm:"size:255;not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	Status      string     `gorm:"size:32;not null;default:active" json:"status"` // active|on_hold|completed|cancelled
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`

	Members []ProjectMember `json:"members,omitempty"`
}

type ProjectMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ProjectID uint   `gorm:"index;not null;uniqueIndex:uniq_proj_member,priority:1" json:"project_id"`
	UserID    uint   `gorm:"index;not null;uniqueIndex:uniq_proj_member,priority:2" json:"user_id"`
	Role      string `gorm:"size:32;not null;default:member" json:"role"` // manager|member
	User      *User  `json:"user,omitempty"`
}
