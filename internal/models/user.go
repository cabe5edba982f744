package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Email        string  `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash []byte  `gorm:"not null" json:"-"`
	FirstName    string  `gorm:"size:255" json:"first_name"`
	LastName     string  `gorm:"size:255" json:"last_name"`
	Nickname     string  `gorm:"size:64" json:"nickname"`
	Role         string  `gorm:"size:32;not null;default:employee" json:"role"`
	HourlyRate   float64 `json:"hourly_rate"`
	IsActive     bool    `gorm:"not null;default:true" json:"is_active"`
	// одноразовый флаг: выставляется при админском сбросе пароля
	MustChangePassword bool `gorm:"not null;default:false" json:"must_change_password"`

	Permissions []Permission `gorm:"many2many:user_permissions" json:"permissions,omitempty"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Permission — статический каталог возможностей, сидится один раз.
type Permission struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:64;not null" json:"name"`
}

// Каталог прав. Роуты ссылаются только на эти константы.
const (
	PermManageUsers      = "manage_users"
	PermManageCompanies  = "manage_companies"
	PermManageProjects   = "manage_projects"
	PermManageTasks      = "manage_tasks"
	PermManageTimesheets = "manage_timesheets"
	PermManageQuotes     = "manage_quotes"
	PermManageSettings   = "manage_settings"
	PermUseChat          = "use_chat"
	PermUseFiles         = "use_files"
	PermUseCalendar      = "use_calendar"
	PermViewReports      = "view_reports"
)

func PermissionCatalog() []string {
	return []string{
		PermManageUsers,
		PermManageCompanies,
		PermManageProjects,
		PermManageTasks,
		PermManageTimesheets,
		PermManageQuotes,
		PermManageSettings,
		PermUseChat,
		PermUseFiles,
		PermUseCalendar,
		PermViewReports,
	}
}
