package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	GrantUser    = "user"
	GrantProject = "project"
	GrantTeam    = "team"
	GrantPublic  = "public"

	FileActionRead   = "read"
	FileActionWrite  = "write"
	FileActionDelete = "delete"
)

// File — метаданные; бинарь лежит на диске под StoredName.
type File struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	OwnerID      uint   `gorm:"index;not null" json:"owner_id"`
	Owner        *User  `json:"owner,omitempty"`
	ProjectID    *uint  `gorm:"index" json:"project_id"`
	StoredName   string `gorm:"uniqueIndex;size:128;not null" json:"-"` // сгенерированное имя на диске
	OriginalName string `gorm:"size:255;not null" json:"original_name"`
	MimeType     string `gorm:"size:128" json:"mime_type"`
	Size         int64  `json:"size"`
	Path         string `gorm:"size:512" json:"-"`
}

// FilePermission — грант на файл. GrantType задаёт интерпретацию TargetID:
// user → id пользователя; project|team → id проекта; public → TargetID пустой.
type FilePermission struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	FileID    uint   `gorm:"index;not null" json:"file_id"`
	GrantType string `gorm:"size:16;not null" json:"grant_type"`
	TargetID  *uint  `gorm:"index" json:"target_id"`
	CanRead   bool   `gorm:"not null;default:false" json:"can_read"`
	CanWrite  bool   `gorm:"not null;default:false" json:"can_write"`
	CanDelete bool   `gorm:"not null;default:false" json:"can_delete"`
}

// FileActivity — неизменяемый аудит-лог просмотров/скачиваний/шарингов.
type FileActivity struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	FileID uint           `gorm:"index;not null" json:"file_id"`
	UserID uint           `gorm:"index;not null" json:"user_id"`
	Action string         `gorm:"size:16;not null" json:"action"` // view|download|share
	Detail datatypes.JSON `json:"detail,omitempty"`
}
