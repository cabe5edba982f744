package models

import (
	"time"

	"gorm.io/gorm"
)

// ChatMessage — либо личное сообщение (ReceiverID), либо групповое (GroupID).
// Ровно одно из двух полей заполнено.
type ChatMessage struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	SenderID   uint       `gorm:"index;not null" json:"sender_id"`
	Sender     *User      `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	ReceiverID *uint      `gorm:"index" json:"receiver_id,omitempty"`
	GroupID    *uint      `gorm:"index" json:"group_id,omitempty"`
	Group      *ChatGroup `gorm:"foreignKey:GroupID" json:"group,omitempty"`

	Content      string `gorm:"type:text" json:"content"`
	AttachmentID *uint  `gorm:"index" json:"attachment_id,omitempty"`
	Attachment   *File  `gorm:"foreignKey:AttachmentID" json:"attachment,omitempty"`

	// Для личных сообщений — прочитано адресатом. Для групповых не используется:
	// там "прочитано" значит "все сообщения группы не от меня".
	IsRead bool `gorm:"not null;default:false;index" json:"is_read"`
}

type ChatGroup struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string `gorm:"size:255;not null" json:"name"`
	CreatedByID uint   `gorm:"index;not null" json:"created_by_id"`

	Members []ChatGroupMember `gorm:"foreignKey:GroupID" json:"members,omitempty"`
}

type ChatGroupMember struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`

	GroupID uint   `gorm:"index;not null;uniqueIndex:uniq_group_member,priority:1" json:"group_id"`
	UserID  uint   `gorm:"index;not null;uniqueIndex:uniq_group_member,priority:2" json:"user_id"`
	Role    string `gorm:"size:32;not null;default:member" json:"role"` // admin|member; создатель — admin
	User    *User  `json:"user,omitempty"`
}
