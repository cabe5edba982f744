package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"keel/internal/models"
)

type ChatStore struct{ db *gorm.DB }

func NewChatStore(db *gorm.DB) *ChatStore { return &ChatStore{db: db} }

type SendMessageInput struct {
	SenderID     uint
	ReceiverID   *uint
	GroupID      *uint
	Content      string
	AttachmentID *uint
}

// SendMessage. Ровно один адресат: либо пользователь, либо группа.
// В группу пишут только её участники.
func (s *ChatStore) SendMessage(ctx context.Context, in SendMessageInput) (*models.ChatMessage, error) {
	if (in.ReceiverID == nil) == (in.GroupID == nil) {
		return nil, ErrInvalidInput
	}
	if in.Content == "" && in.AttachmentID == nil {
		return nil, ErrInvalidInput
	}
	if in.GroupID != nil {
		member, err := s.IsGroupMember(ctx, *in.GroupID, in.SenderID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, ErrForbidden
		}
	}
	m := models.ChatMessage{
		SenderID:     in.SenderID,
		ReceiverID:   in.ReceiverID,
		GroupID:      in.GroupID,
		Content:      in.Content,
		AttachmentID: in.AttachmentID,
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// DirectHistory — переписка двух пользователей, старые первыми.
func (s *ChatStore) DirectHistory(ctx context.Context, a, b uint, limit int) ([]models.ChatMessage, error) {
	q := s.db.WithContext(ctx).Preload("Sender").Preload("Attachment").
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Order("id asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []models.ChatMessage
	err := q.Find(&out).Error
	return out, err
}

func (s *ChatStore) GroupHistory(ctx context.Context, groupID, userID uint, limit int) ([]models.ChatMessage, error) {
	member, err := s.IsGroupMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrForbidden
	}
	q := s.db.WithContext(ctx).Preload("Sender").Preload("Attachment").
		Where("group_id = ?", groupID).Order("id asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []models.ChatMessage
	err = q.Find(&out).Error
	return out, err
}

// MarkDirectRead помечает входящие от peer прочитанными.
func (s *ChatStore) MarkDirectRead(ctx context.Context, userID, peerID uint) error {
	return s.db.WithContext(ctx).Model(&models.ChatMessage{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", peerID, userID, false).
		Update("is_read", true).Error
}

// MarkGroupRead: для группы "прочитано" = все сообщения не от меня.
func (s *ChatStore) MarkGroupRead(ctx context.Context, groupID, userID uint) error {
	member, err := s.IsGroupMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !member {
		return ErrForbidden
	}
	return s.db.WithContext(ctx).Model(&models.ChatMessage{}).
		Where("group_id = ? AND sender_id <> ? AND is_read = ?", groupID, userID, false).
		Update("is_read", true).Error
}

// CreateGroup. Создатель становится первым участником с ролью admin.
func (s *ChatStore) CreateGroup(ctx context.Context, name string, creatorID uint, memberIDs []uint) (*models.ChatGroup, error) {
	if name == "" {
		return nil, ErrInvalidInput
	}
	g := models.ChatGroup{Name: name, CreatedByID: creatorID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&g).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.ChatGroupMember{
			GroupID: g.ID, UserID: creatorID, Role: "admin",
		}).Error; err != nil {
			return err
		}
		for _, id := range memberIDs {
			if id == creatorID {
				continue
			}
			if err := tx.Create(&models.ChatGroupMember{
				GroupID: g.ID, UserID: id, Role: "member",
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *ChatStore) GetGroup(ctx context.Context, id uint) (*models.ChatGroup, error) {
	var g models.ChatGroup
	err := s.db.WithContext(ctx).Preload("Members").Preload("Members.User").First(&g, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &g, err
}

func (s *ChatStore) ListGroups(ctx context.Context, userID uint) ([]models.ChatGroup, error) {
	var out []models.ChatGroup
	err := s.db.WithContext(ctx).
		Joins("JOIN chat_group_members m ON m.group_id = chat_groups.id AND m.user_id = ?", userID).
		Order("chat_groups.id desc").Find(&out).Error
	return out, err
}

func (s *ChatStore) AddGroupMember(ctx context.Context, groupID, userID uint) error {
	m := models.ChatGroupMember{GroupID: groupID, UserID: userID, Role: "member"}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *ChatStore) IsGroupMember(ctx context.Context, groupID, userID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.ChatGroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).Count(&n).Error
	return n > 0, err
}

func (s *ChatStore) GroupMemberIDs(ctx context.Context, groupID uint) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.ChatGroupMember{}).
		Where("group_id = ?", groupID).Pluck("user_id", &ids).Error
	return ids, err
}
