package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"keel/internal/models"
)

type NotificationStore struct{ db *gorm.DB }

func NewNotificationStore(db *gorm.DB) *NotificationStore { return &NotificationStore{db: db} }

func (s *NotificationStore) Create(ctx context.Context, n *models.Notification) error {
	return s.db.WithContext(ctx).Create(n).Error
}

// GetWithContext перечитывает уведомление вместе с задачей и её проектом
// для полного realtime-пейлоада.
func (s *NotificationStore) GetWithContext(ctx context.Context, id uint) (*models.Notification, error) {
	var n models.Notification
	err := s.db.WithContext(ctx).
		Preload("Task").Preload("Task.Project").
		First(&n, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &n, err
}

type NotificationFilter struct {
	UserID     uint
	UnreadOnly bool
	Limit      int
	Offset     int
}

func (s *NotificationStore) List(ctx context.Context, f NotificationFilter) ([]models.Notification, error) {
	q := s.db.WithContext(ctx).Preload("Task").
		Where("user_id = ?", f.UserID).Order("created_at desc, id desc")
	if f.UnreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var out []models.Notification
	err := q.Find(&out).Error
	return out, err
}

func (s *NotificationStore) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).Count(&n).Error
	return n, err
}

// MarkRead — только своё уведомление; чужое — Forbidden.
func (s *NotificationStore) MarkRead(ctx context.Context, id, userID uint) error {
	var n models.Notification
	err := s.db.WithContext(ctx).First(&n, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return ErrForbidden
	}
	return s.db.WithContext(ctx).Model(&n).Update("is_read", true).Error
}

func (s *NotificationStore) MarkAllRead(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

func (s *NotificationStore) Delete(ctx context.Context, id, userID uint) error {
	var n models.Notification
	err := s.db.WithContext(ctx).First(&n, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return ErrForbidden
	}
	return s.db.WithContext(ctx).Delete(&n).Error
}
