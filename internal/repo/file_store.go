package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"keel/internal/models"
)

type FileStore struct{ db *gorm.DB }

func NewFileStore(db *gorm.DB) *FileStore { return &FileStore{db: db} }

func (s *FileStore) Create(ctx context.Context, f *models.File) error {
	return s.db.WithContext(ctx).Create(f).Error
}

func (s *FileStore) Get(ctx context.Context, id uint) (*models.File, error) {
	var f models.File
	err := s.db.WithContext(ctx).Preload("Owner").First(&f, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &f, err
}

// ListVisible — файлы, к которым у пользователя есть хоть какой-то доступ:
// собственные, публичные, с персональным грантом, либо через членство в проекте
// (гранты project и team оба резолвятся в членство, team — со своим target_id).
func (s *FileStore) ListVisible(ctx context.Context, userID uint) ([]models.File, error) {
	var out []models.File
	err := s.db.WithContext(ctx).
		Distinct("files.*").
		Joins("LEFT JOIN file_permissions fp ON fp.file_id = files.id").
		Where(`files.owner_id = ?
			OR fp.grant_type = ?
			OR (fp.grant_type = ? AND fp.target_id = ?)
			OR (fp.grant_type IN (?, ?) AND fp.target_id IN (
				SELECT project_id FROM project_members WHERE user_id = ?))`,
			userID,
			models.GrantPublic,
			models.GrantUser, userID,
			models.GrantProject, models.GrantTeam, userID).
		Order("files.id desc").
		Find(&out).Error
	return out, err
}

func (s *FileStore) Grants(ctx context.Context, fileID uint) ([]models.FilePermission, error) {
	var out []models.FilePermission
	err := s.db.WithContext(ctx).Where("file_id = ?", fileID).Find(&out).Error
	return out, err
}

// ReplaceGrants — delete-then-insert, не инкрементально.
func (s *FileStore) ReplaceGrants(ctx context.Context, fileID uint, grants []models.FilePermission) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("file_id = ?", fileID).Delete(&models.FilePermission{}).Error; err != nil {
			return err
		}
		for i := range grants {
			grants[i].ID = 0
			grants[i].FileID = fileID
			if err := tx.Create(&grants[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *FileStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.File{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("file_id = ?", id).Delete(&models.FilePermission{}).Error
	})
}

// LogActivity — аудит-лог; вызывается fire-and-forget.
func (s *FileStore) LogActivity(ctx context.Context, a *models.FileActivity) error {
	return s.db.WithContext(ctx).Create(a).Error
}
