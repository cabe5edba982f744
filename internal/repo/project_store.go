package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"keel/internal/models"
)

type ProjectStore struct{ db *gorm.DB }

func NewProjectStore(db *gorm.DB) *ProjectStore { return &ProjectStore{db: db} }

func (s *ProjectStore) Create(ctx context.Context, p *models.Project) error {
	if p.Name == "" {
		return ErrInvalidInput
	}
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *ProjectStore) Get(ctx context.Context, id uint) (*models.Project, error) {
	var p models.Project
	err := s.db.WithContext(ctx).
		Preload("Company").Preload("Members").Preload("Members.User").
		First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (s *ProjectStore) List(ctx context.Context) ([]models.Project, error) {
	var out []models.Project
	err := s.db.WithContext(ctx).Preload("Company").Order("id desc").Find(&out).Error
	return out, err
}

func (s *ProjectStore) Update(ctx context.Context, p *models.Project) error {
	if p.Name == "" {
		return ErrInvalidInput
	}
	p.Company, p.Members = nil, nil
	return s.db.WithContext(ctx).Save(p).Error
}

func (s *ProjectStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Project{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error
	})
}

func (s *ProjectStore) AddMember(ctx context.Context, projectID, userID uint, role string) error {
	if role == "" {
		role = "member"
	}
	m := models.ProjectMember{ProjectID: projectID, UserID: userID, Role: role}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *ProjectStore) RemoveMember(ctx context.Context, projectID, userID uint) error {
	res := s.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IsMember — состоит ли пользователь в проекте (нужно файловым грантам и чату).
func (s *ProjectStore) IsMember(ctx context.Context, projectID, userID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).Count(&n).Error
	return n > 0, err
}

func (s *ProjectStore) MemberIDs(ctx context.Context, projectID uint) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.ProjectMember{}).
		Where("project_id = ?", projectID).Pluck("user_id", &ids).Error
	return ids, err
}
