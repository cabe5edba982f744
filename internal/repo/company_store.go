package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"keel/internal/models"
)

type CompanyStore struct{ db *gorm.DB }

func NewCompanyStore(db *gorm.DB) *CompanyStore { return &CompanyStore{db: db} }

func (s *CompanyStore) Create(ctx context.Context, c *models.Company) error {
	if c.Name == "" {
		return ErrInvalidInput
	}
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *CompanyStore) Get(ctx context.Context, id uint) (*models.Company, error) {
	var c models.Company
	err := s.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &c, err
}

func (s *CompanyStore) List(ctx context.Context) ([]models.Company, error) {
	var out []models.Company
	err := s.db.WithContext(ctx).Order("name asc").Find(&out).Error
	return out, err
}

func (s *CompanyStore) Update(ctx context.Context, c *models.Company) error {
	if c.Name == "" {
		return ErrInvalidInput
	}
	return s.db.WithContext(ctx).Save(c).Error
}

func (s *CompanyStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Company{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
