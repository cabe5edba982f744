package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"keel/internal/models"
)

type QuoteStore struct{ db *gorm.DB }

func NewQuoteStore(db *gorm.DB) *QuoteStore { return &QuoteStore{db: db} }

type QuoteInput struct {
	CompanyID  uint
	ProjectID  *uint
	Status     string
	Items      []models.QuoteItem
	ValidUntil *time.Time
	Notes      string
}

// Create. Номер генерится по порядку (Q-000001), итог считается на сервере.
func (s *QuoteStore) Create(ctx context.Context, creatorID uint, in QuoteInput) (*models.Quote, error) {
	if in.CompanyID == 0 || len(in.Items) == 0 {
		return nil, ErrInvalidInput
	}
	raw, err := json.Marshal(in.Items)
	if err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = "draft"
	}
	var seq int64
	if err := s.db.WithContext(ctx).Model(&models.Quote{}).Unscoped().Count(&seq).Error; err != nil {
		return nil, err
	}
	q := models.Quote{
		CompanyID:   in.CompanyID,
		ProjectID:   in.ProjectID,
		CreatedByID: creatorID,
		Number:      fmt.Sprintf("Q-%06d", seq+1),
		Status:      status,
		Items:       datatypes.JSON(raw),
		Total:       models.QuoteTotal(in.Items),
		ValidUntil:  in.ValidUntil,
		Notes:       in.Notes,
	}
	if err := s.db.WithContext(ctx).Create(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *QuoteStore) Get(ctx context.Context, id uint) (*models.Quote, error) {
	var q models.Quote
	err := s.db.WithContext(ctx).Preload("Company").First(&q, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &q, err
}

func (s *QuoteStore) List(ctx context.Context, companyID uint) ([]models.Quote, error) {
	q := s.db.WithContext(ctx).Preload("Company").Order("id desc")
	if companyID != 0 {
		q = q.Where("company_id = ?", companyID)
	}
	var out []models.Quote
	err := q.Find(&out).Error
	return out, err
}

func (s *QuoteStore) Update(ctx context.Context, id uint, in QuoteInput) (*models.Quote, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(in.Items) == 0 {
		return nil, ErrInvalidInput
	}
	raw, err := json.Marshal(in.Items)
	if err != nil {
		return nil, err
	}
	q.Items = datatypes.JSON(raw)
	q.Total = models.QuoteTotal(in.Items)
	if in.Status != "" {
		q.Status = in.Status
	}
	q.ProjectID = in.ProjectID
	q.ValidUntil = in.ValidUntil
	q.Notes = in.Notes
	q.Company = nil
	if err := s.db.WithContext(ctx).Save(q).Error; err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuoteStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Quote{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
