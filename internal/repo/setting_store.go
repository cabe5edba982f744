package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"keel/internal/models"
)

type SettingStore struct{ db *gorm.DB }

func NewSettingStore(db *gorm.DB) *SettingStore { return &SettingStore{db: db} }

func (s *SettingStore) Get(ctx context.Context, key string) (string, error) {
	var st models.Setting
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	return st.Value, err
}

func (s *SettingStore) Set(ctx context.Context, key, value string) error {
	if !models.ValidSettingKey(key) {
		return ErrInvalidInput
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&models.Setting{Key: key, Value: value}).Error
}

func (s *SettingStore) List(ctx context.Context) ([]models.Setting, error) {
	var out []models.Setting
	err := s.db.WithContext(ctx).Order("key asc").Find(&out).Error
	return out, err
}

func (s *SettingStore) Delete(ctx context.Context, key string) error {
	res := s.db.WithContext(ctx).Where("key = ?", key).Delete(&models.Setting{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// EmailSettings собирает типизированный снимок почтовых настроек на момент
// вызова — вместо сравнения строк по месту использования.
func (s *SettingStore) EmailSettings(ctx context.Context) (models.EmailSettings, error) {
	all, err := s.List(ctx)
	if err != nil {
		return models.EmailSettings{}, err
	}
	es := models.EmailSettings{Enabled: true, EventEnabled: map[string]bool{}}
	for _, st := range all {
		switch st.Key {
		case models.SettingSendgridAPIKey:
			es.APIKey = st.Value
		case models.SettingEmailEnabled:
			es.Enabled = st.Value == "true"
		case models.SettingNotifyTaskAssigned:
			es.EventEnabled[models.NotifyTaskAssigned] = st.Value == "true"
		case models.SettingNotifyTaskConfirmed:
			es.EventEnabled[models.NotifyTaskConfirmed] = st.Value == "true"
			es.EventEnabled[models.NotifyTaskRejected] = st.Value == "true"
		}
	}
	return es, nil
}
