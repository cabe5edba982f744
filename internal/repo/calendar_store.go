package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"keel/internal/models"
)

type CalendarStore struct{ db *gorm.DB }

func NewCalendarStore(db *gorm.DB) *CalendarStore { return &CalendarStore{db: db} }

type CreateEventInput struct {
	Title          string
	Description    string
	Location       string
	StartsAt       time.Time
	EndsAt         time.Time
	AllDay         bool
	ParticipantIDs []uint
}

func (s *CalendarStore) Create(ctx context.Context, creatorID uint, in CreateEventInput) (*models.CalendarEvent, error) {
	if in.Title == "" || in.EndsAt.Before(in.StartsAt) {
		return nil, ErrInvalidInput
	}
	e := models.CalendarEvent{
		CreatedByID: creatorID,
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		StartsAt:    in.StartsAt,
		EndsAt:      in.EndsAt,
		AllDay:      in.AllDay,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&e).Error; err != nil {
			return err
		}
		for _, id := range in.ParticipantIDs {
			if id == creatorID {
				continue
			}
			if err := tx.Create(&models.CalendarEventParticipant{EventID: e.ID, UserID: id}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Get виден только создателю и участникам.
func (s *CalendarStore) Get(ctx context.Context, id, userID uint) (*models.CalendarEvent, error) {
	var e models.CalendarEvent
	err := s.db.WithContext(ctx).Preload("Participants").Preload("Participants.User").
		First(&e, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !s.visible(&e, userID) {
		return nil, ErrForbidden
	}
	return &e, nil
}

func (s *CalendarStore) visible(e *models.CalendarEvent, userID uint) bool {
	if e.CreatedByID == userID {
		return true
	}
	for _, p := range e.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// List — события пользователя (создатель или участник) в интервале.
func (s *CalendarStore) List(ctx context.Context, userID uint, from, to *time.Time) ([]models.CalendarEvent, error) {
	q := s.db.WithContext(ctx).Preload("Participants").
		Where(`created_by_id = ? OR id IN (
			SELECT event_id FROM calendar_event_participants WHERE user_id = ?)`, userID, userID).
		Order("starts_at asc")
	if from != nil {
		q = q.Where("ends_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("starts_at < ?", *to)
	}
	var out []models.CalendarEvent
	err := q.Find(&out).Error
	return out, err
}

// Update/Delete — только создатель.
func (s *CalendarStore) Update(ctx context.Context, id, userID uint, in CreateEventInput) (*models.CalendarEvent, error) {
	e, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if e.CreatedByID != userID {
		return nil, ErrForbidden
	}
	if in.Title == "" || in.EndsAt.Before(in.StartsAt) {
		return nil, ErrInvalidInput
	}
	e.Title = in.Title
	e.Description = in.Description
	e.Location = in.Location
	e.StartsAt = in.StartsAt
	e.EndsAt = in.EndsAt
	e.AllDay = in.AllDay
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		e.Participants = nil
		if err := tx.Save(e).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", id).Delete(&models.CalendarEventParticipant{}).Error; err != nil {
			return err
		}
		for _, pid := range in.ParticipantIDs {
			if pid == userID {
				continue
			}
			if err := tx.Create(&models.CalendarEventParticipant{EventID: id, UserID: pid}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *CalendarStore) Delete(ctx context.Context, id, userID uint) error {
	e, err := s.Get(ctx, id, userID)
	if err != nil {
		return err
	}
	if e.CreatedByID != userID {
		return ErrForbidden
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&models.CalendarEventParticipant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.CalendarEvent{}, id).Error
	})
}
