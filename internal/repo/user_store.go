package repo

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"keel/internal/models"
)

type UserStore struct{ db *gorm.DB }

func NewUserStore(db *gorm.DB) *UserStore { return &UserStore{db: db} }

type CreateUserInput struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	Nickname   string
	Role       string
	HourlyRate float64
}

func (s *UserStore) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = models.RoleEmployee
	}
	u := models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Nickname:     in.Nickname,
		Role:         role,
		HourlyRate:   in.HourlyRate,
		IsActive:     true,
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) Get(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &u, err
}

func (s *UserStore) GetWithPermissions(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Preload("Permissions").First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &u, err
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := s.db.WithContext(ctx).Order("id asc").Find(&out).Error
	return out, err
}

// Authenticate проверяет пару email/пароль. Деактивированные не проходят.
func (s *UserStore) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrForbidden
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
		return nil, ErrNotFound
	}
	return &u, nil
}

type UpdateUserInput struct {
	FirstName  *string
	LastName   *string
	Nickname   *string
	Role       *string
	HourlyRate *float64
	IsActive   *bool
}

func (s *UserStore) Update(ctx context.Context, id uint, in UpdateUserInput) (*models.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.Nickname != nil {
		u.Nickname = *in.Nickname
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	if in.HourlyRate != nil {
		u.HourlyRate = *in.HourlyRate
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if err := s.db.WithContext(ctx).Save(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword сбрасывает флаг must_change_password.
func (s *UserStore) ChangePassword(ctx context.Context, id uint, current, next string) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(current)) != nil {
		return ErrForbidden
	}
	if next == "" {
		return ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(u).Updates(map[string]any{
		"password_hash":        hash,
		"must_change_password": false,
	}).Error
}

// HasDependents — есть ли у пользователя хоть одна строка в зависимых таблицах.
// Определяет, можно ли его жёстко удалить.
func (s *UserStore) HasDependents(ctx context.Context, id uint) (bool, error) {
	type probe struct {
		model any
		where string
		args  []any
	}
	probes := []probe{
		{&models.Task{}, "created_by_id = ? OR assignee_id = ?", []any{id, id}},
		{&models.Timesheet{}, "user_id = ?", []any{id}},
		{&models.Notification{}, "user_id = ?", []any{id}},
		{&models.ChatMessage{}, "sender_id = ? OR receiver_id = ?", []any{id, id}},
		{&models.File{}, "owner_id = ?", []any{id}},
		{&models.FileActivity{}, "user_id = ?", []any{id}},
		{&models.FilePermission{}, "grant_type = ? AND target_id = ?", []any{models.GrantUser, id}},
		{&models.CalendarEvent{}, "created_by_id = ?", []any{id}},
		{&models.CalendarEventParticipant{}, "user_id = ?", []any{id}},
		{&models.ProjectMember{}, "user_id = ?", []any{id}},
		{&models.ChatGroupMember{}, "user_id = ?", []any{id}},
		{&models.Quote{}, "created_by_id = ?", []any{id}},
	}
	for _, p := range probes {
		var n int64
		if err := s.db.WithContext(ctx).Model(p.model).Where(p.where, p.args...).Count(&n).Error; err != nil {
			return false, err
		}
		if n > 0 {
			return true, nil
		}
	}
	return false, nil
}

// Delete: без зависимостей — жёсткое удаление вместе с грантами (в транзакции),
// иначе — деактивация (is_active=false).
func (s *UserStore) Delete(ctx context.Context, id uint) (deactivated bool, err error) {
	if _, err := s.Get(ctx, id); err != nil {
		return false, err
	}
	hasDeps, err := s.HasDependents(ctx, id)
	if err != nil {
		return false, err
	}
	if hasDeps {
		err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
			Update("is_active", false).Error
		return true, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM user_permissions WHERE user_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.User{}, id).Error
	})
	return false, err
}

// SetPermissions заменяет набор грантов целиком (delete-then-insert).
func (s *UserStore) SetPermissions(ctx context.Context, userID uint, names []string) error {
	if _, err := s.Get(ctx, userID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM user_permissions WHERE user_id = ?", userID).Error; err != nil {
			return err
		}
		for _, name := range names {
			var p models.Permission
			err := tx.Where("name = ?", name).First(&p).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidInput
			}
			if err != nil {
				return err
			}
			if err := tx.Exec("INSERT INTO user_permissions (user_id, permission_id) VALUES (?, ?)",
				userID, p.ID).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SeedPermissions наполняет каталог прав (идемпотентно).
func (s *UserStore) SeedPermissions(ctx context.Context) error {
	for _, name := range models.PermissionCatalog() {
		var p models.Permission
		err := s.db.WithContext(ctx).Where("name = ?", name).First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := s.db.WithContext(ctx).Create(&models.Permission{Name: name}).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
