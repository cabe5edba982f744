package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keel/internal/models"
)

func TestUserCreateAndAuthenticate(t *testing.T) {
	db := testDB(t)
	store := NewUserStore(db)
	ctx := context.Background()

	u, err := store.Create(ctx, CreateUserInput{
		Email:    "  Alice@Example.COM ",
		Password: "hunter22",
	})
	require.NoError(t, err)
	// email нормализуется
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, models.RoleEmployee, u.Role)
	assert.True(t, u.IsActive)

	got, err := store.Authenticate(ctx, "ALICE@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = store.Authenticate(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Authenticate(ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrNotFound)

	// дубликат email — конфликт
	_, err = store.Create(ctx, CreateUserInput{Email: "alice@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = store.Create(ctx, CreateUserInput{Email: "", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeactivatedUserCannotAuthenticate(t *testing.T) {
	db := testDB(t)
	store := NewUserStore(db)
	ctx := context.Background()

	u := seedUser(t, db, "gone@example.com")
	off := false
	_, err := store.Update(ctx, u.ID, UpdateUserInput{IsActive: &off})
	require.NoError(t, err)

	_, err = store.Authenticate(ctx, "gone@example.com", "secret123")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUserDeleteHardVsDeactivate(t *testing.T) {
	db := testDB(t)
	store := NewUserStore(db)
	ctx := context.Background()

	// нет зависимостей — жёсткое удаление
	clean := seedUser(t, db, "clean@example.com")
	deactivated, err := store.Delete(ctx, clean.ID)
	require.NoError(t, err)
	assert.False(t, deactivated)
	_, err = store.Get(ctx, clean.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	var n int64
	require.NoError(t, db.Unscoped().Model(&models.User{}).Where("id = ?", clean.ID).Count(&n).Error)
	assert.Zero(t, n)

	// есть таймшит — только деактивация
	busy := seedUser(t, db, "busy@example.com")
	task := seedTask(t, db, busy.ID, &busy.ID)
	_, err = NewTimesheetStore(db).ManualEntry(ctx, busy.ID, ManualEntryInput{TaskID: task.ID, Duration: 30}, false)
	require.NoError(t, err)

	deactivated, err = store.Delete(ctx, busy.ID)
	require.NoError(t, err)
	assert.True(t, deactivated)
	got, err := store.Get(ctx, busy.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = store.Delete(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserDeleteKeepsAuditReferences(t *testing.T) {
	db := testDB(t)
	store := NewUserStore(db)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com")
	f := seedFile(t, NewFileStore(db), owner.ID, "report")

	// единственная зависимость — запись аудита файла
	auditor := seedUser(t, db, "auditor@example.com")
	require.NoError(t, db.Create(&models.FileActivity{
		FileID: f.ID, UserID: auditor.ID, Action: "view",
	}).Error)

	deactivated, err := store.Delete(ctx, auditor.ID)
	require.NoError(t, err)
	assert.True(t, deactivated)
	got, err := store.Get(ctx, auditor.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	// единственная зависимость — персональный грант на чужой файл
	grantee := seedUser(t, db, "grantee@example.com")
	require.NoError(t, db.Create(&models.FilePermission{
		FileID: f.ID, GrantType: models.GrantUser, TargetID: &grantee.ID, CanRead: true,
	}).Error)

	deactivated, err = store.Delete(ctx, grantee.ID)
	require.NoError(t, err)
	assert.True(t, deactivated)
}

func TestUserChangePassword(t *testing.T) {
	db := testDB(t)
	store := NewUserStore(db)
	ctx := context.Background()

	u := seedUser(t, db, "pw@example.com")
	require.NoError(t, db.Model(u).Update("must_change_password", true).Error)

	assert.ErrorIs(t, store.ChangePassword(ctx, u.ID, "wrong", "next123"), ErrForbidden)
	assert.ErrorIs(t, store.ChangePassword(ctx, u.ID, "secret123", ""), ErrInvalidInput)

	require.NoError(t, store.ChangePassword(ctx, u.ID, "secret123", "next123"))
	got, err := store.Authenticate(ctx, "pw@example.com", "next123")
	require.NoError(t, err)
	// смена пароля гасит одноразовый флаг
	assert.False(t, got.MustChangePassword)
}

func TestUserPermissions(t *testing.T) {
	db := testDB(t)
	store := NewUserStore(db)
	ctx := context.Background()
	require.NoError(t, store.SeedPermissions(ctx))
	// сидирование идемпотентно
	require.NoError(t, store.SeedPermissions(ctx))

	u := seedUser(t, db, "perms@example.com")
	require.NoError(t, store.SetPermissions(ctx, u.ID, []string{models.PermUseChat, models.PermManageTasks}))

	got, err := store.GetWithPermissions(ctx, u.ID)
	require.NoError(t, err)
	names := make([]string, 0, len(got.Permissions))
	for _, p := range got.Permissions {
		names = append(names, p.Name)
	}
	assert.ElementsMatch(t, []string{models.PermUseChat, models.PermManageTasks}, names)

	// замена целиком, не дозапись
	require.NoError(t, store.SetPermissions(ctx, u.ID, []string{models.PermUseFiles}))
	got, err = store.GetWithPermissions(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, got.Permissions, 1)
	assert.Equal(t, models.PermUseFiles, got.Permissions[0].Name)

	// неизвестное право откатывает всю транзакцию
	err = store.SetPermissions(ctx, u.ID, []string{models.PermUseChat, "no_such_right"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	got, err = store.GetWithPermissions(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, got.Permissions, 1)
	assert.Equal(t, models.PermUseFiles, got.Permissions[0].Name)
}
