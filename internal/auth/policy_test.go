package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"keel/internal/models"
)

func identity(role string, perms ...string) *Identity {
	id := &Identity{
		User:        &models.User{ID: 7, Role: role},
		Permissions: make(map[string]bool, len(perms)),
	}
	for _, p := range perms {
		id.Permissions[p] = true
	}
	return id
}

func TestAllow(t *testing.T) {
	admin := identity(models.RoleAdmin)
	granted := identity(models.RoleEmployee, models.PermManageTasks)
	plain := identity(models.RoleEmployee)

	// админ проходит без явных грантов
	assert.True(t, Allow(admin, models.PermManageUsers))
	assert.True(t, Allow(granted, models.PermManageTasks))
	assert.False(t, Allow(granted, models.PermManageUsers))
	assert.False(t, Allow(plain, models.PermManageTasks))

	assert.False(t, Allow(nil, models.PermManageTasks))
	assert.False(t, Allow(&Identity{}, models.PermManageTasks))
}

func TestAllowSelf(t *testing.T) {
	plain := identity(models.RoleEmployee)

	// свой ресурс доступен и без гранта
	assert.True(t, AllowSelf(plain, models.PermManageUsers, plain.User.ID))
	assert.False(t, AllowSelf(plain, models.PermManageUsers, plain.User.ID+1))

	// грант открывает чужие ресурсы
	granted := identity(models.RoleEmployee, models.PermManageUsers)
	assert.True(t, AllowSelf(granted, models.PermManageUsers, 9999))

	assert.False(t, AllowSelf(nil, models.PermManageUsers, 7))
}

func TestAllowAny(t *testing.T) {
	id := identity(models.RoleEmployee, models.PermManageTimesheets)

	assert.True(t, AllowAny(id, models.PermManageTasks, models.PermManageTimesheets))
	assert.False(t, AllowAny(id, models.PermManageTasks, models.PermManageUsers))
	assert.False(t, AllowAny(id))
}
