// Package files: дисковое хранилище и разрешение доступа к файлам.
package files

import (
	"context"

	"keel/internal/models"
)

// Membership — членство пользователя в проекте (закрывает repo.ProjectStore).
type Membership interface {
	IsMember(ctx context.Context, projectID, userID uint) (bool, error)
}

// CheckPermission решает, можно ли пользователю action над файлом.
// Владелец может всё. Иначе подходит любой грант с истинным флагом действия:
// персональный, публичный, либо project/team через членство (team требует
// собственного target_id с проектом; team без target_id не матчит никого).
// Ни одного подходящего гранта — отказ.
func CheckPermission(ctx context.Context, f *models.File, grants []models.FilePermission, userID uint, action string, members Membership) (bool, error) {
	if f.OwnerID == userID {
		return true, nil
	}
	for _, g := range grants {
		ok, err := grantMatches(ctx, g, userID, members)
		if err != nil {
			return false, err
		}
		if !ok {
			continue
		}
		if actionAllowed(g, action) {
			return true, nil
		}
	}
	return false, nil
}

func grantMatches(ctx context.Context, g models.FilePermission, userID uint, members Membership) (bool, error) {
	switch g.GrantType {
	case models.GrantPublic:
		return true, nil
	case models.GrantUser:
		return g.TargetID != nil && *g.TargetID == userID, nil
	case models.GrantProject, models.GrantTeam:
		if g.TargetID == nil {
			return false, nil
		}
		return members.IsMember(ctx, *g.TargetID, userID)
	}
	return false, nil
}

func actionAllowed(g models.FilePermission, action string) bool {
	switch action {
	case models.FileActionRead:
		return g.CanRead
	case models.FileActionWrite:
		return g.CanWrite
	case models.FileActionDelete:
		return g.CanDelete
	}
	return false
}
