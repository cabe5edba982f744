package files

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keel/internal/models"
)

// membershipMap — фейковое членство в проектах: projectID → userIDs.
type membershipMap map[uint][]uint

func (m membershipMap) IsMember(_ context.Context, projectID, userID uint) (bool, error) {
	for _, id := range m[projectID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func uptr(v uint) *uint { return &v }

func TestOwnerAlwaysAllowed(t *testing.T) {
	f := &models.File{ID: 1, OwnerID: 10}
	for _, action := range []string{models.FileActionRead, models.FileActionWrite, models.FileActionDelete} {
		ok, err := CheckPermission(context.Background(), f, nil, 10, action, membershipMap{})
		require.NoError(t, err)
		assert.True(t, ok, action)
	}
}

func TestGrantMatrix(t *testing.T) {
	ctx := context.Background()
	f := &models.File{ID: 1, OwnerID: 10}
	members := membershipMap{5: {20}}

	cases := []struct {
		name   string
		grants []models.FilePermission
		userID uint
		action string
		want   bool
	}{
		{"no grants at all", nil, 20, models.FileActionRead, false},
		{"public read",
			[]models.FilePermission{{GrantType: models.GrantPublic, CanRead: true}},
			20, models.FileActionRead, true},
		{"public read does not imply write",
			[]models.FilePermission{{GrantType: models.GrantPublic, CanRead: true}},
			20, models.FileActionWrite, false},
		{"user grant for this user",
			[]models.FilePermission{{GrantType: models.GrantUser, TargetID: uptr(20), CanWrite: true}},
			20, models.FileActionWrite, true},
		{"user grant for someone else",
			[]models.FilePermission{{GrantType: models.GrantUser, TargetID: uptr(30), CanWrite: true}},
			20, models.FileActionWrite, false},
		{"user grant without target",
			[]models.FilePermission{{GrantType: models.GrantUser, CanRead: true}},
			20, models.FileActionRead, false},
		{"project grant via membership",
			[]models.FilePermission{{GrantType: models.GrantProject, TargetID: uptr(5), CanRead: true}},
			20, models.FileActionRead, true},
		{"project grant, not a member",
			[]models.FilePermission{{GrantType: models.GrantProject, TargetID: uptr(5), CanRead: true}},
			30, models.FileActionRead, false},
		{"team grant via membership",
			[]models.FilePermission{{GrantType: models.GrantTeam, TargetID: uptr(5), CanDelete: true}},
			20, models.FileActionDelete, true},
		// team-грант без target_id не матчит никого
		{"team grant without target",
			[]models.FilePermission{{GrantType: models.GrantTeam, CanRead: true}},
			20, models.FileActionRead, false},
		{"second grant wins",
			[]models.FilePermission{
				{GrantType: models.GrantUser, TargetID: uptr(30), CanRead: true},
				{GrantType: models.GrantUser, TargetID: uptr(20), CanRead: true},
			},
			20, models.FileActionRead, true},
		{"unknown grant type",
			[]models.FilePermission{{GrantType: "everyone", CanRead: true}},
			20, models.FileActionRead, false},
		{"unknown action",
			[]models.FilePermission{{GrantType: models.GrantPublic, CanRead: true}},
			20, "execute", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ok, err := CheckPermission(ctx, f, c.grants, c.userID, c.action, members)
			require.NoError(t, err)
			assert.Equal(t, c.want, ok)
		})
	}
}
