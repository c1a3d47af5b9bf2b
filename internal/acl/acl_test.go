package acl_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/evocms-community/evo-authz/internal/acl"
	"github.com/evocms-community/evo-authz/internal/db/dbtest"
	"github.com/evocms-community/evo-authz/internal/db/models"
)

// seedTree creates:
//   - user 20 in member group 3, user 21 in no group
//   - document groups 7 and 8, member group 3 linked to 7 (manager) and 8 (web only)
//   - resource 100 in group 7, 101 in no group, 102 in group 8, 103 in groups 7 and 8
func seedTree(t *testing.T, db *gorm.DB) {
	t.Helper()

	dbtest.Seed(t, db,
		&models.User{ID: 20, Username: "alice", Password: "x"},
		&models.User{ID: 21, Username: "bob", Password: "x"},
		&models.MemberGroupName{ID: 3, Name: "Editors"},
		&models.DocumentGroupName{ID: 7, Name: "News"},
		&models.DocumentGroupName{ID: 8, Name: "Members area"},
		&models.MemberGroup{UserGroup: 3, Member: 20},
		&models.MemberGroupAccess{MemberGroup: 3, DocumentGroup: 7, Context: models.ContextManager},
		&models.MemberGroupAccess{MemberGroup: 3, DocumentGroup: 8, Context: models.ContextWeb},
		&models.Resource{ID: 100, Pagetitle: "News"},
		&models.Resource{ID: 101, Pagetitle: "Home"},
		&models.Resource{ID: 102, Pagetitle: "Members"},
		&models.Resource{ID: 103, Pagetitle: "Both"},
		&models.DocumentGroup{DocumentGroup: 7, Document: 100},
		&models.DocumentGroup{DocumentGroup: 8, Document: 102},
		&models.DocumentGroup{DocumentGroup: 7, Document: 103},
		&models.DocumentGroup{DocumentGroup: 8, Document: 103},
	)
}

func TestGroupsForUser(t *testing.T) {
	db := dbtest.Open(t)
	seedTree(t, db)

	svc := acl.NewService(db)
	ctx := context.Background()

	groups, err := svc.GroupsForUser(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, []uint{7}, groups, "web-context access must not count")

	groups, err = svc.GroupsForUser(ctx, 21)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestGroupsForUserNeedsAccessRow(t *testing.T) {
	db := dbtest.Open(t)

	dbtest.Seed(t, db,
		&models.User{ID: 20, Username: "alice", Password: "x"},
		&models.MemberGroupName{ID: 3, Name: "Editors"},
		&models.DocumentGroupName{ID: 7, Name: "News"},
		&models.MemberGroup{UserGroup: 3, Member: 20},
	)

	svc := acl.NewService(db)
	ctx := context.Background()

	groups, err := svc.GroupsForUser(ctx, 20)
	require.NoError(t, err)
	assert.NotContains(t, groups, uint(7))

	dbtest.Seed(t, db, &models.MemberGroupAccess{MemberGroup: 3, DocumentGroup: 7})

	groups, err = svc.GroupsForUser(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, []uint{7}, groups)
}

func TestIsResourceVisible(t *testing.T) {
	db := dbtest.Open(t)
	seedTree(t, db)

	svc := acl.NewService(db)

	tests := []struct {
		name     string
		resource uint64
		allowed  []uint
		want     bool
	}{
		{name: "unrestricted resource, no groups", resource: 101, allowed: nil, want: true},
		{name: "unrestricted resource, some groups", resource: 101, allowed: []uint{7}, want: true},
		{name: "unknown resource has no groups", resource: 999, allowed: nil, want: true},
		{name: "restricted, group held", resource: 100, allowed: []uint{7}, want: true},
		{name: "restricted, group missing", resource: 100, allowed: []uint{8}, want: false},
		{name: "restricted, nothing held", resource: 100, allowed: nil, want: false},
		{name: "two groups, one held", resource: 103, allowed: []uint{8}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.IsResourceVisible(context.Background(), tt.resource, tt.allowed)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVisible(t *testing.T) {
	assert.True(t, acl.Visible(nil, nil))
	assert.True(t, acl.Visible([]uint{}, []uint{1}))
	assert.True(t, acl.Visible([]uint{1, 2}, []uint{2}))
	assert.False(t, acl.Visible([]uint{1, 2}, []uint{3}))
	assert.False(t, acl.Visible([]uint{1}, nil))
}

func TestFilterVisible(t *testing.T) {
	db := dbtest.Open(t)
	seedTree(t, db)

	svc := acl.NewService(db)

	tests := []struct {
		name    string
		allowed []uint
		want    []uint64
	}{
		{name: "no groups", allowed: nil, want: []uint64{101}},
		{name: "group 7", allowed: []uint{7}, want: []uint64{100, 101, 103}},
		{name: "group 8", allowed: []uint{8}, want: []uint64{101, 102, 103}},
		{name: "both", allowed: []uint{7, 8}, want: []uint64{100, 101, 102, 103}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ids []uint64

			err := db.Model(&models.Resource{}).
				Scopes(svc.FilterVisible(tt.allowed)).
				Where("deleted = ?", false).
				Order("id").
				Pluck("id", &ids).Error
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestSetResourceGroups(t *testing.T) {
	db := dbtest.Open(t)
	seedTree(t, db)

	svc := acl.NewService(db)
	ctx := context.Background()

	require.NoError(t, svc.SetResourceGroups(ctx, 101, []uint{7, 7, 0}))

	groups, err := svc.ResourceGroups(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, []uint{7}, groups)

	var res models.Resource
	require.NoError(t, db.First(&res, 101).Error)
	assert.True(t, res.PrivateMgr)

	require.NoError(t, svc.SetResourceGroups(ctx, 103, []uint{8}))

	require.NoError(t, db.First(&res, 103).Error)
	assert.False(t, res.PrivateMgr, "group 8 is only reachable from the web")

	require.NoError(t, svc.SetResourceGroups(ctx, 100, nil))

	groups, err = svc.ResourceGroups(ctx, 100)
	require.NoError(t, err)
	assert.Empty(t, groups)

	visible, err := svc.IsResourceVisible(ctx, 100, nil)
	require.NoError(t, err)
	assert.True(t, visible)

	err = svc.SetResourceGroups(ctx, 999, []uint{7})
	require.ErrorIs(t, err, acl.ErrResourceNotFound)
}

func TestSetUserGroups(t *testing.T) {
	db := dbtest.Open(t)
	seedTree(t, db)

	svc := acl.NewService(db)
	ctx := context.Background()

	require.NoError(t, svc.SetUserGroups(ctx, 21, []uint{3}))

	groups, err := svc.GroupsForUser(ctx, 21)
	require.NoError(t, err)
	assert.Equal(t, []uint{7}, groups)

	members, err := svc.UserGroups(ctx, 21)
	require.NoError(t, err)
	assert.Equal(t, []uint{3}, members)

	require.NoError(t, svc.SetUserGroups(ctx, 20, nil))

	groups, err = svc.GroupsForUser(ctx, 20)
	require.NoError(t, err)
	assert.Empty(t, groups)
}
