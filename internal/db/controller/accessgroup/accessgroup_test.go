package accessgroup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/evocms-community/evo-authz/internal/db/dbtest"
	"github.com/evocms-community/evo-authz/internal/db/models"
)

func resource(t *testing.T, db *gorm.DB, id uint64) models.Resource {
	t.Helper()

	var r models.Resource
	require.NoError(t, db.First(&r, id).Error)

	return r
}

func TestDocumentGroups(t *testing.T) {
	db := dbtest.Open(t)

	news, err := CreateDocumentGroup(db, "News")
	require.NoError(t, err)

	_, err = CreateDocumentGroup(db, "News")
	require.ErrorIs(t, err, ErrGroupAlreadyExists)

	_, err = CreateDocumentGroup(db, "")
	require.ErrorIs(t, err, ErrNameEmpty)

	_, err = CreateDocumentGroup(nil, "x")
	require.ErrorIs(t, err, ErrDBNil)

	// member and document groups have separate name spaces
	_, err = CreateMemberGroup(db, "News")
	require.NoError(t, err)

	news, err = RenameDocumentGroup(db, news.ID, "Press")
	require.NoError(t, err)
	assert.Equal(t, "Press", news.Name)

	_, err = RenameDocumentGroup(db, 99, "Ghost")
	require.ErrorIs(t, err, ErrDocumentGroupNotFound)

	groups, err := ListDocumentGroups(db)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Press", groups[0].Name)
}

func TestMemberGroups(t *testing.T) {
	db := dbtest.Open(t)

	g, err := CreateMemberGroup(db, "Editors")
	require.NoError(t, err)

	_, err = CreateMemberGroup(db, "Editors")
	require.ErrorIs(t, err, ErrGroupAlreadyExists)

	g, err = RenameMemberGroup(db, g.ID, "Writers")
	require.NoError(t, err)
	assert.Equal(t, "Writers", g.Name)

	_, err = GetMemberGroup(db, 99)
	require.ErrorIs(t, err, ErrMemberGroupNotFound)

	groups, err := ListMemberGroups(db)
	require.NoError(t, err)
	assert.Len(t, groups, 1)
}

func TestLinkUnlink(t *testing.T) {
	db := dbtest.Open(t)

	dbtest.Seed(t, db,
		&models.MemberGroupName{ID: 3, Name: "Editors"},
		&models.DocumentGroupName{ID: 7, Name: "News"},
		&models.Resource{ID: 100, Pagetitle: "News"},
		&models.Resource{ID: 101, Pagetitle: "Home"},
		&models.DocumentGroup{DocumentGroup: 7, Document: 100},
	)

	_, err := Link(db, 3, 7, 5)
	require.ErrorIs(t, err, ErrInvalidContext)

	_, err = Link(db, 9, 7, models.ContextManager)
	require.ErrorIs(t, err, ErrMemberGroupNotFound)

	_, err = Link(db, 3, 9, models.ContextManager)
	require.ErrorIs(t, err, ErrDocumentGroupNotFound)

	rel, err := Link(db, 3, 7, models.ContextManager)
	require.NoError(t, err)
	assert.NotZero(t, rel.ID)

	_, err = Link(db, 3, 7, models.ContextManager)
	require.ErrorIs(t, err, ErrRelationExists)

	dg, err := GetDocumentGroup(db, 7)
	require.NoError(t, err)
	assert.True(t, dg.PrivateMemgroup)
	assert.False(t, dg.PrivateWebgroup)

	assert.True(t, resource(t, db, 100).PrivateMgr)
	assert.False(t, resource(t, db, 100).PrivateWeb)
	assert.False(t, resource(t, db, 101).PrivateMgr, "resources outside the group are untouched")

	webRel, err := Link(db, 3, 7, models.ContextWeb)
	require.NoError(t, err)
	assert.True(t, resource(t, db, 100).PrivateWeb)

	relations, err := ListRelations(db)
	require.NoError(t, err)
	require.Len(t, relations, 2)
	assert.Equal(t, "Editors", relations[0].MemberGroupName)
	assert.Equal(t, "News", relations[0].DocumentGroupName)
	assert.Equal(t, uint(3), relations[0].MemberGroupID)
	assert.Equal(t, uint(7), relations[0].DocumentGroupID)

	require.NoError(t, Unlink(db, rel.ID))
	assert.False(t, resource(t, db, 100).PrivateMgr)
	assert.True(t, resource(t, db, 100).PrivateWeb)

	require.ErrorIs(t, Unlink(db, rel.ID), ErrRelationNotFound)

	require.NoError(t, Unlink(db, webRel.ID))

	dg, err = GetDocumentGroup(db, 7)
	require.NoError(t, err)
	assert.False(t, dg.PrivateMemgroup)
	assert.False(t, dg.PrivateWebgroup)
}

func TestDeleteCascades(t *testing.T) {
	db := dbtest.Open(t)

	dbtest.Seed(t, db,
		&models.User{ID: 20, Username: "alice", Password: "x"},
		&models.MemberGroupName{ID: 3, Name: "Editors"},
		&models.DocumentGroupName{ID: 7, Name: "News"},
		&models.DocumentGroupName{ID: 8, Name: "Archive"},
		&models.Resource{ID: 100, Pagetitle: "News"},
		&models.Resource{ID: 101, Pagetitle: "Old news"},
		&models.DocumentGroup{DocumentGroup: 7, Document: 100},
		&models.DocumentGroup{DocumentGroup: 8, Document: 100},
		&models.DocumentGroup{DocumentGroup: 7, Document: 101},
		&models.MemberGroup{UserGroup: 3, Member: 20},
	)

	_, err := Link(db, 3, 7, models.ContextManager)
	require.NoError(t, err)

	_, err = Link(db, 3, 8, models.ContextManager)
	require.NoError(t, err)
	assert.True(t, resource(t, db, 101).PrivateMgr)

	require.NoError(t, DeleteDocumentGroup(db, 7))
	assert.False(t, resource(t, db, 101).PrivateMgr)
	assert.True(t, resource(t, db, 100).PrivateMgr, "still reachable through group 8")
	require.ErrorIs(t, DeleteDocumentGroup(db, 7), ErrDocumentGroupNotFound)

	var count int64
	require.NoError(t, db.Model(&models.DocumentGroup{}).Where("document_group = ?", 7).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.MemberGroupAccess{}).Where("documentgroup = ?", 7).Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, DeleteMemberGroup(db, 3))

	require.NoError(t, db.Model(&models.MemberGroup{}).Where("user_group = ?", 3).Count(&count).Error)
	assert.Zero(t, count)

	dg, err := GetDocumentGroup(db, 8)
	require.NoError(t, err)
	assert.False(t, dg.PrivateMemgroup)
	assert.False(t, resource(t, db, 100).PrivateMgr)
}
