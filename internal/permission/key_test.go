package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetHasAny(t *testing.T) {
	s := NewSet(EditTemplate, SaveTemplate)

	assert.True(t, s.HasAny(NewSet(SaveTemplate, DeleteTemplate)))
	assert.False(t, s.HasAny(NewSet(DeleteTemplate)))
	assert.False(t, s.HasAny(NewSet()), "empty requirement never matches any-of")
	assert.False(t, NewSet().HasAny(NewSet(Home)))
}

func TestSetHasAll(t *testing.T) {
	s := NewSet(EditTemplate, SaveTemplate)

	assert.True(t, s.HasAll(NewSet(EditTemplate)))
	assert.True(t, s.HasAll(NewSet()), "empty requirement always matches all-of")
	assert.False(t, s.HasAll(NewSet(EditTemplate, DeleteTemplate)))
}

func TestParseKeys(t *testing.T) {
	s := ParseKeys([]string{" edit_role ", "", "save_role", "edit_role"})

	assert.Equal(t, []string{"edit_role", "save_role"}, s.Strings())
}

func TestSetClone(t *testing.T) {
	s := NewSet(Home)
	c := s.Clone()
	c[Logs] = struct{}{}

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 2, c.Len())
}

func TestCatalogGroups(t *testing.T) {
	groups := CatalogGroups()

	assert.Equal(t, GroupSite, groups[0])
	assert.Contains(t, groups, GroupPermissions)
	assert.Len(t, groups, 12)
}

func TestCatalogLangKey(t *testing.T) {
	assert.Equal(t, "role_edit_template", CatalogEntry{Key: EditTemplate}.LangKey())
}

func TestCatalogKeys(t *testing.T) {
	keys := CatalogKeys()

	require.Len(t, keys, len(Catalog()))
	assert.Equal(t, string(Frames), keys[0])
	assert.Equal(t, len(keys), ParseKeys(keys).Len(), "catalog keys are unique")
}
