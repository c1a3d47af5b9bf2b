package setting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/evocms-community/evo-authz/internal/db/dbtest"
	"github.com/evocms-community/evo-authz/internal/db/models"
)

func seedSettings(t *testing.T, db *gorm.DB, settings []models.SystemSetting) {
	t.Helper()

	for i := range settings {
		require.NoError(t, db.Create(&settings[i]).Error, "failed to seed test data")
	}
}

func TestGet(t *testing.T) {
	db := dbtest.Open(t)

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		settingName   string
		seedData      []models.SystemSetting
		expectedError error
		expectedValue string
	}{
		{
			name:          "nil database",
			dbParam:       nil,
			settingName:   "test",
			expectedError: ErrDBNil,
		},
		{
			name:          "empty name",
			dbParam:       db,
			settingName:   "",
			expectedError: ErrSettingNameEmpty,
		},
		{
			name:          "setting not found",
			dbParam:       db,
			settingName:   "nonexistent",
			expectedError: ErrSettingNotFound,
		},
		{
			name:          "successful get",
			dbParam:       db,
			settingName:   "site_name",
			seedData:      []models.SystemSetting{{Name: "site_name", Value: "My Site"}},
			expectedValue: "My Site",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.dbParam != nil {
				tc.dbParam.Exec("DELETE FROM system_settings")
			}

			if tc.seedData != nil {
				seedSettings(t, tc.dbParam, tc.seedData)
			}

			setting, err := Get(tc.dbParam, tc.settingName)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, setting)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.settingName, setting.Name)
			assert.Equal(t, tc.expectedValue, setting.Value)
		})
	}
}

func TestGetAll(t *testing.T) {
	db := dbtest.Open(t)

	_, err := GetAll(nil)
	require.ErrorIs(t, err, ErrDBNil)

	settings, err := GetAll(db)
	require.NoError(t, err)
	assert.Empty(t, settings)

	seedSettings(t, db, []models.SystemSetting{
		{Name: "use_udperms", Value: "1"},
		{Name: "site_name", Value: "My Site"},
	})

	settings, err = GetAll(db)
	require.NoError(t, err)
	require.Len(t, settings, 2)
	assert.Equal(t, "site_name", settings[0].Name)
}

func TestCreate(t *testing.T) {
	db := dbtest.Open(t)

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		settingName   string
		seedData      []models.SystemSetting
		expectedError error
	}{
		{
			name:          "nil database",
			dbParam:       nil,
			settingName:   "test",
			expectedError: ErrDBNil,
		},
		{
			name:          "empty name",
			dbParam:       db,
			settingName:   "",
			expectedError: ErrSettingNameEmpty,
		},
		{
			name:        "successful create",
			dbParam:     db,
			settingName: "new_setting",
		},
		{
			name:          "duplicate setting",
			dbParam:       db,
			settingName:   "site_name",
			seedData:      []models.SystemSetting{{Name: "site_name", Value: "My Site"}},
			expectedError: ErrSettingAlreadyExists,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.dbParam != nil {
				tc.dbParam.Exec("DELETE FROM system_settings")
			}

			if tc.seedData != nil {
				seedSettings(t, tc.dbParam, tc.seedData)
			}

			setting, err := Create(tc.dbParam, tc.settingName, "value")

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, setting)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.settingName, setting.Name)
			assert.Equal(t, "value", setting.Value)
		})
	}
}

func TestSet(t *testing.T) {
	db := dbtest.Open(t)

	s, err := Set(db, "use_udperms", "0")
	require.NoError(t, err)
	assert.Equal(t, "0", s.Value)

	s, err = Set(db, "use_udperms", "1")
	require.NoError(t, err)
	assert.Equal(t, "1", s.Value)

	var count int64
	require.NoError(t, db.Model(&models.SystemSetting{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "set is an upsert")

	_, err = Set(db, "", "1")
	require.ErrorIs(t, err, ErrSettingNameEmpty)
}

func TestSetAll(t *testing.T) {
	db := dbtest.Open(t)
	seedSettings(t, db, []models.SystemSetting{{Name: "use_udperms", Value: "0"}})

	out, err := SetAll(db, map[string]string{"use_udperms": "1", "site_name": "Evo"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "site_name", out[0].Name)
	assert.Equal(t, "1", out[1].Value)

	_, err = SetAll(db, map[string]string{"use_udperms": "0", "": "x"})
	require.ErrorIs(t, err, ErrSettingNameEmpty)

	s, err := Get(db, "use_udperms")
	require.NoError(t, err)
	assert.Equal(t, "1", s.Value, "a rejected batch writes nothing")

	_, err = SetAll(nil, nil)
	require.ErrorIs(t, err, ErrDBNil)
}

func TestFlagsUseRowLevel(t *testing.T) {
	testCases := []struct {
		name     string
		seed     []models.SystemSetting
		key      string
		expected bool
	}{
		{name: "missing setting", expected: false},
		{name: "enabled", seed: []models.SystemSetting{{Name: "use_udperms", Value: "1"}}, expected: true},
		{name: "disabled", seed: []models.SystemSetting{{Name: "use_udperms", Value: "0"}}, expected: false},
		{name: "true literal", seed: []models.SystemSetting{{Name: "use_udperms", Value: " TRUE "}}, expected: true},
		{
			name:     "custom setting name",
			seed:     []models.SystemSetting{{Name: "acl_rows", Value: "1"}, {Name: "use_udperms", Value: "0"}},
			key:      "acl_rows",
			expected: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db := dbtest.Open(t)
			seedSettings(t, db, tc.seed)

			on, err := NewFlags(db, tc.key).UseRowLevel(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.expected, on)
		})
	}

	t.Run("nil database", func(t *testing.T) {
		_, err := NewFlags(nil, "").UseRowLevel(context.Background())
		require.ErrorIs(t, err, ErrDBNil)
	})
}
