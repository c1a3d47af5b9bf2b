// Package setting provides CRUD operations for the system_settings table.
package setting

import (
	"errors"
	"sort"

	"gorm.io/gorm"

	"github.com/evocms-community/evo-authz/internal/db/models"
)

const (
	nameQueryPattern = "setting_name = ?"
)

var (
	// ErrSettingNotFound is returned when a setting is not found.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrSettingNameEmpty is returned when attempting to create/update a setting with an empty name.
	ErrSettingNameEmpty = errors.New("setting name cannot be empty")
	// ErrSettingAlreadyExists is returned when attempting to create a setting that already exists.
	ErrSettingAlreadyExists = errors.New("setting already exists")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a setting by its name.
func Get(db *gorm.DB, name string) (*models.SystemSetting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrSettingNameEmpty
	}

	var setting models.SystemSetting

	if err := db.Where(nameQueryPattern, name).First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}

		return nil, err
	}

	return &setting, nil
}

// GetAll retrieves all settings ordered by name.
func GetAll(db *gorm.DB) ([]models.SystemSetting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var settings []models.SystemSetting
	if err := db.Order("setting_name").Find(&settings).Error; err != nil {
		return nil, err
	}

	return settings, nil
}

// Create creates a new setting.
func Create(db *gorm.DB, name, value string) (*models.SystemSetting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrSettingNameEmpty
	}

	var existing models.SystemSetting

	err := db.Where(nameQueryPattern, name).First(&existing).Error
	if err == nil {
		return nil, ErrSettingAlreadyExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	setting := &models.SystemSetting{Name: name, Value: value}
	if err = db.Create(setting).Error; err != nil {
		return nil, err
	}

	return setting, nil
}

// Set creates or updates a setting by name.
func Set(db *gorm.DB, name, value string) (*models.SystemSetting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrSettingNameEmpty
	}

	var setting models.SystemSetting

	err := db.Where(nameQueryPattern, name).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Create(db, name, value)
	}

	if err != nil {
		return nil, err
	}

	setting.Value = value
	if err = db.Save(&setting).Error; err != nil {
		return nil, err
	}

	return &setting, nil
}

// SetAll upserts every name/value pair in one transaction and returns the
// stored settings ordered by name.
func SetAll(db *gorm.DB, values map[string]string) ([]models.SystemSetting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}

	sort.Strings(names)

	out := make([]models.SystemSetting, 0, len(names))

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, name := range names {
			s, err := Set(tx, name, values[name])
			if err != nil {
				return err
			}

			out = append(out, *s)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}
