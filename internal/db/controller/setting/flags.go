package setting

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// DefaultRowLevelSetting is the name of the document-group switch.
const DefaultRowLevelSetting = "use_udperms"

// Flags reads boolean switches from system_settings.
type Flags struct {
	db          *gorm.DB
	rowLevelKey string
}

// NewFlags creates a flag reader. An empty rowLevelKey falls back to DefaultRowLevelSetting.
func NewFlags(db *gorm.DB, rowLevelKey string) *Flags {
	if rowLevelKey == "" {
		rowLevelKey = DefaultRowLevelSetting
	}

	return &Flags{db: db, rowLevelKey: rowLevelKey}
}

// UseRowLevel reports whether document-group permissions are enabled.
// A missing setting means disabled.
func (f *Flags) UseRowLevel(ctx context.Context) (bool, error) {
	return f.Bool(ctx, f.rowLevelKey)
}

// Bool reads name as a flag. Only "1" and "true" are enabled.
func (f *Flags) Bool(ctx context.Context, name string) (bool, error) {
	if f == nil || f.db == nil {
		return false, ErrDBNil
	}

	s, err := Get(f.db.WithContext(ctx), name)
	if errors.Is(err, ErrSettingNotFound) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to read setting %s: %w", name, err)
	}

	switch strings.TrimSpace(strings.ToLower(s.Value)) {
	case "1", "true":
		return true, nil
	default:
		return false, nil
	}
}
