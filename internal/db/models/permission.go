package models

import "time"

// Permission is one entry of the permission catalog.
// Roles reference a permission by its Key, never by ID.
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint `gorm:"primaryKey" json:"id"`
	// Name is the human readable label shown in the role editor.
	Name string `gorm:"size:255;not null" json:"name"`
	// Key is the permission key checked by the route registry (e.g. "edit_template").
	Key string `gorm:"column:key;uniqueIndex;size:191;not null" json:"key"`
	// LangKey is the translation key of the label.
	LangKey string `gorm:"size:255" json:"langKey"`
	// GroupID links the permission to its catalog group.
	GroupID uint `gorm:"column:group_id;index" json:"groupId"`
	// Disabled permissions are kept in the catalog but never granted.
	Disabled bool `gorm:"not null;default:false" json:"disabled"`
	// CreatedAt is the timestamp when the permission was created (managed by GORM).
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the timestamp when the permission was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the database table name for the Permission model.
// This overrides GORM's default pluralized table naming.
func (Permission) TableName() string {
	return "permissions"
}
