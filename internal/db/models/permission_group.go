package models

import "time"

// PermissionGroup groups catalog entries in the role editor.
type PermissionGroup struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:191;not null" json:"name"`
	LangKey   string    `gorm:"size:255" json:"langKey"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the database table name for the PermissionGroup model.
func (PermissionGroup) TableName() string {
	return "permissions_groups"
}
