package models

import "time"

// RolePermission grants one permission key to one role.
// Permission holds the key string of the catalog entry, not its numeric ID.
type RolePermission struct {
	// ID is the unique identifier for the grant.
	ID uint `gorm:"primaryKey" json:"id"`
	// RoleID is the role receiving the permission.
	RoleID uint `gorm:"column:role_id;not null;uniqueIndex:idx_role_permission" json:"roleId"`
	// Permission is the granted permission key (permissions.key).
	Permission string `gorm:"column:permission;size:191;not null;uniqueIndex:idx_role_permission" json:"permission"`
	// CreatedAt is the timestamp when the grant was created (managed by GORM).
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the timestamp when the grant was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the database table name for the RolePermission model.
// This overrides GORM's default pluralized table naming.
func (RolePermission) TableName() string {
	return "role_permissions"
}
