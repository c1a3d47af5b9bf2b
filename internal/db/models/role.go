package models

import "time"

// AdminRoleID is the built-in administrator role. It can not be deleted.
const AdminRoleID uint = 1

// Role is a named bundle of permission keys assigned to manager users.
// A user with role 0 has no role at all.
type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:191;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName keeps the table name of the CMS schema.
func (Role) TableName() string {
	return "user_roles"
}

// IsSystem reports whether the role is protected from deletion.
func (r Role) IsSystem() bool {
	return r.ID == AdminRoleID
}
