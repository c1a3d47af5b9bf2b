package models

import "time"

// UserAttributes holds the profile and role of a manager user.
// A user without an attributes row has no role.
type UserAttributes struct {
	// ID is the unique identifier for the row.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// InternalKey is the users.id this row belongs to.
	InternalKey uint64 `gorm:"column:internal_key;uniqueIndex;not null" json:"internalKey"`
	// Fullname is the display name.
	Fullname string `gorm:"size:100" json:"fullname"`
	// Email is the user's email address.
	Email string `gorm:"size:191" json:"email"`
	// Role is the user_roles.id of the user. Zero means no role.
	Role uint `gorm:"column:role;not null;default:0;index" json:"role"`
	// Blocked users can not log in.
	Blocked bool `gorm:"not null;default:false" json:"blocked"`
	// LoginCount counts successful logins.
	LoginCount int `gorm:"column:logincount;not null;default:0" json:"loginCount"`
	// LastLogin is the time of the last successful login.
	LastLogin *time.Time `gorm:"column:lastlogin" json:"lastLogin"`
	// CreatedAt is the timestamp when the row was created (managed by GORM).
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the timestamp when the row was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the database table name for the UserAttributes model.
func (UserAttributes) TableName() string {
	return "user_attributes"
}
