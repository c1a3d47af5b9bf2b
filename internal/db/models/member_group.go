package models

// Access contexts of membergroup_access rows.
const (
	ContextManager = 0
	ContextWeb     = 1
)

// MemberGroupName is a named group of manager users.
type MemberGroupName struct {
	// ID is the unique identifier for the group.
	ID uint `gorm:"primaryKey" json:"id"`
	// Name is the unique group name.
	Name string `gorm:"uniqueIndex;size:191;not null" json:"name"`
}

// TableName specifies the database table name for the MemberGroupName model.
func (MemberGroupName) TableName() string {
	return "membergroup_names"
}

// MemberGroup puts one user into one member group.
type MemberGroup struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// UserGroup is the membergroup_names.id.
	UserGroup uint `gorm:"column:user_group;not null;uniqueIndex:idx_member_group" json:"userGroup"`
	// Member is the users.id.
	Member uint64 `gorm:"column:member;not null;uniqueIndex:idx_member_group;index" json:"member"`
}

// TableName specifies the database table name for the MemberGroup model.
func (MemberGroup) TableName() string {
	return "member_groups"
}

// MemberGroupAccess lets a member group reach a document group.
type MemberGroupAccess struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// MemberGroup is the membergroup_names.id.
	MemberGroup uint `gorm:"column:membergroup;not null;uniqueIndex:idx_membergroup_access" json:"membergroup"`
	// DocumentGroup is the documentgroup_names.id.
	DocumentGroup uint `gorm:"column:documentgroup;not null;uniqueIndex:idx_membergroup_access" json:"documentgroup"`
	// Context is ContextManager or ContextWeb.
	Context int `gorm:"column:context;not null;default:0;uniqueIndex:idx_membergroup_access" json:"context"`
}

// TableName specifies the database table name for the MemberGroupAccess model.
func (MemberGroupAccess) TableName() string {
	return "membergroup_access"
}
