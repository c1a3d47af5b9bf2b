package models

// DocumentGroupName is a named group of resources.
type DocumentGroupName struct {
	// ID is the unique identifier for the group.
	ID uint `gorm:"primaryKey" json:"id"`
	// Name is the unique group name.
	Name string `gorm:"uniqueIndex;size:191;not null" json:"name"`
	// PrivateMemgroup is set while a manager member group has access to the group.
	PrivateMemgroup bool `gorm:"column:private_memgroup;not null;default:false" json:"privateMemgroup"`
	// PrivateWebgroup is set while a web group has access to the group.
	PrivateWebgroup bool `gorm:"column:private_webgroup;not null;default:false" json:"privateWebgroup"`
}

// TableName specifies the database table name for the DocumentGroupName model.
func (DocumentGroupName) TableName() string {
	return "documentgroup_names"
}

// DocumentGroup places one resource in one document group.
// A resource without rows here is visible to everyone.
type DocumentGroup struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// DocumentGroup is the documentgroup_names.id.
	DocumentGroup uint `gorm:"column:document_group;not null;uniqueIndex:idx_document_group" json:"documentGroup"`
	// Document is the site_content.id.
	Document uint64 `gorm:"column:document;not null;uniqueIndex:idx_document_group;index" json:"document"`
}

// TableName specifies the database table name for the DocumentGroup model.
func (DocumentGroup) TableName() string {
	return "document_groups"
}
