package models

import "time"

// Resource is a row of the site tree. Only the columns the manager lists are mapped.
type Resource struct {
	// ID is the unique identifier for the resource.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// Pagetitle is the resource title.
	Pagetitle string `gorm:"column:pagetitle;size:255;not null" json:"pagetitle"`
	// Alias is the URL segment.
	Alias string `gorm:"column:alias;size:245" json:"alias"`
	// Parent is the parent resource id, zero for the site root.
	Parent uint64 `gorm:"column:parent;not null;default:0;index" json:"parent"`
	// IsFolder marks container resources.
	IsFolder bool `gorm:"column:isfolder;not null;default:false" json:"isfolder"`
	// Published marks resources visible on the site.
	Published bool `gorm:"column:published;not null;default:false" json:"published"`
	// Deleted marks resources in the trash.
	Deleted bool `gorm:"column:deleted;not null;default:false" json:"deleted"`
	// PrivateMgr is set while the resource sits in a document group reachable from the manager.
	PrivateMgr bool `gorm:"column:privatemgr;not null;default:false" json:"privatemgr"`
	// PrivateWeb is set while the resource sits in a document group reachable from the web.
	PrivateWeb bool `gorm:"column:privateweb;not null;default:false" json:"privateweb"`
	// MenuIndex orders siblings.
	MenuIndex int `gorm:"column:menuindex;not null;default:0" json:"menuindex"`
	// CreatedAt is the timestamp when the resource was created (managed by GORM).
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the timestamp when the resource was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the database table name for the Resource model.
func (Resource) TableName() string {
	return "site_content"
}
