// Package models contains the gorm models of the Evolution manager tables.
package models

// SystemSetting is one name/value pair of the system configuration.
type SystemSetting struct {
	Name  string `gorm:"column:setting_name;primaryKey;size:50" json:"name"`
	Value string `gorm:"column:setting_value;type:text" json:"value"`
}

// TableName specifies the database table name for the SystemSetting model.
func (SystemSetting) TableName() string {
	return "system_settings"
}
