package models

// All returns every model in migration order.
func All() []any {
	return []any{
		&PermissionGroup{},
		&Permission{},
		&Role{},
		&RolePermission{},
		&User{},
		&UserAttributes{},
		&DocumentGroupName{},
		&DocumentGroup{},
		&MemberGroupName{},
		&MemberGroup{},
		&MemberGroupAccess{},
		&Resource{},
		&SystemSetting{},
	}
}
