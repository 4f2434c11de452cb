package models

// Core returns the identity, RBAC and logging models.
func Core() []interface{} {
	return []interface{}{
		&User{},
		&RefreshToken{},
		&Role{},
		&Permission{},
		&UserRole{},
		&RolePermission{},
		&Notification{},
		&SystemLog{},
	}
}
