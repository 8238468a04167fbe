package models

import "time"

// AdminRoleName is the role granted every defined permission on startup.
const AdminRoleName = "Administrateur"

// Role bundles global permissions that can be assigned to accounts.
type Role struct {
	ID                uint       `json:"id" gorm:"primaryKey"`
	Name              string     `json:"name" gorm:"uniqueIndex;not null"`
	GlobalPermissions []string   `json:"global_permissions" gorm:"serializer:json"`
	Accounts          []*Account `json:"-" gorm:"many2many:account_roles;"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// AccountRole is the join table between accounts and roles.
type AccountRole struct {
	AccountID string    `json:"account_id" gorm:"primaryKey;type:varchar(36)"`
	RoleID    uint      `json:"role_id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
}

func (AccountRole) TableName() string {
	return "account_roles"
}
