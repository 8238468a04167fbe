package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Account is the identity a player signs in with.
type Account struct {
	ID                string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email             string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash      string    `json:"-" gorm:"not null"`
	GlobalPermissions []string  `json:"global_permissions" gorm:"serializer:json"`
	Roles             []*Role   `json:"roles,omitempty" gorm:"many2many:account_roles;"`
	SessionVersion    int       `json:"-" gorm:"not null;default:1"` // bumped to revoke issued tokens
	Profile           *Profile  `json:"profile,omitempty" gorm:"foreignKey:UserID;references:ID"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.SessionVersion == 0 {
		a.SessionVersion = 1
	}
	return nil
}

// SetPassword hashes the given password and stores the hash on the account.
func (a *Account) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hashed)
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (a *Account) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

// HasGlobalPermission checks direct permissions first, then those granted by
// preloaded roles.
func (a *Account) HasGlobalPermission(permission string) bool {
	for _, p := range a.GlobalPermissions {
		if p == permission {
			return true
		}
	}
	for _, role := range a.Roles {
		if role == nil {
			continue
		}
		for _, p := range role.GlobalPermissions {
			if p == permission {
				return true
			}
		}
	}
	return false
}
