package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// MinDisplayNameLength is the shortest display name a player may choose.
const MinDisplayNameLength = 3

// Profile is the public face of an account. UserID equals the account id.
type Profile struct {
	UserID               string    `json:"user_id" gorm:"primaryKey;type:varchar(36)"`
	DisplayName          string    `json:"display_name" gorm:"not null"`
	DisplayNameKey       string    `json:"-" gorm:"uniqueIndex;not null"` // lower-cased DisplayName
	AlertOwnCandidates   bool      `json:"alert_mes_candidats" gorm:"not null"`
	AlertOtherCandidates bool      `json:"alert_autres_candidats" gorm:"not null"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// NormalizeDisplayName returns the key display names are compared by.
func NormalizeDisplayName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (p *Profile) BeforeSave(tx *gorm.DB) error {
	p.DisplayName = strings.TrimSpace(p.DisplayName)
	p.DisplayNameKey = NormalizeDisplayName(p.DisplayName)
	return nil
}
