package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrDeathBeforeBirth is returned when a candidate would be saved with a death
// date earlier than its birth date.
var ErrDeathBeforeBirth = errors.New("death date precedes birth date")

// Candidate is a public figure players can pick. A nil DeathDate means the
// person is alive; once set it is never cleared.
type Candidate struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Name        string     `json:"name" gorm:"not null"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	DeathDate   *time.Time `json:"death_date,omitempty" gorm:"index"`
	Description string     `json:"description"`
	Photo       string     `json:"photo"`
	ExternalID  string     `json:"external_id" gorm:"uniqueIndex;not null"` // wikidata Q-id
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (c *Candidate) IsDeceased() bool {
	return c.DeathDate != nil
}

// BeforeSave rejects a death date earlier than the birth date.
func (c *Candidate) BeforeSave(tx *gorm.DB) error {
	if c.BirthDate != nil && c.DeathDate != nil && c.DeathDate.Before(*c.BirthDate) {
		return ErrDeathBeforeBirth
	}
	return nil
}
