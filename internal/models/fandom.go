package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Fandom is a user-owned grouping dimension. Position is the 1-based creation ordinal.
type Fandom struct {
	ID             string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID         string    `gorm:"type:char(36);not null;index:idx_fandom_user_position,priority:1;uniqueIndex:idx_fandom_user_name,priority:1" json:"-"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	NormalizedName string    `gorm:"size:255;not null;uniqueIndex:idx_fandom_user_name,priority:2" json:"-"`
	Position       int       `gorm:"not null;index:idx_fandom_user_position,priority:2" json:"position"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TableName overrides the table name for Fandom
func (Fandom) TableName() string {
	return "fandoms"
}

// BeforeCreate assigns a new ID
func (f *Fandom) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
