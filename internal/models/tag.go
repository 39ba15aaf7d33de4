package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag color ordinals
const (
	DefaultTagColor = 1
	MaxTagColor     = 12
)

// Tag is a user-owned label. UsageCount mirrors the number of link records holding its ID.
type Tag struct {
	ID         string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID     string    `gorm:"type:char(36);not null;uniqueIndex:idx_tag_user_name,priority:1" json:"-"`
	Name       string    `gorm:"size:100;not null;uniqueIndex:idx_tag_user_name,priority:2" json:"name"`
	UsageCount int64     `gorm:"not null;default:0" json:"usageCount"`
	Color      int       `gorm:"not null;default:1" json:"color"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// FictionTagLink holds the tag set of one fiction
type FictionTagLink struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	UserID    string    `gorm:"type:char(36);not null;uniqueIndex:idx_link_user_fiction,priority:1"`
	FictionID string    `gorm:"type:char(36);not null;uniqueIndex:idx_link_user_fiction,priority:2"`
	Tags      TagIDs    `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the table name for Tag
func (Tag) TableName() string {
	return "tags"
}

// TableName overrides the table name for FictionTagLink
func (FictionTagLink) TableName() string {
	return "user_fiction_tags"
}

// BeforeCreate assigns a new ID
func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// BeforeCreate assigns a new ID
func (l *FictionTagLink) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
