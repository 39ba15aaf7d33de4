package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Appearance modes
const (
	AppearanceLight  = "light"
	AppearanceDark   = "dark"
	AppearanceSystem = "system"
)

// Notation icons
const (
	NotationHeart   = "heart"
	NotationStar    = "star"
	NotationFlame   = "flame"
	NotationDiamond = "diamond"
)

// User is the tenant. Every other user-owned record carries its ID.
type User struct {
	ID              string     `gorm:"type:char(36);primaryKey" json:"id"`
	Username        string     `gorm:"size:255;not null;uniqueIndex:idx_user_username" json:"username"`
	Email           string     `gorm:"size:255;not null;uniqueIndex:idx_user_email" json:"email"`
	PasswordHash    string     `gorm:"size:255;not null" json:"-"`
	Token           string     `gorm:"size:64;not null;uniqueIndex:idx_user_token" json:"-"`
	AvatarURL       string     `gorm:"size:1024" json:"avatarURL"`
	ThemeID         *string    `gorm:"type:char(36)" json:"themeId"`
	AppearanceMode  string     `gorm:"size:16;not null;default:system" json:"appearanceMode"`
	NotationIcon    string     `gorm:"size:16;not null;default:heart" json:"notationIcon"`
	LastConnectedAt *time.Time `json:"lastConnectedAt"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Theme is a global display theme catalog entry
type Theme struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex:idx_theme_name" json:"name"`
	Image     string    `gorm:"size:1024" json:"image"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for Theme
func (Theme) TableName() string {
	return "themes"
}

// BeforeCreate assigns a new ID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// BeforeCreate assigns a new ID
func (t *Theme) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
