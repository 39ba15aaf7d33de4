package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reading statuses
const (
	ReadingToRead   = "to-read"
	ReadingReading  = "reading"
	ReadingFinished = "finished"
)

// Story statuses
const (
	StoryInProgress = "in-progress"
	StoryCompleted  = "completed"
	StoryOneShot    = "one-shot"
	StoryAbandoned  = "abandoned"
)

// ReadingStatuses lists every accepted reading status
var ReadingStatuses = []string{ReadingToRead, ReadingReading, ReadingFinished}

// Language is a derived dimension stored inline on each fiction
type Language struct {
	Name     string `gorm:"size:100;index:idx_fiction_user_language,priority:2"`
	Position int
}

// Rate is the user rating, Value in [0, 5]
type Rate struct {
	Value   float64 `gorm:"not null;default:0;index:idx_fiction_user_rate,priority:2"`
	Display bool    `gorm:"not null;default:false"`
}

// Fiction is the tracked story. FandomID is nil once its fandom was detached.
type Fiction struct {
	ID               string     `gorm:"type:char(36);primaryKey"`
	UserID           string     `gorm:"type:char(36);not null;index:idx_fiction_listing,priority:1;index:idx_fiction_user_fandom,priority:1;index:idx_fiction_user_author,priority:1;index:idx_fiction_user_title,priority:1;index:idx_fiction_user_created,priority:1;index:idx_fiction_user_rate,priority:1;index:idx_fiction_user_language,priority:1"`
	FandomID         *string    `gorm:"type:char(36);index:idx_fiction_listing,priority:3;index:idx_fiction_user_fandom,priority:2"`
	Title            string     `gorm:"size:512;not null;index:idx_fiction_user_title,priority:2"`
	Link             string     `gorm:"size:2048"`
	Summary          string     `gorm:"type:text"`
	PersonalNotes    string     `gorm:"type:text"`
	Author           string     `gorm:"size:255;index:idx_fiction_user_author,priority:2"`
	Language         Language   `gorm:"embedded;embeddedPrefix:language_"`
	Rate             Rate       `gorm:"embedded;embeddedPrefix:rate_"`
	NumberOfWords    uint64     `gorm:"not null;default:0"`
	NumberOfChapters uint64     `gorm:"not null;default:0"`
	LastChapterRead  uint64     `gorm:"not null;default:0"`
	ReadingStatus    string     `gorm:"size:16;not null;index:idx_fiction_listing,priority:2"`
	StoryStatus      string     `gorm:"size:16"`
	LastReadAt       *time.Time `gorm:"index:idx_fiction_listing,priority:4,sort:desc"`
	Image            string     `gorm:"size:2048"`
	CreatedAt        time.Time  `gorm:"index:idx_fiction_user_created,priority:2"`
	UpdatedAt        time.Time
}

// TableName overrides the table name for Fiction
func (Fiction) TableName() string {
	return "fictions"
}

// BeforeCreate assigns a new ID
func (f *Fiction) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
