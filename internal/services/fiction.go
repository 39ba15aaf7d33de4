package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/localnerve/fictiondb/internal/metrics"
	"github.com/localnerve/fictiondb/internal/models"
	"github.com/localnerve/fictiondb/internal/types"
	"gorm.io/gorm"
)

// RateInput is the rating part of a fiction write
type RateInput struct {
	Value   float64 `json:"value" validate:"gte=0,lte=5"`
	Display bool    `json:"display"`
}

// FictionInput is the payload for creating a fiction.
// Tags holds existing tag ids, TagNames holds labels that are created on demand.
type FictionInput struct {
	Title            string                 `json:"title" validate:"required,max=512"`
	FandomName       string                 `json:"fandomName" validate:"required,max=255"`
	LanguageName     string                 `json:"languageName" validate:"max=100"`
	LangName         string                 `json:"langName" validate:"max=100"`
	Link             string                 `json:"link" validate:"max=2048"`
	Summary          string                 `json:"summary"`
	PersonalNotes    string                 `json:"personalNotes"`
	Author           string                 `json:"author" validate:"max=255"`
	NumberOfWords    types.FlexUint64       `json:"numberOfWords"`
	NumberOfChapters types.FlexUint64       `json:"numberOfChapters"`
	LastChapterRead  types.FlexUint64       `json:"lastChapterRead"`
	ReadingStatus    string                 `json:"readingStatus" validate:"required,oneof=to-read reading finished"`
	StoryStatus      string                 `json:"storyStatus" validate:"omitempty,oneof=in-progress completed one-shot abandoned"`
	Rate             RateInput              `json:"rate"`
	Image            string                 `json:"image" validate:"max=2048"`
	Tags             types.FlexList[string] `json:"tags"`
	TagNames         types.FlexList[string] `json:"tagNames"`
}

// FictionPatch is a partial update. Nil fields are left alone; an empty languageName clears the language.
// When Tags or TagNames is present the tag set is replaced by their union.
type FictionPatch struct {
	Title            *string                 `json:"title" validate:"omitempty,max=512"`
	FandomName       *string                 `json:"fandomName" validate:"omitempty,max=255"`
	LanguageName     *string                 `json:"languageName" validate:"omitempty,max=100"`
	LangName         *string                 `json:"langName" validate:"omitempty,max=100"`
	Link             *string                 `json:"link" validate:"omitempty,max=2048"`
	Summary          *string                 `json:"summary"`
	PersonalNotes    *string                 `json:"personalNotes"`
	Author           *string                 `json:"author" validate:"omitempty,max=255"`
	NumberOfWords    *types.FlexUint64       `json:"numberOfWords"`
	NumberOfChapters *types.FlexUint64       `json:"numberOfChapters"`
	LastChapterRead  *types.FlexUint64       `json:"lastChapterRead"`
	ReadingStatus    *string                 `json:"readingStatus" validate:"omitempty,oneof=to-read reading finished"`
	StoryStatus      *string                 `json:"storyStatus" validate:"omitempty,oneof=in-progress completed one-shot abandoned"`
	Rate             *RateInput              `json:"rate"`
	Image            *string                 `json:"image" validate:"omitempty,max=2048"`
	Tags             *types.FlexList[string] `json:"tags"`
	TagNames         *types.FlexList[string] `json:"tagNames"`
}

func (in *FictionInput) trim() {
	in.Title = strings.TrimSpace(in.Title)
	in.FandomName = strings.TrimSpace(in.FandomName)
	// langName is the older client spelling
	if in.LanguageName == "" {
		in.LanguageName = in.LangName
	}
	in.LanguageName = strings.TrimSpace(in.LanguageName)
	in.Link = strings.TrimSpace(in.Link)
	in.Author = strings.TrimSpace(in.Author)
	in.Image = strings.TrimSpace(in.Image)
}

// CreateFiction validates, resolves the fandom and language, stores the fiction and then its tags.
// The steps are not rolled back: a failure while tagging leaves the stored fiction untagged.
func CreateFiction(ctx context.Context, db *gorm.DB, userID string, in FictionInput) (*FictionView, error) {
	in.trim()
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	// tags are checked before anything is written
	if err := CheckTagNames(in.TagNames.Slice()); err != nil {
		return nil, err
	}
	tagIDs, err := CheckTagIDs(ctx, db, userID, in.Tags.Slice())
	if err != nil {
		return nil, err
	}

	fandom, err := ResolveFandom(ctx, db, userID, in.FandomName)
	if err != nil {
		return nil, err
	}

	var language Dimension
	if in.LanguageName != "" {
		if language, err = ResolveLanguage(ctx, db, userID, in.LanguageName); err != nil {
			return nil, err
		}
	}

	fiction := models.Fiction{
		UserID:           userID,
		FandomID:         &fandom.ID,
		Title:            in.Title,
		Link:             in.Link,
		Summary:          in.Summary,
		PersonalNotes:    in.PersonalNotes,
		Author:           in.Author,
		Language:         models.Language{Name: language.Name, Position: language.Position},
		Rate:             models.Rate{Value: in.Rate.Value, Display: in.Rate.Display},
		NumberOfWords:    in.NumberOfWords.Uint64(),
		NumberOfChapters: in.NumberOfChapters.Uint64(),
		LastChapterRead:  in.LastChapterRead.Uint64(),
		ReadingStatus:    in.ReadingStatus,
		StoryStatus:      in.StoryStatus,
		Image:            in.Image,
	}
	if fiction.LastChapterRead > 0 {
		now := time.Now().UTC()
		fiction.LastReadAt = &now
	}

	if err := db.WithContext(ctx).Create(&fiction).Error; err != nil {
		return nil, storeError("failed to create fiction", err)
	}
	if language.Created {
		metrics.DimensionsCreated.WithLabelValues("language").Inc()
	}

	named, err := ResolveTagNames(ctx, db, userID, in.TagNames.Slice())
	if err != nil {
		return nil, err
	}
	if err := SetTags(ctx, db, userID, fiction.ID, append(tagIDs, named...)); err != nil {
		return nil, err
	}

	return GetFiction(ctx, db, userID, fiction.ID)
}

// UpdateFiction applies a partial update. lastReadAt follows lastChapterRead: it is set to now
// when the chapter changes to a positive value and cleared when it changes to 0.
func UpdateFiction(ctx context.Context, db *gorm.DB, userID, fictionID string, patch FictionPatch) (*FictionView, error) {
	fiction, err := loadFiction(ctx, db, userID, fictionID)
	if err != nil {
		return nil, err
	}
	if patch.LanguageName == nil {
		patch.LanguageName = patch.LangName
	}
	if err := validateStruct(patch); err != nil {
		return nil, err
	}

	updates := map[string]any{}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, validationError("Missing title")
		}
		updates["title"] = title
	}

	// tags are checked before anything is written
	if patch.TagNames != nil {
		if err := CheckTagNames(patch.TagNames.Slice()); err != nil {
			return nil, err
		}
	}
	var tagIDs []string
	if patch.Tags != nil {
		if tagIDs, err = CheckTagIDs(ctx, db, userID, patch.Tags.Slice()); err != nil {
			return nil, err
		}
	}

	if patch.FandomName != nil {
		fandom, err := ResolveFandom(ctx, db, userID, *patch.FandomName)
		if err != nil {
			return nil, err
		}
		updates["fandom_id"] = fandom.ID
	}

	newLanguage := false
	if patch.LanguageName != nil {
		if strings.TrimSpace(*patch.LanguageName) == "" {
			updates["language_name"] = ""
			updates["language_position"] = 0
		} else {
			language, err := ResolveLanguage(ctx, db, userID, *patch.LanguageName)
			if err != nil {
				return nil, err
			}
			updates["language_name"] = language.Name
			updates["language_position"] = language.Position
			newLanguage = language.Created
		}
	}

	setString := func(column string, value *string, trim bool) {
		if value == nil {
			return
		}
		if trim {
			updates[column] = strings.TrimSpace(*value)
		} else {
			updates[column] = *value
		}
	}
	setString("link", patch.Link, true)
	setString("summary", patch.Summary, false)
	setString("personal_notes", patch.PersonalNotes, false)
	setString("author", patch.Author, true)
	setString("reading_status", patch.ReadingStatus, false)
	setString("story_status", patch.StoryStatus, false)
	setString("image", patch.Image, true)

	if patch.NumberOfWords != nil {
		updates["number_of_words"] = patch.NumberOfWords.Uint64()
	}
	if patch.NumberOfChapters != nil {
		updates["number_of_chapters"] = patch.NumberOfChapters.Uint64()
	}
	if patch.LastChapterRead != nil {
		if chapter := patch.LastChapterRead.Uint64(); chapter != fiction.LastChapterRead {
			updates["last_chapter_read"] = chapter
			if chapter > 0 {
				updates["last_read_at"] = time.Now().UTC()
			} else {
				updates["last_read_at"] = nil
			}
		}
	}
	if patch.Rate != nil {
		updates["rate_value"] = patch.Rate.Value
		updates["rate_display"] = patch.Rate.Display
	}

	if len(updates) > 0 {
		if err := db.WithContext(ctx).Model(&models.Fiction{}).
			Where("id = ? AND user_id = ?", fiction.ID, userID).
			Updates(updates).Error; err != nil {
			return nil, storeError("failed to update fiction", err)
		}
		if newLanguage {
			metrics.DimensionsCreated.WithLabelValues("language").Inc()
		}
	}

	if patch.Tags != nil || patch.TagNames != nil {
		var names []string
		if patch.TagNames != nil {
			names = patch.TagNames.Slice()
		}
		named, err := ResolveTagNames(ctx, db, userID, names)
		if err != nil {
			return nil, err
		}
		if err := SetTags(ctx, db, userID, fiction.ID, append(tagIDs, named...)); err != nil {
			return nil, err
		}
	}

	return GetFiction(ctx, db, userID, fiction.ID)
}

// GetFiction returns one projected fiction with its tags and fandom name
func GetFiction(ctx context.Context, db *gorm.DB, userID, fictionID string) (*FictionView, error) {
	fiction, err := loadFiction(ctx, db, userID, fictionID)
	if err != nil {
		return nil, err
	}

	tx := quiet(db).WithContext(ctx)
	names := map[string]string{}
	if fiction.FandomID != nil {
		var fandom models.Fandom
		if err := tx.Where("id = ? AND user_id = ?", *fiction.FandomID, userID).Limit(1).Find(&fandom).Error; err != nil {
			return nil, storeError("failed to load fandom", err)
		}
		names[fandom.ID] = fandom.Name
	}

	views, err := composeViews(tx, userID, []models.Fiction{*fiction}, names)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// DeleteFiction releases the fiction's tags and removes it. Another user's fiction is not found.
func DeleteFiction(ctx context.Context, db *gorm.DB, userID, fictionID string) error {
	fiction, err := loadFiction(ctx, db, userID, fictionID)
	if err != nil {
		return err
	}

	if err := DecrementOnDelete(ctx, db, userID, fiction.ID); err != nil {
		return err
	}

	if err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", fiction.ID, userID).
		Delete(&models.Fiction{}).Error; err != nil {
		return storeError("failed to delete fiction", err)
	}
	return nil
}

func loadFiction(ctx context.Context, db *gorm.DB, userID, fictionID string) (*models.Fiction, error) {
	var fiction models.Fiction
	err := quiet(db).WithContext(ctx).
		Where("id = ? AND user_id = ?", fictionID, userID).
		Take(&fiction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundError("Fiction not found")
	}
	if err != nil {
		return nil, storeError("failed to load fiction", err)
	}
	return &fiction, nil
}
