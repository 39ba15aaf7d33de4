package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/localnerve/fictiondb/internal/models"
	"gorm.io/gorm"
)

// TagInput is the payload for creating a tag outside of a fiction write
type TagInput struct {
	Name  string `json:"name" validate:"max=100"`
	Color int    `json:"color" validate:"omitempty,gte=1,lte=12"`
}

// CreateTag returns the user's tag with the normalized name, creating it with usage 0 when absent.
// An existing tag is returned unchanged and created is false.
func CreateTag(ctx context.Context, db *gorm.DB, userID string, in TagInput) (tag *models.Tag, created bool, err error) {
	name := normalizeLabel(in.Name)
	if name == "" {
		return nil, false, validationError("Missing tag name")
	}
	if err := validateStruct(in); err != nil {
		return nil, false, err
	}

	color := in.Color
	if color == 0 {
		color = models.DefaultTagColor
	}

	return getOrCreateTag(db.WithContext(ctx), userID, name, color)
}

// ResolveTagNames maps tag names to ids, creating missing tags. Blank names are skipped and
// the result keeps first-seen order without duplicates.
func ResolveTagNames(ctx context.Context, db *gorm.DB, userID string, names []string) ([]string, error) {
	tx := db.WithContext(ctx)

	ids := make([]string, len(names))
	var cachedIDs []string
	for i, raw := range names {
		name := normalizeLabel(raw)
		if name == "" {
			continue
		}
		if id, ok := cachedTagID(userID, name); ok {
			ids[i] = id
			cachedIDs = append(cachedIDs, id)
		}
	}

	// entries may be stale if a tag was removed by another process
	if len(cachedIDs) > 0 {
		var live []string
		if err := tx.Model(&models.Tag{}).
			Where("user_id = ? AND id IN ?", userID, cachedIDs).
			Pluck("id", &live).Error; err != nil {
			return nil, storeError("failed to verify tags", err)
		}
		liveSet := toSet(live)
		for i, id := range ids {
			if id != "" && !liveSet[id] {
				forgetTagID(userID, normalizeLabel(names[i]))
				ids[i] = ""
			}
		}
	}

	for i, raw := range names {
		name := normalizeLabel(raw)
		if name == "" || ids[i] != "" {
			continue
		}
		tag, _, err := getOrCreateTag(tx, userID, name, models.DefaultTagColor)
		if err != nil {
			return nil, err
		}
		ids[i] = tag.ID
	}

	return dedupe(ids), nil
}

// CheckTagIDs verifies every id names a tag owned by the user and returns them deduplicated
func CheckTagIDs(ctx context.Context, db *gorm.DB, userID string, ids []string) ([]string, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return ids, nil
	}

	var found []string
	if err := db.WithContext(ctx).Model(&models.Tag{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Pluck("id", &found).Error; err != nil {
		return nil, storeError("failed to verify tags", err)
	}

	foundSet := toSet(found)
	for _, id := range ids {
		if !foundSet[id] {
			return nil, &Error{
				Kind:    KindValidation,
				Message: fmt.Sprintf("Unknown tag: %s", id),
				Details: map[string]string{"tags": id},
			}
		}
	}
	return ids, nil
}

// CheckTagNames rejects names that would not fit a tag once normalized. Blank names pass,
// ResolveTagNames skips them.
func CheckTagNames(names []string) error {
	for _, raw := range names {
		name := normalizeLabel(raw)
		if name == "" {
			continue
		}
		if err := validate.Var(name, "max=100"); err != nil {
			return &Error{
				Kind:    KindValidation,
				Message: "tagNames must be at most 100 characters",
				Details: map[string]string{"tagNames": name},
			}
		}
	}
	return nil
}

// ListTags returns the user's tags, most used first, then by name
func ListTags(ctx context.Context, db *gorm.DB, userID string) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("usage_count DESC").
		Order("name ASC").
		Find(&tags).Error; err != nil {
		return nil, storeError("failed to list tags", err)
	}
	return tags, nil
}

// GetTag returns one of the user's tags
func GetTag(ctx context.Context, db *gorm.DB, userID, tagID string) (*models.Tag, error) {
	var tag models.Tag
	err := db.WithContext(ctx).Where("id = ? AND user_id = ?", tagID, userID).Take(&tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundError("Tag not found")
	}
	if err != nil {
		return nil, storeError("failed to get tag", err)
	}
	return &tag, nil
}

func getOrCreateTag(tx *gorm.DB, userID, name string, color int) (*models.Tag, bool, error) {
	var tag models.Tag
	err := tx.Where("user_id = ? AND name = ?", userID, name).Take(&tag).Error
	if err == nil {
		cacheTagID(userID, name, tag.ID)
		return &tag, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, storeError("failed to look up tag", err)
	}

	tag = models.Tag{UserID: userID, Name: name, Color: color}
	if err := tx.Create(&tag).Error; err != nil {
		var existing models.Tag
		if ferr := tx.Where("user_id = ? AND name = ?", userID, name).Take(&existing).Error; ferr == nil {
			cacheTagID(userID, name, existing.ID)
			return &existing, false, nil
		}
		return nil, false, storeError("failed to create tag", err)
	}

	cacheTagID(userID, name, tag.ID)
	return &tag, true, nil
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
