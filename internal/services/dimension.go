package services

import (
	"context"
	"errors"
	"strings"

	"github.com/localnerve/fictiondb/internal/metrics"
	"github.com/localnerve/fictiondb/internal/models"
	"gorm.io/gorm"
)

// Dimension is a resolved grouping value. ID is empty for languages, which have no record of their own.
type Dimension struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Position int    `json:"position"`
	Created  bool   `json:"created"`
}

// normalizeLabel is the comparison key for dimension and tag names
func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// ResolveFandom returns the user's fandom matching label case-insensitively, creating it at
// position count+1 on a miss. Positions are never recompacted, so they may repeat after deletes.
func ResolveFandom(ctx context.Context, db *gorm.DB, userID, label string) (Dimension, error) {
	name := strings.TrimSpace(label)
	if name == "" {
		return Dimension{}, validationError("Missing fandom name")
	}
	norm := strings.ToLower(name)
	tx := db.WithContext(ctx)

	fandom, err := findFandomByName(tx, userID, norm)
	if err == nil {
		return fandomDimension(fandom, false), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Dimension{}, storeError("failed to look up fandom", err)
	}

	var count int64
	if err := tx.Model(&models.Fandom{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return Dimension{}, storeError("failed to count fandoms", err)
	}

	fandom = &models.Fandom{
		UserID:         userID,
		Name:           name,
		NormalizedName: norm,
		Position:       int(count) + 1,
	}
	if err := tx.Create(fandom).Error; err != nil {
		// a concurrent resolve for the same name won the unique index
		if existing, ferr := findFandomByName(tx, userID, norm); ferr == nil {
			return fandomDimension(existing, false), nil
		}
		return Dimension{}, storeError("failed to create fandom", err)
	}

	metrics.DimensionsCreated.WithLabelValues("fandom").Inc()
	return fandomDimension(fandom, true), nil
}

// ResolveLanguage returns the stored name and position of a language already used on one of the
// user's fictions, or the next position (distinct languages + 1) for a new one. Nothing is written.
func ResolveLanguage(ctx context.Context, db *gorm.DB, userID, label string) (Dimension, error) {
	name := strings.TrimSpace(label)
	if name == "" {
		return Dimension{}, validationError("Missing language name")
	}
	norm := strings.ToLower(name)
	tx := db.WithContext(ctx)

	var hit Dimension
	res := tx.Model(&models.Fiction{}).
		Select("language_name AS name, language_position AS position").
		Where("user_id = ? AND LOWER(language_name) = ?", userID, norm).
		Limit(1).
		Scan(&hit)
	if res.Error != nil {
		return Dimension{}, storeError("failed to look up language", res.Error)
	}
	if res.RowsAffected > 0 {
		return hit, nil
	}

	var count int64
	if err := tx.Model(&models.Fiction{}).
		Select("COUNT(DISTINCT LOWER(language_name))").
		Where("user_id = ? AND language_name <> ''", userID).
		Scan(&count).Error; err != nil {
		return Dimension{}, storeError("failed to count languages", err)
	}

	// counted by the fiction write that stores it
	return Dimension{Name: name, Position: int(count) + 1, Created: true}, nil
}

// CreateFandom is the explicit form of ResolveFandom, reporting whether a record was created
func CreateFandom(ctx context.Context, db *gorm.DB, userID, name string) (Dimension, error) {
	return ResolveFandom(ctx, db, userID, name)
}

// ListFandoms returns the user's fandoms ordered by position
func ListFandoms(ctx context.Context, db *gorm.DB, userID string) ([]models.Fandom, error) {
	var fandoms []models.Fandom
	if err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("position ASC").
		Order("created_at ASC").
		Find(&fandoms).Error; err != nil {
		return nil, storeError("failed to list fandoms", err)
	}
	return fandoms, nil
}

// ListLanguages returns the distinct languages of the user's fictions ordered by position
func ListLanguages(ctx context.Context, db *gorm.DB, userID string) ([]Dimension, error) {
	languages := []Dimension{}
	if err := db.WithContext(ctx).
		Model(&models.Fiction{}).
		Select("language_name AS name, MIN(language_position) AS position").
		Where("user_id = ? AND language_name <> ''", userID).
		Group("language_name").
		Order("position ASC").
		Scan(&languages).Error; err != nil {
		return nil, storeError("failed to list languages", err)
	}
	return languages, nil
}

func findFandomByName(tx *gorm.DB, userID, normalizedName string) (*models.Fandom, error) {
	var fandom models.Fandom
	if err := tx.Where("user_id = ? AND normalized_name = ?", userID, normalizedName).
		Take(&fandom).Error; err != nil {
		return nil, err
	}
	return &fandom, nil
}

func fandomDimension(f *models.Fandom, created bool) Dimension {
	return Dimension{ID: f.ID, Name: f.Name, Position: f.Position, Created: created}
}
