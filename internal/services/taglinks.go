package services

import (
	"context"
	"errors"

	"github.com/localnerve/fictiondb/internal/metrics"
	"github.com/localnerve/fictiondb/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// decrementFloored never lets a counter go below zero
const decrementFloored = "CASE WHEN usage_count > 0 THEN usage_count - 1 ELSE 0 END"

// SetTags replaces the tag set of a fiction and moves usage counts by the difference:
// +1 for every added tag, -1 (floored at 0) for every removed one.
// A fiction without a link record that receives no tags gets no link record.
// The steps are separate writes; a failure part way leaves counts for the repair pass.
func SetTags(ctx context.Context, db *gorm.DB, userID, fictionID string, tagIDs []string) error {
	tx := db.WithContext(ctx)
	next := dedupe(tagIDs)

	link, err := findLink(tx, userID, fictionID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return storeError("failed to load tag link", err)
	}

	var previous models.TagIDs
	if link != nil {
		previous = link.Tags
	} else if len(next) == 0 {
		return nil
	}

	added, removed := diffTagIDs(previous, next)

	upsert := models.FictionTagLink{
		UserID:    userID,
		FictionID: fictionID,
		Tags:      models.TagIDs(next),
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "fiction_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"tags", "updated_at"}),
	}).Create(&upsert).Error; err != nil {
		return storeError("failed to save tag link", err)
	}

	if err := incrementUsage(tx, userID, added); err != nil {
		return err
	}
	return decrementUsage(tx, userID, removed)
}

// DecrementOnDelete releases the tags of a fiction that is going away: every tag in its link
// record loses one usage (floored at 0) and the link record is removed. No link is a no-op.
func DecrementOnDelete(ctx context.Context, db *gorm.DB, userID, fictionID string) error {
	tx := db.WithContext(ctx)

	link, err := findLink(tx, userID, fictionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return storeError("failed to load tag link", err)
	}

	if err := decrementUsage(tx, userID, dedupe(link.Tags)); err != nil {
		return err
	}

	if err := tx.Where("user_id = ? AND fiction_id = ?", userID, fictionID).
		Delete(&models.FictionTagLink{}).Error; err != nil {
		return storeError("failed to delete tag link", err)
	}
	return nil
}

// diffTagIDs returns ids only in next (added) and ids only in previous (removed)
func diffTagIDs(previous, next []string) (added, removed []string) {
	prevSet := toSet(previous)
	nextSet := toSet(next)

	for _, id := range next {
		if !prevSet[id] {
			added = append(added, id)
		}
	}
	for _, id := range dedupe(previous) {
		if !nextSet[id] {
			removed = append(removed, id)
		}
	}
	return added, removed
}

func incrementUsage(tx *gorm.DB, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	res := tx.Model(&models.Tag{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1))
	if res.Error != nil {
		return storeError("failed to increment tag usage", res.Error)
	}
	metrics.TagUsageAdjustments.WithLabelValues("increment").Add(float64(res.RowsAffected))
	return nil
}

func decrementUsage(tx *gorm.DB, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	res := tx.Model(&models.Tag{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		UpdateColumn("usage_count", gorm.Expr(decrementFloored))
	if res.Error != nil {
		return storeError("failed to decrement tag usage", res.Error)
	}
	metrics.TagUsageAdjustments.WithLabelValues("decrement").Add(float64(res.RowsAffected))
	return nil
}

func findLink(tx *gorm.DB, userID, fictionID string) (*models.FictionTagLink, error) {
	var link models.FictionTagLink
	if err := tx.Where("user_id = ? AND fiction_id = ?", userID, fictionID).Take(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}
