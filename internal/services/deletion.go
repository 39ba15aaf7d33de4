// deletion.go
//
// A fanfiction reading tracker data service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of fictiondb.
// fictiondb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// fictiondb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with fictiondb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"errors"

	"github.com/localnerve/fictiondb/internal/metrics"
	"github.com/localnerve/fictiondb/internal/models"
	"gorm.io/gorm"
)

// DeleteOptions controls a guarded delete. Detach clears references before deleting,
// Force deletes and leaves references dangling. Detach wins when both are set.
type DeleteOptions struct {
	Detach bool
	Force  bool
}

// DeleteOutcome reports what a guarded delete did. RequiresConfirmation means nothing was
// deleted because the record is still referenced UsageCount times.
type DeleteOutcome struct {
	Deleted              bool   `json:"deleted"`
	RequiresConfirmation bool   `json:"requiresConfirmation"`
	Name                 string `json:"name"`
	UsageCount           int64  `json:"usageCount"`
	WasDetached          bool   `json:"wasDetached"`
	DetachedFromCount    int64  `json:"detachedFromCount"`
}

// Usage is the reference count of a fandom or tag
type Usage struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	UsageCount int64  `json:"usageCount"`
}

// FandomUsage counts the user's fictions referencing the fandom
func FandomUsage(ctx context.Context, db *gorm.DB, userID, fandomID string) (Usage, error) {
	fandom, err := loadFandom(ctx, db, userID, fandomID)
	if err != nil {
		return Usage{}, err
	}
	n, err := countFandomUsage(db.WithContext(ctx), userID, fandom.ID)
	if err != nil {
		return Usage{}, err
	}
	return Usage{ID: fandom.ID, Name: fandom.Name, UsageCount: n}, nil
}

// TagUsage counts the user's link records containing the tag
func TagUsage(ctx context.Context, db *gorm.DB, userID, tagID string) (Usage, error) {
	tag, err := GetTag(ctx, db, userID, tagID)
	if err != nil {
		return Usage{}, err
	}
	n, err := countTagUsage(db.WithContext(ctx), userID, tag.ID)
	if err != nil {
		return Usage{}, err
	}
	return Usage{ID: tag.ID, Name: tag.Name, UsageCount: n}, nil
}

// DeleteFandom deletes an unused fandom. A fandom in use is only deleted with Detach, which
// unsets fandomId on its fictions first, or Force.
func DeleteFandom(ctx context.Context, db *gorm.DB, userID, fandomID string, opts DeleteOptions) (DeleteOutcome, error) {
	tx := db.WithContext(ctx)

	fandom, err := loadFandom(ctx, db, userID, fandomID)
	if err != nil {
		return DeleteOutcome{}, err
	}
	count, err := countFandomUsage(tx, userID, fandom.ID)
	if err != nil {
		return DeleteOutcome{}, err
	}

	outcome := DeleteOutcome{Name: fandom.Name, UsageCount: count}
	if count > 0 && !opts.Detach && !opts.Force {
		outcome.RequiresConfirmation = true
		metrics.DeletionGuardOutcomes.WithLabelValues("fandom", "confirmation_required").Inc()
		return outcome, nil
	}

	if count > 0 && opts.Detach {
		res := tx.Model(&models.Fiction{}).
			Where("user_id = ? AND fandom_id = ?", userID, fandom.ID).
			Update("fandom_id", nil)
		if res.Error != nil {
			return DeleteOutcome{}, storeError("failed to detach fandom", res.Error)
		}
		outcome.WasDetached = true
		outcome.DetachedFromCount = res.RowsAffected
	}

	if err := tx.Where("id = ? AND user_id = ?", fandom.ID, userID).Delete(&models.Fandom{}).Error; err != nil {
		return DeleteOutcome{}, storeError("failed to delete fandom", err)
	}

	outcome.Deleted = true
	metrics.DeletionGuardOutcomes.WithLabelValues("fandom", deletedLabel(outcome, count)).Inc()
	return outcome, nil
}

// DeleteTag deletes an unused tag. A tag in use is only deleted with Detach, which removes its
// id from every link record and zeroes its counter first, or Force.
func DeleteTag(ctx context.Context, db *gorm.DB, userID, tagID string, opts DeleteOptions) (DeleteOutcome, error) {
	tx := db.WithContext(ctx)

	tag, err := GetTag(ctx, db, userID, tagID)
	if err != nil {
		return DeleteOutcome{}, err
	}
	count, err := countTagUsage(tx, userID, tag.ID)
	if err != nil {
		return DeleteOutcome{}, err
	}

	outcome := DeleteOutcome{Name: tag.Name, UsageCount: count}
	if count > 0 && !opts.Detach && !opts.Force {
		outcome.RequiresConfirmation = true
		metrics.DeletionGuardOutcomes.WithLabelValues("tag", "confirmation_required").Inc()
		return outcome, nil
	}

	if count > 0 && opts.Detach {
		var links []models.FictionTagLink
		if err := tx.Where("user_id = ?", userID).
			Where(models.TagIDsContain(tx, tag.ID)).
			Find(&links).Error; err != nil {
			return DeleteOutcome{}, storeError("failed to load tag links", err)
		}
		for _, link := range links {
			if err := tx.Model(&models.FictionTagLink{}).
				Where("id = ?", link.ID).
				Update("tags", link.Tags.Without(tag.ID)).Error; err != nil {
				return DeleteOutcome{}, storeError("failed to detach tag", err)
			}
			outcome.DetachedFromCount++
		}
		if err := tx.Model(&models.Tag{}).
			Where("id = ? AND user_id = ?", tag.ID, userID).
			UpdateColumn("usage_count", 0).Error; err != nil {
			return DeleteOutcome{}, storeError("failed to reset tag usage", err)
		}
		outcome.WasDetached = true
	}

	if err := tx.Where("id = ? AND user_id = ?", tag.ID, userID).Delete(&models.Tag{}).Error; err != nil {
		return DeleteOutcome{}, storeError("failed to delete tag", err)
	}
	forgetTagID(userID, tag.Name)

	outcome.Deleted = true
	metrics.DeletionGuardOutcomes.WithLabelValues("tag", deletedLabel(outcome, count)).Inc()
	return outcome, nil
}

func deletedLabel(outcome DeleteOutcome, count int64) string {
	switch {
	case outcome.WasDetached:
		return "detached"
	case count > 0:
		return "forced"
	default:
		return "unused"
	}
}

func countFandomUsage(tx *gorm.DB, userID, fandomID string) (int64, error) {
	var n int64
	if err := tx.Model(&models.Fiction{}).
		Where("user_id = ? AND fandom_id = ?", userID, fandomID).
		Count(&n).Error; err != nil {
		return 0, storeError("failed to count fandom usage", err)
	}
	return n, nil
}

func countTagUsage(tx *gorm.DB, userID, tagID string) (int64, error) {
	var n int64
	if err := tx.Model(&models.FictionTagLink{}).
		Where("user_id = ?", userID).
		Where(models.TagIDsContain(tx, tagID)).
		Count(&n).Error; err != nil {
		return 0, storeError("failed to count tag usage", err)
	}
	return n, nil
}

func loadFandom(ctx context.Context, db *gorm.DB, userID, fandomID string) (*models.Fandom, error) {
	var fandom models.Fandom
	err := db.WithContext(ctx).Where("id = ? AND user_id = ?", fandomID, userID).Take(&fandom).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundError("Fandom not found")
	}
	if err != nil {
		return nil, storeError("failed to load fandom", err)
	}
	return &fandom, nil
}
