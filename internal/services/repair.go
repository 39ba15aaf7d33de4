package services

import (
	"context"
	"log/slog"
	"slices"

	"github.com/localnerve/fictiondb/internal/metrics"
	"github.com/localnerve/fictiondb/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// UsageDrift is a tag whose stored usage count disagrees with its link records
type UsageDrift struct {
	TagID  string `json:"tagId"`
	Name   string `json:"name"`
	Stored int64  `json:"stored"`
	Actual int64  `json:"actual"`
}

// RepairReport summarizes one user's integrity pass
type RepairReport struct {
	UserID       string       `json:"userId"`
	OrphanLinks  int64        `json:"orphanLinks"`
	DanglingRefs int64        `json:"danglingRefs"`
	Drift        []UsageDrift `json:"drift"`
	Applied      bool         `json:"applied"`
}

// AuditUsageCounts compares every tag's usage count with the number of link records holding it
func AuditUsageCounts(ctx context.Context, db *gorm.DB, userID string) ([]UsageDrift, error) {
	tx := quiet(db).WithContext(ctx)

	var links []models.FictionTagLink
	if err := tx.Where("user_id = ?", userID).Find(&links).Error; err != nil {
		return nil, storeError("failed to load tag links", err)
	}
	actual := make(map[string]int64)
	for _, link := range links {
		for _, id := range dedupe(link.Tags) {
			actual[id]++
		}
	}

	var tags []models.Tag
	if err := tx.Where("user_id = ?", userID).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, storeError("failed to load tags", err)
	}

	var drift []UsageDrift
	for _, tag := range tags {
		if n := actual[tag.ID]; n != tag.UsageCount {
			drift = append(drift, UsageDrift{TagID: tag.ID, Name: tag.Name, Stored: tag.UsageCount, Actual: n})
		}
	}
	return drift, nil
}

// RepairUsageCounts rewrites every drifted usage count with the recomputed value
func RepairUsageCounts(ctx context.Context, db *gorm.DB, userID string) ([]UsageDrift, error) {
	drift, err := AuditUsageCounts(ctx, db, userID)
	if err != nil {
		return nil, err
	}

	tx := db.WithContext(ctx)
	for _, d := range drift {
		if err := tx.Model(&models.Tag{}).
			Where("id = ? AND user_id = ?", d.TagID, userID).
			UpdateColumn("usage_count", d.Actual).Error; err != nil {
			return nil, storeError("failed to repair tag usage", err)
		}
		metrics.RepairCorrections.WithLabelValues("usage_count").Inc()
	}
	return drift, nil
}

// PruneLinks removes link records whose fiction is gone and strips tag ids whose tag is gone.
// With dryRun it only counts.
func PruneLinks(ctx context.Context, db *gorm.DB, userID string, dryRun bool) (orphanLinks, danglingRefs int64, err error) {
	tx := quiet(db).WithContext(ctx)

	var links []models.FictionTagLink
	if err := tx.Where("user_id = ?", userID).Find(&links).Error; err != nil {
		return 0, 0, storeError("failed to load tag links", err)
	}
	if len(links) == 0 {
		return 0, 0, nil
	}

	var fictionIDs, tagIDs []string
	if err := tx.Model(&models.Fiction{}).Where("user_id = ?", userID).Pluck("id", &fictionIDs).Error; err != nil {
		return 0, 0, storeError("failed to load fictions", err)
	}
	if err := tx.Model(&models.Tag{}).Where("user_id = ?", userID).Pluck("id", &tagIDs).Error; err != nil {
		return 0, 0, storeError("failed to load tags", err)
	}
	fictions := toSet(fictionIDs)
	tags := toSet(tagIDs)

	write := db.WithContext(ctx)
	for _, link := range links {
		if !fictions[link.FictionID] {
			orphanLinks++
			if !dryRun {
				if err := write.Delete(&models.FictionTagLink{}, "id = ?", link.ID).Error; err != nil {
					return orphanLinks, danglingRefs, storeError("failed to delete orphan link", err)
				}
				metrics.RepairCorrections.WithLabelValues("orphan_link").Inc()
			}
			continue
		}

		kept := slices.DeleteFunc(slices.Clone(link.Tags), func(id string) bool { return !tags[id] })
		if len(kept) == len(link.Tags) {
			continue
		}
		danglingRefs += int64(len(link.Tags) - len(kept))
		if !dryRun {
			if err := write.Model(&models.FictionTagLink{}).
				Where("id = ?", link.ID).
				Update("tags", models.TagIDs(kept)).Error; err != nil {
				return orphanLinks, danglingRefs, storeError("failed to prune tag link", err)
			}
			metrics.RepairCorrections.WithLabelValues("dangling_ref").Inc()
		}
	}

	return orphanLinks, danglingRefs, nil
}

// RepairUser prunes links, then recomputes usage counts so the pruned links are accounted for
func RepairUser(ctx context.Context, db *gorm.DB, userID string, dryRun bool) (RepairReport, error) {
	report := RepairReport{UserID: userID, Applied: !dryRun}

	orphans, dangling, err := PruneLinks(ctx, db, userID, dryRun)
	if err != nil {
		return report, err
	}
	report.OrphanLinks = orphans
	report.DanglingRefs = dangling

	if dryRun {
		report.Drift, err = AuditUsageCounts(ctx, db, userID)
	} else {
		report.Drift, err = RepairUsageCounts(ctx, db, userID)
	}
	if err != nil {
		return report, err
	}

	if orphans+dangling > 0 || len(report.Drift) > 0 {
		slog.InfoContext(ctx, "integrity pass found drift",
			"user", userID, "orphanLinks", orphans, "danglingRefs", dangling,
			"usageDrift", len(report.Drift), "applied", report.Applied)
	}
	return report, nil
}

// RepairAll runs RepairUser for every user
func RepairAll(ctx context.Context, db *gorm.DB, dryRun bool) ([]RepairReport, error) {
	var userIDs []string
	if err := quiet(db).WithContext(ctx).Model(&models.User{}).Order("created_at ASC").Pluck("id", &userIDs).Error; err != nil {
		return nil, storeError("failed to list users", err)
	}

	reports := make([]RepairReport, 0, len(userIDs))
	for _, id := range userIDs {
		report, err := RepairUser(ctx, db, id, dryRun)
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// PurgeOrphanedRecords removes user-owned records whose user no longer exists, the leftovers of
// an interrupted cascade. Children go first, same as DeleteUser. With dryRun it only counts.
func PurgeOrphanedRecords(ctx context.Context, db *gorm.DB, dryRun bool) (map[string]int64, error) {
	tx := db.WithContext(ctx)
	users := tx.Model(&models.User{}).Select("id")

	result := make(map[string]int64)
	for _, step := range cascadeSteps {
		scope := tx.Where("user_id NOT IN (?)", users)
		if dryRun {
			var n int64
			if err := scope.Model(step.model).Count(&n).Error; err != nil {
				return result, storeError("failed to count orphaned "+step.entity, err)
			}
			result[step.entity] = n
			continue
		}
		res := scope.Delete(step.model)
		if res.Error != nil {
			return result, storeError("failed to purge orphaned "+step.entity, res.Error)
		}
		result[step.entity] = res.RowsAffected
		metrics.RepairCorrections.WithLabelValues("orphan_" + step.entity).Add(float64(res.RowsAffected))
	}
	return result, nil
}

// quiet returns a session with SQL logging off for bulk reads
func quiet(db *gorm.DB) *gorm.DB {
	return db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)})
}
