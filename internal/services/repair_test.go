package services

import (
	"context"
	"testing"

	"github.com/localnerve/fictiondb/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditAndRepairUsageCounts(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	user := createUser(t, db, "alice")

	tag := createTag(t, db, user.ID, "angst")
	createFiction(t, db, user.ID, FictionInput{Title: "one", Tags: []string{tag.ID}})
	createFiction(t, db, user.ID, FictionInput{Title: "two", Tags: []string{tag.ID}})

	drift, err := AuditUsageCounts(ctx, db, user.ID)
	require.NoError(t, err)
	assert.Empty(t, drift)

	setUsage(t, db, tag.ID, 7)

	drift, err = AuditUsageCounts(ctx, db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []UsageDrift{{TagID: tag.ID, Name: "angst", Stored: 7, Actual: 2}}, drift)
	assert.Equal(t, int64(7), usageOf(t, db, tag.ID), "audit writes nothing")

	fixed, err := RepairUsageCounts(ctx, db, user.ID)
	require.NoError(t, err)
	assert.Len(t, fixed, 1)
	assert.Equal(t, int64(2), usageOf(t, db, tag.ID))
	assertUsageMatchesLinks(t, db, user.ID)
}

func TestPruneLinks(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	user := createUser(t, db, "bob")

	kept := createTag(t, db, user.ID, "kept")
	gone := createTag(t, db, user.ID, "gone")
	live := createFiction(t, db, user.ID, FictionInput{Title: "live", Tags: []string{kept.ID, gone.ID}})
	dead := createFiction(t, db, user.ID, FictionInput{Title: "dead", Tags: []string{kept.ID}})

	// an interrupted delete: the fiction row went away but its link stayed
	require.NoError(t, db.Delete(&models.Fiction{}, "id = ?", dead.ID).Error)
	_, err := DeleteTag(ctx, db, user.ID, gone.ID, DeleteOptions{Force: true})
	require.NoError(t, err)

	orphans, dangling, err := PruneLinks(ctx, db, user.ID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), orphans)
	assert.Equal(t, int64(1), dangling)

	_, ok := linkTags(t, db, user.ID, dead.ID)
	assert.True(t, ok, "dry run keeps the orphan")

	orphans, dangling, err = PruneLinks(ctx, db, user.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), orphans)
	assert.Equal(t, int64(1), dangling)

	_, ok = linkTags(t, db, user.ID, dead.ID)
	assert.False(t, ok)
	tags, ok := linkTags(t, db, user.ID, live.ID)
	require.True(t, ok)
	assert.Equal(t, models.TagIDs{kept.ID}, tags)

	orphans, dangling, err = PruneLinks(ctx, db, user.ID, false)
	require.NoError(t, err)
	assert.Zero(t, orphans)
	assert.Zero(t, dangling)
}

func TestRepairUser(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	user := createUser(t, db, "carol")

	tag := createTag(t, db, user.ID, "angst")
	createFiction(t, db, user.ID, FictionInput{Title: "live", Tags: []string{tag.ID}})
	dead := createFiction(t, db, user.ID, FictionInput{Title: "dead", Tags: []string{tag.ID}})
	require.NoError(t, db.Delete(&models.Fiction{}, "id = ?", dead.ID).Error)

	preview, err := RepairUser(ctx, db, user.ID, true)
	require.NoError(t, err)
	assert.False(t, preview.Applied)
	assert.Equal(t, int64(1), preview.OrphanLinks)
	assert.Empty(t, preview.Drift, "counts still match the links before pruning")
	assert.Equal(t, int64(2), usageOf(t, db, tag.ID))

	report, err := RepairUser(ctx, db, user.ID, false)
	require.NoError(t, err)
	assert.True(t, report.Applied)
	assert.Equal(t, int64(1), report.OrphanLinks)
	assert.Equal(t, []UsageDrift{{TagID: tag.ID, Name: "angst", Stored: 2, Actual: 1}}, report.Drift)
	assert.Equal(t, int64(1), usageOf(t, db, tag.ID))
	assertUsageMatchesLinks(t, db, user.ID)
}

func TestRepairAll(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	aliceTag := createTag(t, db, alice.ID, "a")
	bobTag := createTag(t, db, bob.ID, "b")
	createFiction(t, db, alice.ID, FictionInput{Title: "one", Tags: []string{aliceTag.ID}})
	setUsage(t, db, bobTag.ID, 3)

	reports, err := RepairAll(ctx, db, false)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	byUser := map[string]RepairReport{}
	for _, r := range reports {
		byUser[r.UserID] = r
	}
	assert.Empty(t, byUser[alice.ID].Drift)
	assert.Len(t, byUser[bob.ID].Drift, 1)
	assert.Equal(t, int64(0), usageOf(t, db, bobTag.ID))
	assert.Equal(t, int64(1), usageOf(t, db, aliceTag.ID))
}

func TestPurgeOrphanedRecords(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	createFiction(t, db, alice.ID, FictionInput{Title: "a", TagNames: []string{"angst"}})
	bobFiction := createFiction(t, db, bob.ID, FictionInput{Title: "b", TagNames: []string{"fluff"}})

	// the user row is gone but the cascade never ran
	require.NoError(t, db.Delete(&models.User{}, "id = ?", alice.ID).Error)

	counts, err := PurgeOrphanedRecords(ctx, db, true)
	require.NoError(t, err)
	want := map[string]int64{"links": 1, "fictions": 1, "tags": 1, "fandoms": 1}
	assert.Equal(t, want, counts)
	assert.Equal(t, int64(1), countOwned(t, db, &models.Fiction{}, alice.ID), "dry run deletes nothing")

	counts, err = PurgeOrphanedRecords(ctx, db, false)
	require.NoError(t, err)
	assert.Equal(t, want, counts)
	for _, model := range []any{&models.FictionTagLink{}, &models.Fiction{}, &models.Tag{}, &models.Fandom{}} {
		assert.Zero(t, countOwned(t, db, model, alice.ID))
	}

	view, err := GetFiction(ctx, db, bob.ID, bobFiction.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"fluff"}, tagNames(view.Tags))
}
