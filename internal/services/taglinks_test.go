package services

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/localnerve/fictiondb/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSetTagsMovesUsageByDifference(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	user := createUser(t, db, "alice")

	a := createTag(t, db, user.ID, "angst")
	b := createTag(t, db, user.ID, "fluff")
	c := createTag(t, db, user.ID, "crack")
	fiction := createFiction(t, db, user.ID, FictionInput{Title: "Story"})

	require.NoError(t, SetTags(ctx, db, user.ID, fiction.ID, []string{a.ID, b.ID}))
	assert.Equal(t, int64(1), usageOf(t, db, a.ID))
	assert.Equal(t, int64(1), usageOf(t, db, b.ID))
	assert.Equal(t, int64(0), usageOf(t, db, c.ID))

	require.NoError(t, SetTags(ctx, db, user.ID, fiction.ID, []string{b.ID, c.ID, c.ID}))
	assert.Equal(t, int64(0), usageOf(t, db, a.ID))
	assert.Equal(t, int64(1), usageOf(t, db, b.ID), "kept tag is not counted twice")
	assert.Equal(t, int64(1), usageOf(t, db, c.ID))

	tags, ok := linkTags(t, db, user.ID, fiction.ID)
	require.True(t, ok)
	assert.Equal(t, models.TagIDs{b.ID, c.ID}, tags)

	require.NoError(t, SetTags(ctx, db, user.ID, fiction.ID, nil))
	assert.Equal(t, int64(0), usageOf(t, db, b.ID))
	assert.Equal(t, int64(0), usageOf(t, db, c.ID))

	tags, ok = linkTags(t, db, user.ID, fiction.ID)
	require.True(t, ok, "an emptied link record stays")
	assert.Empty(t, tags)
}

func TestSetTagsWithoutLinkAndNoTags(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	user := createUser(t, db, "bob")
	fiction := createFiction(t, db, user.ID, FictionInput{Title: "Untagged"})

	require.NoError(t, SetTags(ctx, db, user.ID, fiction.ID, []string{}))

	_, ok := linkTags(t, db, user.ID, fiction.ID)
	assert.False(t, ok)
}

func TestDecrementIsFloored(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	user := createUser(t, db, "carol")
	tag := createTag(t, db, user.ID, "drifted")
	fiction := createFiction(t, db, user.ID, FictionInput{Title: "Story", Tags: []string{tag.ID}})

	setUsage(t, db, tag.ID, 0)
	require.NoError(t, DecrementOnDelete(ctx, db, user.ID, fiction.ID))
	assert.Equal(t, int64(0), usageOf(t, db, tag.ID))

	_, ok := linkTags(t, db, user.ID, fiction.ID)
	assert.False(t, ok, "link record is removed")

	// no link left, second call is a no-op
	require.NoError(t, DecrementOnDelete(ctx, db, user.ID, fiction.ID))
}

func TestSetTagsLeavesOtherUsersAlone(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	bobTag := createTag(t, db, bob.ID, "angst")
	fiction := createFiction(t, db, alice.ID, FictionInput{Title: "Story"})

	// the counter update is scoped by user, so a foreign id moves nothing
	require.NoError(t, SetTags(ctx, db, alice.ID, fiction.ID, []string{bobTag.ID}))
	assert.Equal(t, int64(0), usageOf(t, db, bobTag.ID))
}

// every tag's usage count equals the number of link records holding it after any sequence of writes
func TestUsageCountMatchesLinks(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	user := createUser(t, db, "dave")

	var tagIDs []string
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		tagIDs = append(tagIDs, createTag(t, db, user.ID, name).ID)
	}
	var fictionIDs []string
	for _, title := range []string{"one", "two", "three", "four"} {
		fictionIDs = append(fictionIDs, createFiction(t, db, user.ID, FictionInput{Title: title}).ID)
	}

	rng := rand.New(rand.NewPCG(7, 11))
	for step := 0; step < 150; step++ {
		fictionID := fictionIDs[rng.IntN(len(fictionIDs))]

		if rng.IntN(10) == 0 {
			require.NoError(t, DecrementOnDelete(ctx, db, user.ID, fictionID))
		} else {
			var next []string
			for _, id := range tagIDs {
				if rng.IntN(2) == 0 {
					next = append(next, id)
				}
			}
			require.NoError(t, SetTags(ctx, db, user.ID, fictionID, next))
		}

		assertUsageMatchesLinks(t, db, user.ID)
	}
}

func assertUsageMatchesLinks(t *testing.T, db *gorm.DB, userID string) {
	t.Helper()
	drift, err := AuditUsageCounts(context.Background(), db, userID)
	require.NoError(t, err)
	require.Empty(t, drift)
}

func TestDiffTagIDs(t *testing.T) {
	added, removed := diffTagIDs([]string{"a", "b", "b"}, []string{"b", "c"})
	assert.Equal(t, []string{"c"}, added)
	assert.Equal(t, []string{"a"}, removed)

	added, removed = diffTagIDs(nil, []string{"x"})
	assert.Equal(t, []string{"x"}, added)
	assert.Empty(t, removed)
}
