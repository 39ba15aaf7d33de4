package services

import (
	"context"
	"os"
	"testing"

	"github.com/localnerve/fictiondb/internal/database"
	"github.com/localnerve/fictiondb/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testPassword = "correct-horse-battery"

func TestMain(m *testing.M) {
	if err := InitTagCache(10_000, 1<<20); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		clearTagCache()
		database.Close(db)
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user, err := Signup(context.Background(), db, SignupInput{
		Email:    name + "@example.com",
		Username: name,
		Password: testPassword,
	})
	require.NoError(t, err)
	return user
}

func createTag(t *testing.T, db *gorm.DB, userID, name string) *models.Tag {
	t.Helper()
	tag, _, err := CreateTag(context.Background(), db, userID, TagInput{Name: name})
	require.NoError(t, err)
	return tag
}

func createFiction(t *testing.T, db *gorm.DB, userID string, in FictionInput) *FictionView {
	t.Helper()
	if in.ReadingStatus == "" {
		in.ReadingStatus = models.ReadingReading
	}
	if in.FandomName == "" {
		in.FandomName = "Naruto"
	}
	view, err := CreateFiction(context.Background(), db, userID, in)
	require.NoError(t, err)
	return view
}

func usageOf(t *testing.T, db *gorm.DB, tagID string) int64 {
	t.Helper()
	var tag models.Tag
	require.NoError(t, db.Take(&tag, "id = ?", tagID).Error)
	return tag.UsageCount
}

func setUsage(t *testing.T, db *gorm.DB, tagID string, n int64) {
	t.Helper()
	require.NoError(t, db.Model(&models.Tag{}).Where("id = ?", tagID).UpdateColumn("usage_count", n).Error)
}

func linkTags(t *testing.T, db *gorm.DB, userID, fictionID string) (models.TagIDs, bool) {
	t.Helper()
	var links []models.FictionTagLink
	require.NoError(t, db.Where("user_id = ? AND fiction_id = ?", userID, fictionID).Find(&links).Error)
	if len(links) == 0 {
		return nil, false
	}
	return links[0].Tags, true
}

func tagNames(tags []TagView) []string {
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	return names
}
