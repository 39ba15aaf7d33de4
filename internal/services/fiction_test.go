package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/localnerve/fictiondb/internal/metrics"
	"github.com/localnerve/fictiondb/internal/models"
	"github.com/localnerve/fictiondb/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func TestCreateFiction(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	user := createUser(t, db, "alice")
	existing := createTag(t, db, user.ID, "slow burn")

	view, err := CreateFiction(ctx, db, user.ID, FictionInput{
		Title:           "  The Long Road ",
		FandomName:      "Naruto",
		LanguageName:    "English",
		Author:          "someone",
		NumberOfWords:   120000,
		LastChapterRead: 3,
		ReadingStatus:   models.ReadingReading,
		StoryStatus:     models.StoryInProgress,
		Rate:            RateInput{Value: 4.5, Display: true},
		Tags:            []string{existing.ID},
		TagNames:        []string{"Angst", "fluff", "angst", " "},
	})
	require.NoError(t, err)

	assert.Equal(t, "The Long Road", view.Title)
	assert.Equal(t, "Naruto", view.FandomName)
	assert.Equal(t, "English", view.Language)
	assert.Equal(t, 1, view.LanguagePosition)
	assert.Equal(t, uint64(120000), view.NumberOfWords)
	assert.Equal(t, RateView{Value: 4.5, Display: true}, view.Rate)
	assert.NotNil(t, view.LastReadAt, "a chapter already read stamps lastReadAt")
	assert.ElementsMatch(t, []string{"angst", "fluff", "slow burn"}, tagNames(view.Tags))
	for _, tag := range view.Tags {
		assert.Equal(t, int64(1), tag.UsageCount, tag.Name)
	}
}

func TestCreateFictionFreshUser(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	user := createUser(t, db, "fresh")

	view, err := CreateFiction(ctx, db, user.ID, FictionInput{
		Title:         "Hogwarts Letters",
		FandomName:    "Harry Potter",
		LangName:      "English",
		ReadingStatus: models.ReadingToRead,
		StoryStatus:   models.StoryInProgress,
	})
	require.NoError(t, err)

	assert.Equal(t, "Harry Potter", view.FandomName)
	assert.Equal(t, "English", view.Language)
	assert.Equal(t, 1, view.LanguagePosition)
	assert.Nil(t, view.LastReadAt)
	assert.Empty(t, view.Tags)

	fandoms, err := ListFandoms(ctx, db, user.ID)
	require.NoError(t, err)
	require.Len(t, fandoms, 1)
	assert.Equal(t, 1, fandoms[0].Position)

	_, found := linkTags(t, db, user.ID, view.ID)
	assert.False(t, found, "no link record for an empty tag list")
}

func TestLanguageCountedWhenStored(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	user := createUser(t, db, "gwen")
	languages := metrics.DimensionsCreated.WithLabelValues("language")

	before := testutil.ToFloat64(languages)
	_, err := ResolveLanguage(ctx, db, user.ID, "Klingon")
	require.NoError(t, err)
	assert.Equal(t, before, testutil.ToFloat64(languages), "a lookup alone stores nothing")

	_, err = CreateFiction(ctx, db, user.ID, FictionInput{
		Title:         "Rejected",
		FandomName:    "Star Trek",
		LanguageName:  "Klingon",
		ReadingStatus: "skimming",
	})
	require.Error(t, err)
	assert.Equal(t, before, testutil.ToFloat64(languages))

	created := createFiction(t, db, user.ID, FictionInput{Title: "Stored", LanguageName: "Klingon"})
	assert.Equal(t, before+1, testutil.ToFloat64(languages))

	createFiction(t, db, user.ID, FictionInput{Title: "Again", LanguageName: "klingon"})
	assert.Equal(t, before+1, testutil.ToFloat64(languages), "a known language is not new")

	_, err = UpdateFiction(ctx, db, user.ID, created.ID, FictionPatch{LanguageName: ptr("Vulcan")})
	require.NoError(t, err)
	assert.Equal(t, before+2, testutil.ToFloat64(languages))
}

func TestCreateFictionValidation(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	user := createUser(t, db, "bob")

	tests := []struct {
		name  string
		input FictionInput
		field string
	}{
		{"missing title", FictionInput{FandomName: "X", ReadingStatus: models.ReadingReading}, "title"},
		{"missing fandom", FictionInput{Title: "T", ReadingStatus: models.ReadingReading}, "fandomName"},
		{"bad reading status", FictionInput{Title: "T", FandomName: "X", ReadingStatus: "skimming"}, "readingStatus"},
		{"bad story status", FictionInput{Title: "T", FandomName: "X", ReadingStatus: models.ReadingReading, StoryStatus: "paused"}, "storyStatus"},
		{"rate out of range", FictionInput{Title: "T", FandomName: "X", ReadingStatus: models.ReadingReading, Rate: RateInput{Value: 7}}, "value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateFiction(ctx, db, user.ID, tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var svcErr *Error
			require.True(t, errors.As(err, &svcErr))
			assert.Contains(t, svcErr.Details, tt.field)
		})
	}

	var count int64
	require.NoError(t, db.Model(&models.Fiction{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateFictionUnknownTag(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	bobTag := createTag(t, db, bob.ID, "mine")

	_, err := CreateFiction(ctx, db, alice.ID, FictionInput{
		Title:         "Story",
		FandomName:    "Naruto",
		ReadingStatus: models.ReadingToRead,
		Tags:          []string{bobTag.ID},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var count int64
	require.NoError(t, db.Model(&models.Fiction{}).Where("user_id = ?", alice.ID).Count(&count).Error)
	assert.Zero(t, count, "nothing is stored when a tag id is rejected")
	assert.Equal(t, int64(0), usageOf(t, db, bobTag.ID))

	fandoms, err := ListFandoms(ctx, db, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, fandoms, "the fandom is not created when a tag id is rejected")
}

func TestFictionTagNameTooLong(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	user := createUser(t, db, "dana")
	long := strings.Repeat("x", 101)

	_, err := CreateFiction(ctx, db, user.ID, FictionInput{
		Title:         "Story",
		FandomName:    "Brand New",
		ReadingStatus: models.ReadingToRead,
		TagNames:      []string{"fine", long},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var svcErr *Error
	require.True(t, errors.As(err, &svcErr))
	assert.Contains(t, svcErr.Details, "tagNames")

	var fictions, tags int64
	require.NoError(t, db.Model(&models.Fiction{}).Where("user_id = ?", user.ID).Count(&fictions).Error)
	require.NoError(t, db.Model(&models.Tag{}).Where("user_id = ?", user.ID).Count(&tags).Error)
	assert.Zero(t, fictions)
	assert.Zero(t, tags)
	fandoms, err := ListFandoms(ctx, db, user.ID)
	require.NoError(t, err)
	assert.Empty(t, fandoms)

	// exactly at the limit is accepted, surrounding spaces do not count
	created := createFiction(t, db, user.ID, FictionInput{
		Title:         "Story",
		FandomName:    "Naruto",
		ReadingStatus: models.ReadingToRead,
		TagNames:      []string{"  " + strings.Repeat("y", 100) + "  "},
	})
	require.Len(t, created.Tags, 1)

	names := types.FlexList[string]{long}
	_, err = UpdateFiction(ctx, db, user.ID, created.ID, FictionPatch{
		Title:    ptr("Renamed"),
		TagNames: &names,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	view, err := GetFiction(ctx, db, user.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Story", view.Title, "a rejected patch writes nothing")
	assert.Len(t, view.Tags, 1)
}

func TestUpdateFiction(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	user := createUser(t, db, "carol")
	created := createFiction(t, db, user.ID, FictionInput{
		Title:        "Draft",
		Author:       "writer",
		Summary:      "keep me",
		LanguageName: "English",
		TagNames:     []string{"angst"},
	})
	require.Nil(t, created.LastReadAt)

	updated, err := UpdateFiction(ctx, db, user.ID, created.ID, FictionPatch{
		Title:           ptr("Final"),
		FandomName:      ptr("Bleach"),
		LastChapterRead: ptr(types.FlexUint64(5)),
		ReadingStatus:   ptr(models.ReadingFinished),
	})
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Title)
	assert.Equal(t, "writer", updated.Author)
	assert.Equal(t, "keep me", updated.Summary)
	assert.Equal(t, "Bleach", updated.FandomName)
	assert.Equal(t, models.ReadingFinished, updated.ReadingStatus)
	assert.Equal(t, []string{"angst"}, tagNames(updated.Tags), "tags untouched without a tags key")
	require.NotNil(t, updated.LastReadAt)
	stamped := *updated.LastReadAt

	same, err := UpdateFiction(ctx, db, user.ID, created.ID, FictionPatch{LastChapterRead: ptr(types.FlexUint64(5))})
	require.NoError(t, err)
	require.NotNil(t, same.LastReadAt)
	assert.True(t, stamped.Equal(*same.LastReadAt), "unchanged chapter keeps lastReadAt")

	reset, err := UpdateFiction(ctx, db, user.ID, created.ID, FictionPatch{
		LastChapterRead: ptr(types.FlexUint64(0)),
		LanguageName:    ptr(""),
	})
	require.NoError(t, err)
	assert.Nil(t, reset.LastReadAt)
	assert.Empty(t, reset.Language)

	_, err = UpdateFiction(ctx, db, user.ID, created.ID, FictionPatch{Title: ptr("  ")})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestUpdateFictionReplacesTags(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	user := createUser(t, db, "dave")
	keep := createTag(t, db, user.ID, "keep")
	drop := createTag(t, db, user.ID, "drop")
	fiction := createFiction(t, db, user.ID, FictionInput{Title: "Story", Tags: []string{keep.ID, drop.ID}})

	updated, err := UpdateFiction(ctx, db, user.ID, fiction.ID, FictionPatch{
		Tags:     &types.FlexList[string]{keep.ID},
		TagNames: &types.FlexList[string]{"new"},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"keep", "new"}, tagNames(updated.Tags))
	assert.Equal(t, int64(1), usageOf(t, db, keep.ID))
	assert.Equal(t, int64(0), usageOf(t, db, drop.ID))

	cleared, err := UpdateFiction(ctx, db, user.ID, fiction.ID, FictionPatch{Tags: &types.FlexList[string]{}})
	require.NoError(t, err)
	assert.Empty(t, cleared.Tags)
	assert.Equal(t, int64(0), usageOf(t, db, keep.ID))
}

func TestDeleteFictionReleasesTags(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	user := createUser(t, db, "erin")
	tag := createTag(t, db, user.ID, "popular")
	fiction := createFiction(t, db, user.ID, FictionInput{Title: "Story", Tags: []string{tag.ID}})

	// the tag is shared with other fictions
	setUsage(t, db, tag.ID, 10)

	require.NoError(t, DeleteFiction(ctx, db, user.ID, fiction.ID))
	assert.Equal(t, int64(9), usageOf(t, db, tag.ID))

	_, ok := linkTags(t, db, user.ID, fiction.ID)
	assert.False(t, ok)

	_, err := GetFiction(ctx, db, user.ID, fiction.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFictionOwnership(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	alice := createUser(t, db, "alice")
	mallory := createUser(t, db, "mallory")
	fiction := createFiction(t, db, alice.ID, FictionInput{Title: "Private"})

	_, err := GetFiction(ctx, db, mallory.ID, fiction.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = UpdateFiction(ctx, db, mallory.ID, fiction.ID, FictionPatch{Title: ptr("Mine now")})
	assert.True(t, errors.Is(err, ErrNotFound))

	err = DeleteFiction(ctx, db, mallory.ID, fiction.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "Fiction not found", err.Error())

	still, err := GetFiction(ctx, db, alice.ID, fiction.ID)
	require.NoError(t, err)
	assert.Equal(t, "Private", still.Title)
}
