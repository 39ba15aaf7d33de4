package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/localnerve/fictiondb/internal/models"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// Sort fields accepted by ListByStatus
const (
	SortTitle         = "title"
	SortAuthor        = "author"
	SortNumberOfWords = "numberOfWords"
	SortLastReadAt    = "lastReadAt"
	SortCreatedAt     = "createdAt"
	SortRate          = "rate"
)

// listingIndex is the composite (user, status, fandom, lastReadAt) index behind ListByStatus
const listingIndex = "idx_fiction_listing"

// SortSpec is a validated sort request
type SortSpec struct {
	Field string
	Desc  bool
}

// DefaultSort is the most recently read first
var DefaultSort = SortSpec{Field: SortLastReadAt, Desc: true}

// TagView is a tag as embedded in a fiction view
type TagView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Color      int    `json:"color"`
	UsageCount int64  `json:"usageCount"`
}

// RateView is the projected rating
type RateView struct {
	Value   float64 `json:"value"`
	Display bool    `json:"display"`
}

// FictionView is the client shape of a fiction: no owner id, a flat language string, resolved tags
type FictionView struct {
	ID               string     `json:"id"`
	FandomID         *string    `json:"fandomId"`
	FandomName       string     `json:"fandomName,omitempty"`
	Title            string     `json:"title"`
	Link             string     `json:"link"`
	Summary          string     `json:"summary"`
	PersonalNotes    string     `json:"personalNotes"`
	Author           string     `json:"author"`
	Language         string     `json:"language"`
	LanguagePosition int        `json:"languagePosition"`
	Rate             RateView   `json:"rate"`
	NumberOfWords    uint64     `json:"numberOfWords"`
	NumberOfChapters uint64     `json:"numberOfChapters"`
	LastChapterRead  uint64     `json:"lastChapterRead"`
	ReadingStatus    string     `json:"readingStatus"`
	StoryStatus      string     `json:"storyStatus"`
	LastReadAt       *time.Time `json:"lastReadAt"`
	Image            string     `json:"image"`
	Tags             []TagView  `json:"tags"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// FandomWithFictions is one group of the status listing
type FandomWithFictions struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Position int           `json:"position"`
	Fictions []FictionView `json:"fictions"`
}

// ParseSort validates a sort field and order. Empty values select the defaults.
func ParseSort(field, order string) (SortSpec, error) {
	spec := DefaultSort

	switch field {
	case "":
	case SortTitle, SortAuthor, SortNumberOfWords, SortLastReadAt, SortCreatedAt, SortRate:
		spec.Field = field
	default:
		return spec, &Error{
			Kind:    KindValidation,
			Message: fmt.Sprintf("Invalid sort field: %s", field),
			Details: map[string]string{"sort": "must be one of: title, author, numberOfWords, lastReadAt, createdAt, rate"},
		}
	}

	switch strings.ToLower(order) {
	case "", "desc":
		spec.Desc = true
	case "asc":
		spec.Desc = false
	default:
		return spec, &Error{
			Kind:    KindValidation,
			Message: fmt.Sprintf("Invalid sort order: %s", order),
			Details: map[string]string{"order": "must be one of: asc, desc"},
		}
	}

	return spec, nil
}

// ListByStatus builds the fandom tree of the user's fictions in one reading status.
// Fandoms come in position order and only those with at least one matching fiction are kept.
// Fictions are sorted by spec within each fandom, and each fiction's tags by usage desc then name.
func ListByStatus(ctx context.Context, db *gorm.DB, userID, readingStatus string, spec SortSpec) ([]FandomWithFictions, error) {
	if !slices.Contains(models.ReadingStatuses, readingStatus) {
		return nil, &Error{
			Kind:    KindValidation,
			Message: fmt.Sprintf("Invalid reading status: %s", readingStatus),
			Details: map[string]string{"readingStatus": "must be one of: " + strings.Join(models.ReadingStatuses, ", ")},
		}
	}

	tx := quiet(db).WithContext(ctx)

	fandoms, err := ListFandoms(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	result := []FandomWithFictions{}
	if len(fandoms) == 0 {
		return result, nil
	}

	fandomIDs := make([]string, len(fandoms))
	for i, f := range fandoms {
		fandomIDs[i] = f.ID
	}

	query := tx.Clauses(hints.Comment("select", "fiction listing by status"))
	if tx.Dialector.Name() == "mysql" {
		query = query.Clauses(hints.UseIndex(listingIndex))
	}

	var fictions []models.Fiction
	if err := query.
		Where("user_id = ? AND reading_status = ? AND fandom_id IN ?", userID, readingStatus, fandomIDs).
		Find(&fictions).Error; err != nil {
		return nil, storeError("failed to list fictions", err)
	}

	sortFictions(fictions, spec)

	views, err := composeViews(tx, userID, fictions, nil)
	if err != nil {
		return nil, err
	}

	byFandom := make(map[string][]FictionView, len(fandoms))
	for _, v := range views {
		byFandom[*v.FandomID] = append(byFandom[*v.FandomID], v)
	}

	for _, f := range fandoms {
		group := byFandom[f.ID]
		if len(group) == 0 {
			continue
		}
		result = append(result, FandomWithFictions{
			ID:       f.ID,
			Name:     f.Name,
			Position: f.Position,
			Fictions: group,
		})
	}

	return result, nil
}

// ListAll returns the user's full catalog, most recently read first, with fandom names
func ListAll(ctx context.Context, db *gorm.DB, userID string) ([]FictionView, error) {
	tx := quiet(db).WithContext(ctx)

	var fictions []models.Fiction
	if err := tx.Where("user_id = ?", userID).Find(&fictions).Error; err != nil {
		return nil, storeError("failed to list fictions", err)
	}
	sortFictions(fictions, DefaultSort)

	fandoms, err := ListFandoms(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(fandoms))
	for _, f := range fandoms {
		names[f.ID] = f.Name
	}

	return composeViews(tx, userID, fictions, names)
}

// ListAuthors returns the distinct non-empty authors of the user's fictions in alphabetical order
func ListAuthors(ctx context.Context, db *gorm.DB, userID string) ([]string, error) {
	authors := []string{}
	if err := quiet(db).WithContext(ctx).
		Model(&models.Fiction{}).
		Where("user_id = ? AND author <> ''", userID).
		Distinct().
		Pluck("author", &authors).Error; err != nil {
		return nil, storeError("failed to list authors", err)
	}

	slices.SortFunc(authors, func(a, b string) int {
		if c := cmp.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return authors, nil
}

// composeViews attaches tags to fictions and projects them, keeping the input order.
// Link entries naming a tag that no longer exists are dropped.
func composeViews(tx *gorm.DB, userID string, fictions []models.Fiction, fandomNames map[string]string) ([]FictionView, error) {
	views := make([]FictionView, 0, len(fictions))
	if len(fictions) == 0 {
		return views, nil
	}

	fictionIDs := make([]string, len(fictions))
	for i, f := range fictions {
		fictionIDs[i] = f.ID
	}

	var links []models.FictionTagLink
	if err := tx.Where("user_id = ? AND fiction_id IN ?", userID, fictionIDs).Find(&links).Error; err != nil {
		return nil, storeError("failed to load tag links", err)
	}
	linkTags := make(map[string][]string, len(links))
	var tagIDs []string
	for _, l := range links {
		ids := dedupe(l.Tags)
		linkTags[l.FictionID] = ids
		tagIDs = append(tagIDs, ids...)
	}

	tagsByID := make(map[string]models.Tag)
	if tagIDs = dedupe(tagIDs); len(tagIDs) > 0 {
		var tags []models.Tag
		if err := tx.Where("user_id = ? AND id IN ?", userID, tagIDs).Find(&tags).Error; err != nil {
			return nil, storeError("failed to load tags", err)
		}
		for _, t := range tags {
			tagsByID[t.ID] = t
		}
	}

	for i := range fictions {
		f := &fictions[i]
		tags := make([]TagView, 0, len(linkTags[f.ID]))
		for _, id := range linkTags[f.ID] {
			if t, ok := tagsByID[id]; ok {
				tags = append(tags, TagView{ID: t.ID, Name: t.Name, Color: t.Color, UsageCount: t.UsageCount})
			}
		}
		sortTagViews(tags)

		view := projectFiction(f, tags)
		if f.FandomID != nil && fandomNames != nil {
			view.FandomName = fandomNames[*f.FandomID]
		}
		views = append(views, view)
	}

	return views, nil
}

func projectFiction(f *models.Fiction, tags []TagView) FictionView {
	return FictionView{
		ID:               f.ID,
		FandomID:         f.FandomID,
		Title:            f.Title,
		Link:             f.Link,
		Summary:          f.Summary,
		PersonalNotes:    f.PersonalNotes,
		Author:           f.Author,
		Language:         f.Language.Name,
		LanguagePosition: f.Language.Position,
		Rate:             RateView{Value: f.Rate.Value, Display: f.Rate.Display},
		NumberOfWords:    f.NumberOfWords,
		NumberOfChapters: f.NumberOfChapters,
		LastChapterRead:  f.LastChapterRead,
		ReadingStatus:    f.ReadingStatus,
		StoryStatus:      f.StoryStatus,
		LastReadAt:       f.LastReadAt,
		Image:            f.Image,
		Tags:             tags,
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
	}
}

func sortTagViews(tags []TagView) {
	slices.SortFunc(tags, func(a, b TagView) int {
		if c := cmp.Compare(b.UsageCount, a.UsageCount); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
}

// sortFictions orders by spec. Missing values (no lastReadAt, empty title or author) go last in
// either direction, ties fall back to newest created then id.
func sortFictions(fictions []models.Fiction, spec SortSpec) {
	slices.SortStableFunc(fictions, func(a, b models.Fiction) int {
		return compareFictions(&a, &b, spec)
	})
}

func compareFictions(a, b *models.Fiction, spec SortSpec) int {
	aMissing, bMissing := missingSortValue(a, spec.Field), missingSortValue(b, spec.Field)
	switch {
	case aMissing && bMissing:
		return tiebreak(a, b)
	case aMissing:
		return 1
	case bMissing:
		return -1
	}

	c := compareSortValue(a, b, spec.Field)
	if spec.Desc {
		c = -c
	}
	if c != 0 {
		return c
	}
	return tiebreak(a, b)
}

func missingSortValue(f *models.Fiction, field string) bool {
	switch field {
	case SortLastReadAt:
		return f.LastReadAt == nil
	case SortAuthor:
		return f.Author == ""
	case SortTitle:
		return f.Title == ""
	}
	return false
}

func compareSortValue(a, b *models.Fiction, field string) int {
	switch field {
	case SortTitle:
		return compareText(a.Title, b.Title)
	case SortAuthor:
		return compareText(a.Author, b.Author)
	case SortNumberOfWords:
		return cmp.Compare(a.NumberOfWords, b.NumberOfWords)
	case SortCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case SortRate:
		return cmp.Compare(a.Rate.Value, b.Rate.Value)
	default:
		return a.LastReadAt.Compare(*b.LastReadAt)
	}
}

func compareText(a, b string) int {
	if c := cmp.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return cmp.Compare(a, b)
}

func tiebreak(a, b *models.Fiction) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
