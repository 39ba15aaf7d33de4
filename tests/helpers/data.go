// data.go
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

package helpers

import (
	"context"
	"testing"

	"github.com/localnerve/fictiondb/internal/models"
	"github.com/localnerve/fictiondb/internal/services"
	"gorm.io/gorm"
)

// CreateTestUser signs up a user directly through the service layer
func CreateTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user, err := services.Signup(context.Background(), db, services.SignupInput{
		Email:    username + "@example.com",
		Username: username,
		Password: GeneratePassword(),
	})
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

// CreateTestFiction stores a fiction in the reading status with the given fandom and tag names
func CreateTestFiction(t *testing.T, db *gorm.DB, userID, title, fandom string, tagNames ...string) *services.FictionView {
	t.Helper()
	fiction, err := services.CreateFiction(context.Background(), db, userID, services.FictionInput{
		Title:         title,
		FandomName:    fandom,
		ReadingStatus: models.ReadingReading,
		TagNames:      tagNames,
	})
	if err != nil {
		t.Fatalf("Failed to create fiction %s: %v", title, err)
	}
	return fiction
}

// CreateTestCatalog stores a small catalog across two fandoms and three reading statuses
func CreateTestCatalog(t *testing.T, db *gorm.DB, userID string) []*services.FictionView {
	t.Helper()

	inputs := []services.FictionInput{
		{Title: "Road to Ninja", FandomName: "Naruto", ReadingStatus: models.ReadingReading, Author: "kage", TagNames: []string{"angst", "slow burn"}},
		{Title: "Hollow Hearts", FandomName: "Bleach", ReadingStatus: models.ReadingReading, Author: "shinigami", TagNames: []string{"angst"}},
		{Title: "Sage Mode", FandomName: "Naruto", ReadingStatus: models.ReadingFinished, StoryStatus: models.StoryCompleted, TagNames: []string{"fluff"}},
		{Title: "Someday", FandomName: "Bleach", ReadingStatus: models.ReadingToRead, StoryStatus: models.StoryInProgress},
	}

	fictions := make([]*services.FictionView, 0, len(inputs))
	for _, in := range inputs {
		fiction, err := services.CreateFiction(context.Background(), db, userID, in)
		if err != nil {
			t.Fatalf("Failed to create fiction %s: %v", in.Title, err)
		}
		fictions = append(fictions, fiction)
	}
	return fictions
}
