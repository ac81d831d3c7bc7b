package repository_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oggyb/speedy-match/internal/db"
)

var testNow = time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC)

// setupTestDB opens an isolated in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	database, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db.Models()...))
	return database
}

// makeUser returns an active, photo-visible user aged 30 with a profile that
// accepts everyone aged 18-60 and is activated in "en".
func makeUser(id uint64, gender db.Gender, mods ...func(*db.User)) *db.User {
	p := db.NewMatchProfile(id, testNow.Add(-time.Duration(id)*time.Hour))
	p.ActiveLanguages = db.StringSet{"en"}
	p.MinAgeToMatch = 18
	p.MaxAgeToMatch = 60
	p.ProfilePictureMonthsOffset = 0

	u := &db.User{
		ID:                    id,
		Username:              fmt.Sprintf("user%d", id),
		IsActive:              true,
		PhotoVisibleOnWebsite: true,
		Gender:                gender,
		Diet:                  db.DietVegan,
		SmokingStatus:         db.SmokingNo,
		RelationshipStatus:    db.RelationshipSingle,
		DateOfBirth:           time.Date(1996, 1, 15, 0, 0, 0, 0, time.UTC),
		Height:                175,
		FriendsCount:          25,
		CreatedAt:             testNow.AddDate(-1, 0, 0),
		MatchProfile:          p,
	}
	for _, m := range mods {
		m(u)
	}
	return u
}

func insertUsers(t *testing.T, gdb *gorm.DB, users ...*db.User) {
	t.Helper()
	for _, u := range users {
		require.NoError(t, gdb.Create(u).Error)
	}
}

func userIDs(users []*db.User) []uint64 {
	out := make([]uint64, len(users))
	for i, u := range users {
		out[i] = u.ID
	}
	return out
}
