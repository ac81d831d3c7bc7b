package matching

import (
	"bytes"
	"log/slog"
	"time"

	"github.com/oggyb/speedy-match/internal/db"
)

var testNow = time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC)

const (
	goodDescription      = "I love hiking in the north, cooking for friends and reading old novels on rainy days."
	goodMatchDescription = "Someone kind and curious who likes nature and good food."
)

func ptr[T any](v T) *T { return &v }

// newUser returns an active, fully compatible user: vegan, non smoker, single,
// 30 years old, 175cm, located in Tel Aviv, who matches every gender.
func newUser(id uint64, gender db.Gender) *db.User {
	p := db.NewMatchProfile(id, testNow.Add(-2*day))
	p.ActiveLanguages = db.StringSet{"en"}
	p.MinAgeToMatch = 18
	p.MaxAgeToMatch = 60
	p.ProfilePictureMonthsOffset = 0

	return &db.User{
		ID:                    id,
		IsActive:              true,
		PhotoVisibleOnWebsite: true,
		Gender:                gender,
		Diet:                  db.DietVegan,
		SmokingStatus:         db.SmokingNo,
		RelationshipStatus:    db.RelationshipSingle,
		DateOfBirth:           testNow.AddDate(-30, 0, -10),
		Height:                175,
		FriendsCount:          30,
		Latitude:              ptr(32.0853),
		Longitude:             ptr(34.7818),
		GeoResolvedAt:         ptr(testNow.Add(-time.Hour)),
		Descriptions:          map[string]string{"en": goodDescription},
		MatchDescriptions:     map[string]string{"en": goodMatchDescription},
		CreatedAt:             testNow.AddDate(-1, 0, 0),
		MatchProfile:          p,
	}
}

func testRanker() (*Ranker, *bytes.Buffer) {
	var buf bytes.Buffer
	r := NewRanker(DefaultSettings(), slog.New(slog.NewTextHandler(&buf, nil)))
	r.Now = func() time.Time { return testNow }
	return r, &buf
}
