package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedTestData resets the database and populates it with demo users for matching.
//
// Behavior:
//  1. Clears existing data in `blocks`, `likes`, `match_profiles` and `users`.
//  2. Creates 40 users with varied gender/diet/smoking/relationship status,
//     heights, locations and an active match profile in every given language.
//  3. Generates random likes (~6 per user) and a handful of blocks.
//
// Compatible with both MySQL and SQLite (AUTO_INCREMENT reset skipped for SQLite).
func SeedTestData(db *gorm.DB, languages []string) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now().UTC()

	if err := clearTables(db); err != nil {
		return err
	}
	log.Println("Cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	const total = 40
	for i := 1; i <= total; i++ {
		lat := 31.0 + r.Float64()*2
		lng := 34.0 + r.Float64()*2
		resolved := now.Add(-time.Duration(r.Intn(72)) * time.Hour)

		user := User{
			Username:              fmt.Sprintf("user%d", i),
			PasswordHash:          string(hash),
			IsActive:              true,
			PhotoVisibleOnWebsite: r.Intn(10) > 0,
			Gender:                AllGenders[r.Intn(2)],
			Diet:                  ValidDiets[r.Intn(len(ValidDiets))],
			SmokingStatus:         ValidSmokingStatuses[r.Intn(len(ValidSmokingStatuses))],
			RelationshipStatus:    ValidRelationshipStatuses[r.Intn(3)],
			DateOfBirth:           now.AddDate(-(20 + r.Intn(30)), -r.Intn(12), 0).Truncate(24 * time.Hour),
			Height:                150 + r.Intn(50),
			FriendsCount:          r.Intn(40),
			Latitude:              &lat,
			Longitude:             &lng,
			GeoResolvedAt:         &resolved,
			Descriptions:          map[string]string{},
			MatchDescriptions:     map[string]string{},
			CreatedAt:             now.AddDate(0, 0, -r.Intn(400)),
		}
		for _, lang := range languages {
			user.Descriptions[lang] = fmt.Sprintf("I am user number %d and I like long walks, good books and cooking dinner for friends.", i)
			user.MatchDescriptions[lang] = "Someone kind, curious and honest who enjoys the outdoors."
		}

		profile := NewMatchProfile(0, now.Add(-time.Duration(r.Intn(24*200))*time.Hour))
		profile.ActiveLanguages = append(StringSet{}, languages...)
		profile.GenderToMatch = IntSet{int(AllGenders[2-int(user.Gender)])}
		profile.MinAgeToMatch = 18
		profile.MaxAgeToMatch = 60
		profile.ProfilePictureMonthsOffset = []int{0, 5}[r.Intn(2)]
		user.MatchProfile = profile

		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
	}
	log.Printf("Seeded %d users.", total)

	likes := 0
	for from := 1; from <= total; from++ {
		for j := 0; j < 6; j++ {
			to := uint64(r.Intn(total) + 1)
			if to == uint64(from) {
				continue
			}
			like := Like{FromUserID: uint64(from), ToUserID: to}
			if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
				return fmt.Errorf("failed to seed like: %w", err)
			}
			likes++
		}
	}

	for i := 0; i < total/10; i++ {
		blocker := uint64(r.Intn(total) + 1)
		blocked := uint64(r.Intn(total) + 1)
		if blocker == blocked {
			continue
		}
		block := Block{BlockerID: blocker, BlockedID: blocked}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&block).Error; err != nil {
			return fmt.Errorf("failed to seed block: %w", err)
		}
	}
	log.Printf("Seeded %d likes.", likes)

	return nil
}

func clearTables(db *gorm.DB) error {
	for _, table := range []string{"blocks", "likes", "match_profiles", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	// Reset auto-increment sequences
	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'users'")
	}
	return nil
}
