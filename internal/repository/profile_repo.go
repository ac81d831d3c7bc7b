package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/speedy-match/internal/db"
)

// ProfileRepository provides data access for match profiles.
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new repository bound to the given DB connection.
func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: database}
}

// GetOrCreate returns the user's match profile, creating it with defaults
// (every gender, ages 12-180, every table value at rank 5, last visit = now)
// when it does not exist yet.
//
// Behavior:
//   - Concurrent first accesses are safe: the insert ignores conflicts and the
//     row is read back.
//
// Example:
//
//	p, err := repo.GetOrCreate(ctx, 42, time.Now())
func (r *ProfileRepository) GetOrCreate(ctx context.Context, userID uint64, now time.Time) (*db.MatchProfile, error) {
	var p db.MatchProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("get match profile %d: %w", userID, err)
	}

	defaults := db.NewMatchProfile(userID, now)
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(defaults).Error
	if err != nil {
		return nil, fmt.Errorf("create match profile %d: %w", userID, err)
	}

	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, fmt.Errorf("reload match profile %d: %w", userID, err)
	}
	return &p, nil
}

// Save validates and upserts a profile. The write evicts the user's cached
// match lists through the invalidation callbacks.
func (r *ProfileRepository) Save(ctx context.Context, p *db.MatchProfile) error {
	if err := db.ValidateMatchProfile(p); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(p).Error
}

// UpdateLastVisit records a visit without evicting the cached match lists.
func (r *ProfileRepository) UpdateLastVisit(ctx context.Context, userID uint64, at time.Time) error {
	return db.WithoutMatchInvalidation(r.db.WithContext(ctx)).
		Model(&db.MatchProfile{}).
		Where("user_id = ?", userID).
		Update("last_visit", at).Error
}

// UpdateNumberOfMatches stores the size of the last computed match list
// without evicting the cached match lists.
func (r *ProfileRepository) UpdateNumberOfMatches(ctx context.Context, userID uint64, n int) error {
	return db.WithoutMatchInvalidation(r.db.WithContext(ctx)).
		Model(&db.MatchProfile{}).
		Where("user_id = ?", userID).
		Update("number_of_matches", n).Error
}
