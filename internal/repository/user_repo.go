package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/speedy-match/internal/db"
)

// UserRepository reads users together with their match profiles.
// Users are owned by the accounts subsystem; this repository never writes them
// outside of seeding and tests.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// GetUser loads one user with its match profile preloaded (nil when the
// profile was never created).
//
// Returns gorm.ErrRecordNotFound (wrapped) when the user does not exist.
func (r *UserRepository) GetUser(ctx context.Context, userID uint64) (*db.User, error) {
	var u db.User
	err := r.db.WithContext(ctx).
		Preload("MatchProfile").
		Where("id = ?", userID).
		First(&u).Error
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	return &u, nil
}

// MissingIDs returns the ids among userIDs that have no users row, in the
// order given.
//
// Example:
//
//	missing, _ := repo.MissingIDs(ctx, 1, 404) // [404]
func (r *UserRepository) MissingIDs(ctx context.Context, userIDs ...uint64) ([]uint64, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	var found []uint64
	err := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id IN ?", userIDs).
		Pluck("id", &found).Error
	if err != nil {
		return nil, fmt.Errorf("check users exist: %w", err)
	}

	exists := make(map[uint64]bool, len(found))
	for _, id := range found {
		exists[id] = true
	}
	var missing []uint64
	for _, id := range userIDs {
		if !exists[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// CandidateQuery describes one candidate pre-filter run.
type CandidateQuery struct {
	// Requester must have its MatchProfile loaded.
	Requester *db.User
	Language  string

	// Blocked are ids the requester blocked, Blocking are ids that blocked the requester.
	Blocked  []uint64
	Blocking []uint64

	// OnlyIDs restricts the result to these ids when non-nil. An empty,
	// non-nil slice matches nobody.
	OnlyIDs []uint64

	Limit     int
	MinHeight int
	MaxHeight int
	Now       time.Time
}

// FindCandidates returns users who pass every mutual pre-filter that can be
// expressed in SQL, ordered by last visit (most recent first).
//
// Behavior:
//   - Candidate must be active, activated in the language, allowed to use
//     Speedy Match and have a visible photo.
//   - Requester side: candidate gender, age, diet, smoking and relationship
//     status must be accepted (rank >= 1) by the requester's profile.
//   - Candidate side: the requester's gender, age, diet, smoking and
//     relationship status must be accepted by the candidate's profile.
//   - Candidate height inside [MinHeight, MaxHeight].
//   - Excludes the requester, blocked and blocking ids.
//   - Match profiles are preloaded on the returned users.
//
// Example:
//
//	repo.FindCandidates(ctx, CandidateQuery{Requester: u, Language: "en", Limit: 2400})
func (r *UserRepository) FindCandidates(ctx context.Context, q CandidateQuery) ([]*db.User, error) {
	if q.Requester == nil || q.Requester.MatchProfile == nil {
		return nil, fmt.Errorf("find candidates: requester match profile not loaded")
	}
	if q.OnlyIDs != nil && len(q.OnlyIDs) == 0 {
		return []*db.User{}, nil
	}

	req, p := q.Requester, q.Requester.MatchProfile
	now := q.Now
	if now.IsZero() {
		now = time.Now()
	}
	age := req.Age(now)
	bornAfter, bornBefore := birthDateRange(p.MinAgeToMatch, p.MaxAgeToMatch, now)

	query := r.db.WithContext(ctx).
		Model(&db.User{}).
		Select("users.*").
		Joins("JOIN match_profiles mp ON mp.user_id = users.id").
		Preload("MatchProfile").
		Where("users.id <> ?", req.ID).
		Where("users.is_active = ? AND users.photo_visible_on_website = ?", true, true).
		Where("mp.active_languages LIKE ?", db.StringSet{}.Pattern(q.Language)).
		Where("mp.not_allowed_to_use_speedy_match = ?", false).
		// requester side
		Where("users.gender IN ?", []int(p.GenderToMatch)).
		Where("users.date_of_birth >= ? AND users.date_of_birth < ?", bornAfter, bornBefore).
		Where("users.diet IN ?", p.DietMatch.AcceptedValues()).
		Where("users.smoking_status IN ?", p.SmokingStatusMatch.AcceptedValues()).
		Where("users.relationship_status IN ?", p.RelationshipStatusMatch.AcceptedValues()).
		// candidate side
		Where("mp.gender_to_match LIKE ?", db.IntSet{}.Pattern(int(req.Gender))).
		Where("mp.min_age_to_match <= ? AND mp.max_age_to_match >= ?", age, age).
		Where("json_extract(mp.diet_match, ?) >= 1", rankTablePath(int(req.Diet))).
		Where("json_extract(mp.smoking_status_match, ?) >= 1", rankTablePath(int(req.SmokingStatus))).
		Where("json_extract(mp.relationship_status_match, ?) >= 1", rankTablePath(int(req.RelationshipStatus))).
		Where("users.height BETWEEN ? AND ?", q.MinHeight, q.MaxHeight)

	if len(q.Blocked) > 0 {
		query = query.Where("users.id NOT IN ?", q.Blocked)
	}
	if len(q.Blocking) > 0 {
		query = query.Where("users.id NOT IN ?", q.Blocking)
	}
	if q.OnlyIDs != nil {
		query = query.Where("users.id IN ?", q.OnlyIDs)
	}

	query = query.Order("mp.last_visit DESC").Order("users.id ASC")
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	var users []*db.User
	if err := query.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("find candidates for %d: %w", req.ID, err)
	}
	return users, nil
}

// birthDateRange turns an inclusive age range into a date-of-birth range
// [after, before) relative to the calendar day of now.
func birthDateRange(minAge, maxAge int, now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	after := today.AddDate(-(maxAge + 1), 0, 1)
	before := today.AddDate(-minAge, 0, 1)
	return after, before
}

// rankTablePath is the JSON path of an enum value inside a compatibility table.
func rankTablePath(value int) string {
	return `$."` + strconv.Itoa(value) + `"`
}
