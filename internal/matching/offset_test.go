package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/speedy-match/internal/db"
)

// baseCandidate is an established member who visited 30 days ago with a
// plausible height, plenty of friends and complete texts.
func baseCandidate() *db.User {
	b := newUser(2, db.GenderMale)
	b.MatchProfile.LastVisit = testNow.Add(-30 * day)
	return b
}

func offsetOf(requester, candidate *db.User, rank int, likes int64) int {
	return NewScorer(nil).DaysOffset(requester, candidate, Signals{Rank: rank, LikesReceived: likes}, "en", testNow)
}

func TestDaysOffset_Deterministic(t *testing.T) {
	a, b := newUser(1, db.GenderFemale), baseCandidate()
	first := offsetOf(a, b, 3, 4)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, offsetOf(a, b, 3, 4))
	}
}

func TestDaysOffset_LikesReceived(t *testing.T) {
	a, b := newUser(1, db.GenderFemale), baseCandidate()
	popular := offsetOf(a, b, 3, 10)

	assert.Equal(t, popular+30, offsetOf(a, b, 3, 5))
	assert.Equal(t, popular+30, offsetOf(a, b, 3, 3))
	assert.Equal(t, popular+80, offsetOf(a, b, 3, 2))
	assert.Equal(t, popular+80, offsetOf(a, b, 3, 0))
}

func TestDaysOffset_FewFriendsOnlyBelowTopTier(t *testing.T) {
	a := newUser(1, db.GenderFemale)
	many, few := baseCandidate(), baseCandidate()
	few.FriendsCount = 5

	assert.Equal(t, offsetOf(a, many, 3, 0)+30, offsetOf(a, few, 3, 0))
	assert.Equal(t, offsetOf(a, many, 5, 0), offsetOf(a, few, 5, 0))
}

func TestDaysOffset_ImplausibleHeight(t *testing.T) {
	a := newUser(1, db.GenderFemale)
	normal, short := baseCandidate(), baseCandidate()
	short.Height = 125

	assert.Equal(t, offsetOf(a, normal, 3, 10)+30, offsetOf(a, short, 3, 10))

	// 125cm is plausible for a minor
	minor, minorShort := baseCandidate(), baseCandidate()
	minor.DateOfBirth = testNow.AddDate(-16, 0, 0)
	minorShort.DateOfBirth = minor.DateOfBirth
	minorShort.Height = 125
	assert.Equal(t, offsetOf(a, minor, 3, 10), offsetOf(a, minorShort, 3, 10))
}

func TestDaysOffset_NewOrRecentMembersSkipEngagementPenalties(t *testing.T) {
	a := newUser(1, db.GenderFemale)

	for name, setup := range map[string]func(u *db.User){
		"signed up 3 days ago": func(u *db.User) { u.CreatedAt = testNow.Add(-3 * day) },
		"visited 2 days ago":   func(u *db.User) { u.MatchProfile.LastVisit = testNow.Add(-2 * day) },
	} {
		t.Run(name, func(t *testing.T) {
			engaged, quiet := baseCandidate(), baseCandidate()
			setup(engaged)
			setup(quiet)
			quiet.FriendsCount = 0
			quiet.Height = 125

			assert.Equal(t, offsetOf(a, engaged, 3, 50), offsetOf(a, quiet, 3, 0))
		})
	}
}

func TestDaysOffset_LongAbsence(t *testing.T) {
	a := newUser(1, db.GenderFemale)
	recent, gone := baseCandidate(), baseCandidate()
	recent.MatchProfile.LastVisit = testNow.Add(-179 * day)
	gone.MatchProfile.LastVisit = testNow.Add(-200 * day)

	assert.Equal(t, offsetOf(a, recent, 3, 10)+180, offsetOf(a, gone, 3, 10))
}

func TestDaysOffset_TopTierBonus(t *testing.T) {
	a, b := newUser(1, db.GenderFemale), baseCandidate()
	assert.Equal(t, offsetOf(a, b, 3, 0)-30, offsetOf(a, b, 4, 0))
	assert.Equal(t, offsetOf(a, b, 3, 0)-30, offsetOf(a, b, 5, 0))
}

func TestDaysOffset_TopTierSkipsLastVisitBucketBefore20Days(t *testing.T) {
	a, b := newUser(1, db.GenderFemale), baseCandidate()
	b.MatchProfile.LastVisit = testNow.Add(-15 * day)

	lastVisitDays := 0
	switch bucket := StableBucket(a.ID, b.ID, SaltLastVisit, 12, testNow); {
	case bucket >= 9:
		lastVisitDays = 60
	case bucket >= 5:
		lastVisitDays = 30
	}

	assert.Equal(t, offsetOf(a, b, 3, 0)-30-lastVisitDays, offsetOf(a, b, 4, 0))
}

func TestDaysOffset_PictureAndContentPenalties(t *testing.T) {
	a := newUser(1, db.GenderFemale)
	base := offsetOf(a, baseCandidate(), 3, 10)

	hidden := baseCandidate()
	hidden.MatchProfile.ProfilePictureMonthsOffset = 5
	assert.Equal(t, base+150, offsetOf(a, hidden, 3, 10))

	blank := baseCandidate()
	blank.Descriptions = nil
	blank.MatchDescriptions = nil
	assert.Equal(t, base+1320, offsetOf(a, blank, 3, 10))
}

// offsetBeforeJitter is DaysOffset without the final jitter for an
// established, plausible, well connected candidate ranked 3 with 10 likes.
func offsetBeforeJitter(a, b *db.User) int {
	off := 0
	if testNow.Sub(b.MatchProfile.LastVisit) >= 10*day {
		switch bucket := StableBucket(a.ID, b.ID, SaltLastVisit, 12, testNow); {
		case bucket >= 9:
			off += 60
		case bucket >= 5:
			off += 30
		}
	}
	return off + NewScorer(nil).DistanceOffset(a, b, testNow) + ContentPenalty(b, "en")
}

func TestDaysOffset_FinalJitter(t *testing.T) {
	a := newUser(1, db.GenderFemale)

	cases := []struct {
		name   string
		lo, hi int
		stale  int // visited 30 days ago
		recent int // visited 4 days ago
	}{
		{"bucket 74-76", 74, 77, -180, -180},
		{"bucket 71-73", 71, 74, -60, -60},
		{"bucket 48-70", 48, 71, 30, 0},
		{"bucket 25-47", 25, 48, 60, 0},
		{"bucket 0-24", 0, 25, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var id uint64
			for c := uint64(2); c < 5000; c++ {
				if b := StableBucket(a.ID, c, SaltJitter, 77, testNow); b >= tc.lo && b < tc.hi {
					id = c
					break
				}
			}
			require.NotZero(t, id, "no candidate in jitter range")

			stale := newUser(id, db.GenderMale)
			stale.MatchProfile.LastVisit = testNow.Add(-30 * day)
			assert.Equal(t, tc.stale, offsetOf(a, stale, 3, 10)-offsetBeforeJitter(a, stale))

			recent := newUser(id, db.GenderMale)
			recent.MatchProfile.LastVisit = testNow.Add(-4 * day)
			assert.Equal(t, tc.recent, offsetOf(a, recent, 3, 10)-offsetBeforeJitter(a, recent))
		})
	}
}

func TestDaysOffset_JitterIsNotClamped(t *testing.T) {
	a := newUser(1, db.GenderFemale)
	for id := uint64(2); id < 2000; id++ {
		if StableBucket(a.ID, id, SaltJitter, 77, testNow) < 74 {
			continue
		}
		b := newUser(id, db.GenderMale)
		b.MatchProfile.LastVisit = testNow.Add(-time.Hour)
		b.Latitude, b.Longitude = a.Latitude, a.Longitude
		if NewScorer(nil).DistanceOffset(a, b, testNow) != 0 {
			continue
		}
		// top tier, nearby, fresh and complete: everything before the jitter is 0
		assert.Equal(t, -180, offsetOf(a, b, 5, 100))
		return
	}
	t.Fatal("no candidate in the top jitter range")
}
