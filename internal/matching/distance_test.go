package matching

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/speedy-match/internal/db"
)

func TestTierOffset(t *testing.T) {
	want := map[int]int{0: 0, 2: 48, 4: 96, 6: 144, 8: 192, 10: 450}
	for tier, days := range want {
		assert.Equal(t, days, TierOffset(tier), "tier %d", tier)
	}
}

func TestTierForDistance(t *testing.T) {
	cases := []struct {
		km   float64
		tier int
	}{
		{0, 0}, {59.9, 0}, {60, 2}, {299, 2}, {300, 4}, {1199, 4},
		{1200, 6}, {2999, 6}, {3000, 8}, {5999, 8}, {6000, 10}, {15000, 10},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.tier, TierForDistance(tc.km), "%v km", tc.km)
	}
}

func TestDistanceKm(t *testing.T) {
	telAviv := newUser(1, db.GenderFemale)
	jerusalem := newUser(2, db.GenderMale)
	jerusalem.Latitude, jerusalem.Longitude = ptr(31.7683), ptr(35.2137)

	km, err := DistanceKm(telAviv, jerusalem)
	require.NoError(t, err)
	assert.InDelta(t, 54, km, 2)
	assert.Equal(t, 0, TierForDistance(km))

	same, err := DistanceKm(telAviv, telAviv)
	require.NoError(t, err)
	assert.InDelta(t, 0, same, 1e-9)
}

func TestDistanceKm_MissingOrInvalidLocation(t *testing.T) {
	a := newUser(1, db.GenderFemale)

	unresolved := newUser(2, db.GenderMale)
	unresolved.GeoResolvedAt = nil
	_, err := DistanceKm(a, unresolved)
	assert.ErrorIs(t, err, ErrNoLocation)

	noLat := newUser(3, db.GenderMale)
	noLat.Latitude = nil
	_, err = DistanceKm(noLat, a)
	assert.ErrorIs(t, err, ErrNoLocation)

	bad := newUser(4, db.GenderMale)
	bad.Latitude = ptr(123.0)
	_, err = DistanceKm(a, bad)
	assert.ErrorIs(t, err, ErrInvalidLocation)

	nan := newUser(5, db.GenderMale)
	nan.Longitude = ptr(math.NaN())
	_, err = DistanceKm(a, nan)
	assert.ErrorIs(t, err, ErrInvalidLocation)
}

// northOf returns a candidate due north of the requester at the given distance.
func northOf(a *db.User, id uint64, km float64) *db.User {
	kmPerDegree := 6371 * math.Pi / 180
	b := newUser(id, db.GenderMale)
	b.Latitude, b.Longitude = ptr(*a.Latitude+km/kmPerDegree), ptr(*a.Longitude)
	return b
}

// candidatesByDistanceBucket returns one candidate id per distance bucket
// range: nearest synthetic tier, other synthetic tiers and real distance.
func candidatesByDistanceBucket(t *testing.T, a *db.User) (nearest, synthetic, measured uint64) {
	t.Helper()
	for id := uint64(2); id < 50000 && (nearest == 0 || synthetic == 0 || measured == 0); id++ {
		switch b := StableBucket(a.ID, id, SaltDistance, distanceBucketModulus, testNow); {
		case b < 36:
			if nearest == 0 {
				nearest = id
			}
		case b < 480:
			if synthetic == 0 {
				synthetic = id
			}
		default:
			if measured == 0 {
				measured = id
			}
		}
	}
	require.NotZero(t, nearest)
	require.NotZero(t, synthetic)
	require.NotZero(t, measured)
	return nearest, synthetic, measured
}

func TestDistanceOffset_RealDistanceTiers(t *testing.T) {
	s := NewScorer(nil)
	a := newUser(1, db.GenderFemale)
	_, _, id := candidatesByDistanceBucket(t, a)

	cases := []struct {
		km   float64
		want int
	}{
		{0, 0}, {59, 0}, {61, 48}, {299, 48}, {301, 96},
		{1199, 96}, {1201, 144}, {2999, 144}, {3001, 192}, {5999, 192}, {6001, 450},
	}
	for _, tc := range cases {
		b := northOf(a, id, tc.km)
		km, err := DistanceKm(a, b)
		require.NoError(t, err)
		require.InDelta(t, tc.km, km, 0.01)
		assert.Equal(t, tc.want, s.DistanceOffset(a, b, testNow), "%v km", tc.km)
	}

	unknown := newUser(id, db.GenderMale)
	unknown.GeoResolvedAt = nil
	assert.Equal(t, 450, s.DistanceOffset(a, unknown, testNow))
}

func TestDistanceOffset_SyntheticBuckets(t *testing.T) {
	s := NewScorer(nil)
	a := newUser(1, db.GenderFemale)
	nearest, synthetic, _ := candidatesByDistanceBucket(t, a)

	// below 36 the nearest tier is used, however far or unknown the candidate is
	unknown := newUser(nearest, db.GenderMale)
	unknown.Latitude = nil
	for _, b := range []*db.User{northOf(a, nearest, 61), northOf(a, nearest, 5000), unknown} {
		assert.Equal(t, 0, s.DistanceOffset(a, b, testNow))
	}

	// from 36 to 479 the tier is drawn from the bucket
	bucket := StableBucket(a.ID, synthetic, SaltDistance, distanceBucketModulus, testNow)
	want := TierOffset(distanceTiers[2+bucket%3])
	assert.Contains(t, []int{96, 144, 192}, want)
	for _, km := range []float64{0, 59, 5000} {
		assert.Equal(t, want, s.DistanceOffset(a, northOf(a, synthetic, km), testNow), "%v km", km)
	}
}

func TestDistanceOffset_SyntheticTierIgnoresRealDistance(t *testing.T) {
	s := NewScorer(nil)
	a := newUser(1, db.GenderFemale)

	for id := uint64(2); id < 20000; id++ {
		bucket := StableBucket(a.ID, id, SaltDistance, distanceBucketModulus, testNow)
		if bucket >= syntheticTierCutoff {
			continue
		}
		far := newUser(id, db.GenderMale)
		far.Latitude, far.Longitude = ptr(-33.8688), ptr(151.2093)

		want := TierOffset(distanceTiers[0])
		if bucket >= nearestTierCutoff {
			want = TierOffset(distanceTiers[2+bucket%3])
		}
		assert.Equal(t, want, s.DistanceOffset(a, far, testNow))
		return
	}
	t.Fatal("no synthetic bucket found")
}
