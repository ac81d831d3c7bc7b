package matching

import (
	"errors"
	"math"

	"github.com/oggyb/speedy-match/internal/db"
)

var (
	ErrNoLocation      = errors.New("location not resolved")
	ErrInvalidLocation = errors.New("invalid coordinates")
)

// Distance tier indexes; 10 is the worst (unknown or very far).
var distanceTiers = [...]int{0, 2, 4, 6, 8, 10}

const worstDistanceTier = 10

// Synthetic tier draw: buckets below syntheticTierCutoff (of distanceBucketModulus)
// skip the real distance. Below nearestTierCutoff they get the nearest tier.
const (
	distanceBucketModulus = 6000
	syntheticTierCutoff   = 480
	nearestTierCutoff     = 36
)

// TierOffset converts a tier index to days.
func TierOffset(index int) int {
	if index < 10 {
		return int(math.RoundToEven(float64(index) * 8 * 30 / 10))
	}
	return int(math.RoundToEven(float64(index) * 15 * 30 / 10))
}

// TierForDistance maps kilometres to a tier index.
func TierForDistance(km float64) int {
	switch {
	case km < 60:
		return 0
	case km < 300:
		return 2
	case km < 1200:
		return 4
	case km < 3000:
		return 6
	case km < 6000:
		return 8
	default:
		return worstDistanceTier
	}
}

// DistanceKm is the haversine distance between two users' resolved locations.
func DistanceKm(a, b *db.User) (float64, error) {
	lat1, lon1, err := coordinates(a)
	if err != nil {
		return 0, err
	}
	lat2, lon2, err := coordinates(b)
	if err != nil {
		return 0, err
	}
	return haversine(lat1, lon1, lat2, lon2), nil
}

func coordinates(u *db.User) (float64, float64, error) {
	if u == nil || u.Latitude == nil || u.Longitude == nil || u.GeoResolvedAt == nil {
		return 0, 0, ErrNoLocation
	}
	lat, lon := *u.Latitude, *u.Longitude
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, ErrInvalidLocation
	}
	return lat, lon, nil
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371 // km

	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}
