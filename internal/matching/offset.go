package matching

import (
	"log/slog"
	"time"

	"github.com/oggyb/speedy-match/internal/db"
)

const (
	day   = 24 * time.Hour
	month = 30 // days
)

// Height ranges considered plausible when scoring (not the hard gate).
var (
	adultHeightRange = [2]int{130, 220}
	minorHeightRange = [2]int{120, 200}
)

// Scorer computes the days offset of a candidate: an artificial staleness
// added to the last visit age before ordering. Lower is shown sooner.
type Scorer struct {
	Logger *slog.Logger
}

func NewScorer(log *slog.Logger) *Scorer {
	return &Scorer{Logger: log}
}

// Signals are the per-candidate inputs not stored on the user row.
type Signals struct {
	Rank          int
	LikesReceived int64
}

// DaysOffset applies every scoring signal in order.
func (s *Scorer) DaysOffset(requester, candidate *db.User, sig Signals, language string, now time.Time) int {
	p := candidate.MatchProfile
	sinceVisit := now.Sub(p.LastVisit)
	topTier := sig.Rank >= TopTierRank
	visitedLast5Days := sinceVisit < 5*day

	offset := 0
	if sinceVisit >= 180*day {
		offset += 6 * month
	}

	if !(now.Sub(candidate.CreatedAt) < 15*day || visitedLast5Days) {
		if !(topTier && sinceVisit < 10*day) {
			switch {
			case sig.LikesReceived >= 10:
			case sig.LikesReceived >= 3:
				offset += 1 * month
			default:
				offset += 80
			}
		}
		if !topTier && candidate.FriendsCount < 20 {
			offset += 1 * month
		}
		if !plausibleHeight(candidate, now) {
			offset += 1 * month
		}
	}

	if sinceVisit >= 10*day && !(topTier && sinceVisit < 20*day) {
		b := StableBucket(requester.ID, candidate.ID, SaltLastVisit, 12, now)
		switch {
		case b >= 9:
			offset += 2 * month
		case b >= 5:
			offset += 1 * month
		}
	}

	offset += s.DistanceOffset(requester, candidate, now)
	if topTier {
		offset -= 1 * month
	}
	if offset < 0 {
		offset = 0
	}

	offset += ContentPenalty(candidate, language)
	offset += p.ProfilePictureMonthsOffset * month

	b := StableBucket(requester.ID, candidate.ID, SaltJitter, 77, now)
	switch {
	case b >= 74:
		offset -= 6 * month
	case b >= 71:
		offset -= 2 * month
	case visitedLast5Days:
	case b >= 48:
		offset += 1 * month
	case b >= 25:
		offset += 2 * month
	}
	return offset
}

// DistanceOffset returns the day offset of the distance tier. A small stable
// share of pairs gets a synthetic tier; the rest use the real distance, and the
// worst tier when it cannot be computed.
func (s *Scorer) DistanceOffset(requester, candidate *db.User, now time.Time) int {
	b := StableBucket(requester.ID, candidate.ID, SaltDistance, distanceBucketModulus, now)
	if b < syntheticTierCutoff {
		if b < nearestTierCutoff {
			return TierOffset(distanceTiers[0])
		}
		return TierOffset(distanceTiers[2+b%3])
	}

	km, err := DistanceKm(requester, candidate)
	if err != nil {
		s.logger().Debug("distance unavailable, using worst tier",
			"requester_id", requester.ID, "candidate_id", candidate.ID, "err", err)
		return TierOffset(worstDistanceTier)
	}
	return TierOffset(TierForDistance(km))
}

func plausibleHeight(u *db.User, now time.Time) bool {
	r := minorHeightRange
	if u.Age(now) >= 18 {
		r = adultHeightRange
	}
	return r[0] <= u.Height && u.Height <= r[1]
}

func (s *Scorer) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
