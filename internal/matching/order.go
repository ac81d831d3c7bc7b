package matching

import (
	"math"
	"sort"
	"time"

	"github.com/oggyb/speedy-match/internal/db"
)

const (
	windowStepMonths = 4
	windowMaxMonths  = 24
	orderBucketDays  = 40
)

// Scored is a ranked candidate with its days offset.
type Scored struct {
	User   *db.User
	Rank   int
	Offset int
}

// DaysSince is the number of whole days from t to now, floored.
func DaysSince(t, now time.Time) int {
	return int(math.Floor(now.Sub(t).Hours() / 24))
}

// SelectWindow widens the recency window by 4 months, from 4 up to 24, until
// at least target users visited within it. It returns the window in months and
// the users inside it, keeping their order.
func SelectWindow(users []*db.User, target int, now time.Time) (int, []*db.User) {
	months := windowStepMonths
	for months < windowMaxMonths && countVisitedSince(users, windowStart(months, now)) < target {
		months += windowStepMonths
	}

	since := windowStart(months, now)
	out := make([]*db.User, 0, len(users))
	for _, u := range users {
		if !u.MatchProfile.LastVisit.Before(since) {
			out = append(out, u)
		}
	}
	return months, out
}

func windowStart(months int, now time.Time) time.Time {
	return now.Add(-time.Duration(months*month) * day)
}

func countVisitedSince(users []*db.User, since time.Time) int {
	n := 0
	for _, u := range users {
		if !u.MatchProfile.LastVisit.Before(since) {
			n++
		}
	}
	return n
}

// orderBucket groups effective staleness (days since last visit plus offset)
// into 40-day buckets.
func orderBucket(s Scored, now time.Time) int {
	days := DaysSince(s.User.MatchProfile.LastVisit, now) + s.Offset
	if days < 0 {
		days = 0
	}
	return days / orderBucketDays
}

// Order sorts by staleness bucket ascending, then rank and last visit descending.
// Ties keep their input order.
func Order(list []Scored, now time.Time) {
	keys := make(map[*db.User]int, len(list))
	for _, s := range list {
		keys[s.User] = orderBucket(s, now)
	}
	sort.SliceStable(list, func(i, j int) bool {
		bi, bj := keys[list[i].User], keys[list[j].User]
		if bi != bj {
			return bi < bj
		}
		if list[i].Rank != list[j].Rank {
			return list[i].Rank > list[j].Rank
		}
		return list[i].User.MatchProfile.LastVisit.After(list[j].User.MatchProfile.LastVisit)
	})
}

// ReorderTo sorts list to follow the order of ids; members missing from ids go last.
func ReorderTo(list []Scored, ids []uint64) {
	pos := make(map[uint64]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}
	sort.SliceStable(list, func(i, j int) bool {
		pi, ok := pos[list[i].User.ID]
		if !ok {
			pi = len(ids)
		}
		pj, ok := pos[list[j].User.ID]
		if !ok {
			pj = len(ids)
		}
		return pi < pj
	})
}
