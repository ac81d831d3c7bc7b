package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oggyb/speedy-match/internal/db"
)

func visitedDaysAgo(id uint64, days int) *db.User {
	u := newUser(id, db.GenderMale)
	u.MatchProfile.LastVisit = testNow.Add(-time.Duration(days) * day)
	return u
}

func ids(list []Scored) []uint64 {
	out := make([]uint64, len(list))
	for i, s := range list {
		out[i] = s.User.ID
	}
	return out
}

func TestDaysSince(t *testing.T) {
	assert.Equal(t, 0, DaysSince(testNow.Add(-23*time.Hour), testNow))
	assert.Equal(t, 1, DaysSince(testNow.Add(-36*time.Hour), testNow))
	assert.Equal(t, 30, DaysSince(testNow.Add(-30*day), testNow))
}

func TestOrder(t *testing.T) {
	list := []Scored{
		{User: visitedDaysAgo(1, 1), Rank: 3},
		{User: visitedDaysAgo(2, 2), Rank: 5, Offset: 100},
		{User: visitedDaysAgo(3, 10), Rank: 5},
		{User: visitedDaysAgo(4, 5), Rank: 5},
		{User: visitedDaysAgo(5, 39), Rank: 5, Offset: 45},
		{User: visitedDaysAgo(6, 1), Rank: 1, Offset: -600},
	}

	Order(list, testNow)
	assert.Equal(t, []uint64{4, 3, 1, 6, 2, 5}, ids(list))
}

func TestOrder_TiesKeepInputOrder(t *testing.T) {
	same := testNow.Add(-3 * day)
	a, b, c := newUser(7, db.GenderMale), newUser(8, db.GenderMale), newUser(9, db.GenderMale)
	for _, u := range []*db.User{a, b, c} {
		u.MatchProfile.LastVisit = same
	}
	list := []Scored{{User: c, Rank: 4}, {User: a, Rank: 4}, {User: b, Rank: 4}}

	Order(list, testNow)
	assert.Equal(t, []uint64{9, 7, 8}, ids(list))
}

func TestSelectWindow(t *testing.T) {
	users := []*db.User{
		visitedDaysAgo(1, 10),
		visitedDaysAgo(2, 100),
		visitedDaysAgo(3, 200),
		visitedDaysAgo(4, 300),
		visitedDaysAgo(5, 800),
	}

	months, inside := SelectWindow(users, 2, testNow)
	assert.Equal(t, 4, months)
	assert.Len(t, inside, 2)

	months, inside = SelectWindow(users, 3, testNow)
	assert.Equal(t, 8, months)
	assert.Len(t, inside, 3)

	months, inside = SelectWindow(users, 4, testNow)
	assert.Equal(t, 12, months)
	assert.Len(t, inside, 4)

	// the window stops growing at 24 months
	months, inside = SelectWindow(users, 100, testNow)
	assert.Equal(t, 24, months)
	assert.Len(t, inside, 4)
	assert.Equal(t, uint64(1), inside[0].ID)
}

func TestReorderTo(t *testing.T) {
	list := []Scored{
		{User: visitedDaysAgo(1, 1)},
		{User: visitedDaysAgo(2, 1)},
		{User: visitedDaysAgo(3, 1)},
		{User: visitedDaysAgo(4, 1)},
	}

	ReorderTo(list, []uint64{3, 99, 1, 4})
	assert.Equal(t, []uint64{3, 1, 4, 2}, ids(list))
}
