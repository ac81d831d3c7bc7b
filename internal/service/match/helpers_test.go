package match_test

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/oggyb/speedy-match/internal/app"
	"github.com/oggyb/speedy-match/internal/cache"
	"github.com/oggyb/speedy-match/internal/config"
	"github.com/oggyb/speedy-match/internal/db"
	"github.com/oggyb/speedy-match/internal/service/match"
)

var testNow = time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC)

const (
	description      = "I love hiking in the north, cooking for friends and reading old novels on rainy days."
	matchDescription = "Someone kind and curious who likes nature and good food."
)

type fixture struct {
	svc    *match.Service
	appCtx *app.AppContext
	db     *gorm.DB
	mr     *miniredis.Miniredis
	cache  *cache.RedisCache
	cfg    *config.Config
}

// setupService spins up an in-memory SQLite DB, a miniredis and the cache
// invalidation callbacks, and wires everything into a Service whose clock is
// frozen at testNow. Each test gets its own isolated DB + Redis.
func setupService(t *testing.T, tune ...func(*config.Config)) *fixture {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, gdb.AutoMigrate(db.Models()...))

	mr := miniredis.RunT(t)

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	cfg.Match.Languages = []string{"en", "he"}
	cfg.Match.DefaultLanguage = "en"
	cfg.Match.CacheTTL = 24 * time.Hour
	cfg.Match.MinHeight = 100
	cfg.Match.MaxHeight = 250
	cfg.Match.QueryLimit = 2400
	cfg.Match.ResultLimit = 720
	cfg.Match.TargetActive = 1080
	cfg.Match.PageSize = 24
	for _, f := range tune {
		f(cfg)
	}

	redisCache := cache.NewRedisCache(cfg)
	t.Cleanup(func() { redisCache.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // discard logs in tests
	require.NoError(t, match.RegisterCacheInvalidation(gdb, redisCache, cfg.Match.Languages, logger))

	appCtx := app.New(gdb, redisCache, logger, cfg)
	svc := match.NewMatchService(appCtx).WithClock(func() time.Time { return testNow })

	return &fixture{svc: svc, appCtx: appCtx, db: gdb, mr: mr, cache: redisCache, cfg: cfg}
}

// newUser returns an active vegan non-smoking single user aged 30, 175cm,
// with complete texts and a profile activated in "en" accepting 18-60.
func newUser(id uint64, gender db.Gender, mods ...func(*db.User)) *db.User {
	p := db.NewMatchProfile(id, testNow.Add(-time.Duration(id)*time.Hour))
	p.ActiveLanguages = db.StringSet{"en"}
	p.MinAgeToMatch = 18
	p.MaxAgeToMatch = 60
	p.ProfilePictureMonthsOffset = 0

	lat, lng := 32.0853, 34.7818
	resolved := testNow.Add(-time.Hour)
	u := &db.User{
		ID:                    id,
		Username:              fmt.Sprintf("user%d", id),
		IsActive:              true,
		PhotoVisibleOnWebsite: true,
		Gender:                gender,
		Diet:                  db.DietVegan,
		SmokingStatus:         db.SmokingNo,
		RelationshipStatus:    db.RelationshipSingle,
		DateOfBirth:           time.Date(1996, 1, 15, 0, 0, 0, 0, time.UTC),
		Height:                175,
		FriendsCount:          25,
		Latitude:              &lat,
		Longitude:             &lng,
		GeoResolvedAt:         &resolved,
		Descriptions:          map[string]string{"en": description},
		MatchDescriptions:     map[string]string{"en": matchDescription},
		CreatedAt:             testNow.AddDate(-1, 0, 0),
		MatchProfile:          p,
	}
	for _, m := range mods {
		m(u)
	}
	return u
}

// requester is a woman looking for men aged 20-40.
func requester(id uint64) *db.User {
	return newUser(id, db.GenderFemale, func(u *db.User) {
		u.MatchProfile.GenderToMatch = db.IntSet{int(db.GenderMale)}
		u.MatchProfile.MinAgeToMatch = 20
		u.MatchProfile.MaxAgeToMatch = 40
	})
}

// candidate is a 25 year old man looking for women.
func candidate(id uint64, mods ...func(*db.User)) *db.User {
	base := func(u *db.User) {
		u.DateOfBirth = time.Date(2001, 1, 2, 0, 0, 0, 0, time.UTC)
		u.MatchProfile.GenderToMatch = db.IntSet{int(db.GenderFemale)}
	}
	return newUser(id, db.GenderMale, append([]func(*db.User){base}, mods...)...)
}

func (f *fixture) insert(t *testing.T, users ...*db.User) {
	t.Helper()
	for _, u := range users {
		require.NoError(t, f.db.Create(u).Error)
	}
}

func (f *fixture) cached(t *testing.T, userID uint64, lang string) bool {
	t.Helper()
	return f.mr.Exists(f.cache.KeyForMatches(userID, lang))
}

func ids(users []*db.User) []uint64 {
	out := make([]uint64, len(users))
	for i, u := range users {
		out[i] = u.ID
	}
	return out
}
