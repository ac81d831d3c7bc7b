package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/speedy-match/internal/app"
	"github.com/oggyb/speedy-match/internal/db"
	svcErr "github.com/oggyb/speedy-match/internal/errors"
	"github.com/oggyb/speedy-match/internal/logger"
	"github.com/oggyb/speedy-match/internal/matching"
	"github.com/oggyb/speedy-match/internal/repository"
	"github.com/oggyb/speedy-match/internal/utils/pagination"
)

var (
	ErrInvalidUserID       = fmt.Errorf("%w: user id must be a positive integer", svcErr.ErrInvalidArgument)
	ErrUserNotFound        = fmt.Errorf("user %w", svcErr.ErrNotFound)
	ErrUnsupportedLanguage = fmt.Errorf("%w: unsupported language", svcErr.ErrInvalidArgument)
	ErrSelfAction          = fmt.Errorf("%w: cannot act on yourself", svcErr.ErrInvalidArgument)
)

// Service builds Speedy Match candidate lists on top of the repositories,
// the Redis match cache and the ranking engine.
type Service struct {
	appCtx   *app.AppContext
	users    *repository.UserRepository
	profiles *repository.ProfileRepository
	blocks   *repository.BlockRepository
	likes    *repository.LikeRepository

	ranker   *matching.Ranker
	scorer   *matching.Scorer
	settings matching.Settings
	now      func() time.Time
}

// NewMatchService creates the service with dependencies from AppContext:
//   - DB connection (via the user, profile, block and like repositories)
//   - RedisCache for the cached match lists
//   - Config.Match for languages, cache TTL and pipeline limits
func NewMatchService(appCtx *app.AppContext) *Service {
	settings := matching.SettingsFromConfig(appCtx.Config)
	s := &Service{
		appCtx:   appCtx,
		users:    repository.NewUserRepository(appCtx.DB),
		profiles: repository.NewProfileRepository(appCtx.DB),
		blocks:   repository.NewBlockRepository(appCtx.DB),
		likes:    repository.NewLikeRepository(appCtx.DB),
		ranker:   matching.NewRanker(settings, appCtx.Logger),
		scorer:   matching.NewScorer(appCtx.Logger),
		settings: settings,
	}
	return s.WithClock(time.Now)
}

// WithClock replaces the time source of the service and its ranker.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = func() time.Time { return now().UTC() }
	s.ranker.Now = s.now
	return s
}

// request is the state of one match computation.
type request struct {
	requester *db.User
	language  string
	blocked   matching.IDSet
	blocking  matching.IDSet
	now       time.Time
	log       *slog.Logger
}

// GetMatches returns the requester's ranked candidates (at most the result
// limit), each with MatchProfile.Rank set.
//
// Behavior:
//   - Requester not active in the language → empty list.
//   - Cache hit → the cached members are re-queried and re-ranked; members that
//     now rank 0 or fail a pre-filter are dropped, the rest keep the cached order.
//   - Cache miss → full pipeline (query, window, rank, offsets, order,
//     truncate), then the match count is stored and the id list cached.
//   - Cache read/write errors are returned.
//
// Example:
//
//	users, err := svc.GetMatches(ctx, 42, "en")
func (s *Service) GetMatches(ctx context.Context, userID uint64, language string) ([]*db.User, error) {
	started := time.Now()

	req, err := s.newRequest(ctx, userID, language)
	if err != nil {
		return nil, err
	}
	if !req.requester.MatchProfile.IsActive(req.requester, req.language) {
		req.log.Debug("requester not active in language, no matches")
		return []*db.User{}, nil
	}
	s.diagnose(req)

	ttl := s.appCtx.Config.Match.CacheTTL
	ids, hit, err := s.appCtx.RedisCache.GetMatches(ctx, userID, req.language, ttl)
	if err != nil {
		return nil, fmt.Errorf("read match cache: %w", err)
	}

	var (
		users []*db.User
		path  string
	)
	if hit {
		cacheLookupsTotal.WithLabelValues("hit").Inc()
		path = pathCached
		users, err = s.rescoreCached(ctx, req, ids)
	} else {
		cacheLookupsTotal.WithLabelValues("miss").Inc()
		path = pathFull
		users, err = s.computeMatches(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	pipelineDuration.WithLabelValues(path).Observe(time.Since(started).Seconds())
	resultSize.Observe(float64(len(users)))
	req.log.Debug("GetMatches result", "path", path, "count", len(users))
	return users, nil
}

// computeMatches runs the full pipeline and stores its result.
func (s *Service) computeMatches(ctx context.Context, req *request) ([]*db.User, error) {
	candidates, err := s.users.FindCandidates(ctx, s.candidateQuery(req, nil, s.settings.QueryLimit))
	if err != nil {
		return nil, err
	}

	months, windowed := matching.SelectWindow(candidates, s.settings.TargetActive, req.now)
	ranked := s.rankAll(req, windowed)

	ids := make([]uint64, len(ranked))
	for i, sc := range ranked {
		ids[i] = sc.User.ID
	}
	likes, err := s.likes.CountReceivedByUsers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count likes received: %w", err)
	}

	for i := range ranked {
		sig := matching.Signals{Rank: ranked[i].Rank, LikesReceived: likes[ranked[i].User.ID]}
		ranked[i].Offset = s.scorer.DaysOffset(req.requester, ranked[i].User, sig, req.language, req.now)
	}
	matching.Order(ranked, req.now)
	if len(ranked) > s.settings.ResultLimit {
		ranked = ranked[:s.settings.ResultLimit]
	}

	if len(candidates) > 0 && len(ranked) == 0 {
		req.log.Error("all candidates ranked zero", "candidates", len(candidates), "window_months", months)
	}

	users := rankedUsers(ranked)
	if err := s.profiles.UpdateNumberOfMatches(ctx, req.requester.ID, len(users)); err != nil {
		req.log.Error("failed to store number of matches", "err", err)
	}

	result := make([]uint64, len(users))
	for i, u := range users {
		result[i] = u.ID
	}
	ttl := s.appCtx.Config.Match.CacheTTL
	if err := s.appCtx.RedisCache.SetMatches(ctx, req.requester.ID, req.language, result, ttl); err != nil {
		return nil, fmt.Errorf("write match cache: %w", err)
	}

	req.log.Info("match list computed",
		"candidates", len(candidates),
		"window_months", months,
		"in_window", len(windowed),
		"matches", len(users),
	)
	return users, nil
}

// rescoreCached re-validates the cached members and keeps the cached order.
func (s *Service) rescoreCached(ctx context.Context, req *request, ids []uint64) ([]*db.User, error) {
	if ids == nil {
		ids = []uint64{}
	}
	candidates, err := s.users.FindCandidates(ctx, s.candidateQuery(req, ids, 0))
	if err != nil {
		return nil, err
	}

	ranked := s.rankAll(req, candidates)
	matching.Order(ranked, req.now)
	matching.ReorderTo(ranked, ids)
	return rankedUsers(ranked), nil
}

func (s *Service) candidateQuery(req *request, onlyIDs []uint64, limit int) repository.CandidateQuery {
	return repository.CandidateQuery{
		Requester: req.requester,
		Language:  req.language,
		Blocked:   req.blocked.IDs(),
		Blocking:  req.blocking.IDs(),
		OnlyIDs:   onlyIDs,
		Limit:     limit,
		MinHeight: s.settings.MinHeight,
		MaxHeight: s.settings.MaxHeight,
		Now:       req.now,
	}
}

// rankAll ranks every candidate and drops those ranked 0.
func (s *Service) rankAll(req *request, candidates []*db.User) []matching.Scored {
	out := make([]matching.Scored, 0, len(candidates))
	for _, c := range candidates {
		res := s.ranker.Evaluate(req.requester, c, req.language, req.blocked, req.blocking)
		rankOutcomesTotal.WithLabelValues(string(res.Gate)).Inc()
		if res.Rank == db.Rank0 {
			continue
		}
		out = append(out, matching.Scored{User: c, Rank: res.Rank})
	}
	return out
}

func rankedUsers(list []matching.Scored) []*db.User {
	users := make([]*db.User, len(list))
	for i, sc := range list {
		sc.User.MatchProfile.Rank = sc.Rank
		users[i] = sc.User
	}
	return users
}

// diagnose warns about requester states that silently empty the list.
func (s *Service) diagnose(req *request) {
	if !s.ranker.HeightAllowed(req.requester.Height) {
		req.log.Warn("requester height outside allowed range, no candidate can match",
			"height", req.requester.Height, "min", s.settings.MinHeight, "max", s.settings.MaxHeight)
	}
	if req.requester.MatchProfile.NotAllowedToUseSpeedyMatch {
		req.log.Warn("requester is not allowed to use speedy match")
	}
}

// GetMatchingRank returns how good other is for user in the language, 0-5.
//
// Example:
//
//	rank, err := svc.GetMatchingRank(ctx, 1, 2, "en") // -> 5
func (s *Service) GetMatchingRank(ctx context.Context, userID, otherID uint64, language string) (int, error) {
	req, err := s.newRequest(ctx, userID, language)
	if err != nil {
		return 0, err
	}
	other, err := s.loadUser(ctx, otherID, req.now)
	if err != nil {
		return 0, err
	}
	res := s.ranker.Evaluate(req.requester, other, req.language, req.blocked, req.blocking)
	req.log.Debug("GetMatchingRank result", "other_id", otherID, "rank", res.Rank, "gate", res.Gate)
	return res.Rank, nil
}

// InvalidateMatches drops the user's cached match lists in every language.
func (s *Service) InvalidateMatches(ctx context.Context, userID uint64) error {
	if userID == 0 {
		return ErrInvalidUserID
	}
	return s.appCtx.RedisCache.DeleteMatches(ctx, userID, s.appCtx.Config.Match.Languages...)
}

// TouchLastVisit records a visit now without evicting the cached match lists.
func (s *Service) TouchLastVisit(ctx context.Context, userID uint64) error {
	if userID == 0 {
		return ErrInvalidUserID
	}
	now := s.now()
	if _, err := s.profiles.GetOrCreate(ctx, userID, now); err != nil {
		return err
	}
	return s.profiles.UpdateLastVisit(ctx, userID, now)
}

// LikeUser records a like and reports whether it is mutual. Both users must
// exist.
func (s *Service) LikeUser(ctx context.Context, fromID, toID uint64) (bool, error) {
	if fromID == 0 || toID == 0 {
		return false, ErrInvalidUserID
	}
	if fromID == toID {
		return false, ErrSelfAction
	}
	missing, err := s.users.MissingIDs(ctx, fromID, toID)
	if err != nil {
		return false, err
	}
	if len(missing) > 0 {
		return false, fmt.Errorf("%w: %d", ErrUserNotFound, missing[0])
	}
	if err := s.likes.Like(ctx, fromID, toID); err != nil {
		return false, err
	}
	return s.likes.HasLiked(ctx, toID, fromID)
}

func (s *Service) UnlikeUser(ctx context.Context, fromID, toID uint64) error {
	if fromID == 0 || toID == 0 {
		return ErrInvalidUserID
	}
	return s.likes.Unlike(ctx, fromID, toID)
}

// ListLikesReceived pages through the likes the user received, newest first.
func (s *Service) ListLikesReceived(ctx context.Context, userID uint64, token *string, limit int) ([]db.Like, *string, error) {
	if userID == 0 {
		return nil, nil, ErrInvalidUserID
	}
	if limit <= 0 {
		limit = s.appCtx.Config.Match.PageSize
	}
	return s.likes.ListReceived(ctx, userID, token, limit)
}

// Page slices a match list with an opaque offset token.
func (s *Service) Page(users []*db.User, token string, size int) ([]*db.User, string, error) {
	if size <= 0 {
		size = s.appCtx.Config.Match.PageSize
	}
	return pagination.Page(users, token, size)
}

func (s *Service) newRequest(ctx context.Context, userID uint64, language string) (*request, error) {
	if userID == 0 {
		return nil, ErrInvalidUserID
	}
	lang, err := s.resolveLanguage(language)
	if err != nil {
		return nil, err
	}

	now := s.now()
	requester, err := s.loadUser(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	blocked, err := s.blocks.BlockedIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load blocked ids: %w", err)
	}
	blocking, err := s.blocks.BlockingIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load blocking ids: %w", err)
	}

	return &request{
		requester: requester,
		language:  lang,
		blocked:   matching.NewIDSet(blocked...),
		blocking:  matching.NewIDSet(blocking...),
		now:       now,
		log:       logger.FromContext(ctx, s.appCtx.Logger).With("user_id", userID, "language", lang),
	}, nil
}

// loadUser reads a user and lazily creates its match profile.
func (s *Service) loadUser(ctx context.Context, userID uint64, now time.Time) (*db.User, error) {
	if userID == 0 {
		return nil, ErrInvalidUserID
	}
	u, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrUserNotFound, userID)
	}
	if err != nil {
		return nil, err
	}
	if u.MatchProfile == nil {
		p, err := s.profiles.GetOrCreate(ctx, userID, now)
		if err != nil {
			return nil, err
		}
		u.MatchProfile = p
	}
	return u, nil
}

func (s *Service) resolveLanguage(language string) (string, error) {
	if language == "" {
		return s.appCtx.Config.Match.DefaultLanguage, nil
	}
	if !slices.Contains(s.appCtx.Config.Match.Languages, language) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}
	return language, nil
}
