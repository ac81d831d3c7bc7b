// Package matching holds the Speedy Match ranking engine: the pairwise
// compatibility rank, the days-offset scoring formula and the final ordering.
// It does no I/O; callers load users (with match profiles) and block sets.
package matching

import (
	"log/slog"
	"time"

	"github.com/oggyb/speedy-match/internal/db"
)

// TopTierRank is the rank from which a candidate counts as a top match
// when computing offsets.
const TopTierRank = db.Rank4

// Gate identifies which check decided a rank.
type Gate string

const (
	GatePassed           Gate = "passed"
	GateSameUser         Gate = "same_user"
	GateInvalidProfile   Gate = "invalid_profile"
	GateInactive         Gate = "inactive"
	GateNotAllowed       Gate = "not_allowed"
	GatePhoto            Gate = "photo"
	GateGender           Gate = "gender"
	GateAge              Gate = "age"
	GateHeight           Gate = "height"
	GateBlocked          Gate = "blocked"
	GateCandidateOpinion Gate = "candidate_opinion"
	GateRequesterOpinion Gate = "requester_opinion"
)

// IDSet is a set of user ids.
type IDSet map[uint64]struct{}

func NewIDSet(ids ...uint64) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Has(id uint64) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the members in no particular order.
func (s IDSet) IDs() []uint64 {
	out := make([]uint64, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}

// Result is a rank with the gate that produced it.
type Result struct {
	Rank int
	Gate Gate
}

// Ranker computes the pairwise compatibility rank.
type Ranker struct {
	MinHeight int
	MaxHeight int
	Logger    *slog.Logger
	Now       func() time.Time
}

func NewRanker(s Settings, log *slog.Logger) *Ranker {
	return &Ranker{MinHeight: s.MinHeight, MaxHeight: s.MaxHeight, Logger: log, Now: time.Now}
}

func (r *Ranker) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// HeightAllowed reports whether h is inside the global height range.
func (r *Ranker) HeightAllowed(h int) bool {
	return r.MinHeight <= h && h <= r.MaxHeight
}

// Rank returns how good b is for a, from 0 (never show) to 5 (best).
// blocked holds ids a has blocked, blocking holds ids that blocked a.
func (r *Ranker) Rank(a, b *db.User, language string, blocked, blocking IDSet) int {
	return r.Evaluate(a, b, language, blocked, blocking).Rank
}

// Evaluate runs the gates in order and stops at the first failure.
func (r *Ranker) Evaluate(a, b *db.User, language string, blocked, blocking IDSet) Result {
	if a == nil || b == nil {
		return Result{Gate: GateInvalidProfile}
	}
	if a.ID == b.ID {
		return Result{Gate: GateSameUser}
	}
	for _, u := range [...]*db.User{a, b} {
		if err := db.ValidateMatchProfile(u.MatchProfile); err != nil {
			r.logger().Error("match profile failed validation", "user_id", u.ID, "err", err)
			return Result{Gate: GateInvalidProfile}
		}
	}

	ap, bp := a.MatchProfile, b.MatchProfile
	if !ap.IsActive(a, language) || !bp.IsActive(b, language) {
		return Result{Gate: GateInactive}
	}
	if ap.NotAllowedToUseSpeedyMatch || bp.NotAllowedToUseSpeedyMatch {
		return Result{Gate: GateNotAllowed}
	}
	if !b.PhotoVisibleOnWebsite {
		return Result{Gate: GatePhoto}
	}
	if !ap.GenderToMatch.Contains(int(b.Gender)) || !bp.GenderToMatch.Contains(int(a.Gender)) {
		return Result{Gate: GateGender}
	}

	now := r.now()
	aAge, bAge := a.Age(now), b.Age(now)
	if bAge < ap.MinAgeToMatch || bAge > ap.MaxAgeToMatch || aAge < bp.MinAgeToMatch || aAge > bp.MaxAgeToMatch {
		return Result{Gate: GateAge}
	}
	if !r.HeightAllowed(a.Height) || !r.HeightAllowed(b.Height) {
		return Result{Gate: GateHeight}
	}
	if blocked.Has(b.ID) || blocking.Has(b.ID) {
		return Result{Gate: GateBlocked}
	}

	// Reject early when the candidate would never see the requester.
	if Opinion(b, a) == db.Rank0 {
		return Result{Gate: GateCandidateOpinion}
	}
	rank := Opinion(a, b)
	if rank == db.Rank0 {
		return Result{Gate: GateRequesterOpinion}
	}
	return Result{Rank: rank, Gate: GatePassed}
}

// Opinion is how of's compatibility tables rate about: the minimum of the diet,
// smoking status and relationship status lookups. Unknown values rate 0.
func Opinion(of, about *db.User) int {
	p := of.MatchProfile
	return min(
		lookup(p.DietMatch, int(about.Diet), int(db.DietUnknown)),
		lookup(p.SmokingStatusMatch, int(about.SmokingStatus), int(db.SmokingUnknown)),
		lookup(p.RelationshipStatusMatch, int(about.RelationshipStatus), int(db.RelationshipUnknown)),
	)
}

func lookup(table db.RankTable, value, unknown int) int {
	if value == unknown {
		return db.Rank0
	}
	return table.RankFor(value)
}

func (r *Ranker) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
