package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/speedy-match/internal/db"
	"github.com/oggyb/speedy-match/internal/utils/pagination"
)

// LikeRepository provides data access methods for the Like model.
// Likes received are a ranking signal and are listed back to the recipient.
type LikeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new repository bound to the given DB connection.
func NewLikeRepository(database *gorm.DB) *LikeRepository {
	return &LikeRepository{db: database}
}

// Like records a like from one user to another.
//
// Behavior:
//   - If (from_user_id, to_user_id) already exists the call is a no-op and the
//     original created_at is kept.
//   - Composite PK guarantees one like per pair.
//
// Example:
//
//	repo.Like(ctx, 1, 2) // user 1 liked user 2
func (r *LikeRepository) Like(ctx context.Context, fromUserID, toUserID uint64) error {
	like := db.Like{
		FromUserID: fromUserID,
		ToUserID:   toUserID,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "from_user_id"}, {Name: "to_user_id"}},
			DoNothing: true,
		}).
		Create(&like).Error
}

// Unlike removes a like. Removing a missing like is not an error.
func (r *LikeRepository) Unlike(ctx context.Context, fromUserID, toUserID uint64) error {
	return r.db.WithContext(ctx).
		Where("from_user_id = ? AND to_user_id = ?", fromUserID, toUserID).
		Delete(&db.Like{}).Error
}

// ListReceived returns the likes the given user received.
//
// Behavior:
//   - Excludes likes from users the recipient has blocked.
//   - Ordered by created_at DESC, from_user_id DESC.
//   - Supports cursor-based pagination via paginationToken.
//
// Example:
//
//	repo.ListReceived(ctx, 42, nil, 20) // first 20 people who liked user 42
func (r *LikeRepository) ListReceived(
	ctx context.Context,
	toUserID uint64,
	paginationToken *string,
	limit int,
) ([]db.Like, *string, error) {
	var likes []db.Like

	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Table("likes l").
		Where("l.to_user_id = ?", toUserID).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM blocks b
				WHERE b.blocker_id = ?
				  AND b.blocked_id = l.from_user_id
			)`, toUserID).
		Order("l.created_at DESC, l.from_user_id DESC").
		Limit(limit + 1)

	// apply cursor
	if cursor.UserID > 0 && cursor.CreatedUnix > 0 {
		ts := time.UnixMilli(cursor.CreatedUnix).UTC()
		query = query.Where(
			"(l.created_at < ? OR (l.created_at = ? AND l.from_user_id < ?))",
			ts, ts, cursor.UserID,
		)
	}

	if err := query.Find(&likes).Error; err != nil {
		return nil, nil, err
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if len(likes) > limit {
		last := likes[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			UserID:      last.FromUserID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		likes = likes[:limit]
	}

	return likes, nextToken, nil
}

// CountReceived returns how many likes the user received.
func (r *LikeRepository) CountReceived(ctx context.Context, toUserID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("to_user_id = ?", toUserID).
		Count(&count).Error
	return count, err
}

// CountReceivedByUsers returns the likes received by each of the given users
// in one grouped query. Users without likes are absent from the map.
//
// Example:
//
//	repo.CountReceivedByUsers(ctx, []uint64{2, 3}) // -> map[2:12 3:1]
func (r *LikeRepository) CountReceivedByUsers(ctx context.Context, userIDs []uint64) (map[uint64]int64, error) {
	counts := make(map[uint64]int64, len(userIDs))
	if len(userIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		ToUserID uint64
		Total    int64
	}
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Select("to_user_id, COUNT(*) AS total").
		Where("to_user_id IN ?", userIDs).
		Group("to_user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ToUserID] = row.Total
	}
	return counts, nil
}

// HasLiked checks whether fromUserID has liked toUserID.
//
// Example:
//
//	repo.HasLiked(ctx, 1, 2) // -> true if user 1 liked user 2
func (r *LikeRepository) HasLiked(ctx context.Context, fromUserID, toUserID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("from_user_id = ? AND to_user_id = ?", fromUserID, toUserID).
		Count(&count).Error
	return count > 0, err
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
