package match

import (
	"context"
	"strconv"

	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	svcErr "github.com/oggyb/speedy-match/internal/errors"
	"github.com/oggyb/speedy-match/internal/logger"
	pb "github.com/oggyb/speedy-match/internal/proto/match"
)

// Handler implements the MatchService gRPC API on top of Service.
type Handler struct {
	svc *Service

	pb.UnimplementedMatchServiceServer
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// GetMatches returns one page of the requester's match list.
//
// Behavior:
//   - Builds (or re-validates from cache) the full list via Service.GetMatches.
//   - Pages it with an opaque offset token; page_size defaults to MATCH_PAGE_SIZE.
//   - total is the size of the whole list.
//
// Example:
//
//	h.GetMatches(ctx, &pb.GetMatchesRequest{UserID: "42", Language: "en"})
func (h *Handler) GetMatches(ctx context.Context, req *pb.GetMatchesRequest) (*pb.GetMatchesResponse, error) {
	log := logger.FromContext(ctx, h.svc.appCtx.Logger)
	log.Debug("GetMatches called", "user", req.UserID, "language", req.Language, "token", req.PageToken)

	userID, err := parseUserID(req.UserID, "user_id")
	if err != nil {
		return nil, err
	}

	users, err := h.svc.GetMatches(ctx, userID, req.Language)
	if err != nil {
		log.Error("GetMatches failed", "user", userID, "err", err)
		return nil, svcErr.Map(err)
	}

	page, next, err := h.svc.Page(users, req.PageToken, int(req.PageSize))
	if err != nil {
		return nil, svcErr.InvalidArgument(err.Error())
	}

	resp := &pb.GetMatchesResponse{NextPageToken: next, Total: int32(len(users))}
	for _, u := range page {
		resp.Matches = append(resp.Matches, pb.Match{
			UserID:        strconv.FormatUint(u.ID, 10),
			Rank:          int32(u.MatchProfile.Rank),
			LastVisitUnix: u.MatchProfile.LastVisit.UnixMilli(),
		})
	}
	return resp, nil
}

// GetMatchingRank returns the rank (0-5) of other_user_id for user_id.
func (h *Handler) GetMatchingRank(ctx context.Context, req *pb.GetMatchingRankRequest) (*wrapperspb.UInt32Value, error) {
	userID, err := parseUserID(req.UserID, "user_id")
	if err != nil {
		return nil, err
	}
	otherID, err := parseUserID(req.OtherUserID, "other_user_id")
	if err != nil {
		return nil, err
	}

	rank, err := h.svc.GetMatchingRank(ctx, userID, otherID, req.Language)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return wrapperspb.UInt32(uint32(rank)), nil
}

// InvalidateMatches drops the cached match lists of user_id.
func (h *Handler) InvalidateMatches(ctx context.Context, req *pb.InvalidateMatchesRequest) (*emptypb.Empty, error) {
	userID, err := parseUserID(req.UserID, "user_id")
	if err != nil {
		return nil, err
	}
	if err := h.svc.InvalidateMatches(ctx, userID); err != nil {
		return nil, svcErr.Map(err)
	}
	return &emptypb.Empty{}, nil
}

// LikeUser records a like and reports whether the other user liked back.
func (h *Handler) LikeUser(ctx context.Context, req *pb.LikeUserRequest) (*pb.LikeUserResponse, error) {
	fromID, err := parseUserID(req.FromUserID, "from_user_id")
	if err != nil {
		return nil, err
	}
	toID, err := parseUserID(req.ToUserID, "to_user_id")
	if err != nil {
		return nil, err
	}

	mutual, err := h.svc.LikeUser(ctx, fromID, toID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.LikeUserResponse{Mutual: mutual}, nil
}

func (h *Handler) UnlikeUser(ctx context.Context, req *pb.UnlikeUserRequest) (*emptypb.Empty, error) {
	fromID, err := parseUserID(req.FromUserID, "from_user_id")
	if err != nil {
		return nil, err
	}
	toID, err := parseUserID(req.ToUserID, "to_user_id")
	if err != nil {
		return nil, err
	}
	if err := h.svc.UnlikeUser(ctx, fromID, toID); err != nil {
		return nil, svcErr.Map(err)
	}
	return &emptypb.Empty{}, nil
}

// ListLikesReceived pages through the likes user_id received, newest first.
func (h *Handler) ListLikesReceived(ctx context.Context, req *pb.ListLikesReceivedRequest) (*pb.ListLikesReceivedResponse, error) {
	userID, err := parseUserID(req.UserID, "user_id")
	if err != nil {
		return nil, err
	}

	var token *string
	if req.PageToken != "" {
		token = &req.PageToken
	}
	likes, next, err := h.svc.ListLikesReceived(ctx, userID, token, int(req.PageSize))
	if err != nil {
		return nil, svcErr.Map(err)
	}

	resp := &pb.ListLikesReceivedResponse{}
	for _, l := range likes {
		resp.Likers = append(resp.Likers, pb.Liker{
			FromUserID:    strconv.FormatUint(l.FromUserID, 10),
			UnixTimestamp: l.CreatedAt.UnixMilli(),
		})
	}
	if next != nil {
		resp.NextPageToken = *next
	}
	return resp, nil
}

func parseUserID(raw, field string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, svcErr.InvalidArgument(field + " must be a positive uint64")
	}
	return id, nil
}
