// Package matchpb implements the speedymatch.v1.MatchService contract
// declared in proto/speedymatch/v1/match.proto.
//
// Messages travel as google.protobuf well-known types (Struct, UInt32Value,
// Empty). The typed request and response structs below are the Go view of
// those payloads; ids and timestamps are carried as decimal strings so they
// survive the double-precision numbers of Struct.
package matchpb

import (
	"strconv"

	"google.golang.org/protobuf/types/known/structpb"
)

type GetMatchesRequest struct {
	UserID    string
	Language  string
	PageToken string
	PageSize  int32
}

type Match struct {
	UserID        string
	Rank          int32
	LastVisitUnix int64
}

type GetMatchesResponse struct {
	Matches       []Match
	NextPageToken string
	Total         int32
}

type GetMatchingRankRequest struct {
	UserID      string
	OtherUserID string
	Language    string
}

type InvalidateMatchesRequest struct {
	UserID string
}

type LikeUserRequest struct {
	FromUserID string
	ToUserID   string
}

type LikeUserResponse struct {
	Mutual bool
}

type UnlikeUserRequest struct {
	FromUserID string
	ToUserID   string
}

type ListLikesReceivedRequest struct {
	UserID    string
	PageToken string
	PageSize  int32
}

type Liker struct {
	FromUserID    string
	UnixTimestamp int64
}

type ListLikesReceivedResponse struct {
	Likers        []Liker
	NextPageToken string
}

// Struct field names.
const (
	fieldUserID        = "user_id"
	fieldOtherUserID   = "other_user_id"
	fieldFromUserID    = "from_user_id"
	fieldToUserID      = "to_user_id"
	fieldLanguage      = "language"
	fieldPageToken     = "page_token"
	fieldPageSize      = "page_size"
	fieldNextPageToken = "next_page_token"
	fieldMatches       = "matches"
	fieldRank          = "rank"
	fieldLastVisit     = "last_visit_unix"
	fieldTotal         = "total"
	fieldMutual        = "mutual"
	fieldLikers        = "likers"
	fieldTimestamp     = "unix_timestamp"
)

func (r *GetMatchesRequest) ToProto() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		fieldUserID:    r.UserID,
		fieldLanguage:  r.Language,
		fieldPageToken: r.PageToken,
		fieldPageSize:  r.PageSize,
	})
}

func GetMatchesRequestFromProto(s *structpb.Struct) (*GetMatchesRequest, error) {
	return &GetMatchesRequest{
		UserID:    stringField(s, fieldUserID),
		Language:  stringField(s, fieldLanguage),
		PageToken: stringField(s, fieldPageToken),
		PageSize:  int32Field(s, fieldPageSize),
	}, nil
}

func (r *GetMatchesResponse) ToProto() (*structpb.Struct, error) {
	matches := make([]any, len(r.Matches))
	for i, m := range r.Matches {
		matches[i] = map[string]any{
			fieldUserID:    m.UserID,
			fieldRank:      m.Rank,
			fieldLastVisit: strconv.FormatInt(m.LastVisitUnix, 10),
		}
	}
	return structpb.NewStruct(map[string]any{
		fieldMatches:       matches,
		fieldNextPageToken: r.NextPageToken,
		fieldTotal:         r.Total,
	})
}

func GetMatchesResponseFromProto(s *structpb.Struct) (*GetMatchesResponse, error) {
	resp := &GetMatchesResponse{
		NextPageToken: stringField(s, fieldNextPageToken),
		Total:         int32Field(s, fieldTotal),
	}
	for _, v := range listField(s, fieldMatches) {
		item := v.GetStructValue()
		lastVisit, err := int64Field(item, fieldLastVisit)
		if err != nil {
			return nil, err
		}
		resp.Matches = append(resp.Matches, Match{
			UserID:        stringField(item, fieldUserID),
			Rank:          int32Field(item, fieldRank),
			LastVisitUnix: lastVisit,
		})
	}
	return resp, nil
}

func (r *GetMatchingRankRequest) ToProto() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		fieldUserID:      r.UserID,
		fieldOtherUserID: r.OtherUserID,
		fieldLanguage:    r.Language,
	})
}

func GetMatchingRankRequestFromProto(s *structpb.Struct) (*GetMatchingRankRequest, error) {
	return &GetMatchingRankRequest{
		UserID:      stringField(s, fieldUserID),
		OtherUserID: stringField(s, fieldOtherUserID),
		Language:    stringField(s, fieldLanguage),
	}, nil
}

func (r *InvalidateMatchesRequest) ToProto() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{fieldUserID: r.UserID})
}

func InvalidateMatchesRequestFromProto(s *structpb.Struct) (*InvalidateMatchesRequest, error) {
	return &InvalidateMatchesRequest{UserID: stringField(s, fieldUserID)}, nil
}

func (r *LikeUserRequest) ToProto() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		fieldFromUserID: r.FromUserID,
		fieldToUserID:   r.ToUserID,
	})
}

func LikeUserRequestFromProto(s *structpb.Struct) (*LikeUserRequest, error) {
	return &LikeUserRequest{
		FromUserID: stringField(s, fieldFromUserID),
		ToUserID:   stringField(s, fieldToUserID),
	}, nil
}

func (r *LikeUserResponse) ToProto() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{fieldMutual: r.Mutual})
}

func LikeUserResponseFromProto(s *structpb.Struct) (*LikeUserResponse, error) {
	return &LikeUserResponse{Mutual: s.GetFields()[fieldMutual].GetBoolValue()}, nil
}

func (r *UnlikeUserRequest) ToProto() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		fieldFromUserID: r.FromUserID,
		fieldToUserID:   r.ToUserID,
	})
}

func UnlikeUserRequestFromProto(s *structpb.Struct) (*UnlikeUserRequest, error) {
	return &UnlikeUserRequest{
		FromUserID: stringField(s, fieldFromUserID),
		ToUserID:   stringField(s, fieldToUserID),
	}, nil
}

func (r *ListLikesReceivedRequest) ToProto() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		fieldUserID:    r.UserID,
		fieldPageToken: r.PageToken,
		fieldPageSize:  r.PageSize,
	})
}

func ListLikesReceivedRequestFromProto(s *structpb.Struct) (*ListLikesReceivedRequest, error) {
	return &ListLikesReceivedRequest{
		UserID:    stringField(s, fieldUserID),
		PageToken: stringField(s, fieldPageToken),
		PageSize:  int32Field(s, fieldPageSize),
	}, nil
}

func (r *ListLikesReceivedResponse) ToProto() (*structpb.Struct, error) {
	likers := make([]any, len(r.Likers))
	for i, l := range r.Likers {
		likers[i] = map[string]any{
			fieldFromUserID: l.FromUserID,
			fieldTimestamp:  strconv.FormatInt(l.UnixTimestamp, 10),
		}
	}
	return structpb.NewStruct(map[string]any{
		fieldLikers:        likers,
		fieldNextPageToken: r.NextPageToken,
	})
}

func ListLikesReceivedResponseFromProto(s *structpb.Struct) (*ListLikesReceivedResponse, error) {
	resp := &ListLikesReceivedResponse{NextPageToken: stringField(s, fieldNextPageToken)}
	for _, v := range listField(s, fieldLikers) {
		item := v.GetStructValue()
		ts, err := int64Field(item, fieldTimestamp)
		if err != nil {
			return nil, err
		}
		resp.Likers = append(resp.Likers, Liker{
			FromUserID:    stringField(item, fieldFromUserID),
			UnixTimestamp: ts,
		})
	}
	return resp, nil
}

// stringField reads a string. Numbers are accepted too, since the JSON
// mapping allows 64-bit integers either way.
func stringField(s *structpb.Struct, key string) string {
	v := s.GetFields()[key]
	if n, ok := v.GetKind().(*structpb.Value_NumberValue); ok {
		return strconv.FormatFloat(n.NumberValue, 'f', -1, 64)
	}
	return v.GetStringValue()
}

func int32Field(s *structpb.Struct, key string) int32 {
	return int32(s.GetFields()[key].GetNumberValue())
}

// int64Field reads a decimal string; a missing field is 0.
func int64Field(s *structpb.Struct, key string) (int64, error) {
	raw := stringField(s, key)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func listField(s *structpb.Struct, key string) []*structpb.Value {
	return s.GetFields()[key].GetListValue().GetValues()
}
