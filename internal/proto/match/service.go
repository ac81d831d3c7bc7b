package matchpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "speedymatch.v1.MatchService"

const (
	MatchService_GetMatches_FullMethodName        = "/" + ServiceName + "/GetMatches"
	MatchService_GetMatchingRank_FullMethodName   = "/" + ServiceName + "/GetMatchingRank"
	MatchService_InvalidateMatches_FullMethodName = "/" + ServiceName + "/InvalidateMatches"
	MatchService_LikeUser_FullMethodName          = "/" + ServiceName + "/LikeUser"
	MatchService_UnlikeUser_FullMethodName        = "/" + ServiceName + "/UnlikeUser"
	MatchService_ListLikesReceived_FullMethodName = "/" + ServiceName + "/ListLikesReceived"
)

// MatchServiceServer is the server API for MatchService.
// Implementations must embed UnimplementedMatchServiceServer.
type MatchServiceServer interface {
	GetMatches(context.Context, *GetMatchesRequest) (*GetMatchesResponse, error)
	GetMatchingRank(context.Context, *GetMatchingRankRequest) (*wrapperspb.UInt32Value, error)
	InvalidateMatches(context.Context, *InvalidateMatchesRequest) (*emptypb.Empty, error)
	LikeUser(context.Context, *LikeUserRequest) (*LikeUserResponse, error)
	UnlikeUser(context.Context, *UnlikeUserRequest) (*emptypb.Empty, error)
	ListLikesReceived(context.Context, *ListLikesReceivedRequest) (*ListLikesReceivedResponse, error)
	mustEmbedUnimplementedMatchServiceServer()
}

// UnimplementedMatchServiceServer answers Unimplemented for every method.
type UnimplementedMatchServiceServer struct{}

func (UnimplementedMatchServiceServer) GetMatches(context.Context, *GetMatchesRequest) (*GetMatchesResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetMatches not implemented")
}
func (UnimplementedMatchServiceServer) GetMatchingRank(context.Context, *GetMatchingRankRequest) (*wrapperspb.UInt32Value, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetMatchingRank not implemented")
}
func (UnimplementedMatchServiceServer) InvalidateMatches(context.Context, *InvalidateMatchesRequest) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method InvalidateMatches not implemented")
}
func (UnimplementedMatchServiceServer) LikeUser(context.Context, *LikeUserRequest) (*LikeUserResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method LikeUser not implemented")
}
func (UnimplementedMatchServiceServer) UnlikeUser(context.Context, *UnlikeUserRequest) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method UnlikeUser not implemented")
}
func (UnimplementedMatchServiceServer) ListLikesReceived(context.Context, *ListLikesReceivedRequest) (*ListLikesReceivedResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListLikesReceived not implemented")
}
func (UnimplementedMatchServiceServer) mustEmbedUnimplementedMatchServiceServer() {}

func RegisterMatchServiceServer(s grpc.ServiceRegistrar, srv MatchServiceServer) {
	s.RegisterService(&MatchService_ServiceDesc, srv)
}

// unaryHandler decodes the Struct request, calls the typed method and encodes
// its result, running the server interceptor chain around the call.
func unaryHandler[Req any, Resp any](
	fullMethod string,
	decode func(*structpb.Struct) (Req, error),
	invoke func(MatchServiceServer, context.Context, Req) (Resp, error),
	encode func(Resp) (proto.Message, error),
) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, err := decode(req.(*structpb.Struct))
			if err != nil {
				return nil, status.Error(codes.InvalidArgument, err.Error())
			}
			out, err := invoke(srv.(MatchServiceServer), ctx, typed)
			if err != nil {
				return nil, err
			}
			return encode(out)
		}
		if interceptor == nil {
			return handler(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, handler)
	}
}

func encodeStruct[T interface {
	ToProto() (*structpb.Struct, error)
}](v T) (proto.Message, error) {
	return v.ToProto()
}

func passThrough[T proto.Message](v T) (proto.Message, error) {
	return v, nil
}

// MatchService_ServiceDesc is the grpc.ServiceDesc for MatchService.
var MatchService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MatchServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetMatches",
			Handler: unaryHandler(MatchService_GetMatches_FullMethodName, GetMatchesRequestFromProto,
				MatchServiceServer.GetMatches, encodeStruct[*GetMatchesResponse]),
		},
		{
			MethodName: "GetMatchingRank",
			Handler: unaryHandler(MatchService_GetMatchingRank_FullMethodName, GetMatchingRankRequestFromProto,
				MatchServiceServer.GetMatchingRank, passThrough[*wrapperspb.UInt32Value]),
		},
		{
			MethodName: "InvalidateMatches",
			Handler: unaryHandler(MatchService_InvalidateMatches_FullMethodName, InvalidateMatchesRequestFromProto,
				MatchServiceServer.InvalidateMatches, passThrough[*emptypb.Empty]),
		},
		{
			MethodName: "LikeUser",
			Handler: unaryHandler(MatchService_LikeUser_FullMethodName, LikeUserRequestFromProto,
				MatchServiceServer.LikeUser, encodeStruct[*LikeUserResponse]),
		},
		{
			MethodName: "UnlikeUser",
			Handler: unaryHandler(MatchService_UnlikeUser_FullMethodName, UnlikeUserRequestFromProto,
				MatchServiceServer.UnlikeUser, passThrough[*emptypb.Empty]),
		},
		{
			MethodName: "ListLikesReceived",
			Handler: unaryHandler(MatchService_ListLikesReceived_FullMethodName, ListLikesReceivedRequestFromProto,
				MatchServiceServer.ListLikesReceived, encodeStruct[*ListLikesReceivedResponse]),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "speedymatch/v1/match.proto",
}

// MatchServiceClient calls MatchService over a client connection.
type MatchServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewMatchServiceClient(cc grpc.ClientConnInterface) *MatchServiceClient {
	return &MatchServiceClient{cc: cc}
}

func (c *MatchServiceClient) GetMatches(ctx context.Context, in *GetMatchesRequest, opts ...grpc.CallOption) (*GetMatchesResponse, error) {
	out := new(structpb.Struct)
	if err := c.invokeStruct(ctx, MatchService_GetMatches_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return GetMatchesResponseFromProto(out)
}

func (c *MatchServiceClient) GetMatchingRank(ctx context.Context, in *GetMatchingRankRequest, opts ...grpc.CallOption) (*wrapperspb.UInt32Value, error) {
	out := new(wrapperspb.UInt32Value)
	if err := c.invokeStruct(ctx, MatchService_GetMatchingRank_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *MatchServiceClient) InvalidateMatches(ctx context.Context, in *InvalidateMatchesRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.invokeStruct(ctx, MatchService_InvalidateMatches_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *MatchServiceClient) LikeUser(ctx context.Context, in *LikeUserRequest, opts ...grpc.CallOption) (*LikeUserResponse, error) {
	out := new(structpb.Struct)
	if err := c.invokeStruct(ctx, MatchService_LikeUser_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return LikeUserResponseFromProto(out)
}

func (c *MatchServiceClient) UnlikeUser(ctx context.Context, in *UnlikeUserRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.invokeStruct(ctx, MatchService_UnlikeUser_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *MatchServiceClient) ListLikesReceived(ctx context.Context, in *ListLikesReceivedRequest, opts ...grpc.CallOption) (*ListLikesReceivedResponse, error) {
	out := new(structpb.Struct)
	if err := c.invokeStruct(ctx, MatchService_ListLikesReceived_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return ListLikesReceivedResponseFromProto(out)
}

func (c *MatchServiceClient) invokeStruct(ctx context.Context, method string, in interface {
	ToProto() (*structpb.Struct, error)
}, out proto.Message, opts ...grpc.CallOption) error {
	req, err := in.ToProto()
	if err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return c.cc.Invoke(ctx, method, req, out, opts...)
}
