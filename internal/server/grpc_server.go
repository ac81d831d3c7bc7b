package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/oggyb/speedy-match/internal/config"
	"github.com/oggyb/speedy-match/internal/logger"
)

// RequestIDHeader is the metadata key carrying a caller supplied request id.
const RequestIDHeader = "x-request-id"

// Registrar attaches one gRPC service (and its dependencies) to a server.
type Registrar interface {
	Register(s *grpc.Server)
}

// NewGRPCServer builds a gRPC server with the logging interceptor and
// registers all provided services.
func NewGRPCServer(log *slog.Logger, registrars ...Registrar) *grpc.Server {
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(RequestLogger(log)))

	// register all services
	for _, r := range registrars {
		r.Register(grpcServer)
	}

	// enable reflection for easier debugging with grpcurl
	reflection.Register(grpcServer)

	return grpcServer
}

// StartGRPCServer boots a gRPC server and registers all provided services
func StartGRPCServer(cfg *config.Config, log *slog.Logger, registrars ...Registrar) error {
	addr := fmt.Sprintf("%s:%s", cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	return NewGRPCServer(log, registrars...).Serve(lis)
}

// RequestLogger attaches a request scoped logger (request id + method) to the
// context and logs every call with its status code and duration.
func RequestLogger(base *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		requestID := incomingRequestID(ctx)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		log := base.With("request_id", requestID, "method", info.FullMethod)
		ctx = logger.IntoContext(ctx, log)
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, requestID))

		started := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)

		if err != nil {
			log.Warn("rpc failed", "code", code.String(), "duration", time.Since(started), "err", err)
		} else {
			log.Debug("rpc completed", "code", code.String(), "duration", time.Since(started))
		}
		return resp, err
	}
}

func incomingRequestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get(RequestIDHeader); len(v) > 0 {
		return v[0]
	}
	return ""
}
