package server_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/oggyb/speedy-match/internal/logger"
	"github.com/oggyb/speedy-match/internal/server"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	interceptor := server.RequestLogger(base)
	info := &grpc.UnaryServerInfo{FullMethod: "/speedymatch.v1.MatchService/GetMatches"}

	t.Run("propagates caller request id", func(t *testing.T) {
		buf.Reset()
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(server.RequestIDHeader, "req-123"))

		resp, err := interceptor(ctx, nil, info, func(ctx context.Context, _ any) (any, error) {
			logger.FromContext(ctx, nil).Info("inside handler")
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", resp)
		assert.Contains(t, buf.String(), "request_id=req-123")
		assert.Contains(t, buf.String(), "inside handler")
		assert.Contains(t, buf.String(), "rpc completed")
	})

	t.Run("generates an id and logs failures", func(t *testing.T) {
		buf.Reset()
		_, err := interceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
			return nil, status.Error(codes.NotFound, "missing")
		})
		assert.Equal(t, codes.NotFound, status.Code(err))
		assert.Contains(t, buf.String(), "rpc failed")
		assert.Contains(t, buf.String(), "code=NotFound")
		assert.Contains(t, buf.String(), "request_id=")
		assert.NotContains(t, buf.String(), "request_id=req-123")
	})
}

func TestHTTPRouter(t *testing.T) {
	log := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	healthy := func(context.Context) error { return nil }

	t.Run("healthz ok", func(t *testing.T) {
		r := server.NewHTTPRouter(log, map[string]server.HealthCheck{"redis": healthy})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", rec.Body.String())
	})

	t.Run("healthz failing dependency", func(t *testing.T) {
		r := server.NewHTTPRouter(log, map[string]server.HealthCheck{
			"db": func(context.Context) error { return errors.New("connection refused") },
		})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "db unavailable")
	})

	t.Run("metrics", func(t *testing.T) {
		r := server.NewHTTPRouter(log, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "go_goroutines")
	})
}
