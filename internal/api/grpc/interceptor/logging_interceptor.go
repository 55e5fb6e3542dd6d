package interceptor

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"marketplace-admin-backend/internal/config"
	"marketplace-admin-backend/internal/logger"
)

type LoggingInterceptor struct {
	actor func(ctx context.Context) string
}

// NewLoggingInterceptor logs every unary call. actor extracts the caller id for the log line.
func NewLoggingInterceptor(actor func(ctx context.Context) string) *LoggingInterceptor {
	return &LoggingInterceptor{actor: actor}
}

// Unary returns a server interceptor that logs each call at the level configured for its method
func (i *LoggingInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("gRPC handler panicked", "method", info.FullMethod, "panic", r)
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
		}()

		resp, err = handler(ctx, req)

		level := config.LogLevelForMethod(info.FullMethod)
		args := []any{"method", info.FullMethod, "code", status.Code(err).String(), "duration", time.Since(start)}
		if actor := i.actor(ctx); actor != "" {
			args = append(args, "actor", actor)
		}
		if err != nil {
			args = append(args, "error", err)
		}
		logger.Log(ctx, level, "gRPC call", args...)
		return resp, err
	}
}
