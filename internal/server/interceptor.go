package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// RequestIDKey is the metadata key carrying the request id in both directions.
const RequestIDKey = "x-request-id"

// UnaryLogging logs every unary call with method, duration, status code and
// a request id. The id is taken from incoming metadata when present,
// generated otherwise, and echoed back in the response header.
func UnaryLogging(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		reqID := requestID(ctx)
		if err := grpc.SetHeader(ctx, metadata.Pairs(RequestIDKey, reqID)); err != nil {
			log.Debug("request id header not sent", "method", info.FullMethod, "request_id", reqID, "err", err)
		}

		resp, err := handler(ctx, req)

		code := status.Code(err)
		attrs := []any{
			"method", info.FullMethod,
			"request_id", reqID,
			"code", code.String(),
			"duration", time.Since(start),
		}
		switch {
		case err == nil:
			log.Info("grpc call", attrs...)
		case code == codes.Internal || code == codes.Unavailable || code == codes.Unknown:
			log.Error("grpc call failed", append(attrs, "err", err)...)
		default:
			log.Warn("grpc call refused", append(attrs, "err", err)...)
		}
		return resp, err
	}
}

func requestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(RequestIDKey); len(v) > 0 && v[0] != "" {
			return v[0]
		}
	}
	return uuid.NewString()
}
