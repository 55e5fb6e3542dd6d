package grpc

import (
	"context"
	"strings"

	"google.golang.org/grpc/metadata"
)

// ActorMetadataKey mirrors the HTTP X-Admin-ID header.
const ActorMetadataKey = "x-admin-id"

// ActorFromContext returns the admin id sent in the call metadata, or "" when absent.
func ActorFromContext(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(ActorMetadataKey)
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}
