package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/otc/internal/core"
)

// withRequestMetadata adds the client IP and User-Agent to ctx for
// operation logs.
func withRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithClientIP(ctx, clientIP(r))
	return core.ContextWithUserAgent(ctx, r.UserAgent())
}
