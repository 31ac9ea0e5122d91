package middleware

import (
	"context"

	"github.com/pasofino/tienda-backend/pkg/types"
)

type contextKey string

const ctxIdentity contextKey = "identity"

// IdentityFromContext returns the cart owner resolved for this request. The
// zero Identity means no middleware ran.
func IdentityFromContext(ctx context.Context) types.Identity {
	if ctx == nil {
		return types.Identity{}
	}
	if v, ok := ctx.Value(ctxIdentity).(types.Identity); ok {
		return v
	}
	return types.Identity{}
}

// WithIdentity injects the resolved identity into the context.
func WithIdentity(ctx context.Context, identity types.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, identity)
}
