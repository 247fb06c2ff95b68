package memory

import "context"

// DefaultSessionKey is used when the context carries no session key.
const DefaultSessionKey = "default"

type sessionKeyCtx struct{}

func WithSessionKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, sessionKeyCtx{}, key)
}

func SessionKey(ctx context.Context) string {
	if key, ok := ctx.Value(sessionKeyCtx{}).(string); ok && key != "" {
		return key
	}
	return DefaultSessionKey
}

func SessionKeyFunc(ctx context.Context) (string, bool) {
	return SessionKey(ctx), true
}
