package directory

import "context"

type ctxKey struct{}

// ContextWithActor attaches the authenticated user to the context.
func ContextWithActor(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// ActorFromContext extracts the authenticated user from the context.
func ActorFromContext(ctx context.Context) (User, bool) {
	if ctx == nil {
		return User{}, false
	}
	u, ok := ctx.Value(ctxKey{}).(User)
	return u, ok
}
