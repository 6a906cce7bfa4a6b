package shared

import "context"

// AnonymousActor is recorded when no authenticated caller is attached.
const AnonymousActor = "anonymous"

type actorContextKey struct{}

// ContextWithActor stores the authenticated caller in context.
func ContextWithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the caller, defaulting to AnonymousActor.
func ActorFromContext(ctx context.Context) string {
	if actor, ok := ctx.Value(actorContextKey{}).(string); ok && actor != "" {
		return actor
	}
	return AnonymousActor
}
