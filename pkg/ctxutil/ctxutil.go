// Package ctxutil carries request-scoped identity through context.
// The transport layer (outside this module) is responsible for putting
// the acting staff member or system identity here before calling the
// services.
package ctxutil

import "context"

type ctxKey string

const actorKey ctxKey = "actor"

// WithActor stores the acting identity (staff login or system name)
// in the context.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromCtx extracts the acting identity from the context.
// Returns "" and false if the value is missing or empty.
func ActorFromCtx(ctx context.Context) (string, bool) {
	actor, ok := ctx.Value(actorKey).(string)
	if !ok || actor == "" {
		return "", false
	}
	return actor, true
}
