package httpx

import "context"

type ctxKey int

const ctxKeyIdentity ctxKey = iota

// Identity is a verified token payload attached to a request's context.
// Absence from the context means the request is anonymous.
type Identity struct {
	UserID   string
	Username string
	Role     string
}

// ContextWithIdentity attaches id to ctx. The query-surface host calls the
// identity middleware once per request and reads the result back with
// IdentityFromContext inside its operation handlers.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

// IdentityFromContext returns the authenticated identity, or ok=false when
// the request is anonymous.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKeyIdentity).(Identity)
	return id, ok
}
