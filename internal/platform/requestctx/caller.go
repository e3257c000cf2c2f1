// Package requestctx carries per-request caller identity through context.
package requestctx

import "context"

// callerContextKey is the context key for the authenticated caller identity.
type callerContextKey struct{}

// privilegedContextKey is the context key for the privileged-invocation flag.
type privilegedContextKey struct{}

// originContextKey is the context key for the dispatching collaborator.
type originContextKey struct{}

// WithCaller stores the authenticated account identity in context.
func WithCaller(ctx context.Context, account string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, callerContextKey{}, account)
}

// Caller returns the authenticated account identity stored in context.
func Caller(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(callerContextKey{}).(string)
	return value
}

// WithPrivileged marks the invocation as carrying the ledger's own authority.
// Internal dispatch and scheduled triggers run under this flag.
func WithPrivileged(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, privilegedContextKey{}, true)
}

// Privileged reports whether the invocation carries the ledger's authority.
func Privileged(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	value, _ := ctx.Value(privilegedContextKey{}).(bool)
	return value
}

// WithOrigin records which collaborator dispatched this invocation.
func WithOrigin(ctx context.Context, origin string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, originContextKey{}, origin)
}

// Origin returns the dispatching collaborator recorded in context.
func Origin(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(originContextKey{}).(string)
	return value
}
