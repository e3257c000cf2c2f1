// Package auth provides the capability check used by ledger operations.
//
// Authorization is injected rather than read from a global, so the core
// stays testable without a live host: the default implementation reads the
// caller identity and privileged flag that the transport layer stored in
// context.
package auth

import (
	"context"

	"github.com/communis/ledger/internal/platform/requestctx"
)

// Authorizer answers the two capability questions ledger operations ask.
type Authorizer interface {
	// Authenticated reports whether the current invocation carries
	// authorization for the given account identity.
	Authenticated(ctx context.Context, account string) bool
	// Privileged reports whether the invocation itself carries the
	// ledger's own authority (internal dispatch, scheduled triggers).
	Privileged(ctx context.Context) bool
}

// ContextAuthorizer answers from requestctx values.
type ContextAuthorizer struct{}

// Authenticated reports whether the context caller matches account.
func (ContextAuthorizer) Authenticated(ctx context.Context, account string) bool {
	if account == "" {
		return false
	}
	return requestctx.Caller(ctx) == account || requestctx.Privileged(ctx)
}

// Privileged reports whether the invocation carries the ledger's authority.
func (ContextAuthorizer) Privileged(ctx context.Context) bool {
	return requestctx.Privileged(ctx)
}

var _ Authorizer = ContextAuthorizer{}
