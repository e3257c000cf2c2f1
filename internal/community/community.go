// Package community is the boundary to the community and membership
// registries. The ledger never grants membership; it only reads these
// records and, on currency creation, asks the registry to link an issuer
// into a community.
package community

import (
	"context"
	"errors"
	"time"

	"github.com/communis/ledger/internal/ledger/domain"
)

// ErrNotFound indicates a requested registry record is missing.
var ErrNotFound = errors.New("record not found")

// Community is an organizational unit scoped by its shared symbol code.
type Community struct {
	Symbol    string
	Creator   string
	CreatedAt time.Time
}

// Membership records an account's admission into a community, keyed by
// (currency symbol code, account).
type Membership struct {
	Symbol   string
	Account  string
	UserType domain.UserType
	Inviter  string
	JoinedAt time.Time
}

// Registry resolves communities and account identities.
type Registry interface {
	// Lookup returns the community owning a symbol code.
	Lookup(ctx context.Context, symbol string) (Community, error)
	// KnownAccount reports whether an account identity resolves at all.
	KnownAccount(ctx context.Context, account string) (bool, error)
	// Link asks the registry to admit an account into a community's
	// membership on behalf of an inviter. Re-linking an existing member is
	// a no-op.
	Link(ctx context.Context, symbol, account, inviter string, userType domain.UserType) error
}

// Members reads the membership relation.
type Members interface {
	// Member is the point lookup by (symbol code, account).
	Member(ctx context.Context, symbol, account string) (Membership, error)
	// BySymbol returns every membership of one community, ordered by
	// account, for bulk sweeps.
	BySymbol(ctx context.Context, symbol string) ([]Membership, error)
}
