package domain

import "time"

// AccountBalance is the ledger row for one (account, currency) pair. Rows are
// created lazily at zero and never deleted; retirement resets the balance to
// exactly zero instead of removing the row.
type AccountBalance struct {
	Account      string
	Balance      Amount
	LastActivity time.Time
}

// NewAccountBalance returns a zero balance row for an account.
func NewAccountBalance(account string, symbol Symbol, now time.Time) AccountBalance {
	return AccountBalance{
		Account:      account,
		Balance:      Zero(symbol),
		LastActivity: now.UTC(),
	}
}
