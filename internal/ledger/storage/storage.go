// Package storage defines persistence contracts for ledger state.
//
// All mutation happens through Transact: an operation either commits every
// row it touched or none of them. The host model serializes operations, so
// implementations only need a single writer.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/communis/ledger/internal/ledger/domain"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// BalanceQuery restricts a balance listing. Clause is an optional SQL WHERE
// fragment over the columns account, currency and balance_units, with
// positional parameters; implementations without a SQL backend may reject
// non-empty clauses.
type BalanceQuery struct {
	Clause string
	Params []any
	Limit  int
}

// Tx exposes the keyed ledger tables inside one transaction.
type Tx interface {
	// GetCurrency loads a registry row by symbol code.
	GetCurrency(ctx context.Context, code string) (domain.CurrencyStats, error)
	// PutCurrency upserts a registry row.
	PutCurrency(ctx context.Context, stats domain.CurrencyStats) error

	// GetBalance loads the (account, currency code) row.
	GetBalance(ctx context.Context, account, code string) (domain.AccountBalance, error)
	// PutBalance upserts the (account, currency code) row.
	PutBalance(ctx context.Context, balance domain.AccountBalance) error

	// GetPolicy loads the expiry policy for a currency code.
	GetPolicy(ctx context.Context, code string) (domain.ExpiryPolicy, error)
	// PutPolicy upserts the expiry policy for a currency.
	PutPolicy(ctx context.Context, policy domain.ExpiryPolicy) error

	// PutTrigger submits a retirement trigger; an existing trigger with the
	// same id is replaced, not duplicated.
	PutTrigger(ctx context.Context, trigger domain.RetirementTrigger) error
	// DeleteTrigger removes a trigger by id. Missing ids are a no-op.
	DeleteTrigger(ctx context.Context, id string) error
}

// Store is the transactional ledger store plus its read surface.
type Store interface {
	// Transact runs fn inside one transaction; fn returning an error rolls
	// back every mutation it made.
	Transact(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	GetCurrency(ctx context.Context, code string) (domain.CurrencyStats, error)
	GetBalance(ctx context.Context, account, code string) (domain.AccountBalance, error)
	// ListBalances returns balance rows matching the query, ordered by
	// (currency, account).
	ListBalances(ctx context.Context, query BalanceQuery) ([]domain.AccountBalance, error)
	GetPolicy(ctx context.Context, code string) (domain.ExpiryPolicy, error)
	// SumBalances totals all balance units held in one currency.
	SumBalances(ctx context.Context, code string) (int64, error)
	// DueTriggers returns triggers whose run time is at or before now,
	// ordered by run time.
	DueTriggers(ctx context.Context, now time.Time, limit int) ([]domain.RetirementTrigger, error)

	Close() error
}
