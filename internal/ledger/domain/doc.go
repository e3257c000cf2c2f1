// Package domain holds the ledger's core types and invariant checks:
// precision-tagged currency symbols and amounts, per-currency registry
// statistics, account balances, expiry policies, and retirement triggers.
package domain
