// Package sqlite provides SQLite-backed persistence for ledger state.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/communis/ledger/internal/ledger/domain"
	ledgerstorage "github.com/communis/ledger/internal/ledger/storage"
	"github.com/communis/ledger/internal/ledger/storage/sqlite/migrations"
	sqlitemigrate "github.com/communis/ledger/internal/platform/storage/sqlitemigrate"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for ledger state.
type Store struct {
	sqlDB *sql.DB
}

// Open opens and migrates a ledger SQLite store.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// Operations serialize through one writer, matching the host model.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Transact runs fn inside one SQLite transaction.
func (s *Store) Transact(ctx context.Context, fn func(ctx context.Context, tx ledgerstorage.Tx) error) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	sqlTx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger transaction: %w", err)
	}

	if err := fn(ctx, &ledgerTx{q: sqlTx}); err != nil {
		_ = sqlTx.Rollback()
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit ledger transaction: %w", err)
	}
	return nil
}

// GetCurrency loads a registry row by symbol code.
func (s *Store) GetCurrency(ctx context.Context, code string) (domain.CurrencyStats, error) {
	return (&ledgerTx{q: s.sqlDB}).GetCurrency(ctx, code)
}

// GetBalance loads the (account, currency code) row.
func (s *Store) GetBalance(ctx context.Context, account, code string) (domain.AccountBalance, error) {
	return (&ledgerTx{q: s.sqlDB}).GetBalance(ctx, account, code)
}

// GetPolicy loads the expiry policy for a currency code.
func (s *Store) GetPolicy(ctx context.Context, code string) (domain.ExpiryPolicy, error) {
	return (&ledgerTx{q: s.sqlDB}).GetPolicy(ctx, code)
}

// ListBalances returns balance rows matching the query, ordered by
// (currency, account).
func (s *Store) ListBalances(ctx context.Context, query ledgerstorage.BalanceQuery) ([]domain.AccountBalance, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	sqlQuery := `SELECT b.account, b.currency, c.precision, b.balance_units, b.last_activity
		 FROM balances b
		 JOIN currencies c ON c.code = b.currency`
	if strings.TrimSpace(query.Clause) != "" {
		sqlQuery += " WHERE " + query.Clause
	}
	sqlQuery += " ORDER BY b.currency, b.account"
	params := query.Params
	if query.Limit > 0 {
		sqlQuery += " LIMIT ?"
		params = append(append([]any{}, params...), query.Limit)
	}

	rows, err := s.sqlDB.QueryContext(ctx, sqlQuery, params...)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	balances := make([]domain.AccountBalance, 0)
	for rows.Next() {
		balance, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		balances = append(balances, balance)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate balances: %w", err)
	}
	return balances, nil
}

// SumBalances totals all balance units held in one currency.
func (s *Store) SumBalances(ctx context.Context, code string) (int64, error) {
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	var total int64
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(balance_units), 0) FROM balances WHERE currency = ?`, code)
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("sum balances: %w", err)
	}
	return total, nil
}

// DueTriggers returns triggers whose run time is at or before now.
func (s *Store) DueTriggers(ctx context.Context, now time.Time, limit int) ([]domain.RetirementTrigger, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT t.id, t.currency, c.precision, t.user_type, t.memo, t.run_at, t.created_at
		 FROM retirement_triggers t
		 JOIN currencies c ON c.code = t.currency
		 WHERE t.run_at <= ?
		 ORDER BY t.run_at
		 LIMIT ?`,
		timeToUnixMillis(now), limit)
	if err != nil {
		return nil, fmt.Errorf("list due triggers: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	triggers := make([]domain.RetirementTrigger, 0)
	for rows.Next() {
		var trigger domain.RetirementTrigger
		var userType string
		var precision int64
		var runAt int64
		var createdAt int64
		if err := rows.Scan(&trigger.ID, &trigger.Symbol.Code, &precision, &userType, &trigger.Memo, &runAt, &createdAt); err != nil {
			return nil, fmt.Errorf("scan trigger: %w", err)
		}
		trigger.Symbol.Precision = uint8(precision)
		trigger.UserType = domain.UserType(userType)
		trigger.RunAt = unixMillisToTime(runAt)
		trigger.CreatedAt = unixMillisToTime(createdAt)
		triggers = append(triggers, trigger)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate triggers: %w", err)
	}
	return triggers, nil
}

// queryer abstracts *sql.DB and *sql.Tx for shared row access.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ledgerTx implements storage.Tx over a transaction or the bare connection.
type ledgerTx struct {
	q queryer
}

func (t *ledgerTx) GetCurrency(ctx context.Context, code string) (domain.CurrencyStats, error) {
	row := t.q.QueryRowContext(ctx,
		`SELECT code, precision, issuer, type, supply_units, max_supply_units, min_balance_units, created_at, updated_at
		 FROM currencies
		 WHERE code = ?`, code)

	var stats domain.CurrencyStats
	var precision int64
	var currencyType string
	var supplyUnits, maxSupplyUnits, minBalanceUnits int64
	var createdAt, updatedAt int64
	if err := row.Scan(
		&stats.Symbol.Code,
		&precision,
		&stats.Issuer,
		&currencyType,
		&supplyUnits,
		&maxSupplyUnits,
		&minBalanceUnits,
		&createdAt,
		&updatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return domain.CurrencyStats{}, ledgerstorage.ErrNotFound
		}
		return domain.CurrencyStats{}, fmt.Errorf("get currency: %w", err)
	}

	stats.Symbol.Precision = uint8(precision)
	stats.Type = domain.CurrencyType(currencyType)
	stats.Supply = domain.Amount{Units: supplyUnits, Symbol: stats.Symbol}
	stats.MaxSupply = domain.Amount{Units: maxSupplyUnits, Symbol: stats.Symbol}
	stats.MinBalance = domain.Amount{Units: minBalanceUnits, Symbol: stats.Symbol}
	stats.CreatedAt = unixMillisToTime(createdAt)
	stats.UpdatedAt = unixMillisToTime(updatedAt)
	return stats, nil
}

func (t *ledgerTx) PutCurrency(ctx context.Context, stats domain.CurrencyStats) error {
	_, err := t.q.ExecContext(ctx,
		`INSERT INTO currencies (
		    code, precision, issuer, type, supply_units, max_supply_units, min_balance_units, created_at, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(code) DO UPDATE SET
		    supply_units = excluded.supply_units,
		    max_supply_units = excluded.max_supply_units,
		    min_balance_units = excluded.min_balance_units,
		    updated_at = excluded.updated_at`,
		stats.Symbol.Code,
		int64(stats.Symbol.Precision),
		stats.Issuer,
		string(stats.Type),
		stats.Supply.Units,
		stats.MaxSupply.Units,
		stats.MinBalance.Units,
		timeToUnixMillis(stats.CreatedAt),
		timeToUnixMillis(stats.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put currency: %w", err)
	}
	return nil
}

func (t *ledgerTx) GetBalance(ctx context.Context, account, code string) (domain.AccountBalance, error) {
	row := t.q.QueryRowContext(ctx,
		`SELECT b.account, b.currency, c.precision, b.balance_units, b.last_activity
		 FROM balances b
		 JOIN currencies c ON c.code = b.currency
		 WHERE b.account = ? AND b.currency = ?`, account, code)

	balance, err := scanBalance(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.AccountBalance{}, ledgerstorage.ErrNotFound
		}
		return domain.AccountBalance{}, fmt.Errorf("get balance: %w", err)
	}
	return balance, nil
}

func (t *ledgerTx) PutBalance(ctx context.Context, balance domain.AccountBalance) error {
	_, err := t.q.ExecContext(ctx,
		`INSERT INTO balances (account, currency, balance_units, last_activity)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(account, currency) DO UPDATE SET
		    balance_units = excluded.balance_units,
		    last_activity = excluded.last_activity`,
		balance.Account,
		balance.Balance.Symbol.Code,
		balance.Balance.Units,
		timeToUnixMillis(balance.LastActivity),
	)
	if err != nil {
		return fmt.Errorf("put balance: %w", err)
	}
	return nil
}

func (t *ledgerTx) GetPolicy(ctx context.Context, code string) (domain.ExpiryPolicy, error) {
	row := t.q.QueryRowContext(ctx,
		`SELECT p.currency, c.precision, p.natural_period_secs, p.juridical_period_secs, p.renovation_units
		 FROM expiry_policies p
		 JOIN currencies c ON c.code = p.currency
		 WHERE p.currency = ?`, code)

	var policy domain.ExpiryPolicy
	var precision int64
	var naturalSecs, juridicalSecs int64
	var renovationUnits int64
	if err := row.Scan(&policy.Symbol.Code, &precision, &naturalSecs, &juridicalSecs, &renovationUnits); err != nil {
		if err == sql.ErrNoRows {
			return domain.ExpiryPolicy{}, ledgerstorage.ErrNotFound
		}
		return domain.ExpiryPolicy{}, fmt.Errorf("get policy: %w", err)
	}

	policy.Symbol.Precision = uint8(precision)
	policy.NaturalPeriodSecs = uint32(naturalSecs)
	policy.JuridicalPeriodSecs = uint32(juridicalSecs)
	policy.RenovationAmount = domain.Amount{Units: renovationUnits, Symbol: policy.Symbol}
	return policy, nil
}

func (t *ledgerTx) PutPolicy(ctx context.Context, policy domain.ExpiryPolicy) error {
	_, err := t.q.ExecContext(ctx,
		`INSERT INTO expiry_policies (currency, natural_period_secs, juridical_period_secs, renovation_units)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(currency) DO UPDATE SET
		    natural_period_secs = excluded.natural_period_secs,
		    juridical_period_secs = excluded.juridical_period_secs,
		    renovation_units = excluded.renovation_units`,
		policy.Symbol.Code,
		int64(policy.NaturalPeriodSecs),
		int64(policy.JuridicalPeriodSecs),
		policy.RenovationAmount.Units,
	)
	if err != nil {
		return fmt.Errorf("put policy: %w", err)
	}
	return nil
}

func (t *ledgerTx) PutTrigger(ctx context.Context, trigger domain.RetirementTrigger) error {
	_, err := t.q.ExecContext(ctx,
		`INSERT INTO retirement_triggers (id, currency, user_type, memo, run_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		    currency = excluded.currency,
		    user_type = excluded.user_type,
		    memo = excluded.memo,
		    run_at = excluded.run_at,
		    created_at = excluded.created_at`,
		trigger.ID,
		trigger.Symbol.Code,
		string(trigger.UserType),
		trigger.Memo,
		timeToUnixMillis(trigger.RunAt),
		timeToUnixMillis(trigger.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put trigger: %w", err)
	}
	return nil
}

func (t *ledgerTx) DeleteTrigger(ctx context.Context, id string) error {
	if _, err := t.q.ExecContext(ctx, `DELETE FROM retirement_triggers WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete trigger: %w", err)
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanBalance(row scanner) (domain.AccountBalance, error) {
	var balance domain.AccountBalance
	var precision int64
	var units int64
	var lastActivity int64
	if err := row.Scan(&balance.Account, &balance.Balance.Symbol.Code, &precision, &units, &lastActivity); err != nil {
		return domain.AccountBalance{}, err
	}
	balance.Balance.Symbol.Precision = uint8(precision)
	balance.Balance.Units = units
	balance.LastActivity = unixMillisToTime(lastActivity)
	return balance, nil
}

func timeToUnixMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func unixMillisToTime(value int64) time.Time {
	if value <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}

var _ ledgerstorage.Store = (*Store)(nil)
var _ ledgerstorage.Tx = (*ledgerTx)(nil)
