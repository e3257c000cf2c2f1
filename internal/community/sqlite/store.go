// Package sqlite provides a SQLite-backed mirror of the community and
// membership registries.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/communis/ledger/internal/community"
	"github.com/communis/ledger/internal/community/sqlite/migrations"
	"github.com/communis/ledger/internal/ledger/domain"
	sqlitemigrate "github.com/communis/ledger/internal/platform/storage/sqlitemigrate"
	_ "modernc.org/sqlite"
)

// Store mirrors community, account and membership records in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens and migrates a community registry mirror.
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

	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB, now: time.Now}
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

// Lookup returns the community owning a symbol code.
func (s *Store) Lookup(ctx context.Context, symbol string) (community.Community, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT symbol, creator, created_at FROM communities WHERE symbol = ?`, symbol)

	var record community.Community
	var createdAt int64
	if err := row.Scan(&record.Symbol, &record.Creator, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return community.Community{}, community.ErrNotFound
		}
		return community.Community{}, fmt.Errorf("lookup community: %w", err)
	}
	record.CreatedAt = time.UnixMilli(createdAt).UTC()
	return record, nil
}

// KnownAccount reports whether an account identity resolves.
func (s *Store) KnownAccount(ctx context.Context, account string) (bool, error) {
	var name string
	row := s.sqlDB.QueryRowContext(ctx, `SELECT name FROM accounts WHERE name = ?`, account)
	if err := row.Scan(&name); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("lookup account: %w", err)
	}
	return true, nil
}

// Link admits an account into a community's membership. Existing members
// keep their original record.
func (s *Store) Link(ctx context.Context, symbol, account, inviter string, userType domain.UserType) error {
	if _, err := s.Lookup(ctx, symbol); err != nil {
		return err
	}
	if err := s.PutAccount(ctx, account); err != nil {
		return err
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO members (symbol, account, user_type, inviter, joined_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(symbol, account) DO NOTHING`,
		symbol, account, string(userType), inviter, s.now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("link member: %w", err)
	}
	return nil
}

// Member is the point lookup by (symbol code, account).
func (s *Store) Member(ctx context.Context, symbol, account string) (community.Membership, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT symbol, account, user_type, inviter, joined_at
		 FROM members
		 WHERE symbol = ? AND account = ?`, symbol, account)
	return scanMembership(row)
}

// BySymbol returns every membership of one community, ordered by account.
func (s *Store) BySymbol(ctx context.Context, symbol string) ([]community.Membership, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT symbol, account, user_type, inviter, joined_at
		 FROM members
		 WHERE symbol = ?
		 ORDER BY account`, symbol)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	memberships := make([]community.Membership, 0)
	for rows.Next() {
		membership, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, membership)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return memberships, nil
}

// PutCommunity registers a community record in the mirror.
func (s *Store) PutCommunity(ctx context.Context, record community.Community) error {
	if strings.TrimSpace(record.Symbol) == "" || strings.TrimSpace(record.Creator) == "" {
		return fmt.Errorf("community symbol and creator are required")
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO communities (symbol, creator, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(symbol) DO UPDATE SET creator = excluded.creator`,
		record.Symbol, record.Creator, createdAt.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("put community: %w", err)
	}
	if err := s.PutAccount(ctx, record.Creator); err != nil {
		return err
	}
	return s.Link(ctx, record.Symbol, record.Creator, record.Creator, domain.UserNatural)
}

// PutAccount registers an account identity.
func (s *Store) PutAccount(ctx context.Context, account string) error {
	if strings.TrimSpace(account) == "" {
		return fmt.Errorf("account name is required")
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO accounts (name, created_at) VALUES (?, ?)
		 ON CONFLICT(name) DO NOTHING`,
		account, s.now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("put account: %w", err)
	}
	return nil
}

// PutMember records a membership with an explicit classification,
// overwriting any existing record.
func (s *Store) PutMember(ctx context.Context, membership community.Membership) error {
	if _, err := domain.ParseUserType(string(membership.UserType)); err != nil {
		return err
	}
	if err := s.PutAccount(ctx, membership.Account); err != nil {
		return err
	}
	joinedAt := membership.JoinedAt
	if joinedAt.IsZero() {
		joinedAt = s.now()
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO members (symbol, account, user_type, inviter, joined_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(symbol, account) DO UPDATE SET
		    user_type = excluded.user_type,
		    inviter = excluded.inviter`,
		membership.Symbol, membership.Account, string(membership.UserType),
		membership.Inviter, joinedAt.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("put member: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMembership(row scanner) (community.Membership, error) {
	var membership community.Membership
	var userType string
	var joinedAt int64
	if err := row.Scan(&membership.Symbol, &membership.Account, &userType, &membership.Inviter, &joinedAt); err != nil {
		if err == sql.ErrNoRows {
			return community.Membership{}, community.ErrNotFound
		}
		return community.Membership{}, fmt.Errorf("scan membership: %w", err)
	}
	membership.UserType = domain.UserType(userType)
	membership.JoinedAt = time.UnixMilli(joinedAt).UTC()
	return membership, nil
}

var _ community.Registry = (*Store)(nil)
var _ community.Members = (*Store)(nil)
