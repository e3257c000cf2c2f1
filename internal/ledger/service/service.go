// Package service implements the ledger operations: currency registration,
// issuance, transfer, retirement, account initialization and expiry
// configuration. Every operation runs inside one storage transaction and
// aborts with zero observable mutation on any validation failure.
package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/communis/ledger/internal/auth"
	"github.com/communis/ledger/internal/community"
	"github.com/communis/ledger/internal/ledger/domain"
	"github.com/communis/ledger/internal/ledger/storage"
	"github.com/communis/ledger/internal/notify"
	apperrors "github.com/communis/ledger/internal/platform/errors"
)

// OriginCommunityRegistry marks invocations dispatched by the community
// registry's own actions, which changes who must authenticate InitAccount.
const OriginCommunityRegistry = "community-registry"

// Config carries the collaborators a Service needs.
type Config struct {
	Store    storage.Store
	Registry community.Registry
	Members  community.Members
	Auth     auth.Authorizer
	Notifier notify.Notifier
	Now      func() time.Time
}

// Service executes ledger operations against injected collaborators.
type Service struct {
	store    storage.Store
	registry community.Registry
	members  community.Members
	auth     auth.Authorizer
	notifier notify.Notifier
	now      func() time.Time
	tracer   trace.Tracer
}

// New wires a ledger service. Store, Registry and Members are required;
// Auth, Notifier and Now default to the context authorizer, the log
// notifier and the wall clock.
func New(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("community registry is required")
	}
	if cfg.Members == nil {
		return nil, fmt.Errorf("membership lookup is required")
	}
	if cfg.Auth == nil {
		cfg.Auth = auth.ContextAuthorizer{}
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.LogNotifier{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		store:    cfg.Store,
		registry: cfg.Registry,
		members:  cfg.Members,
		auth:     cfg.Auth,
		notifier: cfg.Notifier,
		now:      cfg.Now,
		tracer:   otel.Tracer("communis.ledger.service"),
	}, nil
}

// CurrencyStats returns the registry row for a symbol code.
func (s *Service) CurrencyStats(ctx context.Context, code string) (domain.CurrencyStats, error) {
	stats, err := s.store.GetCurrency(ctx, code)
	if err != nil {
		if err == storage.ErrNotFound {
			return domain.CurrencyStats{}, apperrors.WithMetadata(apperrors.CodeCurrencyNotFound,
				fmt.Sprintf("currency %s does not exist", code),
				map[string]string{"Symbol": code})
		}
		return domain.CurrencyStats{}, err
	}
	return stats, nil
}

// Balance returns the ledger row for one (account, currency code) pair.
func (s *Service) Balance(ctx context.Context, account, code string) (domain.AccountBalance, error) {
	balance, err := s.store.GetBalance(ctx, account, code)
	if err != nil {
		if err == storage.ErrNotFound {
			return domain.AccountBalance{}, apperrors.WithMetadata(apperrors.CodeNotFound,
				fmt.Sprintf("account %s holds no %s balance", account, code),
				map[string]string{"Account": account, "Currency": code})
		}
		return domain.AccountBalance{}, err
	}
	return balance, nil
}

// Policy returns the expiry configuration for a currency code.
func (s *Service) Policy(ctx context.Context, code string) (domain.ExpiryPolicy, error) {
	policy, err := s.store.GetPolicy(ctx, code)
	if err != nil {
		if err == storage.ErrNotFound {
			return domain.ExpiryPolicy{}, apperrors.New(apperrors.CodeNotFound,
				fmt.Sprintf("currency %s has no expiry policy", code))
		}
		return domain.ExpiryPolicy{}, err
	}
	return policy, nil
}

// ListBalances returns balance rows matching a pre-translated query.
func (s *Service) ListBalances(ctx context.Context, query storage.BalanceQuery) ([]domain.AccountBalance, error) {
	return s.store.ListBalances(ctx, query)
}

// getCurrency loads a registry row inside a transaction, translating a
// missing row to CurrencyNotFound.
func getCurrency(ctx context.Context, tx storage.Tx, code string) (domain.CurrencyStats, error) {
	stats, err := tx.GetCurrency(ctx, code)
	if err != nil {
		if err == storage.ErrNotFound {
			return domain.CurrencyStats{}, apperrors.WithMetadata(apperrors.CodeCurrencyNotFound,
				fmt.Sprintf("currency %s does not exist", code),
				map[string]string{"Symbol": code})
		}
		return domain.CurrencyStats{}, err
	}
	return stats, nil
}

// credit adds amount to an account's balance, lazily creating the row at
// zero. This and debit are the only places balance invariants are enforced.
func (s *Service) credit(ctx context.Context, tx storage.Tx, stats domain.CurrencyStats, account string, amount domain.Amount) error {
	if err := amount.ValidatePositive(); err != nil {
		return err
	}
	if !amount.Symbol.Equal(stats.Symbol) {
		return apperrors.New(apperrors.CodeSymbolMismatch,
			fmt.Sprintf("amount %s does not match currency %s", amount, stats.Symbol))
	}

	now := s.now()
	balance, err := tx.GetBalance(ctx, account, stats.Symbol.Code)
	if err != nil {
		if err != storage.ErrNotFound {
			return err
		}
		balance = domain.NewAccountBalance(account, stats.Symbol, now)
	}
	balance.Balance = balance.Balance.Add(amount)
	balance.LastActivity = now.UTC()
	return tx.PutBalance(ctx, balance)
}

// debit subtracts amount from an account's balance. Accounts with no row
// start from zero, going directly into overdraft if the floor allows it;
// results below the currency's min balance are rejected.
func (s *Service) debit(ctx context.Context, tx storage.Tx, stats domain.CurrencyStats, account string, amount domain.Amount) error {
	if err := amount.ValidatePositive(); err != nil {
		return err
	}
	if !amount.Symbol.Equal(stats.Symbol) {
		return apperrors.New(apperrors.CodeSymbolMismatch,
			fmt.Sprintf("amount %s does not match currency %s", amount, stats.Symbol))
	}

	now := s.now()
	balance, err := tx.GetBalance(ctx, account, stats.Symbol.Code)
	if err != nil {
		if err != storage.ErrNotFound {
			return err
		}
		balance = domain.NewAccountBalance(account, stats.Symbol, now)
	}

	result := balance.Balance.Sub(amount)
	if result.Units < stats.MinBalance.Units {
		return apperrors.WithMetadata(apperrors.CodeOverdrawnLimit,
			fmt.Sprintf("debit of %s would leave %s below the %s floor", amount, result, stats.MinBalance),
			map[string]string{"Floor": stats.MinBalance.String()})
	}
	balance.Balance = result
	balance.LastActivity = now.UTC()
	return tx.PutBalance(ctx, balance)
}

// note is a queued notification, delivered only after the operation's
// transaction commits.
type note struct {
	account string
	message string
}

// deliver sends queued notifications best-effort.
func (s *Service) deliver(ctx context.Context, notes []note) {
	for _, n := range notes {
		if err := s.notifier.Notify(ctx, n.account, n.message); err != nil {
			log.Printf("notify %s failed: %v", n.account, err)
		}
	}
}
