package service

import (
	"context"
	"fmt"

	"github.com/communis/ledger/internal/ledger/domain"
	"github.com/communis/ledger/internal/ledger/storage"
	apperrors "github.com/communis/ledger/internal/platform/errors"
)

// RetireRequest sweeps the balances of one member classification.
type RetireRequest struct {
	Currency domain.Symbol
	UserType domain.UserType
	Memo     string
}

// Retire zeroes the balance of every member of the given classification and
// decrements supply by the sum swept. Accounts with no ledger row are
// skipped; already-zero balances are left untouched, so the sweep is
// idempotent per account. Retirement is internal-only: it runs as a
// scheduled trigger, never on behalf of an external caller.
func (s *Service) Retire(ctx context.Context, req RetireRequest) error {
	ctx, span := s.tracer.Start(ctx, "ledger.Retire")
	defer span.End()

	if !s.auth.Privileged(ctx) {
		return apperrors.New(apperrors.CodeNotAuthorized, "retirement is internal-only")
	}
	if _, err := domain.ParseUserType(string(req.UserType)); err != nil {
		return err
	}
	if err := domain.ValidateMemo(req.Memo); err != nil {
		return err
	}

	var notes []note
	err := s.store.Transact(ctx, func(ctx context.Context, tx storage.Tx) error {
		stats, err := getCurrency(ctx, tx, req.Currency.Code)
		if err != nil {
			return err
		}
		if !req.Currency.Equal(stats.Symbol) {
			return apperrors.New(apperrors.CodeSymbolMismatch,
				fmt.Sprintf("symbol %s does not match currency %s", req.Currency, stats.Symbol))
		}
		if stats.Type != domain.CurrencyExpiry {
			return apperrors.WithMetadata(apperrors.CodeUnsupportedType,
				fmt.Sprintf("currency %s is %q; only expiry currencies retire", stats.Symbol, stats.Type),
				map[string]string{"Type": string(stats.Type)})
		}

		memberships, err := s.members.BySymbol(ctx, stats.Symbol.Code)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		var swept int64
		for _, membership := range memberships {
			if membership.UserType != req.UserType {
				continue
			}
			balance, err := tx.GetBalance(ctx, membership.Account, stats.Symbol.Code)
			if err != nil {
				if err == storage.ErrNotFound {
					continue
				}
				return err
			}
			if balance.Balance.Units == 0 {
				continue
			}

			swept += balance.Balance.Units
			if req.Memo != "" {
				notes = append(notes, note{membership.Account,
					fmt.Sprintf("%s (%s retired)", req.Memo, balance.Balance)})
			}
			balance.Balance = domain.Zero(stats.Symbol)
			balance.LastActivity = now
			if err := tx.PutBalance(ctx, balance); err != nil {
				return err
			}
		}

		if swept == 0 {
			return nil
		}
		stats.Supply.Units -= swept
		stats.UpdatedAt = now
		return tx.PutCurrency(ctx, stats)
	})
	if err != nil {
		return err
	}
	s.deliver(ctx, notes)
	return nil
}
