package service

import (
	"context"
	"fmt"

	"github.com/communis/ledger/internal/community"
	"github.com/communis/ledger/internal/ledger/domain"
	"github.com/communis/ledger/internal/ledger/storage"
	apperrors "github.com/communis/ledger/internal/platform/errors"
)

// CreateRequest registers a new currency against an existing community.
type CreateRequest struct {
	Issuer     string
	MaxSupply  domain.Amount
	MinBalance domain.Amount
	Type       domain.CurrencyType
}

// Create registers a currency with zero circulating supply and an initial
// zero balance row for the issuer. Only the community's registered creator
// may create its currency. When the issuer is not the creator, the issuer
// is linked into the community's membership; a failed link aborts the
// whole create.
func (s *Service) Create(ctx context.Context, req CreateRequest) (domain.CurrencyStats, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.Create")
	defer span.End()

	stats, err := domain.NewCurrency(req.Issuer, req.MaxSupply, req.MinBalance, req.Type, s.now())
	if err != nil {
		return domain.CurrencyStats{}, err
	}

	comm, err := s.registry.Lookup(ctx, stats.Symbol.Code)
	if err != nil {
		if err == community.ErrNotFound {
			return domain.CurrencyStats{}, apperrors.WithMetadata(apperrors.CodeCurrencyNotFound,
				fmt.Sprintf("no community owns symbol %s", stats.Symbol.Code),
				map[string]string{"Symbol": stats.Symbol.Code})
		}
		return domain.CurrencyStats{}, err
	}
	if !s.auth.Authenticated(ctx, comm.Creator) {
		return domain.CurrencyStats{}, apperrors.New(apperrors.CodeNotAuthorized,
			fmt.Sprintf("only community creator %s may create currency %s", comm.Creator, stats.Symbol.Code))
	}

	err = s.store.Transact(ctx, func(ctx context.Context, tx storage.Tx) error {
		_, err := tx.GetCurrency(ctx, stats.Symbol.Code)
		if err == nil {
			return apperrors.New(apperrors.CodeDuplicateCurrency,
				fmt.Sprintf("currency %s already exists", stats.Symbol.Code))
		}
		if err != storage.ErrNotFound {
			return err
		}
		if err := tx.PutCurrency(ctx, stats); err != nil {
			return err
		}
		if err := tx.PutBalance(ctx, domain.NewAccountBalance(stats.Issuer, stats.Symbol, s.now())); err != nil {
			return err
		}
		if stats.Issuer != comm.Creator {
			// The registry keeps its own store, so the link cannot share
			// this transaction. It runs last: a link failure rolls the
			// ledger writes back before anything is committed.
			return s.registry.Link(ctx, stats.Symbol.Code, stats.Issuer, comm.Creator, domain.UserNatural)
		}
		return nil
	})
	if err != nil {
		return domain.CurrencyStats{}, err
	}

	notes := []note{{comm.Creator, fmt.Sprintf("Currency %s was created", stats.Symbol)}}
	if stats.Issuer != comm.Creator {
		notes = append(notes, note{stats.Issuer, fmt.Sprintf("You are the issuer of %s", stats.Symbol)})
	}
	s.deliver(ctx, notes)
	return stats, nil
}

// UpdateRequest overwrites a currency's mutable limits.
type UpdateRequest struct {
	MaxSupply  domain.Amount
	MinBalance domain.Amount
}

// Update overwrites max supply and min balance in place. Type and supply
// are untouched. Only the registered issuer may update.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (domain.CurrencyStats, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.Update")
	defer span.End()

	if err := domain.ValidateLimits(req.MaxSupply, req.MinBalance); err != nil {
		return domain.CurrencyStats{}, err
	}

	var updated domain.CurrencyStats
	err := s.store.Transact(ctx, func(ctx context.Context, tx storage.Tx) error {
		stats, err := getCurrency(ctx, tx, req.MaxSupply.Symbol.Code)
		if err != nil {
			return err
		}
		if !s.auth.Authenticated(ctx, stats.Issuer) {
			return apperrors.New(apperrors.CodeNotAuthorized,
				fmt.Sprintf("only issuer %s may update currency %s", stats.Issuer, stats.Symbol.Code))
		}
		if err := stats.SetLimits(req.MaxSupply, req.MinBalance, s.now()); err != nil {
			return err
		}
		if err := tx.PutCurrency(ctx, stats); err != nil {
			return err
		}
		updated = stats
		return nil
	})
	if err != nil {
		return domain.CurrencyStats{}, err
	}
	return updated, nil
}
