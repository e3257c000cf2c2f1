package service

import (
	"context"
	"fmt"

	"github.com/communis/ledger/internal/ledger/domain"
	"github.com/communis/ledger/internal/ledger/storage"
	apperrors "github.com/communis/ledger/internal/platform/errors"
	"github.com/communis/ledger/internal/platform/requestctx"
)

// SetExpiryRequest configures the renewal/expiration cycle of a currency.
type SetExpiryRequest struct {
	Currency            domain.Symbol
	NaturalPeriodSecs   uint32
	JuridicalPeriodSecs uint32
	Renovation          domain.Amount
}

// SetExpiry upserts the expiry policy, grants the renovation amount to each
// natural member through nested issuance, and arms one retirement trigger
// per classification. Trigger identifiers are deterministic per (currency,
// classification), so re-configuring replaces the pending retirements
// instead of stacking duplicates. The whole operation is one transaction;
// the armed triggers fire later as independent transactions.
func (s *Service) SetExpiry(ctx context.Context, req SetExpiryRequest) (domain.ExpiryPolicy, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.SetExpiry")
	defer span.End()

	var policy domain.ExpiryPolicy
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
		if !s.auth.Authenticated(ctx, stats.Issuer) {
			return apperrors.New(apperrors.CodeNotAuthorized,
				fmt.Sprintf("only issuer %s may configure expiry for %s", stats.Issuer, stats.Symbol.Code))
		}

		policy, err = domain.NewExpiryPolicy(stats, req.NaturalPeriodSecs, req.JuridicalPeriodSecs, req.Renovation)
		if err != nil {
			return err
		}
		if err := tx.PutPolicy(ctx, policy); err != nil {
			return err
		}

		memberships, err := s.members.BySymbol(ctx, stats.Symbol.Code)
		if err != nil {
			return err
		}
		renewalMemo := fmt.Sprintf("Token renewal of %s, valid for %d seconds",
			policy.RenovationAmount, policy.NaturalPeriodSecs)
		privCtx := requestctx.WithPrivileged(ctx)
		for _, membership := range memberships {
			if membership.UserType != domain.UserNatural {
				continue
			}
			err := s.issueInTx(privCtx, tx, IssueRequest{
				To:       membership.Account,
				Quantity: policy.RenovationAmount,
				Memo:     renewalMemo,
			}, &notes)
			if err != nil {
				return err
			}
		}

		now := s.now()
		for _, userType := range []domain.UserType{domain.UserNatural, domain.UserJuridical} {
			memo := fmt.Sprintf("Your %s tokens expired after %d seconds", stats.Symbol.Code, policy.Period(userType))
			trigger := domain.NewRetirementTrigger(stats.Symbol, userType, memo, policy.Period(userType), now)
			if err := tx.PutTrigger(ctx, trigger); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.ExpiryPolicy{}, err
	}
	s.deliver(ctx, notes)
	return policy, nil
}
