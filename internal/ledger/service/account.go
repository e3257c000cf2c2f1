package service

import (
	"context"
	"fmt"

	"github.com/communis/ledger/internal/community"
	"github.com/communis/ledger/internal/ledger/domain"
	"github.com/communis/ledger/internal/ledger/storage"
	apperrors "github.com/communis/ledger/internal/platform/errors"
	"github.com/communis/ledger/internal/platform/requestctx"
)

// InitAccountRequest materializes a ledger row for an admitted member.
type InitAccountRequest struct {
	Currency domain.Symbol
	Account  string
	Inviter  string
}

// InitAccount creates a zero balance row for an account that is already a
// community member. Initialization never grants membership. Invocations
// dispatched by the community registry authenticate as the inviter; any
// other path must carry the ledger's own authority. Idempotent.
func (s *Service) InitAccount(ctx context.Context, req InitAccountRequest) error {
	ctx, span := s.tracer.Start(ctx, "ledger.InitAccount")
	defer span.End()

	if requestctx.Origin(ctx) == OriginCommunityRegistry {
		if !s.auth.Authenticated(ctx, req.Inviter) {
			return apperrors.New(apperrors.CodeNotAuthorized,
				fmt.Sprintf("initialization requires authorization for inviter %s", req.Inviter))
		}
	} else if !s.auth.Privileged(ctx) {
		return apperrors.New(apperrors.CodeNotAuthorized, "account initialization is internal-only")
	}

	return s.store.Transact(ctx, func(ctx context.Context, tx storage.Tx) error {
		stats, err := getCurrency(ctx, tx, req.Currency.Code)
		if err != nil {
			return err
		}
		if !req.Currency.Equal(stats.Symbol) {
			return apperrors.New(apperrors.CodeSymbolMismatch,
				fmt.Sprintf("symbol %s does not match currency %s", req.Currency, stats.Symbol))
		}

		if _, err := s.members.Member(ctx, stats.Symbol.Code, req.Account); err != nil {
			if err == community.ErrNotFound {
				return apperrors.WithMetadata(apperrors.CodeNotCommunityMember,
					fmt.Sprintf("account %s is not a member of community %s", req.Account, stats.Symbol.Code),
					map[string]string{"Account": req.Account, "Currency": stats.Symbol.Code})
			}
			return err
		}

		_, err = tx.GetBalance(ctx, req.Account, stats.Symbol.Code)
		if err == nil {
			return nil
		}
		if err != storage.ErrNotFound {
			return err
		}
		return tx.PutBalance(ctx, domain.NewAccountBalance(req.Account, stats.Symbol, s.now()))
	})
}
