package service

import (
	"context"
	"fmt"

	"github.com/communis/ledger/internal/community"
	"github.com/communis/ledger/internal/ledger/domain"
	"github.com/communis/ledger/internal/ledger/storage"
	apperrors "github.com/communis/ledger/internal/platform/errors"
)

// TransferRequest moves value between two member accounts.
type TransferRequest struct {
	From     string
	To       string
	Quantity domain.Amount
	Memo     string
}

// Transfer debits From and credits To. Both parties must be members of the
// currency's community; this gate keeps value inside the community's closed
// economy. Supply is unchanged.
func (s *Service) Transfer(ctx context.Context, req TransferRequest) error {
	ctx, span := s.tracer.Start(ctx, "ledger.Transfer")
	defer span.End()

	return s.store.Transact(ctx, func(ctx context.Context, tx storage.Tx) error {
		return s.transferInTx(ctx, tx, req)
	})
}

func (s *Service) transferInTx(ctx context.Context, tx storage.Tx, req TransferRequest) error {
	if req.From == req.To {
		return apperrors.New(apperrors.CodeSelfTransfer,
			fmt.Sprintf("account %s cannot transfer to itself", req.From))
	}
	if !s.auth.Authenticated(ctx, req.From) {
		return apperrors.New(apperrors.CodeNotAuthorized,
			fmt.Sprintf("transfer requires authorization for %s", req.From))
	}

	known, err := s.registry.KnownAccount(ctx, req.To)
	if err != nil {
		return err
	}
	if !known {
		return apperrors.WithMetadata(apperrors.CodeUnknownAccountIdentity,
			fmt.Sprintf("account %s does not resolve", req.To),
			map[string]string{"Account": req.To})
	}

	if err := req.Quantity.ValidatePositive(); err != nil {
		return err
	}
	if err := domain.ValidateMemo(req.Memo); err != nil {
		return err
	}

	stats, err := getCurrency(ctx, tx, req.Quantity.Symbol.Code)
	if err != nil {
		return err
	}
	if !req.Quantity.Symbol.Equal(stats.Symbol) {
		return apperrors.New(apperrors.CodeSymbolMismatch,
			fmt.Sprintf("quantity %s does not match currency %s", req.Quantity, stats.Symbol))
	}

	for _, account := range []string{req.From, req.To} {
		if _, err := s.members.Member(ctx, stats.Symbol.Code, account); err != nil {
			if err == community.ErrNotFound {
				return apperrors.WithMetadata(apperrors.CodeNotCommunityMember,
					fmt.Sprintf("account %s is not a member of community %s", account, stats.Symbol.Code),
					map[string]string{"Account": account, "Currency": stats.Symbol.Code})
			}
			return err
		}
	}

	if err := s.debit(ctx, tx, stats, req.From, req.Quantity); err != nil {
		return err
	}
	return s.credit(ctx, tx, stats, req.To, req.Quantity)
}
