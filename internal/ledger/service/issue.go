package service

import (
	"context"
	"fmt"

	"github.com/communis/ledger/internal/ledger/domain"
	"github.com/communis/ledger/internal/ledger/storage"
	apperrors "github.com/communis/ledger/internal/platform/errors"
	"github.com/communis/ledger/internal/platform/requestctx"
)

// IssueRequest mints new supply to the issuer, optionally forwarding it.
type IssueRequest struct {
	To       string
	Quantity domain.Amount
	Memo     string
}

// Issue mints Quantity against the currency's supply cap. Minted value is
// always credited to the issuer first; when To differs, a transfer moves it
// onward within the same transaction, so every mint has a single
// source-of-truth credit event. Issuance is internal-only.
func (s *Service) Issue(ctx context.Context, req IssueRequest) error {
	ctx, span := s.tracer.Start(ctx, "ledger.Issue")
	defer span.End()

	if !s.auth.Privileged(ctx) {
		return apperrors.New(apperrors.CodeNotAuthorized, "issuance is internal-only")
	}

	var notes []note
	err := s.store.Transact(ctx, func(ctx context.Context, tx storage.Tx) error {
		return s.issueInTx(ctx, tx, req, &notes)
	})
	if err != nil {
		return err
	}
	s.deliver(ctx, notes)
	return nil
}

// issueInTx runs the issuance inside an already-open transaction, so nested
// dispatch from expiry configuration shares the outer atomic boundary.
func (s *Service) issueInTx(ctx context.Context, tx storage.Tx, req IssueRequest, notes *[]note) error {
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
	if req.Quantity.Units > stats.Available() {
		return apperrors.WithMetadata(apperrors.CodeSupplyExceeded,
			fmt.Sprintf("quantity %s exceeds available supply of %d units", req.Quantity, stats.Available()),
			map[string]string{"Max": stats.MaxSupply.String()})
	}

	stats.Supply = stats.Supply.Add(req.Quantity)
	stats.UpdatedAt = s.now().UTC()
	if err := tx.PutCurrency(ctx, stats); err != nil {
		return err
	}
	if err := s.credit(ctx, tx, stats, stats.Issuer, req.Quantity); err != nil {
		return err
	}

	if req.To != stats.Issuer {
		message := fmt.Sprintf("Issued %s forwarded to %s", req.Quantity, req.To)
		if req.Memo != "" {
			message += ": " + req.Memo
		}
		*notes = append(*notes, note{stats.Issuer, message})
		return s.transferInTx(requestctx.WithPrivileged(ctx), tx, TransferRequest{
			From:     stats.Issuer,
			To:       req.To,
			Quantity: req.Quantity,
			Memo:     req.Memo,
		})
	}
	return nil
}
