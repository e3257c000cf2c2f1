package service

import (
	"context"
	"strings"
	"testing"

	"github.com/communis/ledger/internal/ledger/domain"
	apperrors "github.com/communis/ledger/internal/platform/errors"
)

func TestIssueToIssuer(t *testing.T) {
	h := newHarness(t)
	createTestCurrency(t, h)

	err := h.svc.Issue(privilegedCtx(), IssueRequest{
		To:       "creator",
		Quantity: mustParseAmount(t, "100.00 TEST"),
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	stats, err := h.svc.CurrencyStats(context.Background(), "TEST")
	if err != nil {
		t.Fatalf("currency stats: %v", err)
	}
	if got := stats.Supply.String(); got != "100.00 TEST" {
		t.Fatalf("expected supply 100.00 TEST, got %s", got)
	}
	balance, err := h.svc.Balance(context.Background(), "creator", "TEST")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if got := balance.Balance.String(); got != "100.00 TEST" {
		t.Fatalf("expected balance 100.00 TEST, got %s", got)
	}
}

func TestIssueIsInternalOnly(t *testing.T) {
	h := newHarness(t)
	createTestCurrency(t, h)
	err := h.svc.Issue(callerCtx("creator"), IssueRequest{
		To:       "creator",
		Quantity: mustParseAmount(t, "100.00 TEST"),
	})
	wantCode(t, err, apperrors.CodeNotAuthorized)
}

func TestIssueSupplyCap(t *testing.T) {
	h := newHarness(t)
	createTestCurrency(t, h)
	err := h.svc.Issue(privilegedCtx(), IssueRequest{
		To:       "creator",
		Quantity: mustParseAmount(t, "1000.01 TEST"),
	})
	wantCode(t, err, apperrors.CodeSupplyExceeded)
}

func TestIssueForwardsToRecipient(t *testing.T) {
	h := newHarness(t)
	createTestCurrency(t, h)
	h.comm.addMember("TEST", "membera", domain.UserNatural)

	err := h.svc.Issue(privilegedCtx(), IssueRequest{
		To:       "membera",
		Quantity: mustParseAmount(t, "40.00 TEST"),
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	issuer, err := h.svc.Balance(context.Background(), "creator", "TEST")
	if err != nil {
		t.Fatalf("issuer balance: %v", err)
	}
	if issuer.Balance.Units != 0 {
		t.Fatalf("expected minted value to flow onward, issuer holds %s", issuer.Balance)
	}
	recipient, err := h.svc.Balance(context.Background(), "membera", "TEST")
	if err != nil {
		t.Fatalf("recipient balance: %v", err)
	}
	if got := recipient.Balance.String(); got != "40.00 TEST" {
		t.Fatalf("expected 40.00 TEST, got %s", got)
	}
}

func TestIssueMemoTooLong(t *testing.T) {
	h := newHarness(t)
	createTestCurrency(t, h)
	err := h.svc.Issue(privilegedCtx(), IssueRequest{
		To:       "creator",
		Quantity: mustParseAmount(t, "1.00 TEST"),
		Memo:     strings.Repeat("x", 257),
	})
	wantCode(t, err, apperrors.CodeMemoTooLong)
}

func TestTransferBetweenMembers(t *testing.T) {
	h := newHarness(t)
	createTestCurrency(t, h)
	h.comm.addMember("TEST", "membera", domain.UserNatural)
	if err := h.svc.Issue(privilegedCtx(), IssueRequest{To: "creator", Quantity: mustParseAmount(t, "100.00 TEST")}); err != nil {
		t.Fatalf("issue: %v", err)
	}

	err := h.svc.Transfer(callerCtx("creator"), TransferRequest{
		From:     "creator",
		To:       "membera",
		Quantity: mustParseAmount(t, "30.00 TEST"),
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	from, _ := h.svc.Balance(context.Background(), "creator", "TEST")
	to, _ := h.svc.Balance(context.Background(), "membera", "TEST")
	stats, _ := h.svc.CurrencyStats(context.Background(), "TEST")
	if got := from.Balance.String(); got != "70.00 TEST" {
		t.Fatalf("expected from 70.00 TEST, got %s", got)
	}
	if got := to.Balance.String(); got != "30.00 TEST" {
		t.Fatalf("expected to 30.00 TEST, got %s", got)
	}
	if got := stats.Supply.String(); got != "100.00 TEST" {
		t.Fatalf("transfer must not change supply, got %s", got)
	}
}

func TestTransferRejectsSelf(t *testing.T) {
	h := newHarness(t)
	createTestCurrency(t, h)
	err := h.svc.Transfer(callerCtx("creator"), TransferRequest{
		From:     "creator",
		To:       "creator",
		Quantity: mustParseAmount(t, "1.00 TEST"),
	})
	wantCode(t, err, apperrors.CodeSelfTransfer)
}

func TestTransferRequiresSenderAuth(t *testing.T) {
	h := newHarness(t)
	createTestCurrency(t, h)
	h.comm.addMember("TEST", "membera", domain.UserNatural)
	err := h.svc.Transfer(callerCtx("membera"), TransferRequest{
		From:     "creator",
		To:       "membera",
		Quantity: mustParseAmount(t, "1.00 TEST"),
	})
	wantCode(t, err, apperrors.CodeNotAuthorized)
}

func TestTransferUnknownRecipient(t *testing.T) {
	h := newHarness(t)
	createTestCurrency(t, h)
	err := h.svc.Transfer(callerCtx("creator"), TransferRequest{
		From:     "creator",
		To:       "ghost",
		Quantity: mustParseAmount(t, "1.00 TEST"),
	})
	wantCode(t, err, apperrors.CodeUnknownAccountIdentity)
}

func TestTransferRequiresMembership(t *testing.T) {
	h := newHarness(t)
	createTestCurrency(t, h)
	h.comm.accounts["outsider"] = true
	err := h.svc.Transfer(callerCtx("creator"), TransferRequest{
		From:     "creator",
		To:       "outsider",
		Quantity: mustParseAmount(t, "1.00 TEST"),
	})
	wantCode(t, err, apperrors.CodeNotCommunityMember)
}

func TestTransferOverdraftFloor(t *testing.T) {
	h := newHarness(t)
	createTestCurrency(t, h)
	h.comm.addMember("TEST", "membera", domain.UserNatural)

	// No issuance: the creator can overdraw down to -50.00 but not past it.
	err := h.svc.Transfer(callerCtx("creator"), TransferRequest{
		From:     "creator",
		To:       "membera",
		Quantity: mustParseAmount(t, "60.00 TEST"),
	})
	wantCode(t, err, apperrors.CodeOverdrawnLimit)

	// The failed transfer left no partial mutation.
	from, err := h.svc.Balance(context.Background(), "creator", "TEST")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if from.Balance.Units != 0 {
		t.Fatalf("expected untouched balance, got %s", from.Balance)
	}
	if _, err := h.svc.Balance(context.Background(), "membera", "TEST"); err == nil {
		t.Fatal("expected no recipient row after abort")
	}

	err = h.svc.Transfer(callerCtx("creator"), TransferRequest{
		From:     "creator",
		To:       "membera",
		Quantity: mustParseAmount(t, "50.00 TEST"),
	})
	if err != nil {
		t.Fatalf("transfer to the floor: %v", err)
	}
	from, _ = h.svc.Balance(context.Background(), "creator", "TEST")
	if got := from.Balance.String(); got != "-50.00 TEST" {
		t.Fatalf("expected -50.00 TEST, got %s", got)
	}
}
