package service

import (
	"context"
	"strings"
	"testing"

	"github.com/communis/ledger/internal/ledger/domain"
	apperrors "github.com/communis/ledger/internal/platform/errors"
	"github.com/communis/ledger/internal/platform/requestctx"
)

// createExpiryCurrency registers the expiry currency EXP,2 with one natural
// and one juridical member besides the creator.
func createExpiryCurrency(t *testing.T, h *harness) domain.CurrencyStats {
	t.Helper()
	h.comm.addCommunity("EXP", "creator")
	h.comm.addMember("EXP", "membera", domain.UserNatural)
	h.comm.addMember("EXP", "orgb", domain.UserJuridical)
	stats, err := h.svc.Create(callerCtx("creator"), CreateRequest{
		Issuer:     "creator",
		MaxSupply:  mustParseAmount(t, "1000.00 EXP"),
		MinBalance: mustParseAmount(t, "0.00 EXP"),
		Type:       domain.CurrencyExpiry,
	})
	if err != nil {
		t.Fatalf("create expiry currency: %v", err)
	}
	return stats
}

func setExpiry(t *testing.T, h *harness) domain.ExpiryPolicy {
	t.Helper()
	policy, err := h.svc.SetExpiry(callerCtx("creator"), SetExpiryRequest{
		Currency:            domain.Symbol{Code: "EXP", Precision: 2},
		NaturalPeriodSecs:   86400,
		JuridicalPeriodSecs: 172800,
		Renovation:          mustParseAmount(t, "10.00 EXP"),
	})
	if err != nil {
		t.Fatalf("set expiry: %v", err)
	}
	return policy
}

func TestSetExpiryGrantsRenewals(t *testing.T) {
	h := newHarness(t)
	createExpiryCurrency(t, h)
	policy := setExpiry(t, h)

	if policy.NaturalPeriodSecs != 86400 || policy.JuridicalPeriodSecs != 172800 {
		t.Fatalf("unexpected policy %+v", policy)
	}
	stored, err := h.svc.Policy(context.Background(), "EXP")
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	if stored != policy {
		t.Fatalf("expected stored policy %+v, got %+v", policy, stored)
	}

	// Each natural member received the renovation amount; the juridical
	// member did not.
	for _, account := range []string{"creator", "membera"} {
		balance, err := h.svc.Balance(context.Background(), account, "EXP")
		if err != nil {
			t.Fatalf("balance %s: %v", account, err)
		}
		if got := balance.Balance.String(); got != "10.00 EXP" {
			t.Fatalf("expected %s to hold 10.00 EXP, got %s", account, got)
		}
	}
	if _, err := h.svc.Balance(context.Background(), "orgb", "EXP"); err == nil {
		t.Fatal("expected no grant for juridical member")
	}

	stats, _ := h.svc.CurrencyStats(context.Background(), "EXP")
	if got := stats.Supply.String(); got != "20.00 EXP" {
		t.Fatalf("expected supply 20.00 EXP, got %s", got)
	}
}

func TestSetExpiryRenewalMemoIncludesPeriod(t *testing.T) {
	h := newHarness(t)
	createExpiryCurrency(t, h)
	setExpiry(t, h)

	// The grant to membera is forwarded issuance, so its memo reaches the
	// issuer's notification; the memo must name the validity period.
	want := "Token renewal of 10.00 EXP, valid for 86400 seconds"
	found := false
	for _, n := range h.notes {
		if strings.Contains(n, want) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a notification containing %q, got %v", want, h.notes)
	}
}

func TestSetExpiryArmsReplacingTriggers(t *testing.T) {
	h := newHarness(t)
	createExpiryCurrency(t, h)
	setExpiry(t, h)

	if len(h.store.triggers) != 2 {
		t.Fatalf("expected one trigger per classification, got %d", len(h.store.triggers))
	}
	naturalID := domain.TriggerID(domain.Symbol{Code: "EXP", Precision: 2}, domain.UserNatural)
	trigger, ok := h.store.triggers[naturalID]
	if !ok {
		t.Fatal("expected deterministic natural trigger id")
	}
	if got := trigger.RunAt.Sub(testClock).Seconds(); got != 86400 {
		t.Fatalf("expected run at +86400s, got %v", got)
	}

	// Re-configuring replaces the pending triggers, never stacks them.
	setExpiry(t, h)
	if len(h.store.triggers) != 2 {
		t.Fatalf("expected replaced triggers, got %d", len(h.store.triggers))
	}
}

func TestSetExpiryRequiresIssuer(t *testing.T) {
	h := newHarness(t)
	createExpiryCurrency(t, h)
	_, err := h.svc.SetExpiry(callerCtx("mallory"), SetExpiryRequest{
		Currency:          domain.Symbol{Code: "EXP", Precision: 2},
		NaturalPeriodSecs: 86400,
		Renovation:        mustParseAmount(t, "10.00 EXP"),
	})
	wantCode(t, err, apperrors.CodeNotAuthorized)
}

func TestSetExpiryRejectsMCC(t *testing.T) {
	h := newHarness(t)
	createTestCurrency(t, h)
	_, err := h.svc.SetExpiry(callerCtx("creator"), SetExpiryRequest{
		Currency:          domain.Symbol{Code: "TEST", Precision: 2},
		NaturalPeriodSecs: 86400,
		Renovation:        mustParseAmount(t, "10.00 TEST"),
	})
	wantCode(t, err, apperrors.CodeUnsupportedType)
}

func TestSetExpiryAtomicOnGrantFailure(t *testing.T) {
	h := newHarness(t)
	createExpiryCurrency(t, h)
	// Renovation per natural member exceeds the cap across the batch.
	_, err := h.svc.SetExpiry(callerCtx("creator"), SetExpiryRequest{
		Currency:          domain.Symbol{Code: "EXP", Precision: 2},
		NaturalPeriodSecs: 86400,
		Renovation:        mustParseAmount(t, "600.00 EXP"),
	})
	wantCode(t, err, apperrors.CodeSupplyExceeded)

	// The policy upsert and any earlier grants rolled back with it.
	if _, err := h.svc.Policy(context.Background(), "EXP"); err == nil {
		t.Fatal("expected no policy after abort")
	}
	stats, _ := h.svc.CurrencyStats(context.Background(), "EXP")
	if stats.Supply.Units != 0 {
		t.Fatalf("expected zero supply after abort, got %s", stats.Supply)
	}
	if len(h.store.triggers) != 0 {
		t.Fatalf("expected no triggers after abort, got %d", len(h.store.triggers))
	}
}

func TestRetireSweepsClassification(t *testing.T) {
	h := newHarness(t)
	createExpiryCurrency(t, h)
	setExpiry(t, h)

	err := h.svc.Retire(privilegedCtx(), RetireRequest{
		Currency: domain.Symbol{Code: "EXP", Precision: 2},
		UserType: domain.UserNatural,
		Memo:     "Your EXP tokens expired",
	})
	if err != nil {
		t.Fatalf("retire: %v", err)
	}

	for _, account := range []string{"creator", "membera"} {
		balance, err := h.svc.Balance(context.Background(), account, "EXP")
		if err != nil {
			t.Fatalf("balance %s: %v", account, err)
		}
		if balance.Balance.Units != 0 {
			t.Fatalf("expected %s swept to zero, got %s", account, balance.Balance)
		}
		if !balance.LastActivity.Equal(testClock) {
			t.Fatalf("expected refreshed last activity, got %v", balance.LastActivity)
		}
	}
	stats, _ := h.svc.CurrencyStats(context.Background(), "EXP")
	if stats.Supply.Units != 0 {
		t.Fatalf("expected supply swept to zero, got %s", stats.Supply)
	}
}

func TestRetireIsIdempotent(t *testing.T) {
	h := newHarness(t)
	createExpiryCurrency(t, h)
	setExpiry(t, h)

	req := RetireRequest{
		Currency: domain.Symbol{Code: "EXP", Precision: 2},
		UserType: domain.UserNatural,
	}
	if err := h.svc.Retire(privilegedCtx(), req); err != nil {
		t.Fatalf("retire: %v", err)
	}
	if err := h.svc.Retire(privilegedCtx(), req); err != nil {
		t.Fatalf("second retire: %v", err)
	}
	stats, _ := h.svc.CurrencyStats(context.Background(), "EXP")
	if stats.Supply.Units != 0 {
		t.Fatalf("expected supply unchanged at zero, got %s", stats.Supply)
	}
}

func TestRetireIsInternalOnly(t *testing.T) {
	h := newHarness(t)
	createExpiryCurrency(t, h)
	err := h.svc.Retire(callerCtx("creator"), RetireRequest{
		Currency: domain.Symbol{Code: "EXP", Precision: 2},
		UserType: domain.UserNatural,
	})
	wantCode(t, err, apperrors.CodeNotAuthorized)
}

func TestRetireRejectsMCC(t *testing.T) {
	h := newHarness(t)
	createTestCurrency(t, h)
	err := h.svc.Retire(privilegedCtx(), RetireRequest{
		Currency: domain.Symbol{Code: "TEST", Precision: 2},
		UserType: domain.UserNatural,
	})
	wantCode(t, err, apperrors.CodeUnsupportedType)
}

func TestInitAccountPrivileged(t *testing.T) {
	h := newHarness(t)
	createTestCurrency(t, h)
	h.comm.addMember("TEST", "membera", domain.UserNatural)

	req := InitAccountRequest{
		Currency: domain.Symbol{Code: "TEST", Precision: 2},
		Account:  "membera",
		Inviter:  "creator",
	}
	if err := h.svc.InitAccount(privilegedCtx(), req); err != nil {
		t.Fatalf("init account: %v", err)
	}
	balance, err := h.svc.Balance(context.Background(), "membera", "TEST")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Balance.Units != 0 {
		t.Fatalf("expected zero balance, got %s", balance.Balance)
	}

	// Idempotent: a second initialization leaves the row alone.
	if err := h.svc.Transfer(callerCtx("creator"), TransferRequest{
		From: "creator", To: "membera", Quantity: mustParseAmount(t, "5.00 TEST"),
	}); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if err := h.svc.InitAccount(privilegedCtx(), req); err != nil {
		t.Fatalf("reinit account: %v", err)
	}
	balance, _ = h.svc.Balance(context.Background(), "membera", "TEST")
	if got := balance.Balance.String(); got != "5.00 TEST" {
		t.Fatalf("expected untouched 5.00 TEST, got %s", got)
	}
}

func TestInitAccountFromRegistryOrigin(t *testing.T) {
	h := newHarness(t)
	createTestCurrency(t, h)
	h.comm.addMember("TEST", "membera", domain.UserNatural)

	ctx := requestctx.WithOrigin(callerCtx("creator"), OriginCommunityRegistry)
	err := h.svc.InitAccount(ctx, InitAccountRequest{
		Currency: domain.Symbol{Code: "TEST", Precision: 2},
		Account:  "membera",
		Inviter:  "creator",
	})
	if err != nil {
		t.Fatalf("init account: %v", err)
	}

	// The inviter, not the account, must authenticate on the registry path.
	ctx = requestctx.WithOrigin(callerCtx("membera"), OriginCommunityRegistry)
	err = h.svc.InitAccount(ctx, InitAccountRequest{
		Currency: domain.Symbol{Code: "TEST", Precision: 2},
		Account:  "membera",
		Inviter:  "creator",
	})
	wantCode(t, err, apperrors.CodeNotAuthorized)
}

func TestInitAccountRequiresMembership(t *testing.T) {
	h := newHarness(t)
	createTestCurrency(t, h)
	err := h.svc.InitAccount(privilegedCtx(), InitAccountRequest{
		Currency: domain.Symbol{Code: "TEST", Precision: 2},
		Account:  "outsider",
		Inviter:  "creator",
	})
	wantCode(t, err, apperrors.CodeNotCommunityMember)
}
