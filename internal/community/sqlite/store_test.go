package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/communis/ledger/internal/community"
	"github.com/communis/ledger/internal/ledger/domain"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "community.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	return store
}

func TestLookupCommunity(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if _, err := store.Lookup(ctx, "TEST"); !errors.Is(err, community.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	err := store.PutCommunity(ctx, community.Community{Symbol: "TEST", Creator: "creator"})
	if err != nil {
		t.Fatalf("put community: %v", err)
	}

	record, err := store.Lookup(ctx, "TEST")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if record.Creator != "creator" {
		t.Fatalf("unexpected creator %q", record.Creator)
	}
	if record.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}
}

func TestPutCommunityAdmitsCreator(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	err := store.PutCommunity(ctx, community.Community{Symbol: "TEST", Creator: "creator"})
	if err != nil {
		t.Fatalf("put community: %v", err)
	}

	known, err := store.KnownAccount(ctx, "creator")
	if err != nil {
		t.Fatalf("known account: %v", err)
	}
	if !known {
		t.Fatal("expected creator to resolve")
	}

	membership, err := store.Member(ctx, "TEST", "creator")
	if err != nil {
		t.Fatalf("member: %v", err)
	}
	if membership.UserType != domain.UserNatural {
		t.Fatalf("unexpected user type %q", membership.UserType)
	}
}

func TestLinkIsIdempotent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.PutCommunity(ctx, community.Community{Symbol: "TEST", Creator: "creator"}); err != nil {
		t.Fatalf("put community: %v", err)
	}
	if err := store.Link(ctx, "TEST", "alice", "creator", domain.UserNatural); err != nil {
		t.Fatalf("link: %v", err)
	}
	// Re-linking keeps the original record.
	if err := store.Link(ctx, "TEST", "alice", "someone-else", domain.UserJuridical); err != nil {
		t.Fatalf("relink: %v", err)
	}

	membership, err := store.Member(ctx, "TEST", "alice")
	if err != nil {
		t.Fatalf("member: %v", err)
	}
	if membership.Inviter != "creator" || membership.UserType != domain.UserNatural {
		t.Fatalf("expected original membership, got %+v", membership)
	}
}

func TestLinkRequiresCommunity(t *testing.T) {
	store := openStore(t)
	err := store.Link(context.Background(), "NOPE", "alice", "creator", domain.UserNatural)
	if !errors.Is(err, community.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBySymbolOrdered(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.PutCommunity(ctx, community.Community{Symbol: "TEST", Creator: "creator"}); err != nil {
		t.Fatalf("put community: %v", err)
	}
	for _, member := range []community.Membership{
		{Symbol: "TEST", Account: "carol", UserType: domain.UserJuridical, Inviter: "creator"},
		{Symbol: "TEST", Account: "alice", UserType: domain.UserNatural, Inviter: "creator"},
		{Symbol: "OTHER", Account: "mallory", UserType: domain.UserNatural, Inviter: "creator"},
	} {
		if err := store.PutMember(ctx, member); err != nil {
			t.Fatalf("put member: %v", err)
		}
	}

	memberships, err := store.BySymbol(ctx, "TEST")
	if err != nil {
		t.Fatalf("by symbol: %v", err)
	}
	accounts := make([]string, 0, len(memberships))
	for _, membership := range memberships {
		accounts = append(accounts, membership.Account)
	}
	want := []string{"alice", "carol", "creator"}
	if len(accounts) != len(want) {
		t.Fatalf("expected %v, got %v", want, accounts)
	}
	for i := range want {
		if accounts[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, accounts)
		}
	}
}

func TestPutMemberRejectsBadUserType(t *testing.T) {
	store := openStore(t)
	err := store.PutMember(context.Background(), community.Membership{
		Symbol:   "TEST",
		Account:  "alice",
		UserType: "martian",
		Inviter:  "creator",
		JoinedAt: time.Now(),
	})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestKnownAccountMissing(t *testing.T) {
	store := openStore(t)
	known, err := store.KnownAccount(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("known account: %v", err)
	}
	if known {
		t.Fatal("expected unknown account")
	}
}
