package directory

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestJoinIdempotent(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	first, created, err := svc.Join(ctx, "+14155550100")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if !created {
		t.Fatal("expected first join to create the account")
	}
	if len(first.Address) != 42 {
		t.Fatalf("unexpected address: %q", first.Address)
	}

	second, created, err := svc.Join(ctx, "+14155550100")
	if err != nil {
		t.Fatalf("second join: %v", err)
	}
	if created {
		t.Fatal("expected second join to reuse the account")
	}
	if second.Address != first.Address {
		t.Fatalf("join not idempotent: %s != %s", second.Address, first.Address)
	}
}

func TestSetPIN(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	if _, _, err := svc.Join(ctx, "+14155550100"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := svc.SetPIN(ctx, "+14155550100", "1234"); err != nil {
		t.Fatalf("set pin: %v", err)
	}

	account, err := svc.Find(ctx, "+14155550100")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword(account.PINHash, []byte("1234")); err != nil {
		t.Fatalf("stored hash does not match pin: %v", err)
	}
}

func TestSetAliasUnknownAccount(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	if err := svc.SetAlias(context.Background(), "+10000000000", "alice"); err == nil {
		t.Fatal("expected error for unknown account")
	}
}
