package resolve

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/textchain/sms-gateway/internal/contact"
	"github.com/textchain/sms-gateway/internal/directory"
)

const (
	aliceAddr = "0x4d054FB258A260982F0bFab9560340d33D9E698B"
	bobAddr   = "0x3094e5820F911f9119D201B9E2DdD4b9cf792990"
)

type stubNames struct {
	addresses map[string]string
	err       error
}

func (s *stubNames) ResolveName(_ context.Context, name string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.addresses[name], nil
}

func seedResolver(t *testing.T) (*Resolver, directory.Repository, contact.Repository) {
	t.Helper()
	users := directory.NewMemoryRepository()
	contacts := contact.NewMemoryRepository()
	names := &stubNames{addresses: map[string]string{"alice.eth": aliceAddr}}

	if err := users.Create(context.Background(), directory.Account{
		Phone:     "+14155550111",
		Address:   bobAddr,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	return New(users, contacts, names), users, contacts
}

func TestResolveLiteralAddress(t *testing.T) {
	r, _, contacts := seedResolver(t)

	// A contact sharing the address text must not shadow the literal form.
	_ = contacts.Add(context.Background(), contact.Contact{
		OwnerPhone: "+14155550100",
		Name:       aliceAddr,
		Phone:      "+19999999999",
	})

	got, fail := r.Resolve(context.Background(), "+14155550100", aliceAddr)
	if fail != nil {
		t.Fatalf("resolve: %v", fail)
	}
	if got != aliceAddr {
		t.Fatalf("expected literal address back, got %s", got)
	}
}

func TestResolvePhone(t *testing.T) {
	r, _, _ := seedResolver(t)

	got, fail := r.Resolve(context.Background(), "+14155550100", "+14155550111")
	if fail != nil {
		t.Fatalf("resolve: %v", fail)
	}
	if got != bobAddr {
		t.Fatalf("expected %s, got %s", bobAddr, got)
	}
}

func TestResolvePhoneNotJoined(t *testing.T) {
	r, _, _ := seedResolver(t)

	_, fail := r.Resolve(context.Background(), "+14155550100", "+17035550199")
	if fail == nil {
		t.Fatal("expected failure")
	}
	if fail.Kind != NotFound {
		t.Fatalf("expected NotFound, got %d", fail.Kind)
	}
	if fail.Reply != "+17035550199 hasn't joined yet.\nAsk them to text JOIN" {
		t.Fatalf("unexpected reply: %q", fail.Reply)
	}
}

func TestResolveDottedName(t *testing.T) {
	r, _, _ := seedResolver(t)

	got, fail := r.Resolve(context.Background(), "+14155550100", "alice.eth")
	if fail != nil {
		t.Fatalf("resolve: %v", fail)
	}
	if got != aliceAddr {
		t.Fatalf("expected %s, got %s", aliceAddr, got)
	}
}

func TestResolveDottedNameUnregistered(t *testing.T) {
	r, _, _ := seedResolver(t)

	_, fail := r.Resolve(context.Background(), "+14155550100", "nobody.eth")
	if fail == nil || fail.Kind != BadFormat {
		t.Fatalf("expected BadFormat failure, got %+v", fail)
	}
}

func TestResolveNameServiceDown(t *testing.T) {
	users := directory.NewMemoryRepository()
	r := New(users, contact.NewMemoryRepository(), &stubNames{err: errors.New("connect refused")})

	_, fail := r.Resolve(context.Background(), "+14155550100", "alice.eth")
	if fail == nil || fail.Kind != Unavailable {
		t.Fatalf("expected Unavailable failure, got %+v", fail)
	}
}

func TestResolveContactWithAddress(t *testing.T) {
	r, _, contacts := seedResolver(t)
	_ = contacts.Add(context.Background(), contact.Contact{
		OwnerPhone: "+14155550100",
		Name:       "mom",
		Address:    aliceAddr,
	})

	got, fail := r.Resolve(context.Background(), "+14155550100", "mom")
	if fail != nil {
		t.Fatalf("resolve: %v", fail)
	}
	if got != aliceAddr {
		t.Fatalf("expected %s, got %s", aliceAddr, got)
	}
}

func TestResolveContactFallsThroughToPhone(t *testing.T) {
	r, _, contacts := seedResolver(t)
	_ = contacts.Add(context.Background(), contact.Contact{
		OwnerPhone: "+14155550100",
		Name:       "bob",
		Phone:      "+14155550111",
	})

	got, fail := r.Resolve(context.Background(), "+14155550100", "bob")
	if fail != nil {
		t.Fatalf("resolve: %v", fail)
	}
	if got != bobAddr {
		t.Fatalf("expected %s, got %s", bobAddr, got)
	}
}

func TestResolveContactEmpty(t *testing.T) {
	r, _, contacts := seedResolver(t)
	_ = contacts.Add(context.Background(), contact.Contact{
		OwnerPhone: "+14155550100",
		Name:       "ghost",
	})

	_, fail := r.Resolve(context.Background(), "+14155550100", "ghost")
	if fail == nil || fail.Kind != NotFound {
		t.Fatalf("expected NotFound failure, got %+v", fail)
	}
}

type wrappingDirectory struct{}

func (wrappingDirectory) FindByPhone(context.Context, string) (directory.Account, error) {
	return directory.Account{}, fmt.Errorf("query accounts: %w", directory.ErrNotFound)
}

func TestResolvePhoneWrappedNotFound(t *testing.T) {
	// A repository may wrap the sentinel; the unjoined reply must survive.
	r := New(wrappingDirectory{}, contact.NewMemoryRepository(), &stubNames{})

	_, fail := r.Resolve(context.Background(), "+14155550100", "+14155550123")
	if fail == nil || fail.Kind != NotFound {
		t.Fatalf("expected NotFound failure, got %+v", fail)
	}
	if fail.Reply != "+14155550123 hasn't joined yet.\nAsk them to text JOIN" {
		t.Fatalf("unexpected reply: %q", fail.Reply)
	}
}

func TestResolveGarbageIsImmediateFormatFailure(t *testing.T) {
	// Charset violations fail before any lookup; a nil name service must not
	// be touched.
	r := New(nil, nil, nil)

	_, fail := r.Resolve(context.Background(), "+14155550100", "!!! ###")
	if fail == nil || fail.Kind != BadFormat {
		t.Fatalf("expected BadFormat failure, got %+v", fail)
	}
}
