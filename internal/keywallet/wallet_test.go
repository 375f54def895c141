package keywallet

import "testing"

func TestNewWallet(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatalf("new wallet: %v", err)
	}
	if len(w.Address) != 42 {
		t.Fatalf("expected 42-char address, got %q", w.Address)
	}
	if !IsAddress(w.Address) {
		t.Fatalf("generated address fails shape check: %s", w.Address)
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	w1, err := New()
	if err != nil {
		t.Fatalf("new wallet: %v", err)
	}

	w2, err := Restore(w1.KeyHex())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if w1.Address != w2.Address {
		t.Fatalf("restored address %s != %s", w2.Address, w1.Address)
	}
}

func TestIsAddress(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"0x4d054FB258A260982F0bFab9560340d33D9E698B", true},
		{"0x4d054FB258A260982F0bFab9560340d33D9E698", false},
		{"4d054FB258A260982F0bFab9560340d33D9E698B", false},
		{"+14155550100", false},
		{"alice.eth", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsAddress(tc.in); got != tc.want {
			t.Fatalf("IsAddress(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestAbbreviate(t *testing.T) {
	addr := "0x4d054FB258A260982F0bFab9560340d33D9E698B"
	got := Abbreviate(addr)
	if got != "0x4d05...698B" {
		t.Fatalf("unexpected abbreviation: %s", got)
	}
}

func TestChainFromInput(t *testing.T) {
	chain, ok := ChainFromInput("POLYGON")
	if !ok {
		t.Fatal("expected polygon to resolve")
	}
	if chain.ChainID != 137 || chain.NativeToken != "MATIC" {
		t.Fatalf("unexpected chain: %+v", chain)
	}

	if _, ok := ChainFromInput("dogechain"); ok {
		t.Fatal("expected unknown chain to fail")
	}

	base, ok := ChainFromInput(" base ")
	if !ok || base.ChainID != 8453 {
		t.Fatalf("expected base, got %+v ok=%v", base, ok)
	}
}
