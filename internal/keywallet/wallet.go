package keywallet

import (
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Wallet is a freshly generated custodial signing key and its address.
// The key is handed to the account directory for encrypted storage and is
// never used to sign inside the gateway.
type Wallet struct {
	Address    string
	privateKey []byte
}

// New generates a random secp256k1 key pair.
func New() (Wallet, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return Wallet{}, fmt.Errorf("generate key: %w", err)
	}

	return Wallet{
		Address:    crypto.PubkeyToAddress(key.PublicKey).Hex(),
		privateKey: crypto.FromECDSA(key),
	}, nil
}

// Restore rebuilds a wallet from stored key material.
func Restore(keyHex string) (Wallet, error) {
	raw, err := hex.DecodeString(keyHex)
	if err != nil {
		return Wallet{}, fmt.Errorf("decode key: %w", err)
	}
	key, err := crypto.ToECDSA(raw)
	if err != nil {
		return Wallet{}, fmt.Errorf("parse key: %w", err)
	}
	return Wallet{
		Address:    crypto.PubkeyToAddress(key.PublicKey).Hex(),
		privateKey: raw,
	}, nil
}

// KeyHex returns the private key as hex without a 0x prefix, the storage
// representation the account directory expects.
func (w Wallet) KeyHex() string {
	return hex.EncodeToString(w.privateKey)
}

// IsAddress reports whether s has the canonical settlement address shape
// (0x prefix plus 40 hex characters).
func IsAddress(s string) bool {
	return common.IsHexAddress(s) && len(s) == 42 && (s[0:2] == "0x" || s[0:2] == "0X")
}

// Abbreviate shortens an address for a 160-character reply: 0x1234...abcd.
func Abbreviate(address string) string {
	if len(address) < 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
