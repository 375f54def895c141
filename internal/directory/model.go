package directory

import "time"

// Account represents a registered wallet owner. The phone number is the only
// identity key; at most one account exists per phone.
type Account struct {
	Phone        string
	Address      string
	EncryptedKey string
	Alias        string
	PINHash      []byte
	CreatedAt    time.Time
}
