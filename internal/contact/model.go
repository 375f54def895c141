package contact

import (
	"fmt"
	"time"
)

// Contact maps an owner's saved alias to a phone number, a settlement
// address, or both. At least one of Phone/Address must be set for the alias
// to be usable as a SEND target.
type Contact struct {
	OwnerPhone string
	Name       string
	Phone      string
	Address    string
	CreatedAt  time.Time
}

// SMSLine renders the contact as a single reply line.
func (c Contact) SMSLine() string {
	switch {
	case c.Phone != "":
		return fmt.Sprintf("%s: %s", c.Name, c.Phone)
	case c.Address != "":
		return fmt.Sprintf("%s: %s...%s", c.Name, c.Address[:6], c.Address[len(c.Address)-4:])
	default:
		return c.Name
	}
}
