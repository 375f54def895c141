// Package resolve turns free-text SEND recipients into settlement addresses.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/textchain/sms-gateway/internal/contact"
	"github.com/textchain/sms-gateway/internal/directory"
	"github.com/textchain/sms-gateway/internal/keywallet"
)

// FailureKind classifies why a recipient could not be resolved.
type FailureKind int

const (
	// NotFound means the recipient is well-formed but unknown.
	NotFound FailureKind = iota
	// BadFormat means the recipient matches no accepted shape or name.
	BadFormat
	// Unavailable means a required lookup collaborator was unreachable.
	Unavailable
)

// Failure is the typed resolution error. Reply is the exact text to send
// back to the user.
type Failure struct {
	Kind  FailureKind
	Reply string
}

func (f *Failure) Error() string {
	return f.Reply
}

// Directory is the account lookup needed for phone-number recipients.
type Directory interface {
	FindByPhone(ctx context.Context, phone string) (directory.Account, error)
}

// ContactBook is the saved-alias lookup.
type ContactBook interface {
	FindByName(ctx context.Context, ownerPhone, name string) ([]contact.Contact, error)
}

// NameService resolves dotted names to settlement addresses.
type NameService interface {
	ResolveName(ctx context.Context, name string) (string, error)
}

// Saved contact aliases are restricted to a tight charset so that arbitrary
// garbage fails fast without any lookups.
var aliasPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}$`)

// Resolver determines the settlement address for a free-text recipient.
type Resolver struct {
	directory Directory
	contacts  ContactBook
	names     NameService
}

// New builds a resolver. Any collaborator may be nil; the corresponding
// strategy then fails as unavailable instead of panicking.
func New(dir Directory, contacts ContactBook, names NameService) *Resolver {
	return &Resolver{directory: dir, contacts: contacts, names: names}
}

// Resolve tries, in priority order: literal address, phone number, dotted
// name, saved contact alias. The ordering is a correctness invariant — a
// literal address is never looked up as a phone or alias even if a contact
// shares the text.
func (r *Resolver) Resolve(ctx context.Context, principal, recipient string) (string, *Failure) {
	recipient = strings.TrimSpace(recipient)

	switch {
	case keywallet.IsAddress(recipient):
		return recipient, nil
	case strings.HasPrefix(recipient, "+"):
		return r.resolvePhone(ctx, recipient)
	case strings.Contains(recipient, "."):
		return r.resolveName(ctx, recipient)
	case aliasPattern.MatchString(recipient):
		return r.resolveContact(ctx, principal, recipient)
	default:
		return "", &Failure{
			Kind:  BadFormat,
			Reply: "Invalid recipient.\nUse phone (+1...), address (0x...), name or saved contact",
		}
	}
}

func (r *Resolver) resolvePhone(ctx context.Context, phone string) (string, *Failure) {
	if r.directory == nil {
		return "", &Failure{Kind: Unavailable, Reply: "DB offline. Try later."}
	}

	account, err := r.directory.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return "", &Failure{
				Kind:  NotFound,
				Reply: fmt.Sprintf("%s hasn't joined yet.\nAsk them to text JOIN", phone),
			}
		}
		return "", &Failure{Kind: Unavailable, Reply: "Error looking up recipient."}
	}
	return account.Address, nil
}

func (r *Resolver) resolveName(ctx context.Context, name string) (string, *Failure) {
	if r.names == nil {
		return "", &Failure{Kind: Unavailable, Reply: "Name service offline. Try later."}
	}

	address, err := r.names.ResolveName(ctx, name)
	if err != nil {
		return "", &Failure{Kind: Unavailable, Reply: "Name service offline. Try later."}
	}
	if address == "" {
		return "", &Failure{
			Kind:  BadFormat,
			Reply: fmt.Sprintf("Could not find %s.\nCheck the name and try again.", name),
		}
	}
	return address, nil
}

func (r *Resolver) resolveContact(ctx context.Context, principal, name string) (string, *Failure) {
	if r.contacts == nil {
		return "", &Failure{Kind: Unavailable, Reply: "Address book offline."}
	}

	matches, err := r.contacts.FindByName(ctx, principal, name)
	if err != nil {
		return "", &Failure{Kind: Unavailable, Reply: "Error loading contacts."}
	}
	if len(matches) == 0 {
		return "", &Failure{
			Kind:  NotFound,
			Reply: fmt.Sprintf("No contact named %s.\nReply CONTACTS to list.", name),
		}
	}

	c := matches[0]
	switch {
	case c.Address != "":
		return c.Address, nil
	case c.Phone != "":
		return r.resolvePhone(ctx, c.Phone)
	default:
		return "", &Failure{
			Kind:  NotFound,
			Reply: fmt.Sprintf("Contact %s has no phone or address.", name),
		}
	}
}
