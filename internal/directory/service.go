package directory

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/textchain/sms-gateway/internal/keywallet"
)

// Service manages account lifecycle.
type Service struct {
	repo Repository
}

// NewService creates a new directory service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Join returns the existing account for phone, or creates one with a fresh
// custodial wallet. The second return reports whether the account was
// created by this call. Join is idempotent: a concurrent duplicate create is
// resolved by re-reading the winner.
func (s *Service) Join(ctx context.Context, phone string) (Account, bool, error) {
	account, err := s.repo.FindByPhone(ctx, phone)
	if err == nil {
		return account, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Account{}, false, err
	}

	w, err := keywallet.New()
	if err != nil {
		return Account{}, false, err
	}

	account = Account{
		Phone:        phone,
		Address:      w.Address,
		EncryptedKey: w.KeyHex(),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, account); err != nil {
		if errors.Is(err, ErrExists) {
			existing, findErr := s.repo.FindByPhone(ctx, phone)
			if findErr != nil {
				return Account{}, false, findErr
			}
			return existing, false, nil
		}
		return Account{}, false, err
	}

	return account, true, nil
}

// Find fetches the account for phone.
func (s *Service) Find(ctx context.Context, phone string) (Account, error) {
	return s.repo.FindByPhone(ctx, phone)
}

// SetPIN hashes and stores a new PIN. Format validation happens upstream.
func (s *Service) SetPIN(ctx context.Context, phone, pin string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePIN(ctx, phone, hash)
}

// SetAlias records a claimed alias against the account.
func (s *Service) SetAlias(ctx context.Context, phone, alias string) error {
	return s.repo.UpdateAlias(ctx, phone, alias)
}
