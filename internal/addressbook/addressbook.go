package addressbook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alextreichler/storefront/internal/apperr"
	"github.com/alextreichler/storefront/internal/models"
	"golang.org/x/sync/errgroup"
)

// Repository is the per-account address collection in the persistence layer.
type Repository interface {
	ListAddresses(ctx context.Context, accountID string) ([]models.Address, error)
	// CreateAddress assigns a.ID.
	CreateAddress(ctx context.Context, accountID string, a *models.Address) error
	// UpdateAddress returns apperr.ErrNotFound for an unknown id.
	UpdateAddress(ctx context.Context, accountID string, a *models.Address) error
	DeleteAddress(ctx context.Context, accountID, addressID string) error
	// SetAddressDefault returns apperr.ErrNotFound for an unknown id.
	SetAddressDefault(ctx context.Context, accountID, addressID string, isDefault bool) error
}

// Transactor is implemented by repositories that can run several writes
// atomically. Without it the default flag is cleared by concurrent,
// independent updates and a partial failure can leave zero or several
// defaults behind.
type Transactor interface {
	InTx(ctx context.Context, fn func(Repository) error) error
}

type Service struct {
	repo    Repository
	timeout time.Duration
	fanOut  int
}

type Option func(*Service)

// WithTimeout bounds every call into the repository.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithFanOut limits concurrent clear-default updates. n <= 0 means no limit.
func WithFanOut(n int) Option {
	return func(s *Service) { s.fanOut = n }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, fanOut: 8}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context, accountID string) ([]models.Address, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	addrs, err := s.repo.ListAddresses(ctx, accountID)
	if err != nil {
		return nil, apperr.Remote("list addresses", err)
	}
	return addrs, nil
}

func (s *Service) Create(ctx context.Context, accountID string, fields Fields) (*models.Address, error) {
	fields, err := fields.Validate()
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	addr := &models.Address{AccountID: accountID}
	fields.apply(addr)

	err = s.run(ctx, func(repo Repository, limit int) error {
		if fields.IsDefault {
			if err := clearDefaults(ctx, repo, accountID, "", limit, true); err != nil {
				return err
			}
		}
		return repo.CreateAddress(ctx, accountID, addr)
	})
	if err != nil {
		return nil, apperr.Remote("save address", err)
	}
	slog.Info("Address created", "account_id", accountID, "address_id", addr.ID, "default", addr.IsDefault)
	return addr, nil
}

func (s *Service) Update(ctx context.Context, accountID, addressID string, fields Fields) (*models.Address, error) {
	fields, err := fields.Validate()
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	addr := &models.Address{ID: addressID, AccountID: accountID}
	fields.apply(addr)

	err = s.run(ctx, func(repo Repository, limit int) error {
		if fields.IsDefault {
			if err := clearDefaults(ctx, repo, accountID, addressID, limit, true); err != nil {
				return err
			}
		}
		return repo.UpdateAddress(ctx, accountID, addr)
	})
	if err != nil {
		return nil, apperr.Remote("save address", err)
	}
	slog.Info("Address updated", "account_id", accountID, "address_id", addressID, "default", addr.IsDefault)
	return addr, nil
}

// Delete removes the address. Deleting the default leaves the account
// without one.
func (s *Service) Delete(ctx context.Context, accountID, addressID string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.repo.DeleteAddress(ctx, accountID, addressID); err != nil {
		return apperr.Remote("delete address", err)
	}
	slog.Info("Address deleted", "account_id", accountID, "address_id", addressID)
	return nil
}

// SetDefault clears the flag on every address of the account, then sets it on
// the target.
func (s *Service) SetDefault(ctx context.Context, accountID, addressID string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.run(ctx, func(repo Repository, limit int) error {
		addrs, err := repo.ListAddresses(ctx, accountID)
		if err != nil {
			return err
		}
		if _, ok := Find(addrs, addressID); !ok {
			return fmt.Errorf("address %s: %w", addressID, apperr.ErrNotFound)
		}
		if err := fanOutClear(ctx, repo, accountID, addrs, addressID, limit, false); err != nil {
			return err
		}
		return repo.SetAddressDefault(ctx, accountID, addressID, true)
	})
	if err != nil {
		return apperr.Remote("set default address", err)
	}
	slog.Info("Default address updated", "account_id", accountID, "address_id", addressID)
	return nil
}

func (s *Service) run(ctx context.Context, fn func(repo Repository, limit int) error) error {
	if tx, ok := s.repo.(Transactor); ok {
		// One connection inside a transaction; run the clears in sequence.
		return tx.InTx(ctx, func(repo Repository) error { return fn(repo, 1) })
	}
	return fn(s.repo, s.fanOut)
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func clearDefaults(ctx context.Context, repo Repository, accountID, skipID string, limit int, onlyDefaults bool) error {
	addrs, err := repo.ListAddresses(ctx, accountID)
	if err != nil {
		return err
	}
	return fanOutClear(ctx, repo, accountID, addrs, skipID, limit, onlyDefaults)
}

// fanOutClear dispatches one clear-default update per address. With
// onlyDefaults set, addresses that are not default are left alone.
func fanOutClear(ctx context.Context, repo Repository, accountID string, addrs []models.Address, skipID string, limit int, onlyDefaults bool) error {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, a := range addrs {
		if a.ID == skipID || (onlyDefaults && !a.IsDefault) {
			continue
		}
		id := a.ID
		g.Go(func() error {
			if err := repo.SetAddressDefault(gctx, accountID, id, false); err != nil {
				slog.Warn("Failed to clear default address", "account_id", accountID, "address_id", id, "error", err)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}
