// Package collections is the typed data-access layer over the key-value store.
// It owns the stored representation of accounts, events and registrations,
// demo-data seeding and reset. Getters return snapshots; callers persist a
// change by writing the whole collection back.
package collections

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"collegeevents/internal/domain"
)

// Store exposes the three collections of the application.
type Store struct {
	kv     domain.KVStore
	hasher domain.PasswordHasher
	logger *slog.Logger
	clubs  []domain.Club
	now    func() time.Time

	// mu serializes read-modify-write sequences; see Exclusive.
	mu sync.Mutex
}

// Option customizes a Store.
type Option func(*Store)

// WithClubs replaces the configured club list used for seeding.
func WithClubs(clubs []domain.Club) Option {
	return func(s *Store) { s.clubs = clubs }
}

// WithClock replaces time.Now, for deterministic seeding in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns a Store over kv. The hasher is used for seeded account passwords.
func New(kv domain.KVStore, hasher domain.PasswordHasher, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		hasher: hasher,
		logger: logger,
		clubs:  DefaultClubs(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Clubs returns the configured clubs.
func (s *Store) Clubs() []domain.Club {
	out := make([]domain.Club, len(s.clubs))
	copy(out, s.clubs)
	return out
}

// Exclusive runs fn while holding the store lock, so a get-modify-set sequence
// cannot interleave with another one in this process.
func (s *Store) Exclusive(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

func (s *Store) GetAccounts(ctx context.Context) ([]*domain.Account, error) {
	return getCollection[*domain.Account](ctx, s.kv, domain.KeyAccounts)
}

func (s *Store) SetAccounts(ctx context.Context, accounts []*domain.Account) error {
	return setCollection(ctx, s.kv, domain.KeyAccounts, accounts)
}

func (s *Store) GetEvents(ctx context.Context) ([]*domain.Event, error) {
	return getCollection[*domain.Event](ctx, s.kv, domain.KeyEvents)
}

func (s *Store) SetEvents(ctx context.Context, events []*domain.Event) error {
	return setCollection(ctx, s.kv, domain.KeyEvents, events)
}

func (s *Store) GetRegistrations(ctx context.Context) ([]*domain.Registration, error) {
	return getCollection[*domain.Registration](ctx, s.kv, domain.KeyRegistrations)
}

func (s *Store) SetRegistrations(ctx context.Context, regs []*domain.Registration) error {
	return setCollection(ctx, s.kv, domain.KeyRegistrations, regs)
}

// SetEventsAndRegistrations replaces both collections in a single atomic write.
func (s *Store) SetEventsAndRegistrations(ctx context.Context, events []*domain.Event, regs []*domain.Registration) error {
	if events == nil {
		events = []*domain.Event{}
	}
	if regs == nil {
		regs = []*domain.Registration{}
	}
	err := s.kv.SetMany(ctx, map[string]any{
		domain.KeyEvents:        events,
		domain.KeyRegistrations: regs,
	})
	if err != nil {
		return fmt.Errorf("write events and registrations: %w", err)
	}
	return nil
}

func getCollection[T any](ctx context.Context, kv domain.KVStore, key string) ([]T, error) {
	var items []T
	if _, err := kv.Get(ctx, key, &items); err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func setCollection[T any](ctx context.Context, kv domain.KVStore, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	if err := kv.Set(ctx, key, items); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
