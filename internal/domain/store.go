package domain

import "context"

// Store keys of the three persisted collections.
const (
	KeyAccounts      = "accounts"
	KeyEvents        = "events"
	KeyRegistrations = "registrations"
)

// KVStore persists JSON-encoded values under named keys.
// There is no partial update: Set replaces the whole value.
type KVStore interface {
	// Get decodes the value under key into dst. It returns false when the key is absent
	// and ErrCorruptState when the stored bytes are not valid JSON for dst.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	// SetMany writes every entry or none of them.
	SetMany(ctx context.Context, values map[string]any) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Collections is the typed view of the three persisted collections.
// Getters return snapshots; a change is persisted by writing the whole collection back.
type Collections interface {
	Clubs() []Club
	// Exclusive runs fn so that no other Exclusive call interleaves with it.
	Exclusive(fn func() error) error
	GetAccounts(ctx context.Context) ([]*Account, error)
	SetAccounts(ctx context.Context, accounts []*Account) error
	GetEvents(ctx context.Context) ([]*Event, error)
	SetEvents(ctx context.Context, events []*Event) error
	GetRegistrations(ctx context.Context) ([]*Registration, error)
	SetRegistrations(ctx context.Context, regs []*Registration) error
	SetEventsAndRegistrations(ctx context.Context, events []*Event, regs []*Registration) error
}
