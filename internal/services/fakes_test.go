package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"collegeevents/internal/domain"
	"collegeevents/internal/repository/collections"
	"collegeevents/internal/repository/kvstore"
)

var testNow = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeHasher implements domain.PasswordHasher without bcrypt.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hash-" + password, nil }
func (fakeHasher) Compare(hash, password string) error {
	if hash != "hash-"+password {
		return errors.New("mismatch")
	}
	return nil
}

// failingKV wraps a KVStore and fails writes once failWrites is set.
type failingKV struct {
	domain.KVStore
	failWrites bool
}

var errWrite = errors.New("disk full")

func (f *failingKV) Set(ctx context.Context, key string, value any) error {
	if f.failWrites {
		return errWrite
	}
	return f.KVStore.Set(ctx, key, value)
}

func (f *failingKV) SetMany(ctx context.Context, values map[string]any) error {
	if f.failWrites {
		return errWrite
	}
	return f.KVStore.SetMany(ctx, values)
}

// newSeededStore returns collections seeded with demo data over an in-memory KV store.
func newSeededStore(t *testing.T) (*collections.Store, *failingKV) {
	t.Helper()
	kv := &failingKV{KVStore: kvstore.NewMemoryStore()}
	store := collections.New(kv, fakeHasher{}, discardLogger(), collections.WithClock(func() time.Time { return testNow }))
	require.NoError(t, store.InitializeDemoData(context.Background()))
	return store, kv
}

// recordingNotifier implements domain.NotificationService and records every posted notice.
type recordingNotifier struct {
	mu      sync.Mutex
	notices []*domain.Notice
}

func (r *recordingNotifier) Notify(kind domain.NoticeKind, message string, ttl time.Duration) *domain.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := &domain.Notice{Kind: kind, Message: message}
	r.notices = append(r.notices, n)
	return n
}

func (r *recordingNotifier) Post(kind domain.NoticeKind, message string) *domain.Notice {
	return r.Notify(kind, message, domain.DefaultNoticeTTL)
}

func (r *recordingNotifier) List() []*domain.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.Notice(nil), r.notices...)
}

func (r *recordingNotifier) Dismiss(id string) bool { return false }
func (r *recordingNotifier) Clear()                 {}
func (r *recordingNotifier) Close()                 {}

func (r *recordingNotifier) last() *domain.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return nil
	}
	return r.notices[len(r.notices)-1]
}

// fakeEmailService records sent emails.
type fakeEmailService struct {
	welcome     []*domain.WelcomeEmailData
	certificate []*domain.CertificateReadyEmailData
	err         error
}

func (f *fakeEmailService) SendWelcome(ctx context.Context, data *domain.WelcomeEmailData) error {
	f.welcome = append(f.welcome, data)
	return f.err
}

func (f *fakeEmailService) SendCertificateReady(ctx context.Context, data *domain.CertificateReadyEmailData) error {
	f.certificate = append(f.certificate, data)
	return f.err
}

// fakePayments implements domain.PaymentProcessor with a fixed outcome.
type fakePayments struct {
	decline bool
	calls   []float64
}

func (f *fakePayments) Process(ctx context.Context, amount float64, meta map[string]string) domain.PaymentResult {
	f.calls = append(f.calls, amount)
	if f.decline {
		return domain.PaymentResult{Success: false, Message: "card declined"}
	}
	return domain.PaymentResult{Success: true, TransactionID: "tx_1"}
}

func clubIdentity(club string) *domain.Identity {
	return &domain.Identity{
		ID:       collections.ClubAccountID(club),
		Email:    collections.ClubEmail(club),
		Name:     club + " Admin",
		Role:     domain.RoleClub,
		ClubName: club,
	}
}

func studentIdentity() *domain.Identity {
	return &domain.Identity{
		ID:    collections.StudentID,
		Email: collections.StudentEmail,
		Name:  collections.StudentName,
		Role:  domain.RoleStudent,
	}
}

func findEvent(t *testing.T, store domain.Collections, id string) *domain.Event {
	t.Helper()
	events, err := store.GetEvents(context.Background())
	require.NoError(t, err)
	for _, e := range events {
		if e.ID == id {
			return e
		}
	}
	t.Fatalf("event %s not found", id)
	return nil
}

func setSeats(t *testing.T, store domain.Collections, id string, seats, available int) {
	t.Helper()
	ctx := context.Background()
	events, err := store.GetEvents(ctx)
	require.NoError(t, err)
	for _, e := range events {
		if e.ID == id {
			e.Seats = seats
			e.AvailableSeats = available
		}
	}
	require.NoError(t, store.SetEvents(ctx, events))
}

// addStudents stores a student account for each id.
func addStudents(t *testing.T, store domain.Collections, ids ...string) {
	t.Helper()
	ctx := context.Background()
	accounts, err := store.GetAccounts(ctx)
	require.NoError(t, err)
	for _, id := range ids {
		accounts = append(accounts, domain.NewAccount(id, id+"@college.edu", "hash-pw", id, domain.RoleStudent, ""))
	}
	require.NoError(t, store.SetAccounts(ctx, accounts))
}
