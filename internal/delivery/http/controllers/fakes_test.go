package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	h "collegeevents/internal/delivery/http/helpers"
	"collegeevents/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var (
	clubCaller    = &domain.Identity{ID: "club_mlsc", Email: "mlsc@college.edu", Role: domain.RoleClub, ClubName: "MLSC"}
	studentCaller = &domain.Identity{ID: "student1", Email: "student1@college.edu", Role: domain.RoleStudent}
)

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	events []*domain.Event
	total  int
	err    error

	lastFilter domain.EventFilter
	lastPage   domain.PaginationParams
	lastActor  *domain.Identity
	lastFields domain.EventFields
	lastPatch  domain.EventPatch
	lastID     string
}

func (f *fakeEventService) ListClubs(ctx context.Context) []domain.Club {
	return []domain.Club{{Name: "MLSC", Category: domain.CategoryEducational}}
}

func (f *fakeEventService) ListEvents(ctx context.Context, filter domain.EventFilter, page domain.PaginationParams) ([]*domain.Event, int, error) {
	f.lastFilter, f.lastPage = filter, page
	return f.events, f.total, f.err
}

func (f *fakeEventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	f.lastID = eventID
	if f.err != nil {
		return nil, f.err
	}
	return f.events[0], nil
}

func (f *fakeEventService) CreateEvent(ctx context.Context, actor *domain.Identity, fields domain.EventFields) (*domain.Event, error) {
	f.lastActor, f.lastFields = actor, fields
	if f.err != nil {
		return nil, f.err
	}
	return domain.NewEvent("evt_new", fields), nil
}

func (f *fakeEventService) EditEvent(ctx context.Context, actor *domain.Identity, eventID string, patch domain.EventPatch) (*domain.Event, error) {
	f.lastActor, f.lastID, f.lastPatch = actor, eventID, patch
	if f.err != nil {
		return nil, f.err
	}
	return f.events[0], nil
}

func (f *fakeEventService) MarkCompleted(ctx context.Context, eventID string) (*domain.Event, error) {
	return f.CompleteEvent(ctx, nil, eventID)
}

func (f *fakeEventService) CompleteEvent(ctx context.Context, actor *domain.Identity, eventID string) (*domain.Event, error) {
	f.lastActor, f.lastID = actor, eventID
	if f.err != nil {
		return nil, f.err
	}
	e := *f.events[0]
	e.Completed = true
	return &e, nil
}

// fakeAttendeeService implements domain.AttendeeService for handler tests.
type fakeAttendeeService struct {
	reg     *domain.Registration
	payment *domain.PaymentResult
	list    []*domain.RegistrationWithEvent
	cert    *domain.Certificate
	err     error

	lastUserID  string
	lastEventID string
	lastUser    *domain.Identity
}

func (f *fakeAttendeeService) Register(ctx context.Context, userID, eventID string) (*domain.Registration, error) {
	reg, _, err := f.RegisterPaid(ctx, userID, eventID)
	return reg, err
}

func (f *fakeAttendeeService) RegisterPaid(ctx context.Context, userID, eventID string) (*domain.Registration, *domain.PaymentResult, error) {
	f.lastUserID, f.lastEventID = userID, eventID
	if f.err != nil {
		return nil, f.payment, f.err
	}
	return f.reg, f.payment, nil
}

func (f *fakeAttendeeService) ListMyRegistrations(ctx context.Context, userID string) ([]*domain.RegistrationWithEvent, error) {
	f.lastUserID = userID
	return f.list, f.err
}

func (f *fakeAttendeeService) Certificate(ctx context.Context, user *domain.Identity, registrationID string) (*domain.Certificate, error) {
	f.lastUser = user
	if f.err != nil {
		return nil, f.err
	}
	return f.cert, nil
}

// fakeSessionService implements domain.SessionService for handler tests.
type fakeSessionService struct {
	identity  *domain.Identity
	err       error
	loggedOut bool
}

func (f *fakeSessionService) Login(ctx context.Context, email, password string) (*domain.Identity, error) {
	return f.identity, f.err
}

func (f *fakeSessionService) Signup(ctx context.Context, name, email, password string) (*domain.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Identity{ID: "user_1", Email: email, Name: name, Role: domain.RoleStudent}, nil
}

func (f *fakeSessionService) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

func (f *fakeSessionService) Current() *domain.Identity { return f.identity }
func (f *fakeSessionService) Logout()                   { f.loggedOut = true }

// fakeIssuer implements domain.TokenIssuer.
type fakeIssuer struct {
	lastClaims domain.SessionClaims
}

func (f *fakeIssuer) Issue(claims domain.SessionClaims, expiry time.Duration) (string, error) {
	f.lastClaims = claims
	return "token-for-" + claims.AccountID, nil
}

// decodeEnvelope decodes the API envelope, with Data re-decoded into dst when dst is non-nil.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, dst any) *h.APIError {
	t.Helper()
	var raw struct {
		Data  json.RawMessage `json:"data"`
		Error *h.APIError     `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	if dst != nil && raw.Error == nil {
		require.NoError(t, json.Unmarshal(raw.Data, dst))
	}
	return raw.Error
}

func sampleEvent() *domain.Event {
	return domain.NewEvent("evt1", domain.EventFields{
		Title:     "Machine Learning Workshop",
		Category:  domain.CategoryEducational,
		Organizer: "MLSC",
		Date:      time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC),
		Seats:     50,
		Fee:       100,
	})
}
