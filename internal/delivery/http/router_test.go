package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collegeevents/internal/adapters/auth"
	"collegeevents/internal/adapters/payment"
	"collegeevents/internal/delivery/http/controllers"
	"collegeevents/internal/repository/collections"
	"collegeevents/internal/repository/kvstore"
	"collegeevents/internal/services"
)

type testServer struct {
	*httptest.Server
	t *testing.T
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hasher := auth.NewBcryptHasher(4)
	store := collections.New(kvstore.NewMemoryStore(), hasher, logger)
	require.NoError(t, store.InitializeDemoData(context.Background()))

	notifier := services.NewNotificationService(time.Minute, time.Minute)
	t.Cleanup(notifier.Close)
	sessions := services.NewSessionService(store, hasher, nil, logger)
	events := services.NewEventService(store, logger, services.EventServiceConfig{Notifier: notifier})
	attendees := services.NewAttendeeService(store, payment.NewMockProcessor(0, logger), notifier, logger)

	const secret = "router-test-secret"
	handler := NewRouter(RouterConfig{
		Logger:         logger,
		Verifier:       auth.NewJWTVerifier(secret),
		AllowedOrigins: []string{"*"},
		Auth:           controllers.NewAuthController(logger, sessions, auth.NewJWTIssuer(secret), time.Hour),
		Events:         controllers.NewEventController(logger, events),
		Attendees:      controllers.NewAttendeeController(logger, attendees, sessions),
		Notifications:  controllers.NewNotificationController(notifier),
		Admin:          controllers.NewAdminController(logger, store, notifier),
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, t: t}
}

// do sends a JSON request and decodes the envelope data into out when out is non-nil.
func (s *testServer) do(method, path, token string, body any, out any) int {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(s.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.Client().Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		require.NoError(s.t, json.NewDecoder(resp.Body).Decode(&envelope))
		require.NoError(s.t, json.Unmarshal(envelope.Data, out))
	}
	return resp.StatusCode
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	var session controllers.AuthResponse
	status := s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password}, &session)
	require.Equal(s.t, http.StatusOK, status)
	return session.Token
}

func TestRouter_RegistrationLifecycle(t *testing.T) {
	srv := newTestServer(t)

	clubToken := srv.login("ieee@college.edu", collections.ClubPassword)
	studentToken := srv.login(collections.StudentEmail, collections.StudentPassword)

	// Student registers for the free IEEE talk.
	var registered controllers.RegisterResponse
	status := srv.do(http.MethodPost, "/events/evt2/registrations", studentToken, nil, &registered)
	require.Equal(t, http.StatusCreated, status)
	assert.Nil(t, registered.Payment)

	var event controllers.EventResponse
	require.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/events/evt2", "", nil, &event))
	assert.Equal(t, 99, event.AvailableSeats)

	// Second registration conflicts.
	assert.Equal(t, http.StatusConflict, srv.do(http.MethodPost, "/events/evt2/registrations", studentToken, nil, nil))

	// Certificate is not available before completion.
	certPath := "/me/registrations/" + registered.Registration.ID + "/certificate"
	assert.Equal(t, http.StatusConflict, srv.do(http.MethodGet, certPath, studentToken, nil, nil))

	// Students and other clubs cannot complete the event.
	assert.Equal(t, http.StatusForbidden, srv.do(http.MethodPost, "/events/evt2/complete", studentToken, nil, nil))
	require.Equal(t, http.StatusOK, srv.do(http.MethodPost, "/events/evt2/complete", clubToken, nil, &event))
	assert.True(t, event.Completed)

	var cert struct {
		RecipientName string `json:"recipientName"`
		FileName      string `json:"fileName"`
	}
	require.Equal(t, http.StatusOK, srv.do(http.MethodGet, certPath, studentToken, nil, &cert))
	assert.Equal(t, collections.StudentName, cert.RecipientName)
	assert.Equal(t, "certificate-IEEE-Tech-Talk:-IoT.png", cert.FileName)

	var notices []struct {
		Message string `json:"message"`
	}
	require.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/notifications", studentToken, nil, &notices))
	require.NotEmpty(t, notices)
	assert.Equal(t, `Event "IEEE Tech Talk: IoT" marked as completed`, notices[0].Message)
}

func TestRouter_NotificationsRequireSession(t *testing.T) {
	srv := newTestServer(t)
	studentToken := srv.login(collections.StudentEmail, collections.StudentPassword)
	require.Equal(t, http.StatusCreated, srv.do(http.MethodPost, "/events/evt2/registrations", studentToken, nil, nil))

	assert.Equal(t, http.StatusUnauthorized, srv.do(http.MethodGet, "/notifications", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, srv.do(http.MethodDelete, "/notifications", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, srv.do(http.MethodDelete, "/notifications/n_1_abcde", "", nil, nil))

	var notices []struct {
		Message string `json:"message"`
	}
	require.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/notifications", studentToken, nil, &notices))
	assert.NotEmpty(t, notices, "anonymous clear must not flush the feed")
}

func TestRouter_RegisterAfterResetRejectsRemovedAccount(t *testing.T) {
	srv := newTestServer(t)
	clubToken := srv.login("mlsc@college.edu", collections.ClubPassword)

	var session controllers.AuthResponse
	require.Equal(t, http.StatusCreated, srv.do(http.MethodPost, "/auth/signup", "",
		map[string]string{"name": "Asha", "email": "asha@college.edu", "password": "secret"}, &session))
	require.Equal(t, http.StatusNoContent, srv.do(http.MethodPost, "/admin/reset", clubToken, nil, nil))

	assert.Equal(t, http.StatusNotFound, srv.do(http.MethodPost, "/events/evt2/registrations", session.Token, nil, nil))
	var event controllers.EventResponse
	require.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/events/evt2", "", nil, &event))
	assert.Equal(t, 100, event.AvailableSeats)
}

func TestRouter_PaidRegistration(t *testing.T) {
	srv := newTestServer(t)
	studentToken := srv.login(collections.StudentEmail, collections.StudentPassword)

	var registered controllers.RegisterResponse
	require.Equal(t, http.StatusCreated, srv.do(http.MethodPost, "/events/evt1/registrations", studentToken, nil, &registered))
	require.NotNil(t, registered.Payment)
	assert.True(t, registered.Payment.Success)
	assert.Contains(t, registered.Payment.TransactionID, "tx_")
}

func TestRouter_ClubManagement(t *testing.T) {
	srv := newTestServer(t)
	clubToken := srv.login("mlsc@college.edu", collections.ClubPassword)
	studentToken := srv.login(collections.StudentEmail, collections.StudentPassword)

	body := map[string]any{
		"title":       "Deep Learning Bootcamp",
		"category":    "educational",
		"date":        "2026-11-20T10:00:00Z",
		"description": "Two days of labs.",
		"seats":       40,
		"fee":         0,
	}
	assert.Equal(t, http.StatusForbidden, srv.do(http.MethodPost, "/events", studentToken, body, nil))
	assert.Equal(t, http.StatusUnauthorized, srv.do(http.MethodPost, "/events", "", body, nil))

	var created controllers.EventResponse
	require.Equal(t, http.StatusCreated, srv.do(http.MethodPost, "/events", clubToken, body, &created))
	assert.Equal(t, "MLSC", created.Organizer)

	var edited controllers.EventResponse
	require.Equal(t, http.StatusOK, srv.do(http.MethodPatch, "/events/"+created.ID, clubToken, map[string]any{"seats": 10}, &edited))
	assert.Equal(t, 10, edited.Seats)
	assert.Equal(t, 10, edited.AvailableSeats)

	otherClub := srv.login("acm@college.edu", collections.ClubPassword)
	assert.Equal(t, http.StatusForbidden, srv.do(http.MethodPatch, "/events/"+created.ID, otherClub, map[string]any{"seats": 1}, nil))
	assert.Equal(t, http.StatusNotFound, srv.do(http.MethodPatch, "/events/evt_missing", clubToken, map[string]any{"seats": 1}, nil))

	var list controllers.ListEventsResponse
	require.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/events?club=MLSC", "", nil, &list))
	assert.Equal(t, 2, list.Pagination.Total)

	// Reset removes the new event.
	assert.Equal(t, http.StatusForbidden, srv.do(http.MethodPost, "/admin/reset", studentToken, nil, nil))
	require.Equal(t, http.StatusNoContent, srv.do(http.MethodPost, "/admin/reset", clubToken, nil, nil))
	require.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/events", "", nil, &list))
	assert.Equal(t, 4, list.Pagination.Total)
}

func TestRouter_SignupAndMe(t *testing.T) {
	srv := newTestServer(t)

	var session controllers.AuthResponse
	status := srv.do(http.MethodPost, "/auth/signup", "", map[string]string{
		"name": "Asha", "email": "asha@college.edu", "password": "pw",
	}, &session)
	require.Equal(t, http.StatusCreated, status)

	var me struct {
		Name string `json:"name"`
		Role string `json:"role"`
	}
	require.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/auth/me", session.Token, nil, &me))
	assert.Equal(t, "Asha", me.Name)
	assert.Equal(t, "student", me.Role)

	assert.Equal(t, http.StatusConflict, srv.do(http.MethodPost, "/auth/signup", "", map[string]string{
		"name": "A", "email": collections.StudentEmail, "password": "x",
	}, nil))
	assert.Equal(t, http.StatusUnauthorized, srv.do(http.MethodPost, "/auth/login", "", map[string]string{
		"email": collections.StudentEmail, "password": "wrong",
	}, nil))
	assert.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/health", "", nil, nil))
}
