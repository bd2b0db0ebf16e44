package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"collegeevents/internal/domain"
	"collegeevents/internal/repository/collections"
	"collegeevents/internal/repository/kvstore"
)

func TestAttendeeService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("takes a seat and stores the registration", func(t *testing.T) {
		store, _ := newSeededStore(t)
		notifier := &recordingNotifier{}
		svc := NewAttendeeService(store, &fakePayments{}, notifier, discardLogger())

		reg, err := svc.Register(ctx, collections.StudentID, "evt1")
		require.NoError(t, err)
		assert.Equal(t, collections.StudentID, reg.UserID)
		assert.Equal(t, "evt1", reg.EventID)
		assert.False(t, reg.CertificateGenerated)
		assert.Equal(t, 49, findEvent(t, store, "evt1").AvailableSeats)

		regs, err := store.GetRegistrations(ctx)
		require.NoError(t, err)
		require.Len(t, regs, 1)
		assert.Equal(t, reg.ID, regs[0].ID)
		assert.Equal(t, domain.NoticeSuccess, notifier.last().Kind)
	})

	t.Run("last seat goes to the first caller", func(t *testing.T) {
		store, _ := newSeededStore(t)
		setSeats(t, store, "evt2", 100, 1)
		addStudents(t, store, "u1", "u2")
		svc := NewAttendeeService(store, &fakePayments{}, nil, discardLogger())

		_, err := svc.Register(ctx, "u1", "evt2")
		require.NoError(t, err)
		event := findEvent(t, store, "evt2")
		assert.Equal(t, 0, event.AvailableSeats)
		assert.Equal(t, domain.EventStatusFull, event.Status())

		_, err = svc.Register(ctx, "u2", "evt2")
		require.ErrorIs(t, err, domain.ErrSeatsExhausted)
		assert.Equal(t, 0, findEvent(t, store, "evt2").AvailableSeats)
		regs, err := store.GetRegistrations(ctx)
		require.NoError(t, err)
		assert.Len(t, regs, 1)
	})

	tests := []struct {
		name    string
		prepare func(t *testing.T, store domain.Collections, svc domain.AttendeeService)
		eventID string
		errIs   error
		notice  string
	}{
		{name: "unknown event", eventID: "evt9", errIs: domain.ErrNotFound, notice: "Event not found"},
		{
			name: "already registered",
			prepare: func(t *testing.T, store domain.Collections, svc domain.AttendeeService) {
				_, err := svc.Register(context.Background(), collections.StudentID, "evt1")
				require.NoError(t, err)
			},
			eventID: "evt1",
			errIs:   domain.ErrAlreadyRegistered,
			notice:  "You are already registered for this event",
		},
		{
			name: "completed event",
			prepare: func(t *testing.T, store domain.Collections, svc domain.AttendeeService) {
				events, err := store.GetEvents(context.Background())
				require.NoError(t, err)
				events[0].Completed = true
				require.NoError(t, store.SetEvents(context.Background(), events))
			},
			eventID: "evt1",
			errIs:   domain.ErrEventCompleted,
			notice:  "This event has already been completed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newSeededStore(t)
			notifier := &recordingNotifier{}
			svc := NewAttendeeService(store, &fakePayments{}, notifier, discardLogger())
			if tt.prepare != nil {
				tt.prepare(t, store, svc)
			}
			_, err := svc.Register(ctx, collections.StudentID, tt.eventID)
			require.ErrorIs(t, err, tt.errIs)
			require.NotNil(t, notifier.last())
			assert.Equal(t, domain.NoticeError, notifier.last().Kind)
			assert.Equal(t, tt.notice, notifier.last().Message)
		})
	}

	t.Run("removed account cannot take a seat", func(t *testing.T) {
		store, _ := newSeededStore(t)
		notifier := &recordingNotifier{}
		svc := NewAttendeeService(store, &fakePayments{}, notifier, discardLogger())

		_, err := svc.Register(ctx, "user_deleted", "evt1")
		require.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, 50, findEvent(t, store, "evt1").AvailableSeats)
		regs, err := store.GetRegistrations(ctx)
		require.NoError(t, err)
		assert.Empty(t, regs)
		assert.Equal(t, "Your account no longer exists", notifier.last().Message)

		pay := &fakePayments{}
		paid := NewAttendeeService(store, pay, nil, discardLogger())
		_, _, err = paid.RegisterPaid(ctx, "user_deleted", "evt1")
		require.ErrorIs(t, err, domain.ErrNotFound)
		assert.Empty(t, pay.calls, "no charge for an unknown account")
	})

	t.Run("write failure leaves seats untouched", func(t *testing.T) {
		store, kv := newSeededStore(t)
		svc := NewAttendeeService(store, &fakePayments{}, nil, discardLogger())
		kv.failWrites = true

		_, err := svc.Register(ctx, collections.StudentID, "evt1")
		require.ErrorIs(t, err, errWrite)
		assert.Equal(t, 50, findEvent(t, store, "evt1").AvailableSeats)
	})
}

func TestAttendeeService_Register_Concurrent(t *testing.T) {
	store, _ := newSeededStore(t)
	setSeats(t, store, "evt1", 50, 5)
	for i := 0; i < 20; i++ {
		addStudents(t, store, fmt.Sprintf("u%d", i))
	}
	svc := NewAttendeeService(store, &fakePayments{}, nil, discardLogger())

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, full int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Register(context.Background(), fmt.Sprintf("u%d", i), "evt1")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if assert.ErrorIs(t, err, domain.ErrSeatsExhausted) {
				full++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, ok)
	assert.Equal(t, 15, full)
	assert.Equal(t, 0, findEvent(t, store, "evt1").AvailableSeats)
	regs, err := store.GetRegistrations(context.Background())
	require.NoError(t, err)
	assert.Len(t, regs, 5)
}

func TestAttendeeService_RegisterPaid(t *testing.T) {
	ctx := context.Background()

	t.Run("charges the fee then registers", func(t *testing.T) {
		store, _ := newSeededStore(t)
		payments := &fakePayments{}
		svc := NewAttendeeService(store, payments, nil, discardLogger())

		reg, payment, err := svc.RegisterPaid(ctx, collections.StudentID, "evt1")
		require.NoError(t, err)
		require.NotNil(t, reg)
		require.NotNil(t, payment)
		assert.True(t, payment.Success)
		assert.Equal(t, []float64{100}, payments.calls)
		assert.Equal(t, 49, findEvent(t, store, "evt1").AvailableSeats)
	})

	t.Run("free event skips payment", func(t *testing.T) {
		store, _ := newSeededStore(t)
		payments := &fakePayments{}
		svc := NewAttendeeService(store, payments, nil, discardLogger())

		reg, payment, err := svc.RegisterPaid(ctx, collections.StudentID, "evt2")
		require.NoError(t, err)
		assert.NotNil(t, reg)
		assert.Nil(t, payment)
		assert.Empty(t, payments.calls)
	})

	t.Run("declined payment does not register", func(t *testing.T) {
		store, _ := newSeededStore(t)
		notifier := &recordingNotifier{}
		svc := NewAttendeeService(store, &fakePayments{decline: true}, notifier, discardLogger())

		reg, payment, err := svc.RegisterPaid(ctx, collections.StudentID, "evt1")
		require.ErrorIs(t, err, domain.ErrPaymentFailed)
		assert.Nil(t, reg)
		require.NotNil(t, payment)
		assert.False(t, payment.Success)
		assert.Equal(t, 50, findEvent(t, store, "evt1").AvailableSeats)
		assert.Equal(t, "Payment failed: card declined", notifier.last().Message)
	})

	t.Run("full event is refused before charging", func(t *testing.T) {
		store, _ := newSeededStore(t)
		setSeats(t, store, "evt1", 50, 0)
		payments := &fakePayments{}
		svc := NewAttendeeService(store, payments, nil, discardLogger())

		_, payment, err := svc.RegisterPaid(ctx, collections.StudentID, "evt1")
		require.ErrorIs(t, err, domain.ErrSeatsExhausted)
		assert.Nil(t, payment)
		assert.Empty(t, payments.calls)
	})
}

func TestAttendeeService_ListMyRegistrations(t *testing.T) {
	ctx := context.Background()
	store, _ := newSeededStore(t)
	svc := NewAttendeeService(store, &fakePayments{}, nil, discardLogger())
	events := newEventService(store, EventServiceConfig{})
	addStudents(t, store, "someone-else")

	_, err := svc.Register(ctx, collections.StudentID, "evt1")
	require.NoError(t, err)
	_, err = svc.Register(ctx, collections.StudentID, "evt2")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "someone-else", "evt3")
	require.NoError(t, err)
	_, err = events.MarkCompleted(ctx, "evt1")
	require.NoError(t, err)

	// A registration whose event disappeared is skipped.
	regs, err := store.GetRegistrations(ctx)
	require.NoError(t, err)
	regs = append(regs, domain.NewRegistration("reg_orphan", collections.StudentID, "gone", testNow))
	require.NoError(t, store.SetRegistrations(ctx, regs))

	mine, err := svc.ListMyRegistrations(ctx, collections.StudentID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "evt1", mine[0].Event.ID)
	assert.True(t, mine[0].Eligible)
	assert.Equal(t, "evt2", mine[1].Event.ID)
	assert.False(t, mine[1].Eligible)

	none, err := svc.ListMyRegistrations(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestAttendeeService_Certificate(t *testing.T) {
	ctx := context.Background()
	store, _ := newSeededStore(t)
	svc := NewAttendeeService(store, &fakePayments{}, nil, discardLogger())
	events := newEventService(store, EventServiceConfig{})
	student := studentIdentity()

	reg, err := svc.Register(ctx, student.ID, "evt4")
	require.NoError(t, err)

	_, err = svc.Certificate(ctx, student, reg.ID)
	require.ErrorIs(t, err, domain.ErrNotEligible)

	_, err = events.MarkCompleted(ctx, "evt4")
	require.NoError(t, err)

	cert, err := svc.Certificate(ctx, student, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, collections.StudentName, cert.RecipientName)
	assert.Equal(t, "Vishaka Cultural Night", cert.EventTitle)
	assert.Equal(t, "Vishaka", cert.Organizer)
	assert.Equal(t, "25 October 2026", cert.Date)
	assert.Equal(t, "certificate-Vishaka-Cultural-Night.png", cert.FileName)
	assert.Equal(t, domain.CertificateWidth, cert.Width)

	_, err = svc.Certificate(ctx, &domain.Identity{ID: "intruder"}, reg.ID)
	require.ErrorIs(t, err, domain.ErrPermission)

	_, err = svc.Certificate(ctx, student, "reg_missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

// TestSeatAccounting_Property drives random register, edit and complete sequences and
// checks that seat counts and registrations never disagree.
func TestSeatAccounting_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		kv := kvstore.NewMemoryStore()
		store := collections.New(kv, fakeHasher{}, discardLogger(), collections.WithClock(func() time.Time { return testNow }))
		require.NoError(rt, store.InitializeDemoData(ctx))
		setSeats(t, store, "evt1", 3, 3)

		attendees := NewAttendeeService(store, &fakePayments{}, nil, discardLogger())
		events := newEventService(store, EventServiceConfig{})
		owner := clubIdentity("MLSC")
		users := []string{"u1", "u2", "u3", "u4", "u5"}
		addStudents(t, store, users...)

		steps := rapid.IntRange(1, 30).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			before := findEvent(t, store, "evt1")
			switch rapid.IntRange(0, 2).Draw(rt, "op") {
			case 0:
				user := rapid.SampledFrom(users).Draw(rt, "user")
				_, err := attendees.Register(ctx, user, "evt1")
				if before.AvailableSeats == 0 && err == nil {
					rt.Fatalf("registered on a full event")
				}
			case 1:
				seats := rapid.IntRange(1, 6).Draw(rt, "seats")
				_, err := events.EditEvent(ctx, owner, "evt1", domain.EventPatch{Seats: &seats})
				require.NoError(rt, err)
			case 2:
				if rapid.IntRange(0, 9).Draw(rt, "complete") == 0 {
					_, err := events.MarkCompleted(ctx, "evt1")
					require.NoError(rt, err)
				}
			}

			after := findEvent(t, store, "evt1")
			if after.AvailableSeats < 0 || after.AvailableSeats > after.Seats {
				rt.Fatalf("available %d outside [0, %d]", after.AvailableSeats, after.Seats)
			}
			regs, err := store.GetRegistrations(ctx)
			require.NoError(rt, err)
			seen := make(map[string]bool)
			for _, r := range regs {
				if seen[r.UserID] {
					rt.Fatalf("user %s registered twice", r.UserID)
				}
				seen[r.UserID] = true
				if after.Completed != r.CertificateGenerated {
					rt.Fatalf("certificate flag %v on completed=%v event", r.CertificateGenerated, after.Completed)
				}
			}
		}
	})
}
