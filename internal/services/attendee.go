package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"collegeevents/internal/domain"
)

type attendeeService struct {
	store    domain.Collections
	payments domain.PaymentProcessor
	notifier domain.NotificationService
	logger   *slog.Logger
	now      func() time.Time
}

// NewAttendeeService creates an AttendeeService. notifier may be nil.
func NewAttendeeService(
	store domain.Collections,
	payments domain.PaymentProcessor,
	notifier domain.NotificationService,
	logger *slog.Logger,
) domain.AttendeeService {
	return &attendeeService{
		store:    store,
		payments: payments,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *attendeeService) Register(ctx context.Context, userID, eventID string) (_ *domain.Registration, err error) {
	ctx, span := startSpan(ctx, "AttendeeService.Register",
		attribute.String("event.id", eventID), attribute.String("user.id", userID))
	defer func() { endSpan(span, err) }()

	var (
		reg   *domain.Registration
		event *domain.Event
	)
	err = s.store.Exclusive(func() error {
		events, regs, err := s.loadRegistrable(ctx, userID, eventID)
		if err != nil {
			return err
		}
		event = events[indexOfEvent(events, eventID)]
		event.AvailableSeats--
		reg = domain.NewRegistration("reg_"+uuid.NewString(), userID, eventID, s.now().UTC())
		return s.store.SetEventsAndRegistrations(ctx, events, append(regs, reg))
	})
	if err != nil {
		s.logger.InfoContext(ctx, "registration rejected", "event_id", eventID, "user_id", userID, "error", err)
		s.notify(domain.NoticeError, registrationFailureMessage(err))
		return nil, err
	}

	s.logger.InfoContext(ctx, "registered for event", "event_id", eventID, "user_id", userID, "available_seats", event.AvailableSeats)
	s.notify(domain.NoticeSuccess, fmt.Sprintf("Registered for %s", event.Title))
	return reg, nil
}

func (s *attendeeService) RegisterPaid(ctx context.Context, userID, eventID string) (_ *domain.Registration, _ *domain.PaymentResult, err error) {
	ctx, span := startSpan(ctx, "AttendeeService.RegisterPaid",
		attribute.String("event.id", eventID), attribute.String("user.id", userID))
	defer func() { endSpan(span, err) }()

	var event *domain.Event
	err = s.store.Exclusive(func() error {
		events, _, err := s.loadRegistrable(ctx, userID, eventID)
		if err != nil {
			return err
		}
		event = events[indexOfEvent(events, eventID)]
		return nil
	})
	if err != nil {
		s.notify(domain.NoticeError, registrationFailureMessage(err))
		return nil, nil, err
	}

	var payment *domain.PaymentResult
	if event.Fee > 0 {
		result := s.payments.Process(ctx, event.Fee, map[string]string{
			"eventId": eventID,
			"userId":  userID,
		})
		payment = &result
		if !result.Success {
			s.logger.WarnContext(ctx, "payment declined", "event_id", eventID, "user_id", userID, "message", result.Message)
			s.notify(domain.NoticeError, "Payment failed: "+result.Message)
			return nil, payment, fmt.Errorf("%w: %s", domain.ErrPaymentFailed, result.Message)
		}
		s.logger.InfoContext(ctx, "payment captured", "event_id", eventID, "user_id", userID, "transaction_id", result.TransactionID)
	}

	reg, err := s.Register(ctx, userID, eventID)
	if err != nil {
		if payment != nil {
			s.logger.ErrorContext(ctx, "payment captured but registration failed",
				"event_id", eventID, "user_id", userID, "transaction_id", payment.TransactionID, "error", err)
		}
		return nil, payment, err
	}
	return reg, payment, nil
}

// loadRegistrable reads events and registrations and checks that userID may take a seat in eventID.
func (s *attendeeService) loadRegistrable(ctx context.Context, userID, eventID string) ([]*domain.Event, []*domain.Registration, error) {
	accounts, err := s.store.GetAccounts(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load accounts: %w", err)
	}
	if !slices.ContainsFunc(accounts, func(a *domain.Account) bool { return a.ID == userID }) {
		return nil, nil, fmt.Errorf("user %s: %w", userID, errUnknownAccount)
	}

	events, err := s.store.GetEvents(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load events: %w", err)
	}
	i := indexOfEvent(events, eventID)
	if i < 0 {
		return nil, nil, fmt.Errorf("event %s: %w", eventID, domain.ErrNotFound)
	}
	event := events[i]
	if event.AvailableSeats <= 0 {
		return nil, nil, fmt.Errorf("event %s: %w", eventID, domain.ErrSeatsExhausted)
	}
	if event.Completed {
		return nil, nil, fmt.Errorf("event %s: %w", eventID, domain.ErrEventCompleted)
	}

	regs, err := s.store.GetRegistrations(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load registrations: %w", err)
	}
	for _, r := range regs {
		if r.UserID == userID && r.EventID == eventID {
			return nil, nil, fmt.Errorf("event %s: %w", eventID, domain.ErrAlreadyRegistered)
		}
	}
	return events, regs, nil
}

func (s *attendeeService) ListMyRegistrations(ctx context.Context, userID string) ([]*domain.RegistrationWithEvent, error) {
	regs, err := s.store.GetRegistrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load registrations: %w", err)
	}
	events, err := s.store.GetEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	eventsByID := make(map[string]*domain.Event, len(events))
	for _, e := range events {
		eventsByID[e.ID] = e
	}

	result := []*domain.RegistrationWithEvent{}
	for _, r := range regs {
		if r.UserID != userID {
			continue
		}
		ev, ok := eventsByID[r.EventID]
		if !ok {
			// Registration for an event that no longer exists.
			continue
		}
		result = append(result, &domain.RegistrationWithEvent{
			Registration: r,
			Event:        ev,
			Eligible:     domain.EligibleForCertificate(r, ev),
		})
	}
	return result, nil
}

func (s *attendeeService) Certificate(ctx context.Context, user *domain.Identity, registrationID string) (*domain.Certificate, error) {
	if user == nil {
		return nil, fmt.Errorf("certificate: %w", domain.ErrPermission)
	}
	regs, err := s.store.GetRegistrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load registrations: %w", err)
	}
	var reg *domain.Registration
	for _, r := range regs {
		if r.ID == registrationID {
			reg = r
			break
		}
	}
	if reg == nil {
		return nil, fmt.Errorf("registration %s: %w", registrationID, domain.ErrNotFound)
	}
	if reg.UserID != user.ID {
		return nil, fmt.Errorf("registration %s: %w", registrationID, domain.ErrPermission)
	}

	events, err := s.store.GetEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	i := indexOfEvent(events, reg.EventID)
	if i < 0 {
		return nil, fmt.Errorf("event %s: %w", reg.EventID, domain.ErrNotFound)
	}
	if !domain.EligibleForCertificate(reg, events[i]) {
		return nil, fmt.Errorf("registration %s: %w", registrationID, domain.ErrNotEligible)
	}
	return domain.NewCertificate(user, events[i]), nil
}

func (s *attendeeService) notify(kind domain.NoticeKind, message string) {
	if s.notifier != nil {
		s.notifier.Post(kind, message)
	}
}

// errUnknownAccount rejects callers whose account was removed, e.g. by a demo data reset.
var errUnknownAccount = fmt.Errorf("account %w", domain.ErrNotFound)

func registrationFailureMessage(err error) string {
	switch {
	case errors.Is(err, errUnknownAccount):
		return "Your account no longer exists"
	case errors.Is(err, domain.ErrSeatsExhausted):
		return "No seats available for this event"
	case errors.Is(err, domain.ErrAlreadyRegistered):
		return "You are already registered for this event"
	case errors.Is(err, domain.ErrEventCompleted):
		return "This event has already been completed"
	case errors.Is(err, domain.ErrNotFound):
		return "Event not found"
	default:
		return "Registration failed"
	}
}
