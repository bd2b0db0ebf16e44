package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"collegeevents/internal/domain"
)

type eventService struct {
	store              domain.Collections
	notifier           domain.NotificationService
	emailService       domain.EmailService
	logger             *slog.Logger
	allowAnyCompletion bool
	contextTimeout     time.Duration
}

// EventServiceConfig holds the optional collaborators and policy switches of the EventService.
type EventServiceConfig struct {
	// Notifier and EmailService may be nil.
	Notifier     domain.NotificationService
	EmailService domain.EmailService
	// AllowAnyCompletion lets any caller complete any event. When false only the owning club may.
	AllowAnyCompletion bool
	// ContextTimeout bounds each operation; zero means no extra deadline.
	ContextTimeout time.Duration
}

// NewEventService creates an EventService over the given collections.
func NewEventService(store domain.Collections, logger *slog.Logger, cfg EventServiceConfig) domain.EventService {
	return &eventService{
		store:              store,
		notifier:           cfg.Notifier,
		emailService:       cfg.EmailService,
		logger:             logger,
		allowAnyCompletion: cfg.AllowAnyCompletion,
		contextTimeout:     cfg.ContextTimeout,
	}
}

func (s *eventService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.contextTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.contextTimeout)
}

func (s *eventService) ListClubs(ctx context.Context) []domain.Club {
	return s.store.Clubs()
}

func (s *eventService) ListEvents(ctx context.Context, filter domain.EventFilter, page domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	events, err := s.store.GetEvents(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("load events: %w", err)
	}
	matched := make([]*domain.Event, 0, len(events))
	for _, e := range events {
		if filter.Match(e) {
			matched = append(matched, e)
		}
	}
	start, end := page.Window(len(matched))
	return matched[start:end], len(matched), nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	events, err := s.store.GetEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	if i := indexOfEvent(events, eventID); i >= 0 {
		return events[i], nil
	}
	return nil, fmt.Errorf("event %s: %w", eventID, domain.ErrNotFound)
}

func (s *eventService) CreateEvent(ctx context.Context, actor *domain.Identity, fields domain.EventFields) (_ *domain.Event, err error) {
	ctx, span := startSpan(ctx, "EventService.CreateEvent")
	defer func() { endSpan(span, err) }()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if !actor.IsClub() {
		return nil, fmt.Errorf("create event: only club accounts may publish: %w", domain.ErrPermission)
	}
	if fields.Organizer == "" {
		fields.Organizer = actor.ClubName
	}
	if fields.Organizer != actor.ClubName {
		return nil, fmt.Errorf("create event for %q as %q: %w", fields.Organizer, actor.ClubName, domain.ErrPermission)
	}
	fields.Title = strings.TrimSpace(fields.Title)
	fields.Description = strings.TrimSpace(fields.Description)
	if problems := fields.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(problems, "; "))
	}

	event := domain.NewEvent("evt_"+uuid.NewString(), fields)
	err = s.store.Exclusive(func() error {
		events, err := s.store.GetEvents(ctx)
		if err != nil {
			return fmt.Errorf("load events: %w", err)
		}
		if err := s.store.SetEvents(ctx, append(events, event)); err != nil {
			return fmt.Errorf("save events: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("event.id", event.ID))
	s.logger.InfoContext(ctx, "event created", "event_id", event.ID, "organizer", event.Organizer)
	s.notify(domain.NoticeSuccess, fmt.Sprintf("Event %q created", event.Title))
	return event, nil
}

func (s *eventService) EditEvent(ctx context.Context, actor *domain.Identity, eventID string, patch domain.EventPatch) (_ *domain.Event, err error) {
	ctx, span := startSpan(ctx, "EventService.EditEvent", attribute.String("event.id", eventID))
	defer func() { endSpan(span, err) }()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var updated *domain.Event
	err = s.store.Exclusive(func() error {
		events, err := s.store.GetEvents(ctx)
		if err != nil {
			return fmt.Errorf("load events: %w", err)
		}
		i := indexOfEvent(events, eventID)
		if i < 0 {
			return fmt.Errorf("event %s: %w", eventID, domain.ErrNotFound)
		}
		event := events[i]
		if !actor.IsClub() || event.Organizer != actor.ClubName {
			return fmt.Errorf("edit event %s: %w", eventID, domain.ErrPermission)
		}
		if problems := patch.Validate(); len(problems) > 0 {
			return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(problems, "; "))
		}
		applyPatch(event, patch)
		if err := s.store.SetEvents(ctx, events); err != nil {
			return fmt.Errorf("save events: %w", err)
		}
		updated = event
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "event updated", "event_id", updated.ID, "seats", updated.Seats, "available_seats", updated.AvailableSeats)
	s.notify(domain.NoticeSuccess, fmt.Sprintf("Event %q updated", updated.Title))
	return updated, nil
}

func applyPatch(event *domain.Event, patch domain.EventPatch) {
	if patch.Title != nil {
		event.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Category != nil {
		event.Category = *patch.Category
	}
	if patch.Date != nil {
		event.Date = *patch.Date
	}
	if patch.Description != nil {
		event.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Fee != nil {
		event.Fee = *patch.Fee
	}
	if patch.Seats != nil {
		event.ResizeSeats(*patch.Seats)
	}
}

func (s *eventService) MarkCompleted(ctx context.Context, eventID string) (_ *domain.Event, err error) {
	ctx, span := startSpan(ctx, "EventService.MarkCompleted", attribute.String("event.id", eventID))
	defer func() { endSpan(span, err) }()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		completed  *domain.Event
		recipients []string
		changed    bool
	)
	err = s.store.Exclusive(func() error {
		events, err := s.store.GetEvents(ctx)
		if err != nil {
			return fmt.Errorf("load events: %w", err)
		}
		i := indexOfEvent(events, eventID)
		if i < 0 {
			return fmt.Errorf("event %s: %w", eventID, domain.ErrNotFound)
		}
		completed = events[i]
		if completed.Completed {
			return nil
		}

		regs, err := s.store.GetRegistrations(ctx)
		if err != nil {
			return fmt.Errorf("load registrations: %w", err)
		}
		completed.Completed = true
		for _, r := range regs {
			if r.EventID == eventID {
				r.CertificateGenerated = true
				recipients = append(recipients, r.UserID)
			}
		}
		if err := s.store.SetEventsAndRegistrations(ctx, events, regs); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return completed, nil
	}

	span.SetAttributes(attribute.Int("event.participants", len(recipients)))
	s.logger.InfoContext(ctx, "event completed", "event_id", eventID, "certificates", len(recipients))
	s.notify(domain.NoticeSuccess, fmt.Sprintf("Event %q marked as completed", completed.Title))
	s.sendCertificateEmails(ctx, completed, recipients)
	return completed, nil
}

func (s *eventService) CompleteEvent(ctx context.Context, actor *domain.Identity, eventID string) (*domain.Event, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !s.allowAnyCompletion && (!actor.IsClub() || event.Organizer != actor.ClubName) {
		return nil, fmt.Errorf("complete event %s: %w", eventID, domain.ErrPermission)
	}
	return s.MarkCompleted(ctx, eventID)
}

// sendCertificateEmails mails every participant. Failures are logged and never undo the completion.
func (s *eventService) sendCertificateEmails(ctx context.Context, event *domain.Event, userIDs []string) {
	if s.emailService == nil || len(userIDs) == 0 {
		return
	}
	accounts, err := s.store.GetAccounts(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "certificate emails skipped", "event_id", event.ID, "error", err)
		return
	}
	byID := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	for _, id := range userIDs {
		a, ok := byID[id]
		if !ok {
			continue
		}
		data := &domain.CertificateReadyEmailData{
			Email:      a.Email,
			Name:       a.Name,
			EventTitle: event.Title,
			Organizer:  event.Organizer,
			EventDate:  event.Date.Format(domain.CertificateDateLayout),
		}
		if err := s.emailService.SendCertificateReady(ctx, data); err != nil {
			s.logger.WarnContext(ctx, "certificate email failed", "event_id", event.ID, "account_id", id, "error", err)
		}
	}
}

func (s *eventService) notify(kind domain.NoticeKind, message string) {
	if s.notifier != nil {
		s.notifier.Post(kind, message)
	}
}

func indexOfEvent(events []*domain.Event, id string) int {
	for i, e := range events {
		if e.ID == id {
			return i
		}
	}
	return -1
}
