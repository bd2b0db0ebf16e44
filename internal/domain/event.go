package domain

import (
	"context"
	"strings"
	"time"
)

// Category groups events on the browse screen.
type Category string

const (
	CategoryEducational Category = "educational"
	CategoryCultural    Category = "cultural"
)

// Categories lists every known category in display order.
var Categories = []Category{CategoryEducational, CategoryCultural}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c == CategoryEducational || c == CategoryCultural
}

// EventStatus is derived from the stored fields and never persisted.
type EventStatus string

const (
	EventStatusOpen      EventStatus = "open"
	EventStatusFull      EventStatus = "full"
	EventStatusCompleted EventStatus = "completed"
)

// Event is a club-published event. Organizer is the owning club's name.
// swagger:model Event
type Event struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Category       Category  `json:"category"`
	Organizer      string    `json:"organizer"`
	Date           time.Time `json:"date"`
	Description    string    `json:"description"`
	Seats          int       `json:"seats"`
	AvailableSeats int       `json:"availableSeats"`
	Fee            float64   `json:"fee"`
	Completed      bool      `json:"completed"`
}

// NewEvent returns an open event with every seat available.
func NewEvent(id string, f EventFields) *Event {
	return &Event{
		ID:             id,
		Title:          f.Title,
		Category:       f.Category,
		Organizer:      f.Organizer,
		Date:           f.Date,
		Description:    f.Description,
		Seats:          f.Seats,
		AvailableSeats: f.Seats,
		Fee:            f.Fee,
		Completed:      false,
	}
}

// Status derives open/full/completed from the stored fields.
func (e *Event) Status() EventStatus {
	switch {
	case e.Completed:
		return EventStatusCompleted
	case e.AvailableSeats <= 0:
		return EventStatusFull
	default:
		return EventStatusOpen
	}
}

// ResizeSeats changes the capacity and shifts AvailableSeats by the same delta, never below zero.
func (e *Event) ResizeSeats(seats int) {
	delta := seats - e.Seats
	e.Seats = seats
	e.AvailableSeats += delta
	if e.AvailableSeats < 0 {
		e.AvailableSeats = 0
	}
}

// EventFields are the caller-supplied fields of a new event.
type EventFields struct {
	Title       string    `json:"title"`
	Category    Category  `json:"category"`
	Organizer   string    `json:"organizer"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Seats       int       `json:"seats"`
	Fee         float64   `json:"fee"`
}

// Validate returns a slice of error messages; nil means valid.
func (f *EventFields) Validate() []string {
	var errs []string
	if strings.TrimSpace(f.Title) == "" {
		errs = append(errs, "title is required")
	}
	if !f.Category.Valid() {
		errs = append(errs, "category must be educational or cultural")
	}
	if f.Date.IsZero() {
		errs = append(errs, "date is required")
	}
	if f.Seats < 1 {
		errs = append(errs, "seats must be at least 1")
	}
	if f.Fee < 0 {
		errs = append(errs, "fee must not be negative")
	}
	return errs
}

// EventPatch holds optional replacements for an existing event. Nil fields are left unchanged.
type EventPatch struct {
	Title       *string    `json:"title,omitempty"`
	Category    *Category  `json:"category,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Description *string    `json:"description,omitempty"`
	Seats       *int       `json:"seats,omitempty"`
	Fee         *float64   `json:"fee,omitempty"`
}

// Validate returns a slice of error messages; nil means valid.
func (p *EventPatch) Validate() []string {
	var errs []string
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		errs = append(errs, "title must not be empty")
	}
	if p.Category != nil && !p.Category.Valid() {
		errs = append(errs, "category must be educational or cultural")
	}
	if p.Date != nil && p.Date.IsZero() {
		errs = append(errs, "date must not be empty")
	}
	if p.Seats != nil && *p.Seats < 1 {
		errs = append(errs, "seats must be at least 1")
	}
	if p.Fee != nil && *p.Fee < 0 {
		errs = append(errs, "fee must not be negative")
	}
	return errs
}

// EventFilter narrows the browse list. Empty Categories means all categories; empty Club means all clubs.
type EventFilter struct {
	Categories []Category
	Club       string
}

// Match reports whether the event passes the filter.
func (f EventFilter) Match(e *Event) bool {
	if f.Club != "" && e.Organizer != f.Club {
		return false
	}
	if len(f.Categories) == 0 {
		return true
	}
	for _, c := range f.Categories {
		if e.Category == c {
			return true
		}
	}
	return false
}

// Club is a publishing organization and the category it belongs to.
// swagger:model Club
type Club struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

// EventService defines club-facing event management.
type EventService interface {
	ListClubs(ctx context.Context) []Club
	ListEvents(ctx context.Context, filter EventFilter, page PaginationParams) ([]*Event, int, error)
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	CreateEvent(ctx context.Context, actor *Identity, fields EventFields) (*Event, error)
	EditEvent(ctx context.Context, actor *Identity, eventID string, patch EventPatch) (*Event, error)
	// MarkCompleted is idempotent and flags every registration of the event for a certificate.
	MarkCompleted(ctx context.Context, eventID string) (*Event, error)
	// CompleteEvent checks that the actor may complete the event, then calls MarkCompleted.
	CompleteEvent(ctx context.Context, actor *Identity, eventID string) (*Event, error)
}
