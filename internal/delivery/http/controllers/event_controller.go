package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	h "collegeevents/internal/delivery/http/helpers"
	"collegeevents/internal/delivery/http/middleware"
	"collegeevents/internal/domain"
)

// EventResponse is an event plus its derived status.
type EventResponse struct {
	*domain.Event
	Status domain.EventStatus `json:"status"`
}

func newEventResponse(e *domain.Event) *EventResponse {
	return &EventResponse{Event: e, Status: e.Status()}
}

// EventSuccessResponse is the success response envelope for single-event endpoints.
type EventSuccessResponse struct {
	Data  *EventResponse `json:"data"`
	Error *h.APIError    `json:"error"`
}

// ListEventsResponse is the data of GET /events.
type ListEventsResponse struct {
	Events     []*EventResponse `json:"events"`
	Pagination h.PaginationMeta `json:"pagination"`
}

// ListEventsSuccessResponse is the success response envelope for GET /events (200).
type ListEventsSuccessResponse struct {
	Data  ListEventsResponse `json:"data"`
	Error *h.APIError        `json:"error"`
}

// CreateEventRequest is the request body for POST /events. Organizer defaults to the caller's club.
type CreateEventRequest struct {
	Title       string          `json:"title"`
	Category    domain.Category `json:"category"`
	Organizer   string          `json:"organizer,omitempty"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Seats       int             `json:"seats"`
	Fee         float64         `json:"fee"`
}

func (c CreateEventRequest) fields() domain.EventFields {
	return domain.EventFields{
		Title:       c.Title,
		Category:    c.Category,
		Organizer:   c.Organizer,
		Date:        c.Date,
		Description: c.Description,
		Seats:       c.Seats,
		Fee:         c.Fee,
	}
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	f := c.fields()
	return f.Validate()
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}. Omitted fields are unchanged.
type UpdateEventRequest struct {
	Title       *string          `json:"title"`
	Category    *domain.Category `json:"category"`
	Date        *time.Time       `json:"date"`
	Description *string          `json:"description"`
	Seats       *int             `json:"seats"`
	Fee         *float64         `json:"fee"`
}

func (u UpdateEventRequest) patch() domain.EventPatch {
	return domain.EventPatch{
		Title:       u.Title,
		Category:    u.Category,
		Date:        u.Date,
		Description: u.Description,
		Seats:       u.Seats,
		Fee:         u.Fee,
	}
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	p := u.patch()
	return p.Validate()
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// ListClubs godoc
// @Summary List clubs
// @Description Returns every club with its category, for the browse sidebar.
// @Tags events
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains the clubs"
// @Router /clubs [get]
func (c *EventController) ListClubs(w http.ResponseWriter, r *http.Request) {
	h.WriteJSONSuccess(w, http.StatusOK, c.Service.ListClubs(r.Context()))
}

// ListEvents godoc
// @Summary Browse events
// @Description Lists events in creation order. category may repeat or be comma separated; club matches the organizer exactly.
// @Tags events
// @Produce json
// @Param category query string false "educational and/or cultural"
// @Param club query string false "Organizer club name"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListEventsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter, problem := parseEventFilter(r)
	if problem != "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, problem)
		return
	}
	page := h.ParsePagination(r)
	events, total, err := c.Service.ListEvents(r.Context(), filter, page)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	out := make([]*EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, newEventResponse(e))
	}
	h.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{
		Events:     out,
		Pagination: h.NewPaginationMeta(page.Page, page.PageSize, total),
	})
}

func parseEventFilter(r *http.Request) (domain.EventFilter, string) {
	q := r.URL.Query()
	filter := domain.EventFilter{Club: strings.TrimSpace(q.Get("club"))}
	for _, raw := range q["category"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(strings.ToLower(part))
			if part == "" {
				continue
			}
			cat := domain.Category(part)
			if !cat.Valid() {
				return filter, "unknown category " + part
			}
			filter.Categories = append(filter.Categories, cat)
		}
	}
	return filter, ""
}

// GetEvent godoc
// @Summary Get an event
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := c.Service.GetEvent(r.Context(), r.PathValue("eventID"))
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, newEventResponse(event))
}

// CreateEvent godoc
// @Summary Publish an event
// @Description Creates an event owned by the caller's club with every seat available.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, err := c.Service.CreateEvent(r.Context(), actor, req.fields())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, newEventResponse(event))
}

// UpdateEvent godoc
// @Summary Edit an event
// @Description Only the owning club may edit. Changing seats shifts availableSeats by the same delta, never below zero.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req UpdateEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, err := c.Service.EditEvent(r.Context(), actor, r.PathValue("eventID"), req.patch())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, newEventResponse(event))
}

// CompleteEvent godoc
// @Summary Mark an event completed
// @Description Flags every registration of the event for a certificate. Repeating the call is a no-op.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/complete [post]
func (c *EventController) CompleteEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, err := c.Service.CompleteEvent(r.Context(), actor, r.PathValue("eventID"))
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, newEventResponse(event))
}
