package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	h "collegeevents/internal/delivery/http/helpers"
	"collegeevents/internal/delivery/http/middleware"
	"collegeevents/internal/domain"
)

type AttendeeController struct {
	Logger   *slog.Logger
	Service  domain.AttendeeService
	Sessions domain.SessionService
}

func NewAttendeeController(logger *slog.Logger, svc domain.AttendeeService, sessions domain.SessionService) *AttendeeController {
	return &AttendeeController{
		Logger:   logger,
		Service:  svc,
		Sessions: sessions,
	}
}

// RegisterResponse is the data of POST /events/{eventID}/registrations.
// Payment is null for free events.
type RegisterResponse struct {
	Registration *domain.Registration  `json:"registration"`
	Payment      *domain.PaymentResult `json:"payment"`
}

// RegisterSuccessResponse is the success response envelope for POST /events/{eventID}/registrations (201).
type RegisterSuccessResponse struct {
	Data  *RegisterResponse `json:"data"`
	Error *h.APIError       `json:"error"`
}

// Register godoc
// @Summary Register for an event
// @Description Takes one seat for the caller. When the event has a fee it is charged first; a declined payment leaves the seat free.
// @Tags attendee
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 201 {object} controllers.RegisterSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 402 {object} helpers.APIResponse "error.code: payment_required"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (full, completed or already registered)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations [post]
func (c *AttendeeController) Register(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	reg, payment, err := c.Service.RegisterPaid(r.Context(), caller.ID, r.PathValue("eventID"))
	if err != nil {
		if errors.Is(err, domain.ErrPaymentFailed) && payment != nil {
			h.WriteJSONError(w, http.StatusPaymentRequired, h.ErrCodePaymentRequired, payment.Message)
			return
		}
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, &RegisterResponse{Registration: reg, Payment: payment})
}

// ListMyRegistrations godoc
// @Summary List my registrations
// @Description Returns the caller's registrations joined with their events and certificate eligibility.
// @Tags attendee
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains registrations with events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /me/registrations [get]
func (c *AttendeeController) ListMyRegistrations(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	list, err := c.Service.ListMyRegistrations(r.Context(), caller.ID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, list)
}

// Certificate godoc
// @Summary Certificate data
// @Description Returns the fields a client needs to draw the participation certificate of a completed event.
// @Tags attendee
// @Produce json
// @Security BearerAuth
// @Param registrationID path string true "Registration ID"
// @Success 200 {object} helpers.APIResponse "data contains the certificate"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (event not completed)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /me/registrations/{registrationID}/certificate [get]
func (c *AttendeeController) Certificate(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	// The token carries no name; the certificate needs it.
	user, err := c.Sessions.GetByID(r.Context(), caller.ID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	cert, err := c.Service.Certificate(r.Context(), user, r.PathValue("registrationID"))
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, cert)
}
