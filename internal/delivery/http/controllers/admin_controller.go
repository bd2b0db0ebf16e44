package controllers

import (
	"context"
	"log/slog"
	"net/http"

	h "collegeevents/internal/delivery/http/helpers"
	"collegeevents/internal/domain"
)

// DemoDataResetter wipes and reseeds the stored collections.
type DemoDataResetter interface {
	ResetDemoData(ctx context.Context) error
}

type AdminController struct {
	Logger   *slog.Logger
	Resetter DemoDataResetter
	Notifier domain.NotificationService
}

func NewAdminController(logger *slog.Logger, resetter DemoDataResetter, notifier domain.NotificationService) *AdminController {
	return &AdminController{Logger: logger, Resetter: resetter, Notifier: notifier}
}

// ResetDemoData godoc
// @Summary Reset demo data
// @Description Deletes accounts, events and registrations and seeds the demo data again. Club accounts only.
// @Tags admin
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/reset [post]
func (c *AdminController) ResetDemoData(w http.ResponseWriter, r *http.Request) {
	if err := c.Resetter.ResetDemoData(r.Context()); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if c.Notifier != nil {
		c.Notifier.Post(domain.NoticeInfo, "Demo data has been reset")
	}
	w.WriteHeader(http.StatusNoContent)
}

// Health godoc
// @Summary Health check
// @Tags admin
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Router /health [get]
func Health(w http.ResponseWriter, r *http.Request) {
	h.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}
