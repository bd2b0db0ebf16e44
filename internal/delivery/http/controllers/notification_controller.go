package controllers

import (
	"net/http"

	h "collegeevents/internal/delivery/http/helpers"
	"collegeevents/internal/domain"
)

type NotificationController struct {
	Service domain.NotificationService
}

func NewNotificationController(svc domain.NotificationService) *NotificationController {
	return &NotificationController{Service: svc}
}

// List godoc
// @Summary Live notices
// @Description Returns unexpired notices, most recent first.
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the notices"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /notifications [get]
func (c *NotificationController) List(w http.ResponseWriter, r *http.Request) {
	h.WriteJSONSuccess(w, http.StatusOK, c.Service.List())
}

// Dismiss godoc
// @Summary Dismiss a notice
// @Tags notifications
// @Security BearerAuth
// @Param noticeID path string true "Notice ID"
// @Success 204
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /notifications/{noticeID} [delete]
func (c *NotificationController) Dismiss(w http.ResponseWriter, r *http.Request) {
	if !c.Service.Dismiss(r.PathValue("noticeID")) {
		h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "notice not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Clear godoc
// @Summary Dismiss every notice
// @Tags notifications
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /notifications [delete]
func (c *NotificationController) Clear(w http.ResponseWriter, r *http.Request) {
	c.Service.Clear()
	w.WriteHeader(http.StatusNoContent)
}
