package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"powereye/internal/service"
)

// AlertHandler handles alert endpoints.
type AlertHandler struct {
	alertService service.AlertService
}

// NewAlertHandler creates a new alert handler.
func NewAlertHandler(alertService service.AlertService) *AlertHandler {
	return &AlertHandler{alertService: alertService}
}

// CreateAlertRequest represents a new alert.
type CreateAlertRequest struct {
	MachineID uint   `json:"machine_id" validate:"required"`
	AlertType string `json:"alert_type" validate:"required,max=100"`
	Severity  string `json:"severity" validate:"omitempty,oneof=low medium high critical info warning"`
	Message   string `json:"message"`
}

// CreateAlertResponse represents a created alert.
type CreateAlertResponse struct {
	Message string `json:"message"`
	AlertID uint   `json:"alertId"`
}

// ListAlerts godoc
// @Summary List recent alerts
// @Description The 50 newest alerts with the name of their machine.
// @Tags alerts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.AlertWithMachine
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /alerts [get]
func (h *AlertHandler) ListAlerts(c echo.Context) error {
	alerts, err := h.alertService.List(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, alerts)
}

// CreateAlert godoc
// @Summary Raise an alert
// @Tags alerts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateAlertRequest true "Alert data"
// @Success 201 {object} CreateAlertResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /alerts [post]
func (h *AlertHandler) CreateAlert(c echo.Context) error {
	var req CreateAlertRequest
	if err := c.Bind(&req); err != nil {
		return badBody()
	}
	req.AlertType = strings.TrimSpace(req.AlertType)
	if err := validateStruct(c, &req, "Machine ID and alert type required", map[string]string{
		"Severity":  "Invalid severity",
		"AlertType": "Alert type must be at most 100 characters",
	}); err != nil {
		return err
	}

	alert, err := h.alertService.Create(c.Request().Context(), service.AlertInput{
		MachineID: req.MachineID,
		AlertType: req.AlertType,
		Severity:  req.Severity,
		Message:   req.Message,
	})
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusCreated, CreateAlertResponse{
		Message: "Alert created successfully",
		AlertID: alert.ID,
	})
}

// ResolveAlert godoc
// @Summary Mark an alert resolved
// @Tags alerts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Alert ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /alerts/{id}/resolve [put]
func (h *AlertHandler) ResolveAlert(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.alertService.Resolve(c.Request().Context(), id); err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Alert resolved successfully"})
}
