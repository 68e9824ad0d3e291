package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	apperrors "powereye/internal/errors"
	"powereye/internal/service"
)

// MachineHandler handles machine endpoints.
type MachineHandler struct {
	machineService service.MachineService
}

// NewMachineHandler creates a new machine handler.
func NewMachineHandler(machineService service.MachineService) *MachineHandler {
	return &MachineHandler{machineService: machineService}
}

// MachineRequest is the body of create and update calls.
type MachineRequest struct {
	Name        string              `json:"name" validate:"required,max=255"`
	Model       string              `json:"model" validate:"max=255"`
	Type        *string             `json:"type" validate:"omitempty,max=100"`
	Location    *string             `json:"location" validate:"omitempty,max=255"`
	RatedPower  decimal.NullDecimal `json:"rated_power" swaggertype:"number"`
	Description *string             `json:"description"`
	Status      string              `json:"status" validate:"omitempty,oneof=active idle maintenance"`
}

// CreateMachineResponse represents a created machine.
type CreateMachineResponse struct {
	Message   string `json:"message"`
	MachineID uint   `json:"machineId"`
}

var machineMessages = map[string]string{
	"Status":   "Invalid status",
	"Name":     "Machine name must be at most 255 characters",
	"Model":    "Model must be at most 255 characters",
	"Type":     "Type must be at most 100 characters",
	"Location": "Location must be at most 255 characters",
}

func (h *MachineHandler) bind(c echo.Context) (service.MachineInput, error) {
	var req MachineRequest
	if err := c.Bind(&req); err != nil {
		return service.MachineInput{}, badBody()
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Model = strings.TrimSpace(req.Model)

	if err := validateStruct(c, &req, "Machine name required", machineMessages); err != nil {
		return service.MachineInput{}, err
	}
	if req.RatedPower.Valid && req.RatedPower.Decimal.IsNegative() {
		return service.MachineInput{}, apperrors.BadRequest("Rated power must not be negative")
	}

	return service.MachineInput{
		Name:        req.Name,
		Model:       req.Model,
		Type:        req.Type,
		Location:    req.Location,
		RatedPower:  req.RatedPower,
		Description: req.Description,
		Status:      req.Status,
	}, nil
}

// ListMachines godoc
// @Summary List all machines
// @Description Every authenticated user sees every machine, newest first.
// @Tags machines
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Machine
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /machines [get]
func (h *MachineHandler) ListMachines(c echo.Context) error {
	machines, err := h.machineService.List(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, machines)
}

// GetMachine godoc
// @Summary Get machine details
// @Tags machines
// @Produce json
// @Security BearerAuth
// @Param id path int true "Machine ID"
// @Success 200 {object} model.Machine
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /machines/{id} [get]
func (h *MachineHandler) GetMachine(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	machine, err := h.machineService.Get(c.Request().Context(), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, machine)
}

// CreateMachine godoc
// @Summary Add a machine
// @Tags machines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body MachineRequest true "Machine data"
// @Success 201 {object} CreateMachineResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /machines [post]
func (h *MachineHandler) CreateMachine(c echo.Context) error {
	claims, err := requester(c)
	if err != nil {
		return err
	}
	in, err := h.bind(c)
	if err != nil {
		return err
	}

	machine, err := h.machineService.Create(c.Request().Context(), claims.UserID, in)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusCreated, CreateMachineResponse{
		Message:   "Machine added successfully",
		MachineID: machine.ID,
	})
}

// UpdateMachine godoc
// @Summary Replace a machine's fields
// @Description Only the owner may update; other machines read as not found.
// @Tags machines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Machine ID"
// @Param request body MachineRequest true "Machine data"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /machines/{id} [put]
func (h *MachineHandler) UpdateMachine(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	claims, err := requester(c)
	if err != nil {
		return err
	}
	in, err := h.bind(c)
	if err != nil {
		return err
	}

	if err := h.machineService.Update(c.Request().Context(), claims.UserID, id, in); err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Machine updated successfully"})
}

// DeleteMachine godoc
// @Summary Delete a machine and its alerts
// @Tags machines
// @Produce json
// @Security BearerAuth
// @Param id path int true "Machine ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /machines/{id} [delete]
func (h *MachineHandler) DeleteMachine(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	claims, err := requester(c)
	if err != nil {
		return err
	}

	if err := h.machineService.Delete(c.Request().Context(), claims.UserID, id); err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Machine deleted successfully"})
}
