package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jwilber99/calbright-portal-backend-seperated/internal/model"
	"github.com/jwilber99/calbright-portal-backend-seperated/internal/repository"
)

// DeviceStore is the device persistence surface the handlers need.
type DeviceStore interface {
	List(ctx context.Context) ([]model.Device, error)
	GetByID(ctx context.Context, id uint64) (model.Device, error)
	Create(ctx context.Context, name, deviceType, status string, assignedTo *uint64) (model.Device, error)
	Update(ctx context.Context, id uint64, p model.DevicePatch) (model.Device, error)
	Delete(ctx context.Context, id uint64) error
}

type DeviceHandler struct {
	Devices DeviceStore
	Audit   AuditPublisher
}

func NewDeviceHandler(devices DeviceStore, audit AuditPublisher) *DeviceHandler {
	return &DeviceHandler{Devices: devices, Audit: audit}
}

// deviceReq binds both create and update bodies.  AssignedTo stays raw
// JSON so an explicit null (unassign) can be told apart from an absent
// field.
type deviceReq struct {
	Name       *string         `json:"name"`
	Type       *string         `json:"type"`
	Status     *string         `json:"status"`
	AssignedTo json.RawMessage `json:"assignedTo"`
}

// parseAssigned interprets the raw assignedTo value: absent (nil, no
// clear), null (clear), or a student id.
func parseAssigned(raw json.RawMessage) (id *uint64, clear bool, err error) {
	if len(raw) == 0 {
		return nil, false, nil
	}
	if string(raw) == "null" {
		return nil, true, nil
	}
	var n uint64
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, false, err
	}
	return &n, false, nil
}

func validateDevice(req deviceReq, create bool) fieldErrors {
	errs := fieldErrors{}
	checkRequired := func(field string, v *string) {
		if create && (v == nil || strings.TrimSpace(*v) == "") {
			errs[field] = field + " is required"
		}
		if !create && v != nil && strings.TrimSpace(*v) == "" {
			errs[field] = field + " must not be empty"
		}
	}
	checkRequired("name", req.Name)
	checkRequired("type", req.Type)
	if req.Status != nil && !model.ValidStatus(*req.Status) {
		errs["status"] = "status must be one of active, inactive, maintenance"
	}
	if _, _, err := parseAssigned(req.AssignedTo); err != nil {
		errs["assignedTo"] = "assignedTo must be a student id or null"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// List handles GET /devices.  Each device carries its assigned-student
// projection resolved at read time.
func (h *DeviceHandler) List(c echo.Context) error {
	devices, err := h.Devices.List(c.Request().Context())
	if err != nil {
		log.Printf("device: list: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error fetching devices"})
	}
	return c.JSON(http.StatusOK, devices)
}

// Get handles GET /devices/:id.
func (h *DeviceHandler) Get(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid id"})
	}
	d, err := h.Devices.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Device not found"})
		}
		log.Printf("device: get %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error fetching device"})
	}
	return c.JSON(http.StatusOK, d)
}

// Create handles POST /devices (admin only).
func (h *DeviceHandler) Create(c echo.Context) error {
	var req deviceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if errs := validateDevice(req, true); errs != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Validation error", "errors": errs})
	}
	assigned, _, _ := parseAssigned(req.AssignedTo)
	status := model.StatusActive
	if req.Status != nil {
		status = *req.Status
	}

	d, err := h.Devices.Create(c.Request().Context(),
		strings.TrimSpace(*req.Name), strings.TrimSpace(*req.Type), status, assigned)
	if err != nil {
		log.Printf("device: create: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error creating device"})
	}

	publishAudit(h.Audit, c, "device.created", "device", strconv.FormatUint(d.ID, 10))
	return c.JSON(http.StatusCreated, d)
}

// Update handles PUT /devices/:id (admin only).  Provided fields are
// merged; assignedTo null unassigns the device.
func (h *DeviceHandler) Update(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid id"})
	}
	var req deviceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if errs := validateDevice(req, false); errs != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Validation error", "errors": errs})
	}
	assigned, clear, _ := parseAssigned(req.AssignedTo)

	d, err := h.Devices.Update(c.Request().Context(), id, model.DevicePatch{
		Name:          req.Name,
		Type:          req.Type,
		Status:        req.Status,
		AssignedTo:    assigned,
		ClearAssigned: clear,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Device not found"})
		}
		log.Printf("device: update %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error updating device"})
	}

	publishAudit(h.Audit, c, "device.updated", "device", strconv.FormatUint(id, 10))
	return c.JSON(http.StatusOK, d)
}

// Delete handles DELETE /devices/:id (admin only).
func (h *DeviceHandler) Delete(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid id"})
	}
	if err := h.Devices.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Device not found"})
		}
		log.Printf("device: delete %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error deleting device"})
	}

	publishAudit(h.Audit, c, "device.deleted", "device", strconv.FormatUint(id, 10))
	return c.JSON(http.StatusOK, echo.Map{"message": "Device deleted successfully"})
}
