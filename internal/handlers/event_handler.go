package handlers

import (
	"lucky-draw-backend/internal/middleware"
	"lucky-draw-backend/internal/services"
	"lucky-draw-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type CreateEventRequest struct {
	Name               string   `json:"name" validate:"required"`
	ParticipantMode    string   `json:"participant_mode" validate:"omitempty,oneof=csv checkin mixed"`
	RequiredFields     []string `json:"required_fields"`
	CheckinDeviceLimit *bool    `json:"checkin_device_limit"`
	CustomFieldLabel   string   `json:"custom_field_label"`
}

type UpdateEventRequest struct {
	Name               *string  `json:"name"`
	ParticipantMode    *string  `json:"participant_mode" validate:"omitempty,oneof=csv checkin mixed"`
	RequiredFields     []string `json:"required_fields"`
	CheckinDeviceLimit *bool    `json:"checkin_device_limit"`
	CustomFieldLabel   *string  `json:"custom_field_label"`
}

// CreateEvent creates a new event
// @Summary Create event
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Tenant-Id header string true "Tenant ID"
// @Param request body CreateEventRequest true "Event data"
// @Success 201 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Router /events [post]
func (h *Handler) CreateEvent(c *fiber.Ctx) error {
	var req CreateEventRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	event, err := h.eventSvc.CreateEvent(middleware.GetTenantID(c), services.CreateEventRequest{
		Name:               req.Name,
		ParticipantMode:    req.ParticipantMode,
		RequiredFields:     req.RequiredFields,
		CheckinDeviceLimit: req.CheckinDeviceLimit,
		CustomFieldLabel:   req.CustomFieldLabel,
	})
	if err != nil {
		return utils.Error(c, err.Error(), fiber.StatusBadRequest)
	}

	return utils.Success(c, event, "Event created successfully", fiber.StatusCreated)
}

// GetEvent retrieves a single event
// @Summary Get event
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param X-Tenant-Id header string true "Tenant ID"
// @Param id path string true "Event ID"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /events/{id} [get]
func (h *Handler) GetEvent(c *fiber.Ctx) error {
	event, err := h.eventSvc.GetEvent(middleware.GetTenantID(c), c.Params("id"))
	if err != nil {
		return utils.Error(c, err.Error(), fiber.StatusNotFound)
	}

	return utils.Success(c, event, "Event retrieved successfully")
}

// UpdateEvent updates a draft event
// @Summary Update event
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Tenant-Id header string true "Tenant ID"
// @Param id path string true "Event ID"
// @Param request body UpdateEventRequest true "Event data"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Router /events/{id} [patch]
func (h *Handler) UpdateEvent(c *fiber.Ctx) error {
	var req UpdateEventRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	event, err := h.eventSvc.UpdateEvent(middleware.GetTenantID(c), c.Params("id"), services.UpdateEventRequest{
		Name:               req.Name,
		ParticipantMode:    req.ParticipantMode,
		RequiredFields:     req.RequiredFields,
		CheckinDeviceLimit: req.CheckinDeviceLimit,
		CustomFieldLabel:   req.CustomFieldLabel,
	})
	if err != nil {
		status := fiber.StatusBadRequest
		if err.Error() == "event not found" {
			status = fiber.StatusNotFound
		}
		return utils.Error(c, err.Error(), status)
	}

	return utils.Success(c, event, "Event updated successfully")
}

// LockEvent freezes the event roster and prizes
// @Summary Lock event
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param X-Tenant-Id header string true "Tenant ID"
// @Param id path string true "Event ID"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /events/{id}/lock [post]
func (h *Handler) LockEvent(c *fiber.Ctx) error {
	event, err := h.eventSvc.LockEvent(middleware.GetTenantID(c), c.Params("id"))
	if err != nil {
		status := fiber.StatusBadRequest
		if err.Error() == "event not found" {
			status = fiber.StatusNotFound
		}
		return utils.Error(c, err.Error(), status)
	}

	return utils.Success(c, event, "Event locked successfully")
}

// StartEvent moves a locked event to running
// @Summary Start event
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param X-Tenant-Id header string true "Tenant ID"
// @Param id path string true "Event ID"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Router /events/{id}/start [post]
func (h *Handler) StartEvent(c *fiber.Ctx) error {
	event, err := h.eventSvc.StartEvent(middleware.GetTenantID(c), c.Params("id"))
	if err != nil {
		status := fiber.StatusBadRequest
		if err.Error() == "event not found" {
			status = fiber.StatusNotFound
		}
		return utils.Error(c, err.Error(), status)
	}

	return utils.Success(c, event, "Event started successfully")
}

// EndEvent moves a running event to ended
// @Summary End event
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param X-Tenant-Id header string true "Tenant ID"
// @Param id path string true "Event ID"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Router /events/{id}/end [post]
func (h *Handler) EndEvent(c *fiber.Ctx) error {
	event, err := h.eventSvc.EndEvent(middleware.GetTenantID(c), c.Params("id"))
	if err != nil {
		status := fiber.StatusBadRequest
		if err.Error() == "event not found" {
			status = fiber.StatusNotFound
		}
		return utils.Error(c, err.Error(), status)
	}

	return utils.Success(c, event, "Event ended successfully")
}
