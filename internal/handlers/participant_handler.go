package handlers

import (
	"strings"

	"lucky-draw-backend/internal/middleware"
	"lucky-draw-backend/internal/services"
	"lucky-draw-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type CreateParticipantRequest struct {
	DisplayName string `json:"display_name" validate:"required"`
	UniqueKey   string `json:"unique_key"`
	EmployeeID  string `json:"employee_id"`
	Email       string `json:"email" validate:"omitempty,email"`
	Username    string `json:"username"`
	Department  string `json:"department"`
	Title       string `json:"title"`
	OrgPath     string `json:"org_path"`
	CustomField string `json:"custom_field"`
}

type ImportParticipantsRequest struct {
	Items []services.ParticipantInput `json:"items"`
	CSV   string                      `json:"csv"`
}

// CreateParticipant adds a single participant to an unlocked event
// @Summary Create participant
// @Tags Participants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Tenant-Id header string true "Tenant ID"
// @Param id path string true "Event ID"
// @Param request body CreateParticipantRequest true "Participant data"
// @Success 201 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Router /events/{id}/participants [post]
func (h *Handler) CreateParticipant(c *fiber.Ctx) error {
	var req CreateParticipantRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	participant, err := h.participantSvc.CreateParticipant(middleware.GetTenantID(c), c.Params("id"), services.ParticipantInput{
		DisplayName: req.DisplayName,
		UniqueKey:   req.UniqueKey,
		EmployeeID:  req.EmployeeID,
		Email:       req.Email,
		Username:    req.Username,
		Department:  req.Department,
		Title:       req.Title,
		OrgPath:     req.OrgPath,
		CustomField: req.CustomField,
	})
	if err != nil {
		status := fiber.StatusBadRequest
		if err.Error() == "event not found" {
			status = fiber.StatusNotFound
		}
		return utils.Error(c, err.Error(), status)
	}

	return utils.Success(c, participant, "Participant created successfully", fiber.StatusCreated)
}

// ImportParticipants bulk-loads a roster from JSON items or a CSV payload
// @Summary Import participants
// @Tags Participants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Tenant-Id header string true "Tenant ID"
// @Param id path string true "Event ID"
// @Param request body ImportParticipantsRequest true "Roster payload"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Router /events/{id}/participants/import [post]
func (h *Handler) ImportParticipants(c *fiber.Ctx) error {
	req := services.ImportParticipantsRequest{}

	// Raw CSV bodies are accepted as-is; everything else is the JSON shape.
	contentType := string(c.Request().Header.ContentType())
	if strings.HasPrefix(contentType, "text/csv") || strings.HasPrefix(contentType, "text/plain") {
		req.CSV = string(c.Body())
	} else {
		if err := c.BodyParser(&req); err != nil {
			return utils.Error(c, "Invalid request body", fiber.StatusBadRequest)
		}
	}

	result, err := h.participantSvc.ImportParticipants(middleware.GetTenantID(c), c.Params("id"), req)
	if err != nil {
		status := fiber.StatusBadRequest
		if err.Error() == "event not found" {
			status = fiber.StatusNotFound
		}
		return utils.Error(c, err.Error(), status)
	}

	return utils.Success(c, result, "Participants imported successfully")
}

// ListParticipants lists an event's roster
// @Summary List participants
// @Tags Participants
// @Produce json
// @Security BearerAuth
// @Param X-Tenant-Id header string true "Tenant ID"
// @Param id path string true "Event ID"
// @Param status query string false "Filter: eligible, checkedin or won"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Router /events/{id}/participants [get]
func (h *Handler) ListParticipants(c *fiber.Ctx) error {
	participants, err := h.participantSvc.ListParticipants(middleware.GetTenantID(c), c.Params("id"), c.Query("status"))
	if err != nil {
		status := fiber.StatusBadRequest
		if err.Error() == "event not found" {
			status = fiber.StatusNotFound
		}
		return utils.Error(c, err.Error(), status)
	}

	return utils.Success(c, participants, "Participants retrieved successfully")
}

// GetFieldOptions aggregates distinct values for filterable participant columns
// @Summary Participant field options
// @Tags Participants
// @Produce json
// @Security BearerAuth
// @Param X-Tenant-Id header string true "Tenant ID"
// @Param id path string true "Event ID"
// @Param keys query string false "Comma-separated columns: department, title, org_path"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /events/{id}/participants/field-options [get]
func (h *Handler) GetFieldOptions(c *fiber.Ctx) error {
	var keys []string
	if raw := c.Query("keys"); raw != "" {
		for _, key := range strings.Split(raw, ",") {
			if key = strings.TrimSpace(key); key != "" {
				keys = append(keys, key)
			}
		}
	} else {
		keys = []string{"department", "title", "org_path"}
	}

	options, err := h.participantSvc.FieldOptions(middleware.GetTenantID(c), c.Params("id"), keys)
	if err != nil {
		status := fiber.StatusInternalServerError
		if err.Error() == "event not found" {
			status = fiber.StatusNotFound
		}
		return utils.Error(c, err.Error(), status)
	}

	return utils.Success(c, options, "Field options retrieved successfully")
}
