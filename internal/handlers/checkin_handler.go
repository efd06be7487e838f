package handlers

import (
	"lucky-draw-backend/internal/middleware"
	"lucky-draw-backend/internal/services"
	"lucky-draw-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// GetCheckinToken issues a fresh signed token for the event's check-in QR screen
// @Summary Get check-in token
// @Tags Checkin
// @Produce json
// @Param X-Tenant-Id header string true "Tenant ID"
// @Param id path string true "Event ID"
// @Param format query string false "Set to png for a QR code image"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /events/{id}/checkin/token [get]
func (h *Handler) GetCheckinToken(c *fiber.Ctx) error {
	token, err := h.checkinSvc.Token(middleware.GetTenantID(c), c.Params("id"))
	if err != nil {
		status := fiber.StatusBadRequest
		if err.Error() == "event not found" {
			status = fiber.StatusNotFound
		}
		return utils.Error(c, err.Error(), status)
	}

	if c.Query("format") == "png" {
		png, err := utils.GenerateQRCodePNG(token.QRURL, 256)
		if err != nil {
			return utils.Error(c, "Failed to generate QR code", fiber.StatusInternalServerError)
		}
		c.Set(fiber.HeaderContentType, "image/png")
		return c.Send(png)
	}

	return utils.Success(c, token, "Check-in token issued")
}

// Checkin marks a participant as checked in using a scanned token
// @Summary Check in participant
// @Tags Checkin
// @Accept json
// @Produce json
// @Param X-Tenant-Id header string true "Tenant ID"
// @Param id path string true "Event ID"
// @Param request body services.CheckinRequest true "Check-in payload"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Router /events/{id}/checkin [post]
func (h *Handler) Checkin(c *fiber.Ctx) error {
	var req services.CheckinRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, "Invalid request body", fiber.StatusBadRequest)
	}

	result, err := h.checkinSvc.Checkin(middleware.GetTenantID(c), c.Params("id"), req)
	if err != nil {
		status := fiber.StatusBadRequest
		if err.Error() == "event not found" {
			status = fiber.StatusNotFound
		}
		return utils.Error(c, err.Error(), status)
	}

	return utils.Success(c, result, "Check-in processed")
}
