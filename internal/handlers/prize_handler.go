package handlers

import (
	"lucky-draw-backend/internal/middleware"
	"lucky-draw-backend/internal/services"
	"lucky-draw-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type CreatePrizeRequest struct {
	Level      string `json:"level" validate:"required"`
	Name       string `json:"name" validate:"required"`
	TotalCount int    `json:"total_count" validate:"gte=0"`
	OrderIndex int    `json:"order_index"`
}

type UpdatePrizeRequest struct {
	Level          *string `json:"level"`
	Name           *string `json:"name"`
	TotalCount     *int    `json:"total_count" validate:"omitempty,gte=0"`
	RemainingCount *int    `json:"remaining_count" validate:"omitempty,gte=0"`
	OrderIndex     *int    `json:"order_index"`
}

type ReorderPrizesRequest struct {
	Items []services.ReorderPrizeItem `json:"items" validate:"required,min=1,dive"`
}

// CreatePrize adds a prize tier to a draft event
// @Summary Create prize
// @Tags Prizes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Tenant-Id header string true "Tenant ID"
// @Param id path string true "Event ID"
// @Param request body CreatePrizeRequest true "Prize data"
// @Success 201 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Router /events/{id}/prizes [post]
func (h *Handler) CreatePrize(c *fiber.Ctx) error {
	var req CreatePrizeRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	prize, err := h.prizeSvc.CreatePrize(middleware.GetTenantID(c), c.Params("id"), services.CreatePrizeRequest{
		Level:      req.Level,
		Name:       req.Name,
		TotalCount: req.TotalCount,
		OrderIndex: req.OrderIndex,
	})
	if err != nil {
		status := fiber.StatusBadRequest
		if err.Error() == "event not found" {
			status = fiber.StatusNotFound
		}
		return utils.Error(c, err.Error(), status)
	}

	return utils.Success(c, prize, "Prize created successfully", fiber.StatusCreated)
}

// ListPrizes lists an event's prizes in display order
// @Summary List prizes
// @Tags Prizes
// @Produce json
// @Security BearerAuth
// @Param X-Tenant-Id header string true "Tenant ID"
// @Param id path string true "Event ID"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /events/{id}/prizes [get]
func (h *Handler) ListPrizes(c *fiber.Ctx) error {
	prizes, err := h.prizeSvc.ListPrizes(middleware.GetTenantID(c), c.Params("id"))
	if err != nil {
		status := fiber.StatusInternalServerError
		if err.Error() == "event not found" {
			status = fiber.StatusNotFound
		}
		return utils.Error(c, err.Error(), status)
	}

	return utils.Success(c, prizes, "Prizes retrieved successfully")
}

// UpdatePrize updates a prize on a draft event
// @Summary Update prize
// @Tags Prizes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Tenant-Id header string true "Tenant ID"
// @Param id path string true "Event ID"
// @Param prize_id path string true "Prize ID"
// @Param request body UpdatePrizeRequest true "Prize data"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Router /events/{id}/prizes/{prize_id} [patch]
func (h *Handler) UpdatePrize(c *fiber.Ctx) error {
	var req UpdatePrizeRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	prize, err := h.prizeSvc.UpdatePrize(middleware.GetTenantID(c), c.Params("id"), c.Params("prize_id"), services.UpdatePrizeRequest{
		Level:          req.Level,
		Name:           req.Name,
		TotalCount:     req.TotalCount,
		RemainingCount: req.RemainingCount,
		OrderIndex:     req.OrderIndex,
	})
	if err != nil {
		status := fiber.StatusBadRequest
		if err.Error() == "event not found" || err.Error() == "prize not found" {
			status = fiber.StatusNotFound
		}
		return utils.Error(c, err.Error(), status)
	}

	return utils.Success(c, prize, "Prize updated successfully")
}

// ReorderPrizes applies a new display order to an event's prizes
// @Summary Reorder prizes
// @Tags Prizes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Tenant-Id header string true "Tenant ID"
// @Param id path string true "Event ID"
// @Param request body ReorderPrizesRequest true "Prize order"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Router /events/{id}/prizes/reorder [post]
func (h *Handler) ReorderPrizes(c *fiber.Ctx) error {
	var req ReorderPrizesRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	prizes, err := h.prizeSvc.ReorderPrizes(middleware.GetTenantID(c), c.Params("id"), req.Items)
	if err != nil {
		status := fiber.StatusBadRequest
		if err.Error() == "event not found" {
			status = fiber.StatusNotFound
		}
		return utils.Error(c, err.Error(), status)
	}

	return utils.Success(c, prizes, "Prizes reordered successfully")
}
