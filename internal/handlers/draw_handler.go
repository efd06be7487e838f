package handlers

import (
	"lucky-draw-backend/internal/middleware"
	"lucky-draw-backend/internal/services"
	"lucky-draw-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type CreateDrawRoundRequest struct {
	PrizeID   string `json:"prize_id" validate:"required,uuid"`
	DrawCount int    `json:"draw_count" validate:"required,gt=0"`
}

type ConfirmRoundRequest struct {
	WinnerIDs []string `json:"winner_ids"`
}

// drawError maps a draw failure to an HTTP response, keeping the machine
// code alongside the message so the stage UI can react per case.
func drawError(c *fiber.Ctx, err error) error {
	if !services.IsDrawError(err) {
		return utils.Error(c, err.Error(), fiber.StatusInternalServerError)
	}

	code := services.GetDrawErrorCode(err)
	status := fiber.StatusBadRequest
	switch code {
	case services.ErrEventNotFound, services.ErrPrizeNotFound, services.ErrRoundNotFound:
		status = fiber.StatusNotFound
	case services.ErrDrawDatabase:
		status = fiber.StatusInternalServerError
	}

	return utils.ErrorWithCode(c, err.Error(), string(code), status)
}

// CreateDrawRound draws a new round of pending winners for a prize
// @Summary Create draw round
// @Tags Draw
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Tenant-Id header string true "Tenant ID"
// @Param id path string true "Event ID"
// @Param request body CreateDrawRoundRequest true "Draw parameters"
// @Success 201 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Router /events/{id}/draw/rounds [post]
func (h *Handler) CreateDrawRound(c *fiber.Ctx) error {
	var req CreateDrawRoundRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	result, err := h.drawSvc.CreateRound(middleware.GetTenantID(c), c.Params("id"), services.CreateRoundRequest{
		PrizeID:   req.PrizeID,
		DrawCount: req.DrawCount,
	})
	if err != nil {
		return drawError(c, err)
	}

	return utils.Success(c, result, "Draw round created successfully", fiber.StatusCreated)
}

// RedrawRound voids a pending round and draws a replacement
// @Summary Redraw round
// @Tags Draw
// @Produce json
// @Security BearerAuth
// @Param X-Tenant-Id header string true "Tenant ID"
// @Param id path string true "Event ID"
// @Param round_id path string true "Round ID"
// @Success 201 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Router /events/{id}/draw/rounds/{round_id}/redraw [post]
func (h *Handler) RedrawRound(c *fiber.Ctx) error {
	result, err := h.drawSvc.Redraw(middleware.GetTenantID(c), c.Params("id"), c.Params("round_id"))
	if err != nil {
		return drawError(c, err)
	}

	return utils.Success(c, result, "Round redrawn successfully", fiber.StatusCreated)
}

// ConfirmRound finalizes a pending round, settling stock and win flags
// @Summary Confirm round
// @Tags Draw
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Tenant-Id header string true "Tenant ID"
// @Param id path string true "Event ID"
// @Param round_id path string true "Round ID"
// @Param request body ConfirmRoundRequest true "Winner selection"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Router /events/{id}/draw/rounds/{round_id}/confirm [post]
func (h *Handler) ConfirmRound(c *fiber.Ctx) error {
	// The body is optional: a bare confirm settles every pending winner.
	var req ConfirmRoundRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return utils.Error(c, "Invalid request body", fiber.StatusBadRequest)
		}
	}

	result, err := h.drawSvc.Confirm(middleware.GetTenantID(c), c.Params("id"), c.Params("round_id"), req.WinnerIDs)
	if err != nil {
		return drawError(c, err)
	}

	return utils.Success(c, result, "Round confirmed successfully")
}

// ListDrawRounds lists an event's draw rounds, newest first
// @Summary List draw rounds
// @Tags Draw
// @Produce json
// @Security BearerAuth
// @Param X-Tenant-Id header string true "Tenant ID"
// @Param id path string true "Event ID"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /events/{id}/draw/rounds [get]
func (h *Handler) ListDrawRounds(c *fiber.Ctx) error {
	rounds, err := h.drawSvc.Rounds(middleware.GetTenantID(c), c.Params("id"))
	if err != nil {
		return drawError(c, err)
	}

	return utils.Success(c, rounds, "Draw rounds retrieved successfully")
}

// ListWinners lists confirmed winners, optionally including pending ones
// @Summary List winners
// @Tags Draw
// @Produce json
// @Security BearerAuth
// @Param X-Tenant-Id header string true "Tenant ID"
// @Param id path string true "Event ID"
// @Param include_pending query bool false "Include winners of unconfirmed rounds"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /events/{id}/winners [get]
func (h *Handler) ListWinners(c *fiber.Ctx) error {
	winners, err := h.drawSvc.Winners(middleware.GetTenantID(c), c.Params("id"), c.QueryBool("include_pending"))
	if err != nil {
		return drawError(c, err)
	}

	return utils.Success(c, winners, "Winners retrieved successfully")
}
