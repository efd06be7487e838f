package handlers

import (
	"lucky-draw-backend/internal/config"
	"lucky-draw-backend/internal/middleware"
	"lucky-draw-backend/internal/services"
	"lucky-draw-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	authSvc        *services.AuthService
	eventSvc       *services.EventService
	prizeSvc       *services.PrizeService
	participantSvc *services.ParticipantService
	checkinSvc     services.CheckinService
	drawSvc        services.DrawService
	cfg            *config.Config
}

func NewHandler(
	authSvc *services.AuthService,
	eventSvc *services.EventService,
	prizeSvc *services.PrizeService,
	participantSvc *services.ParticipantService,
	checkinSvc services.CheckinService,
	drawSvc services.DrawService,
	cfg *config.Config,
) *Handler {
	return &Handler{
		authSvc:        authSvc,
		eventSvc:       eventSvc,
		prizeSvc:       prizeSvc,
		participantSvc: participantSvc,
		checkinSvc:     checkinSvc,
		drawSvc:        drawSvc,
		cfg:            cfg,
	}
}

func (h *Handler) RegisterRoutes(router fiber.Router) {
	// Public routes
	auth := router.Group("/auth")
	{
		auth.Post("/login", h.Login)
	}

	// Tenant-scoped routes; the partition key is mandatory on every call.
	tenant := router.Group("", middleware.RequireTenant)
	{
		events := tenant.Group("/events")
		{
			// Check-in surface is open to scanning devices, no operator login.
			events.Get("/:id/checkin/token", h.GetCheckinToken)
			events.Post("/:id/checkin", h.Checkin)
		}

		// Operator console (JWT required)
		protected := tenant.Group("", middleware.JWTMiddleware(h.cfg))
		{
			protected.Get("/profile", h.GetProfile)

			eventsOp := protected.Group("/events")
			{
				eventsOp.Post("/", h.CreateEvent)
				eventsOp.Get("/:id", h.GetEvent)
				eventsOp.Patch("/:id", h.UpdateEvent)
				eventsOp.Post("/:id/lock", h.LockEvent)
				eventsOp.Post("/:id/start", h.StartEvent)
				eventsOp.Post("/:id/end", h.EndEvent)

				eventsOp.Post("/:id/prizes", h.CreatePrize)
				eventsOp.Get("/:id/prizes", h.ListPrizes)
				eventsOp.Patch("/:id/prizes/:prize_id", h.UpdatePrize)
				eventsOp.Post("/:id/prizes/reorder", h.ReorderPrizes)

				eventsOp.Post("/:id/participants", h.CreateParticipant)
				eventsOp.Get("/:id/participants", h.ListParticipants)
				eventsOp.Post("/:id/participants/import", h.ImportParticipants)
				eventsOp.Get("/:id/participants/field-options", h.GetFieldOptions)

				eventsOp.Post("/:id/draw/rounds", h.CreateDrawRound)
				eventsOp.Get("/:id/draw/rounds", h.ListDrawRounds)
				eventsOp.Post("/:id/draw/rounds/:round_id/redraw", h.RedrawRound)
				eventsOp.Post("/:id/draw/rounds/:round_id/confirm", h.ConfirmRound)
				eventsOp.Get("/:id/winners", h.ListWinners)
			}

			// Admin only routes
			admin := protected.Group("/admin", middleware.AdminOnly)
			{
				admin.Post("/users", h.CreateUser)
			}
		}
	}
}

// ErrorHandler handles global errors
func ErrorHandler(c *fiber.Ctx, err error) error {
	// Default to internal server error
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Log internal errors
	if code >= 500 {
		logrus.WithError(err).Error("unhandled request error")
	}

	return utils.Error(c, message, code)
}
