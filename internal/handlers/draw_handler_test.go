package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lucky-draw-backend/internal/middleware"
	"lucky-draw-backend/internal/models"
	"lucky-draw-backend/internal/services"

	"github.com/gofiber/fiber/v2"
)

type stubDrawService struct {
	confirms  int
	tenantID  string
	roundID   string
	winnerIDs []string
}

func (s *stubDrawService) CreateRound(tenantID, eventID string, req services.CreateRoundRequest) (*services.DrawRoundResult, error) {
	return &services.DrawRoundResult{}, nil
}

func (s *stubDrawService) Redraw(tenantID, eventID, roundID string) (*services.DrawRoundResult, error) {
	return &services.DrawRoundResult{}, nil
}

func (s *stubDrawService) Confirm(tenantID, eventID, roundID string, winnerIDs []string) (*services.ConfirmResult, error) {
	s.confirms++
	s.tenantID = tenantID
	s.roundID = roundID
	s.winnerIDs = winnerIDs
	return &services.ConfirmResult{Round: &models.DrawRound{}, WinnersCount: len(winnerIDs)}, nil
}

func (s *stubDrawService) Winners(tenantID, eventID string, includePending bool) ([]models.Winner, error) {
	return nil, nil
}

func (s *stubDrawService) Rounds(tenantID, eventID string) ([]models.DrawRound, error) {
	return nil, nil
}

func confirmApp(stub *stubDrawService) *fiber.App {
	app := fiber.New()
	h := &Handler{drawSvc: stub}
	app.Post("/events/:id/draw/rounds/:round_id/confirm", middleware.RequireTenant, h.ConfirmRound)
	return app
}

func TestConfirmRoundBody(t *testing.T) {
	t.Run("bodyless confirm settles the full selection", func(t *testing.T) {
		stub := &stubDrawService{}
		app := confirmApp(stub)

		req := httptest.NewRequest(http.MethodPost, "/events/e1/draw/rounds/r1/confirm", nil)
		req.Header.Set("X-Tenant-Id", "acme")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Test: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		if stub.confirms != 1 {
			t.Fatalf("confirm calls = %d, want 1", stub.confirms)
		}
		if stub.winnerIDs != nil {
			t.Errorf("winner ids = %v, want nil for a bodyless confirm", stub.winnerIDs)
		}
		if stub.tenantID != "acme" || stub.roundID != "r1" {
			t.Errorf("confirm called with %s/%s, want acme/r1", stub.tenantID, stub.roundID)
		}
	})

	t.Run("json body narrows the selection", func(t *testing.T) {
		stub := &stubDrawService{}
		app := confirmApp(stub)

		body := strings.NewReader(`{"winner_ids":["a","b"]}`)
		req := httptest.NewRequest(http.MethodPost, "/events/e1/draw/rounds/r1/confirm", body)
		req.Header.Set("X-Tenant-Id", "acme")
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Test: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		if len(stub.winnerIDs) != 2 {
			t.Errorf("winner ids = %v, want 2 entries", stub.winnerIDs)
		}
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		stub := &stubDrawService{}
		app := confirmApp(stub)

		body := strings.NewReader(`{"winner_ids":`)
		req := httptest.NewRequest(http.MethodPost, "/events/e1/draw/rounds/r1/confirm", body)
		req.Header.Set("X-Tenant-Id", "acme")
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Test: %v", err)
		}
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Fatalf("status = %d, want 400", resp.StatusCode)
		}
		if stub.confirms != 0 {
			t.Errorf("confirm calls = %d, want 0", stub.confirms)
		}
	})
}
