package services

import (
	"errors"
	"fmt"

	"lucky-draw-backend/internal/config"
	"lucky-draw-backend/internal/models"
	"lucky-draw-backend/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DrawService handles the draw-round workflow: randomized winner selection,
// redraw, confirmation with inventory settlement, and the winner/round query
// surface. CreateRound, Redraw and Confirm each run as a single database
// transaction; prize stock and participant win-flags are only ever mutated
// inside Confirm.
type DrawService interface {
	CreateRound(tenantID, eventID string, req CreateRoundRequest) (*DrawRoundResult, error)
	Redraw(tenantID, eventID, roundID string) (*DrawRoundResult, error)
	Confirm(tenantID, eventID, roundID string, winnerIDs []string) (*ConfirmResult, error)
	Winners(tenantID, eventID string, includePending bool) ([]models.Winner, error)
	Rounds(tenantID, eventID string) ([]models.DrawRound, error)
}

type CreateRoundRequest struct {
	PrizeID   string `json:"prize_id"`
	DrawCount int    `json:"draw_count"`
}

type DrawRoundResult struct {
	Round   *models.DrawRound `json:"round"`
	Winners []models.Winner   `json:"winners"`
}

type ConfirmResult struct {
	Round        *models.DrawRound `json:"round"`
	WinnersCount int               `json:"winners_count"`
}

type drawService struct {
	repo *repositories.Repository
	cfg  *config.Config
}

func NewDrawService(repo *repositories.Repository, cfg *config.Config) DrawService {
	return &drawService{repo: repo, cfg: cfg}
}

// ensureEventDrawable checks the operational preconditions for any draw
// operation: the event exists for this tenant, is locked, and is RUNNING.
func (s *drawService) ensureEventDrawable(tenantID, eventID string) (*models.Event, error) {
	event, err := s.repo.EventRepo.GetEvent(tenantID, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewDrawError("event not found", ErrEventNotFound, err)
		}
		return nil, NewDrawError("failed to get event", ErrDrawDatabase, err)
	}

	if !event.Locked {
		return nil, NewDrawError("event is not locked for drawing", ErrEventNotLocked, nil)
	}

	if event.Status != models.EventStatusRunning {
		return nil, NewDrawError("event is not running", ErrEventNotRunning, nil)
	}

	return event, nil
}

// CreateRound selects drawCount distinct eligible participants uniformly at
// random and records them as the pending winners of a new DRAWN round. Prize
// stock is not touched until the round is confirmed.
func (s *drawService) CreateRound(tenantID, eventID string, req CreateRoundRequest) (*DrawRoundResult, error) {
	event, err := s.ensureEventDrawable(tenantID, eventID)
	if err != nil {
		return nil, err
	}

	prizeID, err := uuid.Parse(req.PrizeID)
	if err != nil || req.DrawCount <= 0 {
		return nil, NewDrawError("invalid prizeId/drawCount", ErrInvalidRequest, nil)
	}

	return s.createRound(tenantID, event, prizeID, req.DrawCount)
}

// createRound is the shared selection path for CreateRound and Redraw. The
// eligibility read, random sample, round numbering and inserts commit as one
// transaction; the prize row lock serializes concurrent draws per prize.
func (s *drawService) createRound(tenantID string, event *models.Event, prizeID uuid.UUID, drawCount int) (*DrawRoundResult, error) {
	var result *DrawRoundResult

	err := s.repo.Transaction(func(tx *gorm.DB) error {
		prize, err := s.repo.PrizeRepo.GetPrizeForUpdate(tx, tenantID, event.ID.String(), prizeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewDrawError("prize not found", ErrPrizeNotFound, err)
			}
			return NewDrawError("failed to get prize", ErrDrawDatabase, err)
		}

		if prize.RemainingCount < drawCount {
			return NewDrawError(
				fmt.Sprintf("prize has %d remaining, %d requested", prize.RemainingCount, drawCount),
				ErrPrizeOutOfStock,
				nil,
			)
		}

		selected, err := s.repo.ParticipantRepo.SelectRandomEligible(tx, tenantID, event.ID.String(), drawCount)
		if err != nil {
			return NewDrawError("failed to select participants", ErrDrawDatabase, err)
		}

		if len(selected) < drawCount {
			return NewDrawError(
				fmt.Sprintf("only %d eligible participants, %d requested", len(selected), drawCount),
				ErrNotEnoughEligible,
				nil,
			)
		}

		// Round numbers are assigned under the prize lock and count voided
		// rounds too, so they are never reused.
		priorRounds, err := s.repo.DrawRepo.CountRounds(tx, tenantID, event.ID, prize.ID)
		if err != nil {
			return NewDrawError("failed to count rounds", ErrDrawDatabase, err)
		}

		round := &models.DrawRound{
			ID:        uuid.New(),
			TenantID:  tenantID,
			EventID:   event.ID,
			PrizeID:   prize.ID,
			RoundNo:   int(priorRounds) + 1,
			DrawCount: drawCount,
			Status:    models.RoundStatusDrawn,
		}
		if err := s.repo.DrawRepo.CreateRound(tx, round); err != nil {
			return NewDrawError("failed to create round", ErrDrawDatabase, err)
		}

		winners := make([]models.Winner, 0, len(selected))
		for _, participant := range selected {
			winners = append(winners, models.Winner{
				ID:            uuid.New(),
				TenantID:      tenantID,
				EventID:       event.ID,
				RoundID:       round.ID,
				PrizeID:       prize.ID,
				ParticipantID: participant.ID,
			})
		}
		if err := s.repo.DrawRepo.CreateWinners(tx, winners); err != nil {
			return NewDrawError("failed to create winners", ErrDrawDatabase, err)
		}

		created, err := s.repo.DrawRepo.GetRoundWinners(tx, round.ID)
		if err != nil {
			return NewDrawError("failed to load winners", ErrDrawDatabase, err)
		}

		result = &DrawRoundResult{Round: round, Winners: created}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"event_id":  event.ID,
		"prize_id":  prizeID,
		"round_no":  result.Round.RoundNo,
		"winners":   len(result.Winners),
	}).Info("draw round created")

	return result, nil
}

// Redraw voids a DRAWN round, deleting its pending winners, and immediately
// runs a fresh selection for the same prize and count. The void commits on its
// own: if the re-selection fails the original round stays VOIDED with no
// replacement.
func (s *drawService) Redraw(tenantID, eventID, roundID string) (*DrawRoundResult, error) {
	event, err := s.ensureEventDrawable(tenantID, eventID)
	if err != nil {
		return nil, err
	}

	// Status is re-read under a row lock inside the void transaction, so a
	// confirm racing this call either settles first (and the void is refused)
	// or waits and finds the round VOIDED.
	var round *models.DrawRound
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		locked, err := s.repo.DrawRepo.GetRoundForUpdate(tx, tenantID, eventID, roundID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewDrawError("round not found", ErrRoundNotFound, err)
			}
			return NewDrawError("failed to get round", ErrDrawDatabase, err)
		}
		round = locked

		if round.Status != models.RoundStatusDrawn {
			return NewDrawError("round is not in DRAWN state", ErrRoundNotDrawn, nil)
		}

		if err := s.repo.DrawRepo.DeleteRoundWinners(tx, round.ID); err != nil {
			return NewDrawError("failed to delete winners", ErrDrawDatabase, err)
		}
		if err := s.repo.DrawRepo.VoidRound(tx, round.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewDrawError("round is not in DRAWN state", ErrRoundNotDrawn, err)
			}
			return NewDrawError("failed to void round", ErrDrawDatabase, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"event_id":  eventID,
		"round_id":  round.ID,
		"round_no":  round.RoundNo,
	}).Info("draw round voided for redraw")

	return s.createRound(tenantID, event, round.PrizeID, round.DrawCount)
}

// Confirm settles a DRAWN round. An optional winnerIDs subset narrows the
// selection; the non-selected pending winners are removed. Confirmation is the
// only operation that sets has_won and decrements prize stock, and a confirmed
// round can never be confirmed again.
func (s *drawService) Confirm(tenantID, eventID, roundID string, winnerIDs []string) (*ConfirmResult, error) {
	event, err := s.ensureEventDrawable(tenantID, eventID)
	if err != nil {
		return nil, err
	}

	var result *ConfirmResult

	err = s.repo.Transaction(func(tx *gorm.DB) error {
		// The row lock serializes concurrent confirms of the same round: the
		// loser waits here and then reads the settled status, so a
		// double-submit can never decrement stock twice.
		round, err := s.repo.DrawRepo.GetRoundForUpdate(tx, tenantID, eventID, roundID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewDrawError("round not found", ErrRoundNotFound, err)
			}
			return NewDrawError("failed to get round", ErrDrawDatabase, err)
		}

		if round.Status == models.RoundStatusConfirmed {
			return NewDrawError("round is already confirmed", ErrRoundAlreadyConfirmed, nil)
		}
		if round.Status != models.RoundStatusDrawn {
			return NewDrawError("round is not in DRAWN state", ErrRoundNotDrawn, nil)
		}

		winners, err := s.repo.DrawRepo.GetRoundWinners(tx, round.ID)
		if err != nil {
			return NewDrawError("failed to load winners", ErrDrawDatabase, err)
		}
		if len(winners) == 0 {
			return NewDrawError("round has no winners", ErrNoWinners, nil)
		}

		drawn := make(map[uuid.UUID]bool, len(winners))
		selected := make([]uuid.UUID, 0, len(winners))
		for _, winner := range winners {
			drawn[winner.ParticipantID] = true
			selected = append(selected, winner.ParticipantID)
		}

		if len(winnerIDs) > 0 {
			seen := make(map[uuid.UUID]bool, len(winnerIDs))
			requested := make([]uuid.UUID, 0, len(winnerIDs))
			for _, raw := range winnerIDs {
				id, err := uuid.Parse(raw)
				if err != nil || !drawn[id] {
					return NewDrawError(
						fmt.Sprintf("participant %s is not a winner of this round", raw),
						ErrInvalidWinnerSelection,
						nil,
					)
				}
				if seen[id] {
					continue
				}
				seen[id] = true
				requested = append(requested, id)
			}
			selected = requested
		}

		if len(selected) == 0 {
			return NewDrawError("no winners selected", ErrNoWinnersSelected, nil)
		}

		// Stock is re-checked under the prize lock: other rounds may have been
		// confirmed since this one was drawn.
		prize, err := s.repo.PrizeRepo.GetPrizeForUpdate(tx, tenantID, eventID, round.PrizeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewDrawError("prize not found", ErrPrizeNotFound, err)
			}
			return NewDrawError("failed to get prize", ErrDrawDatabase, err)
		}

		if prize.RemainingCount < len(selected) {
			return NewDrawError(
				fmt.Sprintf("prize has %d remaining, %d selected", prize.RemainingCount, len(selected)),
				ErrPrizeOutOfStock,
				nil,
			)
		}

		if len(selected) < len(winners) {
			if err := s.repo.DrawRepo.DeleteRoundWinnersExcept(tx, round.ID, selected); err != nil {
				return NewDrawError("failed to narrow winners", ErrDrawDatabase, err)
			}
		}

		if err := s.repo.ParticipantRepo.MarkWon(tx, selected); err != nil {
			return NewDrawError("failed to mark winners", ErrDrawDatabase, err)
		}

		if err := s.repo.PrizeRepo.UpdateRemainingCount(tx, prize.ID, prize.RemainingCount-len(selected)); err != nil {
			return NewDrawError("failed to update prize stock", ErrDrawDatabase, err)
		}

		if err := s.repo.DrawRepo.ConfirmRound(tx, round.ID, len(selected)); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewDrawError("round is already confirmed", ErrRoundAlreadyConfirmed, err)
			}
			return NewDrawError("failed to confirm round", ErrDrawDatabase, err)
		}

		round.Status = models.RoundStatusConfirmed
		round.DrawCount = len(selected)
		result = &ConfirmResult{Round: round, WinnersCount: len(selected)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"event_id":  event.ID,
		"round_id":  result.Round.ID,
		"round_no":  result.Round.RoundNo,
		"confirmed": result.WinnersCount,
	}).Info("draw round confirmed")

	return result, nil
}

// Winners returns the event's winner rows in chronological reveal order,
// confirmed only by default, pending rounds included when requested.
func (s *drawService) Winners(tenantID, eventID string, includePending bool) ([]models.Winner, error) {
	if _, err := s.repo.EventRepo.GetEvent(tenantID, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewDrawError("event not found", ErrEventNotFound, err)
		}
		return nil, NewDrawError("failed to get event", ErrDrawDatabase, err)
	}

	statuses := []string{models.RoundStatusConfirmed}
	if includePending {
		statuses = []string{models.RoundStatusDrawn, models.RoundStatusConfirmed}
	}

	winners, err := s.repo.DrawRepo.ListWinners(tenantID, eventID, statuses)
	if err != nil {
		return nil, NewDrawError("failed to list winners", ErrDrawDatabase, err)
	}
	return winners, nil
}

// Rounds returns the full round history for the event, every redraw included.
func (s *drawService) Rounds(tenantID, eventID string) ([]models.DrawRound, error) {
	if _, err := s.repo.EventRepo.GetEvent(tenantID, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewDrawError("event not found", ErrEventNotFound, err)
		}
		return nil, NewDrawError("failed to get event", ErrDrawDatabase, err)
	}

	rounds, err := s.repo.DrawRepo.ListRounds(tenantID, eventID)
	if err != nil {
		return nil, NewDrawError("failed to list rounds", ErrDrawDatabase, err)
	}
	return rounds, nil
}

// Error handling types and constants
type DrawErrorCode string

const (
	ErrEventNotFound          DrawErrorCode = "EVENT_NOT_FOUND"
	ErrEventNotLocked         DrawErrorCode = "EVENT_NOT_LOCKED"
	ErrEventNotRunning        DrawErrorCode = "EVENT_NOT_RUNNING"
	ErrInvalidRequest         DrawErrorCode = "INVALID_REQUEST"
	ErrPrizeNotFound          DrawErrorCode = "PRIZE_NOT_FOUND"
	ErrPrizeOutOfStock        DrawErrorCode = "PRIZE_OUT_OF_STOCK"
	ErrNotEnoughEligible      DrawErrorCode = "NOT_ENOUGH_ELIGIBLE"
	ErrRoundNotFound          DrawErrorCode = "ROUND_NOT_FOUND"
	ErrRoundNotDrawn          DrawErrorCode = "ROUND_NOT_DRAWN"
	ErrRoundAlreadyConfirmed  DrawErrorCode = "ROUND_ALREADY_CONFIRMED"
	ErrNoWinners              DrawErrorCode = "NO_WINNERS"
	ErrNoWinnersSelected      DrawErrorCode = "NO_WINNERS_SELECTED"
	ErrInvalidWinnerSelection DrawErrorCode = "INVALID_WINNER_SELECTION"
	ErrDrawDatabase           DrawErrorCode = "DATABASE_ERROR"
)

type DrawError struct {
	Message string        `json:"message"`
	Code    DrawErrorCode `json:"code"`
	Details error         `json:"details,omitempty"`
}

func (e *DrawError) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("%s [%s]: %v", e.Message, e.Code, e.Details)
	}
	return fmt.Sprintf("%s [%s]", e.Message, e.Code)
}

func NewDrawError(message string, code DrawErrorCode, details error) *DrawError {
	return &DrawError{
		Message: message,
		Code:    code,
		Details: details,
	}
}

// Helper functions for error checking
func IsDrawError(err error) bool {
	var drawErr *DrawError
	return errors.As(err, &drawErr)
}

func GetDrawErrorCode(err error) DrawErrorCode {
	var drawErr *DrawError
	if errors.As(err, &drawErr) {
		return drawErr.Code
	}
	return ""
}
