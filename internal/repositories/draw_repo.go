package repositories

import (
	"fmt"

	"lucky-draw-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type drawRepo struct {
	db *gorm.DB
}

func NewDrawRepository(db *gorm.DB) DrawRepository {
	return &drawRepo{db: db}
}

func (r *drawRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *drawRepo) CreateRound(tx *gorm.DB, round *models.DrawRound) error {
	return r.conn(tx).Create(round).Error
}

func (r *drawRepo) GetRound(tx *gorm.DB, tenantID, eventID, roundID string) (*models.DrawRound, error) {
	var round models.DrawRound
	if err := r.conn(tx).
		Where("id = ? AND tenant_id = ? AND event_id = ?", roundID, tenantID, eventID).
		First(&round).Error; err != nil {
		return nil, err
	}
	return &round, nil
}

// GetRoundForUpdate fetches the round row with a FOR UPDATE lock, so that a
// concurrent confirm or redraw of the same round waits here and then sees the
// committed status instead of a stale DRAWN.
func (r *drawRepo) GetRoundForUpdate(tx *gorm.DB, tenantID, eventID, roundID string) (*models.DrawRound, error) {
	var round models.DrawRound
	if err := r.conn(tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND tenant_id = ? AND event_id = ?", roundID, tenantID, eventID).
		First(&round).Error; err != nil {
		return nil, err
	}
	return &round, nil
}

// CountRounds counts every round ever created for the (event, prize) pair,
// voided ones included. Round numbers are never reused.
func (r *drawRepo) CountRounds(tx *gorm.DB, tenantID string, eventID, prizeID uuid.UUID) (int64, error) {
	var count int64
	if err := r.conn(tx).Model(&models.DrawRound{}).
		Where("tenant_id = ? AND event_id = ? AND prize_id = ?", tenantID, eventID, prizeID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// VoidRound and ConfirmRound only move a round out of DRAWN. The status guard
// makes the transition one-way at the row level: a round that already settled
// is never voided or confirmed again, whatever the caller believed it saw.
func (r *drawRepo) VoidRound(tx *gorm.DB, roundID uuid.UUID) error {
	result := r.conn(tx).Model(&models.DrawRound{}).
		Where("id = ? AND status = ?", roundID, models.RoundStatusDrawn).
		Update("status", models.RoundStatusVoided)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *drawRepo) ConfirmRound(tx *gorm.DB, roundID uuid.UUID, drawCount int) error {
	result := r.conn(tx).Model(&models.DrawRound{}).
		Where("id = ? AND status = ?", roundID, models.RoundStatusDrawn).
		Updates(map[string]interface{}{
			"status":     models.RoundStatusConfirmed,
			"draw_count": drawCount,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *drawRepo) CreateWinners(tx *gorm.DB, winners []models.Winner) error {
	if len(winners) == 0 {
		return nil
	}
	return r.conn(tx).Create(&winners).Error
}

func (r *drawRepo) GetRoundWinners(tx *gorm.DB, roundID uuid.UUID) ([]models.Winner, error) {
	var winners []models.Winner
	if err := r.conn(tx).
		Preload("Participant").
		Where("round_id = ?", roundID).
		Order("created_at ASC").
		Find(&winners).Error; err != nil {
		return nil, err
	}
	return winners, nil
}

func (r *drawRepo) DeleteRoundWinners(tx *gorm.DB, roundID uuid.UUID) error {
	return r.conn(tx).Where("round_id = ?", roundID).Delete(&models.Winner{}).Error
}

// DeleteRoundWinnersExcept removes the round's winner rows whose participant is
// not in keep. Used when a confirmation narrows the drawn selection.
func (r *drawRepo) DeleteRoundWinnersExcept(tx *gorm.DB, roundID uuid.UUID, keep []uuid.UUID) error {
	return r.conn(tx).
		Where("round_id = ? AND participant_id NOT IN ?", roundID, keep).
		Delete(&models.Winner{}).Error
}

// ListWinners returns winners joined with participant, prize and round,
// filtered by round status, in chronological reveal order.
func (r *drawRepo) ListWinners(tenantID, eventID string, statuses []string) ([]models.Winner, error) {
	var winners []models.Winner
	if err := r.db.
		Preload("Participant").
		Preload("Prize").
		Preload("Round").
		Joins("JOIN draw_rounds ON winners.round_id = draw_rounds.id").
		Where("winners.tenant_id = ? AND winners.event_id = ?", tenantID, eventID).
		Where("draw_rounds.status IN ?", statuses).
		Order("winners.created_at ASC").
		Find(&winners).Error; err != nil {
		return nil, fmt.Errorf("failed to list winners: %w", err)
	}
	return winners, nil
}

// ListRounds returns the event's full round history, newest first. Voided
// rounds are included; the audit trail keeps every redraw.
func (r *drawRepo) ListRounds(tenantID, eventID string) ([]models.DrawRound, error) {
	var rounds []models.DrawRound
	if err := r.db.
		Preload("Prize").
		Where("tenant_id = ? AND event_id = ?", tenantID, eventID).
		Order("created_at DESC").
		Find(&rounds).Error; err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	return rounds, nil
}
