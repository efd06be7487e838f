package repositories

import (
	"errors"
	"fmt"

	"lucky-draw-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type prizeRepo struct {
	db *gorm.DB
}

func NewPrizeRepository(db *gorm.DB) PrizeRepository {
	return &prizeRepo{db: db}
}

func (r *prizeRepo) CreatePrize(prize *models.Prize) error {
	if prize == nil {
		return errors.New("prize cannot be nil")
	}
	return r.db.Create(prize).Error
}

func (r *prizeRepo) GetPrize(tenantID, eventID, prizeID string) (*models.Prize, error) {
	var prize models.Prize
	if err := r.db.
		Where("id = ? AND tenant_id = ? AND event_id = ?", prizeID, tenantID, eventID).
		First(&prize).Error; err != nil {
		return nil, err
	}
	return &prize, nil
}

func (r *prizeRepo) ListPrizes(tenantID, eventID string) ([]models.Prize, error) {
	var prizes []models.Prize
	if err := r.db.
		Where("tenant_id = ? AND event_id = ?", tenantID, eventID).
		Order("order_index ASC, created_at ASC").
		Find(&prizes).Error; err != nil {
		return nil, fmt.Errorf("failed to list prizes: %w", err)
	}
	return prizes, nil
}

func (r *prizeRepo) UpdatePrize(prize *models.Prize) error {
	if prize == nil {
		return errors.New("prize cannot be nil")
	}
	return r.db.Save(prize).Error
}

func (r *prizeRepo) UpdateOrderIndex(tx *gorm.DB, prizeID uuid.UUID, orderIndex int) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	result := db.Model(&models.Prize{}).
		Where("id = ?", prizeID).
		Update("order_index", orderIndex)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetPrizeForUpdate fetches the prize row with a FOR UPDATE lock. The lock
// serializes concurrent draws and confirmations touching the same prize, which
// also makes the per-prize round numbering safe.
func (r *prizeRepo) GetPrizeForUpdate(tx *gorm.DB, tenantID, eventID string, prizeID uuid.UUID) (*models.Prize, error) {
	db := r.db
	if tx != nil {
		db = tx
	}

	var prize models.Prize
	if err := db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND tenant_id = ? AND event_id = ?", prizeID, tenantID, eventID).
		First(&prize).Error; err != nil {
		return nil, err
	}
	return &prize, nil
}

func (r *prizeRepo) UpdateRemainingCount(tx *gorm.DB, prizeID uuid.UUID, remaining int) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	return db.Model(&models.Prize{}).
		Where("id = ?", prizeID).
		Update("remaining_count", remaining).Error
}
