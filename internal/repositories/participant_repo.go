package repositories

import (
	"errors"
	"time"

	"lucky-draw-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type participantRepo struct {
	db *gorm.DB
}

func NewParticipantRepository(db *gorm.DB) ParticipantRepository {
	return &participantRepo{db: db}
}

func (r *participantRepo) CreateParticipant(participant *models.Participant) error {
	return r.db.Create(participant).Error
}

// CreateParticipants bulk-inserts participants, skipping rows that collide on
// an existing unique key. Returns the number of rows actually inserted.
func (r *participantRepo) CreateParticipants(participants []models.Participant) (int64, error) {
	if len(participants) == 0 {
		return 0, nil
	}
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&participants)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *participantRepo) GetParticipantByID(tenantID, id string) (*models.Participant, error) {
	var participant models.Participant
	if err := r.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&participant).Error; err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *participantRepo) ListParticipants(tenantID, eventID, status string) ([]models.Participant, error) {
	query := r.db.Where("tenant_id = ? AND event_id = ?", tenantID, eventID)

	switch status {
	case "won":
		query = query.Where("has_won = ?", true)
	case "eligible":
		query = query.Where("has_won = ?", false)
	case "checkedin":
		query = query.Where("checked_in_at IS NOT NULL")
	}

	var participants []models.Participant
	if err := query.Order("created_at ASC").Find(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}

// FindByIdentity matches a participant by any of its identity columns.
func (r *participantRepo) FindByIdentity(tenantID, eventID, identity string) (*models.Participant, error) {
	if identity == "" {
		return nil, errors.New("identity cannot be empty")
	}

	var participant models.Participant
	if err := r.db.
		Where("tenant_id = ? AND event_id = ?", tenantID, eventID).
		Where("unique_key = ? OR employee_id = ? OR email = ? OR username = ?",
			identity, identity, identity, identity).
		First(&participant).Error; err != nil {
		return nil, err
	}
	return &participant, nil
}

// FindByFields matches a participant by an exact AND over the given columns.
// Keys are database column names.
func (r *participantRepo) FindByFields(tenantID, eventID string, fields map[string]string) (*models.Participant, error) {
	if len(fields) == 0 {
		return nil, errors.New("fields cannot be empty")
	}

	query := r.db.Where("tenant_id = ? AND event_id = ?", tenantID, eventID)
	for column, value := range fields {
		query = query.Where(column+" = ?", value)
	}

	var participant models.Participant
	if err := query.First(&participant).Error; err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *participantRepo) UpdateParticipant(participant *models.Participant) error {
	return r.db.Save(participant).Error
}

func (r *participantRepo) SetCheckedIn(participantID uuid.UUID, at time.Time) error {
	return r.db.Model(&models.Participant{}).
		Where("id = ? AND checked_in_at IS NULL", participantID).
		Update("checked_in_at", at).Error
}

// SelectRandomEligible draws a uniform random sample without replacement from
// the event's non-winning participants. The sampled rows are locked so that a
// concurrent draw inside another transaction cannot allocate the same
// participant.
func (r *participantRepo) SelectRandomEligible(tx *gorm.DB, tenantID, eventID string, limit int) ([]models.Participant, error) {
	db := r.db
	if tx != nil {
		db = tx
	}

	var participants []models.Participant
	if err := db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND event_id = ? AND has_won = ?", tenantID, eventID, false).
		Order("RANDOM()").
		Limit(limit).
		Find(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *participantRepo) MarkWon(tx *gorm.DB, participantIDs []uuid.UUID) error {
	if len(participantIDs) == 0 {
		return nil
	}

	db := r.db
	if tx != nil {
		db = tx
	}
	return db.Model(&models.Participant{}).
		Where("id IN ?", participantIDs).
		Update("has_won", true).Error
}
