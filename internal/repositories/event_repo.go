package repositories

import (
	"errors"
	"fmt"

	"lucky-draw-backend/internal/models"

	"gorm.io/gorm"
)

type eventRepo struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepo{db: db}
}

// CreateEvent creates a new event
func (r *eventRepo) CreateEvent(event *models.Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	return r.db.Create(event).Error
}

// GetEvent retrieves an event scoped to a tenant
func (r *eventRepo) GetEvent(tenantID, id string) (*models.Event, error) {
	if tenantID == "" {
		return nil, errors.New("tenant ID cannot be empty")
	}
	if id == "" {
		return nil, errors.New("event ID cannot be empty")
	}

	var event models.Event
	if err := r.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return &event, nil
}

// UpdateEvent updates an existing event
func (r *eventRepo) UpdateEvent(event *models.Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	return r.db.Save(event).Error
}
