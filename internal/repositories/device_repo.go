package repositories

import (
	"time"

	"lucky-draw-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type checkinDeviceRepo struct {
	db *gorm.DB
}

func NewCheckinDeviceRepository(db *gorm.DB) CheckinDeviceRepository {
	return &checkinDeviceRepo{db: db}
}

func (r *checkinDeviceRepo) GetDevice(tenantID, eventID, deviceID string) (*models.CheckinDevice, error) {
	var device models.CheckinDevice
	if err := r.db.
		Where("tenant_id = ? AND event_id = ? AND device_id = ?", tenantID, eventID, deviceID).
		First(&device).Error; err != nil {
		return nil, err
	}
	return &device, nil
}

func (r *checkinDeviceRepo) UpsertDevice(tenantID string, eventID uuid.UUID, deviceID string, at time.Time) error {
	device := models.CheckinDevice{
		ID:            uuid.New(),
		TenantID:      tenantID,
		EventID:       eventID,
		DeviceID:      deviceID,
		LastCheckinAt: at,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "event_id"}, {Name: "device_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"last_checkin_at": at, "updated_at": at}),
	}).Create(&device).Error
}
