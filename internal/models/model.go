package models

import (
	"time"

	"github.com/google/uuid"
)

// Event lifecycle statuses. Transitions are operator-driven and monotonic:
// DRAFT -> RUNNING -> ENDED.
const (
	EventStatusDraft   = "DRAFT"
	EventStatusRunning = "RUNNING"
	EventStatusEnded   = "ENDED"
)

// Participant intake modes.
const (
	ParticipantModeCSV     = "csv"
	ParticipantModeCheckin = "checkin"
	ParticipantModeMixed   = "mixed"
)

// Draw round statuses. DRAWN is the only non-terminal state.
const (
	RoundStatusDrawn     = "DRAWN"
	RoundStatusConfirmed = "CONFIRMED"
	RoundStatusVoided    = "VOIDED"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Role      string    `gorm:"type:varchar(20);not null;default:'operator'" json:"role"` // admin|operator
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Event struct {
	ID                 uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TenantID           string    `gorm:"index;not null" json:"tenant_id"`
	Name               string    `gorm:"not null" json:"name"`
	Status             string    `gorm:"type:varchar(20);not null;default:'DRAFT'" json:"status"`
	Locked             bool      `gorm:"default:false" json:"locked"`
	ParticipantMode    string    `gorm:"type:varchar(20);not null;default:'csv'" json:"participant_mode"` // csv|checkin|mixed
	RequiredFields     []string  `gorm:"serializer:json" json:"required_fields"`
	CheckinDeviceLimit bool      `gorm:"default:true" json:"checkin_device_limit"`
	CustomFieldLabel   string    `json:"custom_field_label"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	// Relations
	Prizes       []Prize       `gorm:"foreignKey:EventID" json:"prizes,omitempty"`
	Participants []Participant `gorm:"foreignKey:EventID" json:"participants,omitempty"`
}

type Prize struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TenantID       string    `gorm:"index;not null" json:"tenant_id"`
	EventID        uuid.UUID `gorm:"type:uuid;index;not null" json:"event_id"`
	Level          string    `gorm:"not null" json:"level"`
	Name           string    `gorm:"not null" json:"name"`
	TotalCount     int       `gorm:"not null" json:"total_count"`
	RemainingCount int       `gorm:"not null" json:"remaining_count"`
	OrderIndex     int       `gorm:"default:0" json:"order_index"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Participant struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TenantID    string     `gorm:"index;not null" json:"tenant_id"`
	EventID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"event_id"`
	DisplayName string     `gorm:"not null" json:"display_name"`
	UniqueKey   *string    `gorm:"index" json:"unique_key"`
	EmployeeID  *string    `json:"employee_id"`
	Email       *string    `json:"email"`
	Username    *string    `json:"username"`
	Department  *string    `json:"department"`
	Title       *string    `json:"title"`
	OrgPath     *string    `json:"org_path"`
	CustomField *string    `json:"custom_field"`
	HasWon      bool       `gorm:"default:false;index" json:"has_won"`
	CheckedInAt *time.Time `json:"checked_in_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type DrawRound struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TenantID  string    `gorm:"index;not null" json:"tenant_id"`
	EventID   uuid.UUID `gorm:"type:uuid;index;not null" json:"event_id"`
	PrizeID   uuid.UUID `gorm:"type:uuid;index;not null" json:"prize_id"`
	RoundNo   int       `gorm:"not null" json:"round_no"`
	DrawCount int       `gorm:"not null" json:"draw_count"`
	Status    string    `gorm:"type:varchar(20);not null;default:'DRAWN'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Prize   Prize    `gorm:"foreignKey:PrizeID" json:"prize,omitempty"`
	Winners []Winner `gorm:"foreignKey:RoundID" json:"winners,omitempty"`
}

type Winner struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TenantID      string    `gorm:"index;not null" json:"tenant_id"`
	EventID       uuid.UUID `gorm:"type:uuid;index;not null" json:"event_id"`
	RoundID       uuid.UUID `gorm:"type:uuid;index;not null" json:"round_id"`
	PrizeID       uuid.UUID `gorm:"type:uuid;index;not null" json:"prize_id"`
	ParticipantID uuid.UUID `gorm:"type:uuid;index;not null" json:"participant_id"`
	CreatedAt     time.Time `json:"created_at"`

	// Relations
	Participant Participant `gorm:"foreignKey:ParticipantID" json:"participant,omitempty"`
	Prize       Prize       `gorm:"foreignKey:PrizeID" json:"prize,omitempty"`
	Round       DrawRound   `gorm:"foreignKey:RoundID" json:"round,omitempty"`
}

type CheckinDevice struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TenantID      string    `gorm:"uniqueIndex:idx_checkin_device;not null" json:"tenant_id"`
	EventID       uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_checkin_device;not null" json:"event_id"`
	DeviceID      string    `gorm:"uniqueIndex:idx_checkin_device;not null" json:"device_id"`
	LastCheckinAt time.Time `json:"last_checkin_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
