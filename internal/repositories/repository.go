package repositories

import (
	"time"

	"lucky-draw-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository struct {
	DB              *gorm.DB
	EventRepo       EventRepository
	PrizeRepo       PrizeRepository
	ParticipantRepo ParticipantRepository
	DrawRepo        DrawRepository
	DeviceRepo      CheckinDeviceRepository
	UserRepo        UserRepository
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:              db,
		EventRepo:       NewEventRepository(db),
		PrizeRepo:       NewPrizeRepository(db),
		ParticipantRepo: NewParticipantRepository(db),
		DrawRepo:        NewDrawRepository(db),
		DeviceRepo:      NewCheckinDeviceRepository(db),
		UserRepo:        NewUserRepository(db),
	}
}

// Transaction runs fn inside one database transaction. The tx handle must be
// passed into every repository call made from within fn; sub-operations never
// open a transaction of their own. A Repository without a database runs fn
// directly, which lets fake-backed sub-repositories stand in during tests.
func (r *Repository) Transaction(fn func(tx *gorm.DB) error) error {
	if r.DB == nil {
		return fn(nil)
	}
	return r.DB.Transaction(fn)
}

func AutoMigrate(db *gorm.DB) error {
	// Enable UUID extension
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return err
	}

	// Migrate models
	return db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.Prize{},
		&models.Participant{},
		&models.DrawRound{},
		&models.Winner{},
		&models.CheckinDevice{},
	)
}

// Interface definitions
type UserRepository interface {
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	CreateUser(user *models.User) error
	UpdateUser(user *models.User) error
}

type EventRepository interface {
	CreateEvent(event *models.Event) error
	GetEvent(tenantID, id string) (*models.Event, error)
	UpdateEvent(event *models.Event) error
}

type PrizeRepository interface {
	CreatePrize(prize *models.Prize) error
	GetPrize(tenantID, eventID, prizeID string) (*models.Prize, error)
	ListPrizes(tenantID, eventID string) ([]models.Prize, error)
	UpdatePrize(prize *models.Prize) error
	UpdateOrderIndex(tx *gorm.DB, prizeID uuid.UUID, orderIndex int) error

	// Draw-engine methods: tx is the enclosing unit-of-work handle.
	GetPrizeForUpdate(tx *gorm.DB, tenantID, eventID string, prizeID uuid.UUID) (*models.Prize, error)
	UpdateRemainingCount(tx *gorm.DB, prizeID uuid.UUID, remaining int) error
}

type ParticipantRepository interface {
	CreateParticipant(participant *models.Participant) error
	CreateParticipants(participants []models.Participant) (int64, error)
	GetParticipantByID(tenantID, id string) (*models.Participant, error)
	ListParticipants(tenantID, eventID, status string) ([]models.Participant, error)
	FindByIdentity(tenantID, eventID, identity string) (*models.Participant, error)
	FindByFields(tenantID, eventID string, fields map[string]string) (*models.Participant, error)
	UpdateParticipant(participant *models.Participant) error
	SetCheckedIn(participantID uuid.UUID, at time.Time) error

	// Draw-engine methods: tx is the enclosing unit-of-work handle.
	SelectRandomEligible(tx *gorm.DB, tenantID, eventID string, limit int) ([]models.Participant, error)
	MarkWon(tx *gorm.DB, participantIDs []uuid.UUID) error
}

type DrawRepository interface {
	CreateRound(tx *gorm.DB, round *models.DrawRound) error
	GetRound(tx *gorm.DB, tenantID, eventID, roundID string) (*models.DrawRound, error)
	GetRoundForUpdate(tx *gorm.DB, tenantID, eventID, roundID string) (*models.DrawRound, error)
	CountRounds(tx *gorm.DB, tenantID string, eventID, prizeID uuid.UUID) (int64, error)
	VoidRound(tx *gorm.DB, roundID uuid.UUID) error
	ConfirmRound(tx *gorm.DB, roundID uuid.UUID, drawCount int) error

	CreateWinners(tx *gorm.DB, winners []models.Winner) error
	GetRoundWinners(tx *gorm.DB, roundID uuid.UUID) ([]models.Winner, error)
	DeleteRoundWinners(tx *gorm.DB, roundID uuid.UUID) error
	DeleteRoundWinnersExcept(tx *gorm.DB, roundID uuid.UUID, keep []uuid.UUID) error

	ListWinners(tenantID, eventID string, statuses []string) ([]models.Winner, error)
	ListRounds(tenantID, eventID string) ([]models.DrawRound, error)
}

type CheckinDeviceRepository interface {
	GetDevice(tenantID, eventID, deviceID string) (*models.CheckinDevice, error)
	UpsertDevice(tenantID string, eventID uuid.UUID, deviceID string, at time.Time) error
}
