package services

import (
	"errors"
	"strings"

	"lucky-draw-backend/internal/config"
	"lucky-draw-backend/internal/models"
	"lucky-draw-backend/internal/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventService struct {
	repo *repositories.Repository
	cfg  *config.Config
}

func NewEventService(repo *repositories.Repository, cfg *config.Config) *EventService {
	return &EventService{repo: repo, cfg: cfg}
}

// allowedRequiredFields are the participant identity columns a check-in form
// may require. display_name is always present.
var allowedRequiredFields = map[string]bool{
	"display_name": true,
	"unique_key":   true,
	"employee_id":  true,
	"email":        true,
	"username":     true,
	"department":   true,
	"title":        true,
	"org_path":     true,
	"custom_field": true,
}

type CreateEventRequest struct {
	Name               string
	ParticipantMode    string
	RequiredFields     []string
	CheckinDeviceLimit *bool
	CustomFieldLabel   string
}

type UpdateEventRequest struct {
	Name               *string
	ParticipantMode    *string
	RequiredFields     []string
	CheckinDeviceLimit *bool
	CustomFieldLabel   *string
}

func normalizeRequiredFields(fields []string) []string {
	normalized := make([]string, 0, len(fields)+1)
	seen := make(map[string]bool)
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" || !allowedRequiredFields[field] || seen[field] {
			continue
		}
		seen[field] = true
		normalized = append(normalized, field)
	}
	if !seen["display_name"] {
		normalized = append([]string{"display_name"}, normalized...)
	}
	return normalized
}

func normalizeParticipantMode(mode string) string {
	switch mode {
	case models.ParticipantModeCheckin, models.ParticipantModeMixed, models.ParticipantModeCSV:
		return mode
	}
	return models.ParticipantModeCSV
}

func (s *EventService) CreateEvent(tenantID string, req CreateEventRequest) (*models.Event, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.New("name is required")
	}

	deviceLimit := true
	if req.CheckinDeviceLimit != nil {
		deviceLimit = *req.CheckinDeviceLimit
	}

	event := &models.Event{
		ID:                 uuid.New(),
		TenantID:           tenantID,
		Name:               name,
		Status:             models.EventStatusDraft,
		ParticipantMode:    normalizeParticipantMode(req.ParticipantMode),
		RequiredFields:     normalizeRequiredFields(req.RequiredFields),
		CheckinDeviceLimit: deviceLimit,
		CustomFieldLabel:   strings.TrimSpace(req.CustomFieldLabel),
	}

	if err := s.repo.EventRepo.CreateEvent(event); err != nil {
		return nil, err
	}

	return event, nil
}

func (s *EventService) GetEvent(tenantID, id string) (*models.Event, error) {
	event, err := s.repo.EventRepo.GetEvent(tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("event not found")
		}
		return nil, err
	}
	return event, nil
}

func (s *EventService) UpdateEvent(tenantID, id string, req UpdateEventRequest) (*models.Event, error) {
	event, err := s.GetEvent(tenantID, id)
	if err != nil {
		return nil, err
	}

	if event.Status != models.EventStatusDraft {
		return nil, errors.New("event is no longer editable")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errors.New("name is required")
		}
		event.Name = name
	}
	if req.ParticipantMode != nil {
		event.ParticipantMode = normalizeParticipantMode(*req.ParticipantMode)
	}
	if req.RequiredFields != nil {
		event.RequiredFields = normalizeRequiredFields(req.RequiredFields)
	}
	if req.CheckinDeviceLimit != nil {
		event.CheckinDeviceLimit = *req.CheckinDeviceLimit
	}
	if req.CustomFieldLabel != nil {
		event.CustomFieldLabel = strings.TrimSpace(*req.CustomFieldLabel)
	}

	if err := s.repo.EventRepo.UpdateEvent(event); err != nil {
		return nil, err
	}
	return event, nil
}

// LockEvent freezes the roster and prize pool so drawing can begin. Locking is
// one-way; there is no unlock.
func (s *EventService) LockEvent(tenantID, id string) (*models.Event, error) {
	event, err := s.GetEvent(tenantID, id)
	if err != nil {
		return nil, err
	}

	if event.Locked {
		return event, nil
	}

	event.Locked = true
	if err := s.repo.EventRepo.UpdateEvent(event); err != nil {
		return nil, err
	}
	return event, nil
}

// StartEvent moves a locked DRAFT event to RUNNING.
func (s *EventService) StartEvent(tenantID, id string) (*models.Event, error) {
	event, err := s.GetEvent(tenantID, id)
	if err != nil {
		return nil, err
	}

	if !event.Locked {
		return nil, errors.New("event must be locked before starting")
	}
	if event.Status != models.EventStatusDraft {
		return nil, errors.New("event has already started")
	}

	event.Status = models.EventStatusRunning
	if err := s.repo.EventRepo.UpdateEvent(event); err != nil {
		return nil, err
	}
	return event, nil
}

// EndEvent moves a RUNNING event to ENDED. Status transitions are monotonic:
// an ended event never runs again.
func (s *EventService) EndEvent(tenantID, id string) (*models.Event, error) {
	event, err := s.GetEvent(tenantID, id)
	if err != nil {
		return nil, err
	}

	if event.Status != models.EventStatusRunning {
		return nil, errors.New("event is not running")
	}

	event.Status = models.EventStatusEnded
	if err := s.repo.EventRepo.UpdateEvent(event); err != nil {
		return nil, err
	}
	return event, nil
}
