package services

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"lucky-draw-backend/internal/config"
	"lucky-draw-backend/internal/models"
	"lucky-draw-backend/internal/repositories"

	"gorm.io/gorm"
)

// CheckinService issues short-lived signed QR tokens and processes participant
// self-check-ins against them.
type CheckinService interface {
	Token(tenantID, eventID string) (*CheckinToken, error)
	Checkin(tenantID, eventID string, req CheckinRequest) (*CheckinResult, error)
}

// checkinTokenTTL is how long a QR token stays scannable before the screen
// refreshes it.
const checkinTokenTTL = 2 * time.Minute

// deviceThrottle is the minimum interval between check-ins from the same
// device when the event limits devices.
const deviceThrottle = 2 * time.Hour

type CheckinToken struct {
	Nonce     string `json:"nonce"`
	ExpiresAt int64  `json:"expires_at"`
	Sig       string `json:"sig"`
	QRURL     string `json:"qr_url"`
}

type CheckinRequest struct {
	Nonce     string            `json:"nonce"`
	ExpiresAt int64             `json:"expires_at"`
	Sig       string            `json:"sig"`
	DeviceID  string            `json:"device_id"`
	Identity  string            `json:"identity"`
	Fields    map[string]string `json:"fields"`
}

type CheckinResult struct {
	CheckedIn     bool       `json:"checked_in"`
	Reason        string     `json:"reason,omitempty"`
	ParticipantID string     `json:"participant_id,omitempty"`
	LastCheckinAt *time.Time `json:"last_checkin_at,omitempty"`
}

type checkinService struct {
	repo *repositories.Repository
	cfg  *config.Config
}

func NewCheckinService(repo *repositories.Repository, cfg *config.Config) CheckinService {
	return &checkinService{repo: repo, cfg: cfg}
}

// participantFieldColumns maps check-in form field keys to participant columns.
var participantFieldColumns = map[string]string{
	"display_name": "display_name",
	"unique_key":   "unique_key",
	"employee_id":  "employee_id",
	"email":        "email",
	"username":     "username",
	"department":   "department",
	"title":        "title",
	"org_path":     "org_path",
	"custom_field": "custom_field",
}

func (s *checkinService) sign(eventID, nonce string, expiresAt int64) (string, error) {
	if s.cfg.CheckinSecret == "" {
		return "", errors.New("checkin secret is not configured")
	}
	mac := hmac.New(sha256.New, []byte(s.cfg.CheckinSecret))
	fmt.Fprintf(mac, "%s|%s|%d", eventID, nonce, expiresAt)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Token issues a fresh signed check-in token for the event's QR screen.
func (s *checkinService) Token(tenantID, eventID string) (*CheckinToken, error) {
	if !s.cfg.AllowQRCheckin {
		return nil, errors.New("qr check-in is disabled")
	}

	if _, err := s.repo.EventRepo.GetEvent(tenantID, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("event not found")
		}
		return nil, err
	}

	raw := make([]byte, 12)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	nonce := hex.EncodeToString(raw)
	expiresAt := time.Now().Add(checkinTokenTTL).UnixMilli()

	sig, err := s.sign(eventID, nonce, expiresAt)
	if err != nil {
		return nil, err
	}

	return &CheckinToken{
		Nonce:     nonce,
		ExpiresAt: expiresAt,
		Sig:       sig,
		QRURL:     fmt.Sprintf("/checkin?event_id=%s&nonce=%s&expires_at=%d&sig=%s", eventID, nonce, expiresAt, sig),
	}, nil
}

// Checkin verifies the scanned token and marks the matched participant as
// checked in. In checkin intake mode an unknown participant registers
// themselves with the submitted fields.
func (s *checkinService) Checkin(tenantID, eventID string, req CheckinRequest) (*CheckinResult, error) {
	if !s.cfg.AllowQRCheckin {
		return nil, errors.New("qr check-in is disabled")
	}

	event, err := s.repo.EventRepo.GetEvent(tenantID, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("event not found")
		}
		return nil, err
	}

	if s.cfg.AntiSpoofCheckin {
		expected, err := s.sign(eventID, req.Nonce, req.ExpiresAt)
		if err != nil {
			return nil, err
		}
		if req.Sig == "" || !hmac.Equal([]byte(expected), []byte(req.Sig)) {
			return nil, errors.New("invalid check-in token signature")
		}
		if time.Now().UnixMilli() > req.ExpiresAt {
			return nil, errors.New("check-in token expired")
		}
	}

	deviceID := strings.TrimSpace(req.DeviceID)
	now := time.Now()
	if event.CheckinDeviceLimit {
		if deviceID == "" {
			return nil, errors.New("device id is required")
		}
		device, err := s.repo.DeviceRepo.GetDevice(tenantID, eventID, deviceID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if device != nil && now.Sub(device.LastCheckinAt) < deviceThrottle {
			last := device.LastCheckinAt
			return &CheckinResult{
				CheckedIn:     false,
				Reason:        "device_recent",
				LastCheckinAt: &last,
			}, nil
		}
	}

	if event.Locked && event.ParticipantMode == models.ParticipantModeCheckin {
		return nil, errors.New("event is locked")
	}

	participant, err := s.matchParticipant(tenantID, event, req)
	if err != nil {
		return nil, err
	}
	if participant == nil {
		return &CheckinResult{CheckedIn: false, Reason: "participant_identity_required"}, nil
	}

	if participant.CheckedInAt == nil {
		if err := s.repo.ParticipantRepo.SetCheckedIn(participant.ID, now); err != nil {
			return nil, err
		}
	}

	if event.CheckinDeviceLimit && deviceID != "" {
		if err := s.repo.DeviceRepo.UpsertDevice(tenantID, event.ID, deviceID, now); err != nil {
			return nil, err
		}
	}

	return &CheckinResult{CheckedIn: true, ParticipantID: participant.ID.String()}, nil
}

func (s *checkinService) matchParticipant(tenantID string, event *models.Event, req CheckinRequest) (*models.Participant, error) {
	if len(req.Fields) > 0 {
		required := event.RequiredFields
		if len(required) == 0 {
			required = []string{"display_name"}
		}

		filters := make(map[string]string, len(required))
		for _, field := range required {
			value := strings.TrimSpace(req.Fields[field])
			if value == "" {
				return nil, errors.New("required participant fields missing")
			}
			if column, ok := participantFieldColumns[field]; ok {
				filters[column] = value
			}
		}

		participant, err := s.repo.ParticipantRepo.FindByFields(tenantID, event.ID.String(), filters)
		if err == nil {
			return participant, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		// Self-registration is only open in checkin intake mode.
		if event.ParticipantMode != models.ParticipantModeCheckin {
			return nil, errors.New("participant not found")
		}
		return s.registerFromFields(tenantID, event, req.Fields)
	}

	if identity := strings.TrimSpace(req.Identity); identity != "" {
		participant, err := s.repo.ParticipantRepo.FindByIdentity(tenantID, event.ID.String(), identity)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.New("participant not found")
			}
			return nil, err
		}
		return participant, nil
	}

	return nil, nil
}

func (s *checkinService) registerFromFields(tenantID string, event *models.Event, fields map[string]string) (*models.Participant, error) {
	input := ParticipantInput{
		DisplayName: fields["display_name"],
		UniqueKey:   fields["unique_key"],
		EmployeeID:  fields["employee_id"],
		Email:       fields["email"],
		Username:    fields["username"],
		Department:  fields["department"],
		Title:       fields["title"],
		OrgPath:     fields["org_path"],
		CustomField: fields["custom_field"],
	}
	if strings.TrimSpace(input.DisplayName) == "" {
		return nil, errors.New("required participant fields missing")
	}

	participant := input.toModel(tenantID, event.ID)
	if err := s.repo.ParticipantRepo.CreateParticipant(&participant); err != nil {
		return nil, err
	}
	return &participant, nil
}
