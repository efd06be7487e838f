package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"sort"
	"strings"

	"lucky-draw-backend/internal/config"
	"lucky-draw-backend/internal/models"
	"lucky-draw-backend/internal/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ParticipantService struct {
	repo *repositories.Repository
	cfg  *config.Config
}

func NewParticipantService(repo *repositories.Repository, cfg *config.Config) *ParticipantService {
	return &ParticipantService{repo: repo, cfg: cfg}
}

type ParticipantInput struct {
	DisplayName string `json:"display_name"`
	UniqueKey   string `json:"unique_key"`
	EmployeeID  string `json:"employee_id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	Department  string `json:"department"`
	Title       string `json:"title"`
	OrgPath     string `json:"org_path"`
	CustomField string `json:"custom_field"`
}

type ImportParticipantsRequest struct {
	Items []ParticipantInput `json:"items"`
	CSV   string             `json:"csv"`
}

type ImportParticipantsResult struct {
	Inserted int64  `json:"inserted"`
	Received int    `json:"received"`
	Warning  string `json:"warning,omitempty"`
}

// CSV column aliases accepted for the display name.
var displayNameAliases = []string{"display_name", "displayname", "name"}

// csvColumns maps a recognized CSV header key to its participant field.
var csvColumns = map[string]bool{
	"display_name": true,
	"displayname":  true,
	"name":         true,
	"unique_key":   true,
	"uniquekey":    true,
	"employee_id":  true,
	"email":        true,
	"username":     true,
	"department":   true,
	"title":        true,
	"org_path":     true,
	"custom_field": true,
}

func (s *ParticipantService) ensureUnlockedEvent(tenantID, eventID string) (*models.Event, error) {
	event, err := s.repo.EventRepo.GetEvent(tenantID, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("event not found")
		}
		return nil, err
	}
	if event.Locked {
		return nil, errors.New("event is locked")
	}
	return event, nil
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func (input ParticipantInput) toModel(tenantID string, eventID uuid.UUID) models.Participant {
	return models.Participant{
		ID:          uuid.New(),
		TenantID:    tenantID,
		EventID:     eventID,
		DisplayName: strings.TrimSpace(input.DisplayName),
		UniqueKey:   optional(input.UniqueKey),
		EmployeeID:  optional(input.EmployeeID),
		Email:       optional(input.Email),
		Username:    optional(input.Username),
		Department:  optional(input.Department),
		Title:       optional(input.Title),
		OrgPath:     optional(input.OrgPath),
		CustomField: optional(input.CustomField),
	}
}

func (s *ParticipantService) CreateParticipant(tenantID, eventID string, input ParticipantInput) (*models.Participant, error) {
	event, err := s.ensureUnlockedEvent(tenantID, eventID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.DisplayName) == "" {
		return nil, errors.New("display name is required")
	}

	participant := input.toModel(tenantID, event.ID)
	if err := s.repo.ParticipantRepo.CreateParticipant(&participant); err != nil {
		return nil, err
	}
	return &participant, nil
}

// ImportParticipants bulk-loads a roster from pre-parsed items or a raw CSV
// payload. The CSV header is autodetected; unrecognized columns are dropped
// with a warning, duplicate rows are skipped by the store.
func (s *ParticipantService) ImportParticipants(tenantID, eventID string, req ImportParticipantsRequest) (*ImportParticipantsResult, error) {
	event, err := s.ensureUnlockedEvent(tenantID, eventID)
	if err != nil {
		return nil, err
	}

	items := req.Items
	var warning string
	if len(items) == 0 && req.CSV != "" {
		items, warning, err = parseParticipantsCSV(req.CSV)
		if err != nil {
			return nil, err
		}
	}

	if len(items) == 0 {
		return nil, errors.New("items or csv is required")
	}

	participants := make([]models.Participant, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.DisplayName) == "" {
			continue
		}
		participants = append(participants, item.toModel(tenantID, event.ID))
	}

	if len(participants) == 0 {
		return nil, errors.New("no valid participants")
	}

	inserted, err := s.repo.ParticipantRepo.CreateParticipants(participants)
	if err != nil {
		return nil, fmt.Errorf("failed to import participants: %w", err)
	}

	return &ImportParticipantsResult{
		Inserted: inserted,
		Received: len(items),
		Warning:  warning,
	}, nil
}

// parseParticipantsCSV parses comma- or tab-delimited rows, with or without a
// header line. Returns the parsed inputs plus a warning string naming ignored
// header columns.
func parseParticipantsCSV(input string) ([]ParticipantInput, string, error) {
	firstLine := input
	if idx := strings.IndexAny(input, "\r\n"); idx >= 0 {
		firstLine = input[:idx]
	}
	delimiter := ','
	if strings.Contains(firstLine, "\t") {
		delimiter = '\t'
	}

	reader := csv.NewReader(strings.NewReader(input))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, "", fmt.Errorf("invalid csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, "", nil
	}

	headerKeys := make([]string, len(rows[0]))
	hasHeader := false
	for i, cell := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(cell))
		headerKeys[i] = key
		if csvColumns[key] {
			hasHeader = true
		}
	}

	var warnings []string
	columnIndex := make(map[string]int)
	if hasHeader {
		seenIgnored := make(map[string]bool)
		for i, key := range headerKeys {
			if csvColumns[key] {
				columnIndex[key] = i
			} else if key != "" && !seenIgnored[key] {
				seenIgnored[key] = true
				warnings = append(warnings, fmt.Sprintf("%s will be ignored.", key))
			}
		}
		hasDisplayName := false
		for _, alias := range displayNameAliases {
			if _, ok := columnIndex[alias]; ok {
				hasDisplayName = true
				break
			}
		}
		if !hasDisplayName {
			warnings = append([]string{"CSV header missing display_name"}, warnings...)
		}
	}

	cell := func(row []string, i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	headerCell := func(row []string, keys ...string) string {
		for _, key := range keys {
			if i, ok := columnIndex[key]; ok {
				return cell(row, i)
			}
		}
		return ""
	}

	start := 0
	if hasHeader {
		start = 1
	}

	items := make([]ParticipantInput, 0, len(rows)-start)
	for _, row := range rows[start:] {
		var item ParticipantInput
		if hasHeader {
			item = ParticipantInput{
				DisplayName: headerCell(row, displayNameAliases...),
				UniqueKey:   headerCell(row, "unique_key", "uniquekey"),
				EmployeeID:  headerCell(row, "employee_id"),
				Email:       headerCell(row, "email"),
				Username:    headerCell(row, "username"),
				Department:  headerCell(row, "department"),
				Title:       headerCell(row, "title"),
				OrgPath:     headerCell(row, "org_path"),
				CustomField: headerCell(row, "custom_field"),
			}
		} else {
			item = ParticipantInput{
				DisplayName: cell(row, 0),
				UniqueKey:   cell(row, 1),
				EmployeeID:  cell(row, 2),
				Email:       cell(row, 3),
				Username:    cell(row, 4),
				Department:  cell(row, 5),
				Title:       cell(row, 6),
				OrgPath:     cell(row, 7),
				CustomField: cell(row, 8),
			}
		}
		items = append(items, item)
	}

	return items, strings.Join(warnings, "; "), nil
}

// ListParticipants returns the roster, optionally filtered by status:
// eligible (has not won), checkedin, or won.
func (s *ParticipantService) ListParticipants(tenantID, eventID, status string) ([]models.Participant, error) {
	if _, err := s.repo.EventRepo.GetEvent(tenantID, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("event not found")
		}
		return nil, err
	}

	switch status {
	case "", "eligible", "checkedin", "won":
	default:
		return nil, errors.New("invalid status filter")
	}

	return s.repo.ParticipantRepo.ListParticipants(tenantID, eventID, status)
}

// FieldOptions aggregates the distinct values of the filterable participant
// columns, for the check-in form's dropdowns.
func (s *ParticipantService) FieldOptions(tenantID, eventID string, keys []string) (map[string][]string, error) {
	if _, err := s.repo.EventRepo.GetEvent(tenantID, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("event not found")
		}
		return nil, err
	}

	allowed := map[string]func(p *models.Participant) *string{
		"department": func(p *models.Participant) *string { return p.Department },
		"title":      func(p *models.Participant) *string { return p.Title },
		"org_path":   func(p *models.Participant) *string { return p.OrgPath },
	}

	requested := make([]string, 0, len(keys))
	for _, key := range keys {
		if _, ok := allowed[key]; ok {
			requested = append(requested, key)
		}
	}
	if len(requested) == 0 {
		return map[string][]string{}, nil
	}

	participants, err := s.repo.ParticipantRepo.ListParticipants(tenantID, eventID, "")
	if err != nil {
		return nil, err
	}

	result := make(map[string][]string, len(requested))
	for _, key := range requested {
		values := make(map[string]bool)
		getter := allowed[key]
		for i := range participants {
			if v := getter(&participants[i]); v != nil && strings.TrimSpace(*v) != "" {
				values[strings.TrimSpace(*v)] = true
			}
		}
		sorted := make([]string, 0, len(values))
		for v := range values {
			sorted = append(sorted, v)
		}
		sort.Strings(sorted)
		result[key] = sorted
	}

	return result, nil
}
