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

type PrizeService struct {
	repo *repositories.Repository
	cfg  *config.Config
}

func NewPrizeService(repo *repositories.Repository, cfg *config.Config) *PrizeService {
	return &PrizeService{repo: repo, cfg: cfg}
}

type CreatePrizeRequest struct {
	Level      string
	Name       string
	TotalCount int
	OrderIndex int
}

type UpdatePrizeRequest struct {
	Level          *string
	Name           *string
	TotalCount     *int
	RemainingCount *int
	OrderIndex     *int
}

type ReorderPrizeItem struct {
	ID         string `json:"id" validate:"required,uuid"`
	OrderIndex int    `json:"order_index"`
}

// ensureEventEditable allows prize mutations only while the event is DRAFT.
func (s *PrizeService) ensureEventEditable(tenantID, eventID string) (*models.Event, error) {
	event, err := s.repo.EventRepo.GetEvent(tenantID, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("event not found")
		}
		return nil, err
	}

	if event.Status != models.EventStatusDraft {
		return nil, errors.New("event is no longer editable")
	}

	return event, nil
}

func (s *PrizeService) CreatePrize(tenantID, eventID string, req CreatePrizeRequest) (*models.Prize, error) {
	event, err := s.ensureEventEditable(tenantID, eventID)
	if err != nil {
		return nil, err
	}

	level := strings.TrimSpace(req.Level)
	name := strings.TrimSpace(req.Name)
	if level == "" || name == "" {
		return nil, errors.New("level and name are required")
	}
	if req.TotalCount < 0 {
		return nil, errors.New("total count must be >= 0")
	}

	prize := &models.Prize{
		ID:             uuid.New(),
		TenantID:       tenantID,
		EventID:        event.ID,
		Level:          level,
		Name:           name,
		TotalCount:     req.TotalCount,
		RemainingCount: req.TotalCount,
		OrderIndex:     req.OrderIndex,
	}

	if err := s.repo.PrizeRepo.CreatePrize(prize); err != nil {
		return nil, err
	}
	return prize, nil
}

func (s *PrizeService) ListPrizes(tenantID, eventID string) ([]models.Prize, error) {
	if _, err := s.repo.EventRepo.GetEvent(tenantID, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("event not found")
		}
		return nil, err
	}
	return s.repo.PrizeRepo.ListPrizes(tenantID, eventID)
}

func (s *PrizeService) UpdatePrize(tenantID, eventID, prizeID string, req UpdatePrizeRequest) (*models.Prize, error) {
	if _, err := s.ensureEventEditable(tenantID, eventID); err != nil {
		return nil, err
	}

	prize, err := s.repo.PrizeRepo.GetPrize(tenantID, eventID, prizeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("prize not found")
		}
		return nil, err
	}

	if req.Level != nil {
		level := strings.TrimSpace(*req.Level)
		if level == "" {
			return nil, errors.New("level is required")
		}
		prize.Level = level
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errors.New("name is required")
		}
		prize.Name = name
	}
	if req.TotalCount != nil {
		if *req.TotalCount < 0 {
			return nil, errors.New("total count must be >= 0")
		}
		prize.TotalCount = *req.TotalCount
		// Resetting total during setup also resets the remaining stock unless
		// a corrective remaining value is given.
		prize.RemainingCount = *req.TotalCount
	}
	if req.RemainingCount != nil {
		if *req.RemainingCount < 0 || *req.RemainingCount > prize.TotalCount {
			return nil, errors.New("remaining count must be between 0 and total count")
		}
		prize.RemainingCount = *req.RemainingCount
	}
	if req.OrderIndex != nil {
		prize.OrderIndex = *req.OrderIndex
	}

	if err := s.repo.PrizeRepo.UpdatePrize(prize); err != nil {
		return nil, err
	}
	return prize, nil
}

// ReorderPrizes applies a new display order in one transaction.
func (s *PrizeService) ReorderPrizes(tenantID, eventID string, items []ReorderPrizeItem) ([]models.Prize, error) {
	if _, err := s.ensureEventEditable(tenantID, eventID); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.New("items is required")
	}

	existing, err := s.repo.PrizeRepo.ListPrizes(tenantID, eventID)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(existing))
	for _, prize := range existing {
		known[prize.ID.String()] = true
	}
	for _, item := range items {
		if !known[item.ID] {
			return nil, errors.New("invalid prize id in items")
		}
	}

	err = s.repo.Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			id, err := uuid.Parse(item.ID)
			if err != nil {
				return errors.New("invalid prize id in items")
			}
			if err := s.repo.PrizeRepo.UpdateOrderIndex(tx, id, item.OrderIndex); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.PrizeRepo.ListPrizes(tenantID, eventID)
}
