package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"lucky-draw-backend/internal/config"
	"lucky-draw-backend/internal/models"
	"lucky-draw-backend/internal/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory fakes for the repository interfaces. Draw-path methods accept the
// tx handle but ignore it; Repository.Transaction runs fn directly when no
// database is attached.

type fakeEventRepo struct {
	events map[uuid.UUID]*models.Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[uuid.UUID]*models.Event)}
}

func (f *fakeEventRepo) CreateEvent(event *models.Event) error {
	copied := *event
	f.events[event.ID] = &copied
	return nil
}

func (f *fakeEventRepo) GetEvent(tenantID, id string) (*models.Event, error) {
	eventID, err := uuid.Parse(id)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	event, ok := f.events[eventID]
	if !ok || event.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *event
	return &copied, nil
}

func (f *fakeEventRepo) UpdateEvent(event *models.Event) error {
	if _, ok := f.events[event.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *event
	f.events[event.ID] = &copied
	return nil
}

type fakePrizeRepo struct {
	prizes map[uuid.UUID]*models.Prize
}

func newFakePrizeRepo() *fakePrizeRepo {
	return &fakePrizeRepo{prizes: make(map[uuid.UUID]*models.Prize)}
}

func (f *fakePrizeRepo) CreatePrize(prize *models.Prize) error {
	copied := *prize
	f.prizes[prize.ID] = &copied
	return nil
}

func (f *fakePrizeRepo) get(tenantID, eventID string, prizeID uuid.UUID) (*models.Prize, error) {
	prize, ok := f.prizes[prizeID]
	if !ok || prize.TenantID != tenantID || prize.EventID.String() != eventID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *prize
	return &copied, nil
}

func (f *fakePrizeRepo) GetPrize(tenantID, eventID, prizeID string) (*models.Prize, error) {
	id, err := uuid.Parse(prizeID)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.get(tenantID, eventID, id)
}

func (f *fakePrizeRepo) ListPrizes(tenantID, eventID string) ([]models.Prize, error) {
	var prizes []models.Prize
	for _, prize := range f.prizes {
		if prize.TenantID == tenantID && prize.EventID.String() == eventID {
			prizes = append(prizes, *prize)
		}
	}
	sort.Slice(prizes, func(i, j int) bool { return prizes[i].OrderIndex < prizes[j].OrderIndex })
	return prizes, nil
}

func (f *fakePrizeRepo) UpdatePrize(prize *models.Prize) error {
	if _, ok := f.prizes[prize.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *prize
	f.prizes[prize.ID] = &copied
	return nil
}

func (f *fakePrizeRepo) UpdateOrderIndex(tx *gorm.DB, prizeID uuid.UUID, orderIndex int) error {
	prize, ok := f.prizes[prizeID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	prize.OrderIndex = orderIndex
	return nil
}

func (f *fakePrizeRepo) GetPrizeForUpdate(tx *gorm.DB, tenantID, eventID string, prizeID uuid.UUID) (*models.Prize, error) {
	return f.get(tenantID, eventID, prizeID)
}

func (f *fakePrizeRepo) UpdateRemainingCount(tx *gorm.DB, prizeID uuid.UUID, remaining int) error {
	prize, ok := f.prizes[prizeID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	prize.RemainingCount = remaining
	return nil
}

type fakeParticipantRepo struct {
	participants []*models.Participant
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{}
}

func (f *fakeParticipantRepo) CreateParticipant(participant *models.Participant) error {
	copied := *participant
	f.participants = append(f.participants, &copied)
	return nil
}

func (f *fakeParticipantRepo) CreateParticipants(participants []models.Participant) (int64, error) {
	var inserted int64
	for i := range participants {
		copied := participants[i]
		f.participants = append(f.participants, &copied)
		inserted++
	}
	return inserted, nil
}

func (f *fakeParticipantRepo) GetParticipantByID(tenantID, id string) (*models.Participant, error) {
	for _, p := range f.participants {
		if p.TenantID == tenantID && p.ID.String() == id {
			copied := *p
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeParticipantRepo) ListParticipants(tenantID, eventID, status string) ([]models.Participant, error) {
	var out []models.Participant
	for _, p := range f.participants {
		if p.TenantID != tenantID || p.EventID.String() != eventID {
			continue
		}
		switch status {
		case "won":
			if !p.HasWon {
				continue
			}
		case "eligible":
			if p.HasWon {
				continue
			}
		case "checkedin":
			if p.CheckedInAt == nil {
				continue
			}
		}
		out = append(out, *p)
	}
	return out, nil
}

func strEq(value *string, want string) bool {
	return value != nil && *value == want
}

func (f *fakeParticipantRepo) FindByIdentity(tenantID, eventID, identity string) (*models.Participant, error) {
	if identity == "" {
		return nil, errors.New("identity cannot be empty")
	}
	for _, p := range f.participants {
		if p.TenantID != tenantID || p.EventID.String() != eventID {
			continue
		}
		if strEq(p.UniqueKey, identity) || strEq(p.EmployeeID, identity) ||
			strEq(p.Email, identity) || strEq(p.Username, identity) {
			copied := *p
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeParticipantRepo) fieldValue(p *models.Participant, column string) string {
	switch column {
	case "display_name":
		return p.DisplayName
	case "unique_key":
		if p.UniqueKey != nil {
			return *p.UniqueKey
		}
	case "employee_id":
		if p.EmployeeID != nil {
			return *p.EmployeeID
		}
	case "email":
		if p.Email != nil {
			return *p.Email
		}
	case "username":
		if p.Username != nil {
			return *p.Username
		}
	case "department":
		if p.Department != nil {
			return *p.Department
		}
	case "title":
		if p.Title != nil {
			return *p.Title
		}
	case "org_path":
		if p.OrgPath != nil {
			return *p.OrgPath
		}
	case "custom_field":
		if p.CustomField != nil {
			return *p.CustomField
		}
	}
	return ""
}

func (f *fakeParticipantRepo) FindByFields(tenantID, eventID string, fields map[string]string) (*models.Participant, error) {
	if len(fields) == 0 {
		return nil, errors.New("fields cannot be empty")
	}
	for _, p := range f.participants {
		if p.TenantID != tenantID || p.EventID.String() != eventID {
			continue
		}
		match := true
		for column, value := range fields {
			if f.fieldValue(p, column) != value {
				match = false
				break
			}
		}
		if match {
			copied := *p
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeParticipantRepo) UpdateParticipant(participant *models.Participant) error {
	for i, p := range f.participants {
		if p.ID == participant.ID {
			copied := *participant
			f.participants[i] = &copied
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeParticipantRepo) SetCheckedIn(participantID uuid.UUID, at time.Time) error {
	for _, p := range f.participants {
		if p.ID == participantID && p.CheckedInAt == nil {
			checked := at
			p.CheckedInAt = &checked
		}
	}
	return nil
}

func (f *fakeParticipantRepo) SelectRandomEligible(tx *gorm.DB, tenantID, eventID string, limit int) ([]models.Participant, error) {
	var out []models.Participant
	for _, p := range f.participants {
		if len(out) == limit {
			break
		}
		if p.TenantID == tenantID && p.EventID.String() == eventID && !p.HasWon {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeParticipantRepo) MarkWon(tx *gorm.DB, participantIDs []uuid.UUID) error {
	won := make(map[uuid.UUID]bool, len(participantIDs))
	for _, id := range participantIDs {
		won[id] = true
	}
	for _, p := range f.participants {
		if won[p.ID] {
			p.HasWon = true
		}
	}
	return nil
}

type fakeDrawRepo struct {
	rounds  []*models.DrawRound
	winners []*models.Winner
}

func newFakeDrawRepo() *fakeDrawRepo {
	return &fakeDrawRepo{}
}

func (f *fakeDrawRepo) CreateRound(tx *gorm.DB, round *models.DrawRound) error {
	copied := *round
	f.rounds = append(f.rounds, &copied)
	return nil
}

func (f *fakeDrawRepo) GetRound(tx *gorm.DB, tenantID, eventID, roundID string) (*models.DrawRound, error) {
	for _, round := range f.rounds {
		if round.TenantID == tenantID && round.EventID.String() == eventID && round.ID.String() == roundID {
			copied := *round
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDrawRepo) GetRoundForUpdate(tx *gorm.DB, tenantID, eventID, roundID string) (*models.DrawRound, error) {
	return f.GetRound(tx, tenantID, eventID, roundID)
}

func (f *fakeDrawRepo) CountRounds(tx *gorm.DB, tenantID string, eventID, prizeID uuid.UUID) (int64, error) {
	var count int64
	for _, round := range f.rounds {
		if round.TenantID == tenantID && round.EventID == eventID && round.PrizeID == prizeID {
			count++
		}
	}
	return count, nil
}

func (f *fakeDrawRepo) VoidRound(tx *gorm.DB, roundID uuid.UUID) error {
	for _, round := range f.rounds {
		if round.ID == roundID && round.Status == models.RoundStatusDrawn {
			round.Status = models.RoundStatusVoided
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeDrawRepo) ConfirmRound(tx *gorm.DB, roundID uuid.UUID, drawCount int) error {
	for _, round := range f.rounds {
		if round.ID == roundID && round.Status == models.RoundStatusDrawn {
			round.Status = models.RoundStatusConfirmed
			round.DrawCount = drawCount
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeDrawRepo) CreateWinners(tx *gorm.DB, winners []models.Winner) error {
	for i := range winners {
		copied := winners[i]
		f.winners = append(f.winners, &copied)
	}
	return nil
}

func (f *fakeDrawRepo) GetRoundWinners(tx *gorm.DB, roundID uuid.UUID) ([]models.Winner, error) {
	var out []models.Winner
	for _, winner := range f.winners {
		if winner.RoundID == roundID {
			out = append(out, *winner)
		}
	}
	return out, nil
}

func (f *fakeDrawRepo) DeleteRoundWinners(tx *gorm.DB, roundID uuid.UUID) error {
	kept := f.winners[:0]
	for _, winner := range f.winners {
		if winner.RoundID != roundID {
			kept = append(kept, winner)
		}
	}
	f.winners = kept
	return nil
}

func (f *fakeDrawRepo) DeleteRoundWinnersExcept(tx *gorm.DB, roundID uuid.UUID, keep []uuid.UUID) error {
	keepSet := make(map[uuid.UUID]bool, len(keep))
	for _, id := range keep {
		keepSet[id] = true
	}
	kept := f.winners[:0]
	for _, winner := range f.winners {
		if winner.RoundID != roundID || keepSet[winner.ParticipantID] {
			kept = append(kept, winner)
		}
	}
	f.winners = kept
	return nil
}

func (f *fakeDrawRepo) ListWinners(tenantID, eventID string, statuses []string) ([]models.Winner, error) {
	allowed := make(map[string]bool, len(statuses))
	for _, status := range statuses {
		allowed[status] = true
	}
	roundStatus := make(map[uuid.UUID]string, len(f.rounds))
	for _, round := range f.rounds {
		roundStatus[round.ID] = round.Status
	}

	var out []models.Winner
	for _, winner := range f.winners {
		if winner.TenantID != tenantID || winner.EventID.String() != eventID {
			continue
		}
		if !allowed[roundStatus[winner.RoundID]] {
			continue
		}
		out = append(out, *winner)
	}
	return out, nil
}

func (f *fakeDrawRepo) ListRounds(tenantID, eventID string) ([]models.DrawRound, error) {
	var out []models.DrawRound
	for i := len(f.rounds) - 1; i >= 0; i-- {
		round := f.rounds[i]
		if round.TenantID == tenantID && round.EventID.String() == eventID {
			out = append(out, *round)
		}
	}
	return out, nil
}

type fakeDeviceRepo struct {
	devices map[string]*models.CheckinDevice
}

func newFakeDeviceRepo() *fakeDeviceRepo {
	return &fakeDeviceRepo{devices: make(map[string]*models.CheckinDevice)}
}

func deviceKey(tenantID, eventID, deviceID string) string {
	return tenantID + "|" + eventID + "|" + deviceID
}

func (f *fakeDeviceRepo) GetDevice(tenantID, eventID, deviceID string) (*models.CheckinDevice, error) {
	device, ok := f.devices[deviceKey(tenantID, eventID, deviceID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *device
	return &copied, nil
}

func (f *fakeDeviceRepo) UpsertDevice(tenantID string, eventID uuid.UUID, deviceID string, at time.Time) error {
	key := deviceKey(tenantID, eventID.String(), deviceID)
	if device, ok := f.devices[key]; ok {
		device.LastCheckinAt = at
		return nil
	}
	f.devices[key] = &models.CheckinDevice{
		ID:            uuid.New(),
		TenantID:      tenantID,
		EventID:       eventID,
		DeviceID:      deviceID,
		LastCheckinAt: at,
	}
	return nil
}

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) GetUserByEmail(email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetUserByID(id string) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) CreateUser(user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	f.users[user.ID.String()] = &copied
	return nil
}

func (f *fakeUserRepo) UpdateUser(user *models.User) error {
	if _, ok := f.users[user.ID.String()]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *user
	f.users[user.ID.String()] = &copied
	return nil
}

// newTestRepo builds a Repository backed entirely by in-memory fakes.
func newTestRepo() *repositories.Repository {
	return &repositories.Repository{
		EventRepo:       newFakeEventRepo(),
		PrizeRepo:       newFakePrizeRepo(),
		ParticipantRepo: newFakeParticipantRepo(),
		DrawRepo:        newFakeDrawRepo(),
		DeviceRepo:      newFakeDeviceRepo(),
		UserRepo:        newFakeUserRepo(),
	}
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-jwt-secret",
		CheckinSecret:    "test-checkin-secret",
		AllowQRCheckin:   true,
		AntiSpoofCheckin: true,
	}
}

// seedEvent puts an event directly into the fake store.
func seedEvent(repo *repositories.Repository, tenantID string, mutate func(*models.Event)) *models.Event {
	event := &models.Event{
		ID:                 uuid.New(),
		TenantID:           tenantID,
		Name:               "Annual Party",
		Status:             models.EventStatusDraft,
		ParticipantMode:    models.ParticipantModeCSV,
		RequiredFields:     []string{"display_name"},
		CheckinDeviceLimit: true,
	}
	if mutate != nil {
		mutate(event)
	}
	repo.EventRepo.CreateEvent(event)
	return event
}

func seedPrize(repo *repositories.Repository, event *models.Event, total int) *models.Prize {
	prize := &models.Prize{
		ID:             uuid.New(),
		TenantID:       event.TenantID,
		EventID:        event.ID,
		Level:          "1",
		Name:           "Grand Prize",
		TotalCount:     total,
		RemainingCount: total,
	}
	repo.PrizeRepo.CreatePrize(prize)
	return prize
}

func seedParticipants(repo *repositories.Repository, event *models.Event, count int) []*models.Participant {
	out := make([]*models.Participant, 0, count)
	for i := 0; i < count; i++ {
		p := &models.Participant{
			ID:          uuid.New(),
			TenantID:    event.TenantID,
			EventID:     event.ID,
			DisplayName: fmt.Sprintf("Participant %02d", i+1),
		}
		repo.ParticipantRepo.CreateParticipant(p)
		out = append(out, p)
	}
	return out
}
