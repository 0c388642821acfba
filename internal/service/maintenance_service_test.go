package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"lighthouse-iot-backend/internal/models"
	"lighthouse-iot-backend/internal/repository"
)

type fakeMaintenanceStore struct {
	records map[uuid.UUID]*models.MaintenanceWithNames
}

func newFakeMaintenanceStore(records ...*models.MaintenanceWithNames) *fakeMaintenanceStore {
	s := &fakeMaintenanceStore{records: map[uuid.UUID]*models.MaintenanceWithNames{}}
	for _, r := range records {
		s.records[r.ID] = r
	}
	return s
}

func (s *fakeMaintenanceStore) Create(record *models.MaintenanceRecord) error {
	record.ID = uuid.New()
	s.records[record.ID] = &models.MaintenanceWithNames{MaintenanceRecord: *record, StationName: "Punta Carena"}
	return nil
}

func (s *fakeMaintenanceStore) GetByID(id uuid.UUID) (*models.MaintenanceWithNames, error) {
	if r, ok := s.records[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeMaintenanceStore) Update(id uuid.UUID, updates map[string]interface{}) (*models.MaintenanceWithNames, error) {
	r, ok := s.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if status, ok := updates["status"].(string); ok {
		r.Status = models.MaintenanceState(status)
	}
	if notes, ok := updates["notes"].(string); ok {
		r.Notes = &notes
	}
	return r, nil
}

func (s *fakeMaintenanceStore) Complete(id uuid.UUID, notes *string, attachments []string) (*models.MaintenanceWithNames, error) {
	r, ok := s.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	now := time.Now().UTC()
	r.Status = models.MaintenanceStateCompleted
	r.CompletedAt = &now
	if notes != nil {
		r.Notes = notes
	}
	if attachments != nil {
		r.Attachments = pq.StringArray(attachments)
	}
	return r, nil
}

func (s *fakeMaintenanceStore) List(filter repository.MaintenanceFilter, p repository.Pagination) ([]models.MaintenanceWithNames, int64, error) {
	var out []models.MaintenanceWithNames
	for _, r := range s.records {
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func TestCreateMaintenanceUnknownStationNotFound(t *testing.T) {
	svc := NewMaintenanceService(newFakeMaintenanceStore(), newFakeStationStore(), zap.NewNop())

	_, err := svc.Create(MaintenanceCreateInput{
		StationID:       uuid.New(),
		MaintenanceType: models.MaintenanceInspection,
		Description:     "Quarterly lamp inspection",
		ScheduledAt:     time.Now().Add(48 * time.Hour),
	})
	assertAppErrorCode(t, err, "NOT_FOUND")
}

func TestCreateMaintenanceStartsScheduled(t *testing.T) {
	station := &models.Station{ID: uuid.New(), Code: "VT-001"}
	svc := NewMaintenanceService(newFakeMaintenanceStore(), newFakeStationStore(station), zap.NewNop())

	record, err := svc.Create(MaintenanceCreateInput{
		StationID:       station.ID,
		MaintenanceType: models.MaintenanceCorrective,
		Description:     "Replace battery cells",
		ScheduledAt:     time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, models.MaintenanceStateScheduled, record.Status)
}

func TestUpdateMaintenanceRejectsUnknownStatus(t *testing.T) {
	record := &models.MaintenanceWithNames{MaintenanceRecord: models.MaintenanceRecord{
		ID:     uuid.New(),
		Status: models.MaintenanceStateScheduled,
	}}
	svc := NewMaintenanceService(newFakeMaintenanceStore(record), newFakeStationStore(), zap.NewNop())

	status := "postponed"
	_, err := svc.Update(record.ID, MaintenanceUpdateInput{Status: &status})
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func TestCompleteMaintenanceKeepsNotesWhenOmitted(t *testing.T) {
	existing := "pre-visit notes"
	record := &models.MaintenanceWithNames{MaintenanceRecord: models.MaintenanceRecord{
		ID:     uuid.New(),
		Status: models.MaintenanceStateInProgress,
		Notes:  &existing,
	}}
	svc := NewMaintenanceService(newFakeMaintenanceStore(record), newFakeStationStore(), zap.NewNop())

	completed, err := svc.Complete(record.ID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, models.MaintenanceStateCompleted, completed.Status)
	require.NotNil(t, completed.Notes)
	assert.Equal(t, "pre-visit notes", *completed.Notes)
	assert.NotNil(t, completed.CompletedAt)
}

func TestCompleteMissingMaintenanceNotFound(t *testing.T) {
	svc := NewMaintenanceService(newFakeMaintenanceStore(), newFakeStationStore(), zap.NewNop())

	_, err := svc.Complete(uuid.New(), nil, nil)
	assertAppErrorCode(t, err, "NOT_FOUND")
}
