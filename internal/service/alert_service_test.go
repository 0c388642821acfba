package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"lighthouse-iot-backend/internal/models"
	"lighthouse-iot-backend/internal/repository"
)

func nowUTC() time.Time {
	return time.Now().UTC()
}

type fakeAlertStore struct {
	alerts map[uuid.UUID]*models.AlertWithStation
}

func newFakeAlertStore(alerts ...*models.AlertWithStation) *fakeAlertStore {
	s := &fakeAlertStore{alerts: map[uuid.UUID]*models.AlertWithStation{}}
	for _, a := range alerts {
		s.alerts[a.ID] = a
	}
	return s
}

func (s *fakeAlertStore) Create(alert *models.Alert) error {
	alert.ID = uuid.New()
	s.alerts[alert.ID] = &models.AlertWithStation{Alert: *alert, StationName: "Punta Carena"}
	return nil
}

func (s *fakeAlertStore) GetByID(id uuid.UUID) (*models.AlertWithStation, error) {
	if a, ok := s.alerts[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeAlertStore) Acknowledge(id, userID uuid.UUID) (int64, error) {
	a, ok := s.alerts[id]
	if !ok || a.AcknowledgedAt != nil {
		return 0, nil
	}
	now := nowUTC()
	a.AcknowledgedAt = &now
	a.AcknowledgedBy = &userID
	return 1, nil
}

func (s *fakeAlertStore) Resolve(id uuid.UUID) (int64, error) {
	a, ok := s.alerts[id]
	if !ok || a.ResolvedAt != nil {
		return 0, nil
	}
	now := nowUTC()
	a.ResolvedAt = &now
	return 1, nil
}

func (s *fakeAlertStore) List(filter repository.AlertFilter, p repository.Pagination) ([]models.AlertWithStation, int64, error) {
	var out []models.AlertWithStation
	for _, a := range s.alerts {
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

func (s *fakeAlertStore) RecentByStation(stationID uuid.UUID, limit int) ([]models.Alert, error) {
	var out []models.Alert
	for _, a := range s.alerts {
		if a.StationID == stationID && len(out) < limit {
			out = append(out, a.Alert)
		}
	}
	return out, nil
}

func (s *fakeAlertStore) Stats(stationID *uuid.UUID) (*models.AlertStats, error) {
	return &models.AlertStats{Total: int64(len(s.alerts))}, nil
}

func TestCreateAlertUnknownStationNotFound(t *testing.T) {
	svc := NewAlertService(newFakeAlertStore(), newFakeStationStore(), zap.NewNop())

	_, err := svc.Create(AlertCreateInput{
		StationID: uuid.New(),
		AlertType: models.AlertPowerFailure,
		Severity:  models.SeverityHigh,
		Title:     "Battery bank offline",
	})
	assertAppErrorCode(t, err, "NOT_FOUND")
}

func TestAcknowledgeAlertOnce(t *testing.T) {
	station := &models.Station{ID: uuid.New(), Code: "VT-001"}
	alert := &models.AlertWithStation{Alert: models.Alert{
		ID:        uuid.New(),
		StationID: station.ID,
		AlertType: models.AlertPowerFailure,
		Severity:  models.SeverityHigh,
		Title:     "Battery bank offline",
	}}
	svc := NewAlertService(newFakeAlertStore(alert), newFakeStationStore(station), zap.NewNop())

	userID := uuid.New()
	acked, err := svc.Acknowledge(alert.ID, userID)
	require.NoError(t, err)
	require.NotNil(t, acked.AcknowledgedAt)
	require.NotNil(t, acked.AcknowledgedBy)
	assert.Equal(t, userID, *acked.AcknowledgedBy)
}

func TestAcknowledgeAlertTwiceRejected(t *testing.T) {
	station := &models.Station{ID: uuid.New(), Code: "VT-001"}
	alert := &models.AlertWithStation{Alert: models.Alert{
		ID:        uuid.New(),
		StationID: station.ID,
		Title:     "Battery bank offline",
	}}
	svc := NewAlertService(newFakeAlertStore(alert), newFakeStationStore(station), zap.NewNop())

	firstUser := uuid.New()
	_, err := svc.Acknowledge(alert.ID, firstUser)
	require.NoError(t, err)

	_, err = svc.Acknowledge(alert.ID, uuid.New())
	assertAppErrorCode(t, err, "VALIDATION_ERROR")

	// The original acknowledger must survive the rejected second attempt.
	current, err := svc.Get(alert.ID)
	require.NoError(t, err)
	assert.Equal(t, firstUser, *current.AcknowledgedBy)
}

func TestAcknowledgeMissingAlertNotFound(t *testing.T) {
	svc := NewAlertService(newFakeAlertStore(), newFakeStationStore(), zap.NewNop())

	_, err := svc.Acknowledge(uuid.New(), uuid.New())
	assertAppErrorCode(t, err, "NOT_FOUND")
}

func TestResolveAlertTwiceRejected(t *testing.T) {
	alert := &models.AlertWithStation{Alert: models.Alert{
		ID:    uuid.New(),
		Title: "Battery bank offline",
	}}
	svc := NewAlertService(newFakeAlertStore(alert), newFakeStationStore(), zap.NewNop())

	_, err := svc.Resolve(alert.ID)
	require.NoError(t, err)

	_, err = svc.Resolve(alert.ID)
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func TestResolveWithoutAcknowledgeAllowed(t *testing.T) {
	alert := &models.AlertWithStation{Alert: models.Alert{
		ID:    uuid.New(),
		Title: "Battery bank offline",
	}}
	svc := NewAlertService(newFakeAlertStore(alert), newFakeStationStore(), zap.NewNop())

	resolved, err := svc.Resolve(alert.ID)
	require.NoError(t, err)
	assert.NotNil(t, resolved.ResolvedAt)
	assert.Nil(t, resolved.AcknowledgedAt)
}
