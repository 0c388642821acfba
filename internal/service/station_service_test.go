package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"lighthouse-iot-backend/internal/apperrors"
	"lighthouse-iot-backend/internal/models"
	"lighthouse-iot-backend/internal/repository"
)

type fakeStationStore struct {
	stations map[uuid.UUID]*models.Station
}

func newFakeStationStore(stations ...*models.Station) *fakeStationStore {
	s := &fakeStationStore{stations: map[uuid.UUID]*models.Station{}}
	for _, st := range stations {
		s.stations[st.ID] = st
	}
	return s
}

func (s *fakeStationStore) GetByID(id uuid.UUID) (*models.Station, error) {
	if st, ok := s.stations[id]; ok {
		return st, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeStationStore) GetByCode(code string) (*models.Station, error) {
	for _, st := range s.stations {
		if st.Code == code {
			return st, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeStationStore) Create(code, name string, lat, lng float64, regionID *uuid.UUID, metadata datatypes.JSONMap) (*models.Station, error) {
	st := &models.Station{
		ID:       uuid.New(),
		Code:     code,
		Name:     name,
		Lat:      lat,
		Lng:      lng,
		RegionID: regionID,
		Status:   models.StationActive,
		Metadata: metadata,
	}
	s.stations[st.ID] = st
	return st, nil
}

func (s *fakeStationStore) Update(id uuid.UUID, upd repository.StationUpdate) (*models.Station, error) {
	st, ok := s.stations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if upd.Name != nil {
		st.Name = *upd.Name
	}
	if upd.Lat != nil && upd.Lng != nil {
		st.Lat = *upd.Lat
		st.Lng = *upd.Lng
	}
	if upd.RegionID != nil {
		st.RegionID = upd.RegionID
	}
	if upd.Status != nil {
		st.Status = models.StationStatus(*upd.Status)
	}
	if upd.Metadata != nil {
		st.Metadata = upd.Metadata
	}
	return st, nil
}

func (s *fakeStationStore) Delete(id uuid.UUID) error {
	if _, ok := s.stations[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.stations, id)
	return nil
}

func (s *fakeStationStore) List(filter repository.StationFilter, p repository.Pagination) ([]models.Station, int64, error) {
	var out []models.Station
	for _, st := range s.stations {
		out = append(out, *st)
	}
	return out, int64(len(out)), nil
}

func (s *fakeStationStore) ListByRegion(regionID uuid.UUID) ([]models.Station, error) {
	var out []models.Station
	for _, st := range s.stations {
		if st.RegionID != nil && *st.RegionID == regionID {
			out = append(out, *st)
		}
	}
	return out, nil
}

func (s *fakeStationStore) CodeExists(code string, excludeID *uuid.UUID) (bool, error) {
	for _, st := range s.stations {
		if st.Code == code && (excludeID == nil || st.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func TestCreateStationDuplicateCodeConflicts(t *testing.T) {
	store := newFakeStationStore(&models.Station{ID: uuid.New(), Code: "VT-001", Name: "Punta Carena"})
	svc := NewStationService(store, zap.NewNop())

	_, err := svc.Create(StationCreateInput{Code: "VT-001", Name: "Another Tower", Lat: 40.5, Lng: 14.2})
	assertAppErrorCode(t, err, "CONFLICT_ERROR")

	appErr, _ := apperrors.As(err)
	assert.Equal(t, "VT-001", appErr.Details["code"])
}

func TestCreateStationSucceeds(t *testing.T) {
	svc := NewStationService(newFakeStationStore(), zap.NewNop())

	station, err := svc.Create(StationCreateInput{Code: "VT-002", Name: "Capo Miseno", Lat: 40.78, Lng: 14.08})
	require.NoError(t, err)
	assert.Equal(t, "VT-002", station.Code)
	assert.Equal(t, models.StationActive, station.Status)
}

func TestGetStationNotFound(t *testing.T) {
	svc := NewStationService(newFakeStationStore(), zap.NewNop())

	_, err := svc.Get(uuid.New())
	assertAppErrorCode(t, err, "NOT_FOUND")
}

func TestUpdateStationRejectsSingleCoordinate(t *testing.T) {
	station := &models.Station{ID: uuid.New(), Code: "VT-001", Name: "Punta Carena"}
	svc := NewStationService(newFakeStationStore(station), zap.NewNop())

	lat := 40.5
	_, err := svc.Update(station.ID, repository.StationUpdate{Lat: &lat})
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func TestUpdateStationPartialKeepsOtherFields(t *testing.T) {
	station := &models.Station{
		ID:     uuid.New(),
		Code:   "VT-001",
		Name:   "Punta Carena",
		Lat:    40.53,
		Lng:    14.19,
		Status: models.StationActive,
	}
	svc := NewStationService(newFakeStationStore(station), zap.NewNop())

	name := "Punta Carena Light"
	updated, err := svc.Update(station.ID, repository.StationUpdate{Name: &name})
	require.NoError(t, err)

	assert.Equal(t, "Punta Carena Light", updated.Name)
	assert.Equal(t, 40.53, updated.Lat)
	assert.Equal(t, 14.19, updated.Lng)
	assert.Equal(t, models.StationActive, updated.Status)
}

func TestUpdateStationRejectsUnknownStatus(t *testing.T) {
	station := &models.Station{ID: uuid.New(), Code: "VT-001"}
	svc := NewStationService(newFakeStationStore(station), zap.NewNop())

	status := "sunk"
	_, err := svc.Update(station.ID, repository.StationUpdate{Status: &status})
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func TestListStationsRejectsUnknownStatus(t *testing.T) {
	svc := NewStationService(newFakeStationStore(), zap.NewNop())

	status := "broken"
	_, _, _, err := svc.List(&status, nil, nil, 1, 20)
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}
