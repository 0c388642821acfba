package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"lighthouse-iot-backend/internal/apperrors"
	"lighthouse-iot-backend/internal/models"
	"lighthouse-iot-backend/internal/repository"
)

type stationStore interface {
	GetByID(id uuid.UUID) (*models.Station, error)
	GetByCode(code string) (*models.Station, error)
	Create(code, name string, lat, lng float64, regionID *uuid.UUID, metadata datatypes.JSONMap) (*models.Station, error)
	Update(id uuid.UUID, upd repository.StationUpdate) (*models.Station, error)
	Delete(id uuid.UUID) error
	List(filter repository.StationFilter, p repository.Pagination) ([]models.Station, int64, error)
	ListByRegion(regionID uuid.UUID) ([]models.Station, error)
	CodeExists(code string, excludeID *uuid.UUID) (bool, error)
}

type StationService struct {
	stations stationStore
	logger   *zap.Logger
}

func NewStationService(stations stationStore, logger *zap.Logger) *StationService {
	return &StationService{
		stations: stations,
		logger:   logger,
	}
}

// StationCreateInput carries the fields needed to register a station.
type StationCreateInput struct {
	Code     string
	Name     string
	Lat      float64
	Lng      float64
	RegionID *uuid.UUID
	Metadata datatypes.JSONMap
}

// Create registers a new station. The station code must be unique across the
// fleet; a duplicate yields a conflict carrying the offending code.
func (s *StationService) Create(in StationCreateInput) (*models.Station, error) {
	exists, err := s.stations.CodeExists(in.Code, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, codeConflict(in.Code)
	}

	station, err := s.stations.Create(in.Code, in.Name, in.Lat, in.Lng, in.RegionID, in.Metadata)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, codeConflict(in.Code)
		}
		return nil, fmt.Errorf("failed to create station: %w", err)
	}

	s.logger.Info("Station created",
		zap.String("station_id", station.ID.String()),
		zap.String("code", station.Code),
	)
	return station, nil
}

// Get returns a station by ID.
func (s *StationService) Get(id uuid.UUID) (*models.Station, error) {
	station, err := s.stations.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Station", id)
		}
		return nil, err
	}
	return station, nil
}

// GetByCode returns a station by its fleet code.
func (s *StationService) GetByCode(code string) (*models.Station, error) {
	station, err := s.stations.GetByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Station", code)
		}
		return nil, err
	}
	return station, nil
}

// Update applies a partial update. Fields left nil keep their current value;
// coordinates move as a pair.
func (s *StationService) Update(id uuid.UUID, upd repository.StationUpdate) (*models.Station, error) {
	if (upd.Lat == nil) != (upd.Lng == nil) {
		return nil, apperrors.Validation("Latitude and longitude must be updated together")
	}
	if upd.Status != nil && !models.ValidStationStatus(*upd.Status) {
		return nil, apperrors.Validation(fmt.Sprintf("Unknown station status '%s'", *upd.Status))
	}

	station, err := s.stations.Update(id, upd)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Station", id)
		}
		return nil, err
	}

	s.logger.Info("Station updated", zap.String("station_id", id.String()))
	return station, nil
}

// Delete removes a station and, via FK cascade, its devices and telemetry.
func (s *StationService) Delete(id uuid.UUID) error {
	if err := s.stations.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Station", id)
		}
		return err
	}
	s.logger.Info("Station deleted", zap.String("station_id", id.String()))
	return nil
}

// List returns a page of stations with the matching total.
func (s *StationService) List(status, search *string, regionID *uuid.UUID, page, limit int) ([]models.Station, int64, repository.Pagination, error) {
	if status != nil && !models.ValidStationStatus(*status) {
		return nil, 0, repository.Pagination{}, apperrors.Validation(fmt.Sprintf("Unknown station status '%s'", *status))
	}
	p := repository.NewPagination(page, limit, 20, 100)
	filter := repository.StationFilter{
		Status:   status,
		RegionID: regionID,
		Search:   search,
	}
	stations, total, err := s.stations.List(filter, p)
	if err != nil {
		return nil, 0, p, err
	}
	return stations, total, p, nil
}

// ByRegion returns all stations in a region ordered by name.
func (s *StationService) ByRegion(regionID uuid.UUID) ([]models.Station, error) {
	return s.stations.ListByRegion(regionID)
}

func codeConflict(code string) error {
	return apperrors.Conflict(
		fmt.Sprintf("Station code '%s' already exists", code),
		map[string]interface{}{"code": code},
	)
}
