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

type alertStore interface {
	Create(alert *models.Alert) error
	GetByID(id uuid.UUID) (*models.AlertWithStation, error)
	Acknowledge(id, userID uuid.UUID) (int64, error)
	Resolve(id uuid.UUID) (int64, error)
	List(filter repository.AlertFilter, p repository.Pagination) ([]models.AlertWithStation, int64, error)
	RecentByStation(stationID uuid.UUID, limit int) ([]models.Alert, error)
	Stats(stationID *uuid.UUID) (*models.AlertStats, error)
}

type AlertService struct {
	alerts   alertStore
	stations stationReader
	logger   *zap.Logger
}

func NewAlertService(alerts alertStore, stations stationReader, logger *zap.Logger) *AlertService {
	return &AlertService{
		alerts:   alerts,
		stations: stations,
		logger:   logger,
	}
}

// AlertCreateInput carries the fields needed to raise an alert.
type AlertCreateInput struct {
	StationID uuid.UUID
	AlertType models.AlertType
	Severity  models.SeverityLevel
	Title     string
	Message   string
	Metadata  datatypes.JSONMap
}

// Create raises an alert against an existing station.
func (s *AlertService) Create(in AlertCreateInput) (*models.AlertWithStation, error) {
	if _, err := s.station(in.StationID); err != nil {
		return nil, err
	}

	alert := &models.Alert{
		StationID: in.StationID,
		AlertType: in.AlertType,
		Severity:  in.Severity,
		Title:     in.Title,
		Message:   in.Message,
		Metadata:  in.Metadata,
	}
	if err := s.alerts.Create(alert); err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}

	s.logger.Info("Alert raised",
		zap.String("alert_id", alert.ID.String()),
		zap.String("station_id", in.StationID.String()),
		zap.String("severity", string(in.Severity)),
	)
	return s.Get(alert.ID)
}

// Get returns an alert with its station name.
func (s *AlertService) Get(id uuid.UUID) (*models.AlertWithStation, error) {
	alert, err := s.alerts.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Alert", id)
		}
		return nil, err
	}
	return alert, nil
}

// Acknowledge records who acknowledged an alert. Acknowledging twice is
// rejected; the stored acknowledgement never changes once set.
func (s *AlertService) Acknowledge(id, userID uuid.UUID) (*models.AlertWithStation, error) {
	rows, err := s.alerts.Acknowledge(id, userID)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// Either the alert does not exist or it was already acknowledged;
		// one more read tells the two apart.
		if _, err := s.Get(id); err != nil {
			return nil, err
		}
		return nil, apperrors.Validation("Alert has already been acknowledged")
	}

	s.logger.Info("Alert acknowledged",
		zap.String("alert_id", id.String()),
		zap.String("user_id", userID.String()),
	)
	return s.Get(id)
}

// Resolve marks an alert as resolved. Resolving twice is rejected.
func (s *AlertService) Resolve(id uuid.UUID) (*models.AlertWithStation, error) {
	rows, err := s.alerts.Resolve(id)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		if _, err := s.Get(id); err != nil {
			return nil, err
		}
		return nil, apperrors.Validation("Alert has already been resolved")
	}

	s.logger.Info("Alert resolved", zap.String("alert_id", id.String()))
	return s.Get(id)
}

// List returns a page of alerts with the matching total.
func (s *AlertService) List(filter repository.AlertFilter, page, limit int) ([]models.AlertWithStation, int64, repository.Pagination, error) {
	p := repository.NewPagination(page, limit, 20, 100)
	alerts, total, err := s.alerts.List(filter, p)
	if err != nil {
		return nil, 0, p, err
	}
	return alerts, total, p, nil
}

// RecentByStation returns the newest alerts for one station.
func (s *AlertService) RecentByStation(stationID uuid.UUID, limit int) ([]models.Alert, error) {
	if _, err := s.station(stationID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.alerts.RecentByStation(stationID, limit)
}

// Stats returns alert counts, fleet-wide or for one station.
func (s *AlertService) Stats(stationID *uuid.UUID) (*models.AlertStats, error) {
	if stationID != nil {
		if _, err := s.station(*stationID); err != nil {
			return nil, err
		}
	}
	return s.alerts.Stats(stationID)
}

func (s *AlertService) station(id uuid.UUID) (*models.Station, error) {
	station, err := s.stations.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Station", id)
		}
		return nil, err
	}
	return station, nil
}
