package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"lighthouse-iot-backend/internal/apperrors"
	"lighthouse-iot-backend/internal/models"
	"lighthouse-iot-backend/internal/repository"
)

type maintenanceStore interface {
	Create(record *models.MaintenanceRecord) error
	GetByID(id uuid.UUID) (*models.MaintenanceWithNames, error)
	Update(id uuid.UUID, updates map[string]interface{}) (*models.MaintenanceWithNames, error)
	Complete(id uuid.UUID, notes *string, attachments []string) (*models.MaintenanceWithNames, error)
	List(filter repository.MaintenanceFilter, p repository.Pagination) ([]models.MaintenanceWithNames, int64, error)
}

type MaintenanceService struct {
	records  maintenanceStore
	stations stationReader
	logger   *zap.Logger
}

func NewMaintenanceService(records maintenanceStore, stations stationReader, logger *zap.Logger) *MaintenanceService {
	return &MaintenanceService{
		records:  records,
		stations: stations,
		logger:   logger,
	}
}

// MaintenanceCreateInput carries the fields needed to schedule maintenance.
type MaintenanceCreateInput struct {
	StationID       uuid.UUID
	MaintenanceType models.MaintenanceType
	Description     string
	ScheduledAt     time.Time
	TechnicianID    *uuid.UUID
}

// MaintenanceUpdateInput holds a partial update; nil fields are unchanged.
type MaintenanceUpdateInput struct {
	ScheduledAt  *time.Time
	TechnicianID *uuid.UUID
	Status       *string
	Notes        *string
}

// Create schedules maintenance work for an existing station.
func (s *MaintenanceService) Create(in MaintenanceCreateInput) (*models.MaintenanceWithNames, error) {
	if _, err := s.station(in.StationID); err != nil {
		return nil, err
	}

	record := &models.MaintenanceRecord{
		StationID:       in.StationID,
		MaintenanceType: in.MaintenanceType,
		Description:     in.Description,
		ScheduledAt:     in.ScheduledAt,
		TechnicianID:    in.TechnicianID,
		Status:          models.MaintenanceStateScheduled,
	}
	if err := s.records.Create(record); err != nil {
		return nil, fmt.Errorf("failed to create maintenance record: %w", err)
	}

	s.logger.Info("Maintenance scheduled",
		zap.String("record_id", record.ID.String()),
		zap.String("station_id", in.StationID.String()),
	)
	return s.Get(record.ID)
}

// Get returns a maintenance record with station and technician names.
func (s *MaintenanceService) Get(id uuid.UUID) (*models.MaintenanceWithNames, error) {
	record, err := s.records.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Maintenance record", id)
		}
		return nil, err
	}
	return record, nil
}

// Update applies a partial update to a maintenance record.
func (s *MaintenanceService) Update(id uuid.UUID, in MaintenanceUpdateInput) (*models.MaintenanceWithNames, error) {
	updates := map[string]interface{}{}
	if in.ScheduledAt != nil {
		updates["scheduled_at"] = *in.ScheduledAt
	}
	if in.TechnicianID != nil {
		updates["technician_id"] = *in.TechnicianID
	}
	if in.Status != nil {
		if !models.ValidMaintenanceState(*in.Status) {
			return nil, apperrors.Validation(fmt.Sprintf("Unknown maintenance status '%s'", *in.Status))
		}
		updates["status"] = *in.Status
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}

	record, err := s.records.Update(id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Maintenance record", id)
		}
		return nil, err
	}
	return record, nil
}

// Complete closes a maintenance record, stamping the completion time. Notes
// and attachments replace the stored values only when provided.
func (s *MaintenanceService) Complete(id uuid.UUID, notes *string, attachments []string) (*models.MaintenanceWithNames, error) {
	record, err := s.records.Complete(id, notes, attachments)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Maintenance record", id)
		}
		return nil, err
	}

	s.logger.Info("Maintenance completed", zap.String("record_id", id.String()))
	return record, nil
}

// List returns a page of maintenance records with the matching total.
func (s *MaintenanceService) List(filter repository.MaintenanceFilter, page, limit int) ([]models.MaintenanceWithNames, int64, repository.Pagination, error) {
	p := repository.NewPagination(page, limit, 20, 100)
	records, total, err := s.records.List(filter, p)
	if err != nil {
		return nil, 0, p, err
	}
	return records, total, p, nil
}

func (s *MaintenanceService) station(id uuid.UUID) (*models.Station, error) {
	station, err := s.stations.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Station", id)
		}
		return nil, err
	}
	return station, nil
}
