package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lighthouse-iot-backend/internal/models"
)

type DeviceRepository struct {
	db *gorm.DB
}

func NewDeviceRepo(db *gorm.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// GetByID retrieves a device by ID
func (r *DeviceRepository) GetByID(id uuid.UUID) (*models.Device, error) {
	var device models.Device
	if err := r.db.Where("id = ?", id).First(&device).Error; err != nil {
		return nil, err
	}
	return &device, nil
}

// ListByStation returns all devices attached to a station.
func (r *DeviceRepository) ListByStation(stationID uuid.UUID) ([]models.Device, error) {
	var devices []models.Device
	err := r.db.Where("station_id = ?", stationID).
		Order("device_type, created_at").
		Find(&devices).Error
	return devices, err
}

// GetOrCreateGateway returns the canonical gateway device for a station,
// creating it lazily on first ingestion. The lookup-then-insert is not atomic;
// concurrent first ingests may race, which is acceptable for a device registry
// row that is idempotent in content.
func (r *DeviceRepository) GetOrCreateGateway(stationID uuid.UUID) (*models.Device, error) {
	var device models.Device
	err := r.db.Where("station_id = ? AND device_type = ?", stationID, models.DeviceGateway).
		First(&device).Error
	if err == nil {
		return &device, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	device = models.Device{
		StationID:  stationID,
		DeviceType: models.DeviceGateway,
		Status:     models.DeviceOffline,
	}
	if err := r.db.Create(&device).Error; err != nil {
		return nil, err
	}
	return &device, nil
}

// UpdateStatus sets the device status and bumps last_seen_at.
func (r *DeviceRepository) UpdateStatus(id uuid.UUID, status models.DeviceStatus) error {
	res := r.db.Model(&models.Device{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       status,
			"last_seen_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
