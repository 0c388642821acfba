package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DeviceType enumerates the kinds of IoT hardware attached to a station.
type DeviceType string

const (
	DeviceGateway        DeviceType = "gateway"
	DeviceSensorPower    DeviceType = "sensor_power"
	DeviceSensorSecurity DeviceType = "sensor_security"
	DeviceCamera         DeviceType = "camera"
	DeviceSensorFire     DeviceType = "sensor_fire"
)

// DeviceStatus is the operational status of a device.
type DeviceStatus string

const (
	DeviceOnline      DeviceStatus = "online"
	DeviceOffline     DeviceStatus = "offline"
	DeviceError       DeviceStatus = "error"
	DeviceMaintenance DeviceStatus = "maintenance"
)

// Device represents the devices table. Each device is owned by exactly one
// station; the gateway device is the canonical ingestion endpoint.
type Device struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	StationID       uuid.UUID         `gorm:"type:uuid;not null;index" json:"station_id"`
	DeviceType      DeviceType        `gorm:"not null;size:30" json:"device_type"`
	Model           string            `gorm:"size:100" json:"model,omitempty"`
	SerialNumber    string            `gorm:"size:100" json:"serial_number,omitempty"`
	FirmwareVersion string            `gorm:"size:50" json:"firmware_version,omitempty"`
	LastSeenAt      *time.Time        `json:"last_seen_at"`
	Status          DeviceStatus      `gorm:"not null;size:20;default:'offline'" json:"status"`
	Config          datatypes.JSONMap `gorm:"type:jsonb" json:"config"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// TableName specifies the table name for Device model
func (Device) TableName() string {
	return "devices"
}
