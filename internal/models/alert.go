package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AlertType enumerates the kinds of alerts the system raises.
type AlertType string

const (
	AlertFire           AlertType = "fire"
	AlertIntrusion      AlertType = "intrusion"
	AlertPowerFailure   AlertType = "power_failure"
	AlertDeviceOffline  AlertType = "device_offline"
	AlertAnomaly        AlertType = "anomaly"
	AlertMaintenanceDue AlertType = "maintenance_due"
)

// SeverityLevel orders alert severities from critical down to info.
type SeverityLevel string

const (
	SeverityCritical SeverityLevel = "critical"
	SeverityHigh     SeverityLevel = "high"
	SeverityMedium   SeverityLevel = "medium"
	SeverityLow      SeverityLevel = "low"
	SeverityInfo     SeverityLevel = "info"
)

// Alert represents the alerts table. Acknowledgment and resolution are
// independent single-shot transitions guarded by conditional updates.
type Alert struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	StationID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"station_id"`
	AlertType      AlertType         `gorm:"not null;size:30" json:"alert_type"`
	Severity       SeverityLevel     `gorm:"not null;size:20" json:"severity"`
	Title          string            `gorm:"not null;size:255" json:"title"`
	Message        string            `gorm:"type:text" json:"message,omitempty"`
	AcknowledgedAt *time.Time        `json:"acknowledged_at"`
	AcknowledgedBy *uuid.UUID        `gorm:"type:uuid" json:"acknowledged_by"`
	ResolvedAt     *time.Time        `json:"resolved_at"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// TableName specifies the table name for Alert model
func (Alert) TableName() string {
	return "alerts"
}

// AlertWithStation includes the station name for list display.
type AlertWithStation struct {
	Alert
	StationName string `json:"station_name,omitempty"`
}

// AlertStats aggregates alert counts by severity and open state.
type AlertStats struct {
	Total          int64 `json:"total"`
	Critical       int64 `json:"critical"`
	High           int64 `json:"high"`
	Medium         int64 `json:"medium"`
	Low            int64 `json:"low"`
	Info           int64 `json:"info"`
	Unacknowledged int64 `json:"unacknowledged"`
	Unresolved     int64 `json:"unresolved"`
}
