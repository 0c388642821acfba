package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// MaintenanceType enumerates the kinds of maintenance work.
type MaintenanceType string

const (
	MaintenanceScheduled  MaintenanceType = "scheduled"
	MaintenanceCorrective MaintenanceType = "corrective"
	MaintenanceEmergency  MaintenanceType = "emergency"
	MaintenanceInspection MaintenanceType = "inspection"
)

// MaintenanceState is the lifecycle status of a maintenance record.
type MaintenanceState string

const (
	MaintenanceStateScheduled  MaintenanceState = "scheduled"
	MaintenanceStateInProgress MaintenanceState = "in_progress"
	MaintenanceStateCompleted  MaintenanceState = "completed"
	MaintenanceStateCancelled  MaintenanceState = "cancelled"
)

// ValidMaintenanceState reports whether s names a known lifecycle status.
func ValidMaintenanceState(s string) bool {
	switch MaintenanceState(s) {
	case MaintenanceStateScheduled, MaintenanceStateInProgress, MaintenanceStateCompleted, MaintenanceStateCancelled:
		return true
	}
	return false
}

// MaintenanceRecord represents the maintenance_records table.
type MaintenanceRecord struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	StationID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"station_id"`
	MaintenanceType MaintenanceType  `gorm:"not null;size:20" json:"maintenance_type"`
	Description     string           `gorm:"not null;type:text" json:"description"`
	ScheduledAt     time.Time        `gorm:"not null" json:"scheduled_at"`
	CompletedAt     *time.Time       `json:"completed_at"`
	TechnicianID    *uuid.UUID       `gorm:"type:uuid" json:"technician_id"`
	Notes           *string          `gorm:"type:text" json:"notes"`
	Attachments     pq.StringArray   `gorm:"type:text[]" json:"attachments"`
	Status          MaintenanceState `gorm:"not null;size:20;default:'scheduled'" json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// TableName specifies the table name for MaintenanceRecord model
func (MaintenanceRecord) TableName() string {
	return "maintenance_records"
}

// MaintenanceWithNames includes the station and technician names for lists.
type MaintenanceWithNames struct {
	MaintenanceRecord
	StationName    string `json:"station_name,omitempty"`
	TechnicianName string `json:"technician_name,omitempty"`
}
