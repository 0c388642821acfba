package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// StationStatus is the operational status of a station.
type StationStatus string

const (
	StationActive         StationStatus = "active"
	StationInactive       StationStatus = "inactive"
	StationMaintenance    StationStatus = "maintenance"
	StationDecommissioned StationStatus = "decommissioned"
)

// ValidStationStatus reports whether s names a known station status.
func ValidStationStatus(s string) bool {
	switch StationStatus(s) {
	case StationActive, StationInactive, StationMaintenance, StationDecommissioned:
		return true
	}
	return false
}

// Station represents a lighthouse station. The location column is a PostGIS
// geography point; reads select ST_Y/ST_X into the Lat/Lng fields and writes
// go through ST_SetSRID(ST_MakePoint(lng, lat), 4326), so both fields are
// excluded from gorm's column mapping for the stations table itself.
type Station struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code           string            `gorm:"uniqueIndex;not null;size:20" json:"code"`
	Name           string            `gorm:"not null;size:255" json:"name"`
	Lat            float64           `gorm:"->;column:lat" json:"lat"`
	Lng            float64           `gorm:"->;column:lng" json:"lng"`
	RegionID       *uuid.UUID        `gorm:"type:uuid;index" json:"region_id"`
	Status         StationStatus     `gorm:"not null;size:20;default:'active'" json:"status"`
	CommissionedAt *time.Time        `json:"commissioned_at"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb" json:"metadata"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// TableName specifies the table name for Station model
func (Station) TableName() string {
	return "stations"
}
