package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MetricType identifies a telemetry metric. The set is open; these are the
// metrics the gateway payload fans out into.
type MetricType string

const (
	MetricBatteryVoltage     MetricType = "battery_voltage"
	MetricBatteryCurrent     MetricType = "battery_current"
	MetricBatterySOC         MetricType = "battery_soc"
	MetricBatteryTemperature MetricType = "battery_temperature"
	MetricSolarVoltage       MetricType = "solar_voltage"
	MetricSolarCurrent       MetricType = "solar_current"
	MetricSolarPower         MetricType = "solar_power"
	MetricLoadPower          MetricType = "load_power"
	MetricLightStatus        MetricType = "light_status"
	MetricLightIntensity     MetricType = "light_intensity"
	MetricLightPower         MetricType = "light_power"
	MetricTemperature        MetricType = "temperature"
	MetricHumidity           MetricType = "humidity"
	MetricWindSpeed          MetricType = "wind_speed"
	MetricWindDirection      MetricType = "wind_direction"
	MetricPressure           MetricType = "pressure"
	MetricSignalStrength     MetricType = "signal_strength"
)

// Telemetry is one immutable sensor sample in the time-partitioned telemetry
// table. Samples are append-only and never updated or deleted through the API.
type Telemetry struct {
	Time       time.Time         `gorm:"primaryKey" json:"time"`
	StationID  uuid.UUID         `gorm:"type:uuid;primaryKey;index" json:"station_id"`
	DeviceID   uuid.UUID         `gorm:"type:uuid;primaryKey" json:"device_id"`
	MetricType MetricType        `gorm:"primaryKey;size:40" json:"metric_type"`
	Value      float64           `gorm:"not null" json:"value"`
	Unit       string            `gorm:"size:20" json:"unit,omitempty"`
	Quality    int               `gorm:"not null;default:100" json:"quality"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
}

// TableName specifies the table name for Telemetry model
func (Telemetry) TableName() string {
	return "telemetry"
}

// TelemetryAggregate is one time bucket of aggregated samples.
type TelemetryAggregate struct {
	Bucket      time.Time  `json:"bucket"`
	StationID   uuid.UUID  `json:"station_id"`
	MetricType  MetricType `json:"metric_type"`
	AvgValue    float64    `json:"avg_value"`
	MinValue    float64    `json:"min_value"`
	MaxValue    float64    `json:"max_value"`
	SampleCount int64      `json:"sample_count"`
}

// LatestTelemetry holds the most recent value per metric for a station.
type LatestTelemetry struct {
	StationID  uuid.UUID          `json:"station_id"`
	Metrics    map[string]float64 `json:"metrics"`
	LastUpdate time.Time          `json:"last_update"`
}
