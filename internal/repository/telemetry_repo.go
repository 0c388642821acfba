package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lighthouse-iot-backend/internal/models"
)

type TelemetryRepository struct {
	db *gorm.DB
}

func NewTelemetryRepo(db *gorm.DB) *TelemetryRepository {
	return &TelemetryRepository{db: db}
}

// TelemetryFilter holds the optional predicates for telemetry queries.
type TelemetryFilter struct {
	StationID  *uuid.UUID
	DeviceID   *uuid.UUID
	MetricType *string
	StartTime  *time.Time
	EndTime    *time.Time
}

func (fl TelemetryFilter) build() *Filters {
	f := &Filters{}
	if fl.StationID != nil {
		f.Equals("station_id", *fl.StationID)
	}
	if fl.DeviceID != nil {
		f.Equals("device_id", *fl.DeviceID)
	}
	if fl.MetricType != nil {
		f.Equals("metric_type", *fl.MetricType)
	}
	if fl.StartTime != nil {
		f.From("time", *fl.StartTime)
	}
	if fl.EndTime != nil {
		f.Until("time", *fl.EndTime)
	}
	return f
}

// InsertBatch stores a set of samples as a single multi-row insert; either all
// rows commit or none do.
func (r *TelemetryRepository) InsertBatch(samples []models.Telemetry) error {
	if len(samples) == 0 {
		return nil
	}
	return r.db.Create(&samples).Error
}

// List queries samples ordered by time descending.
func (r *TelemetryRepository) List(filter TelemetryFilter, p Pagination) ([]models.Telemetry, error) {
	var samples []models.Telemetry
	err := p.Apply(filter.build().Apply(r.db.Model(&models.Telemetry{})).Order("time DESC")).
		Find(&samples).Error
	return samples, err
}

// Aggregates buckets samples with date_trunc and returns avg/min/max/count per
// bucket, newest bucket first. truncUnit must be one of minute/hour/day.
func (r *TelemetryRepository) Aggregates(stationID uuid.UUID, metricType string, start, end time.Time, truncUnit string) ([]models.TelemetryAggregate, error) {
	var rows []models.TelemetryAggregate
	err := r.db.Raw(`
		SELECT
			date_trunc(?, time) AS bucket,
			station_id,
			metric_type,
			AVG(value) AS avg_value,
			MIN(value) AS min_value,
			MAX(value) AS max_value,
			COUNT(*) AS sample_count
		FROM telemetry
		WHERE station_id = ?
		  AND metric_type = ?
		  AND time >= ?
		  AND time <= ?
		GROUP BY bucket, station_id, metric_type
		ORDER BY bucket DESC`,
		truncUnit, stationID, metricType, start, end,
	).Scan(&rows).Error
	return rows, err
}

// LatestSample is the newest reading for one metric type.
type LatestSample struct {
	Time       time.Time
	MetricType string
	Value      float64
	Unit       string
}

// Latest returns the most recent sample per distinct metric type for a station.
func (r *TelemetryRepository) Latest(stationID uuid.UUID) ([]LatestSample, error) {
	var rows []LatestSample
	err := r.db.Raw(`
		SELECT DISTINCT ON (metric_type)
			time, metric_type, value, unit
		FROM telemetry
		WHERE station_id = ?
		ORDER BY metric_type, time DESC`,
		stationID,
	).Scan(&rows).Error
	return rows, err
}
