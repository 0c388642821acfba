package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lighthouse-iot-backend/internal/models"
)

type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepo(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// AlertFilter holds the optional predicates for alert listings. Acknowledged
// and Resolved are nullness filters: true matches alerts with the timestamp
// set, false matches alerts without it.
type AlertFilter struct {
	StationID    *uuid.UUID
	AlertType    *string
	Severity     *string
	Acknowledged *bool
	Resolved     *bool
	StartDate    *time.Time
	EndDate      *time.Time
}

func (fl AlertFilter) build() *Filters {
	f := &Filters{}
	if fl.StationID != nil {
		f.Equals("alerts.station_id", *fl.StationID)
	}
	if fl.AlertType != nil {
		f.Equals("alerts.alert_type", *fl.AlertType)
	}
	if fl.Severity != nil {
		f.Equals("alerts.severity", *fl.Severity)
	}
	if fl.Acknowledged != nil {
		f.Nullness("alerts.acknowledged_at", *fl.Acknowledged)
	}
	if fl.Resolved != nil {
		f.Nullness("alerts.resolved_at", *fl.Resolved)
	}
	if fl.StartDate != nil {
		f.From("alerts.created_at", *fl.StartDate)
	}
	if fl.EndDate != nil {
		f.Until("alerts.created_at", *fl.EndDate)
	}
	return f
}

func (r *AlertRepository) withStation() *gorm.DB {
	return r.db.Table("alerts").
		Select("alerts.*, stations.name AS station_name").
		Joins("LEFT JOIN stations ON alerts.station_id = stations.id")
}

// Create inserts a new alert
func (r *AlertRepository) Create(alert *models.Alert) error {
	return r.db.Create(alert).Error
}

// GetByID retrieves an alert with its station name.
func (r *AlertRepository) GetByID(id uuid.UUID) (*models.AlertWithStation, error) {
	var row models.AlertWithStation
	res := r.withStation().Where("alerts.id = ?", id).Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

// Acknowledge marks an alert acknowledged if and only if it has not been
// acknowledged yet; the conditional update is the concurrency guard, so only
// one concurrent acknowledger wins. Returns the number of rows updated.
func (r *AlertRepository) Acknowledge(id, userID uuid.UUID) (int64, error) {
	res := r.db.Model(&models.Alert{}).
		Where("id = ? AND acknowledged_at IS NULL", id).
		Updates(map[string]interface{}{
			"acknowledged_at": gorm.Expr("NOW()"),
			"acknowledged_by": userID,
		})
	return res.RowsAffected, res.Error
}

// Resolve marks an alert resolved under the same single-transition guard.
func (r *AlertRepository) Resolve(id uuid.UUID) (int64, error) {
	res := r.db.Model(&models.Alert{}).
		Where("id = ? AND resolved_at IS NULL", id).
		Update("resolved_at", gorm.Expr("NOW()"))
	return res.RowsAffected, res.Error
}

// List returns a page of alerts (joined with station names) and the total
// count for the same filters.
func (r *AlertRepository) List(filter AlertFilter, p Pagination) ([]models.AlertWithStation, int64, error) {
	f := filter.build()

	var total int64
	countQ := r.db.Table("alerts").
		Joins("LEFT JOIN stations ON alerts.station_id = stations.id")
	if err := f.Apply(countQ).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.AlertWithStation
	err := p.Apply(f.Apply(r.withStation()).Order("alerts.created_at DESC")).Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// RecentByStation returns the newest alerts for one station.
func (r *AlertRepository) RecentByStation(stationID uuid.UUID, limit int) ([]models.Alert, error) {
	var alerts []models.Alert
	err := r.db.Where("station_id = ?", stationID).
		Order("created_at DESC").
		Limit(limit).
		Find(&alerts).Error
	return alerts, err
}

// Stats aggregates alert counts by severity and open state, optionally scoped
// to one station.
func (r *AlertRepository) Stats(stationID *uuid.UUID) (*models.AlertStats, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE severity = 'critical') AS critical,
			COUNT(*) FILTER (WHERE severity = 'high') AS high,
			COUNT(*) FILTER (WHERE severity = 'medium') AS medium,
			COUNT(*) FILTER (WHERE severity = 'low') AS low,
			COUNT(*) FILTER (WHERE severity = 'info') AS info,
			COUNT(*) FILTER (WHERE acknowledged_at IS NULL) AS unacknowledged,
			COUNT(*) FILTER (WHERE resolved_at IS NULL) AS unresolved
		FROM alerts`

	var stats models.AlertStats
	var err error
	if stationID != nil {
		err = r.db.Raw(query+" WHERE station_id = ?", *stationID).Scan(&stats).Error
	} else {
		err = r.db.Raw(query).Scan(&stats).Error
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
