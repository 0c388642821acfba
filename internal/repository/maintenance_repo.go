package repository

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"lighthouse-iot-backend/internal/models"
)

type MaintenanceRepository struct {
	db *gorm.DB
}

func NewMaintenanceRepo(db *gorm.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

// MaintenanceFilter holds the optional predicates for maintenance listings.
type MaintenanceFilter struct {
	StationID *uuid.UUID
	Status    *string
}

func (fl MaintenanceFilter) build() *Filters {
	f := &Filters{}
	if fl.StationID != nil {
		f.Equals("maintenance_records.station_id", *fl.StationID)
	}
	if fl.Status != nil {
		f.Equals("maintenance_records.status", *fl.Status)
	}
	return f
}

func (r *MaintenanceRepository) withNames() *gorm.DB {
	return r.db.Table("maintenance_records").
		Select("maintenance_records.*, stations.name AS station_name, users.full_name AS technician_name").
		Joins("LEFT JOIN stations ON maintenance_records.station_id = stations.id").
		Joins("LEFT JOIN users ON maintenance_records.technician_id = users.id")
}

// Create inserts a new maintenance record
func (r *MaintenanceRepository) Create(record *models.MaintenanceRecord) error {
	return r.db.Create(record).Error
}

// GetByID retrieves a maintenance record with station and technician names.
func (r *MaintenanceRepository) GetByID(id uuid.UUID) (*models.MaintenanceWithNames, error) {
	var row models.MaintenanceWithNames
	res := r.withNames().Where("maintenance_records.id = ?", id).Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

// Update applies a partial update to a maintenance record.
func (r *MaintenanceRepository) Update(id uuid.UUID, updates map[string]interface{}) (*models.MaintenanceWithNames, error) {
	if len(updates) > 0 {
		res := r.db.Model(&models.MaintenanceRecord{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.GetByID(id)
}

// Complete marks a record completed. Notes and attachments are merged only
// when newly provided; COALESCE keeps the prior values otherwise.
func (r *MaintenanceRepository) Complete(id uuid.UUID, notes *string, attachments []string) (*models.MaintenanceWithNames, error) {
	var att interface{}
	if attachments != nil {
		att = pq.StringArray(attachments)
	}
	res := r.db.Exec(`
		UPDATE maintenance_records
		SET completed_at = NOW(),
		    status = 'completed',
		    notes = COALESCE(?::text, notes),
		    attachments = COALESCE(?::text[], attachments),
		    updated_at = NOW()
		WHERE id = ?`,
		notes, att, id,
	)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(id)
}

// List returns a page of maintenance records (with names) and the total count
// for the same filters, newest scheduled first.
func (r *MaintenanceRepository) List(filter MaintenanceFilter, p Pagination) ([]models.MaintenanceWithNames, int64, error) {
	f := filter.build()

	var total int64
	countQ := r.db.Table("maintenance_records").
		Joins("LEFT JOIN stations ON maintenance_records.station_id = stations.id").
		Joins("LEFT JOIN users ON maintenance_records.technician_id = users.id")
	if err := f.Apply(countQ).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.MaintenanceWithNames
	err := p.Apply(f.Apply(r.withNames()).Order("maintenance_records.scheduled_at DESC")).Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
