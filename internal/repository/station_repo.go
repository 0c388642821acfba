package repository

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"lighthouse-iot-backend/internal/models"
)

// stationColumns reads the PostGIS geography point back out as plain lat/lng.
const stationColumns = `id, code, name,
	ST_Y(location::geometry) AS lat,
	ST_X(location::geometry) AS lng,
	region_id, status, commissioned_at, metadata, created_at, updated_at`

type StationRepository struct {
	db *gorm.DB
}

func NewStationRepo(db *gorm.DB) *StationRepository {
	return &StationRepository{db: db}
}

// StationFilter holds the optional predicates for station listings.
type StationFilter struct {
	Status   *string
	RegionID *uuid.UUID
	Search   *string
}

func (fl StationFilter) build() *Filters {
	f := &Filters{}
	if fl.Status != nil {
		f.Equals("status", *fl.Status)
	}
	if fl.RegionID != nil {
		f.Equals("region_id", *fl.RegionID)
	}
	if fl.Search != nil {
		f.Search(*fl.Search, "name", "code")
	}
	return f
}

// GetByID retrieves a station by ID
func (r *StationRepository) GetByID(id uuid.UUID) (*models.Station, error) {
	var station models.Station
	res := r.db.Raw("SELECT "+stationColumns+" FROM stations WHERE id = ?", id).Scan(&station)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &station, nil
}

// GetByCode retrieves a station by its unique code
func (r *StationRepository) GetByCode(code string) (*models.Station, error) {
	var station models.Station
	res := r.db.Raw("SELECT "+stationColumns+" FROM stations WHERE code = ?", code).Scan(&station)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &station, nil
}

// Create inserts a new station with its geography point and returns the
// server-assigned row.
func (r *StationRepository) Create(code, name string, lat, lng float64, regionID *uuid.UUID, metadata datatypes.JSONMap) (*models.Station, error) {
	if metadata == nil {
		metadata = datatypes.JSONMap{}
	}
	var station models.Station
	res := r.db.Raw(`
		INSERT INTO stations (code, name, location, region_id, metadata)
		VALUES (?, ?, ST_SetSRID(ST_MakePoint(?, ?), 4326), ?, ?)
		RETURNING `+stationColumns,
		code, name, lng, lat, regionID, metadata,
	).Scan(&station)
	if res.Error != nil {
		return nil, res.Error
	}
	return &station, nil
}

// StationUpdate carries the optional fields of a partial station update.
// Location is updated only when both coordinates are present.
type StationUpdate struct {
	Name     *string
	Lat      *float64
	Lng      *float64
	RegionID *uuid.UUID
	Status   *string
	Metadata datatypes.JSONMap
}

// Update applies a partial update; untouched fields keep their prior values.
func (r *StationRepository) Update(id uuid.UUID, u StationUpdate) (*models.Station, error) {
	sets := []string{}
	args := []interface{}{}

	if u.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *u.Name)
	}
	if u.Lat != nil && u.Lng != nil {
		sets = append(sets, "location = ST_SetSRID(ST_MakePoint(?, ?), 4326)")
		args = append(args, *u.Lng, *u.Lat)
	}
	if u.RegionID != nil {
		sets = append(sets, "region_id = ?")
		args = append(args, *u.RegionID)
	}
	if u.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *u.Status)
	}
	if u.Metadata != nil {
		sets = append(sets, "metadata = ?")
		args = append(args, u.Metadata)
	}

	if len(sets) == 0 {
		return r.GetByID(id)
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	var station models.Station
	res := r.db.Raw(
		"UPDATE stations SET "+strings.Join(sets, ", ")+" WHERE id = ? RETURNING "+stationColumns,
		args...,
	).Scan(&station)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &station, nil
}

// Delete removes a station; gorm.ErrRecordNotFound when nothing matched.
func (r *StationRepository) Delete(id uuid.UUID) error {
	res := r.db.Exec("DELETE FROM stations WHERE id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns a page of stations and the total count for the same filters.
func (r *StationRepository) List(filter StationFilter, p Pagination) ([]models.Station, int64, error) {
	f := filter.build()

	var total int64
	if err := f.Apply(r.db.Table("stations")).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var stations []models.Station
	err := p.Apply(f.Apply(r.db.Table("stations").Select(stationColumns)).Order("created_at DESC")).
		Scan(&stations).Error
	if err != nil {
		return nil, 0, err
	}
	return stations, total, nil
}

// ListByRegion returns every station in a region, ordered by name.
func (r *StationRepository) ListByRegion(regionID uuid.UUID) ([]models.Station, error) {
	var stations []models.Station
	err := r.db.Raw(
		"SELECT "+stationColumns+" FROM stations WHERE region_id = ? ORDER BY name",
		regionID,
	).Scan(&stations).Error
	return stations, err
}

// CodeExists checks whether a station code is already in use, optionally
// excluding one station (for renames).
func (r *StationRepository) CodeExists(code string, excludeID *uuid.UUID) (bool, error) {
	var exists bool
	q := "SELECT EXISTS(SELECT 1 FROM stations WHERE code = ?)"
	args := []interface{}{code}
	if excludeID != nil {
		q = "SELECT EXISTS(SELECT 1 FROM stations WHERE code = ? AND id != ?)"
		args = append(args, *excludeID)
	}
	if err := r.db.Raw(q, args...).Scan(&exists).Error; err != nil {
		return false, err
	}
	return exists, nil
}
