package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"lighthouse-iot-backend/internal/apperrors"
	"lighthouse-iot-backend/internal/cache"
	"lighthouse-iot-backend/internal/models"
	"lighthouse-iot-backend/internal/repository"
)

type telemetryStore interface {
	InsertBatch(samples []models.Telemetry) error
	List(filter repository.TelemetryFilter, p repository.Pagination) ([]models.Telemetry, error)
	Aggregates(stationID uuid.UUID, metricType string, start, end time.Time, truncUnit string) ([]models.TelemetryAggregate, error)
	Latest(stationID uuid.UUID) ([]repository.LatestSample, error)
}

type deviceStore interface {
	ListByStation(stationID uuid.UUID) ([]models.Device, error)
	GetOrCreateGateway(stationID uuid.UUID) (*models.Device, error)
	UpdateStatus(id uuid.UUID, status models.DeviceStatus) error
}

type stationReader interface {
	GetByID(id uuid.UUID) (*models.Station, error)
	GetByCode(code string) (*models.Station, error)
}

type TelemetryService struct {
	telemetry telemetryStore
	devices   deviceStore
	stations  stationReader
	cache     *cache.TelemetryCache
	logger    *zap.Logger
}

func NewTelemetryService(telemetry telemetryStore, devices deviceStore, stations stationReader, telemetryCache *cache.TelemetryCache, logger *zap.Logger) *TelemetryService {
	return &TelemetryService{
		telemetry: telemetry,
		devices:   devices,
		stations:  stations,
		cache:     telemetryCache,
		logger:    logger,
	}
}

// TelemetryIngestRequest is the payload pushed by a station gateway. The
// station identifies itself by fleet code, not database ID.
type TelemetryIngestRequest struct {
	StationCode string       `json:"station_id" binding:"required"`
	Timestamp   time.Time    `json:"timestamp" binding:"required"`
	Gateway     *GatewayData `json:"gateway"`
	Sensors     SensorData   `json:"sensors"`
}

type GatewayData struct {
	Firmware       *string `json:"firmware"`
	SignalStrength *int    `json:"signal_strength"`
	UptimeSeconds  *int64  `json:"uptime_seconds"`
}

type SensorData struct {
	Power       *PowerData       `json:"power"`
	Environment *EnvironmentData `json:"environment"`
}

type PowerData struct {
	BatteryVoltage *float64 `json:"battery_voltage"`
	BatteryCurrent *float64 `json:"battery_current"`
	SolarVoltage   *float64 `json:"solar_voltage"`
	SolarCurrent   *float64 `json:"solar_current"`
	LoadPower      *float64 `json:"load_power"`
}

type EnvironmentData struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
}

// Ingest resolves the reporting station, fans the payload out into individual
// samples and stores them in one batch. An unknown station code rejects the
// whole payload. The reporting gateway device is created on first contact and
// marked online on every push.
func (s *TelemetryService) Ingest(ctx context.Context, req TelemetryIngestRequest) (int, error) {
	station, err := s.stations.GetByCode(req.StationCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.NotFound("Station", req.StationCode)
		}
		return 0, err
	}

	gateway, err := s.devices.GetOrCreateGateway(station.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve gateway device: %w", err)
	}

	samples := buildSamples(station.ID, gateway.ID, req)
	if len(samples) > 0 {
		if err := s.telemetry.InsertBatch(samples); err != nil {
			return 0, fmt.Errorf("failed to store telemetry batch: %w", err)
		}
	}

	if err := s.devices.UpdateStatus(gateway.ID, models.DeviceOnline); err != nil {
		s.logger.Warn("Failed to mark gateway online",
			zap.String("device_id", gateway.ID.String()),
			zap.Error(err),
		)
	}
	s.cache.InvalidateLatest(ctx, station.ID)

	s.logger.Info("Telemetry ingested",
		zap.String("station_code", req.StationCode),
		zap.Int("samples", len(samples)),
	)
	return len(samples), nil
}

// buildSamples flattens an ingest payload into one row per present metric.
// Absent sensor groups and nil readings contribute nothing.
func buildSamples(stationID, deviceID uuid.UUID, req TelemetryIngestRequest) []models.Telemetry {
	var samples []models.Telemetry

	add := func(metric models.MetricType, value *float64, unit string) {
		if value == nil {
			return
		}
		samples = append(samples, models.Telemetry{
			Time:       req.Timestamp,
			StationID:  stationID,
			DeviceID:   deviceID,
			MetricType: metric,
			Value:      *value,
			Unit:       unit,
			Quality:    100,
		})
	}

	if p := req.Sensors.Power; p != nil {
		add(models.MetricBatteryVoltage, p.BatteryVoltage, "V")
		add(models.MetricBatteryCurrent, p.BatteryCurrent, "A")
		add(models.MetricSolarVoltage, p.SolarVoltage, "V")
		add(models.MetricSolarCurrent, p.SolarCurrent, "A")
		add(models.MetricLoadPower, p.LoadPower, "W")
	}
	if e := req.Sensors.Environment; e != nil {
		add(models.MetricTemperature, e.Temperature, "°C")
		add(models.MetricHumidity, e.Humidity, "%")
	}
	if g := req.Gateway; g != nil && g.SignalStrength != nil {
		v := float64(*g.SignalStrength)
		add(models.MetricSignalStrength, &v, "dBm")
	}

	return samples
}

// Query returns raw samples matching the filter, newest first.
func (s *TelemetryService) Query(filter repository.TelemetryFilter, page, limit int) ([]models.Telemetry, repository.Pagination, error) {
	p := repository.NewPagination(page, limit, 100, 500)
	samples, err := s.telemetry.List(filter, p)
	if err != nil {
		return nil, p, err
	}
	return samples, p, nil
}

var intervalPattern = regexp.MustCompile(`^(\d+)\s+(minute|hour|day)s?$`)

// Aggregates returns time-bucketed statistics for one metric of one station.
// The interval is expressed like "1 hour" or "15 minutes".
func (s *TelemetryService) Aggregates(stationID uuid.UUID, metricType, interval string, start, end time.Time) ([]models.TelemetryAggregate, error) {
	m := intervalPattern.FindStringSubmatch(strings.TrimSpace(interval))
	if m == nil {
		return nil, apperrors.Validation(fmt.Sprintf("Invalid interval '%s', expected e.g. '1 hour' or '15 minutes'", interval))
	}
	truncUnit := m[2]

	if _, err := s.stationByID(stationID); err != nil {
		return nil, err
	}
	return s.telemetry.Aggregates(stationID, metricType, start, end, truncUnit)
}

// Latest returns the most recent value of every metric reported by a station.
// A cached snapshot is served when present; ingestion invalidates it.
func (s *TelemetryService) Latest(ctx context.Context, stationID uuid.UUID) (*models.LatestTelemetry, error) {
	if _, err := s.stationByID(stationID); err != nil {
		return nil, err
	}

	if cached := s.cache.GetLatest(ctx, stationID); cached != nil {
		return cached, nil
	}

	rows, err := s.telemetry.Latest(stationID)
	if err != nil {
		return nil, err
	}

	latest := &models.LatestTelemetry{
		StationID:  stationID,
		Metrics:    make(map[string]float64, len(rows)),
		LastUpdate: time.Time{},
	}
	for _, row := range rows {
		latest.Metrics[string(row.MetricType)] = row.Value
		if row.Time.After(latest.LastUpdate) {
			latest.LastUpdate = row.Time
		}
	}

	s.cache.SetLatest(ctx, latest)
	return latest, nil
}

// Devices lists all devices registered to a station.
func (s *TelemetryService) Devices(stationID uuid.UUID) ([]models.Device, error) {
	if _, err := s.stationByID(stationID); err != nil {
		return nil, err
	}
	return s.devices.ListByStation(stationID)
}

func (s *TelemetryService) stationByID(id uuid.UUID) (*models.Station, error) {
	station, err := s.stations.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Station", id)
		}
		return nil, err
	}
	return station, nil
}
