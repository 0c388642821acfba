package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lighthouse-iot-backend/internal/apperrors"
	"lighthouse-iot-backend/internal/repository"
	"lighthouse-iot-backend/internal/service"
	"lighthouse-iot-backend/pkg/utils"
)

type TelemetryHandler struct {
	telemetry *service.TelemetryService
}

func NewTelemetryHandler(telemetry *service.TelemetryService) *TelemetryHandler {
	return &TelemetryHandler{telemetry: telemetry}
}

// Ingest accepts a telemetry push from a station gateway
// POST /api/v1/telemetry/ingest
func (h *TelemetryHandler) Ingest(c *gin.Context) {
	var req service.TelemetryIngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, apperrors.Validation(err.Error()))
		return
	}

	count, err := h.telemetry.Ingest(c.Request.Context(), req)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.AcceptedResponse(c, gin.H{"samples_stored": count})
}

type telemetryQuery struct {
	StationID  string     `form:"station_id"`
	DeviceID   string     `form:"device_id"`
	MetricType *string    `form:"metric_type"`
	StartTime  *time.Time `form:"start_time" time_format:"2006-01-02T15:04:05Z07:00"`
	EndTime    *time.Time `form:"end_time" time_format:"2006-01-02T15:04:05Z07:00"`
	Page       int        `form:"page,default=1"`
	Limit      int        `form:"limit,default=100"`
}

// Query returns raw samples, newest first
// GET /api/v1/telemetry
func (h *TelemetryHandler) Query(c *gin.Context) {
	var q telemetryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.ErrorResponse(c, apperrors.Validation(err.Error()))
		return
	}

	filter := repository.TelemetryFilter{
		MetricType: q.MetricType,
		StartTime:  q.StartTime,
		EndTime:    q.EndTime,
	}
	if q.StationID != "" {
		id, err := uuid.Parse(q.StationID)
		if err != nil {
			utils.ErrorResponse(c, apperrors.Validation("Invalid station ID"))
			return
		}
		filter.StationID = &id
	}
	if q.DeviceID != "" {
		id, err := uuid.Parse(q.DeviceID)
		if err != nil {
			utils.ErrorResponse(c, apperrors.Validation("Invalid device ID"))
			return
		}
		filter.DeviceID = &id
	}
	samples, _, err := h.telemetry.Query(filter, q.Page, q.Limit)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, samples)
}

type aggregateQuery struct {
	StationID  string    `form:"station_id" binding:"required"`
	MetricType string    `form:"metric_type" binding:"required"`
	Interval   string    `form:"interval,default=1 hour"`
	StartTime  time.Time `form:"start_time" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	EndTime    time.Time `form:"end_time" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
}

// Aggregates returns time-bucketed statistics for one metric
// GET /api/v1/telemetry/aggregates
func (h *TelemetryHandler) Aggregates(c *gin.Context) {
	var q aggregateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.ErrorResponse(c, apperrors.Validation(err.Error()))
		return
	}

	stationID, err := uuid.Parse(q.StationID)
	if err != nil {
		utils.ErrorResponse(c, apperrors.Validation("Invalid station ID"))
		return
	}

	buckets, err := h.telemetry.Aggregates(stationID, q.MetricType, q.Interval, q.StartTime, q.EndTime)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, buckets)
}

// Latest returns the most recent value of every metric for a station
// GET /api/v1/telemetry/latest/:station_id
func (h *TelemetryHandler) Latest(c *gin.Context) {
	stationID, err := uuid.Parse(c.Param("station_id"))
	if err != nil {
		utils.ErrorResponse(c, apperrors.Validation("Invalid station ID"))
		return
	}

	latest, err := h.telemetry.Latest(c.Request.Context(), stationID)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, latest)
}

// Devices lists all devices registered to a station
// GET /api/v1/telemetry/devices/:station_id
func (h *TelemetryHandler) Devices(c *gin.Context) {
	stationID, err := uuid.Parse(c.Param("station_id"))
	if err != nil {
		utils.ErrorResponse(c, apperrors.Validation("Invalid station ID"))
		return
	}

	devices, err := h.telemetry.Devices(stationID)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, devices)
}
