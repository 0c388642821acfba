package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"lighthouse-iot-backend/internal/apperrors"
	"lighthouse-iot-backend/internal/middleware"
	"lighthouse-iot-backend/internal/models"
	"lighthouse-iot-backend/internal/repository"
	"lighthouse-iot-backend/internal/service"
	"lighthouse-iot-backend/pkg/utils"
)

type AlertHandler struct {
	alerts *service.AlertService
}

func NewAlertHandler(alerts *service.AlertService) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

type alertCreateRequest struct {
	StationID uuid.UUID              `json:"station_id" binding:"required"`
	AlertType string                 `json:"alert_type" binding:"required,oneof=fire intrusion power_failure device_offline anomaly maintenance_due"`
	Severity  string                 `json:"severity" binding:"required,oneof=critical high medium low info"`
	Title     string                 `json:"title" binding:"required,max=255"`
	Message   string                 `json:"message"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// Create raises an alert
// POST /api/v1/alerts
func (h *AlertHandler) Create(c *gin.Context) {
	var req alertCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, apperrors.Validation(err.Error()))
		return
	}

	alert, err := h.alerts.Create(service.AlertCreateInput{
		StationID: req.StationID,
		AlertType: models.AlertType(req.AlertType),
		Severity:  models.SeverityLevel(req.Severity),
		Title:     req.Title,
		Message:   req.Message,
		Metadata:  datatypes.JSONMap(req.Metadata),
	})
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.CreatedResponse(c, alert)
}

type alertListQuery struct {
	StationID    string     `form:"station_id"`
	AlertType    *string    `form:"alert_type"`
	Severity     *string    `form:"severity"`
	Acknowledged *bool      `form:"acknowledged"`
	Resolved     *bool      `form:"resolved"`
	StartDate    *time.Time `form:"start_date" time_format:"2006-01-02T15:04:05Z07:00"`
	EndDate      *time.Time `form:"end_date" time_format:"2006-01-02T15:04:05Z07:00"`
	Page         int        `form:"page,default=1"`
	Limit        int        `form:"limit,default=20"`
}

// List returns a page of alerts with station names
// GET /api/v1/alerts
func (h *AlertHandler) List(c *gin.Context) {
	var q alertListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.ErrorResponse(c, apperrors.Validation(err.Error()))
		return
	}

	filter := repository.AlertFilter{
		AlertType:    q.AlertType,
		Severity:     q.Severity,
		Acknowledged: q.Acknowledged,
		Resolved:     q.Resolved,
		StartDate:    q.StartDate,
		EndDate:      q.EndDate,
	}
	if q.StationID != "" {
		id, err := uuid.Parse(q.StationID)
		if err != nil {
			utils.ErrorResponse(c, apperrors.Validation("Invalid station ID"))
			return
		}
		filter.StationID = &id
	}

	alerts, total, p, err := h.alerts.List(filter, q.Page, q.Limit)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.ListResponse(c, alerts, utils.NewPaginationMeta(p.Page, p.Limit, total))
}

// Stats returns alert counts, fleet-wide or for one station
// GET /api/v1/alerts/stats
func (h *AlertHandler) Stats(c *gin.Context) {
	var stationID *uuid.UUID
	if raw := c.Query("station_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.ErrorResponse(c, apperrors.Validation("Invalid station ID"))
			return
		}
		stationID = &id
	}

	stats, err := h.alerts.Stats(stationID)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, stats)
}

// Get returns an alert by ID
// GET /api/v1/alerts/:id
func (h *AlertHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, apperrors.Validation("Invalid alert ID"))
		return
	}

	alert, err := h.alerts.Get(id)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, alert)
}

// Acknowledge records the authenticated user as the acknowledger
// POST /api/v1/alerts/:id/acknowledge
func (h *AlertHandler) Acknowledge(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, apperrors.Validation("Invalid alert ID"))
		return
	}

	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, apperrors.Authentication("Authentication required"))
		return
	}

	alert, err := h.alerts.Acknowledge(id, userID)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, alert)
}

// Resolve marks an alert as resolved
// POST /api/v1/alerts/:id/resolve
func (h *AlertHandler) Resolve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, apperrors.Validation("Invalid alert ID"))
		return
	}

	alert, err := h.alerts.Resolve(id)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, alert)
}

// StationAlerts returns the newest alerts for one station
// GET /api/v1/alerts/station/:station_id
func (h *AlertHandler) StationAlerts(c *gin.Context) {
	stationID, err := uuid.Parse(c.Param("station_id"))
	if err != nil {
		utils.ErrorResponse(c, apperrors.Validation("Invalid station ID"))
		return
	}

	limit := 10
	var q struct {
		Limit int `form:"limit,default=10"`
	}
	if err := c.ShouldBindQuery(&q); err == nil && q.Limit > 0 {
		limit = q.Limit
	}

	alerts, err := h.alerts.RecentByStation(stationID, limit)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, alerts)
}
