package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lighthouse-iot-backend/internal/apperrors"
	"lighthouse-iot-backend/internal/models"
	"lighthouse-iot-backend/internal/repository"
	"lighthouse-iot-backend/internal/service"
	"lighthouse-iot-backend/pkg/utils"
)

type MaintenanceHandler struct {
	maintenance *service.MaintenanceService
}

func NewMaintenanceHandler(maintenance *service.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{maintenance: maintenance}
}

type maintenanceCreateRequest struct {
	StationID       uuid.UUID  `json:"station_id" binding:"required"`
	MaintenanceType string     `json:"maintenance_type" binding:"required,oneof=scheduled corrective emergency inspection"`
	Description     string     `json:"description" binding:"required"`
	ScheduledAt     time.Time  `json:"scheduled_at" binding:"required"`
	TechnicianID    *uuid.UUID `json:"technician_id"`
}

// Create schedules maintenance work
// POST /api/v1/alerts/maintenance
func (h *MaintenanceHandler) Create(c *gin.Context) {
	var req maintenanceCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, apperrors.Validation(err.Error()))
		return
	}

	record, err := h.maintenance.Create(service.MaintenanceCreateInput{
		StationID:       req.StationID,
		MaintenanceType: models.MaintenanceType(req.MaintenanceType),
		Description:     req.Description,
		ScheduledAt:     req.ScheduledAt,
		TechnicianID:    req.TechnicianID,
	})
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.CreatedResponse(c, record)
}

type maintenanceListQuery struct {
	StationID string  `form:"station_id"`
	Status    *string `form:"status"`
	Page      int     `form:"page,default=1"`
	Limit     int     `form:"limit,default=20"`
}

// List returns a page of maintenance records
// GET /api/v1/alerts/maintenance
func (h *MaintenanceHandler) List(c *gin.Context) {
	var q maintenanceListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.ErrorResponse(c, apperrors.Validation(err.Error()))
		return
	}

	filter := repository.MaintenanceFilter{Status: q.Status}
	if q.StationID != "" {
		id, err := uuid.Parse(q.StationID)
		if err != nil {
			utils.ErrorResponse(c, apperrors.Validation("Invalid station ID"))
			return
		}
		filter.StationID = &id
	}

	records, total, p, err := h.maintenance.List(filter, q.Page, q.Limit)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.ListResponse(c, records, utils.NewPaginationMeta(p.Page, p.Limit, total))
}

// Get returns a maintenance record by ID
// GET /api/v1/alerts/maintenance/:id
func (h *MaintenanceHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, apperrors.Validation("Invalid maintenance record ID"))
		return
	}

	record, err := h.maintenance.Get(id)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, record)
}

type maintenanceUpdateRequest struct {
	ScheduledAt  *time.Time `json:"scheduled_at"`
	TechnicianID *uuid.UUID `json:"technician_id"`
	Status       *string    `json:"status"`
	Notes        *string    `json:"notes"`
}

// Update applies a partial update to a maintenance record
// PATCH /api/v1/alerts/maintenance/:id
func (h *MaintenanceHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, apperrors.Validation("Invalid maintenance record ID"))
		return
	}

	var req maintenanceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, apperrors.Validation(err.Error()))
		return
	}

	record, err := h.maintenance.Update(id, service.MaintenanceUpdateInput{
		ScheduledAt:  req.ScheduledAt,
		TechnicianID: req.TechnicianID,
		Status:       req.Status,
		Notes:        req.Notes,
	})
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, record)
}

type maintenanceCompleteRequest struct {
	Notes       *string  `json:"notes"`
	Attachments []string `json:"attachments"`
}

// Complete closes a maintenance record
// POST /api/v1/alerts/maintenance/:id/complete
func (h *MaintenanceHandler) Complete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, apperrors.Validation("Invalid maintenance record ID"))
		return
	}

	// Body is optional; completing without notes keeps the stored values.
	var req maintenanceCompleteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, apperrors.Validation(err.Error()))
			return
		}
	}

	record, err := h.maintenance.Complete(id, req.Notes, req.Attachments)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, record)
}
