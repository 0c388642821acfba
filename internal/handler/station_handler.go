package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"lighthouse-iot-backend/internal/apperrors"
	"lighthouse-iot-backend/internal/repository"
	"lighthouse-iot-backend/internal/service"
	"lighthouse-iot-backend/pkg/utils"
)

type StationHandler struct {
	stations *service.StationService
}

func NewStationHandler(stations *service.StationService) *StationHandler {
	return &StationHandler{stations: stations}
}

type stationCreateRequest struct {
	Code     string                 `json:"code" binding:"required,max=20"`
	Name     string                 `json:"name" binding:"required,max=255"`
	Lat      *float64               `json:"lat" binding:"required,gte=-90,lte=90"`
	Lng      *float64               `json:"lng" binding:"required,gte=-180,lte=180"`
	RegionID *uuid.UUID             `json:"region_id"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Create registers a new station
// POST /api/v1/stations
func (h *StationHandler) Create(c *gin.Context) {
	var req stationCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, apperrors.Validation(err.Error()))
		return
	}

	station, err := h.stations.Create(service.StationCreateInput{
		Code:     req.Code,
		Name:     req.Name,
		Lat:      *req.Lat,
		Lng:      *req.Lng,
		RegionID: req.RegionID,
		Metadata: datatypes.JSONMap(req.Metadata),
	})
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.CreatedResponse(c, station)
}

type stationListQuery struct {
	Status   *string `form:"status"`
	RegionID string  `form:"region_id"`
	Search   *string `form:"search"`
	Page     int     `form:"page,default=1"`
	Limit    int     `form:"limit,default=20"`
}

// List returns a page of stations
// GET /api/v1/stations
func (h *StationHandler) List(c *gin.Context) {
	var q stationListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.ErrorResponse(c, apperrors.Validation(err.Error()))
		return
	}

	var regionID *uuid.UUID
	if q.RegionID != "" {
		id, err := uuid.Parse(q.RegionID)
		if err != nil {
			utils.ErrorResponse(c, apperrors.Validation("Invalid region ID"))
			return
		}
		regionID = &id
	}

	stations, total, p, err := h.stations.List(q.Status, q.Search, regionID, q.Page, q.Limit)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.ListResponse(c, stations, utils.NewPaginationMeta(p.Page, p.Limit, total))
}

// Get returns a station by ID
// GET /api/v1/stations/:id
func (h *StationHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, apperrors.Validation("Invalid station ID"))
		return
	}

	station, err := h.stations.Get(id)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, station)
}

// GetByCode returns a station by its fleet code
// GET /api/v1/stations/code/:code
func (h *StationHandler) GetByCode(c *gin.Context) {
	station, err := h.stations.GetByCode(c.Param("code"))
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, station)
}

// ByRegion returns all stations in a region
// GET /api/v1/stations/region/:region_id
func (h *StationHandler) ByRegion(c *gin.Context) {
	regionID, err := uuid.Parse(c.Param("region_id"))
	if err != nil {
		utils.ErrorResponse(c, apperrors.Validation("Invalid region ID"))
		return
	}

	stations, err := h.stations.ByRegion(regionID)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, stations)
}

type stationUpdateRequest struct {
	Name     *string                `json:"name" binding:"omitempty,max=255"`
	Lat      *float64               `json:"lat" binding:"omitempty,gte=-90,lte=90"`
	Lng      *float64               `json:"lng" binding:"omitempty,gte=-180,lte=180"`
	RegionID *uuid.UUID             `json:"region_id"`
	Status   *string                `json:"status"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Update applies a partial update to a station
// PUT /api/v1/stations/:id
func (h *StationHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, apperrors.Validation("Invalid station ID"))
		return
	}

	var req stationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, apperrors.Validation(err.Error()))
		return
	}

	upd := repository.StationUpdate{
		Name:     req.Name,
		Lat:      req.Lat,
		Lng:      req.Lng,
		RegionID: req.RegionID,
		Status:   req.Status,
	}
	if req.Metadata != nil {
		upd.Metadata = datatypes.JSONMap(req.Metadata)
	}

	station, err := h.stations.Update(id, upd)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, station)
}

// Delete removes a station
// DELETE /api/v1/stations/:id
func (h *StationHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, apperrors.Validation("Invalid station ID"))
		return
	}

	if err := h.stations.Delete(id); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.MessageResponse(c, "Station deleted successfully")
}
