package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lighthouse-iot-backend/internal/apperrors"
	"lighthouse-iot-backend/internal/service"
	"lighthouse-iot-backend/pkg/utils"
)

type AIHandler struct {
	ai *service.AIService
}

func NewAIHandler(ai *service.AIService) *AIHandler {
	return &AIHandler{ai: ai}
}

// Analyze returns an AI health assessment for a station
// GET /api/v1/ai/analyze/:station_id
func (h *AIHandler) Analyze(c *gin.Context) {
	stationID, err := uuid.Parse(c.Param("station_id"))
	if err != nil {
		utils.ErrorResponse(c, apperrors.Validation("Invalid station ID"))
		return
	}

	result, err := h.ai.AnalyzeStationHealth(c.Request.Context(), stationID)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, result)
}

// PredictMaintenance returns AI maintenance suggestions for a station
// GET /api/v1/ai/predict-maintenance/:station_id
func (h *AIHandler) PredictMaintenance(c *gin.Context) {
	stationID, err := uuid.Parse(c.Param("station_id"))
	if err != nil {
		utils.ErrorResponse(c, apperrors.Validation("Invalid station ID"))
		return
	}

	predictions, err := h.ai.PredictMaintenance(c.Request.Context(), stationID)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, predictions)
}

type anomalyQuery struct {
	StartTime time.Time `form:"start_time" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	EndTime   time.Time `form:"end_time" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
}

// Anomalies flags readings outside the expected operating ranges
// GET /api/v1/ai/anomalies/:station_id
func (h *AIHandler) Anomalies(c *gin.Context) {
	stationID, err := uuid.Parse(c.Param("station_id"))
	if err != nil {
		utils.ErrorResponse(c, apperrors.Validation("Invalid station ID"))
		return
	}

	var q anomalyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.ErrorResponse(c, apperrors.Validation(err.Error()))
		return
	}

	anomalies, err := h.ai.DetectAnomalies(stationID, q.StartTime, q.EndTime)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, anomalies)
}
