package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lighthouse-iot-backend/internal/models"
	"lighthouse-iot-backend/internal/repository"
)

type AIService struct {
	client    textGenerator
	telemetry telemetryStore
	alerts    alertStore
	logger    *zap.Logger
}

func NewAIService(client textGenerator, telemetry telemetryStore, alerts alertStore, logger *zap.Logger) *AIService {
	return &AIService{
		client:    client,
		telemetry: telemetry,
		alerts:    alerts,
		logger:    logger,
	}
}

// AnalysisResult is the advisory health assessment for a station. Its shape
// is best-effort; the model output is parsed leniently and missing sections
// fall back to safe defaults.
type AnalysisResult struct {
	StationID       uuid.UUID `json:"station_id"`
	Summary         string    `json:"summary"`
	RiskLevel       string    `json:"risk_level"`
	Recommendations []string  `json:"recommendations"`
	PredictedIssues []string  `json:"predicted_issues"`
	Confidence      float64   `json:"confidence"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// MaintenancePrediction is one component-level maintenance suggestion.
type MaintenancePrediction struct {
	Component         string `json:"component"`
	Urgency           string `json:"urgency"`
	Reason            string `json:"reason"`
	RecommendedAction string `json:"recommended_action"`
	EstimatedDays     *int   `json:"estimated_days_until_failure"`
}

// Anomaly is a reading outside the expected operating range of its metric.
type Anomaly struct {
	StationID      uuid.UUID `json:"station_id"`
	MetricType     string    `json:"metric_type"`
	Value          float64   `json:"value"`
	ExpectedMin    float64   `json:"expected_min"`
	ExpectedMax    float64   `json:"expected_max"`
	Severity       string    `json:"severity"`
	DetectedAt     time.Time `json:"detected_at"`
	PossibleCauses []string  `json:"possible_causes"`
}

// AnalyzeStationHealth builds a snapshot of the station's latest metrics and
// recent alerts, asks the model for an assessment and parses the sectioned
// reply.
func (s *AIService) AnalyzeStationHealth(ctx context.Context, stationID uuid.UUID) (*AnalysisResult, error) {
	latest, err := s.telemetry.Latest(stationID)
	if err != nil {
		return nil, err
	}
	alerts, err := s.alerts.RecentByStation(stationID, 10)
	if err != nil {
		return nil, err
	}

	prompt := buildAnalysisPrompt(stationID, latest, alerts)
	text, err := s.client.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("AI analysis failed", zap.String("station_id", stationID.String()), zap.Error(err))
		return nil, err
	}

	result := parseAnalysis(text)
	result.StationID = stationID
	result.GeneratedAt = time.Now().UTC()
	return &result, nil
}

// PredictMaintenance asks the model which components need attention, based on
// the station's latest readings.
func (s *AIService) PredictMaintenance(ctx context.Context, stationID uuid.UUID) ([]MaintenancePrediction, error) {
	latest, err := s.telemetry.Latest(stationID)
	if err != nil {
		return nil, err
	}

	prompt := buildPredictionPrompt(stationID, latest)
	text, err := s.client.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("AI prediction failed", zap.String("station_id", stationID.String()), zap.Error(err))
		return nil, err
	}
	return parsePredictions(text), nil
}

func buildAnalysisPrompt(stationID uuid.UUID, latest []repository.LatestSample, alerts []models.Alert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert in remote lighthouse station operations.\n")
	fmt.Fprintf(&b, "Assess the health of station %s.\n\nLatest readings:\n", stationID)
	if len(latest) == 0 {
		b.WriteString("- no telemetry available\n")
	}
	for _, row := range latest {
		fmt.Fprintf(&b, "- %s: %.2f %s (at %s)\n", row.MetricType, row.Value, row.Unit, row.Time.UTC().Format(time.RFC3339))
	}
	b.WriteString("\nRecent alerts:\n")
	if len(alerts) == 0 {
		b.WriteString("- none\n")
	}
	for _, a := range alerts {
		fmt.Fprintf(&b, "- [%s] %s: %s\n", a.Severity, a.AlertType, a.Title)
	}
	b.WriteString(`
Reply in exactly this format:
SUMMARY: <one paragraph>
RISK_LEVEL: <low|medium|high|critical>
RECOMMENDATIONS:
- <recommendation>
PREDICTED_ISSUES:
- <issue>
CONFIDENCE: <0.0-1.0>
`)
	return b.String()
}

func buildPredictionPrompt(stationID uuid.UUID, latest []repository.LatestSample) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert in remote lighthouse station maintenance.\n")
	fmt.Fprintf(&b, "Given the latest readings of station %s, list components likely to need maintenance.\n\nLatest readings:\n", stationID)
	if len(latest) == 0 {
		b.WriteString("- no telemetry available\n")
	}
	for _, row := range latest {
		fmt.Fprintf(&b, "- %s: %.2f %s\n", row.MetricType, row.Value, row.Unit)
	}
	b.WriteString(`
Reply with one block per component, blocks separated by a line containing only ---:
COMPONENT: <name>
URGENCY: <low|medium|high>
REASON: <why>
ACTION: <recommended action>
DAYS: <estimated days until failure, or unknown>
`)
	return b.String()
}

// parseAnalysis extracts the sectioned fields from a model reply. Unknown
// lines are ignored; a missing risk level defaults to medium.
func parseAnalysis(text string) AnalysisResult {
	result := AnalysisResult{
		RiskLevel:  "medium",
		Confidence: 0.5,
	}

	section := ""
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "SUMMARY:"):
			result.Summary = strings.TrimSpace(strings.TrimPrefix(line, "SUMMARY:"))
			section = ""
		case strings.HasPrefix(line, "RISK_LEVEL:"):
			level := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(line, "RISK_LEVEL:")))
			switch level {
			case "low", "medium", "high", "critical":
				result.RiskLevel = level
			}
			section = ""
		case strings.HasPrefix(line, "RECOMMENDATIONS:"):
			section = "recommendations"
		case strings.HasPrefix(line, "PREDICTED_ISSUES:"):
			section = "issues"
		case strings.HasPrefix(line, "CONFIDENCE:"):
			if v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(line, "CONFIDENCE:")), 64); err == nil && v >= 0 && v <= 1 {
				result.Confidence = v
			}
			section = ""
		case strings.HasPrefix(line, "-"):
			item := strings.TrimSpace(strings.TrimPrefix(line, "-"))
			if item == "" {
				continue
			}
			switch section {
			case "recommendations":
				result.Recommendations = append(result.Recommendations, item)
			case "issues":
				result.PredictedIssues = append(result.PredictedIssues, item)
			}
		}
	}
	return result
}

// parsePredictions splits a model reply into ----separated blocks and reads
// the labelled fields of each. Blocks without a component name are dropped.
func parsePredictions(text string) []MaintenancePrediction {
	var predictions []MaintenancePrediction
	for _, block := range strings.Split(text, "---") {
		var p MaintenancePrediction
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(line, "COMPONENT:"):
				p.Component = strings.TrimSpace(strings.TrimPrefix(line, "COMPONENT:"))
			case strings.HasPrefix(line, "URGENCY:"):
				p.Urgency = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(line, "URGENCY:")))
			case strings.HasPrefix(line, "REASON:"):
				p.Reason = strings.TrimSpace(strings.TrimPrefix(line, "REASON:"))
			case strings.HasPrefix(line, "ACTION:"):
				p.RecommendedAction = strings.TrimSpace(strings.TrimPrefix(line, "ACTION:"))
			case strings.HasPrefix(line, "DAYS:"):
				if v, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "DAYS:"))); err == nil {
					p.EstimatedDays = &v
				}
			}
		}
		if p.Component != "" {
			predictions = append(predictions, p)
		}
	}
	return predictions
}

// metricRange is the expected operating envelope of a metric.
type metricRange struct {
	min, max float64
}

var anomalyThresholds = map[string]metricRange{
	string(models.MetricBatteryVoltage): {min: 10.5, max: 14.5},
	string(models.MetricTemperature):    {min: 0, max: 55},
	string(models.MetricSignalStrength): {min: -100, max: -50},
}

var lowCauses = map[string][]string{
	string(models.MetricBatteryVoltage): {
		"Battery nearing end of life",
		"Insufficient solar charging",
		"Excessive load on the power bus",
	},
	string(models.MetricTemperature): {
		"Enclosure heater failure",
		"Extreme ambient conditions",
	},
	string(models.MetricSignalStrength): {
		"Antenna misalignment or damage",
		"Obstruction in the radio path",
		"Gateway radio degradation",
	},
}

var highCauses = map[string][]string{
	string(models.MetricBatteryVoltage): {
		"Charge controller overcharging",
		"Voltage sensor drift",
	},
	string(models.MetricTemperature): {
		"Enclosure ventilation failure",
		"Electronics overheating",
	},
	string(models.MetricSignalStrength): {
		"Signal sensor miscalibration",
	},
}

// DetectAnomalies scans hourly averages of the thresholded metrics over the
// window and flags buckets outside their expected range. This is a local
// heuristic; no model call is involved.
func (s *AIService) DetectAnomalies(stationID uuid.UUID, start, end time.Time) ([]Anomaly, error) {
	var anomalies []Anomaly
	for metric, bounds := range anomalyThresholds {
		buckets, err := s.telemetry.Aggregates(stationID, metric, start, end, "hour")
		if err != nil {
			return nil, err
		}
		for _, bucket := range buckets {
			if a := classifyAnomaly(stationID, metric, bucket.AvgValue, bucket.Bucket, bounds); a != nil {
				anomalies = append(anomalies, *a)
			}
		}
	}
	return anomalies, nil
}

// classifyAnomaly returns nil when the value is inside the expected range.
// A value more than 10% beyond the violated bound is critical, anything else
// outside the range is a warning.
func classifyAnomaly(stationID uuid.UUID, metric string, value float64, at time.Time, bounds metricRange) *Anomaly {
	if value >= bounds.min && value <= bounds.max {
		return nil
	}

	severity := "warning"
	var causes []string
	if value < bounds.min {
		if value < bounds.min*0.9 {
			severity = "critical"
		}
		causes = lowCauses[metric]
	} else {
		if value > bounds.max*1.1 {
			severity = "critical"
		}
		causes = highCauses[metric]
	}

	return &Anomaly{
		StationID:      stationID,
		MetricType:     metric,
		Value:          value,
		ExpectedMin:    bounds.min,
		ExpectedMax:    bounds.max,
		Severity:       severity,
		DetectedAt:     at,
		PossibleCauses: causes,
	}
}
