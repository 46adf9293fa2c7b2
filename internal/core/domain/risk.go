package domain

import "time"

// RiskLevel buckets a risk score for display and alerting.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelMedium   RiskLevel = "MEDIUM"
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelCritical RiskLevel = "CRITICAL"
)

// RiskAssessment is the outcome of scoring one transfer. The score is in
// [0,1]; Factors lists the contributing indicators in evaluation order.
type RiskAssessment struct {
	TransferID string    `json:"transfer_id"`
	Score      float64   `json:"risk_score"`
	Level      RiskLevel `json:"risk_level"`
	Factors    []string  `json:"risk_factors"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}
