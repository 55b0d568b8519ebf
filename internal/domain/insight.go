package domain

import "time"

// InsightType labels the analysis that produced an insight.
type InsightType string

const (
	InsightSpendingTrend     InsightType = "spending_trend"
	InsightCategoryBreakdown InsightType = "category_breakdown"
	InsightAnomaly           InsightType = "anomaly_detection"
	InsightRecurringPayment  InsightType = "recurring_payment"
)

type InsightSeverity string

const (
	SeverityInfo   InsightSeverity = "info"
	SeverityLow    InsightSeverity = "low"
	SeverityMedium InsightSeverity = "medium"
	SeverityHigh   InsightSeverity = "high"
)

type InsightStatus string

const (
	InsightActive    InsightStatus = "active"
	InsightDismissed InsightStatus = "dismissed"
)

// FinancialInsight is a stored, user-facing finding derived from the user's
// transaction history.
type FinancialInsight struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Type        InsightType     `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Severity    InsightSeverity `json:"severity"`
	Status      InsightStatus   `json:"status"`
	Confidence  float64         `json:"confidence"`
	CreatedAt   time.Time       `json:"created_at"`
}
