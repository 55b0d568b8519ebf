package domain

import "time"

type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// AnalyticsOverview summarizes a user's financial position over a period.
type AnalyticsOverview struct {
	TotalIncome        float64         `json:"total_income"`
	TotalExpense       float64         `json:"total_expense"`
	NetBalance         float64         `json:"net_balance"`
	SpendingByCategory []CategoryTotal `json:"spending_by_category"`
}

type TrendPoint struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
}

type SpendingTrend struct {
	Trend []TrendPoint `json:"trend"`
}

// SpendingForecast projects next month's spend from recent monthly totals.
type SpendingForecast struct {
	ForecastedNextMonthSpending float64 `json:"forecasted_next_month_spending"`
	ConfidenceIntervalUpper     float64 `json:"confidence_interval_upper"`
	ConfidenceIntervalLower     float64 `json:"confidence_interval_lower"`
}
