package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"orion-backend/internal/domain"
	"orion-backend/internal/repository"
)

// AnalyticsService aggregates transaction data into dashboard-ready figures.
type AnalyticsService struct {
	logger    *zap.Logger
	analytics repository.AnalyticsRepository
}

func NewAnalyticsService(logger *zap.Logger, analytics repository.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{
		logger:    logger,
		analytics: analytics,
	}
}

// Overview fans the three aggregate queries out concurrently; the period
// defaults to the trailing 30 days when from/to are zero.
func (s *AnalyticsService) Overview(ctx context.Context, userID string, from, to time.Time) (domain.AnalyticsOverview, error) {
	from, to = defaultPeriod(from, to)

	var (
		income     float64
		expense    float64
		byCategory []domain.CategoryTotal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		income, err = s.analytics.TotalByType(gctx, userID, domain.TransactionIncome, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		expense, err = s.analytics.TotalByType(gctx, userID, domain.TransactionExpense, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		byCategory, err = s.analytics.SpendingByCategory(gctx, userID, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.AnalyticsOverview{}, err
	}

	if byCategory == nil {
		byCategory = []domain.CategoryTotal{}
	}
	return domain.AnalyticsOverview{
		TotalIncome:        income,
		TotalExpense:       expense,
		NetBalance:         income - expense,
		SpendingByCategory: byCategory,
	}, nil
}

func (s *AnalyticsService) Trends(ctx context.Context, userID, bucket string, from, to time.Time) (domain.SpendingTrend, error) {
	from, to = defaultPeriod(from, to)
	points, err := s.analytics.SpendingSeries(ctx, userID, bucket, from, to)
	if err != nil {
		return domain.SpendingTrend{}, err
	}
	if points == nil {
		points = []domain.TrendPoint{}
	}
	return domain.SpendingTrend{Trend: points}, nil
}

// Forecast projects next month's spend as the mean of the trailing monthly
// totals, with a one-standard-deviation confidence band.
func (s *AnalyticsService) Forecast(ctx context.Context, userID string, months int) (domain.SpendingForecast, error) {
	totals, err := s.analytics.MonthlyExpenseTotals(ctx, userID, months)
	if err != nil {
		return domain.SpendingForecast{}, err
	}
	if len(totals) == 0 {
		return domain.SpendingForecast{}, nil
	}

	mean, stddev := meanStddev(totals)
	lower := mean - stddev
	if lower < 0 {
		lower = 0
	}
	return domain.SpendingForecast{
		ForecastedNextMonthSpending: round2(mean),
		ConfidenceIntervalUpper:     round2(mean + stddev),
		ConfidenceIntervalLower:     round2(lower),
	}, nil
}

func defaultPeriod(from, to time.Time) (time.Time, time.Time) {
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	return from, to
}

func meanStddev(values []float64) (float64, float64) {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(values)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
