package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"orion-backend/internal/domain"
	"orion-backend/internal/email"
	"orion-backend/internal/repository"
)

// InsightService derives stored insights from a user's transaction history.
// The analysis is purely statistical: trends, concentration, outliers and
// recurring charges.
type InsightService struct {
	logger       *zap.Logger
	transactions repository.TransactionRepository
	insights     repository.InsightRepository
	alertSender  email.Sender
}

func NewInsightService(
	logger *zap.Logger,
	transactions repository.TransactionRepository,
	insights repository.InsightRepository,
	alertSender email.Sender,
) *InsightService {
	return &InsightService{
		logger:       logger,
		transactions: transactions,
		insights:     insights,
		alertSender:  alertSender,
	}
}

var ErrInsightNotFound = errors.New("insight not found")

const (
	analysisMonths   = 12
	anomalyZScore    = 2.5
	recurringMinHits = 3
)

// Generate recomputes all active insights for a user. Previously generated
// active insights are replaced; dismissed ones are left alone.
func (s *InsightService) Generate(ctx context.Context, user domain.User) ([]domain.FinancialInsight, error) {
	now := time.Now().UTC()
	txs, err := s.transactions.ListByUser(ctx, user.ID, domain.TransactionFilter{
		From:  now.AddDate(0, -analysisMonths, 0),
		To:    now,
		Limit: 5000,
	})
	if err != nil {
		return nil, err
	}

	var found []domain.FinancialInsight
	found = append(found, s.monthlyTrendInsight(user.ID, txs, now)...)
	found = append(found, s.categoryConcentrationInsight(user.ID, txs)...)
	found = append(found, s.anomalyInsights(user.ID, txs)...)
	found = append(found, s.recurringInsights(user.ID, txs)...)

	if err := s.insights.DeleteActiveByUser(ctx, user.ID); err != nil {
		return nil, err
	}
	for i := range found {
		if err := s.insights.Create(ctx, found[i]); err != nil {
			return nil, err
		}
	}

	s.notifyHighSeverity(ctx, user, found)
	return found, nil
}

func (s *InsightService) List(ctx context.Context, userID string, status domain.InsightStatus) ([]domain.FinancialInsight, error) {
	out, err := s.insights.ListByUser(ctx, userID, status)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.FinancialInsight{}
	}
	return out, nil
}

func (s *InsightService) Dismiss(ctx context.Context, userID, id string) error {
	insight, err := s.insights.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInsightNotFound
		}
		return err
	}
	if insight.UserID != userID {
		return ErrInsightNotFound
	}
	if err := s.insights.UpdateStatus(ctx, id, domain.InsightDismissed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInsightNotFound
		}
		return err
	}
	return nil
}

// monthlyTrendInsight compares last month's spend against the average of the
// months before it.
func (s *InsightService) monthlyTrendInsight(userID string, txs []domain.Transaction, now time.Time) []domain.FinancialInsight {
	totals := monthlyExpenseTotals(txs)
	if len(totals) < 2 {
		return nil
	}

	// Anchor to the first of the month so a day-31 "now" cannot slide the
	// previous-month key into the wrong bucket.
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastKey := monthKey(firstOfMonth.AddDate(0, -1, 0))
	last, ok := totals[lastKey]
	if !ok {
		return nil
	}

	var sum float64
	var n int
	for key, v := range totals {
		if key != lastKey && key != monthKey(now) {
			sum += v
			n++
		}
	}
	if n == 0 || sum == 0 {
		return nil
	}
	avg := sum / float64(n)
	change := (last - avg) / avg * 100

	if math.Abs(change) < 10 {
		return nil
	}

	severity := domain.SeverityLow
	direction := "down"
	if change > 0 {
		direction = "up"
		severity = domain.SeverityMedium
		if change > 50 {
			severity = domain.SeverityHigh
		}
	}
	return []domain.FinancialInsight{{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        domain.InsightSpendingTrend,
		Title:       fmt.Sprintf("Monthly spending is %s %.0f%%", direction, math.Abs(change)),
		Description: fmt.Sprintf("Last month you spent %.2f against a %.2f average over the previous months.", last, avg),
		Severity:    severity,
		Status:      domain.InsightActive,
		Confidence:  confidenceFromSamples(n),
		CreatedAt:   time.Now().UTC(),
	}}
}

// categoryConcentrationInsight flags a single category dominating spend.
func (s *InsightService) categoryConcentrationInsight(userID string, txs []domain.Transaction) []domain.FinancialInsight {
	totals := map[string]float64{}
	var overall float64
	for _, tx := range txs {
		if tx.Type != domain.TransactionExpense {
			continue
		}
		totals[tx.Category] += tx.Amount
		overall += tx.Amount
	}
	if overall == 0 || len(totals) < 2 {
		return nil
	}

	topCategory := ""
	var topTotal float64
	for cat, v := range totals {
		if v > topTotal {
			topCategory, topTotal = cat, v
		}
	}
	share := topTotal / overall
	if share < 0.4 {
		return nil
	}

	severity := domain.SeverityInfo
	if share >= 0.6 {
		severity = domain.SeverityMedium
	}
	return []domain.FinancialInsight{{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        domain.InsightCategoryBreakdown,
		Title:       fmt.Sprintf("%.0f%% of spending goes to %s", share*100, topCategory),
		Description: fmt.Sprintf("You spent %.2f on %s out of %.2f total.", topTotal, topCategory, overall),
		Severity:    severity,
		Status:      domain.InsightActive,
		Confidence:  0.9,
		CreatedAt:   time.Now().UTC(),
	}}
}

// anomalyInsights marks expenses whose amount deviates more than anomalyZScore
// standard deviations from the user's mean expense.
func (s *InsightService) anomalyInsights(userID string, txs []domain.Transaction) []domain.FinancialInsight {
	var amounts []float64
	for _, tx := range txs {
		if tx.Type == domain.TransactionExpense {
			amounts = append(amounts, tx.Amount)
		}
	}
	if len(amounts) < 10 {
		return nil
	}
	mean, stddev := meanStddev(amounts)
	if stddev == 0 {
		return nil
	}

	var out []domain.FinancialInsight
	for _, tx := range txs {
		if tx.Type != domain.TransactionExpense {
			continue
		}
		z := (tx.Amount - mean) / stddev
		if z < anomalyZScore {
			continue
		}
		out = append(out, domain.FinancialInsight{
			ID:          uuid.NewString(),
			UserID:      userID,
			Type:        domain.InsightAnomaly,
			Title:       fmt.Sprintf("Unusual expense: %s", tx.Description),
			Description: fmt.Sprintf("%.2f in %s on %s is %.1f standard deviations above your typical expense.", tx.Amount, tx.Category, tx.Date.Format("2006-01-02"), z),
			Severity:    domain.SeverityHigh,
			Status:      domain.InsightActive,
			Confidence:  math.Min(0.99, 0.5+z/10),
			CreatedAt:   time.Now().UTC(),
		})
	}
	return out
}

// recurringInsights detects charges with the same normalized description and a
// stable amount appearing in at least recurringMinHits distinct months.
func (s *InsightService) recurringInsights(userID string, txs []domain.Transaction) []domain.FinancialInsight {
	type group struct {
		months  map[string]bool
		amounts []float64
		label   string
	}
	groups := map[string]*group{}
	for _, tx := range txs {
		if tx.Type != domain.TransactionExpense {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(tx.Description))
		if key == "" {
			continue
		}
		g, ok := groups[key]
		if !ok {
			g = &group{months: map[string]bool{}, label: tx.Description}
			groups[key] = g
		}
		g.months[monthKey(tx.Date)] = true
		g.amounts = append(g.amounts, tx.Amount)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []domain.FinancialInsight
	for _, k := range keys {
		g := groups[k]
		if len(g.months) < recurringMinHits {
			continue
		}
		mean, stddev := meanStddev(g.amounts)
		if mean == 0 || stddev/mean > 0.1 {
			continue
		}
		out = append(out, domain.FinancialInsight{
			ID:          uuid.NewString(),
			UserID:      userID,
			Type:        domain.InsightRecurringPayment,
			Title:       fmt.Sprintf("Recurring payment: %s", g.label),
			Description: fmt.Sprintf("Around %.2f charged in %d different months.", mean, len(g.months)),
			Severity:    domain.SeverityInfo,
			Status:      domain.InsightActive,
			Confidence:  confidenceFromSamples(len(g.months)),
			CreatedAt:   time.Now().UTC(),
		})
	}
	return out
}

func (s *InsightService) notifyHighSeverity(ctx context.Context, user domain.User, insights []domain.FinancialInsight) {
	if s.alertSender == nil {
		return
	}
	for _, in := range insights {
		if in.Severity != domain.SeverityHigh {
			continue
		}
		if err := s.alertSender.SendInsightAlert(ctx, user.Email, in.Title, in.Description); err != nil {
			if s.logger != nil {
				s.logger.Warn("send insight alert failed", zap.Error(err), zap.String("user_id", user.ID))
			}
		}
	}
}

func monthlyExpenseTotals(txs []domain.Transaction) map[string]float64 {
	totals := map[string]float64{}
	for _, tx := range txs {
		if tx.Type == domain.TransactionExpense {
			totals[monthKey(tx.Date)] += tx.Amount
		}
	}
	return totals
}

func monthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

func confidenceFromSamples(n int) float64 {
	return math.Min(0.95, 0.5+float64(n)*0.1)
}
