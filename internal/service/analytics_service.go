package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"posu-analytics/internal/model"
	"posu-analytics/internal/period"
	"posu-analytics/internal/repository"
)

const dashboardViolationLimit = 5

type AnalyticsService struct {
	analytics *repository.AnalyticsRepository
	periods   *period.Resolver
	namer     LocationNamer
	log       zerolog.Logger
}

func NewAnalyticsService(analytics *repository.AnalyticsRepository, periods *period.Resolver, namer LocationNamer, log zerolog.Logger) *AnalyticsService {
	return &AnalyticsService{
		analytics: analytics,
		periods:   periods,
		namer:     namer,
		log:       log,
	}
}

type DashboardRequest struct {
	Period        string
	HeatmapPeriod string
}

func (s *AnalyticsService) GetDashboard(ctx context.Context, principal model.Principal, req DashboardRequest) (*model.DashboardMetrics, error) {
	if principal.ActorID == 0 {
		return nil, ErrPermissionDenied
	}
	if req.Period == "" {
		req.Period = period.DashboardAll
	}
	if req.HeatmapPeriod == "" {
		req.HeatmapPeriod = period.DashboardAll
	}

	window := s.periods.DashboardWindow(req.Period)
	var current *model.DateRange
	if window != nil {
		current = &window.Current
	}

	stats, err := s.analytics.HeadlineStats(ctx, current)
	if err != nil {
		return nil, err
	}
	actors, err := s.analytics.ActiveActorCounts(ctx)
	if err != nil {
		return nil, err
	}
	stats.ActiveEnforcers = actors[model.RoleEnforcer]
	stats.ActiveAdmins = actors[model.RoleAdmin]
	stats.ActiveDeputies = actors[model.RoleDeputy]
	stats.ActiveHeads = actors[model.RoleHead]

	times, err := s.analytics.OccurrenceTimes(ctx)
	if err != nil {
		return nil, err
	}
	daily, monthly, yearly := BucketOccurrences(times, s.periods.Location())

	violations, err := s.analytics.ViolationRanking(ctx, current, dashboardViolationLimit)
	if err != nil {
		return nil, err
	}
	enforcers, err := s.analytics.EnforcerPerformance(ctx, current)
	if err != nil {
		return nil, err
	}

	pending, err := s.analytics.PendingTransactions(ctx)
	if err != nil {
		return nil, err
	}
	unsettled := RankUnsettled(pending, s.periods.Now(), s.periods.Location())

	points, err := s.analytics.PendingGPSPoints(ctx, s.periods.HeatmapWindow(req.HeatmapPeriod))
	if err != nil {
		return nil, err
	}
	heatmap := ClusterPoints(ctx, points, s.namer)

	trend, err := s.transactionTrend(ctx, window)
	if err != nil {
		return nil, err
	}

	return &model.DashboardMetrics{
		Stats:               stats,
		WeeklyTrends:        daily,
		MonthlyTrends:       monthly,
		YearlyTrends:        yearly,
		CommonViolations:    violations,
		EnforcerPerformance: enforcers,
		UnsettledViolators:  unsettled,
		LocationHeatmap:     heatmap,
		Trends:              model.DashboardTrends{Transactions: trend},
		Period:              req.Period,
		HeatmapPeriod:       req.HeatmapPeriod,
	}, nil
}

func (s *AnalyticsService) transactionTrend(ctx context.Context, window *period.Window) (model.Trend, error) {
	if window == nil {
		return TrendOf(0, 0), nil
	}
	current, err := s.analytics.CountTransactions(ctx, &window.Current)
	if err != nil {
		return model.Trend{}, fmt.Errorf("current period count: %w", err)
	}
	previous, err := s.analytics.CountTransactions(ctx, &window.Previous)
	if err != nil {
		return model.Trend{}, fmt.Errorf("previous period count: %w", err)
	}
	return TrendOf(current, previous), nil
}
