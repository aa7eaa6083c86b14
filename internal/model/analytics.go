package model

import "time"

type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

type DashboardMetrics struct {
	Stats               DashboardStats        `json:"stats"`
	WeeklyTrends        []DailyCount          `json:"weekly_trends"`
	MonthlyTrends       []MonthlyCount        `json:"monthly_trends"`
	YearlyTrends        []YearlyCount         `json:"yearly_trends"`
	CommonViolations    []ViolationCount      `json:"common_violations"`
	EnforcerPerformance []EnforcerPerformance `json:"enforcer_performance"`
	UnsettledViolators  []UnsettledViolator   `json:"unsettled_violators"`
	LocationHeatmap     []HeatmapCluster      `json:"location_heatmap"`
	Trends              DashboardTrends       `json:"trends"`
	Period              string                `json:"period"`
	HeatmapPeriod       string                `json:"heatmap_period"`
}

type DashboardStats struct {
	TotalViolators      int64   `json:"total_violators"`
	TotalTransactions   int64   `json:"total_transactions"`
	PendingTransactions int64   `json:"pending_transactions"`
	PaidTransactions    int64   `json:"paid_transactions"`
	TotalRevenue        float64 `json:"total_revenue"`
	PendingRevenue      float64 `json:"pending_revenue"`
	RepeatOffenders     int64   `json:"repeat_offenders"`
	ActiveEnforcers     int64   `json:"active_enforcers"`
	ActiveAdmins        int64   `json:"active_admins"`
	ActiveDeputies      int64   `json:"active_deputies"`
	ActiveHeads         int64   `json:"active_heads"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type MonthlyCount struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Count int64 `json:"count"`
}

type YearlyCount struct {
	Year  int   `json:"year"`
	Count int64 `json:"count"`
}

type ViolationCount struct {
	ID                uint    `json:"id"`
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	FineAmount        float64 `json:"fine_amount"`
	TransactionsCount int64   `json:"transactions_count"`
}

type EnforcerPerformance struct {
	ID                uint    `json:"id"`
	Name              string  `json:"name"`
	TotalTransactions int64   `json:"total_transactions"`
	PaidTransactions  int64   `json:"paid_transactions"`
	CollectionRate    float64 `json:"collection_rate"`
	TotalFines        float64 `json:"total_fines"`
}

type UrgencyLevel string

const (
	UrgencyInfo    UrgencyLevel = "info"
	UrgencyWarning UrgencyLevel = "warning"
	UrgencyAlert   UrgencyLevel = "alert"
)

type UnsettledViolator struct {
	ID               uint         `json:"id"`
	Name             string       `json:"name"`
	PendingCount     int          `json:"pending_count"`
	TotalAmount      float64      `json:"total_amount"`
	DaysPending      int          `json:"days_pending"`
	UrgencyLevel     UrgencyLevel `json:"urgency_level"`
	Locations        []string     `json:"locations"`
	ApprehensionDate string       `json:"apprehension_date"`
}

type HeatmapCluster struct {
	Location     string  `json:"location"`
	Label        string  `json:"label"`
	GPSLatitude  float64 `json:"gps_latitude"`
	GPSLongitude float64 `json:"gps_longitude"`
	Count        int64   `json:"count"`
	TotalAmount  float64 `json:"total_amount"`
}

type TrendDirection string

const (
	TrendUp   TrendDirection = "up"
	TrendDown TrendDirection = "down"
	TrendSame TrendDirection = "same"
)

type Trend struct {
	Percentage float64        `json:"percentage"`
	Direction  TrendDirection `json:"direction"`
}

type DashboardTrends struct {
	Transactions Trend `json:"transactions"`
}
