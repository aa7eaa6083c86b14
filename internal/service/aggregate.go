package service

import (
	"sort"
	"time"

	"posu-analytics/internal/model"
)

// BucketOccurrences groups occurrence times into daily, monthly and yearly counts in loc, ascending.
func BucketOccurrences(times []time.Time, loc *time.Location) ([]model.DailyCount, []model.MonthlyCount, []model.YearlyCount) {
	type monthKey struct{ year, month int }

	daily := map[string]int64{}
	monthly := map[monthKey]int64{}
	yearly := map[int]int64{}

	for _, t := range times {
		local := t.In(loc)
		daily[local.Format("2006-01-02")]++
		monthly[monthKey{local.Year(), int(local.Month())}]++
		yearly[local.Year()]++
	}

	days := make([]model.DailyCount, 0, len(daily))
	for date, count := range daily {
		days = append(days, model.DailyCount{Date: date, Count: count})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })

	months := make([]model.MonthlyCount, 0, len(monthly))
	for key, count := range monthly {
		months = append(months, model.MonthlyCount{Year: key.year, Month: key.month, Count: count})
	}
	sort.Slice(months, func(i, j int) bool {
		if months[i].Year != months[j].Year {
			return months[i].Year < months[j].Year
		}
		return months[i].Month < months[j].Month
	})

	years := make([]model.YearlyCount, 0, len(yearly))
	for year, count := range yearly {
		years = append(years, model.YearlyCount{Year: year, Count: count})
	}
	sort.Slice(years, func(i, j int) bool { return years[i].Year < years[j].Year })

	return days, months, years
}

// ActiveEnforcers keeps only enforcers with at least one citation, as the report context requires.
func ActiveEnforcers(perf []model.EnforcerPerformance) []model.EnforcerPerformance {
	out := make([]model.EnforcerPerformance, 0, len(perf))
	for _, p := range perf {
		if p.TotalTransactions > 0 {
			out = append(out, p)
		}
	}
	return out
}
