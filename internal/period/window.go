package period

import (
	"time"

	"posu-analytics/internal/model"
)

const (
	DashboardAll   = "all"
	DashboardYear  = "year"
	DashboardMonth = "month"
	DashboardWeek  = "week"
	DashboardToday = "today"
)

// Window pairs a dashboard period with the equally sized period before it.
type Window struct {
	Current  model.DateRange
	Previous model.DateRange
}

// DashboardWindow returns nil for "all" and any unrecognised kind, meaning no filtering.
func (r *Resolver) DashboardWindow(kind string) *Window {
	now := r.Now()
	switch kind {
	case DashboardYear:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, r.loc)
		prev := start.AddDate(-1, 0, 0)
		return &Window{
			Current:  model.DateRange{From: start, To: endBefore(start.AddDate(1, 0, 0))},
			Previous: model.DateRange{From: prev, To: endBefore(start)},
		}
	case DashboardMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, r.loc)
		prev := start.AddDate(0, -1, 0)
		return &Window{
			Current:  model.DateRange{From: start, To: endBefore(start.AddDate(0, 1, 0))},
			Previous: model.DateRange{From: prev, To: endBefore(start)},
		}
	case DashboardWeek:
		start := StartOfWeek(now)
		prev := start.AddDate(0, 0, -7)
		return &Window{
			Current:  model.DateRange{From: start, To: endBefore(start.AddDate(0, 0, 7))},
			Previous: model.DateRange{From: prev, To: endBefore(start)},
		}
	case DashboardToday:
		start := StartOfDay(now)
		prev := start.AddDate(0, 0, -1)
		return &Window{
			Current:  model.DateRange{From: start, To: EndOfDay(now)},
			Previous: model.DateRange{From: prev, To: EndOfDay(prev)},
		}
	default:
		return nil
	}
}

// HeatmapWindow returns the created_at window for the heatmap, or nil for all time.
func (r *Resolver) HeatmapWindow(kind string) *model.DateRange {
	w := r.DashboardWindow(kind)
	if w == nil || kind == DashboardYear {
		return nil
	}
	rng := w.Current
	return &rng
}

const (
	LedgerToday = "today"
	LedgerWeek  = "week"
	LedgerMonth = "month"
)

// LedgerRange resolves the transaction ledger's quick ranges. "week" is the trailing seven days including today.
func (r *Resolver) LedgerRange(kind string) *model.DateRange {
	now := r.Now()
	switch kind {
	case LedgerToday:
		return &model.DateRange{From: StartOfDay(now), To: EndOfDay(now)}
	case LedgerWeek:
		return &model.DateRange{From: StartOfDay(now).AddDate(0, 0, -6), To: EndOfDay(now)}
	case LedgerMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, r.loc)
		return &model.DateRange{From: start, To: endBefore(start.AddDate(0, 1, 0))}
	default:
		return nil
	}
}

func endBefore(t time.Time) time.Time {
	return t.Add(-time.Nanosecond)
}
