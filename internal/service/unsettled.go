package service

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"posu-analytics/internal/model"
	"posu-analytics/internal/repository"
)

const unsettledLimit = 10

func UrgencyFor(daysPending int) model.UrgencyLevel {
	switch {
	case daysPending >= 5:
		return model.UrgencyAlert
	case daysPending >= 3:
		return model.UrgencyWarning
	default:
		return model.UrgencyInfo
	}
}

// RankUnsettled summarises pending citations per violator and returns the ten owing the most.
func RankUnsettled(pending []repository.PendingTransaction, now time.Time, loc *time.Location) []model.UnsettledViolator {
	type acc struct {
		id        uint
		name      string
		count     int
		total     decimal.Decimal
		minDays   int
		latest    time.Time
		locations []string
		seen      map[string]bool
	}

	var order []uint
	byViolator := map[uint]*acc{}
	for _, p := range pending {
		a, ok := byViolator[p.ViolatorID]
		if !ok {
			a = &acc{id: p.ViolatorID, name: p.Violator, minDays: -1, seen: map[string]bool{}}
			byViolator[p.ViolatorID] = a
			order = append(order, p.ViolatorID)
		}
		a.count++
		a.total = a.total.Add(p.FineAmount)

		days := wholeDays(now.Sub(p.DateTime))
		if a.minDays < 0 || days < a.minDays {
			a.minDays = days
		}
		if p.DateTime.After(a.latest) {
			a.latest = p.DateTime
		}
		if p.Location != "" && !a.seen[p.Location] {
			a.seen[p.Location] = true
			a.locations = append(a.locations, p.Location)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return byViolator[order[i]].total.GreaterThan(byViolator[order[j]].total)
	})
	if len(order) > unsettledLimit {
		order = order[:unsettledLimit]
	}

	result := make([]model.UnsettledViolator, 0, len(order))
	for _, id := range order {
		a := byViolator[id]
		locations := a.locations
		if locations == nil {
			locations = []string{}
		}
		result = append(result, model.UnsettledViolator{
			ID:               a.id,
			Name:             a.name,
			PendingCount:     a.count,
			TotalAmount:      a.total.InexactFloat64(),
			DaysPending:      a.minDays,
			UrgencyLevel:     UrgencyFor(a.minDays),
			Locations:        locations,
			ApprehensionDate: a.latest.In(loc).Format("Jan 02, 2006"),
		})
	}
	return result
}

func wholeDays(d time.Duration) int {
	if d < 0 {
		d = -d
	}
	return int(d / (24 * time.Hour))
}
