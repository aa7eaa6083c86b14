package service

import (
	"sort"

	"posu-analytics/internal/repository"
)

// AttemptNumbers ranks each transaction within its violator's history by (date_time, id), starting at 1.
func AttemptNumbers(occurrences []repository.Occurrence) map[uint]int {
	byViolator := map[uint][]repository.Occurrence{}
	for _, o := range occurrences {
		byViolator[o.ViolatorID] = append(byViolator[o.ViolatorID], o)
	}

	ranks := make(map[uint]int, len(occurrences))
	for _, group := range byViolator {
		sort.SliceStable(group, func(i, j int) bool {
			if !group[i].DateTime.Equal(group[j].DateTime) {
				return group[i].DateTime.Before(group[j].DateTime)
			}
			return group[i].ID < group[j].ID
		})
		for i, o := range group {
			ranks[o.ID] = i + 1
		}
	}
	return ranks
}
