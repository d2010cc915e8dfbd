package domain

import "sort"

// VariantStats holds aggregate results for one variant of an experiment.
type VariantStats struct {
	VariantID   string           `json:"variantId"`
	TotalEvents int64            `json:"totalEvents"`
	UniqueUsers int64            `json:"uniqueUsers"`
	EventTypes  map[string]int64 `json:"eventTypes"`
	TotalValue  float64          `json:"totalValue"`
	AvgValue    float64          `json:"avgValue"`
}

// ComputeVariantStats groups events by variant. Results are ordered by the
// first appearance of each variant in events.
// AvgValue divides by the total event count and is zero-safe.
func ComputeVariantStats(events []TrackedEvent) []VariantStats {
	byVariant := make(map[string]*VariantStats)
	users := make(map[string]map[string]struct{})
	order := make(map[string]int)

	for _, ev := range events {
		s, ok := byVariant[ev.VariantID]
		if !ok {
			s = &VariantStats{
				VariantID:  ev.VariantID,
				EventTypes: make(map[string]int64),
			}
			byVariant[ev.VariantID] = s
			users[ev.VariantID] = make(map[string]struct{})
			order[ev.VariantID] = len(order)
		}

		s.TotalEvents++
		users[ev.VariantID][ev.UserID] = struct{}{}
		s.EventTypes[ev.Event]++
		s.TotalValue += ev.ValueOrZero()
	}

	result := make([]VariantStats, 0, len(byVariant))
	for id, s := range byVariant {
		s.UniqueUsers = int64(len(users[id]))
		if s.TotalEvents > 0 {
			s.AvgValue = s.TotalValue / float64(s.TotalEvents)
		}
		result = append(result, *s)
	}

	sort.Slice(result, func(i, j int) bool {
		return order[result[i].VariantID] < order[result[j].VariantID]
	})
	return result
}
