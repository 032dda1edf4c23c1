package search

import "github.com/clearmark/clearmark/internal/domain/registry"

// mergeItems flattens per-combination item slots into one deduplicated
// list. Items sharing an application number collapse into a single
// entry holding the last-seen fields, kept at the first-seen position.
// Items without an application number cannot be identified and are
// dropped.
func mergeItems(slots [][]registry.Item) []registry.Item {
	var order []string
	byNumber := make(map[string]registry.Item)

	for _, items := range slots {
		for _, item := range items {
			if !item.HasApplicationNumber() {
				continue
			}
			number := item.ApplicationNumber()
			if _, seen := byNumber[number]; !seen {
				order = append(order, number)
			}
			byNumber[number] = item
		}
	}

	merged := make([]registry.Item, 0, len(order))
	for _, number := range order {
		merged = append(merged, byNumber[number])
	}
	return merged
}
