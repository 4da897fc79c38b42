package cart

import "github.com/emindev/giftshop/internal/domain"

type changeSet struct {
	updates []domain.CartItem
	inserts []domain.CartItem
	deletes []string
}

// diffLines partitions desired against current by product id: lines in both
// with a changed quantity become updates, lines only in desired become
// inserts, lines only in current become deletes. Lines whose quantity is
// already right are left alone.
func diffLines(current []domain.CartLine, desired []domain.CartItem) changeSet {
	currentByProduct := make(map[string]domain.CartLine, len(current))
	for _, line := range current {
		currentByProduct[line.ProductID] = line
	}

	desiredByProduct := make(map[string]domain.CartItem, len(desired))
	var cs changeSet
	for _, item := range desired {
		desiredByProduct[item.ProductID] = item

		line, exists := currentByProduct[item.ProductID]
		if !exists {
			cs.inserts = append(cs.inserts, item)
		} else if line.Quantity != item.Quantity {
			cs.updates = append(cs.updates, item)
		}
	}

	for _, line := range current {
		if _, wanted := desiredByProduct[line.ProductID]; !wanted {
			cs.deletes = append(cs.deletes, line.ProductID)
		}
	}

	return cs
}
