package service

import "github.com/rl1809/potion-bottler/internal/core/domain"

// PlanBottles greedily converts recipes into bottle counts against a private
// copy of inv. Recipes are served in order, so earlier recipes get first claim
// on scarce liquid.
func PlanBottles(inv domain.LiquidInventory, recipes []domain.Recipe) []domain.BottlePlanEntry {
	remaining := inv
	var plan []domain.BottlePlanEntry

	for _, recipe := range recipes {
		bottles := -1
		for i, ratio := range recipe {
			if ratio <= 0 {
				continue
			}
			if n := remaining[i] / ratio; bottles < 0 || n < bottles {
				bottles = n
			}
		}
		if bottles <= 0 {
			continue
		}

		plan = append(plan, domain.BottlePlanEntry{Recipe: recipe, Quantity: bottles})
		for i, ratio := range recipe {
			remaining[i] -= bottles * ratio
		}
	}
	return plan
}
