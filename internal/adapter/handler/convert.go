package handler

import (
	"fmt"

	"github.com/rl1809/potion-bottler/internal/core/domain"
)

func toDeliveryItems(lines []PotionQuantityJSON) ([]domain.DeliveryItem, error) {
	items := make([]domain.DeliveryItem, 0, len(lines))
	for i, line := range lines {
		if len(line.PotionType) != domain.NumChannels {
			return nil, fmt.Errorf("potion %d: potion_type must have %d components", i, domain.NumChannels)
		}
		var sig domain.Signature
		copy(sig[:], line.PotionType)
		items = append(items, domain.DeliveryItem{Signature: sig, Quantity: line.Quantity})
	}
	return items, nil
}

func fromPlan(plan []domain.BottlePlanEntry) []PotionQuantityJSON {
	out := make([]PotionQuantityJSON, 0, len(plan))
	for _, entry := range plan {
		recipe := entry.Recipe
		out = append(out, PotionQuantityJSON{PotionType: recipe[:], Quantity: entry.Quantity})
	}
	return out
}
