package service

import (
	"math/rand/v2"

	"github.com/rl1809/potion-bottler/internal/core/domain"
)

// RecipeSampler draws random mixtures bounded by the liquid on hand.
type RecipeSampler struct {
	intN func(n int) int
}

// NewRecipeSampler returns a sampler backed by the global generator, which is
// safe for concurrent use.
func NewRecipeSampler() *RecipeSampler {
	return &RecipeSampler{intN: rand.IntN}
}

// NewSeededRecipeSampler returns a deterministic sampler. It must not be shared
// between goroutines.
func NewSeededRecipeSampler(seed uint64) *RecipeSampler {
	r := rand.New(rand.NewPCG(seed, seed))
	return &RecipeSampler{intN: r.IntN}
}

// Sample returns count recipes. An empty inventory yields no recipes.
func (s *RecipeSampler) Sample(inv domain.LiquidInventory, count int) []domain.Recipe {
	if inv.Total() <= 0 || count <= 0 {
		return nil
	}

	recipes := make([]domain.Recipe, 0, count)
	for len(recipes) < count {
		var parts [domain.NumChannels]int
		total := 0
		for i, stock := range inv {
			if stock > 0 {
				parts[i] = s.intN(stock + 1)
			}
			total += parts[i]
		}
		if total == 0 {
			continue
		}
		recipes = append(recipes, normalize(parts, total))
	}
	return recipes
}

// normalize floors each part to a percentage and gives the remainder to the
// first nonzero channel.
func normalize(parts [domain.NumChannels]int, total int) domain.Recipe {
	var recipe domain.Recipe
	sum := 0
	for i, part := range parts {
		recipe[i] = part * 100 / total
		sum += recipe[i]
	}
	for i := range recipe {
		if recipe[i] > 0 {
			recipe[i] += 100 - sum
			break
		}
	}
	return recipe
}
