package service

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/rl1809/potion-bottler/internal/core/domain"
)

func TestPlanBottles(t *testing.T) {
	tests := []struct {
		name    string
		inv     domain.LiquidInventory
		recipes []domain.Recipe
		want    []domain.BottlePlanEntry
	}{
		{
			name:    "earlier recipe exhausts the channel",
			inv:     domain.LiquidInventory{1000, 0, 0, 0},
			recipes: []domain.Recipe{{100, 0, 0, 0}, {100, 0, 0, 0}},
			want:    []domain.BottlePlanEntry{{Recipe: domain.Recipe{100, 0, 0, 0}, Quantity: 10}},
		},
		{
			name:    "less than one bottle",
			inv:     domain.LiquidInventory{10, 0, 0, 0},
			recipes: []domain.Recipe{{100, 0, 0, 0}},
			want:    nil,
		},
		{
			name:    "scarcest channel bounds the count",
			inv:     domain.LiquidInventory{500, 120, 0, 0},
			recipes: []domain.Recipe{{50, 50, 0, 0}},
			want:    []domain.BottlePlanEntry{{Recipe: domain.Recipe{50, 50, 0, 0}, Quantity: 2}},
		},
		{
			name:    "leftovers feed later recipes",
			inv:     domain.LiquidInventory{500, 120, 0, 0},
			recipes: []domain.Recipe{{50, 50, 0, 0}, {100, 0, 0, 0}, {0, 100, 0, 0}},
			want: []domain.BottlePlanEntry{
				{Recipe: domain.Recipe{50, 50, 0, 0}, Quantity: 2},
				{Recipe: domain.Recipe{100, 0, 0, 0}, Quantity: 4},
			},
		},
		{
			name:    "infeasible recipe is skipped",
			inv:     domain.LiquidInventory{0, 0, 300, 99},
			recipes: []domain.Recipe{{0, 0, 0, 100}, {0, 0, 100, 0}},
			want:    []domain.BottlePlanEntry{{Recipe: domain.Recipe{0, 0, 100, 0}, Quantity: 3}},
		},
		{
			name:    "no recipes",
			inv:     domain.LiquidInventory{1000, 1000, 1000, 1000},
			recipes: nil,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlanBottles(tt.inv, tt.recipes)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("PlanBottles() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPlanBottles_OrderSensitivity(t *testing.T) {
	recipes := []domain.Recipe{{100, 0, 0, 0}, {100, 0, 0, 0}}
	plan := PlanBottles(domain.LiquidInventory{1000, 0, 0, 0}, recipes)

	if len(plan) != 1 {
		t.Fatalf("expected only the first recipe to be planned, got %v", plan)
	}
	if plan[0].Quantity != 10 {
		t.Errorf("expected 10 bottles, got %d", plan[0].Quantity)
	}
}

func TestPlanBottles_NeverOverdraws(t *testing.T) {
	inventories := []domain.LiquidInventory{
		{1000, 0, 0, 0},
		{100, 100, 100, 100},
		{5000, 2000, 700, 30},
		{0, 0, 0, 0},
	}

	for seed := uint64(0); seed < 100; seed++ {
		sampler := NewSeededRecipeSampler(seed)
		for _, inv := range inventories {
			plan := PlanBottles(inv, sampler.Sample(inv, 10))

			var used domain.LiquidInventory
			for _, entry := range plan {
				if entry.Quantity <= 0 {
					t.Errorf("plan contains non-positive entry %v", entry)
				}
				for i, ratio := range entry.Recipe {
					used[i] += entry.Quantity * ratio
				}
			}
			for i := range inv {
				if used[i] > inv[i] {
					t.Errorf("seed %d: %s uses %d of %d", seed, domain.Channel(i), used[i], inv[i])
				}
			}
		}
	}
}

func TestPlanBottles_DoesNotMutateInput(t *testing.T) {
	recipes := []domain.Recipe{{25, 25, 25, 25}}
	inv := domain.LiquidInventory{100, 100, 100, 100}
	PlanBottles(inv, recipes)
	if inv != (domain.LiquidInventory{100, 100, 100, 100}) {
		t.Errorf("input inventory changed: %v", inv)
	}
}
