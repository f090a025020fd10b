package models

// Macros holds nutrient amounts: kilocalories plus protein, carbs and fat
// in grams.
type Macros struct {
	Kcal     float64 `json:"kcal"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// RecipeTotals is the derived nutrient summary of a recipe.
type RecipeTotals struct {
	Macros
	PerServing Macros `json:"per_serving"`
}

// ComputeRecipeTotals sums quantity_g/100 * per-100g values over all items.
// Items whose aliment reference is not resolved contribute zero. Per-serving
// values divide by max(servings, 1). No rounding is applied.
func ComputeRecipeTotals(items []RecipeItem, servings int) RecipeTotals {
	var t RecipeTotals
	for _, it := range items {
		if it.Aliment == nil {
			continue
		}
		factor := it.QuantityG / 100
		t.Kcal += factor * it.Aliment.KcalPer100g
		t.ProteinG += factor * it.Aliment.ProteinGPer100g
		t.CarbsG += factor * it.Aliment.CarbsGPer100g
		t.FatG += factor * it.Aliment.FatGPer100g
	}
	s := float64(servings)
	if s < 1 {
		s = 1
	}
	t.PerServing = Macros{
		Kcal:     t.Kcal / s,
		ProteinG: t.ProteinG / s,
		CarbsG:   t.CarbsG / s,
		FatG:     t.FatG / s,
	}
	return t
}
