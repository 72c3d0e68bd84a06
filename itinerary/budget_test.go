package itinerary

import "testing"

func snapWithBudget(budget, total float64) Snapshot {
	setup, _ := NewTripSetup("Lisbon", budget, "2026-09-10", "2026-09-15")
	sn := Snapshot{
		Setup: &setup,
		Selections: map[Category][]SelectionItem{
			CategoryHotels: {{ID: "h1", Title: "Hotel", Price: total}},
		},
	}
	sn.derive()
	return sn
}

func TestBudgetEvaluatorWithoutSetup(t *testing.T) {
	var sn Snapshot
	sn.Selections = map[Category][]SelectionItem{
		CategoryTravel: {{ID: "f1", Price: 900}},
	}
	sn.derive()

	if sn.OverBudget() {
		t.Error("OverBudget should be false without a setup")
	}
	if got := sn.RemainingBudget(); got != 0 {
		t.Errorf("RemainingBudget = %.2f; want 0 without a setup", got)
	}
	if got := sn.BudgetPercentage(); got != 0 {
		t.Errorf("BudgetPercentage = %.2f; want 0 without a setup", got)
	}
	if !sn.CanAfford(1e9) {
		t.Error("CanAfford should default to true without a setup")
	}
}

func TestBudgetPercentage(t *testing.T) {
	tests := []struct {
		budget, total, want float64
	}{
		{1000, 250, 25},
		{1000, 1000, 100},
		{1000, 1500, 150},
		{0, 500, 0}, // zero budget: defined as 0, not NaN
	}
	for _, tt := range tests {
		sn := snapWithBudget(tt.budget, tt.total)
		if got := sn.BudgetPercentage(); got != tt.want {
			t.Errorf("BudgetPercentage(budget=%.0f, total=%.0f) = %.2f; want %.2f",
				tt.budget, tt.total, got, tt.want)
		}
	}
}

func TestCanAffordIsMonotonic(t *testing.T) {
	sn := snapWithBudget(1000, 400)

	prices := []float64{600, 500, 300, 100, 0}
	for i := 1; i < len(prices); i++ {
		if sn.CanAfford(prices[i-1]) && !sn.CanAfford(prices[i]) {
			t.Errorf("CanAfford(%.0f) true but CanAfford(%.0f) false", prices[i-1], prices[i])
		}
	}

	if !sn.CanAfford(600) {
		t.Error("CanAfford(600) should be true at exactly the budget boundary")
	}
	if sn.CanAfford(601) {
		t.Error("CanAfford(601) should be false past the budget")
	}
}

func TestOverBudgetBoundary(t *testing.T) {
	if snapWithBudget(1000, 1000).OverBudget() {
		t.Error("spending exactly the budget is not over budget")
	}
	if !snapWithBudget(1000, 1000.01).OverBudget() {
		t.Error("spending past the budget is over budget")
	}
}
