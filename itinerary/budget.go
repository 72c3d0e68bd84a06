package itinerary

// Budget evaluation. All functions are pure reads over a Snapshot and treat a
// missing TripSetup as "no budget declared": nothing is over budget, nothing
// remains, everything is affordable.

// OverBudget reports whether the selections exceed the declared budget.
func (sn Snapshot) OverBudget() bool {
	if sn.Setup == nil {
		return false
	}
	return sn.TotalCost > sn.Setup.Budget
}

// RemainingBudget returns budget minus total cost; negative when over budget,
// 0 without a setup.
func (sn Snapshot) RemainingBudget() float64 {
	if sn.Setup == nil {
		return 0
	}
	return sn.Setup.Budget - sn.TotalCost
}

// BudgetPercentage returns the share of the budget already spent, as a
// percentage. A zero or missing budget yields 0 rather than dividing by zero.
func (sn Snapshot) BudgetPercentage() float64 {
	if sn.Setup == nil || sn.Setup.Budget <= 0 {
		return 0
	}
	return sn.TotalCost / sn.Setup.Budget * 100
}

// CanAfford reports whether adding a selection at the given price would stay
// within budget.
func (sn Snapshot) CanAfford(price float64) bool {
	if sn.Setup == nil {
		return true
	}
	return sn.TotalCost+price <= sn.Setup.Budget
}
