package itinerary

import (
	"context"
	"errors"
)

var (
	// ErrNoSetup blocks confirmation before the trip setup step is done.
	ErrNoSetup = errors.New("trip setup is required before confirming")
	// ErrOverBudget blocks confirmation while selections exceed the budget.
	ErrOverBudget = errors.New("itinerary exceeds the declared budget")
)

// TripPayload is the aggregate handed to the trip-persistence collaborator on
// confirmation.
type TripPayload struct {
	Destination string          `json:"destination"`
	Duration    int             `json:"duration"`
	StartDate   string          `json:"startDate"`
	EndDate     string          `json:"endDate"`
	Budget      float64         `json:"budget"`
	TotalSpent  float64         `json:"totalSpent"`
	Travel      []SelectionItem `json:"travel"`
	Hotels      []SelectionItem `json:"hotels"`
	Activities  []SelectionItem `json:"activities"`
	Dining      []SelectionItem `json:"dining"`
}

// TripSaver persists a confirmed trip and returns its identifier.
type TripSaver interface {
	SaveTrip(ctx context.Context, payload TripPayload) (string, error)
}

// Payload builds the confirmation payload for the snapshot.
func (sn Snapshot) Payload() TripPayload {
	p := TripPayload{
		TotalSpent: sn.TotalCost,
		Travel:     sn.List(CategoryTravel),
		Hotels:     sn.List(CategoryHotels),
		Activities: sn.List(CategoryActivities),
		Dining:     sn.List(CategoryDining),
	}
	if sn.Setup != nil {
		p.Destination = sn.Setup.Destination
		p.Duration = sn.Setup.Duration
		p.StartDate = sn.Setup.StartDate
		p.EndDate = sn.Setup.EndDate
		p.Budget = sn.Setup.Budget
	}
	return p
}

// Confirm hands an immutable snapshot of the itinerary to the saver. It is
// rejected before any call when the setup is missing or the budget is
// exceeded. The builder state is never mutated here — a failed save needs no
// rollback, and a successful one leaves resetting to the caller.
func (s *Store) Confirm(ctx context.Context, saver TripSaver) (string, error) {
	snap := s.Snapshot()

	if snap.Setup == nil {
		return "", ErrNoSetup
	}
	if snap.OverBudget() {
		return "", ErrOverBudget
	}

	return saver.SaveTrip(ctx, snap.Payload())
}
