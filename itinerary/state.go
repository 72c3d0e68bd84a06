package itinerary

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"
)

// ─── Categories ───────────────────────────────────────────────────────────────

type Category string

const (
	CategoryTravel     Category = "travel"
	CategoryHotels     Category = "hotels"
	CategoryActivities Category = "activities"
	CategoryDining     Category = "dining"
)

// Categories returns all selection categories in wizard order.
func Categories() []Category {
	return []Category{CategoryTravel, CategoryHotels, CategoryActivities, CategoryDining}
}

func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryTravel:
		return CategoryTravel, nil
	case CategoryHotels:
		return CategoryHotels, nil
	case CategoryActivities:
		return CategoryActivities, nil
	case CategoryDining:
		return CategoryDining, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

func isCategoryTag(tag string) bool {
	_, err := ParseCategory(tag)
	return err == nil
}

// ─── Models ───────────────────────────────────────────────────────────────────

type TripSetup struct {
	Destination string  `json:"destination"`
	Budget      float64 `json:"budget"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Duration    int     `json:"duration"` // days, always derived from the date range
}

const dateLayout = "2006-01-02"

// NewTripSetup validates the inputs and derives the trip duration.
func NewTripSetup(destination string, budget float64, startDate, endDate string) (TripSetup, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return TripSetup{}, fmt.Errorf("destination is required")
	}
	if budget < 0 {
		return TripSetup{}, fmt.Errorf("budget must not be negative")
	}

	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return TripSetup{}, fmt.Errorf("invalid start date %q: use YYYY-MM-DD", startDate)
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return TripSetup{}, fmt.Errorf("invalid end date %q: use YYYY-MM-DD", endDate)
	}
	if end.Before(start) {
		return TripSetup{}, fmt.Errorf("end date must not be before start date")
	}

	return TripSetup{
		Destination: destination,
		Budget:      budget,
		StartDate:   startDate,
		EndDate:     endDate,
		Duration:    durationDays(start, end),
	}, nil
}

func durationDays(start, end time.Time) int {
	hours := end.Sub(start).Hours()
	days := int(hours / 24)
	if hours > float64(days)*24 {
		days++
	}
	return days
}

// SelectionItem is a user-chosen catalog entry (flight, hotel, activity or
// restaurant). Only the fields relevant to its category are populated.
type SelectionItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`
	Duration    string   `json:"duration,omitempty"`  // travel, activities
	Route       string   `json:"route,omitempty"`     // travel
	Rating      float64  `json:"rating,omitempty"`    // hotels
	Amenities   []string `json:"amenities,omitempty"` // hotels
	Location    string   `json:"location,omitempty"`
	Cuisine     string   `json:"cuisine,omitempty"` // dining
}

// Snapshot is one immutable state of the itinerary being built. Mutations on a
// Store always produce a wholly new Snapshot.
type Snapshot struct {
	Setup          *TripSetup                   `json:"setup,omitempty"`
	Selections     map[Category][]SelectionItem `json:"selections,omitempty"`
	CompletedSteps []string                     `json:"completed_steps,omitempty"`
	TotalCost      float64                      `json:"total_cost"`
	Generation     uint64                       `json:"generation"`
}

// List returns the selections for a category, never nil.
func (sn Snapshot) List(c Category) []SelectionItem {
	items := sn.Selections[c]
	out := make([]SelectionItem, len(items))
	copy(out, items)
	return out
}

// StepDone reports whether a step tag is marked complete.
func (sn Snapshot) StepDone(tag string) bool {
	for _, t := range sn.CompletedSteps {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the snapshot.
func (sn Snapshot) Clone() Snapshot {
	out := sn
	if sn.Setup != nil {
		setup := *sn.Setup
		out.Setup = &setup
	}
	if sn.Selections != nil {
		out.Selections = make(map[Category][]SelectionItem, len(sn.Selections))
		for c, items := range sn.Selections {
			list := make([]SelectionItem, len(items))
			copy(list, items)
			for i, it := range items {
				if it.Amenities != nil {
					am := make([]string, len(it.Amenities))
					copy(am, it.Amenities)
					list[i].Amenities = am
				}
			}
			out.Selections[c] = list
		}
	}
	if sn.CompletedSteps != nil {
		out.CompletedSteps = append([]string(nil), sn.CompletedSteps...)
	}
	return out
}

// derive recomputes every derived field from first principles: the trip
// duration, the total cost (full re-sum, never incremental) and the four
// category tags in CompletedSteps (present iff the list is non-empty).
// Non-category tags are independent state and pass through untouched.
func (sn *Snapshot) derive() {
	if sn.Setup != nil {
		start, errS := time.Parse(dateLayout, sn.Setup.StartDate)
		end, errE := time.Parse(dateLayout, sn.Setup.EndDate)
		if errS == nil && errE == nil && !end.Before(start) {
			sn.Setup.Duration = durationDays(start, end)
		}
	}

	steps := make([]string, 0, len(sn.CompletedSteps)+4)
	for _, tag := range sn.CompletedSteps {
		if !isCategoryTag(tag) {
			steps = append(steps, tag)
		}
	}

	total := 0.0
	for _, c := range Categories() {
		items := sn.Selections[c]
		for _, it := range items {
			total += it.Price
		}
		if len(items) > 0 {
			steps = append(steps, string(c))
		} else {
			delete(sn.Selections, c)
		}
	}
	if len(sn.Selections) == 0 {
		sn.Selections = nil
	}

	sort.Strings(steps)
	if len(steps) == 0 {
		steps = nil
	}
	sn.CompletedSteps = steps
	sn.TotalCost = total
}

// ─── Store ────────────────────────────────────────────────────────────────────

// Store is the single authoritative representation of the itinerary under
// construction. Every mutation yields a new Snapshot, reruns derivation and is
// persisted through the injected Repository before becoming visible; a failed
// save leaves the previous state in place.
type Store struct {
	mu   sync.Mutex
	repo Repository
	snap Snapshot
	now  func() time.Time
}

// NewStore creates a store hydrated from the repository. Corrupt persisted
// state is logged and treated as absent.
func NewStore(repo Repository) *Store {
	s := &Store{repo: repo, now: time.Now}

	snap, ok, err := repo.Load()
	if err != nil {
		log.Printf("⚠️  Discarding saved itinerary state: %v", err)
		return s
	}
	if ok {
		snap = snap.Clone()
		snap.derive()
		s.snap = snap
	}
	return s
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone()
}

// Generation returns the current mutation counter. Callers holding results
// computed against an older generation should discard them.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Generation
}

func (s *Store) mutate(fn func(*Snapshot)) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snap.Clone()
	fn(&next)
	next.derive()
	next.Generation = s.snap.Generation + 1

	if err := s.repo.Save(next); err != nil {
		return s.snap.Clone(), fmt.Errorf("persist itinerary state: %w", err)
	}
	s.snap = next
	return next.Clone(), nil
}

// SetTripSetup replaces the trip setup wholesale without touching selections.
func (s *Store) SetTripSetup(setup TripSetup) (Snapshot, error) {
	return s.mutate(func(sn *Snapshot) {
		sn.Setup = &setup
	})
}

// AddSelection appends the item to the category's list. The stored ID is the
// item's ID suffixed with the creation timestamp, so adding the same catalog
// entry twice yields two distinct selections. Two adds within the same
// millisecond can still collide; both entries are kept either way.
func (s *Store) AddSelection(c Category, item SelectionItem) (Snapshot, error) {
	ts := s.now().UnixMilli()
	return s.mutate(func(sn *Snapshot) {
		item.ID = fmt.Sprintf("%s-%d", item.ID, ts)
		if sn.Selections == nil {
			sn.Selections = make(map[Category][]SelectionItem)
		}
		sn.Selections[c] = append(sn.Selections[c], item)
	})
}

// RemoveSelection filters the ID out of the category's list. An absent ID
// leaves the state unchanged (beyond the generation bump).
func (s *Store) RemoveSelection(c Category, id string) (Snapshot, error) {
	return s.mutate(func(sn *Snapshot) {
		items := sn.Selections[c]
		kept := items[:0]
		for _, it := range items {
			if it.ID != id {
				kept = append(kept, it)
			}
		}
		if sn.Selections != nil {
			sn.Selections[c] = kept
		}
	})
}

// MarkStepComplete records a non-category wizard step (e.g. "setup",
// "review") as done. Category tags are derived from the selection lists and
// cannot be forced.
func (s *Store) MarkStepComplete(tag string) (Snapshot, error) {
	return s.mutate(func(sn *Snapshot) {
		for _, t := range sn.CompletedSteps {
			if t == tag {
				return
			}
		}
		sn.CompletedSteps = append(sn.CompletedSteps, tag)
	})
}

// UnmarkStepComplete removes a non-category step tag.
func (s *Store) UnmarkStepComplete(tag string) (Snapshot, error) {
	return s.mutate(func(sn *Snapshot) {
		kept := sn.CompletedSteps[:0]
		for _, t := range sn.CompletedSteps {
			if t != tag {
				kept = append(kept, t)
			}
		}
		sn.CompletedSteps = kept
	})
}

// Reset returns the state to its initial empty value.
func (s *Store) Reset() (Snapshot, error) {
	return s.mutate(func(sn *Snapshot) {
		*sn = Snapshot{}
	})
}

// Load replaces the entire state with the provided snapshot. Validating the
// snapshot's shape is the caller's responsibility; derived fields are
// recomputed regardless.
func (s *Store) Load(snap Snapshot) (Snapshot, error) {
	return s.mutate(func(sn *Snapshot) {
		*sn = snap.Clone()
	})
}
