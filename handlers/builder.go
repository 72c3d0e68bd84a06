package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tripcraft/itinerary"
)

const sessionHeader = "X-Session-ID"

// BuilderHandler exposes the manual itinerary builder wizard over REST. Each
// client session gets its own durable state store.
type BuilderHandler struct {
	manager *itinerary.Manager
	saver   itinerary.TripSaver
}

func NewBuilderHandler(manager *itinerary.Manager, saver itinerary.TripSaver) *BuilderHandler {
	return &BuilderHandler{manager: manager, saver: saver}
}

func (h *BuilderHandler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.State)
	rg.POST("/setup", h.SetSetup)
	rg.POST("/selections", h.AddSelection)
	rg.DELETE("/selections/:category/:id", h.RemoveSelection)
	rg.POST("/steps/:tag", h.MarkStep)
	rg.DELETE("/steps/:tag", h.UnmarkStep)
	rg.POST("/reset", h.Reset)
	rg.POST("/confirm", h.Confirm)
}

// session returns the request's builder store, minting a session ID when the
// client has none yet. The ID is echoed back so the client can persist it.
func (h *BuilderHandler) session(c *gin.Context) (*itinerary.Store, bool) {
	id := c.GetHeader(sessionHeader)
	if id == "" {
		id = uuid.New().String()
	}
	if !itinerary.ValidSessionID(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
		return nil, false
	}
	c.Header(sessionHeader, id)
	return h.manager.Store(id), true
}

// ─── Views ────────────────────────────────────────────────────────────────────

type budgetView struct {
	OverBudget bool    `json:"over_budget"`
	Remaining  float64 `json:"remaining"`
	Percentage float64 `json:"percentage"`
}

type builderView struct {
	Setup          *itinerary.TripSetup       `json:"setup"`
	Travel         []itinerary.SelectionItem  `json:"travel"`
	Hotels         []itinerary.SelectionItem  `json:"hotels"`
	Activities     []itinerary.SelectionItem  `json:"activities"`
	Dining         []itinerary.SelectionItem  `json:"dining"`
	CompletedSteps []string                   `json:"completed_steps"`
	TotalCost      float64                    `json:"total_cost"`
	Generation     uint64                     `json:"generation"`
	Budget         budgetView                 `json:"budget"`
}

func viewOf(sn itinerary.Snapshot) builderView {
	steps := sn.CompletedSteps
	if steps == nil {
		steps = []string{}
	}
	return builderView{
		Setup:          sn.Setup,
		Travel:         sn.List(itinerary.CategoryTravel),
		Hotels:         sn.List(itinerary.CategoryHotels),
		Activities:     sn.List(itinerary.CategoryActivities),
		Dining:         sn.List(itinerary.CategoryDining),
		CompletedSteps: steps,
		TotalCost:      sn.TotalCost,
		Generation:     sn.Generation,
		Budget: budgetView{
			OverBudget: sn.OverBudget(),
			Remaining:  sn.RemainingBudget(),
			Percentage: sn.BudgetPercentage(),
		},
	}
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

func (h *BuilderHandler) State(c *gin.Context) {
	store, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, viewOf(store.Snapshot()))
}

type setupRequest struct {
	Destination string  `json:"destination" binding:"required"`
	Budget      float64 `json:"budget"`
	StartDate   string  `json:"start_date" binding:"required"`
	EndDate     string  `json:"end_date" binding:"required"`
}

func (h *BuilderHandler) SetSetup(c *gin.Context) {
	store, ok := h.session(c)
	if !ok {
		return
	}

	var req setupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	setup, err := itinerary.NewTripSetup(req.Destination, req.Budget, req.StartDate, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := store.SetTripSetup(setup)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save builder state"})
		return
	}
	c.JSON(http.StatusOK, viewOf(snap))
}

type itemInput struct {
	ID          string   `json:"id" binding:"required"`
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Price       any      `json:"price"` // number, or a currency string like "$1,200.50"
	Duration    string   `json:"duration"`
	Route       string   `json:"route"`
	Rating      float64  `json:"rating"`
	Amenities   []string `json:"amenities"`
	Location    string   `json:"location"`
	Cuisine     string   `json:"cuisine"`
}

type addSelectionRequest struct {
	Category string    `json:"category" binding:"required"`
	Item     itemInput `json:"item" binding:"required"`
}

func (in itemInput) toSelection() (itinerary.SelectionItem, error) {
	var price float64
	switch v := in.Price.(type) {
	case float64:
		price = v
	case string:
		p, err := itinerary.ParsePrice(v)
		if err != nil {
			return itinerary.SelectionItem{}, err
		}
		price = p
	case nil:
		return itinerary.SelectionItem{}, errors.New("price is required")
	default:
		return itinerary.SelectionItem{}, errors.New("price must be a number or a currency string")
	}
	if price < 0 {
		return itinerary.SelectionItem{}, errors.New("price must not be negative")
	}

	return itinerary.SelectionItem{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		Price:       price,
		Duration:    in.Duration,
		Route:       in.Route,
		Rating:      in.Rating,
		Amenities:   in.Amenities,
		Location:    in.Location,
		Cuisine:     in.Cuisine,
	}, nil
}

func (h *BuilderHandler) AddSelection(c *gin.Context) {
	store, ok := h.session(c)
	if !ok {
		return
	}

	var req addSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	category, err := itinerary.ParseCategory(req.Category)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := req.Item.toSelection()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := store.AddSelection(category, item)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save builder state"})
		return
	}
	c.JSON(http.StatusOK, viewOf(snap))
}

func (h *BuilderHandler) RemoveSelection(c *gin.Context) {
	store, ok := h.session(c)
	if !ok {
		return
	}

	category, err := itinerary.ParseCategory(c.Param("category"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := store.RemoveSelection(category, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save builder state"})
		return
	}
	c.JSON(http.StatusOK, viewOf(snap))
}

func (h *BuilderHandler) MarkStep(c *gin.Context) {
	store, ok := h.session(c)
	if !ok {
		return
	}
	snap, err := store.MarkStepComplete(c.Param("tag"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save builder state"})
		return
	}
	c.JSON(http.StatusOK, viewOf(snap))
}

func (h *BuilderHandler) UnmarkStep(c *gin.Context) {
	store, ok := h.session(c)
	if !ok {
		return
	}
	snap, err := store.UnmarkStepComplete(c.Param("tag"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save builder state"})
		return
	}
	c.JSON(http.StatusOK, viewOf(snap))
}

func (h *BuilderHandler) Reset(c *gin.Context) {
	store, ok := h.session(c)
	if !ok {
		return
	}
	snap, err := store.Reset()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save builder state"})
		return
	}
	c.JSON(http.StatusOK, viewOf(snap))
}

func (h *BuilderHandler) Confirm(c *gin.Context) {
	store, ok := h.session(c)
	if !ok {
		return
	}

	tripID, err := store.Confirm(c.Request.Context(), h.saver)
	if errors.Is(err, itinerary.ErrNoSetup) || errors.Is(err, itinerary.ErrOverBudget) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to save trip: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trip_id": tripID,
		"message": "Trip saved",
	})
}
