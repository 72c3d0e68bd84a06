package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"tripcraft/itinerary"
)

// TripDocument is everything that goes on a saved trip's PDF.
type TripDocument struct {
	TripID    string
	Payload   itinerary.TripPayload
	AISummary string
}

// GenerateTripPDF renders the trip summary and returns raw bytes; the PDF is
// stored in the database, not on disk.
func GenerateTripPDF(doc TripDocument) ([]byte, error) {
	p := doc.Payload

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	// ── Header bar ───────────────────────────────────────────
	pdf.SetFillColor(16, 42, 67)
	pdf.Rect(0, 0, 210, 28, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(20, 8)
	pdf.CellFormat(100, 10, "TripCraft", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(201, 162, 39)
	pdf.SetXY(20, 18)
	pdf.CellFormat(170, 6, "Trip Itinerary", "", 1, "L", false, 0, "")

	pdf.SetY(35)
	pdf.SetTextColor(0, 0, 0)

	sectionHeader := func(title string) {
		pdf.SetFillColor(16, 42, 67)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(170, 8, "  "+title, "", 1, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
	}

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(50, 6, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(120, 6, value, "", "L", false)
	}

	// ── Overview ─────────────────────────────────────────────
	sectionHeader("Trip Overview")
	row("Destination", p.Destination)
	row("Dates", fmt.Sprintf("%s to %s (%d days)", p.StartDate, p.EndDate, p.Duration))
	row("Budget", fmt.Sprintf("$%.2f", p.Budget))
	row("Total planned", fmt.Sprintf("$%.2f", p.TotalSpent))
	remaining := p.Budget - p.TotalSpent
	if remaining >= 0 {
		row("Remaining", fmt.Sprintf("$%.2f", remaining))
	} else {
		row("Over budget by", fmt.Sprintf("$%.2f", -remaining))
	}
	pdf.Ln(4)

	// ── Selections ───────────────────────────────────────────
	writeItems := func(title string, items []itinerary.SelectionItem, detail func(itinerary.SelectionItem) string) {
		if len(items) == 0 {
			return
		}
		sectionHeader(title)
		for _, it := range items {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(130, 6, it.Title, "", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			pdf.CellFormat(40, 6, fmt.Sprintf("$%.2f", it.Price), "", 1, "R", false, 0, "")
			if d := detail(it); d != "" {
				pdf.SetFont("Helvetica", "I", 9)
				pdf.SetTextColor(90, 90, 90)
				pdf.MultiCell(170, 5, d, "", "L", false)
				pdf.SetTextColor(0, 0, 0)
			}
		}
		pdf.Ln(4)
	}

	writeItems("Travel", p.Travel, func(it itinerary.SelectionItem) string {
		parts := ""
		if it.Route != "" {
			parts = it.Route
		}
		if it.Duration != "" {
			if parts != "" {
				parts += ", "
			}
			parts += it.Duration
		}
		return parts
	})
	writeItems("Hotels", p.Hotels, func(it itinerary.SelectionItem) string {
		d := it.Location
		if it.Rating > 0 {
			d += fmt.Sprintf(" (rated %.1f)", it.Rating)
		}
		return d
	})
	writeItems("Activities", p.Activities, func(it itinerary.SelectionItem) string {
		return it.Description
	})
	writeItems("Dining", p.Dining, func(it itinerary.SelectionItem) string {
		d := it.Cuisine
		if it.Location != "" {
			if d != "" {
				d += ", "
			}
			d += it.Location
		}
		return d
	})

	// ── AI summary ───────────────────────────────────────────
	if doc.AISummary != "" {
		sectionHeader("Notes")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(170, 5, doc.AISummary, "", "L", false)
		pdf.Ln(4)
	}

	// ── Footer ───────────────────────────────────────────────
	pdf.SetY(-25)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(170, 5,
		fmt.Sprintf("Trip %s — generated %s. Prices are estimates; verify with providers before booking.",
			doc.TripID, time.Now().Format("2006-01-02")),
		"", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf render failed: %w", err)
	}
	return buf.Bytes(), nil
}
