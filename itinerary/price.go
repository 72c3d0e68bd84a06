package itinerary

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var priceNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParsePrice extracts a non-negative amount from a provider price string.
// Currency symbols, codes, thousands separators and trailing labels such as
// "/night" are ignored; input without a numeric amount is an error, never a
// silent zero.
func ParsePrice(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty price")
	}

	s = strings.ReplaceAll(s, ",", "")
	for _, sym := range []string{"$", "€", "£", "¥", "₹", "₩", "฿"} {
		s = strings.ReplaceAll(s, sym, "")
	}

	match := priceNumber.FindString(s)
	if match == "" {
		return 0, fmt.Errorf("no amount in price %q", raw)
	}

	price, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", raw, err)
	}
	return price, nil
}
