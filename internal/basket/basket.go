// Package basket implements the session basket: an ephemeral mapping of
// menu-item name to quantity that lives only between "add to basket" and
// checkout. Item names are not validated here; resolution against the menu
// is deferred to checkout.
package basket

import (
	"strconv"
	"strings"

	"winter-feast/internal/session"
)

// ParseQuantity converts raw form input to a quantity. Values below 1 are
// clamped to 1, and non-numeric input defaults to 1 rather than being
// dropped.
func ParseQuantity(raw string) int {
	qty, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || qty < 1 {
		return 1
	}
	return qty
}

// Add increments the basket entry for name by the parsed quantity.
func Add(s *session.Session, name, rawQty string) {
	if s.Basket == nil {
		s.Basket = make(map[string]int)
	}
	s.Basket[name] += ParseQuantity(rawQty)
}

// View returns the current basket contents.
func View(s *session.Session) map[string]int {
	if s.Basket == nil {
		return map[string]int{}
	}
	return s.Basket
}

// Clear empties the basket.
func Clear(s *session.Session) {
	s.Basket = make(map[string]int)
}
