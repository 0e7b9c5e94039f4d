package models

import "github.com/shopspring/decimal"

// MenuItem represents a dish on the menu. Only active items are orderable;
// price carries exactly two fractional digits.
type MenuItem struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Weight      string          `json:"weight"`
	Ingredients string          `json:"ingredients"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Active      bool            `json:"active"`
	FileName    *string         `json:"file_name,omitempty"`
}
