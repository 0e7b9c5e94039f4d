package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is an immutable snapshot of a basket at checkout time. TotalCost is
// fixed when the order is created and never re-derived from the menu.
type Order struct {
	ID              int             `json:"id"`
	OrderList       map[string]int  `json:"order_list"`
	OrderTime       time.Time       `json:"order_time"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	CustomerName    string          `json:"customer_name"`
	CustomerPhone   string          `json:"customer_phone"`
	CustomerAddress string          `json:"customer_address"`
	PaymentMethod   string          `json:"payment_method"`
	DeliveryNotes   *string         `json:"delivery_notes,omitempty"`
	UserID          int             `json:"user_id"`
}

// AdminOrder is an order joined with its owner's nickname for the
// administrator listing.
type AdminOrder struct {
	Order
	OwnerNickname string `json:"owner_nickname"`
}
